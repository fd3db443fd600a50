package stages

import (
	"fmt"
	"hash/fnv"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"orrery/backend/internal/core/domain/entity"
	"orrery/backend/internal/core/domain/service/builder"
	"orrery/backend/internal/world"
)

func RingStage() builder.Stage {
	return stage{
		name:    "ring",
		applies: func(ctx *builder.Context) bool { return ctx.Config.Ring != nil },
		build: func(ctx *builder.Context) error {
			r := ctx.Config.Ring
			if _, err := ctx.LoadAsset(r.AssetBundle, r.TexturePath); err != nil {
				return err
			}

			node := ctx.Host.CreateNode("Ring", ctx.Sector)
			ctx.Host.SetLocalRotation(node, world.EulerToQuat(mgl64.Vec3{r.Inclination, 0, 0}))
			ctx.Host.SetMesh(node, world.Bounds{Size: mgl64.Vec3{2 * r.OuterRadius, 0, 2 * r.OuterRadius}})
			ctx.Host.Attach(node, &Ring{InnerRadius: r.InnerRadius, OuterRadius: r.OuterRadius, Texture: r.TexturePath})
			return nil
		},
	}
}

// AsteroidBeltStage queues one moon-like body per asteroid for the next pass
func AsteroidBeltStage() builder.Stage {
	return stage{
		name:    "asteroid_belt",
		applies: func(ctx *builder.Context) bool { return ctx.Config.AsteroidBelt != nil },
		build: func(ctx *builder.Context) error {
			if ctx.Loader == nil {
				return fmt.Errorf("no loader to queue asteroids")
			}
			for _, d := range Asteroids(ctx.Name(), ctx.Config.AsteroidBelt, ctx.Descriptor.Owner) {
				ctx.Loader.EnqueueAdditional(d)
			}
			return nil
		},
	}
}

// Asteroids generates the descriptors of a belt around the named body.
// The same belt configuration always yields the same asteroids.
func Asteroids(bodyName string, belt *entity.AsteroidBeltModule, owner string) []*entity.BodyDescriptor {
	seed := belt.Seed
	if seed == 0 {
		h := fnv.New64a()
		h.Write([]byte(bodyName))
		seed = int64(h.Sum64())
	}
	rng := rand.New(rand.NewSource(seed))

	minSize, maxSize := belt.MinSize, belt.MaxSize
	if minSize <= 0 {
		minSize = 20
	}
	if maxSize < minSize {
		maxSize = minSize
	}

	out := make([]*entity.BodyDescriptor, 0, belt.Amount)
	for i := 0; i < belt.Amount; i++ {
		size := minSize + rng.Float64()*(maxSize-minSize)
		cfg := &entity.BodyConfig{
			Name: fmt.Sprintf("%s Asteroid %d", bodyName, i),
			Base: entity.BaseModule{
				SurfaceSize:    size,
				SurfaceGravity: 1,
				GravityFallOff: world.FalloffLinear.String(),
			},
			Orbit: entity.OrbitalElements{
				SemiMajorAxis:            belt.InnerRadius + rng.Float64()*(belt.OuterRadius-belt.InnerRadius),
				Inclination:              belt.Inclination,
				LongitudeOfAscendingNode: 0,
				TrueAnomaly:              360 * (float64(i) + rng.Float64()*0.4 - 0.2) / float64(belt.Amount),
				PrimaryBody:              bodyName,
				IsMoon:                   true,
			},
			ProcGen: &entity.ProcGenModule{Scale: size, Color: "#7f7f7f"},
		}
		out = append(out, entity.NewBodyDescriptor(cfg, owner))
	}
	return out
}

func CometTailStage() builder.Stage {
	return stage{
		name:    "comet_tail",
		applies: func(ctx *builder.Context) bool { return ctx.Config.Base.HasCometTail },
		build: func(ctx *builder.Context) error {
			primary := ""
			if ctx.Body.Primary != nil {
				primary = ctx.Body.Primary.ID
			}
			node := ctx.Host.CreateNode("CometTail", ctx.Sector)
			ctx.Host.Attach(node, &CometTail{Primary: primary, Size: ctx.Config.Base.SurfaceSize})
			return nil
		},
	}
}

func LavaStage() builder.Stage {
	return fluidStage("lava", "Lava", func(b entity.BaseModule) float64 { return b.LavaSize })
}

// WaterStage also remembers the water node for hazard volumes built later
func WaterStage() builder.Stage {
	s := fluidStage("water", "Water", func(b entity.BaseModule) float64 { return b.WaterSize })
	build := s.build
	s.build = func(ctx *builder.Context) error {
		if err := build(ctx); err != nil {
			return err
		}
		ctx.Water, _ = ctx.Host.Find(ctx.Sector, "Water")
		return nil
	}
	return s
}

func fluidStage(kind, nodeName string, size func(entity.BaseModule) float64) stage {
	return stage{
		name:    kind,
		applies: func(ctx *builder.Context) bool { return size(ctx.Config.Base) != 0 },
		build: func(ctx *builder.Context) error {
			r := size(ctx.Config.Base)
			node, ok := ctx.Host.Find(ctx.Sector, nodeName)
			if !ok {
				node = ctx.Host.CreateNode(nodeName, ctx.Sector)
			}
			sphereMesh(ctx, node, r)
			if _, has := findFluid(ctx, node); !has {
				ctx.Host.Attach(node, &Fluid{Kind: kind, Size: r})
			}
			return nil
		},
	}
}

func findFluid(ctx *builder.Context, node world.NodeID) (*Fluid, bool) {
	for _, b := range ctx.Host.Behaviors(node) {
		if f, ok := b.(*Fluid); ok {
			return f, true
		}
	}
	return nil, false
}

func AirStage() builder.Stage {
	return stage{
		name:    "air",
		applies: func(ctx *builder.Context) bool { return ctx.Config.Atmosphere != nil },
		build: func(ctx *builder.Context) error {
			a := ctx.Config.Atmosphere
			node := ctx.Host.CreateNode("Air", ctx.Sector)
			kind := "air"
			if a.HasOxygen {
				kind = "oxygenated_air"
			}
			ctx.Host.Attach(node, &SphereVolume{Kind: kind, Radius: a.Size})
			return nil
		},
	}
}

// CloudsStage builds the cloud layer and the sun override below it
func CloudsStage() builder.Stage {
	return stage{
		name: "clouds",
		applies: func(ctx *builder.Context) bool {
			return ctx.Config.Atmosphere != nil && ctx.Config.Atmosphere.Cloud != nil
		},
		build: func(ctx *builder.Context) error {
			c := ctx.Config.Atmosphere.Cloud
			asset, err := ctx.LoadAsset(c.AssetBundle, c.TexturePath)
			if err != nil {
				return err
			}

			node := ctx.Host.Instantiate(asset, ctx.Sector)
			ctx.Host.Rename(node, "Clouds")
			sphereMesh(ctx, node, c.OuterRadius)
			ctx.Host.Attach(node, &Clouds{InnerRadius: c.InnerRadius, OuterRadius: c.OuterRadius, Texture: c.TexturePath})
			ctx.Host.SetActive(node, true)

			sun := ctx.Host.CreateNode("SunOverride", ctx.Sector)
			ctx.Host.Attach(sun, &SunOverride{CloudRadius: c.OuterRadius, SurfaceRadius: ctx.Config.Base.SurfaceSize})
			return nil
		},
	}
}

func EffectsStage() builder.Stage {
	return stage{
		name: "effects",
		applies: func(ctx *builder.Context) bool {
			a := ctx.Config.Atmosphere
			return a != nil && (a.HasRain || a.HasSnow)
		},
		build: func(ctx *builder.Context) error {
			a := ctx.Config.Atmosphere
			node := ctx.Host.CreateNode("Effects", ctx.Sector)
			ctx.Host.Attach(node, &Precipitation{
				Rain:        a.HasRain,
				Snow:        a.HasSnow,
				InnerRadius: ctx.Config.Base.SurfaceSize,
				OuterRadius: a.Size / 2,
			})
			return nil
		},
	}
}

func FogStage() builder.Stage {
	return stage{
		name: "fog",
		applies: func(ctx *builder.Context) bool {
			return ctx.Config.Atmosphere != nil && ctx.Config.Atmosphere.FogSize != 0
		},
		build: func(ctx *builder.Context) error {
			a := ctx.Config.Atmosphere
			node := ctx.Host.CreateNode("FogSphere", ctx.Sector)
			sphereMesh(ctx, node, a.FogSize)
			ctx.Host.Attach(node, &Fog{Size: a.FogSize, Tint: a.FogTint})
			return nil
		},
	}
}

// AtmosphereStage assembles the final atmosphere from what the previous stages built
func AtmosphereStage() builder.Stage {
	return stage{
		name:    "atmosphere",
		applies: func(ctx *builder.Context) bool { return ctx.Config.Atmosphere != nil },
		build: func(ctx *builder.Context) error {
			a := ctx.Config.Atmosphere
			_, hasAir := ctx.Host.Find(ctx.Sector, "Air")
			_, hasFog := ctx.Host.Find(ctx.Sector, "FogSphere")
			_, hasClouds := ctx.Host.Find(ctx.Sector, "Clouds")

			node := ctx.Host.CreateNode("Atmosphere", ctx.Root)
			sphereMesh(ctx, node, a.Size)
			ctx.Host.Attach(node, &Atmosphere{Size: a.Size, HasAir: hasAir, HasFog: hasFog, HasClouds: hasClouds})
			return nil
		},
	}
}
