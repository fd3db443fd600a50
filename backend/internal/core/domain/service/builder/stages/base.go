// Package stages holds the default construction stages of the body pipeline.
package stages

import (
	"github.com/go-gl/mathgl/mgl64"

	"orrery/backend/internal/core/domain/service/builder"
	"orrery/backend/internal/world"
)

// stage adapts a pair of functions to builder.Stage
type stage struct {
	name    string
	applies func(ctx *builder.Context) bool
	build   func(ctx *builder.Context) error
}

func (s stage) Name() string                      { return s.name }
func (s stage) Applies(ctx *builder.Context) bool { return s.applies(ctx) }
func (s stage) Build(ctx *builder.Context) error  { return s.build(ctx) }

func always(*builder.Context) bool { return true }

// sphereMesh gives node a cube mesh enclosing a sphere of radius r
func sphereMesh(ctx *builder.Context, node world.NodeID, r float64) {
	ctx.Host.SetMesh(node, world.Bounds{Size: mgl64.Vec3{2 * r, 2 * r, 2 * r}})
}

// GeometryStage is the solid ground sphere
func GeometryStage() builder.Stage {
	return stage{
		name:    "geometry",
		applies: func(ctx *builder.Context) bool { return ctx.Config.Base.GroundSize != 0 },
		build: func(ctx *builder.Context) error {
			node := ctx.Host.CreateNode("GroundSphere", ctx.Root)
			sphereMesh(ctx, node, ctx.Config.Base.GroundSize)
			return nil
		},
	}
}

// BaseStage attaches the astro object and the rigidbody
func BaseStage() builder.Stage {
	return stage{
		name:    "base",
		applies: always,
		build: func(ctx *builder.Context) error {
			primary := ""
			if ctx.Primary != nil {
				primary = ctx.Primary.ID
			}
			ctx.Host.Attach(ctx.Root, &AstroObject{
				Name:    ctx.Body.ID,
				Primary: primary,
				IsMoon:  ctx.Config.Orbit.IsMoon,
			})

			ctx.Body.Physics = &world.PhysicsHandle{ID: ctx.Body.ID}
			ctx.Host.Attach(ctx.Root, &Rigidbody{Handle: ctx.Body.Physics})
			return nil
		},
	}
}

// GravityStage creates the gravity volume; the body mass follows from it
func GravityStage() builder.Stage {
	return stage{
		name:    "gravity",
		applies: func(ctx *builder.Context) bool { return ctx.Config.Base.SurfaceGravity != 0 },
		build: func(ctx *builder.Context) error {
			base := ctx.Config.Base
			volume := &world.GravityVolume{
				SurfaceAcceleration: base.SurfaceGravity,
				SurfaceRadius:       base.SurfaceSize,
				Falloff:             world.ParseFalloff(base.GravityFallOff),
				Radius:              ctx.Body.SphereOfInfluence,
			}
			ctx.Body.Gravity = volume
			if ctx.Body.Physics != nil {
				ctx.Body.Physics.Mass = volume.Mass()
			}

			node := ctx.Host.CreateNode("GravityWell", ctx.Root)
			ctx.Host.Attach(node, &GravityWell{Volume: volume})
			return nil
		},
	}
}

func ReferenceFrameStage() builder.Stage {
	return stage{
		name:    "rf_volume",
		applies: func(ctx *builder.Context) bool { return ctx.Config.Base.HasReferenceFrame },
		build: func(ctx *builder.Context) error {
			node := ctx.Host.CreateNode("RFVolume", ctx.Root)
			ctx.Host.Attach(node, &ReferenceFrameVolume{Radius: ctx.Body.SphereOfInfluence * 2})
			return nil
		},
	}
}

func MapMarkerStage() builder.Stage {
	return stage{
		name:    "map_marker",
		applies: func(ctx *builder.Context) bool { return ctx.Config.Base.HasMapMarker },
		build: func(ctx *builder.Context) error {
			kind := MarkerPlanet
			if ctx.Config.Orbit.IsMoon {
				kind = MarkerMoon
			}
			ctx.Host.Attach(ctx.Root, &MapMarker{Label: ctx.Name(), Kind: kind})
			return nil
		},
	}
}

func AmbientLightStage() builder.Stage {
	return stage{
		name:    "ambient_light",
		applies: func(ctx *builder.Context) bool { return ctx.Config.Base.HasAmbientLight },
		build: func(ctx *builder.Context) error {
			node := ctx.Host.CreateNode("AmbientLight", ctx.Root)
			ctx.Host.Attach(node, &AmbientLight{Range: ctx.Body.SphereOfInfluence})
			return nil
		},
	}
}

// SectorStage creates the spatial region every contained stage parents into
func SectorStage() builder.Stage {
	return stage{
		name:    "sector",
		applies: always,
		build: func(ctx *builder.Context) error {
			node := ctx.Host.CreateNode("Sector", ctx.Root)
			ctx.Host.Attach(node, &Sector{Radius: ctx.Body.SphereOfInfluence})
			ctx.Sector = node
			ctx.Body.Sector = node
			return nil
		},
	}
}

// VolumesStage creates the surface and sphere-of-influence triggers
func VolumesStage() builder.Stage {
	return stage{
		name:    "volumes",
		applies: always,
		build: func(ctx *builder.Context) error {
			root := ctx.Host.CreateNode("Volumes", ctx.Root)

			surface := ctx.Host.CreateNode("SurfaceVolume", root)
			ctx.Host.Attach(surface, &SphereVolume{Kind: "surface", Radius: ctx.Config.Base.SurfaceSize})

			soi := ctx.Host.CreateNode("SOIVolume", root)
			ctx.Host.Attach(soi, &SphereVolume{Kind: "sphere_of_influence", Radius: ctx.Body.SphereOfInfluence})
			return nil
		},
	}
}
