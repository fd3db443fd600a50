package stages

import (
	"orrery/backend/internal/core/domain/service/builder"
	"orrery/backend/internal/world"
)

// HeightMapStage instantiates the terrain asset below the body root
func HeightMapStage() builder.Stage {
	return stage{
		name:    "heightmap",
		applies: func(ctx *builder.Context) bool { return ctx.Config.HeightMap != nil },
		build: func(ctx *builder.Context) error {
			hm := ctx.Config.HeightMap
			asset, err := ctx.LoadAsset(hm.AssetBundle, hm.HeightMap)
			if err != nil {
				return err
			}

			node := ctx.Host.Instantiate(asset, ctx.Root)
			ctx.Host.Rename(node, "Terrain")
			if _, ok := ctx.Host.MeshBounds(node); !ok {
				sphereMesh(ctx, node, hm.MaxHeight)
			}
			ctx.Host.Attach(node, &HeightMap{MinHeight: hm.MinHeight, MaxHeight: hm.MaxHeight, Source: hm.HeightMap})
			ctx.Host.SetActive(node, true)
			return nil
		},
	}
}

// procGenReliefFactor is the relief amplitude relative to the surface scale
const procGenReliefFactor = 0.02

func ProcGenStage() builder.Stage {
	return stage{
		name:    "procgen",
		applies: func(ctx *builder.Context) bool { return ctx.Config.ProcGen != nil },
		build: func(ctx *builder.Context) error {
			pg := ctx.Config.ProcGen
			node := ctx.Host.CreateNode("ProcGen", ctx.Root)
			sphereMesh(ctx, node, pg.Scale)
			relief := world.GenerateRelief(ctx.Config.Name, world.ReliefResolution, pg.Scale*procGenReliefFactor)
			ctx.Host.Attach(node, &ProcGenSurface{Scale: pg.Scale, Color: pg.Color, Relief: relief})
			return nil
		},
	}
}

func BlackHoleStage() builder.Stage {
	return stage{
		name:    "black_hole",
		applies: func(ctx *builder.Context) bool { return ctx.Config.Base.BlackHoleSize != 0 },
		build: func(ctx *builder.Context) error {
			node := ctx.Host.CreateNode("BlackHole", ctx.Sector)
			ctx.Host.Attach(node, &BlackHole{Size: ctx.Config.Base.BlackHoleSize})
			return nil
		},
	}
}

func StarStage() builder.Stage {
	return stage{
		name:    "star",
		applies: func(ctx *builder.Context) bool { return ctx.Config.Star != nil },
		build: func(ctx *builder.Context) error {
			s := ctx.Config.Star
			node := ctx.Host.CreateNode("Star", ctx.Sector)
			sphereMesh(ctx, node, s.Size)
			ctx.Host.Attach(node, &Star{Size: s.Size, Tint: s.Tint, Luminosity: s.Solar})
			return nil
		},
	}
}
