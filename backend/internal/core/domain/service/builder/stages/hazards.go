package stages

import (
	"github.com/go-gl/mathgl/mgl64"

	"orrery/backend/internal/core/domain/entity"
	"orrery/backend/internal/core/domain/service/builder"
	"orrery/backend/internal/world"
)

// HazardVolumesStage builds damage volumes. Dark matter volumes are linked to the
// body's water when there is one.
func HazardVolumesStage() builder.Stage {
	return stage{
		name: "hazard_volumes",
		applies: func(ctx *builder.Context) bool {
			return ctx.Config.Volumes != nil && len(ctx.Config.Volumes.HazardVolumes) > 0
		},
		build: func(ctx *builder.Context) error {
			for _, info := range ctx.Config.Volumes.HazardVolumes {
				makeHazardVolume(ctx, info)
			}
			return nil
		},
	}
}

func makeHazardVolume(ctx *builder.Context, info entity.HazardVolumeInfo) world.NodeID {
	parent := ctx.Sector
	if parent == 0 {
		parent = ctx.Root
	}
	if info.ParentPath != "" {
		if p, ok := ctx.Host.Find(ctx.Root, info.ParentPath); ok {
			parent = p
		} else {
			ctx.Warnf("cannot find parent object at path: %s/%s", ctx.Host.Name(ctx.Root), info.ParentPath)
		}
	}

	node := ctx.Host.CreateNode("HazardVolume", parent)
	ctx.Host.SetActive(node, false)
	if info.Rename != "" {
		ctx.Host.Rename(node, info.Rename)
	}

	var pos mgl64.Vec3
	if info.Position != nil {
		pos = *info.Position
	}
	if info.IsRelativeToParent {
		ctx.Host.SetLocalPosition(node, pos)
	} else {
		ctx.Host.SetWorldPosition(node, ctx.Host.LocalToWorld(ctx.Root).Mul4x1(pos.Vec4(1)).Vec3())
	}

	hazardType := info.Type
	switch hazardType {
	case entity.HazardHeat, entity.HazardRiverHeat, entity.HazardElectricity:
	case entity.HazardDarkMatter:
		if water := findWater(ctx); water != 0 {
			ctx.Host.Attach(node, &SubmergeLink{Water: water})
		}
	case entity.HazardGeneral, entity.HazardFire, entity.HazardSandfall:
	default:
		hazardType = entity.HazardGeneral
	}

	ctx.Host.Attach(node, &HazardVolume{
		Type:                   hazardType,
		Radius:                 info.Radius,
		DamagePerSecond:        info.DamagePerSecond,
		FirstContactDamage:     info.FirstContactDamage,
		FirstContactDamageType: orDefault(info.FirstContactDamageType, "Impact"),
	})
	ctx.Host.SetActive(node, true)
	return node
}

// findWater returns the water node built this pass, or any water fluid below the root
func findWater(ctx *builder.Context) world.NodeID {
	if ctx.Water != 0 {
		return ctx.Water
	}
	for _, n := range ctx.Host.Descendants(ctx.Root) {
		if f, ok := findFluid(ctx, n); ok && f.Kind == "water" {
			return n
		}
	}
	return 0
}
