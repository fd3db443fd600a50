package stages

import (
	"github.com/go-gl/mathgl/mgl64"

	"orrery/backend/internal/core/domain/entity"
	"orrery/backend/internal/core/domain/service/builder"
	apperrors "orrery/backend/internal/shared/errors"
	"orrery/backend/internal/world"
)

const (
	defaultStoneTint = "0.0745,0.0745,0.0745,1"
	defaultLavaTint  = "4.5948,0.3419,0,1"
)

// PropsStage places details, volcanoes and quantum groups.
// A detail whose asset is missing is skipped; the first such failure is reported once
// all other props are placed.
func PropsStage() builder.Stage {
	return stage{
		name:    "props",
		applies: func(ctx *builder.Context) bool { return ctx.Config.Props != nil },
		build: func(ctx *builder.Context) error {
			props := ctx.Config.Props
			groups := make(map[string][]world.NodeID)

			var assetErr error
			for _, detail := range props.Details {
				node, err := placeDetail(ctx, detail)
				if err != nil {
					if !apperrors.IsAssetLoad(err) {
						return err
					}
					ctx.Warnf("detail %s/%s skipped: %v", detail.AssetBundle, detail.Path, err)
					if assetErr == nil {
						assetErr = err
					}
					continue
				}
				if detail.QuantumGroupID != "" {
					groups[detail.QuantumGroupID] = append(groups[detail.QuantumGroupID], node)
				}
			}

			for _, info := range props.Volcanoes {
				placeVolcano(ctx, info)
			}

			for _, group := range props.QuantumGroups {
				members := groups[group.ID]
				if len(members) == 0 {
					ctx.Warnf("quantum group %s has no placed members, skipping", group.ID)
					continue
				}
				if ctx.Quantum == nil {
					return apperrors.StageConstructionf(ctx.Name(), "props", "no quantum builder for group %s", group.ID)
				}
				if _, err := ctx.Quantum.BuildQuantumGroup(group, ctx.Sector, members); err != nil {
					return err
				}
			}
			return assetErr
		},
	}
}

func placeDetail(ctx *builder.Context, detail entity.DetailInfo) (world.NodeID, error) {
	asset, err := ctx.LoadAsset(detail.AssetBundle, detail.Path)
	if err != nil {
		return 0, err
	}

	node := ctx.Host.Instantiate(asset, ctx.Sector)
	ctx.Host.SetLocalPosition(node, detail.Position)
	ctx.Host.SetLocalRotation(node, world.EulerToQuat(detail.Rotation))
	if detail.Scale != 0 {
		ctx.Host.SetLocalScale(node, detail.Scale)
	}
	ctx.Host.SetActive(node, true)
	return node, nil
}

// placeVolcano points a meteor launcher away from the body centre.
// Meteor tints and scale are applied once the launcher is live.
func placeVolcano(ctx *builder.Context, info entity.VolcanoInfo) {
	node := ctx.Host.CreateNode("MeteorLauncher", ctx.Sector)
	ctx.Host.SetActive(node, false)

	worldPos := ctx.Host.LocalToWorld(ctx.Root).Mul4x1(info.Position.Vec4(1)).Vec3()
	ctx.Host.SetWorldPosition(node, worldPos)

	if info.Position.Len() > 0 {
		ctx.Host.SetLocalRotation(node, mgl64.QuatBetweenVectors(world.Up, info.Position.Normalize()))
	}

	launcher := &MeteorLauncher{
		MinLaunchSpeed: info.MinLaunchSpeed,
		MaxLaunchSpeed: info.MaxLaunchSpeed,
		MinInterval:    info.MinInterval,
		MaxInterval:    info.MaxInterval,
	}
	ctx.Host.Attach(node, launcher)
	ctx.Host.SetActive(node, true)

	fix := func() {
		launcher.MeteorScale = info.Scale
		launcher.StoneTint = orDefault(info.StoneTint, defaultStoneTint)
		launcher.LavaTint = orDefault(info.LavaTint, defaultLavaTint)
	}
	if ctx.Deferrer == nil {
		fix()
		return
	}
	host := ctx.Host
	ctx.Deferrer.RunWhen(func() bool { return host.IsActive(node) }, fix)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
