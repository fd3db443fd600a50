package stages

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"orrery/backend/internal/core/domain/service/builder"
	"orrery/backend/internal/world"
)

// PositionStage moves the finished body to its solved placement
func PositionStage() builder.Stage {
	return stage{
		name:    "position",
		applies: always,
		build: func(ctx *builder.Context) error {
			ctx.Host.SetWorldPosition(ctx.Root, ctx.Placement.Position)
			ctx.Body.Position = ctx.Host.WorldPosition(ctx.Root)
			return nil
		},
	}
}

// OrbitLineStage draws the orbit one frame later, once the body transform has settled
func OrbitLineStage() builder.Stage {
	return stage{
		name:    "orbit_line",
		applies: func(ctx *builder.Context) bool { return ctx.Config.Orbit.ShowOrbitLine },
		build: func(ctx *builder.Context) error {
			host, body, cfg := ctx.Host, ctx.Body, ctx.Config
			draw := func() {
				if len(host.Descendants(body.Root)) == 0 {
					return
				}
				center := body.Primary.PositionOrZero()
				line := &OrbitLine{
					Center:   center,
					Radius:   host.WorldPosition(body.Root).Sub(center).Len(),
					IsMoon:   cfg.Orbit.IsMoon,
					Elements: cfg.Orbit,
				}
				if body.Primary != nil {
					line.PrimaryID = body.Primary.ID
				}
				node := host.CreateNode(body.Name+"_Orbit", 0)
				host.SetWorldPosition(node, center)
				host.Attach(node, line)
				body.OrbitLine = node
			}

			if ctx.Deferrer == nil {
				draw()
				return nil
			}
			ctx.Deferrer.RunNextFrame(draw)
			return nil
		},
	}
}

// InitialMotionStage gives the body the circular speed around its primary.
// Must run after PositionStage.
func InitialMotionStage() builder.Stage {
	return stage{
		name:    "initial_motion",
		applies: func(ctx *builder.Context) bool { return ctx.Body.Physics != nil },
		build: func(ctx *builder.Context) error {
			primary := ctx.Body.Primary
			var base mgl64.Vec3
			if primary != nil && primary.Physics != nil {
				base = primary.Physics.Velocity
			}
			if primary == nil || primary.Gravity == nil {
				ctx.Body.Physics.Velocity = base
				return nil
			}

			offset := ctx.Body.Position.Sub(primary.Position)
			speed := CircularSpeed(primary.Gravity, offset.Len())
			axis := ctx.Placement.Rotation.Rotate(world.Up)
			dir := axis.Cross(offset)
			if dir.Len() == 0 {
				ctx.Body.Physics.Velocity = base
				return nil
			}
			ctx.Body.Physics.Velocity = base.Add(dir.Normalize().Mul(speed))
			return nil
		},
	}
}

// CircularSpeed is the speed of a circular orbit at distance r.
// With mu = g * R^n the attraction is mu / r^n, so v = sqrt(mu / r^(n-1)).
func CircularSpeed(g *world.GravityVolume, r float64) float64 {
	if g == nil || r <= 0 {
		return 0
	}
	exp := g.Falloff.Exponent()
	return math.Sqrt(g.Mu() / math.Pow(r, exp-1))
}

// SpawnStage places the player and ship spawn points. It is the last stage.
func SpawnStage() builder.Stage {
	return stage{
		name:    "spawn",
		applies: func(ctx *builder.Context) bool { return ctx.Config.Spawn != nil },
		build: func(ctx *builder.Context) error {
			s := ctx.Config.Spawn
			if s.PlayerSpawnPoint != nil {
				node := ctx.Host.CreateNode("PlayerSpawnPoint", ctx.Root)
				ctx.Host.SetLocalPosition(node, *s.PlayerSpawnPoint)
				ctx.Host.Attach(node, &SpawnPoint{StartWithSuit: s.StartWithSuit})
			}
			if s.ShipSpawnPoint != nil {
				node := ctx.Host.CreateNode("ShipSpawnPoint", ctx.Root)
				ctx.Host.SetLocalPosition(node, *s.ShipSpawnPoint)
				ctx.Host.Attach(node, &SpawnPoint{IsShip: true})
			}
			return nil
		},
	}
}
