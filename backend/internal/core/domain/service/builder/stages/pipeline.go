package stages

import (
	"orrery/backend/internal/core/domain/service/builder"
)

// Default is the standard pipeline.
//
// Generation order: base geometry before gravity, gravity before the reference frame
// volume, the sector before anything it contains. Shared stages are re-run on update:
// ring, belt, comet tail and fluids come before the air, cloud, effect and fog stages,
// which come before the atmosphere. Spawn points are placed last.
func Default() builder.Pipeline {
	return builder.Pipeline{
		Generate: []builder.Stage{
			GeometryStage(),
			BaseStage(),
			GravityStage(),
			ReferenceFrameStage(),
			MapMarkerStage(),
			AmbientLightStage(),
			SectorStage(),
			VolumesStage(),
			HeightMapStage(),
			ProcGenStage(),
			BlackHoleStage(),
			StarStage(),
		},
		Shared: []builder.Stage{
			RingStage(),
			AsteroidBeltStage(),
			CometTailStage(),
			LavaStage(),
			WaterStage(),
			AirStage(),
			CloudsStage(),
			EffectsStage(),
			FogStage(),
			AtmosphereStage(),
			PropsStage(),
			HazardVolumesStage(),
		},
		Finalize: []builder.Stage{
			PositionStage(),
			OrbitLineStage(),
			InitialMotionStage(),
			SpawnStage(),
		},
	}
}
