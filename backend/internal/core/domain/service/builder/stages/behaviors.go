package stages

import (
	"github.com/go-gl/mathgl/mgl64"

	"orrery/backend/internal/core/domain/entity"
	"orrery/backend/internal/world"
)

// AstroObject marks a body root and links it to its primary
type AstroObject struct {
	Name    string
	Primary string
	IsMoon  bool
}

func (*AstroObject) BehaviorName() string { return "AstroObject" }

// Rigidbody carries the physics handle on the body root
type Rigidbody struct {
	Handle *world.PhysicsHandle
}

func (*Rigidbody) BehaviorName() string { return "Rigidbody" }

type GravityWell struct {
	Volume *world.GravityVolume
}

func (*GravityWell) BehaviorName() string { return "GravityVolume" }

type ReferenceFrameVolume struct {
	Radius float64
}

func (*ReferenceFrameVolume) BehaviorName() string { return "ReferenceFrameVolume" }

// MapMarker kinds
const (
	MarkerPlanet = "planet"
	MarkerMoon   = "moon"
)

type MapMarker struct {
	Label string
	Kind  string
}

func (*MapMarker) BehaviorName() string { return "MapMarker" }

type AmbientLight struct {
	Range float64
}

func (*AmbientLight) BehaviorName() string { return "AmbientLight" }

// Sector is the spatial partition region of a body
type Sector struct {
	Radius float64
}

func (*Sector) BehaviorName() string { return "Sector" }

// SphereVolume is a plain trigger sphere (surface, zero-g, fluids, air)
type SphereVolume struct {
	Kind   string
	Radius float64
}

func (*SphereVolume) BehaviorName() string { return "SphereVolume" }

type HeightMap struct {
	MinHeight float64
	MaxHeight float64
	Source    string
}

func (*HeightMap) BehaviorName() string { return "HeightMap" }

type ProcGenSurface struct {
	Scale  float64
	Color  string
	Relief *world.Relief
}

func (*ProcGenSurface) BehaviorName() string { return "ProcGenSurface" }

type BlackHole struct {
	Size float64
}

func (*BlackHole) BehaviorName() string { return "BlackHole" }

type Star struct {
	Size       float64
	Tint       string
	Luminosity float64
}

func (*Star) BehaviorName() string { return "Star" }

type Ring struct {
	InnerRadius float64
	OuterRadius float64
	Texture     string
}

func (*Ring) BehaviorName() string { return "Ring" }

type CometTail struct {
	Primary string
	Size    float64
}

func (*CometTail) BehaviorName() string { return "CometTail" }

// Fluid is a lava or water sphere
type Fluid struct {
	Kind string
	Size float64
}

func (*Fluid) BehaviorName() string { return "Fluid" }

type Clouds struct {
	InnerRadius float64
	OuterRadius float64
	Texture     string
}

func (*Clouds) BehaviorName() string { return "Clouds" }

// SunOverride dims the sun below the cloud layer
type SunOverride struct {
	CloudRadius   float64
	SurfaceRadius float64
}

func (*SunOverride) BehaviorName() string { return "SunOverride" }

type Precipitation struct {
	Rain, Snow  bool
	InnerRadius float64
	OuterRadius float64
}

func (*Precipitation) BehaviorName() string { return "Precipitation" }

type Fog struct {
	Size float64
	Tint string
}

func (*Fog) BehaviorName() string { return "Fog" }

type Atmosphere struct {
	Size      float64
	HasAir    bool
	HasFog    bool
	HasClouds bool
}

func (*Atmosphere) BehaviorName() string { return "Atmosphere" }

// MeteorLauncher is the runtime part of a volcano
type MeteorLauncher struct {
	MinLaunchSpeed float64
	MaxLaunchSpeed float64
	MinInterval    float64
	MaxInterval    float64
	MeteorScale    float64
	StoneTint      string
	LavaTint       string
}

func (*MeteorLauncher) BehaviorName() string { return "MeteorLauncher" }

// HazardVolume damages whatever enters it
type HazardVolume struct {
	Type                   entity.HazardType
	Radius                 float64
	DamagePerSecond        float64
	FirstContactDamage     float64
	FirstContactDamageType string
}

func (*HazardVolume) BehaviorName() string { return "HazardVolume" }

// SubmergeLink ties a dark matter volume to the water it hides under
type SubmergeLink struct {
	Water world.NodeID
}

func (*SubmergeLink) BehaviorName() string { return "SubmergeLink" }

type OrbitLine struct {
	Center    mgl64.Vec3
	Radius    float64
	IsMoon    bool
	Elements  entity.OrbitalElements
	PrimaryID string
}

func (*OrbitLine) BehaviorName() string { return "OrbitLine" }

type SpawnPoint struct {
	IsShip        bool
	StartWithSuit bool
}

func (*SpawnPoint) BehaviorName() string { return "SpawnPoint" }
