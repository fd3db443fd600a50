package entity

import (
	"github.com/go-gl/mathgl/mgl64"
)

// BodyConfig is the declarative per-body document. Nil module pointers mean "skip that stage".
type BodyConfig struct {
	Name    string `yaml:"name"`
	Destroy bool   `yaml:"destroy,omitempty"`

	Orbit OrbitalElements `yaml:"orbit"`
	Base  BaseModule      `yaml:"base"`

	Star         *StarModule         `yaml:"star,omitempty"`
	Atmosphere   *AtmosphereModule   `yaml:"atmosphere,omitempty"`
	Ring         *RingModule         `yaml:"ring,omitempty"`
	AsteroidBelt *AsteroidBeltModule `yaml:"asteroidBelt,omitempty"`
	HeightMap    *HeightMapModule    `yaml:"heightMap,omitempty"`
	ProcGen      *ProcGenModule      `yaml:"procGen,omitempty"`
	Props        *PropModule         `yaml:"props,omitempty"`
	Volumes      *VolumesModule      `yaml:"volumes,omitempty"`
	Spawn        *SpawnModule        `yaml:"spawn,omitempty"`
}

// OrbitalElements places the body relative to its primary. Angles are in degrees.
type OrbitalElements struct {
	SemiMajorAxis            float64 `yaml:"semiMajorAxis"`
	Eccentricity             float64 `yaml:"eccentricity"`
	Inclination              float64 `yaml:"inclination"`
	LongitudeOfAscendingNode float64 `yaml:"longitudeOfAscendingNode"`
	ArgumentOfPeriapsis      float64 `yaml:"argumentOfPeriapsis"`
	TrueAnomaly              float64 `yaml:"trueAnomaly"`
	PrimaryBody              string  `yaml:"primaryBody"`
	IsMoon                   bool    `yaml:"isMoon,omitempty"`
	ShowOrbitLine            bool    `yaml:"showOrbitLine,omitempty"`
	// BuildPriority overrides the star/planet/moon ordering; nil or -1 means default
	BuildPriority *int `yaml:"buildPriority,omitempty"`
}

type BaseModule struct {
	GroundSize        float64 `yaml:"groundSize,omitempty"`
	SurfaceSize       float64 `yaml:"surfaceSize,omitempty"`
	SurfaceGravity    float64 `yaml:"surfaceGravity,omitempty"`
	GravityFallOff    string  `yaml:"gravityFallOff,omitempty"`
	HasReferenceFrame bool    `yaml:"hasReferenceFrame,omitempty"`
	HasMapMarker      bool    `yaml:"hasMapMarker,omitempty"`
	HasAmbientLight   bool    `yaml:"hasAmbientLight,omitempty"`
	HasCometTail      bool    `yaml:"hasCometTail,omitempty"`
	BlackHoleSize     float64 `yaml:"blackHoleSize,omitempty"`
	LavaSize          float64 `yaml:"lavaSize,omitempty"`
	WaterSize         float64 `yaml:"waterSize,omitempty"`
}

type StarModule struct {
	Size  float64 `yaml:"size"`
	Tint  string  `yaml:"tint,omitempty"`
	Solar float64 `yaml:"solarLuminosity,omitempty"`
}

type AtmosphereModule struct {
	Size      float64      `yaml:"size"`
	HasRain   bool         `yaml:"hasRain,omitempty"`
	HasSnow   bool         `yaml:"hasSnow,omitempty"`
	HasOxygen bool         `yaml:"hasOxygen,omitempty"`
	FogSize   float64      `yaml:"fogSize,omitempty"`
	FogTint   string       `yaml:"fogTint,omitempty"`
	Cloud     *CloudModule `yaml:"cloud,omitempty"`
}

type CloudModule struct {
	AssetBundle string  `yaml:"assetBundle"`
	TexturePath string  `yaml:"texturePath"`
	InnerRadius float64 `yaml:"innerRadius,omitempty"`
	OuterRadius float64 `yaml:"outerRadius"`
}

type RingModule struct {
	InnerRadius float64 `yaml:"innerRadius"`
	OuterRadius float64 `yaml:"outerRadius"`
	Inclination float64 `yaml:"inclination,omitempty"`
	AssetBundle string  `yaml:"assetBundle"`
	TexturePath string  `yaml:"texturePath"`
}

type AsteroidBeltModule struct {
	InnerRadius float64 `yaml:"innerRadius"`
	OuterRadius float64 `yaml:"outerRadius"`
	Amount      int     `yaml:"amount"`
	MinSize     float64 `yaml:"minSize,omitempty"`
	MaxSize     float64 `yaml:"maxSize,omitempty"`
	Inclination float64 `yaml:"inclination,omitempty"`
	Seed        int64   `yaml:"seed,omitempty"`
}

type HeightMapModule struct {
	AssetBundle string  `yaml:"assetBundle"`
	HeightMap   string  `yaml:"heightMap"`
	MinHeight   float64 `yaml:"minHeight"`
	MaxHeight   float64 `yaml:"maxHeight"`
}

type ProcGenModule struct {
	Scale float64 `yaml:"scale"`
	Color string  `yaml:"color,omitempty"`
}

// PropModule lists decorative objects placed on the body
type PropModule struct {
	Details       []DetailInfo       `yaml:"details,omitempty"`
	Volcanoes     []VolcanoInfo      `yaml:"volcanoes,omitempty"`
	QuantumGroups []QuantumGroupInfo `yaml:"quantumGroups,omitempty"`
}

// DetailInfo is a single prop loaded from an asset bundle
type DetailInfo struct {
	AssetBundle    string     `yaml:"assetBundle"`
	Path           string     `yaml:"path"`
	Position       mgl64.Vec3 `yaml:"position"`
	Rotation       mgl64.Vec3 `yaml:"rotation,omitempty"`
	Scale          float64    `yaml:"scale,omitempty"`
	QuantumGroupID string     `yaml:"quantumGroupID,omitempty"`
}

type VolcanoInfo struct {
	Position       mgl64.Vec3 `yaml:"position"`
	Scale          float64    `yaml:"scale,omitempty"`
	MinLaunchSpeed float64    `yaml:"minLaunchSpeed,omitempty"`
	MaxLaunchSpeed float64    `yaml:"maxLaunchSpeed,omitempty"`
	MinInterval    float64    `yaml:"minInterval,omitempty"`
	MaxInterval    float64    `yaml:"maxInterval,omitempty"`
	StoneTint      string     `yaml:"stoneTint,omitempty"`
	LavaTint       string     `yaml:"lavaTint,omitempty"`
}

// QuantumGroupType is the discriminant selecting a quantum behaviour
type QuantumGroupType string

const (
	QuantumSockets QuantumGroupType = "sockets"
	QuantumStates  QuantumGroupType = "states"
	QuantumShuffle QuantumGroupType = "shuffle"
)

// QuantumGroupInfo configures one quantum group
type QuantumGroupInfo struct {
	ID            string              `yaml:"id"`
	Type          QuantumGroupType    `yaml:"type"`
	Sockets       []QuantumSocketInfo `yaml:"sockets,omitempty"`
	Loop          bool                `yaml:"loop,omitempty"`
	Sequential    bool                `yaml:"sequential,omitempty"`
	HasEmptyState bool                `yaml:"hasEmptyState,omitempty"`
}

type QuantumSocketInfo struct {
	Position mgl64.Vec3 `yaml:"position"`
	Rotation mgl64.Vec3 `yaml:"rotation,omitempty"`
}

// VolumesModule lists trigger volumes
type VolumesModule struct {
	HazardVolumes []HazardVolumeInfo `yaml:"hazardVolumes,omitempty"`
}

type HazardType string

const (
	HazardGeneral     HazardType = "GENERAL"
	HazardHeat        HazardType = "HEAT"
	HazardRiverHeat   HazardType = "RIVERHEAT"
	HazardDarkMatter  HazardType = "DARKMATTER"
	HazardElectricity HazardType = "ELECTRICITY"
	HazardFire        HazardType = "FIRE"
	HazardSandfall    HazardType = "SANDFALL"
)

type HazardVolumeInfo struct {
	Type                   HazardType  `yaml:"type"`
	Position               *mgl64.Vec3 `yaml:"position,omitempty"`
	Radius                 float64     `yaml:"radius"`
	DamagePerSecond        float64     `yaml:"damagePerSecond,omitempty"`
	FirstContactDamage     float64     `yaml:"firstContactDamage,omitempty"`
	FirstContactDamageType string      `yaml:"firstContactDamageType,omitempty"`
	ParentPath             string      `yaml:"parentPath,omitempty"`
	Rename                 string      `yaml:"rename,omitempty"`
	IsRelativeToParent     bool        `yaml:"isRelativeToParent,omitempty"`
}

// SpawnModule places the player or ship spawn points on the body
type SpawnModule struct {
	PlayerSpawnPoint *mgl64.Vec3 `yaml:"playerSpawnPoint,omitempty"`
	ShipSpawnPoint   *mgl64.Vec3 `yaml:"shipSpawnPoint,omitempty"`
	StartWithSuit    bool        `yaml:"startWithSuit,omitempty"`
}
