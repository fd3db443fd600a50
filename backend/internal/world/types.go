package world

import (
	"github.com/go-gl/mathgl/mgl64"
)

// NodeID identifies a node in the host scene graph. Zero is "no node".
type NodeID uint64

// Reference axes used by the placement solver and the stages
var (
	Up      = mgl64.Vec3{0, 1, 0}
	Left    = mgl64.Vec3{-1, 0, 0}
	Right   = mgl64.Vec3{1, 0, 0}
	Forward = mgl64.Vec3{0, 0, 1}
)

// Bounds is an axis-aligned box stored as center + size
type Bounds struct {
	Center mgl64.Vec3
	Size   mgl64.Vec3
}

// NewBoundsMinMax builds bounds from two corners
func NewBoundsMinMax(min, max mgl64.Vec3) Bounds {
	return Bounds{
		Center: min.Add(max).Mul(0.5),
		Size:   max.Sub(min),
	}
}

func (b Bounds) Extents() mgl64.Vec3 {
	return b.Size.Mul(0.5)
}

func (b Bounds) Min() mgl64.Vec3 {
	return b.Center.Sub(b.Extents())
}

func (b Bounds) Max() mgl64.Vec3 {
	return b.Center.Add(b.Extents())
}

// Encapsulate grows the bounds to include p
func (b Bounds) Encapsulate(p mgl64.Vec3) Bounds {
	min, max := b.Min(), b.Max()
	for i := 0; i < 3; i++ {
		if p[i] < min[i] {
			min[i] = p[i]
		}
		if p[i] > max[i] {
			max[i] = p[i]
		}
	}
	return NewBoundsMinMax(min, max)
}

// IsZero reports a zero-size box
func (b Bounds) IsZero() bool {
	return b.Size == mgl64.Vec3{}
}

// Corners returns the 8 corners in the fixed order min, max, then the mixed ones
func (b Bounds) Corners() [8]mgl64.Vec3 {
	min, max := b.Min(), b.Max()
	return [8]mgl64.Vec3{
		min,
		max,
		{min[0], min[1], max[2]},
		{min[0], max[1], min[2]},
		{max[0], min[1], min[2]},
		{min[0], max[1], max[2]},
		{max[0], min[1], max[2]},
		{max[0], max[1], min[2]},
	}
}

// EulerToQuat converts euler angles (degrees) to a quaternion.
// Rotation is applied Z first, then X, then Y.
func EulerToQuat(euler mgl64.Vec3) mgl64.Quat {
	qx := mgl64.QuatRotate(mgl64.DegToRad(euler[0]), Right)
	qy := mgl64.QuatRotate(mgl64.DegToRad(euler[1]), Up)
	qz := mgl64.QuatRotate(mgl64.DegToRad(euler[2]), Forward)
	return qy.Mul(qx).Mul(qz)
}

// FalloffType is how a body's gravity diminishes with distance
type FalloffType int

const (
	FalloffLinear FalloffType = iota
	FalloffInverseSquared
)

func (f FalloffType) String() string {
	switch f {
	case FalloffLinear:
		return "linear"
	case FalloffInverseSquared:
		return "inverseSquared"
	default:
		return "unknown"
	}
}

// Exponent is the power of the radius used in mu = g * r^exponent
func (f FalloffType) Exponent() float64 {
	if f == FalloffLinear {
		return 1
	}
	return 2
}

// ParseFalloff maps the config spelling to a falloff type, inverse squared by default
func ParseFalloff(s string) FalloffType {
	switch s {
	case "linear", "Linear":
		return FalloffLinear
	default:
		return FalloffInverseSquared
	}
}

// GravitationalConstant relates mu to mass in world units
const GravitationalConstant = 0.001

// GravityVolume is the gravity model attached to a body
type GravityVolume struct {
	SurfaceAcceleration float64
	SurfaceRadius       float64
	Falloff             FalloffType
	Radius              float64
}

// Mu returns the standard gravitational parameter implied by the volume
func (g *GravityVolume) Mu() float64 {
	if g == nil {
		return 0
	}
	mu := g.SurfaceAcceleration
	for i := 0.0; i < g.Falloff.Exponent(); i++ {
		mu *= g.SurfaceRadius
	}
	return mu
}

// Mass is the body mass implied by the volume
func (g *GravityVolume) Mass() float64 {
	return g.Mu() / GravitationalConstant
}

// PhysicsHandle is an opaque reference to the body's rigidbody in the physics collaborator
type PhysicsHandle struct {
	ID       string
	Mass     float64
	Velocity mgl64.Vec3
}

// Body is a constructed celestial body known to the registry
type Body struct {
	ID                string
	Name              string
	Root              NodeID
	Sector            NodeID
	OrbitLine         NodeID
	Physics           *PhysicsHandle
	SphereOfInfluence float64
	Gravity           *GravityVolume
	Primary           *Body
	Position          mgl64.Vec3
	IsMoon            bool
	Custom            bool
}

// Falloff returns the falloff of the body's gravity, inverse squared when it has none
func (b *Body) Falloff() FalloffType {
	if b == nil || b.Gravity == nil {
		return FalloffInverseSquared
	}
	return b.Gravity.Falloff
}

// PositionOrZero is the body position, the origin for a nil body
func (b *Body) PositionOrZero() mgl64.Vec3 {
	if b == nil {
		return mgl64.Vec3{}
	}
	return b.Position
}
