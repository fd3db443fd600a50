// Package orbit computes the initial placement of a body from its orbital elements.
//
// The body is always placed at apoapsis distance along the rotated reference axis;
// nothing is propagated along the orbit. Eccentric orbits start at apoapsis with zero
// inclination and no true anomaly contribution.
package orbit

import (
	"github.com/go-gl/mathgl/mgl64"

	"orrery/backend/internal/core/domain/entity"
	"orrery/backend/internal/world"
)

// Placement is the solver output
type Placement struct {
	// Offset is the position relative to the primary body
	Offset mgl64.Vec3
	// Position is the world position (primary position + Offset)
	Position mgl64.Vec3
	// Rotation is used by later stages for axis alignment
	Rotation mgl64.Quat
	// Elements are the elements actually used, after normalisation
	Elements entity.OrbitalElements
	Falloff  world.FalloffType
}

// Distance from the primary body
func (p Placement) Distance() float64 {
	return p.Offset.Len()
}

// Solve computes the placement of a body orbiting a primary located at primaryPosition.
// It never fails for finite inputs with eccentricity >= 0.
func Solve(elements entity.OrbitalElements, primaryPosition mgl64.Vec3, falloff world.FalloffType) Placement {
	el := Normalize(elements)

	angle := el.LongitudeOfAscendingNode + el.TrueAnomaly + el.ArgumentOfPeriapsis + 180
	if el.Eccentricity != 0 {
		angle = el.LongitudeOfAscendingNode + el.ArgumentOfPeriapsis + 180
	}
	rot := mgl64.QuatRotate(mgl64.DegToRad(angle), world.Up)

	incAxis := mgl64.QuatRotate(mgl64.DegToRad(el.LongitudeOfAscendingNode), world.Up).Rotate(world.Left)
	incRot := mgl64.QuatRotate(mgl64.DegToRad(el.Inclination), incAxis)

	orientation := rot.Mul(incRot)
	offset := orientation.Rotate(world.Left).Mul(el.SemiMajorAxis * (1 + el.Eccentricity))

	return Placement{
		Offset:   offset,
		Position: primaryPosition.Add(offset),
		Rotation: orientation,
		Elements: el,
		Falloff:  falloff,
	}
}

// Normalize applies the eccentric orbit simplification: any eccentricity other than
// zero forces the inclination to zero.
func Normalize(elements entity.OrbitalElements) entity.OrbitalElements {
	if elements.Eccentricity != 0 {
		elements.Inclination = 0
	}
	return elements
}
