// Package bounds approximates the extents of a node hierarchy from its meshes.
//
// Every mesh contributes the 8 corners of its own local box. Corners go to world space
// through the mesh node and then back into the root's local space; the result is the
// box enclosing all of them. For rotated meshes this is larger than the tight bound.
package bounds

import (
	"github.com/go-gl/mathgl/mgl64"

	"orrery/backend/internal/core/port/out/scene"
	apperrors "orrery/backend/internal/shared/errors"
	"orrery/backend/internal/world"
)

// MeshCorners returns the corners of node's mesh expressed in relativeTo's local space.
// relativeTo == 0 leaves them in world space. ok is false when node has no mesh.
func MeshCorners(host scene.Host, node, relativeTo world.NodeID) (corners [8]mgl64.Vec3, ok bool) {
	mesh, ok := host.MeshBounds(node)
	if !ok {
		return corners, false
	}

	toWorld := host.LocalToWorld(node)
	toLocal := mgl64.Ident4()
	if relativeTo != 0 {
		toLocal = host.LocalToWorld(relativeTo).Inv()
	}

	for i, c := range mesh.Corners() {
		w := toWorld.Mul4x1(c.Vec4(1)).Vec3()
		corners[i] = toLocal.Mul4x1(w.Vec4(1)).Vec3()
	}
	return corners, true
}

// Compute returns the corner-sampled bounds of root and every mesh below it,
// in root's local space.
//
// A hierarchy without meshes, or whose meshes are all still empty, yields a
// geometry_degenerate error; callers retry on a later frame.
func Compute(host scene.Host, root world.NodeID) (world.Bounds, error) {
	var (
		result world.Bounds
		found  bool
	)

	for _, node := range host.Descendants(root) {
		corners, ok := MeshCorners(host, node, root)
		if !ok {
			continue
		}
		if !found {
			result = world.Bounds{Center: corners[0]}
			found = true
		}
		for _, c := range corners {
			result = result.Encapsulate(c)
		}
	}

	if !found {
		return world.Bounds{}, apperrors.GeometryDegeneratef("node %d has no meshes", root)
	}
	if result.IsZero() {
		return result, apperrors.GeometryDegeneratef("meshes below node %d have zero size", root)
	}
	return result, nil
}
