// Package memscene is an in-memory scene graph implementing the scene host port.
package memscene

import (
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"orrery/backend/internal/core/port/out/scene"
	"orrery/backend/internal/world"
)

// Tag is a behaviour produced from an asset tag, e.g. a pre-authored visibility tracker
type Tag string

func (t Tag) BehaviorName() string { return string(t) }

type node struct {
	id        world.NodeID
	name      string
	parent    world.NodeID
	children  []world.NodeID
	active    bool
	position  mgl64.Vec3
	rotation  mgl64.Quat
	scale     float64
	mesh      *world.Bounds
	behaviors []scene.Behavior
}

// Scene is safe for concurrent readers; the builder itself only writes from the frame loop
type Scene struct {
	nodes  map[world.NodeID]*node
	roots  []world.NodeID
	nextID world.NodeID
	mu     sync.RWMutex
}

func New() *Scene {
	return &Scene{
		nodes: make(map[world.NodeID]*node),
	}
}

var _ scene.Host = (*Scene)(nil)

func (s *Scene) CreateNode(name string, parent world.NodeID) world.NodeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(name, parent, true)
}

func (s *Scene) createLocked(name string, parent world.NodeID, active bool) world.NodeID {
	s.nextID++
	n := &node{
		id:       s.nextID,
		name:     name,
		active:   active,
		rotation: mgl64.QuatIdent(),
		scale:    1,
	}
	s.nodes[n.id] = n
	s.attachLocked(n, parent)
	return n.id
}

func (s *Scene) attachLocked(n *node, parent world.NodeID) {
	if p, ok := s.nodes[parent]; ok {
		n.parent = parent
		p.children = append(p.children, n.id)
		return
	}
	n.parent = 0
	s.roots = append(s.roots, n.id)
}

func (s *Scene) detachLocked(n *node) {
	if p, ok := s.nodes[n.parent]; ok {
		p.children = removeID(p.children, n.id)
		return
	}
	s.roots = removeID(s.roots, n.id)
}

func removeID(ids []world.NodeID, id world.NodeID) []world.NodeID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// SetParent keeps the node's local transform, like reparenting with worldPositionStays=false
func (s *Scene) SetParent(id, parent world.NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok || id == parent {
		return
	}
	s.detachLocked(n)
	s.attachLocked(n, parent)
}

func (s *Scene) Parent(id world.NodeID) world.NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n, ok := s.nodes[id]; ok {
		return n.parent
	}
	return 0
}

func (s *Scene) SetActive(id world.NodeID, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.nodes[id]; ok {
		n.active = active
	}
}

func (s *Scene) IsActive(id world.NodeID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	return ok && n.active
}

func (s *Scene) Name(id world.NodeID) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n, ok := s.nodes[id]; ok {
		return n.name
	}
	return ""
}

func (s *Scene) Rename(id world.NodeID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.nodes[id]; ok {
		n.name = name
	}
}

// Find walks a slash separated path of child names starting below root.
// Root 0 searches from the top-level nodes.
func (s *Scene) Find(root world.NodeID, path string) (world.NodeID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	current := root
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if part == "" {
			continue
		}
		next, ok := s.childByNameLocked(current, part)
		if !ok {
			return 0, false
		}
		current = next
	}
	if current == 0 {
		return 0, false
	}
	return current, true
}

func (s *Scene) childByNameLocked(parent world.NodeID, name string) (world.NodeID, bool) {
	children := s.roots
	if p, ok := s.nodes[parent]; ok {
		children = p.children
	} else if parent != 0 {
		return 0, false
	}
	for _, c := range children {
		if s.nodes[c].name == name {
			return c, true
		}
	}
	return 0, false
}

func (s *Scene) Descendants(root world.NodeID) []world.NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.nodes[root]; !ok {
		return nil
	}
	var out []world.NodeID
	var walk func(id world.NodeID)
	walk = func(id world.NodeID) {
		out = append(out, id)
		for _, c := range s.nodes[id].children {
			walk(c)
		}
	}
	walk(root)
	return out
}

// Destroy removes the node and everything below it
func (s *Scene) Destroy(id world.NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		return
	}
	s.detachLocked(n)
	var drop func(id world.NodeID)
	drop = func(id world.NodeID) {
		for _, c := range s.nodes[id].children {
			drop(c)
		}
		delete(s.nodes, id)
	}
	drop(id)
}

func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

func (s *Scene) SetLocalPosition(id world.NodeID, pos mgl64.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.nodes[id]; ok {
		n.position = pos
	}
}

func (s *Scene) LocalPosition(id world.NodeID) mgl64.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n, ok := s.nodes[id]; ok {
		return n.position
	}
	return mgl64.Vec3{}
}

func (s *Scene) SetLocalRotation(id world.NodeID, rot mgl64.Quat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.nodes[id]; ok {
		n.rotation = rot.Normalize()
	}
}

func (s *Scene) LocalRotation(id world.NodeID) mgl64.Quat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n, ok := s.nodes[id]; ok {
		return n.rotation
	}
	return mgl64.QuatIdent()
}

func (s *Scene) SetLocalScale(id world.NodeID, scale float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.nodes[id]; ok && scale != 0 {
		n.scale = scale
	}
}

func (s *Scene) SetWorldPosition(id world.NodeID, pos mgl64.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		return
	}
	parentInv := s.localToWorldLocked(n.parent).Inv()
	n.position = parentInv.Mul4x1(pos.Vec4(1)).Vec3()
}

func (s *Scene) SetWorldRotation(id world.NodeID, rot mgl64.Quat) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		return
	}
	n.rotation = s.worldRotationLocked(n.parent).Inverse().Mul(rot).Normalize()
}

func (s *Scene) WorldPosition(id world.NodeID) mgl64.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.localToWorldLocked(id).Col(3).Vec3()
}

func (s *Scene) LocalToWorld(id world.NodeID) mgl64.Mat4 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.localToWorldLocked(id)
}

func (s *Scene) localToWorldLocked(id world.NodeID) mgl64.Mat4 {
	n, ok := s.nodes[id]
	if !ok {
		return mgl64.Ident4()
	}
	local := mgl64.Translate3D(n.position.X(), n.position.Y(), n.position.Z()).
		Mul4(n.rotation.Mat4()).
		Mul4(mgl64.Scale3D(n.scale, n.scale, n.scale))
	return s.localToWorldLocked(n.parent).Mul4(local)
}

func (s *Scene) worldRotationLocked(id world.NodeID) mgl64.Quat {
	n, ok := s.nodes[id]
	if !ok {
		return mgl64.QuatIdent()
	}
	return s.worldRotationLocked(n.parent).Mul(n.rotation)
}

func (s *Scene) MeshBounds(id world.NodeID) (world.Bounds, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok || n.mesh == nil {
		return world.Bounds{}, false
	}
	return *n.mesh, true
}

// SetMesh gives the node a mesh; zero-size bounds model a mesh that is not loaded yet
func (s *Scene) SetMesh(id world.NodeID, bounds world.Bounds) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.nodes[id]; ok {
		b := bounds
		n.mesh = &b
	}
}

// Attach adds a behaviour. Awake is never called here; callers that need it run it themselves.
func (s *Scene) Attach(id world.NodeID, b scene.Behavior) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.nodes[id]; ok {
		n.behaviors = append(n.behaviors, b)
	}
}

func (s *Scene) Behaviors(id world.NodeID) []scene.Behavior {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return nil
	}
	out := make([]scene.Behavior, len(n.behaviors))
	copy(out, n.behaviors)
	return out
}

// Instantiate copies the template below parent. The copy's root starts inactive.
func (s *Scene) Instantiate(asset *scene.AssetNode, parent world.NodeID) world.NodeID {
	if asset == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	root := s.instantiateLocked(asset, parent)
	s.nodes[root].active = false
	return root
}

func (s *Scene) instantiateLocked(asset *scene.AssetNode, parent world.NodeID) world.NodeID {
	id := s.createLocked(asset.Name, parent, true)
	n := s.nodes[id]
	n.position = asset.Position
	n.rotation = world.EulerToQuat(asset.Rotation)
	if asset.Scale != 0 {
		n.scale = asset.Scale
	}
	if asset.Mesh != nil {
		b := *asset.Mesh
		n.mesh = &b
	}
	for _, tag := range asset.Tags {
		n.behaviors = append(n.behaviors, Tag(tag))
	}
	for i := range asset.Children {
		s.instantiateLocked(&asset.Children[i], id)
	}
	return id
}

// Snapshot describes root and every node below it
func (s *Scene) Snapshot(root world.NodeID) []scene.NodeInfo {
	ids := s.Descendants(root)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]scene.NodeInfo, 0, len(ids))
	for _, id := range ids {
		n := s.nodes[id]
		info := scene.NodeInfo{
			ID:       n.id,
			Name:     n.name,
			Parent:   n.parent,
			Active:   n.active,
			Position: [3]float64(n.position),
		}
		for _, b := range n.behaviors {
			info.Behaviors = append(info.Behaviors, b.BehaviorName())
		}
		out = append(out, info)
	}
	return out
}
