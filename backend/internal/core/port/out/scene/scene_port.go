package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"orrery/backend/internal/world"
)

// Behavior is a runtime component attached to a scene node
type Behavior interface {
	// BehaviorName identifies the kind of behaviour, e.g. "QuantumSocket"
	BehaviorName() string
}

// Awakener is implemented by behaviours that need their initialisation run by the host
type Awakener interface {
	Awake(host Host)
}

// AssetNode is a scene template produced by the asset provider
type AssetNode struct {
	Name     string        `yaml:"name"`
	Position mgl64.Vec3    `yaml:"position,omitempty"`
	Rotation mgl64.Vec3    `yaml:"rotation,omitempty"`
	Scale    float64       `yaml:"scale,omitempty"`
	Mesh     *world.Bounds `yaml:"mesh,omitempty"`
	Tags     []string      `yaml:"tags,omitempty"`
	Children []AssetNode   `yaml:"children,omitempty"`
}

// NodeInfo is a read-only snapshot of a node for inspectors
type NodeInfo struct {
	ID        world.NodeID `json:"id"`
	Name      string       `json:"name"`
	Parent    world.NodeID `json:"parent"`
	Active    bool         `json:"active"`
	Position  [3]float64   `json:"position"`
	Behaviors []string     `json:"behaviors,omitempty"`
}

// Host is the scene graph of the running simulation
type Host interface {
	// CreateNode creates an active node. Parent 0 means scene root.
	CreateNode(name string, parent world.NodeID) world.NodeID
	SetParent(node, parent world.NodeID)
	Parent(node world.NodeID) world.NodeID
	SetActive(node world.NodeID, active bool)
	IsActive(node world.NodeID) bool
	Name(node world.NodeID) string
	Rename(node world.NodeID, name string)
	// Find resolves a slash separated path below root
	Find(root world.NodeID, path string) (world.NodeID, bool)
	// Descendants returns root followed by every node below it, depth first
	Descendants(root world.NodeID) []world.NodeID
	Destroy(node world.NodeID)

	SetLocalPosition(node world.NodeID, pos mgl64.Vec3)
	LocalPosition(node world.NodeID) mgl64.Vec3
	SetLocalRotation(node world.NodeID, rot mgl64.Quat)
	LocalRotation(node world.NodeID) mgl64.Quat
	SetLocalScale(node world.NodeID, scale float64)
	SetWorldPosition(node world.NodeID, pos mgl64.Vec3)
	SetWorldRotation(node world.NodeID, rot mgl64.Quat)
	WorldPosition(node world.NodeID) mgl64.Vec3
	// LocalToWorld is the node's full local-to-world matrix
	LocalToWorld(node world.NodeID) mgl64.Mat4

	// MeshBounds returns local-space bounds of the node's own mesh, ok=false if it has none
	MeshBounds(node world.NodeID) (world.Bounds, bool)
	SetMesh(node world.NodeID, bounds world.Bounds)

	Attach(node world.NodeID, b Behavior)
	Behaviors(node world.NodeID) []Behavior

	// Instantiate copies an asset template below parent and returns its root, inactive
	Instantiate(asset *AssetNode, parent world.NodeID) world.NodeID
}

// Deferrer is the frame-delayed execution primitive of the host
type Deferrer interface {
	RunNextFrame(fn func())
	RunAfterNFrames(n int, fn func())
	RunWhen(predicate func() bool, fn func())
}

// FindBehavior returns the first behaviour named name on node
func FindBehavior(h Host, node world.NodeID, name string) (Behavior, bool) {
	for _, b := range h.Behaviors(node) {
		if b.BehaviorName() == name {
			return b, true
		}
	}
	return nil, false
}

// HasBehaviorInChildren reports whether node or any descendant carries the named behaviour
func HasBehaviorInChildren(h Host, node world.NodeID, name string) bool {
	for _, n := range h.Descendants(node) {
		if _, ok := FindBehavior(h, n, name); ok {
			return true
		}
	}
	return false
}
