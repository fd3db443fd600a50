package entity

import (
	"github.com/go-gl/mathgl/mgl64"

	"orrery/backend/internal/core/port/out/scene"
	"orrery/backend/internal/world"
)

// Behaviour names attached by the quantum builder
const (
	BehaviorQuantumSocket          = "QuantumSocket"
	BehaviorSocketedQuantumObject  = "SocketedQuantumObject"
	BehaviorQuantumState           = "QuantumState"
	BehaviorMultiStateQuantum      = "MultiStateQuantumObject"
	BehaviorQuantumShuffle         = "QuantumShuffleObject"
	BehaviorBoxShape               = "BoxShape"
	BehaviorShapeVisibilityTracker = "ShapeVisibilityTracker"
)

// QuantumSocket is one slot a socketed prop may occupy
type QuantumSocket struct {
	Index    int
	Node     world.NodeID
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

func (s *QuantumSocket) BehaviorName() string { return BehaviorQuantumSocket }

// SocketedQuantumObject is attached to every member of a socket group.
// All members share the same socket array.
type SocketedQuantumObject struct {
	SocketRoot world.NodeID
	Prebuilt   bool
	sockets    []*QuantumSocket
}

func NewSocketedQuantumObject(root world.NodeID, sockets []*QuantumSocket) *SocketedQuantumObject {
	return &SocketedQuantumObject{SocketRoot: root, Prebuilt: true, sockets: sockets}
}

func (o *SocketedQuantumObject) BehaviorName() string { return BehaviorSocketedQuantumObject }

// Sockets returns a copy of the socket list; the list itself is fixed at construction
func (o *SocketedQuantumObject) Sockets() []*QuantumSocket {
	out := make([]*QuantumSocket, len(o.sockets))
	copy(out, o.sockets)
	return out
}

// QuantumState is one state node of a multi-state group
type QuantumState struct {
	Node        world.NodeID
	Probability float64
	Empty       bool
}

func (s *QuantumState) BehaviorName() string { return BehaviorQuantumState }

// MultiStateQuantumObject sits on the root of a discrete-state group
type MultiStateQuantumObject struct {
	Loop         bool
	Sequential   bool
	InitialState int
	states       []*QuantumState
}

func NewMultiStateQuantumObject(loop, sequential bool, states []*QuantumState) *MultiStateQuantumObject {
	return &MultiStateQuantumObject{Loop: loop, Sequential: sequential, InitialState: 0, states: states}
}

func (m *MultiStateQuantumObject) BehaviorName() string { return BehaviorMultiStateQuantum }

func (m *MultiStateQuantumObject) States() []*QuantumState {
	out := make([]*QuantumState, len(m.states))
	copy(out, m.states)
	return out
}

// QuantumShuffleObject permutes the placement of its members on every collapse
type QuantumShuffleObject struct {
	shuffled []world.NodeID
	slots    []mgl64.Vec3
	awake    bool
}

func NewQuantumShuffleObject(members []world.NodeID) *QuantumShuffleObject {
	shuffled := make([]world.NodeID, len(members))
	copy(shuffled, members)
	return &QuantumShuffleObject{shuffled: shuffled}
}

func (q *QuantumShuffleObject) BehaviorName() string { return BehaviorQuantumShuffle }

// Awake records the local position of every member as the permutable slot set.
// Repeated calls are no-ops so a host that does run it is harmless.
func (q *QuantumShuffleObject) Awake(host scene.Host) {
	if q.awake {
		return
	}
	q.slots = make([]mgl64.Vec3, len(q.shuffled))
	for i, node := range q.shuffled {
		q.slots[i] = host.LocalPosition(node)
	}
	q.awake = true
}

func (q *QuantumShuffleObject) Awakened() bool { return q.awake }

func (q *QuantumShuffleObject) Members() []world.NodeID {
	out := make([]world.NodeID, len(q.shuffled))
	copy(out, q.shuffled)
	return out
}

func (q *QuantumShuffleObject) Slots() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(q.slots))
	copy(out, q.slots)
	return out
}

// Collapse places member i at slot perm[i]. It reports false and moves nothing unless perm
// is a permutation of the slot indices.
func (q *QuantumShuffleObject) Collapse(host scene.Host, perm []int) bool {
	if !q.awake || len(perm) != len(q.slots) {
		return false
	}
	seen := make([]bool, len(perm))
	for _, p := range perm {
		if p < 0 || p >= len(perm) || seen[p] {
			return false
		}
		seen[p] = true
	}
	for i, node := range q.shuffled {
		host.SetLocalPosition(node, q.slots[perm[i]])
	}
	return true
}

// BoxShape is a box volume in the node's local space
type BoxShape struct {
	Center mgl64.Vec3
	Size   mgl64.Vec3
}

func (b *BoxShape) BehaviorName() string { return BehaviorBoxShape }

// ShapeVisibilityTracker marks a node whose shape drives quantum visibility checks
type ShapeVisibilityTracker struct{}

func (ShapeVisibilityTracker) BehaviorName() string { return BehaviorShapeVisibilityTracker }

// QuantumHandle is the result of wiring a quantum group. Exactly one of
// Sockets, States or Shuffle is set, matching Type.
type QuantumHandle struct {
	ID            string
	Type          QuantumGroupType
	Root          world.NodeID
	Members       []world.NodeID
	Loop          bool
	Sequential    bool
	HasEmptyState bool

	Sockets *SocketGroup
	States  *MultiStateQuantumObject
	Shuffle *QuantumShuffleObject
}

// SocketGroup is the socket variant's payload
type SocketGroup struct {
	Sockets []*QuantumSocket
	Objects []*SocketedQuantumObject
}
