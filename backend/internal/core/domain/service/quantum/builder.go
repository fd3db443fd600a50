// Package quantum wires decorative props into quantum groups.
//
// The builder only creates the scene structure and attaches the runtime behaviours.
// Socket selection, state exclusivity and shuffle permutation belong to those behaviours.
package quantum

import (
	"fmt"
	"log"

	"orrery/backend/internal/core/domain/entity"
	"orrery/backend/internal/core/domain/service/bounds"
	"orrery/backend/internal/core/port/in/bodyloading"
	"orrery/backend/internal/core/port/out/scene"
	apperrors "orrery/backend/internal/shared/errors"
	"orrery/backend/internal/world"
)

const stageName = "quantum"

// Builder implements bodyloading.QuantumPort on top of a scene host
type Builder struct {
	host     scene.Host
	deferrer scene.Deferrer
	logger   *log.Logger
}

var _ bodyloading.QuantumPort = (*Builder)(nil)

// NewBuilder creates a builder. A nil deferrer means lazy bounds are never retried.
func NewBuilder(host scene.Host, deferrer scene.Deferrer, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{
		host:     host,
		deferrer: deferrer,
		logger:   logger,
	}
}

// BuildQuantumGroup creates the group root below parent (normally the body's sector)
// and wires members into the variant selected by group.Type.
func (b *Builder) BuildQuantumGroup(group entity.QuantumGroupInfo, parent world.NodeID, members []world.NodeID) (*entity.QuantumHandle, error) {
	if len(members) == 0 {
		return nil, apperrors.StageConstructionf("", stageName, "quantum group %q has no members", group.ID)
	}

	handle := &entity.QuantumHandle{
		ID:            group.ID,
		Type:          group.Type,
		Members:       append([]world.NodeID(nil), members...),
		Loop:          group.Loop,
		Sequential:    group.Sequential,
		HasEmptyState: group.HasEmptyState,
	}

	switch group.Type {
	case entity.QuantumSockets:
		handle.Root, handle.Sockets = b.makeSocketGroup(group, parent, members)
	case entity.QuantumStates:
		handle.Root, handle.States = b.makeStateGroup(group, parent, members)
	case entity.QuantumShuffle:
		handle.Root, handle.Shuffle = b.makeShuffleGroup(group, parent, members)
	default:
		return nil, apperrors.StageConstructionf("", stageName, "unknown quantum group type %q for group %q", group.Type, group.ID)
	}

	b.logger.Printf("[Quantum] Group %s (%s) wired with %d members", group.ID, group.Type, len(members))
	return handle, nil
}

func (b *Builder) makeSocketGroup(group entity.QuantumGroupInfo, parent world.NodeID, members []world.NodeID) (world.NodeID, *entity.SocketGroup) {
	root := b.host.CreateNode("Quantum Sockets - "+group.ID, parent)

	sockets := make([]*entity.QuantumSocket, len(group.Sockets))
	for i, info := range group.Sockets {
		node := b.host.CreateNode(fmt.Sprintf("Socket %d", i), root)
		b.host.SetActive(node, false)
		b.host.SetLocalPosition(node, info.Position)
		b.host.SetLocalRotation(node, world.EulerToQuat(info.Rotation))

		sockets[i] = &entity.QuantumSocket{
			Index:    i,
			Node:     node,
			Position: info.Position,
			Rotation: world.EulerToQuat(info.Rotation),
		}
		b.host.Attach(node, sockets[i])
		b.host.SetActive(node, true)
	}

	result := &entity.SocketGroup{Sockets: sockets}
	for _, prop := range members {
		b.host.SetActive(prop, false)
		obj := entity.NewSocketedQuantumObject(root, sockets)
		b.host.Attach(prop, obj)
		result.Objects = append(result.Objects, obj)

		if !scene.HasBehaviorInChildren(b.host, prop, entity.BehaviorShapeVisibilityTracker) {
			b.AddBoundsVisibility(prop)
		}
		b.host.SetActive(prop, true)
	}
	return root, result
}

func (b *Builder) makeStateGroup(group entity.QuantumGroupInfo, parent world.NodeID, members []world.NodeID) (world.NodeID, *entity.MultiStateQuantumObject) {
	root := b.host.CreateNode("Quantum States - "+group.ID, parent)

	states := make([]*entity.QuantumState, 0, len(members)+1)
	for _, prop := range members {
		b.host.SetParent(prop, root)
		state := &entity.QuantumState{Node: prop, Probability: 1}
		b.host.Attach(prop, state)
		states = append(states, state)

		if scene.HasBehaviorInChildren(b.host, prop, entity.BehaviorShapeVisibilityTracker) {
			continue
		}
		b.AddBoundsVisibility(prop)
	}

	if group.HasEmptyState {
		states = append(states, b.makeEmptyState(root, members[0]))
	}

	b.host.SetActive(root, false)
	multi := entity.NewMultiStateQuantumObject(group.Loop, group.Sequential, states)
	b.host.Attach(root, multi)
	b.host.SetActive(root, true)
	return root, multi
}

// makeEmptyState adds a geometry-less state whose box is cloned from template's bounds
func (b *Builder) makeEmptyState(root, template world.NodeID) *entity.QuantumState {
	empty := b.host.CreateNode("Empty State", root)
	state := &entity.QuantumState{Node: empty, Probability: 1, Empty: true}
	b.host.Attach(empty, state)

	box := &entity.BoxShape{}
	b.host.Attach(empty, box)
	b.host.Attach(empty, entity.ShapeVisibilityTracker{})

	bb, err := bounds.Compute(b.host, template)
	if err == nil {
		box.Center, box.Size = bb.Center, bb.Size
		return state
	}

	b.logger.Printf("[Quantum] WARNING: empty state bounds deferred: %v", err)
	if b.deferrer == nil {
		return state
	}
	b.deferrer.RunWhen(func() bool {
		if len(b.host.Descendants(template)) == 0 {
			return true
		}
		_, err := bounds.Compute(b.host, template)
		return err == nil
	}, func() {
		if bb, err := bounds.Compute(b.host, template); err == nil {
			box.Center, box.Size = bb.Center, bb.Size
		}
	})
	return state
}

func (b *Builder) makeShuffleGroup(group entity.QuantumGroupInfo, parent world.NodeID, members []world.NodeID) (world.NodeID, *entity.QuantumShuffleObject) {
	root := b.host.CreateNode("Quantum Shuffle - "+group.ID, parent)
	b.host.SetActive(root, false)
	for _, prop := range members {
		b.host.SetParent(prop, root)
	}

	shuffle := entity.NewQuantumShuffleObject(members)
	b.host.Attach(root, shuffle)
	// The host does not run Awake for behaviours attached this way, so the slots
	// would never be captured without this call.
	shuffle.Awake(b.host)

	b.AddBoundsVisibility(root)
	b.host.SetActive(root, true)
	return root, shuffle
}

// AddBoundsVisibility gives every mesh below node a box shape and a visibility tracker.
// Boxes of meshes that are not loaded yet are filled in once their bounds become non-zero.
func (b *Builder) AddBoundsVisibility(node world.NodeID) {
	for _, n := range b.host.Descendants(node) {
		mesh, ok := b.host.MeshBounds(n)
		if !ok {
			continue
		}

		box := &entity.BoxShape{}
		b.host.Attach(n, box)
		b.host.Attach(n, entity.ShapeVisibilityTracker{})

		if !mesh.IsZero() {
			box.Center, box.Size = mesh.Center, mesh.Size
			continue
		}
		if b.deferrer == nil {
			continue
		}

		target := n
		b.deferrer.RunWhen(func() bool {
			m, ok := b.host.MeshBounds(target)
			return !ok || !m.IsZero()
		}, func() {
			if m, ok := b.host.MeshBounds(target); ok {
				box.Center, box.Size = m.Center, m.Size
			}
		})
	}
}
