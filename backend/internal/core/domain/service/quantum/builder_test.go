package quantum

import (
	"io"
	"log"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"orrery/backend/internal/adapter/out/memscene"
	"orrery/backend/internal/core/domain/entity"
	"orrery/backend/internal/core/port/out/scene"
	apperrors "orrery/backend/internal/shared/errors"
	"orrery/backend/internal/world"
)

// manualDeferrer collects RunWhen tasks so tests decide when a frame passes
type manualDeferrer struct {
	waiting []func() bool
	actions []func()
}

func (d *manualDeferrer) RunNextFrame(fn func())           { d.RunWhen(func() bool { return true }, fn) }
func (d *manualDeferrer) RunAfterNFrames(n int, fn func()) { d.RunNextFrame(fn) }
func (d *manualDeferrer) RunWhen(pred func() bool, fn func()) {
	d.waiting = append(d.waiting, pred)
	d.actions = append(d.actions, fn)
}

func (d *manualDeferrer) frame() {
	var waiting []func() bool
	var actions []func()
	for i, pred := range d.waiting {
		if pred() {
			d.actions[i]()
			continue
		}
		waiting = append(waiting, pred)
		actions = append(actions, d.actions[i])
	}
	d.waiting, d.actions = waiting, actions
}

func setup() (*memscene.Scene, *manualDeferrer, *Builder, world.NodeID) {
	s := memscene.New()
	d := &manualDeferrer{}
	b := NewBuilder(s, d, log.New(io.Discard, "", 0))
	sector := s.CreateNode("Sector", s.CreateNode("Foo_Body", 0))
	return s, d, b, sector
}

func makeProps(s *memscene.Scene, parent world.NodeID, n int) []world.NodeID {
	props := make([]world.NodeID, n)
	for i := range props {
		props[i] = s.CreateNode("prop", parent)
		s.SetLocalPosition(props[i], mgl64.Vec3{float64(i * 10), 0, 0})
		s.SetMesh(props[i], world.Bounds{Size: mgl64.Vec3{1, 2, 3}})
	}
	return props
}

func TestBuildQuantumGroup_StatesWithEmptyState(t *testing.T) {
	s, _, b, sector := setup()
	props := makeProps(s, sector, 3)

	handle, err := b.BuildQuantumGroup(entity.QuantumGroupInfo{
		ID:            "rocks",
		Type:          entity.QuantumStates,
		Loop:          true,
		HasEmptyState: true,
	}, sector, props)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if handle.States == nil || handle.Sockets != nil || handle.Shuffle != nil {
		t.Fatal("exactly the state variant must be set")
	}
	states := handle.States.States()
	if len(states) != 4 {
		t.Fatalf("expected 4 states, got %d", len(states))
	}
	if handle.States.InitialState != 0 {
		t.Errorf("expected initial state 0, got %d", handle.States.InitialState)
	}
	if !handle.States.Loop || handle.States.Sequential {
		t.Errorf("flags not carried: loop=%v sequential=%v", handle.States.Loop, handle.States.Sequential)
	}
	if s.Name(handle.Root) != "Quantum States - rocks" || s.Parent(handle.Root) != sector {
		t.Errorf("unexpected root %q under %d", s.Name(handle.Root), s.Parent(handle.Root))
	}
	for _, p := range props {
		if s.Parent(p) != handle.Root {
			t.Errorf("prop %d not reparented under the group root", p)
		}
	}

	empty := states[3]
	if !empty.Empty || s.Name(empty.Node) != "Empty State" {
		t.Fatalf("last state must be the empty state, got %+v", empty)
	}
	box, ok := scene.FindBehavior(s, empty.Node, entity.BehaviorBoxShape)
	if !ok {
		t.Fatal("empty state has no box shape")
	}
	if got := box.(*entity.BoxShape).Size; !got.ApproxEqualThreshold(mgl64.Vec3{1, 2, 3}, 1e-9) {
		t.Errorf("empty state box should clone the first member, got %v", got)
	}
}

func TestBuildQuantumGroup_StatesKeepAuthoredVisibility(t *testing.T) {
	s, _, b, sector := setup()
	props := makeProps(s, sector, 2)
	s.Attach(props[0], entity.ShapeVisibilityTracker{})

	if _, err := b.BuildQuantumGroup(entity.QuantumGroupInfo{ID: "g", Type: entity.QuantumStates}, sector, props); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := scene.FindBehavior(s, props[0], entity.BehaviorBoxShape); ok {
		t.Error("prop with an authored tracker must not get a generated box")
	}
	if _, ok := scene.FindBehavior(s, props[1], entity.BehaviorBoxShape); !ok {
		t.Error("prop without a tracker must get a generated box")
	}
}

func TestBuildQuantumGroup_ShuffleSlotsFixed(t *testing.T) {
	s, _, b, sector := setup()
	props := makeProps(s, sector, 5)

	handle, err := b.BuildQuantumGroup(entity.QuantumGroupInfo{ID: "cards", Type: entity.QuantumShuffle}, sector, props)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	shuffle := handle.Shuffle
	if shuffle == nil || !shuffle.Awakened() {
		t.Fatal("shuffle must be awakened by the builder")
	}
	if len(shuffle.Slots()) != 5 {
		t.Fatalf("expected 5 slots, got %d", len(shuffle.Slots()))
	}

	// a repeated Awake must not create or drop slots
	shuffle.Awake(s)
	if !shuffle.Collapse(s, []int{4, 3, 2, 1, 0}) {
		t.Fatal("collapse with a valid permutation failed")
	}
	if len(shuffle.Slots()) != 5 {
		t.Errorf("slot count changed after collapse: %d", len(shuffle.Slots()))
	}
	if got := s.LocalPosition(props[0]); !got.ApproxEqualThreshold(mgl64.Vec3{40, 0, 0}, 1e-9) {
		t.Errorf("member 0 should move to slot 4, got %v", got)
	}
	if shuffle.Collapse(s, []int{0, 1}) {
		t.Error("collapse with a wrong-size permutation must be rejected")
	}
	for _, perm := range [][]int{{0, 1, 2, 3, 5}, {0, 1, 2, 3, -1}, {0, 0, 2, 3, 4}} {
		if shuffle.Collapse(s, perm) {
			t.Errorf("collapse with %v must be rejected", perm)
		}
	}
	if got := s.LocalPosition(props[0]); !got.ApproxEqualThreshold(mgl64.Vec3{40, 0, 0}, 1e-9) {
		t.Errorf("rejected collapse must not move members, member 0 at %v", got)
	}
	if !s.IsActive(handle.Root) {
		t.Error("shuffle root must end active")
	}
}

func TestBuildQuantumGroup_SocketsShared(t *testing.T) {
	s, _, b, sector := setup()
	props := makeProps(s, sector, 2)

	handle, err := b.BuildQuantumGroup(entity.QuantumGroupInfo{
		ID:   "lamps",
		Type: entity.QuantumSockets,
		Sockets: []entity.QuantumSocketInfo{
			{Position: mgl64.Vec3{0, 1, 0}},
			{Position: mgl64.Vec3{0, 2, 0}, Rotation: mgl64.Vec3{0, 90, 0}},
			{Position: mgl64.Vec3{0, 3, 0}},
		},
	}, sector, props)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	group := handle.Sockets
	if group == nil || len(group.Sockets) != 3 {
		t.Fatalf("expected 3 sockets, got %+v", group)
	}
	if len(group.Objects) != 2 {
		t.Fatalf("expected an object per prop, got %d", len(group.Objects))
	}
	for _, obj := range group.Objects {
		socks := obj.Sockets()
		if len(socks) != 3 {
			t.Fatalf("every member must see all sockets, got %d", len(socks))
		}
		for i := range socks {
			if socks[i] != group.Sockets[i] {
				t.Errorf("socket %d is not shared", i)
			}
		}
		if obj.SocketRoot != handle.Root {
			t.Errorf("socket root mismatch")
		}
	}
	if name := s.Name(group.Sockets[1].Node); name != "Socket 1" {
		t.Errorf("unexpected socket name %q", name)
	}
	if got := s.LocalPosition(group.Sockets[2].Node); got != (mgl64.Vec3{0, 3, 0}) {
		t.Errorf("socket position not applied: %v", got)
	}
	for _, p := range props {
		if !s.IsActive(p) {
			t.Error("props must end active")
		}
		if _, ok := scene.FindBehavior(s, p, entity.BehaviorShapeVisibilityTracker); !ok {
			t.Error("props without a tracker get a bounds tracker")
		}
	}
}

func TestAddBoundsVisibility_LazyFix(t *testing.T) {
	s, d, b, sector := setup()
	prop := s.CreateNode("prop", sector)
	s.SetMesh(prop, world.Bounds{})

	b.AddBoundsVisibility(prop)

	beh, ok := scene.FindBehavior(s, prop, entity.BehaviorBoxShape)
	if !ok {
		t.Fatal("box shape must be attached even before the mesh loads")
	}
	box := beh.(*entity.BoxShape)

	d.frame()
	if box.Size != (mgl64.Vec3{}) {
		t.Fatal("box must stay empty while the mesh is not loaded")
	}

	s.SetMesh(prop, world.Bounds{Center: mgl64.Vec3{0, 1, 0}, Size: mgl64.Vec3{2, 2, 2}})
	d.frame()
	if box.Size != (mgl64.Vec3{2, 2, 2}) || box.Center != (mgl64.Vec3{0, 1, 0}) {
		t.Errorf("box not fixed after load: %+v", box)
	}
	if len(d.waiting) != 0 {
		t.Errorf("fixer must finish after applying, %d pending", len(d.waiting))
	}
}

func TestBuildQuantumGroup_Errors(t *testing.T) {
	s, _, b, sector := setup()

	if _, err := b.BuildQuantumGroup(entity.QuantumGroupInfo{ID: "x", Type: entity.QuantumStates}, sector, nil); apperrors.KindOf(err) != apperrors.KindStageConstruction {
		t.Errorf("empty group should fail as stage_construction, got %v", err)
	}

	props := makeProps(s, sector, 1)
	if _, err := b.BuildQuantumGroup(entity.QuantumGroupInfo{ID: "x", Type: "teleport"}, sector, props); err == nil {
		t.Error("unknown type should fail")
	}
}
