package memscene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"orrery/backend/internal/core/port/out/scene"
	"orrery/backend/internal/world"
)

const eps = 1e-9

func TestScene_HierarchyAndFind(t *testing.T) {
	s := New()
	body := s.CreateNode("Foo_Body", 0)
	sector := s.CreateNode("Sector", body)
	water := s.CreateNode("Water", sector)

	if got, ok := s.Find(body, "Sector/Water"); !ok || got != water {
		t.Fatalf("expected to find water node %d, got %d (%v)", water, got, ok)
	}
	if got, ok := s.Find(0, "Foo_Body/Sector"); !ok || got != sector {
		t.Errorf("expected top-level lookup to resolve sector, got %d", got)
	}
	if _, ok := s.Find(body, "Sector/Lava"); ok {
		t.Error("missing path must not resolve")
	}

	d := s.Descendants(body)
	if len(d) != 3 || d[0] != body || d[1] != sector || d[2] != water {
		t.Errorf("unexpected descendants order: %v", d)
	}
	if !s.IsActive(sector) {
		t.Error("created nodes start active")
	}
}

func TestScene_WorldTransforms(t *testing.T) {
	s := New()
	parent := s.CreateNode("parent", 0)
	child := s.CreateNode("child", parent)

	s.SetLocalPosition(parent, mgl64.Vec3{10, 0, 0})
	s.SetLocalRotation(parent, mgl64.QuatRotate(mgl64.DegToRad(90), world.Up))
	s.SetLocalPosition(child, mgl64.Vec3{0, 0, 1})

	// +Z rotated 90 degrees about up becomes +X
	want := mgl64.Vec3{11, 0, 0}
	if got := s.WorldPosition(child); !got.ApproxEqualThreshold(want, eps) {
		t.Errorf("expected world position %v, got %v", want, got)
	}

	s.SetWorldPosition(child, mgl64.Vec3{10, 5, 0})
	if got := s.LocalPosition(child); !got.ApproxEqualThreshold(mgl64.Vec3{0, 5, 0}, eps) {
		t.Errorf("world position should convert to local (0,5,0), got %v", got)
	}
}

func TestScene_DestroyRemovesSubtree(t *testing.T) {
	s := New()
	root := s.CreateNode("root", 0)
	s.CreateNode("a", root)
	s.CreateNode("b", root)

	s.Destroy(root)

	if s.Len() != 0 {
		t.Errorf("expected empty scene, %d nodes left", s.Len())
	}
	if _, ok := s.Find(0, "root"); ok {
		t.Error("destroyed root must not be found")
	}
}

func TestScene_InstantiateTemplate(t *testing.T) {
	s := New()
	parent := s.CreateNode("Sector", 0)
	asset := &scene.AssetNode{
		Name:     "Tree",
		Position: mgl64.Vec3{1, 2, 3},
		Children: []scene.AssetNode{
			{Name: "Trunk", Mesh: &world.Bounds{Size: mgl64.Vec3{1, 4, 1}}, Tags: []string{"ShapeVisibilityTracker"}},
		},
	}

	root := s.Instantiate(asset, parent)

	if s.IsActive(root) {
		t.Error("instantiated root must start inactive")
	}
	if s.Parent(root) != parent {
		t.Errorf("expected parent %d, got %d", parent, s.Parent(root))
	}
	trunk, ok := s.Find(root, "Trunk")
	if !ok {
		t.Fatal("child Trunk not instantiated")
	}
	if b, ok := s.MeshBounds(trunk); !ok || b.Size[1] != 4 {
		t.Errorf("mesh not copied: %v %v", b, ok)
	}
	if !scene.HasBehaviorInChildren(s, root, "ShapeVisibilityTracker") {
		t.Error("asset tags should become behaviours")
	}
}

func TestScene_Reparent(t *testing.T) {
	s := New()
	a := s.CreateNode("a", 0)
	b := s.CreateNode("b", 0)
	c := s.CreateNode("c", a)

	s.SetParent(c, b)

	if s.Parent(c) != b {
		t.Errorf("expected parent %d, got %d", b, s.Parent(c))
	}
	if len(s.Descendants(a)) != 1 {
		t.Errorf("old parent still lists the child: %v", s.Descendants(a))
	}
}

func TestScene_Snapshot(t *testing.T) {
	s := New()
	body := s.CreateNode("Foo_Body", 0)
	sector := s.CreateNode("Sector", body)
	s.SetLocalPosition(sector, mgl64.Vec3{1, 2, 3})
	s.Attach(sector, Tag("Sector"))
	s.SetActive(sector, false)

	nodes := s.Snapshot(body)
	if len(nodes) != 2 || nodes[0].ID != body || nodes[1].ID != sector {
		t.Fatalf("unexpected snapshot %+v", nodes)
	}
	got := nodes[1]
	if got.Parent != body || got.Active || got.Position != [3]float64{1, 2, 3} {
		t.Errorf("unexpected sector info %+v", got)
	}
	if len(got.Behaviors) != 1 || got.Behaviors[0] != "Sector" {
		t.Errorf("expected behaviour names, got %v", got.Behaviors)
	}
}
