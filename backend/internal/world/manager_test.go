package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestRegistry_RegisterLookupRemove(t *testing.T) {
	r := NewRegistry()
	r.Register(&Body{ID: "SUN", Name: "Sun"})
	r.RegisterCustom(&Body{ID: "FOO", Name: "Foo"})

	sun, ok := r.Lookup("SUN")
	if !ok || sun.Custom {
		t.Fatalf("expected pre-existing SUN, got %+v (found %v)", sun, ok)
	}
	foo, ok := r.Lookup("FOO")
	if !ok || !foo.Custom {
		t.Fatalf("expected custom FOO, got %+v (found %v)", foo, ok)
	}

	all := r.All()
	if len(all) != 2 || all[0].ID != "FOO" || all[1].ID != "SUN" {
		t.Errorf("All must be sorted by id, got %v", all)
	}

	r.Remove("FOO")
	if _, ok := r.Lookup("FOO"); ok {
		t.Error("FOO should be gone after Remove")
	}
	r.Remove("missing")
	if r.Len() != 1 {
		t.Errorf("expected 1 body, got %d", r.Len())
	}
}

func TestBounds_Encapsulate(t *testing.T) {
	b := Bounds{Center: mgl64.Vec3{1, 1, 1}}
	b = b.Encapsulate(mgl64.Vec3{-1, 3, 1})

	if !b.Min().ApproxEqual(mgl64.Vec3{-1, 1, 1}) {
		t.Errorf("unexpected min %v", b.Min())
	}
	if !b.Max().ApproxEqual(mgl64.Vec3{1, 3, 1}) {
		t.Errorf("unexpected max %v", b.Max())
	}
	if b.IsZero() {
		t.Error("grown bounds must not be zero")
	}
}

func TestGravityVolume_Mu(t *testing.T) {
	inverse := &GravityVolume{SurfaceAcceleration: 10, SurfaceRadius: 100, Falloff: FalloffInverseSquared}
	if got := inverse.Mu(); got != 100000 {
		t.Errorf("inverse squared mu: expected 100000, got %v", got)
	}
	linear := &GravityVolume{SurfaceAcceleration: 10, SurfaceRadius: 100, Falloff: FalloffLinear}
	if got := linear.Mu(); got != 1000 {
		t.Errorf("linear mu: expected 1000, got %v", got)
	}
	var none *GravityVolume
	if none.Mu() != 0 {
		t.Error("nil gravity must have zero mu")
	}
}
