package configfile

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"orrery/backend/internal/core/domain/entity"
)

const fooYAML = `
name: Foo
orbit:
  semiMajorAxis: 1000
  eccentricity: 0.5
  primaryBody: Sun
  showOrbitLine: true
base:
  surfaceSize: 100
  surfaceGravity: 10
  gravityFallOff: linear
atmosphere:
  size: 150
  hasRain: true
props:
  details:
    - assetBundle: props
      path: rock
      position: [0, 100, 0]
      quantumGroupID: rocks
  quantumGroups:
    - id: rocks
      type: states
      hasEmptyState: true
volumes:
  hazardVolumes:
    - type: DARKMATTER
      radius: 20
      position: [0, 90, 0]
`

type MockLoadPort struct {
	scheduled []*entity.BodyDescriptor
}

func (m *MockLoadPort) ScheduleLoad(d ...*entity.BodyDescriptor) { m.scheduled = append(m.scheduled, d...) }
func (m *MockLoadPort) EnqueueAdditional(d *entity.BodyDescriptor) {}

func newTestLoader() *Loader {
	return NewLoader("orrery", log.New(io.Discard, "", 0))
}

func TestDecode_FullDocument(t *testing.T) {
	cfg, err := newTestLoader().Decode([]byte(fooYAML))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if cfg.Name != "Foo" || cfg.Orbit.SemiMajorAxis != 1000 || cfg.Orbit.PrimaryBody != "Sun" {
		t.Errorf("Orbit not decoded: %+v", cfg.Orbit)
	}
	if cfg.Atmosphere == nil || !cfg.Atmosphere.HasRain {
		t.Error("Atmosphere not decoded")
	}
	if cfg.Ring != nil || cfg.Star != nil {
		t.Error("Absent modules should stay nil")
	}
	if len(cfg.Props.Details) != 1 || cfg.Props.Details[0].Position[1] != 100 {
		t.Errorf("Details not decoded: %+v", cfg.Props)
	}
	if g := cfg.Props.QuantumGroups[0]; g.Type != entity.QuantumStates || !g.HasEmptyState {
		t.Errorf("Quantum group not decoded: %+v", g)
	}
	hv := cfg.Volumes.HazardVolumes[0]
	if hv.Type != entity.HazardDarkMatter || hv.Position == nil || hv.Position[1] != 90 {
		t.Errorf("Hazard volume not decoded: %+v", hv)
	}
}

func TestDecode_Rejects(t *testing.T) {
	l := newTestLoader()
	if _, err := l.Decode([]byte("orbit: {semiMajorAxis: 10}")); err == nil {
		t.Error("Expected a missing name to be rejected")
	}
	if _, err := l.Decode([]byte("name: Foo\nunknownModule: 1")); err == nil {
		t.Error("Expected an unknown field to be rejected")
	}
}

func TestLoadDir_SkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a_foo.yaml":      fooYAML,
		"b_bar.yml":       "name: Bar\norbit: {isMoon: true}",
		"c_broken.yaml":   "name: [",
		"notes.txt":       "ignored",
		"moons/dust.yaml": "name: Dust",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		os.MkdirAll(filepath.Dir(path), 0o755)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	port := &MockLoadPort{}
	n, err := newTestLoader().ScheduleDir(dir, port)
	if err != nil {
		t.Fatalf("ScheduleDir failed: %v", err)
	}
	if n != 3 || len(port.scheduled) != 3 {
		t.Fatalf("Expected 3 bodies, got %d", n)
	}
	want := []string{"Foo", "Bar", "Dust"}
	for i, d := range port.scheduled {
		if d.Name() != want[i] {
			t.Errorf("Body %d: expected %s, got %s", i, want[i], d.Name())
		}
		if d.Owner != "orrery" || d.State != entity.StatePending {
			t.Errorf("Body %d not wrapped as a pending descriptor", i)
		}
	}
}

func TestLoadDir_MissingDirectory(t *testing.T) {
	if _, err := newTestLoader().LoadDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("Expected an error for a missing directory")
	}
}
