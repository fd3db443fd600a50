package entity

import "testing"

func TestCanonicalName(t *testing.T) {
	cases := map[string]string{
		"Foo":              "FOO",
		"hollow's lantern": "VOLCANIC_MOON",
		"Attlerock":        "TIMBER_MOON",
		"Ember Twin":       "CAVE_TWIN",
		"Interloper":       "COMET",
		"  Giant's Deep ":  "GIANTS_DEEP",
	}
	for in, want := range cases {
		if got := CanonicalName(in); got != want {
			t.Errorf("CanonicalName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCompactAndNodeName(t *testing.T) {
	if got := CompactName("Dark  Bramble"); got != "DARKBRAMBLE" {
		t.Errorf("unexpected compact name %q", got)
	}
	if got := NodeName("Giant's Deep"); got != "GiantsDeep_Body" {
		t.Errorf("unexpected node name %q", got)
	}
}

func TestDescriptorPriority(t *testing.T) {
	explicit := 5
	disabled := -1
	cases := []struct {
		name   string
		config BodyConfig
		want   int
	}{
		{"star", BodyConfig{Star: &StarModule{Size: 2000}}, 0},
		{"planet", BodyConfig{}, 1},
		{"moon", BodyConfig{Orbit: OrbitalElements{IsMoon: true}}, 2},
		{"explicit wins over star", BodyConfig{Star: &StarModule{}, Orbit: OrbitalElements{BuildPriority: &explicit}}, 5},
		{"minus one means default", BodyConfig{Orbit: OrbitalElements{IsMoon: true, BuildPriority: &disabled}}, 2},
	}
	for _, tc := range cases {
		cfg := tc.config
		if got := NewBodyDescriptor(&cfg, "test").Priority(); got != tc.want {
			t.Errorf("%s: expected priority %d, got %d", tc.name, tc.want, got)
		}
	}
}
