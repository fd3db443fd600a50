package entity

import "strings"

// legacyAliases maps names of bodies that were renamed in the base world to their current id
var legacyAliases = map[string]string{
	"ATTLEROCK":       "TIMBER_MOON",
	"HOLLOWS_LANTERN": "VOLCANIC_MOON",
	"ASH_TWIN":        "TOWER_TWIN",
	"EMBER_TWIN":      "CAVE_TWIN",
	"INTERLOPER":      "COMET",
}

// CanonicalName is the registry id for a configured name: upper case, spaces become
// underscores, apostrophes are dropped, then legacy aliases are applied.
func CanonicalName(name string) string {
	id := strings.ToUpper(strings.TrimSpace(name))
	id = strings.ReplaceAll(id, " ", "_")
	id = strings.ReplaceAll(id, "'", "")
	if alias, ok := legacyAliases[id]; ok {
		return alias
	}
	return id
}

// CompactName is the fallback registry id: upper case with all whitespace and apostrophes removed
func CompactName(name string) string {
	id := strings.ToUpper(name)
	id = strings.Join(strings.Fields(id), "")
	return strings.ReplaceAll(id, "'", "")
}

// NodeName is the scene node name of a body's root
func NodeName(name string) string {
	return strings.ReplaceAll(strings.ReplaceAll(name, " ", ""), "'", "") + "_Body"
}
