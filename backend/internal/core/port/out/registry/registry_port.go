package registry

import (
	"orrery/backend/internal/world"
)

// ObjectRegistry is the set of named bodies present in the world
type ObjectRegistry interface {
	Lookup(id string) (*world.Body, bool)
	RegisterCustom(body *world.Body)
	Remove(id string)
}
