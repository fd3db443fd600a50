package entity

import (
	"orrery/backend/internal/world"
)

// LifecycleState of a body descriptor
type LifecycleState int

const (
	StatePending LifecycleState = iota
	StateBuilding
	StateBuilt
	StateDestroyed
	StateFailed
)

func (s LifecycleState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateBuilding:
		return "building"
	case StateBuilt:
		return "built"
	case StateDestroyed:
		return "destroyed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// BodyDescriptor is one body queued for construction
type BodyDescriptor struct {
	Config *BodyConfig
	// Owner is the asset namespace the body's bundles are resolved against
	Owner  string
	Object *world.Body
	State  LifecycleState
}

// NewBodyDescriptor wraps a configuration in a pending descriptor
func NewBodyDescriptor(config *BodyConfig, owner string) *BodyDescriptor {
	return &BodyDescriptor{
		Config: config,
		Owner:  owner,
		State:  StatePending,
	}
}

// Name returns the configured name, empty for a descriptor without config
func (d *BodyDescriptor) Name() string {
	if d == nil || d.Config == nil {
		return ""
	}
	return d.Config.Name
}

// Priority is the build order key: explicit priority wins, otherwise stars 0, planets 1, moons 2.
// A descriptor without config sorts as a planet.
func (d *BodyDescriptor) Priority() int {
	if d == nil || d.Config == nil {
		return 1
	}
	c := d.Config
	if c.Orbit.BuildPriority != nil && *c.Orbit.BuildPriority != -1 {
		return *c.Orbit.BuildPriority
	}
	if c.Star != nil {
		return 0
	}
	if c.Orbit.IsMoon {
		return 2
	}
	return 1
}
