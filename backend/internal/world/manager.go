package world

import (
	"sort"
	"sync"
)

// Registry holds every body present in the running world, keyed by canonical id
type Registry struct {
	bodies map[string]*Body
	mu     sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		bodies: make(map[string]*Body),
	}
}

// Register adds a body that was already part of the world
func (r *Registry) Register(body *Body) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bodies[body.ID] = body
}

// RegisterCustom adds a body produced by the builder
func (r *Registry) RegisterCustom(body *Body) {
	body.Custom = true
	r.Register(body)
}

// Lookup returns the body registered under id
func (r *Registry) Lookup(id string) (*Body, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	body, exists := r.bodies[id]
	return body, exists
}

// Remove drops the body; unknown ids are ignored
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bodies, id)
}

// All returns every body sorted by id
func (r *Registry) All() []*Body {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Body, 0, len(r.bodies))
	for _, body := range r.bodies {
		result = append(result, body)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bodies)
}
