// internal/component/registry.go
//
// Component registry.
//
// Each concrete component lives under components/<name>.  Components need
// runtime collaborators (session manager, CSRF signer), so main builds them
// and registers them here instead of relying on init() side effects.
// Mount then attaches every component's Routes() to the root router.

package component

import (
	"fmt"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Component contract.
//
// Routes() should mount BOTH page and API endpoints, e.g:
//
//	r := chi.NewRouter()
//	r.Get("/", index)
//	r.Post("/rows/{id}/{action}", row)
//	return r
type Component interface {
	Name() string
	Routes() chi.Router
}

// Pather is optional.  A Component that implements it is mounted at
// MountPath() instead of “/<name>”.
type Pather interface {
	MountPath() string
}

// Registry holds components in registration order.  Safe for concurrent
// use.
type Registry struct {
	mu    sync.RWMutex
	byKey map[string]Component
	order []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byKey: map[string]Component{}}
}

// Register adds c.  Names are unique.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byKey[c.Name()]; dup {
		return fmt.Errorf("component %q registered twice", c.Name())
	}
	r.byKey[c.Name()] = c
	r.order = append(r.order, c.Name())
	return nil
}

// All returns every registered component in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Component, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byKey[name])
	}
	return out
}

// Mount attaches every component to router.
func (r *Registry) Mount(router chi.Router) {
	for _, c := range r.All() {
		router.Mount(MountPath(c), c.Routes())
	}
}

// MountPath reports where c is mounted.
func MountPath(c Component) string {
	if p, ok := c.(Pather); ok {
		return p.MountPath()
	}
	return "/" + c.Name()
}
