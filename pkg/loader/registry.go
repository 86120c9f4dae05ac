package loader

import (
	"context"
	"sort"
	"sync"

	"gitlab.com/tozd/go/errors"

	"github.com/kyori-mfv/mfext/pkg/app"
)

// ErrNotRegistered reports an identifier missing from a Registry.
var ErrNotRegistered = errors.Base("component not registered")

// Registry is a static Importer filled by generated code:
//
//	func init() {
//	    Components.Register("page.go", Page)
//	    Components.Register("dashboard/layout.go", dashboard.Layout)
//	}
type Registry struct {
	mu         sync.RWMutex
	components map[string]app.Component
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{components: make(map[string]app.Component)}
}

// Register adds a component under id, replacing any previous entry.
func (r *Registry) Register(id string, c app.Component) {
	r.mu.Lock()
	r.components[id] = c
	r.mu.Unlock()
}

// Import implements Importer. A registered nil component yields a module
// without a default.
func (r *Registry) Import(_ context.Context, id string) (*Module, error) {
	r.mu.RLock()
	c, ok := r.components[id]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Errorf("%w: %s", ErrNotRegistered, id)
	}
	return &Module{Default: c}, nil
}

// IDs returns the registered identifiers in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.components))
	for id := range r.components {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
