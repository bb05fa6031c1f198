//go:build !windows

package provider

import "sort"

// Registry resolves provider facades by string identifier, the selection
// mechanism exposed to callers.
type Registry struct {
	facades map[string]*Facade
}

// NewRegistry builds a registry from facades, keyed by Facade.ID.
// Later duplicates replace earlier ones.
func NewRegistry(facades ...*Facade) *Registry {
	r := &Registry{facades: make(map[string]*Facade, len(facades))}
	for _, f := range facades {
		if f != nil {
			r.facades[f.ID()] = f
		}
	}
	return r
}

// Get returns the facade registered under id.
func (r *Registry) Get(id string) (*Facade, bool) {
	f, ok := r.facades[id]
	return f, ok
}

// Names returns the registered identifiers in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.facades))
	for id := range r.facades {
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}
