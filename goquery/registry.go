package goquery

import "github.com/fwojciec/sidetoc"

// Registry resolves the site adapter for a host. Adapters are matched in
// registration order; the fallback adapter serves every host no registered
// adapter matches, so resolution never fails.
//
// Registry is not safe for concurrent registration; register adapters
// before scanning.
type Registry struct {
	fallback *Adapter
	adapters []*Adapter
}

// NewRegistry creates a new Registry with the given fallback adapter.
func NewRegistry(fallback *Adapter) *Registry {
	return &Registry{fallback: fallback}
}

// NewDefaultRegistry returns a registry with the built-in adapters:
// Claude, with the generic adapter as fallback.
func NewDefaultRegistry() *Registry {
	r := NewRegistry(NewGenericAdapter())
	r.Register(NewClaudeAdapter())
	return r
}

// Register adds an adapter. An adapter with the same name as a registered
// one replaces it in place.
func (r *Registry) Register(a *Adapter) {
	for i, existing := range r.adapters {
		if existing.Name == a.Name {
			r.adapters[i] = a
			return
		}
	}
	r.adapters = append(r.adapters, a)
}

// Resolve returns the first registered adapter matching host, or the
// fallback adapter when none does.
func (r *Registry) Resolve(host string) *Adapter {
	for _, a := range r.adapters {
		if a.Matches(host) {
			return a
		}
	}
	return r.fallback
}

// List returns the registered adapters followed by the fallback.
func (r *Registry) List() []sidetoc.AdapterInfo {
	infos := make([]sidetoc.AdapterInfo, 0, len(r.adapters)+1)
	for _, a := range r.adapters {
		infos = append(infos, a.Info())
	}
	return append(infos, r.fallback.Info())
}
