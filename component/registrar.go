package component

import (
	"slices"
	"sync"
	"sync/atomic"
)

// idSeq is shared by every Registrar so IDs stay unique process-wide.
var idSeq atomic.Int64

func nextID() ID { return ID(idSeq.Add(1)) }

// Registrar is the registry of registries. It tracks every live Registry so
// that Erase can find an ID without knowing which registry received it, owns
// the lazily created global registry, and holds the LoadContext that routes
// self-registrations.
//
// Most code uses the process-wide instance returned by DefaultRegistrar.
type Registrar struct {
	mu         sync.Mutex
	registries []*Registry
	global     *Registry

	loads LoadContext
}

// NewRegistrar returns an isolated Registrar with its own global registry.
func NewRegistrar() *Registrar {
	g := &Registrar{}
	g.loads.fallback = g.Global
	return g
}

var (
	defaultRegistrar *Registrar
	defaultOnce      sync.Once
)

// DefaultRegistrar returns the process-wide Registrar.
func DefaultRegistrar() *Registrar {
	defaultOnce.Do(func() {
		defaultRegistrar = NewRegistrar()
	})
	return defaultRegistrar
}

// New creates a registry tracked by g.
func (g *Registrar) New(parent *Registry, opts ...Option) *Registry {
	r := &Registry{parent: parent, registrar: g}
	for _, opt := range opts {
		opt(r)
	}
	g.mu.Lock()
	g.registries = append(g.registries, r)
	g.mu.Unlock()
	return r
}

// Global returns the registry without parent that receives registrations
// while no LoadContext activation is in effect. It is created on first use.
func (g *Registrar) Global() *Registry {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.global == nil {
		g.global = &Registry{name: "global", registrar: g}
		g.registries = append(g.registries, g.global)
	}
	return g.global
}

// Registries returns the live registries in creation order.
func (g *Registrar) Registries() []*Registry {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.registries)
}

func (g *Registrar) untrack(r *Registry) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.registries = slices.DeleteFunc(g.registries, func(x *Registry) bool { return x == r })
	if g.global == r {
		g.global = nil
	}
}

// Erase removes the unique descriptor with the given ID from whichever live
// registry holds it. It reports whether a descriptor was removed.
func (g *Registrar) Erase(id ID) bool {
	for _, r := range g.Registries() {
		if r.remove(id) {
			return true
		}
	}
	return false
}

// Owner returns the live registry holding id.
func (g *Registrar) Owner(id ID) (*Registry, bool) {
	for _, r := range g.Registries() {
		r.mu.RLock()
		found := slices.ContainsFunc(r.entries, func(d *Descriptor) bool { return d.id == id })
		r.mu.RUnlock()
		if found {
			return r, true
		}
	}
	return nil, false
}

// Shutdown forgets every tracked registry, the global one included. A later
// call to Global starts from an empty registry.
func (g *Registrar) Shutdown() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.registries = nil
	g.global = nil
}

// Context returns the LoadContext owned by g.
func (g *Registrar) Context() *LoadContext { return &g.loads }

// Activate makes r the registration target until the returned release
// function is called.
func (g *Registrar) Activate(r *Registry) (release func()) { return g.loads.Activate(r) }

// Target returns the registry that Register currently writes to.
func (g *Registrar) Target() *Registry { return g.loads.Target() }

// Depth returns the number of active LoadContext activations.
func (g *Registrar) Depth() int { return g.loads.Depth() }

// Register adds c to the current target registry and returns its ID.
func (g *Registrar) Register(name string, c Component, props Properties) ID {
	return g.Target().Set(name, c, props).ID()
}

// Global returns the default Registrar's global registry.
func Global() *Registry { return DefaultRegistrar().Global() }

// Erase removes id from whichever registry of the default Registrar holds it.
func Erase(id ID) bool { return DefaultRegistrar().Erase(id) }

// Activate activates r in the default Registrar's LoadContext.
func Activate(r *Registry) (release func()) { return DefaultRegistrar().Activate(r) }

// Register adds c to the default Registrar's current target registry.
func Register(name string, c Component, props Properties) ID {
	return DefaultRegistrar().Register(name, c, props)
}

// Shutdown tears down the default Registrar's registries.
func Shutdown() { DefaultRegistrar().Shutdown() }
