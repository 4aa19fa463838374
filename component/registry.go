package component

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"
)

// ErrParentCycle is returned by SetParent when the new parent chain would
// lead back to the registry itself.
var ErrParentCycle = errors.New("component: parent chain would form a cycle")

// Registry holds descriptors in registration order and optionally falls back
// to a parent registry for lookups. The parent is not owned: closing a
// registry leaves its parent untouched.
type Registry struct {
	name      string
	registrar *Registrar

	mu      sync.RWMutex
	parent  *Registry
	entries []*Descriptor
}

// Option configures a Registry at construction.
type Option func(*Registry)

// WithName labels the registry for logs and reports.
func WithName(name string) Option {
	return func(r *Registry) {
		r.name = name
	}
}

// New creates a registry tracked by the default Registrar.
func New(parent *Registry, opts ...Option) *Registry {
	return DefaultRegistrar().New(parent, opts...)
}

// Name returns the registry label, which may be empty.
func (r *Registry) Name() string { return r.name }

// String implements fmt.Stringer.
func (r *Registry) String() string {
	if r.name != "" {
		return r.name
	}
	return fmt.Sprintf("registry(%p)", r)
}

// Parent returns the fallback registry, or nil.
func (r *Registry) Parent() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.parent
}

// SetParent replaces the fallback registry. A nil parent detaches r.
func (r *Registry) SetParent(parent *Registry) error {
	for p := parent; p != nil; p = p.Parent() {
		if p == r {
			return fmt.Errorf("%w: %s", ErrParentCycle, r)
		}
	}
	r.mu.Lock()
	r.parent = parent
	r.mu.Unlock()
	return nil
}

// Len returns the number of descriptors held by r itself.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Size returns the number of descriptors visible from r, ancestors included.
func (r *Registry) Size() int {
	n := 0
	for reg := r; reg != nil; reg = reg.Parent() {
		n += reg.Len()
	}
	return n
}

// Descriptors returns a snapshot of the descriptors held by r itself, in
// registration order.
func (r *Registry) Descriptors() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.entries)
}

// All iterates over every descriptor visible from r: its own first, then each
// ancestor's, in registration order within a level. Each level is
// snapshotted before it is visited, so the loop body may modify registries.
func (r *Registry) All() iter.Seq[*Descriptor] {
	return func(yield func(*Descriptor) bool) {
		for reg := r; reg != nil; reg = reg.Parent() {
			for _, d := range reg.Descriptors() {
				if !yield(d) {
					return
				}
			}
		}
	}
}

func (r *Registry) first(match func(*Descriptor) bool) (*Descriptor, bool) {
	for d := range r.All() {
		if match(d) {
			return d, true
		}
	}
	return nil, false
}

// Get returns the descriptor with the given ID.
func (r *Registry) Get(id ID) (*Descriptor, bool) {
	return r.first(func(d *Descriptor) bool { return d.id == id })
}

// GetByName returns the earliest registered descriptor with the given name.
func (r *Registry) GetByName(name string) (*Descriptor, bool) {
	return r.first(func(d *Descriptor) bool { return d.name == name })
}

// GetByComponent returns the first descriptor holding exactly c.
func (r *Registry) GetByComponent(c Component) (*Descriptor, bool) {
	return r.first(func(d *Descriptor) bool { return sameComponent(d.comp, c) })
}

// Lookup returns the component registered under id.
func (r *Registry) Lookup(id ID) (Component, bool) {
	if d, ok := r.Get(id); ok {
		return d.comp, true
	}
	return nil, false
}

// LookupName returns the earliest registered component with the given name.
func (r *Registry) LookupName(name string) (Component, bool) {
	if d, ok := r.GetByName(name); ok {
		return d.comp, true
	}
	return nil, false
}

// Set registers c under name in r itself, never in an ancestor, and returns
// the new descriptor. An empty name is replaced by DefaultName(c). The same
// component may be registered any number of times.
func (r *Registry) Set(name string, c Component, props Properties) *Descriptor {
	if name == "" {
		name = DefaultName(c)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	d := &Descriptor{id: nextID(), name: name, comp: c, props: props.Clone()}
	r.entries = append(r.entries, d)
	return d
}

// ForEach calls fn for every descriptor visible from r.
func (r *Registry) ForEach(fn func(*Descriptor)) {
	for d := range r.All() {
		fn(d)
	}
}

// ForEachIf calls fn for every visible descriptor accepted by pred.
func (r *Registry) ForEachIf(pred func(*Descriptor) bool, fn func(*Descriptor)) {
	for d := range r.All() {
		if pred(d) {
			fn(d)
		}
	}
}

// Close stops tracking r. Erase no longer reaches its descriptors afterwards.
func (r *Registry) Close() {
	if r.registrar != nil {
		r.registrar.untrack(r)
	}
}

// remove deletes the descriptor with the given ID from r itself.
func (r *Registry) remove(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.IndexFunc(r.entries, func(d *Descriptor) bool { return d.id == id })
	if i < 0 {
		return false
	}
	r.entries = slices.Delete(r.entries, i, i+1)
	return true
}

// erase removes id through the owning Registrar, or from r alone when r is
// not tracked by one.
func (r *Registry) erase(id ID) bool {
	if r.registrar != nil {
		return r.registrar.Erase(id)
	}
	return r.remove(id)
}
