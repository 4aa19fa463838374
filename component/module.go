package component

import (
	"errors"
	"fmt"
	"sync"
)

// ErrModuleActive is returned when activating a module that is already active.
var ErrModuleActive = errors.New("component: module already active")

// Provider builds one component of a Module.
type Provider struct {
	name  string
	build func() Component
	props Properties
}

// Provide declares a component of a Module. build runs on every activation.
func Provide(name string, build func() Component, props Properties) Provider {
	return Provider{name: name, build: build, props: props}
}

// Module is the explicit alternative to package-level Instances: a library
// exports one, and the loader activates it into the registry it targets.
type Module struct {
	name      string
	providers []Provider

	mu     sync.Mutex
	target *Registry
	ids    []ID
}

// NewModule declares a module.
func NewModule(name string, providers ...Provider) *Module {
	return &Module{name: name, providers: providers}
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Active reports whether the module's components are registered.
func (m *Module) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target != nil
}

// Activate builds every provided component and registers it into r. A nil r
// means the default Registrar's global registry. If a provider panics, the
// components already registered are erased before the panic propagates.
func (m *Module) Activate(r *Registry) error {
	if r == nil {
		r = Global()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.target != nil {
		return fmt.Errorf("%w: %s", ErrModuleActive, m.name)
	}
	ids := make([]ID, 0, len(m.providers))
	done := false
	defer func() {
		if done {
			return
		}
		for _, id := range ids {
			r.erase(id)
		}
	}()
	for _, p := range m.providers {
		ids = append(ids, r.Set(p.name, p.build(), p.props).ID())
	}
	done = true
	m.ids = ids
	m.target = r
	return nil
}

// Deactivate erases the components registered by the last Activate.
func (m *Module) Deactivate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.target == nil {
		return
	}
	for _, id := range m.ids {
		m.target.erase(id)
	}
	m.ids = m.ids[:0]
	m.target = nil
}
