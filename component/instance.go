package component

import "sync"

// Instance owns a component and keeps it registered until Close. It is meant
// to be held by a package-level variable of a plugin, so that loading the
// plugin registers the component into whatever registry the loader has
// activated:
//
//	var greeter = component.NewInstance(&Greeter{},
//		component.Named("hello"),
//		component.WithProperties(component.Properties{"role": "greeter"}))
type Instance[T any] struct {
	name      string
	comp      T
	id        ID
	registrar *Registrar
	closeOnce sync.Once
}

type instanceConfig struct {
	name      string
	props     Properties
	registrar *Registrar
}

// InstanceOption configures NewInstance.
type InstanceOption func(*instanceConfig)

// Named sets the registration name.
func Named(name string) InstanceOption {
	return func(c *instanceConfig) { c.name = name }
}

// WithProperties attaches properties to the registration.
func WithProperties(props Properties) InstanceOption {
	return func(c *instanceConfig) { c.props = props }
}

// Through registers via g instead of the default Registrar.
func Through(g *Registrar) InstanceOption {
	return func(c *instanceConfig) { c.registrar = g }
}

// NewInstance registers c into the Registrar's current target and returns the
// holder. Without Named, the name is DefaultName(c).
func NewInstance[T any](c T, opts ...InstanceOption) *Instance[T] {
	cfg := instanceConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.registrar == nil {
		cfg.registrar = DefaultRegistrar()
	}
	if cfg.name == "" {
		cfg.name = DefaultName(c)
	}

	inst := &Instance[T]{name: cfg.name, comp: c, registrar: cfg.registrar}
	inst.id = cfg.registrar.Register(cfg.name, c, cfg.props)
	return inst
}

// Get returns the owned component.
func (i *Instance[T]) Get() T { return i.comp }

// Name returns the registered name.
func (i *Instance[T]) Name() string { return i.name }

// Close erases the registration. Closing again, or after the registration was
// erased by other means, does nothing.
func (i *Instance[T]) Close() error {
	i.closeOnce.Do(func() {
		i.registrar.Erase(i.id)
	})
	return nil
}
