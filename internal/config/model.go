package config

import (
	"errors"
	"fmt"
)

// GlobalRegistry names the process-wide registry. It is always available
// and cannot be declared.
const GlobalRegistry = "global"

var (
	// ErrUnknownRegistry is returned when a name refers to an undeclared registry.
	ErrUnknownRegistry = errors.New("unknown registry")
	// ErrDuplicate is returned for two blocks sharing a name.
	ErrDuplicate = errors.New("duplicate declaration")
	// ErrRegistryCycle is returned when registry parents form a loop.
	ErrRegistryCycle = errors.New("registry parent cycle")
)

// Plan is the unified representation of a manifest.
type Plan struct {
	Registries []*Registry
	Loads      []*Load
}

// Registry declares a registry to create before loading.
type Registry struct {
	Name string
	// Parent is a declared registry, GlobalRegistry, or empty for none.
	Parent string
}

// Load declares a set of libraries to load into one registry.
type Load struct {
	Name string
	// Registry defaults to GlobalRegistry.
	Registry  string
	Paths     []string
	Directory string
	// Filter applies to Directory entries only. Nil keeps every file.
	Filter *Filter
}

// Filter selects directory entries by base name. Every non-empty field must
// match.
type Filter struct {
	Contains string
	Suffix   string
	Pattern  string
}

// Empty reports whether f selects everything.
func (f *Filter) Empty() bool {
	return f == nil || (f.Contains == "" && f.Suffix == "" && f.Pattern == "")
}

// Validate checks names, references and parent cycles.
func (p *Plan) Validate() error {
	regs := make(map[string]*Registry, len(p.Registries))
	for _, r := range p.Registries {
		if r.Name == GlobalRegistry {
			return fmt.Errorf("%w: registry %q is reserved", ErrDuplicate, r.Name)
		}
		if _, ok := regs[r.Name]; ok {
			return fmt.Errorf("%w: registry %q", ErrDuplicate, r.Name)
		}
		regs[r.Name] = r
	}
	known := func(name string) bool {
		_, ok := regs[name]
		return ok || name == GlobalRegistry
	}

	for _, r := range p.Registries {
		if r.Parent != "" && !known(r.Parent) {
			return fmt.Errorf("%w: %q (parent of %q)", ErrUnknownRegistry, r.Parent, r.Name)
		}
	}
	if _, err := p.RegistryOrder(); err != nil {
		return err
	}

	loads := make(map[string]struct{}, len(p.Loads))
	for _, l := range p.Loads {
		if _, ok := loads[l.Name]; ok {
			return fmt.Errorf("%w: load %q", ErrDuplicate, l.Name)
		}
		loads[l.Name] = struct{}{}
		if l.Registry != "" && !known(l.Registry) {
			return fmt.Errorf("%w: %q (target of load %q)", ErrUnknownRegistry, l.Registry, l.Name)
		}
		if len(l.Paths) == 0 && l.Directory == "" {
			return fmt.Errorf("load %q: one of paths or directory is required", l.Name)
		}
	}
	return nil
}

// RegistryOrder returns the declared registries with every parent before
// its children, otherwise keeping declaration order.
func (p *Plan) RegistryOrder() ([]*Registry, error) {
	byName := make(map[string]*Registry, len(p.Registries))
	for _, r := range p.Registries {
		byName[r.Name] = r
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(p.Registries))
	order := make([]*Registry, 0, len(p.Registries))

	var visit func(r *Registry) error
	visit = func(r *Registry) error {
		switch state[r.Name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: through %q", ErrRegistryCycle, r.Name)
		}
		state[r.Name] = visiting
		if parent, ok := byName[r.Parent]; ok {
			if err := visit(parent); err != nil {
				return err
			}
		}
		state[r.Name] = done
		order = append(order, r)
		return nil
	}

	for _, r := range p.Registries {
		if err := visit(r); err != nil {
			return nil, err
		}
	}
	return order, nil
}
