package component

import (
	"maps"
	"reflect"
	"sort"
)

// Component is the marker type for anything stored in a Registry. Concrete
// services implement one or more capability interfaces and are discovered by
// asserting the stored value to the interface a caller asks for.
type Component any

// ID identifies a single registration. IDs are unique within the process,
// strictly increasing and never reused.
type ID int64

// NoID is never assigned to a registration.
const NoID ID = 0

// Properties is the informational metadata attached to a registration.
type Properties map[string]string

// Keys returns the property keys in sorted order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a copy of p. A nil map stays nil.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}

// Descriptor is the registry's record of one registered component. It is
// never modified after registration.
type Descriptor struct {
	id    ID
	name  string
	comp  Component
	props Properties
}

// ID returns the registration identifier.
func (d *Descriptor) ID() ID { return d.id }

// Name returns the registered name. Names are not required to be unique.
func (d *Descriptor) Name() string { return d.name }

// Component returns the registered component.
func (d *Descriptor) Component() Component { return d.comp }

// Properties returns a copy of the registration properties.
func (d *Descriptor) Properties() Properties { return d.props.Clone() }

// Property returns a single property value.
func (d *Descriptor) Property(key string) (string, bool) {
	v, ok := d.props[key]
	return v, ok
}

// TypeName returns the runtime type name of the registered component.
func (d *Descriptor) TypeName() string { return DefaultName(d.comp) }

// DefaultName derives a registration name from the runtime type of c, such as
// "*hello.Service".
func DefaultName(c Component) string {
	if c == nil {
		return "<nil>"
	}
	return reflect.TypeOf(c).String()
}

// sameComponent reports whether a and b are the same component value. Values
// of non-comparable types are never considered the same.
func sameComponent(a, b Component) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
