package component

// As asserts the component of d to the capability T.
func As[T any](d *Descriptor) (T, bool) {
	c, ok := d.comp.(T)
	return c, ok
}

// Find returns the first component visible from r that implements T.
func Find[T any](r *Registry) (T, bool) {
	return FindIf[T](r, nil)
}

// FindIf returns the first component visible from r that implements T and
// whose descriptor satisfies pred. A nil pred accepts every descriptor.
func FindIf[T any](r *Registry, pred func(*Descriptor) bool) (T, bool) {
	for d := range r.All() {
		if c, ok := As[T](d); ok && (pred == nil || pred(d)) {
			return c, true
		}
	}
	var zero T
	return zero, false
}

// FindAll returns every component visible from r that implements T: r's own
// first, then its ancestors', in registration order within each registry.
func FindAll[T any](r *Registry) []T {
	return FindAllIf[T](r, nil)
}

// FindAllIf is FindAll restricted to descriptors satisfying pred.
func FindAllIf[T any](r *Registry, pred func(*Descriptor) bool) []T {
	var res []T
	for d := range r.All() {
		if c, ok := As[T](d); ok && (pred == nil || pred(d)) {
			res = append(res, c)
		}
	}
	return res
}

// ForEachOf calls fn for every visible descriptor whose component implements T.
func ForEachOf[T any](r *Registry, fn func(*Descriptor)) {
	ForEachOfIf[T](r, nil, fn)
}

// ForEachOfIf calls fn for every visible descriptor whose component implements
// T and that satisfies pred.
func ForEachOfIf[T any](r *Registry, pred func(*Descriptor) bool, fn func(*Descriptor)) {
	for d := range r.All() {
		if _, ok := As[T](d); ok && (pred == nil || pred(d)) {
			fn(d)
		}
	}
}
