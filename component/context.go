package component

import "sync"

// LoadContext is the stack of registries that self-registering code targets.
// Activations nest strictly: each release must undo the most recent
// activation still in effect.
type LoadContext struct {
	mu       sync.Mutex
	stack    []*activation
	fallback func() *Registry
}

type activation struct {
	target *Registry
}

// Activate pushes r. The returned function pops it again; it is safe to call
// more than once and is meant to be deferred so the pop also happens when the
// activating code panics. A nil r routes registrations to the fallback.
func (lc *LoadContext) Activate(r *Registry) (release func()) {
	a := &activation{target: r}
	lc.mu.Lock()
	lc.stack = append(lc.stack, a)
	lc.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { lc.pop(a) })
	}
}

func (lc *LoadContext) pop(a *activation) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	n := len(lc.stack)
	if n == 0 || lc.stack[n-1] != a {
		panic("component: load context released out of order")
	}
	lc.stack[n-1] = nil
	lc.stack = lc.stack[:n-1]
}

// Target returns the registry of the innermost activation, or the fallback
// registry when nothing is active.
func (lc *LoadContext) Target() *Registry {
	lc.mu.Lock()
	var target *Registry
	if n := len(lc.stack); n > 0 {
		target = lc.stack[n-1].target
	}
	lc.mu.Unlock()

	if target == nil && lc.fallback != nil {
		return lc.fallback()
	}
	return target
}

// Depth returns the number of activations in effect.
func (lc *LoadContext) Depth() int {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return len(lc.stack)
}
