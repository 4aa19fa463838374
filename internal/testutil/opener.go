package testutil

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/vk/godi/component"
	"github.com/vk/godi/loader"
)

// ErrNotLibrary is what FakeOpener returns for unknown or broken paths.
var ErrNotLibrary = errors.New("not a library")

// Greeter is the component fake libraries register by default.
type Greeter struct {
	Name string
}

// Greet returns a greeting tagged with the greeter's name.
func (g *Greeter) Greet(who string) string {
	return fmt.Sprintf("(%s) Hello %s !", g.Name, who)
}

// Library is an opened fake library.
type Library struct {
	path    string
	symbols map[string]any
}

// Path implements loader.Library.
func (l *Library) Path() string { return l.path }

// Lookup implements loader.Library.
func (l *Library) Lookup(symbol string) (any, bool) {
	v, ok := l.symbols[symbol]
	return v, ok
}

type fakeLibrary struct {
	init    func(g *component.Registrar)
	symbols map[string]any
	broken  bool
}

// FakeOpener is a loader.Opener whose libraries are Go functions. Opening a
// library runs its init function, which plays the part of a plugin's
// package initialization.
type FakeOpener struct {
	registrar *component.Registrar

	mu     sync.Mutex
	libs   map[string]*fakeLibrary
	opened []string
}

var _ loader.Opener = (*FakeOpener)(nil)

// NewFakeOpener creates an opener whose libraries register through g.
func NewFakeOpener(g *component.Registrar) *FakeOpener {
	return &FakeOpener{registrar: g, libs: make(map[string]*fakeLibrary)}
}

// Add declares a library at path. init may be nil.
func (o *FakeOpener) Add(path string, init func(g *component.Registrar), symbols map[string]any) *FakeOpener {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.libs[filepath.Clean(path)] = &fakeLibrary{init: init, symbols: symbols}
	return o
}

// AddGreeters declares a library registering one Greeter per name, with a
// "lib" property holding the library's base name.
func (o *FakeOpener) AddGreeters(path string, names ...string) *FakeOpener {
	props := component.Properties{"lib": filepath.Base(path)}
	return o.Add(path, func(g *component.Registrar) {
		for _, n := range names {
			component.NewInstance(&Greeter{Name: n}, component.Named(n), component.WithProperties(props), component.Through(g))
		}
	}, nil)
}

// Broken declares a path that fails to open.
func (o *FakeOpener) Broken(path string) *FakeOpener {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.libs[filepath.Clean(path)] = &fakeLibrary{broken: true}
	return o
}

// Opened returns every path Open was called with, in order.
func (o *FakeOpener) Opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}

// Open implements loader.Opener.
func (o *FakeOpener) Open(path string) (loader.Library, error) {
	o.mu.Lock()
	lib, ok := o.libs[filepath.Clean(path)]
	o.opened = append(o.opened, path)
	o.mu.Unlock()

	if !ok || lib.broken {
		return nil, fmt.Errorf("%s: %w", path, ErrNotLibrary)
	}
	if lib.init != nil {
		lib.init(o.registrar)
	}
	return &Library{path: path, symbols: lib.symbols}, nil
}
