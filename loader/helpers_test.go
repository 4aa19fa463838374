package loader

import (
	"errors"
	"sync"

	"github.com/vk/godi/component"
)

type named interface{ Name() string }

type svc struct{ name string }

func (s *svc) Name() string { return s.name }

type fakeLib struct {
	path    string
	init    func()
	symbols map[string]any
	err     error
}

func (l *fakeLib) Path() string { return l.path }

func (l *fakeLib) Lookup(symbol string) (any, bool) {
	v, ok := l.symbols[symbol]
	return v, ok
}

// fakeOpener stands in for plugin.Open: opening runs the library's init.
type fakeOpener struct {
	mu     sync.Mutex
	libs   map[string]*fakeLib
	opened []string
}

func newFakeOpener() *fakeOpener {
	return &fakeOpener{libs: make(map[string]*fakeLib)}
}

func (o *fakeOpener) add(path string, init func(), symbols map[string]any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.libs[path] = &fakeLib{path: path, init: init, symbols: symbols}
}

func (o *fakeOpener) broken(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.libs[path] = &fakeLib{path: path, err: errors.New("invalid ELF header")}
}

func (o *fakeOpener) Open(path string) (Library, error) {
	o.mu.Lock()
	lib, ok := o.libs[path]
	o.opened = append(o.opened, path)
	o.mu.Unlock()
	if !ok {
		return nil, errors.New("no such file")
	}
	if lib.err != nil {
		return nil, lib.err
	}
	if lib.init != nil {
		lib.init()
	}
	return lib, nil
}

// registering returns a library init that self-registers one svc per name.
func registering(g *component.Registrar, names ...string) func() {
	return func() {
		for _, n := range names {
			component.NewInstance[named](&svc{name: n}, component.Named(n), component.Through(g))
		}
	}
}
