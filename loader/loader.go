package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/spf13/afero"
	"github.com/vk/godi/component"
	"github.com/vk/godi/internal/ctxlog"
	"github.com/vk/godi/internal/fsutil"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// DefaultModuleSymbol is the exported symbol looked up after a library opens.
const DefaultModuleSymbol = "Module"

// Activator is what a library's exported module symbol must provide.
// *component.Module satisfies it.
type Activator interface {
	Activate(r *component.Registry) error
	Deactivate()
}

// loadMu serializes loads across every Loader. The LoadContext is shared
// process state; two concurrent loads would interleave their activations.
var loadMu sync.Mutex

// State is the phase a Loader is in.
type State int

const (
	Idle State = iota
	Activating
	Loading
	Deactivating
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Activating:
		return "activating"
	case Loading:
		return "loading"
	case Deactivating:
		return "deactivating"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Result summarizes a batch load.
type Result struct {
	Loaded []string
	Failed []*LoadError
}

// OK reports whether every library in the batch loaded.
func (r Result) OK() bool { return len(r.Failed) == 0 }

// Err joins the batch failures, or returns nil.
func (r Result) Err() error {
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f
	}
	return errors.Join(errs...)
}

type loaded struct {
	lib    Library
	module Activator
}

// Loader opens libraries into a target registry.
type Loader struct {
	target    *component.Registry
	registrar *component.Registrar
	opener    Opener
	fs        afero.Fs
	logger    *slog.Logger
	tracer    trace.Tracer
	symbol    string

	mu     sync.Mutex
	state  State
	order  []string
	loaded map[string]*loaded
}

// Option configures a Loader.
type Option func(*Loader)

// WithOpener replaces the native plugin opener.
func WithOpener(o Opener) Option {
	return func(l *Loader) { l.opener = o }
}

// WithRegistrar selects the Registrar whose LoadContext is activated. It
// must be the one the libraries register through.
func WithRegistrar(g *component.Registrar) Option {
	return func(l *Loader) { l.registrar = g }
}

// WithFs sets the file system LoadAll enumerates.
func WithFs(fs afero.Fs) Option {
	return func(l *Loader) { l.fs = fs }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// WithTracer sets the tracer used for load spans.
func WithTracer(t trace.Tracer) Option {
	return func(l *Loader) { l.tracer = t }
}

// WithModuleSymbol changes the exported module symbol name. An empty name
// disables module activation.
func WithModuleSymbol(name string) Option {
	return func(l *Loader) { l.symbol = name }
}

// New creates a Loader registering into target. A nil target means the
// Registrar's global registry.
func New(target *component.Registry, opts ...Option) *Loader {
	l := &Loader{
		target: target,
		opener: NativeOpener{},
		fs:     afero.NewOsFs(),
		logger: slog.Default(),
		tracer: noop.NewTracerProvider().Tracer("loader"),
		symbol: DefaultModuleSymbol,
		loaded: make(map[string]*loaded),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.registrar == nil {
		l.registrar = component.DefaultRegistrar()
	}
	if l.target == nil {
		l.target = l.registrar.Global()
	}
	return l
}

// Target returns the registry libraries are loaded into.
func (l *Loader) Target() *component.Registry { return l.target }

// State returns the current phase.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Loader) setState(logger *slog.Logger, s State, path string) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
	logger.Debug("Loader state changed.", "state", s.String(), "path", path, "registry", l.target.String())
}

// Load opens the library at path with the target registry active. On
// failure the components the library registered are erased again and a
// *LoadError is returned. Loading an already loaded path is a no-op.
// A logger attached to ctx with ctxlog takes precedence over WithLogger.
func (l *Loader) Load(ctx context.Context, path string) error {
	logger := ctxlog.FromContextOr(ctx, l.logger)
	_, span := l.tracer.Start(ctx, "loader.load", trace.WithAttributes(
		attribute.String("path", path),
		attribute.String("registry", l.target.String()),
	))
	defer span.End()

	loadMu.Lock()
	defer loadMu.Unlock()

	l.mu.Lock()
	_, dup := l.loaded[path]
	l.mu.Unlock()
	if dup {
		logger.Debug("Library already loaded.", "path", path)
		return nil
	}

	before := make(map[component.ID]struct{}, l.target.Len())
	for _, d := range l.target.Descriptors() {
		before[d.ID()] = struct{}{}
	}

	entry, err := l.open(logger, path)
	added := l.added(before)
	if err != nil {
		for _, id := range added {
			l.registrar.Erase(id)
		}
		lerr := &LoadError{Path: path, Err: err}
		span.RecordError(lerr)
		span.SetStatus(codes.Error, lerr.Error())
		logger.Error("Failed to load library.", "path", path, "error", err)
		return lerr
	}

	l.mu.Lock()
	l.loaded[path] = entry
	l.order = append(l.order, path)
	l.mu.Unlock()

	span.SetAttributes(attribute.Int("components", len(added)))
	logger.Debug("Library loaded.", "path", path, "components", len(added))
	return nil
}

// open runs the Activating, Loading and Deactivating phases. The context is
// released on every exit path, panics included.
func (l *Loader) open(logger *slog.Logger, path string) (entry *loaded, err error) {
	l.setState(logger, Activating, path)
	release := l.registrar.Activate(l.target)
	defer func() {
		l.setState(logger, Deactivating, path)
		release()
		l.setState(logger, Idle, path)
	}()
	defer func() {
		if r := recover(); r != nil {
			entry, err = nil, fmt.Errorf("library initialization panicked: %v", r)
		}
	}()

	l.setState(logger, Loading, path)
	lib, err := l.opener.Open(path)
	if err != nil {
		return nil, err
	}
	entry = &loaded{lib: lib}
	if l.symbol == "" {
		return entry, nil
	}
	sym, ok := lib.Lookup(l.symbol)
	if !ok {
		return entry, nil
	}
	mod, ok := asActivator(sym)
	if !ok {
		return nil, fmt.Errorf("symbol %s is %T, not a module", l.symbol, sym)
	}
	if err := mod.Activate(l.target); err != nil {
		return nil, fmt.Errorf("activating module: %w", err)
	}
	entry.module = mod
	return entry, nil
}

func (l *Loader) added(before map[component.ID]struct{}) []component.ID {
	var ids []component.ID
	for _, d := range l.target.Descriptors() {
		if _, ok := before[d.ID()]; !ok {
			ids = append(ids, d.ID())
		}
	}
	return ids
}

// asActivator accepts the symbol as exported by a plugin, which is a pointer
// to the package variable, or the value itself.
func asActivator(sym any) (Activator, bool) {
	if a, ok := sym.(Activator); ok {
		return a, true
	}
	v := reflect.ValueOf(sym)
	for v.IsValid() && v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
		if !v.CanInterface() {
			break
		}
		if a, ok := v.Interface().(Activator); ok {
			if rv := reflect.ValueOf(a); rv.Kind() == reflect.Pointer && rv.IsNil() {
				return nil, false
			}
			return a, true
		}
	}
	return nil, false
}

// LoadPaths loads every path in order. A failure is logged and recorded; it
// does not stop the batch.
func (l *Loader) LoadPaths(ctx context.Context, paths []string) Result {
	var res Result
	for _, p := range paths {
		if err := l.Load(ctx, p); err != nil {
			var lerr *LoadError
			if !errors.As(err, &lerr) {
				lerr = &LoadError{Path: p, Err: err}
			}
			res.Failed = append(res.Failed, lerr)
			continue
		}
		res.Loaded = append(res.Loaded, p)
	}
	return res
}

// LoadAll loads the regular files directly in dir accepted by filter, in
// name order. A nil filter accepts every file. The error is reserved for a
// directory that cannot be read.
func (l *Loader) LoadAll(ctx context.Context, dir string, filter Filter) (Result, error) {
	files, err := fsutil.ListFiles(l.fs, dir)
	if err != nil {
		return Result{}, fmt.Errorf("listing %s: %w", dir, err)
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		if filter == nil || filter(f) {
			paths = append(paths, f)
		}
	}
	ctxlog.FromContextOr(ctx, l.logger).Debug("Loading directory.", "dir", dir, "candidates", len(files), "selected", len(paths))
	return l.LoadPaths(ctx, paths), nil
}

// Unload deactivates the module activated when path was loaded and forgets
// the path. Components registered from package initialization stay, since a
// plugin cannot be unmapped. It reports whether path was loaded.
func (l *Loader) Unload(path string) bool {
	l.mu.Lock()
	entry, ok := l.loaded[path]
	if ok {
		delete(l.loaded, path)
		for i, p := range l.order {
			if p == path {
				l.order = append(l.order[:i], l.order[i+1:]...)
				break
			}
		}
	}
	l.mu.Unlock()
	if !ok {
		return false
	}
	if entry.module != nil {
		entry.module.Deactivate()
	}
	l.logger.Debug("Library unloaded.", "path", path)
	return true
}

// Loaded returns the loaded paths in load order.
func (l *Loader) Loaded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.order...)
}
