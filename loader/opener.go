package loader

import (
	"os"
	"path/filepath"
	"plugin"
)

// Library is an opened library.
type Library interface {
	// Path returns the path the library was requested with.
	Path() string
	// Lookup returns an exported symbol, if present.
	Lookup(symbol string) (any, bool)
}

// Opener is the dynamic-library primitive. Opening a library runs its
// initialization; that is where self-registration happens.
type Opener interface {
	Open(path string) (Library, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string) (Library, error)

// Open implements Opener.
func (f OpenerFunc) Open(path string) (Library, error) { return f(path) }

// DefaultSuffix is appended by NativeOpener to paths given without extension.
const DefaultSuffix = ".so"

// NativeOpener opens Go plugins built with -buildmode=plugin. A path without
// extension that does not exist is retried with Suffix appended, so callers
// can name libraries by base name.
type NativeOpener struct {
	Suffix string
}

// Open implements Opener.
func (o NativeOpener) Open(path string) (Library, error) {
	p, err := plugin.Open(o.resolve(path))
	if err != nil {
		return nil, err
	}
	return &nativeLibrary{path: path, plugin: p}, nil
}

func (o NativeOpener) resolve(path string) string {
	if filepath.Ext(path) != "" {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	suffix := o.Suffix
	if suffix == "" {
		suffix = DefaultSuffix
	}
	if _, err := os.Stat(path + suffix); err == nil {
		return path + suffix
	}
	return path
}

type nativeLibrary struct {
	path   string
	plugin *plugin.Plugin
}

func (l *nativeLibrary) Path() string { return l.path }

func (l *nativeLibrary) Lookup(symbol string) (any, bool) {
	sym, err := l.plugin.Lookup(symbol)
	if err != nil {
		return nil, false
	}
	return sym, true
}
