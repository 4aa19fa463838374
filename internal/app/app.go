package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/vk/godi/component"
	"github.com/vk/godi/internal/tracing"
	"github.com/vk/godi/loader"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	fs        afero.Fs
	registrar *component.Registrar
	opener    loader.Opener
	traceW    io.Writer
	tracing   *tracing.Provider
}

// Option overrides a collaborator, mostly for tests.
type Option func(*App)

// WithFs sets the file system inputs are expanded on and reports written to.
func WithFs(fs afero.Fs) Option {
	return func(a *App) { a.fs = fs }
}

// WithOpener replaces the native plugin opener.
func WithOpener(o loader.Opener) Option {
	return func(a *App) { a.opener = o }
}

// WithRegistrar replaces the process-wide Registrar.
func WithRegistrar(g *component.Registrar) Option {
	return func(a *App) { a.registrar = g }
}

// WithTraceWriter sets where the stdout trace exporter writes.
func WithTraceWriter(w io.Writer) Option {
	return func(a *App) { a.traceW = w }
}

// NewApp builds an App writing reports to outW and logs to logW.
func NewApp(outW, logW io.Writer, cfg *Config, opts ...Option) (*App, error) {
	logger := newLogger(cfg, logW)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:      outW,
		logger:    logger,
		config:    cfg,
		fs:        afero.NewOsFs(),
		registrar: component.DefaultRegistrar(),
		opener:    loader.NativeOpener{},
		traceW:    logW,
	}
	for _, opt := range opts {
		opt(a)
	}

	tp, err := tracing.NewProvider(tracing.Config{Exporter: cfg.Trace, Writer: a.traceW})
	if err != nil {
		return nil, fmt.Errorf("failed to configure tracing: %w", err)
	}
	a.tracing = tp
	logger.Debug("Tracing configured.", "exporter", cfg.Trace)

	return a, nil
}

// Close flushes pending spans.
func (a *App) Close(ctx context.Context) error {
	return a.tracing.Shutdown(ctx)
}

// Registrar returns the Registrar libraries register through. This is
// primarily for testing.
func (a *App) Registrar() *component.Registrar {
	return a.registrar
}

func (a *App) newLoader(target *component.Registry) *loader.Loader {
	return loader.New(target,
		loader.WithRegistrar(a.registrar),
		loader.WithOpener(a.opener),
		loader.WithFs(a.fs),
		loader.WithLogger(a.logger),
		loader.WithTracer(a.tracing.Tracer()),
	)
}
