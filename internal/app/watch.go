package app

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vk/godi/component"
	"github.com/vk/godi/internal/ctxlog"
	"github.com/vk/godi/loader"
)

// Watch loads the libraries already in the watch directory, then every new
// one that appears, until ctx is done.
func (a *App) Watch(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	dir := a.config.WatchDir
	if dir == "" {
		return errors.New("watch directory is required")
	}

	reg := a.registrar.New(nil, component.WithName("watch"))
	defer reg.Close()
	ld := a.newLoader(reg)

	var filter loader.Filter
	if a.config.WatchFilter != "" {
		filter = loader.NameContains(a.config.WatchFilter)
	}

	w, err := loader.NewWatcher(ld, loader.WatcherConfig{
		Dir:    dir,
		Filter: filter,
		OnLoad: func(path string, err error) {
			if err != nil {
				a.logger.Warn("Library rejected.", "path", path, "error", err)
				return
			}
			a.logger.Info("Library loaded.", "path", path, "components", reg.Len())
		},
	})
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Close()

	// The watcher is already running, so a library appearing during the scan
	// is seen by one or both; loading a path twice is a no-op.
	res, err := ld.LoadAll(ctx, dir, filter)
	if err != nil {
		return err
	}
	a.logger.Info("Initial load finished.", "dir", dir, "loaded", len(res.Loaded), "failed", len(res.Failed))

	srv := a.startHealthcheckServer(a.config.HealthcheckPort, a.newMux(uuid.NewString(), dir, reg))

	<-ctx.Done()
	a.logger.Info("Watch stopped.", "components", reg.Len())
	return a.closeHealthcheckServer(srv)
}
