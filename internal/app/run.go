package app

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/vk/godi/component"
	"github.com/vk/godi/internal/ctxlog"
	"github.com/vk/godi/internal/fsutil"
	"github.com/vk/godi/internal/report"
)

// DefinitionSuffix is appended to a library path to name its definition file.
const DefinitionSuffix = ".didef"

// Run loads the configured inputs or manifest and reports the result.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	var (
		dump *report.Dump
		err  error
	)
	if a.config.Manifest != "" {
		dump, err = a.runManifest(ctx)
	} else {
		dump, err = a.runInputs(ctx)
	}
	if err != nil {
		return err
	}

	if err := a.emit(ctx, dump); err != nil {
		return err
	}
	a.logger.Debug("App.Run method finished.", "sources", len(dump.Sources), "components", dump.Len())
	return nil
}

// runInputs loads every input file into a registry of its own, so each
// library is reported with exactly what it registered.
func (a *App) runInputs(ctx context.Context) (*report.Dump, error) {
	files, err := fsutil.Expand(a.fs, a.config.Inputs, a.config.Recursive, func(input string, err error) {
		a.logger.Warn("Skipping input.", "path", input, "error", err)
	})
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Inputs expanded.", "files", len(files))

	dump := report.NewDump()
	for _, file := range files {
		reg := a.registrar.New(nil, component.WithName(file))
		if err := a.newLoader(reg).Load(ctx, file); err != nil {
			reg.Close()
			continue
		}
		if dump.Add(file, reg) && a.config.WriteDefinitions {
			if err := a.writeDefinition(file, dump.Sources[len(dump.Sources)-1]); err != nil {
				reg.Close()
				return nil, err
			}
		}
		reg.Close()
	}
	return dump, nil
}

func (a *App) writeDefinition(file string, s report.Source) error {
	var buf bytes.Buffer
	if err := report.WriteDefinition(&buf, s); err != nil {
		return err
	}
	path := file + DefinitionSuffix
	if err := afero.WriteFile(a.fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing definition file %s: %w", path, err)
	}
	a.logger.Debug("Definition file written.", "path", path)
	return nil
}

// emit writes the dump to the output, the repository file and the publish
// target, as configured.
func (a *App) emit(ctx context.Context, dump *report.Dump) error {
	format, err := report.ParseFormat(a.config.Format)
	if err != nil {
		return err
	}
	if err := report.Write(a.outW, dump, format); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if a.config.WriteRepository {
		var buf bytes.Buffer
		if err := report.WriteRepository(&buf, dump); err != nil {
			return err
		}
		if err := afero.WriteFile(a.fs, a.config.RepositoryPath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing repository file %s: %w", a.config.RepositoryPath, err)
		}
		a.logger.Debug("Repository file written.", "path", a.config.RepositoryPath)
	}

	if a.config.PublishURL != "" {
		p, err := report.NewPublisher(a.config.PublishURL, a.config.PublishNamespace)
		if err != nil {
			return err
		}
		p.Logger = a.logger
		if err := p.Publish(ctx, dump); err != nil {
			return fmt.Errorf("publishing report: %w", err)
		}
	}
	return nil
}
