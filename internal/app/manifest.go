package app

import (
	"context"
	"fmt"

	"github.com/vk/godi/component"
	"github.com/vk/godi/internal/config"
	"github.com/vk/godi/internal/hcl"
	"github.com/vk/godi/internal/report"
	"github.com/vk/godi/loader"
)

// runManifest creates the registries a manifest declares, runs its loads
// and reports each registry as one source.
func (a *App) runManifest(ctx context.Context) (*report.Dump, error) {
	plan, err := hcl.NewLoader(a.fs).Load(ctx, a.config.Manifest)
	if err != nil {
		return nil, err
	}
	order, err := plan.RegistryOrder()
	if err != nil {
		return nil, err
	}

	registries := map[string]*component.Registry{config.GlobalRegistry: a.registrar.Global()}
	for _, r := range order {
		var parent *component.Registry
		if r.Parent != "" {
			parent = registries[r.Parent]
		}
		registries[r.Name] = a.registrar.New(parent, component.WithName(r.Name))
	}

	failed := 0
	for _, l := range plan.Loads {
		target := registries[l.Registry]
		ld := a.newLoader(target)

		res := ld.LoadPaths(ctx, l.Paths)
		if l.Directory != "" {
			dirRes, err := ld.LoadAll(ctx, l.Directory, filterFor(l.Filter))
			if err != nil {
				return nil, fmt.Errorf("load %q: %w", l.Name, err)
			}
			res.Loaded = append(res.Loaded, dirRes.Loaded...)
			res.Failed = append(res.Failed, dirRes.Failed...)
		}
		failed += len(res.Failed)
		a.logger.Info("Load finished.", "load", l.Name, "registry", l.Registry, "loaded", len(res.Loaded), "failed", len(res.Failed))
	}
	if failed > 0 {
		a.logger.Warn("Some libraries failed to load.", "failed", failed)
	}

	dump := report.NewDump()
	dump.Add(config.GlobalRegistry, registries[config.GlobalRegistry])
	for _, r := range order {
		dump.Add(r.Name, registries[r.Name])
	}
	return dump, nil
}

func filterFor(f *config.Filter) loader.Filter {
	if f.Empty() {
		return nil
	}
	var filters []loader.Filter
	if f.Contains != "" {
		filters = append(filters, loader.NameContains(f.Contains))
	}
	if f.Suffix != "" {
		filters = append(filters, loader.HasSuffix(f.Suffix))
	}
	if f.Pattern != "" {
		filters = append(filters, loader.MatchGlob(f.Pattern))
	}
	return loader.All(filters...)
}
