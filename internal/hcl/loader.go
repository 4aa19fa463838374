package hcl

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"
	"github.com/vk/godi/internal/config"
	"github.com/vk/godi/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	fs afero.Fs
}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a manifest loader reading from fs.
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

// fileRoot decodes the top-level blocks of a manifest.
type fileRoot struct {
	Registries []*registryBlock `hcl:"registry,block"`
	Loads      []*loadBlock     `hcl:"load,block"`
}

type registryBlock struct {
	Name   string  `hcl:"name,label"`
	Parent *string `hcl:"parent,optional"`
}

type loadBlock struct {
	Name      string         `hcl:"name,label"`
	Registry  *string        `hcl:"registry,optional"`
	Paths     []string       `hcl:"paths,optional"`
	Directory *string        `hcl:"directory,optional"`
	Filter    hcl.Expression `hcl:"filter,optional"`
}

// Load parses the manifest at path. Relative library paths and directories
// are resolved against the manifest's directory.
func (l *Loader) Load(ctx context.Context, path string) (*config.Plan, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL manifest loader started.", "path", path)

	src, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, nil, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	plan, err := translate(&root, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}

	logger.Debug("HCL manifest loaded.", "registries", len(plan.Registries), "loads", len(plan.Loads))
	return plan, nil
}
