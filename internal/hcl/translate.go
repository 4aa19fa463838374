package hcl

import (
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/godi/internal/config"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

func translate(root *fileRoot, baseDir string) (*config.Plan, error) {
	plan := &config.Plan{}
	for _, r := range root.Registries {
		plan.Registries = append(plan.Registries, &config.Registry{
			Name:   r.Name,
			Parent: deref(r.Parent),
		})
	}
	for _, b := range root.Loads {
		filter, err := decodeFilter(b.Filter)
		if err != nil {
			return nil, fmt.Errorf("load %q: %w", b.Name, err)
		}
		load := &config.Load{
			Name:     b.Name,
			Registry: deref(b.Registry),
			Filter:   filter,
		}
		if load.Registry == "" {
			load.Registry = config.GlobalRegistry
		}
		for _, p := range b.Paths {
			load.Paths = append(load.Paths, resolve(baseDir, p))
		}
		if dir := deref(b.Directory); dir != "" {
			load.Directory = resolve(baseDir, dir)
		}
		plan.Loads = append(plan.Loads, load)
	}
	return plan, nil
}

// decodeFilter accepts a string, shorthand for a name-contains filter, or an
// object with contains, suffix and pattern attributes. An absent or null
// expression yields nil.
func decodeFilter(expr hcl.Expression) (*config.Filter, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("filter must be known statically")
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return &config.Filter{Contains: val.AsString()}, nil
	case ty.IsObjectType() || ty.IsMapType():
		f := &config.Filter{}
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			s, err := convert.Convert(v, cty.String)
			if err != nil || s.IsNull() {
				return nil, fmt.Errorf("filter.%s must be a string", k.AsString())
			}
			switch k.AsString() {
			case "contains":
				f.Contains = s.AsString()
			case "suffix":
				f.Suffix = s.AsString()
			case "pattern":
				if _, err := filepath.Match(s.AsString(), ""); err != nil {
					return nil, fmt.Errorf("filter.pattern: %w", err)
				}
				f.Pattern = s.AsString()
			default:
				return nil, fmt.Errorf("unsupported filter attribute %q", k.AsString())
			}
		}
		return f, nil
	default:
		return nil, fmt.Errorf("filter must be a string or an object, got %s", ty.FriendlyName())
	}
}

func resolve(baseDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
