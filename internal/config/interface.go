package config

import "context"

// Loader is the interface for a format-specific manifest loader.
type Loader interface {
	// Load reads the manifest at path and translates it into a Plan.
	Load(ctx context.Context, path string) (*Plan, error)
}
