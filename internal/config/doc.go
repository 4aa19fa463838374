// Package config defines the format-agnostic load plan: which registries to
// create and which libraries to load into each of them. Concrete file
// formats, such as HCL, live in separate packages that implement Loader.
package config
