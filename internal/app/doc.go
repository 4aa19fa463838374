// Package app contains the didump application: it expands the inputs or a
// manifest into libraries, loads each into a registry, and reports what the
// libraries registered. It is decoupled from the CLI that configures it.
package app
