// Package cli is responsible for parsing command-line arguments, layering
// them over environment variables and an optional config file, validating
// user input, and handling process-level concerns like exit codes. It
// translates all of that into the application's configuration.
package cli
