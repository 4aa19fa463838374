package loader

import (
	"errors"
	"fmt"
)

// ErrLoadFailed matches every *LoadError.
var ErrLoadFailed = errors.New("load failed")

// LoadError reports a library that could not be opened or initialized.
type LoadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Path, e.Err)
}

// Unwrap exposes both ErrLoadFailed and the underlying cause.
func (e *LoadError) Unwrap() []error {
	return []error{ErrLoadFailed, e.Err}
}
