package loader

import (
	"path/filepath"
	"strings"
)

// Filter selects which directory entries LoadAll loads.
type Filter func(path string) bool

// NameContains accepts files whose base name contains s.
func NameContains(s string) Filter {
	return func(path string) bool {
		return strings.Contains(filepath.Base(path), s)
	}
}

// HasSuffix accepts files whose base name ends with suffix.
func HasSuffix(suffix string) Filter {
	return func(path string) bool {
		return strings.HasSuffix(filepath.Base(path), suffix)
	}
}

// MatchGlob accepts files whose base name matches a filepath.Match pattern.
// A malformed pattern matches nothing.
func MatchGlob(pattern string) Filter {
	return func(path string) bool {
		ok, err := filepath.Match(pattern, filepath.Base(path))
		return err == nil && ok
	}
}

// All accepts paths accepted by every non-nil filter.
func All(filters ...Filter) Filter {
	return func(path string) bool {
		for _, f := range filters {
			if f != nil && !f(path) {
				return false
			}
		}
		return true
	}
}
