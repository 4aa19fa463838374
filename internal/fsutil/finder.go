// Package fsutil provides file system enumeration over an afero.Fs.
package fsutil

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// ListFiles returns the regular files directly inside dir, sorted by name.
func ListFiles(fsys afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.Mode().IsRegular() {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// WalkFiles recursively searches root and returns every regular file below
// it in lexical order.
func WalkFiles(fsys afero.Fs, root string) ([]string, error) {
	var files []string
	err := afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Expand turns a list of files and directories into a list of files.
// Directories contribute their direct entries, or every file below them when
// recursive is set. Inputs that are missing, or neither a regular file nor a
// directory, are passed to skip and left out. skip may be nil.
func Expand(fsys afero.Fs, inputs []string, recursive bool, skip func(input string, err error)) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})

	add := func(paths ...string) {
		for _, p := range paths {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			files = append(files, p)
		}
	}

	for _, input := range inputs {
		info, err := fsys.Stat(input)
		if err != nil {
			if skip != nil {
				skip(input, fmt.Errorf("error accessing path %s: %w", input, err))
			}
			continue
		}

		switch {
		case info.Mode().IsRegular():
			add(input)
		case info.IsDir() && recursive:
			found, err := WalkFiles(fsys, input)
			if err != nil {
				return nil, err
			}
			add(found...)
		case info.IsDir():
			found, err := ListFiles(fsys, input)
			if err != nil {
				return nil, err
			}
			add(found...)
		default:
			if skip != nil {
				skip(input, fmt.Errorf("%s is not a regular file or directory", input))
			}
		}
	}
	return files, nil
}
