// Package locate implements the directory-discovery stage (C1): recursive
// file enumeration by extension, independent of the parsing that follows.
package locate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Options configures the directory walk.
type Options struct {
	// Extension is matched case-insensitively against each file's suffix,
	// e.g. ".dcm". Empty means every regular file is a candidate.
	Extension string
	// Recursive enables descending into sub-directories. DefaultOptions
	// sets it to true; the zero value false lists only root's own files.
	Recursive bool
}

// DefaultOptions returns the conventional crawl configuration: recursive,
// matching the ".dcm" extension.
func DefaultOptions() Options {
	return Options{Extension: ".dcm", Recursive: true}
}

// Find walks root and returns every matching file path, sorted only by
// the order filepath.Walk visits them (lexical per directory); callers that
// need a stable overall order should sort the result themselves.
func Find(root string, opts Options) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("locate: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("locate: %s is not a directory", root)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("locate: resolve absolute path: %w", err)
	}

	var (
		mu    sync.Mutex
		files []string
	)

	ext := strings.ToLower(opts.Extension)

	walkErr := filepath.Walk(absRoot, func(path string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			// Permission errors on individual entries should not abort the
			// whole crawl; skip and keep going.
			return nil
		}
		if fi.IsDir() {
			if !opts.Recursive && path != absRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if ext != "" && strings.ToLower(filepath.Ext(path)) != ext {
			return nil
		}

		mu.Lock()
		files = append(files, path)
		mu.Unlock()
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("locate: walk failed: %w", walkErr)
	}

	return files, nil
}
