package imager

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// WriteFiles saves every asset as <dir>/<Name>.png, creating dir if needed.
// Assets sharing a name overwrite each other in order, so the last one wins.
// Per-file write errors are collected; the returned paths list each file on disk once,
// in the order it was first written.
func WriteFiles(dir string, assets []ExportedAsset) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %q: %w", dir, err)
	}

	var (
		written []string
		seen    = make(map[string]bool, len(assets))
		errs    []error
	)
	for _, a := range assets {
		dest := filepath.Join(dir, a.FileName())
		if err := os.WriteFile(dest, a.Data, 0644); err != nil {
			errs = append(errs, fmt.Errorf("failed to write %q: %w", dest, err))
			continue
		}
		if !seen[dest] {
			seen[dest] = true
			written = append(written, dest)
		}
	}

	return written, errors.Join(errs...)
}
