// Package hostfile sandboxes filenames the emulated machine or its
// debugger accepts from the user (ROM directory entries, RS-232/
// cassette load-save targets) to a base directory, rejecting absolute
// paths and ".." escapes. Grounded on the teacher's file_io.go
// sanitizePath, adapted from an MMIO file-transfer device's path guard
// to a plain helper function used by this machine's host-side loaders.
package hostfile

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SafeJoin joins name onto baseDir, rejecting absolute paths and any
// path that would resolve outside baseDir.
func SafeJoin(baseDir, name string) (string, error) {
	if filepath.IsAbs(name) || strings.Contains(name, "..") {
		return "", fmt.Errorf("hostfile: %q escapes the sandboxed directory", name)
	}

	full := filepath.Join(baseDir, name)

	rel, err := filepath.Rel(baseDir, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("hostfile: %q escapes the sandboxed directory", name)
	}

	return full, nil
}
