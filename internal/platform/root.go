package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// SystemDir is the hidden directory that marks a workspace root.
const SystemDir = ".htmlrms"

// ErrRootNotFound is returned by FindRoot when no marker exists up to the
// filesystem root.
var ErrRootNotFound = errors.New("workspace root not found")

// FindRoot walks upwards from startDir looking for a .htmlrms directory, an
// htmlrms.yaml file or a .git directory, and returns the first directory
// holding one.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		if hasFile(dir, SystemDir) || hasFile(dir, ConfigFileName) || hasFile(dir, ".git") {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrRootNotFound
		}
		dir = parent
	}
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
