package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// TempFilePrefix is the prefix used for temporary snapshot files.
const TempFilePrefix = "htmlrms-tmp-"

// writeFileAtomic stages data in a temp file beside filename and renames it
// into place, so readers only ever see a complete snapshot. If ctx ends
// before the rename the previous file is left untouched.
func writeFileAtomic(ctx context.Context, filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)

	tmpFile, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmpFile.Name()
	defer os.Remove(tmpName)

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("snapshot write abandoned: %w", err)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", filename, err)
	}
	return nil
}
