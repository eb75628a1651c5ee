// Package fs stores the snapshot as a single JSON file, optionally versioned
// with git so every write becomes a commit.
package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/htmlrms/pkg/core"
	"github.com/aretw0/htmlrms/pkg/git"
)

// Config holds the configuration for the filesystem slot.
type Config struct {
	Dir        string // workspace directory holding the snapshot file
	Name       string // slot name, the file is <Name>.json
	Versioning bool   // commit every write to git
	AutoInit   bool   // git init the workspace when it is not a repository
	MustExist  bool   // refuse to create a missing workspace directory
	Logger     *slog.Logger
}

// Slot implements core.Slot on top of one file.
type Slot struct {
	Path   string
	git    *git.Client
	config Config
}

// NewSlot creates a filesystem slot. Call Initialize before use.
func NewSlot(config Config) *Slot {
	return &Slot{
		Path:   filepath.Join(config.Dir, config.Name+".json"),
		git:    git.NewClient(config.Dir, config.Logger),
		config: config,
	}
}

// Initialize prepares the workspace directory and, when versioning, the git
// repository.
func (s *Slot) Initialize(ctx context.Context) error {
	if s.config.MustExist {
		info, err := os.Stat(s.config.Dir)
		if os.IsNotExist(err) {
			return fmt.Errorf("workspace path does not exist: %s", s.config.Dir)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("workspace path is not a directory: %s", s.config.Dir)
		}
	} else if err := os.MkdirAll(s.config.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}

	if !s.config.Versioning {
		return nil
	}
	if !git.IsInstalled() {
		return git.ErrNotInstalled
	}
	if !s.git.IsRepo(ctx) {
		if !s.config.AutoInit {
			return fmt.Errorf("path is not a git repository: %s", s.config.Dir)
		}
		if err := s.git.Init(ctx); err != nil {
			return fmt.Errorf("failed to git init: %w", err)
		}
	}
	if _, err := s.ensureIgnore(); err != nil {
		return fmt.Errorf("failed to ensure .gitignore: %w", err)
	}
	return nil
}

// ensureIgnore keeps the lock file and temp files out of the history.
func (s *Slot) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(s.config.Dir, ".gitignore")
	wanted := []string{git.DefaultLockName, TempFilePrefix + "*"}

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(string(content), "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, entry := range wanted {
		if !present[entry] {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return false, nil
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}
	if _, err := f.WriteString(strings.Join(missing, "\n") + "\n"); err != nil {
		return false, err
	}
	return true, nil
}

// Read implements core.Slot.
func (s *Slot) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, core.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, nil
}

// Write implements core.Slot. With versioning enabled the snapshot is
// committed using the change reason carried by ctx.
func (s *Slot) Write(ctx context.Context, data []byte) error {
	if !s.config.Versioning {
		return writeFileAtomic(ctx, s.Path, data, 0644)
	}

	unlock, err := s.git.Lock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	if err := writeFileAtomic(ctx, s.Path, data, 0644); err != nil {
		return err
	}

	filename := filepath.Base(s.Path)
	if err := s.git.Add(ctx, filename); err != nil {
		return fmt.Errorf("failed to git add: %w", err)
	}
	changed, err := s.git.StagedChanges(ctx, filename)
	if err != nil {
		return fmt.Errorf("failed to read git status: %w", err)
	}
	if !changed {
		return nil
	}

	if err := s.git.Commit(ctx, commitMessage(core.ChangeReason(ctx))); err != nil {
		return fmt.Errorf("failed to git commit: %w", err)
	}
	return nil
}

func commitMessage(reason string) string {
	if reason == "" {
		reason = "update snapshot"
	}
	ctype := git.CommitTypeDocs
	if strings.HasPrefix(reason, "import") {
		ctype = git.CommitTypeFeat
	}
	return git.FormatChangeReason(ctype, "records", reason, "")
}

// Owns reports whether path is a file this slot writes: the snapshot, its
// temp files or the git lock. Watchers use it to skip the slot's own writes.
func (s *Slot) Owns(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	snapshot, err := filepath.Abs(s.Path)
	if err != nil {
		return false
	}
	if abs == snapshot {
		return true
	}
	if filepath.Dir(abs) != filepath.Dir(snapshot) {
		return false
	}
	base := filepath.Base(abs)
	return strings.HasPrefix(base, TempFilePrefix) || base == git.DefaultLockName
}

// History lists the commits that touched the snapshot, newest first.
func (s *Slot) History(ctx context.Context, limit int) ([]string, error) {
	if !s.config.Versioning {
		return nil, fmt.Errorf("history requires versioning")
	}
	return s.git.Log(ctx, filepath.Base(s.Path), limit)
}
