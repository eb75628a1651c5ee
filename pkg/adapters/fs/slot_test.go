package fs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/htmlrms/pkg/adapters/fs"
	"github.com/aretw0/htmlrms/pkg/core"
	"github.com/aretw0/htmlrms/pkg/git"
)

// setupSlot creates a slot rooted in a fresh temp workspace.
func setupSlot(t *testing.T, opts ...func(*fs.Config)) (*fs.Slot, string) {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "workspace")
	cfg := fs.Config{
		Dir:  dir,
		Name: "htmlManagerV2Data",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return fs.NewSlot(cfg), dir
}

func TestInitialize(t *testing.T) {
	t.Run("Creates Directory if Missing", func(t *testing.T) {
		slot, dir := setupSlot(t)
		if err := slot.Initialize(context.Background()); err != nil {
			t.Fatalf("Initialize failed: %v", err)
		}
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			t.Errorf("expected directory to be created at %s", dir)
		}
	})

	t.Run("Fails if MustExist and Missing", func(t *testing.T) {
		slot, _ := setupSlot(t, func(c *fs.Config) { c.MustExist = true })
		if err := slot.Initialize(context.Background()); err == nil {
			t.Error("expected error for missing workspace")
		}
	})

	t.Run("Fails if Versioning Without Repo And No AutoInit", func(t *testing.T) {
		if !git.IsInstalled() {
			t.Skip("git not installed")
		}
		slot, _ := setupSlot(t, func(c *fs.Config) { c.Versioning = true })
		if err := slot.Initialize(context.Background()); err == nil {
			t.Error("expected error for non-repository workspace")
		}
	})
}

func TestReadWrite(t *testing.T) {
	ctx := context.Background()
	slot, dir := setupSlot(t)
	if err := slot.Initialize(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := slot.Read(ctx); !errors.Is(err, core.ErrSlotEmpty) {
		t.Fatalf("expected ErrSlotEmpty before first write, got %v", err)
	}

	if err := slot.Write(ctx, []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := slot.Write(ctx, []byte(`[{"id":"b"}]`)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := slot.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got) != `[{"id":"b"}]` {
		t.Errorf("expected last write to win, got %s", got)
	}

	if slot.Path != filepath.Join(dir, "htmlManagerV2Data.json") {
		t.Errorf("unexpected slot path %s", slot.Path)
	}

	state := slot.State().(fs.SlotState)
	if !state.Exists || state.Size == 0 {
		t.Errorf("unexpected state %+v", state)
	}
}

func TestVersionedWrites(t *testing.T) {
	if !git.IsInstalled() {
		t.Skip("git not installed")
	}
	ctx := context.Background()
	slot, dir := setupSlot(t, func(c *fs.Config) {
		c.Versioning = true
		c.AutoInit = true
	})
	if err := slot.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	ignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		t.Fatalf("expected .gitignore: %v", err)
	}
	if !strings.Contains(string(ignore), git.DefaultLockName) {
		t.Errorf(".gitignore misses lock file: %q", ignore)
	}

	if err := slot.Write(core.WithChangeReason(ctx, "create product-1"), []byte("[1]")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	// Identical content produces no commit.
	if err := slot.Write(ctx, []byte("[1]")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := slot.Write(core.WithChangeReason(ctx, "import 2 records"), []byte("[1,2]")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	history, err := slot.History(ctx, 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 commits, got %d: %v", len(history), history)
	}
	if !strings.Contains(history[0], "feat(records): import 2 records") {
		t.Errorf("unexpected newest commit %q", history[0])
	}
	if !strings.Contains(history[1], "docs(records): create product-1") {
		t.Errorf("unexpected oldest commit %q", history[1])
	}
}

func TestOwns(t *testing.T) {
	slot, dir := setupSlot(t)

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(dir, "htmlManagerV2Data.json"), true},
		{filepath.Join(dir, fs.TempFilePrefix+"123456"), true},
		{filepath.Join(dir, git.DefaultLockName), true},
		{filepath.Join(dir, "drop.json"), false},
		{filepath.Join(dir, "sub", "htmlManagerV2Data.json"), false},
		{filepath.Join(dir, "sub", fs.TempFilePrefix+"123456"), false},
	}
	for _, tt := range tests {
		if got := slot.Owns(tt.path); got != tt.want {
			t.Errorf("Owns(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
