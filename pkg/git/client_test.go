package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestClient_Lock(t *testing.T) {
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, nil)
	ctx := context.Background()

	unlock, err := client.Lock(ctx)
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}

	lockPath := filepath.Join(tmpDir, DefaultLockName)
	if _, err := os.Stat(lockPath); os.IsNotExist(err) {
		t.Error("Lock file not created")
	}

	// A second acquisition must give up once its context expires.
	short, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	if _, err := client.Lock(short); err == nil {
		t.Error("expected contended lock to time out")
	}

	unlock()

	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Error("Lock file not removed after unlock")
	}
}

func TestClient_InitAddCommit(t *testing.T) {
	if !IsInstalled() {
		t.Skip("git not installed")
	}
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, nil)
	ctx := context.Background()

	if err := client.Init(ctx); err != nil {
		t.Fatalf("Failed to init: %v", err)
	}
	if !client.IsRepo(ctx) {
		t.Fatal("expected a git work tree")
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "data.json"), []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := client.Add(ctx, "data.json"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	staged, err := client.StagedChanges(ctx, "data.json")
	if err != nil || !staged {
		t.Fatalf("expected staged changes, got %v (err %v)", staged, err)
	}
	if err := client.Commit(ctx, "feat: first"); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	history, err := client.Log(ctx, "data.json", 5)
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 commit, got %d: %v", len(history), history)
	}
}

func TestFormatChangeReason(t *testing.T) {
	tests := []struct {
		name    string
		ctype   string
		scope   string
		subject string
		body    string
		want    string
	}{
		{
			name:    "simple",
			ctype:   "feat",
			subject: "create product-1",
			want:    "feat: create product-1\n\n" + Footer,
		},
		{
			name:    "with scope",
			ctype:   "fix",
			scope:   "records",
			subject: "move a to b",
			want:    "fix(records): move a to b\n\n" + Footer,
		},
		{
			name:    "default type and body",
			subject: "flush",
			body:    "  retry after failure  ",
			want:    "chore: flush\n\nretry after failure\n\n" + Footer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatChangeReason(tt.ctype, tt.scope, tt.subject, tt.body)
			if got != tt.want {
				t.Errorf("FormatChangeReason() = %q, want %q", got, tt.want)
			}
		})
	}
}
