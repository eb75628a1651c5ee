// Package watch feeds files dropped into a directory to a handler, one at a
// time, once they stop changing.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultPattern matches every JSON or YAML file below the directory.
const DefaultPattern = "**/*.{json,yaml,yml}"

// DefaultDebounce is how long a file must stay quiet before it is handled.
const DefaultDebounce = 200 * time.Millisecond

// Handler processes one settled file.
type Handler func(ctx context.Context, path string) error

// Config holds the watcher configuration.
type Config struct {
	Dir      string
	Pattern  string        // doublestar pattern relative to Dir
	Debounce time.Duration // zero means DefaultDebounce
	Logger   *slog.Logger
	// OnError receives handler and fsnotify errors. They are always logged.
	OnError func(error)
	// Ignore skips paths the caller writes itself, such as the snapshot
	// file of an fs slot living inside Dir.
	Ignore func(path string) bool
}

// Watcher watches Config.Dir recursively.
type Watcher struct {
	config  Config
	handle  Handler
	watcher *fsnotify.Watcher
	done    chan struct{}

	mu      sync.Mutex
	pending map[string]time.Time
	handled int
	failed  int
	running bool
}

// New validates cfg and creates a watcher. Call Start to begin.
func New(cfg Config, handle Handler) (*Watcher, error) {
	if cfg.Pattern == "" {
		cfg.Pattern = DefaultPattern
	}
	if !doublestar.ValidatePathPattern(cfg.Pattern) {
		return nil, fmt.Errorf("invalid pattern: %s", cfg.Pattern)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if handle == nil {
		return nil, errors.New("watch handler is required")
	}
	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve watch dir: %w", err)
	}
	cfg.Dir = dir
	return &Watcher{
		config:  cfg,
		handle:  handle,
		done:    make(chan struct{}),
		pending: make(map[string]time.Time),
	}, nil
}

// Matches reports whether path is selected by the pattern. Relative paths
// are resolved against the working directory when that lands inside Dir,
// and against Dir otherwise.
func (w *Watcher) Matches(path string) bool {
	rel, ok := w.relative(path)
	if !ok {
		return false
	}
	matched, err := doublestar.PathMatch(w.config.Pattern, rel)
	return err == nil && matched
}

func (w *Watcher) relative(path string) (string, bool) {
	abs := path
	if !filepath.IsAbs(path) {
		var err error
		if abs, err = filepath.Abs(path); err != nil {
			return "", false
		}
		if !within(w.config.Dir, abs) {
			abs = filepath.Join(w.config.Dir, path)
		}
	}
	if !within(w.config.Dir, abs) {
		return "", false
	}
	rel, err := filepath.Rel(w.config.Dir, abs)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Start registers the directory tree and runs the event loop until ctx is
// cancelled. It returns once watching is set up.
func (w *Watcher) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := addTree(watcher, w.config.Dir); err != nil {
		_ = watcher.Close()
		return err
	}
	w.watcher = watcher

	w.mu.Lock()
	w.running = true
	w.mu.Unlock()

	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		w.report(fmt.Errorf("watch loop: %w", err))
	}))
	w.config.Logger.Info("watching for imports", "dir", w.config.Dir, "pattern", w.config.Pattern)
	return nil
}

// Done is closed when the event loop has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && d.Name()[0] == '.' {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if w.config.Logger.Enabled(ctx, slog.LevelDebug) {
				w.config.Logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				w.config.Logger.Error("watcher panic", "error", err)
			}
		}
	}()
	defer close(w.done)
	defer w.watcher.Close()
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	tick := time.NewTicker(w.config.Debounce / 2)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher events channel closed")
			}
			w.observe(event)

		case werr, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher errors channel closed")
			}
			w.report(werr)

		case now := <-tick.C:
			for _, path := range w.settled(now) {
				w.process(ctx, path)
			}
		}
	}
}

func (w *Watcher) observe(event fsnotify.Event) {
	w.config.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := addTree(w.watcher, event.Name); err != nil {
				w.report(err)
			}
		}
		return
	}
	if w.config.Ignore != nil && w.config.Ignore(event.Name) {
		w.config.Logger.Debug("ignoring own write", "name", event.Name)
		return
	}
	if !w.Matches(event.Name) {
		return
	}
	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// settled removes and returns the paths quiet for at least the debounce window.
func (w *Watcher) settled(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.config.Debounce {
			out = append(out, path)
			delete(w.pending, path)
		}
	}
	return out
}

func (w *Watcher) process(ctx context.Context, path string) {
	err := w.safeHandle(ctx, path)
	w.mu.Lock()
	if err != nil {
		w.failed++
	} else {
		w.handled++
	}
	w.mu.Unlock()
	if err != nil {
		w.report(fmt.Errorf("%s: %w", path, err))
	}
}

// safeHandle turns a handler panic into an error for that file only.
func (w *Watcher) safeHandle(ctx context.Context, path string) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("handler panic: %v", recovered)
		}
	}()
	return w.handle(ctx, path)
}

func (w *Watcher) report(err error) {
	w.config.Logger.Error("watch error", "error", err)
	if w.config.OnError != nil {
		w.config.OnError(err)
	}
}
