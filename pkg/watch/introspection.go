package watch

import "github.com/aretw0/introspection"

// WatcherState is the introspection snapshot of a Watcher.
type WatcherState struct {
	Dir     string `json:"dir"`
	Pattern string `json:"pattern"`
	Running bool   `json:"running"`
	Pending int    `json:"pending"`
	Handled int    `json:"handled"`
	Failed  int    `json:"failed"`
}

// State implements introspection.Introspectable.
func (w *Watcher) State() any {
	w.mu.Lock()
	defer w.mu.Unlock()
	return WatcherState{
		Dir:     w.config.Dir,
		Pattern: w.config.Pattern,
		Running: w.running,
		Pending: len(w.pending),
		Handled: w.handled,
		Failed:  w.failed,
	}
}

// ComponentType implements introspection.Component.
func (w *Watcher) ComponentType() string {
	return "import-watcher"
}

var _ introspection.Introspectable = (*Watcher)(nil)
var _ introspection.Component = (*Watcher)(nil)
