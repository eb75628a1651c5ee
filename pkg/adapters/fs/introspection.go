package fs

import (
	"os"

	"github.com/aretw0/introspection"
)

// SlotState exposes internal state for observability.
type SlotState struct {
	Path       string `json:"path"`
	Versioning bool   `json:"versioning"`
	Exists     bool   `json:"exists"`
	Size       int64  `json:"size"`
}

// State implements introspection.Introspectable.
func (s *Slot) State() any {
	state := SlotState{Path: s.Path, Versioning: s.config.Versioning}
	if info, err := os.Stat(s.Path); err == nil {
		state.Exists = true
		state.Size = info.Size()
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Slot) ComponentType() string {
	return "fs-slot"
}

var _ introspection.Introspectable = (*Slot)(nil)
var _ introspection.Component = (*Slot)(nil)
