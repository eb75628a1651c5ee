package snapshot

import (
	"fmt"

	"github.com/aretw0/introspection"
)

// AdapterState exposes internal state for observability.
type AdapterState struct {
	SlotType       string `json:"slot_type"`
	Timeout        string `json:"timeout"`
	ReadOnly       bool   `json:"read_only"`
	WritesIssued   uint64 `json:"writes_issued"`
	LastWrittenSeq uint64 `json:"last_written_seq"`
}

// State implements introspection.Introspectable.
func (a *Adapter) State() any {
	a.mu.Lock()
	issued := a.issued
	a.mu.Unlock()

	a.writeMu.Lock()
	written := a.written
	a.writeMu.Unlock()

	slotType := fmt.Sprintf("%T", a.slot)
	if comp, ok := a.slot.(introspection.Component); ok {
		slotType = comp.ComponentType()
	}

	return AdapterState{
		SlotType:       slotType,
		Timeout:        a.timeout.String(),
		ReadOnly:       a.readOnly,
		WritesIssued:   issued,
		LastWrittenSeq: written,
	}
}

// ComponentType implements introspection.Component.
func (a *Adapter) ComponentType() string {
	return "snapshot-adapter"
}

var _ introspection.Introspectable = (*Adapter)(nil)
var _ introspection.Component = (*Adapter)(nil)
