// Package memory provides an in-process core.Slot for tests and ephemeral
// sessions.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/htmlrms/pkg/core"
)

// Slot keeps the last written payload in memory.
type Slot struct {
	mu     sync.RWMutex
	data   []byte
	writes int
}

// NewSlot returns an empty slot. Passing data pre-populates it.
func NewSlot(data []byte) *Slot {
	s := &Slot{}
	if data != nil {
		s.data = append([]byte(nil), data...)
	}
	return s
}

// Read implements core.Slot.
func (s *Slot) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, core.ErrSlotEmpty
	}
	return append([]byte(nil), s.data...), nil
}

// Write implements core.Slot.
func (s *Slot) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte{}, data...)
	s.writes++
	return nil
}

// Writes reports how many writes reached the slot.
func (s *Slot) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// ComponentType implements introspection.Component.
func (s *Slot) ComponentType() string {
	return "memory-slot"
}
