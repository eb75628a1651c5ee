package sqlslot

import (
	"github.com/aretw0/introspection"
)

// SlotState exposes internal state for observability.
type SlotState struct {
	Dialect    string `json:"dialect"`
	Name       string `json:"name"`
	OpenConns  int    `json:"open_connections"`
	OwnsHandle bool   `json:"owns_handle"`
}

// State implements introspection.Introspectable.
func (s *Slot) State() any {
	return SlotState{
		Dialect:    s.dialect.Name,
		Name:       s.name,
		OpenConns:  s.db.Stats().OpenConnections,
		OwnsHandle: s.owned,
	}
}

// ComponentType implements introspection.Component.
func (s *Slot) ComponentType() string {
	return s.dialect.Name + "-slot"
}

var _ introspection.Introspectable = (*Slot)(nil)
var _ introspection.Component = (*Slot)(nil)
