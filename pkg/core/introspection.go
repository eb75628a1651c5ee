package core

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Records       int    `json:"records"`
	Variants      int    `json:"variants"`
	PersisterType string `json:"persister_type"`
	IDPrefix      string `json:"id_prefix"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	persisterType := "none"
	if s.persister != nil {
		persisterType = "persister"
		if comp, ok := s.persister.(introspection.Component); ok {
			persisterType = comp.ComponentType()
		}
	}

	variants := 0
	for _, r := range s.records {
		variants += len(r.Variants)
	}

	return StoreState{
		Records:       len(s.records),
		Variants:      variants,
		PersisterType: persisterType,
		IDPrefix:      s.idPrefix,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "record-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
