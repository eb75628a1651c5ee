// Package core holds the record model and the RecordStore that owns it.
package core

import (
	"maps"
	"slices"
	"time"
)

// DefaultVariant is the reserved variant key that addresses a record's body.
// It is never stored inside Record.Variants.
const DefaultVariant = "default"

// Record is a named content entity: a default body plus optional named variants.
type Record struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Content   string            `json:"html"`
	Variants  map[string]string `json:"versions,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt *time.Time        `json:"updatedAt,omitempty"`
}

// Clone returns a deep copy so callers never share the store's maps.
func (r Record) Clone() Record {
	out := r
	if r.Variants != nil {
		out.Variants = maps.Clone(r.Variants)
	}
	if r.UpdatedAt != nil {
		ts := *r.UpdatedAt
		out.UpdatedAt = &ts
	}
	return out
}

// Variant resolves a variant key; DefaultVariant returns the body.
func (r Record) Variant(key string) (string, bool) {
	if key == DefaultVariant {
		return r.Content, true
	}
	v, ok := r.Variants[key]
	return v, ok
}

// VariantKeys lists the stored variant names in lexical order.
func (r Record) VariantKeys() []string {
	return slices.Sorted(maps.Keys(r.Variants))
}

// Equal reports field-for-field equality. Timestamps compare by instant and an
// absent UpdatedAt only equals another absent UpdatedAt.
func (r Record) Equal(o Record) bool {
	if r.ID != o.ID || r.Name != o.Name || r.Content != o.Content {
		return false
	}
	if !r.CreatedAt.Equal(o.CreatedAt) {
		return false
	}
	if (r.UpdatedAt == nil) != (o.UpdatedAt == nil) {
		return false
	}
	if r.UpdatedAt != nil && !r.UpdatedAt.Equal(*o.UpdatedAt) {
		return false
	}
	return maps.Equal(r.Variants, o.Variants)
}

func (r *Record) touch(now time.Time) {
	if now.Before(r.CreatedAt) {
		now = r.CreatedAt
	}
	r.UpdatedAt = &now
}

// CloneAll deep-copies a slice of records.
func CloneAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
