// Package merge reconciles import batches with the record store.
package merge

import "github.com/aretw0/htmlrms/pkg/core"

// Collisions returns the incoming ids that already exist in current, once
// each, in batch order.
func Collisions(current, incoming []core.Record) []string {
	existing := make(map[string]bool, len(current))
	for _, r := range current {
		existing[r.ID] = true
	}
	var out []string
	seen := make(map[string]bool)
	for _, r := range incoming {
		if existing[r.ID] && !seen[r.ID] {
			seen[r.ID] = true
			out = append(out, r.ID)
		}
	}
	return out
}

// Merge combines current and incoming by id. An incoming record replaces the
// current record with the same id in place, new ids are appended in batch
// order, and current records absent from incoming are kept. When incoming
// repeats an id, its last occurrence wins. Neither input is modified.
func Merge(current, incoming []core.Record) []core.Record {
	out := core.CloneAll(current)
	index := make(map[string]int, len(out)+len(incoming))
	for i, r := range out {
		index[r.ID] = i
	}
	for _, r := range incoming {
		if i, ok := index[r.ID]; ok {
			out[i] = r.Clone()
			continue
		}
		index[r.ID] = len(out)
		out = append(out, r.Clone())
	}
	return out
}
