package core

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// newIDCollator builds a numeric-aware collator so "product-2" < "product-10".
// Collators keep internal buffers, so each sort gets its own.
func newIDCollator() *collate.Collator {
	return collate.New(language.Und, collate.Numeric)
}

// CompareIDs orders ids lexicographically with digit runs compared by value.
func CompareIDs(a, b string) int {
	if c := newIDCollator().CompareString(a, b); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// SortByID sorts records in place by id using CompareIDs.
func SortByID(records []Record) {
	coll := newIDCollator()
	slices.SortStableFunc(records, func(a, b Record) int {
		if c := coll.CompareString(a.ID, b.ID); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
