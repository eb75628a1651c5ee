// Package snapshot is the persistence boundary: it encodes the whole record
// collection as one JSON document and moves it in and out of a core.Slot.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aretw0/htmlrms/pkg/core"
)

// Encode renders records as the canonical JSON array.
func Encode(records []core.Record) ([]byte, error) {
	if records == nil {
		records = []core.Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a JSON array previously produced by Encode.
func Decode(data []byte) ([]core.Record, error) {
	var records []core.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrParse, err)
	}
	return records, nil
}
