// Package normalize turns foreign import payloads into canonical records.
//
// Four payload shapes are recognised, in priority order: a bare list of
// records, an object with a "products" list, the same object carrying a
// "version" marker, and a single record object. Individual fields of the wrong
// type fall back to their defaults instead of rejecting the record.
package normalize

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/htmlrms/pkg/core"
)

// Format selects the payload decoder.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Shape is the detected payload layout.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeSequence
	ShapeProducts
	ShapeVersionedProducts
	ShapeSingle
)

func (s Shape) String() string {
	switch s {
	case ShapeSequence:
		return "sequence"
	case ShapeProducts:
		return "products"
	case ShapeVersionedProducts:
		return "versioned-products"
	case ShapeSingle:
		return "single"
	default:
		return "unknown"
	}
}

// Batch is a normalized import batch.
type Batch struct {
	Records []core.Record
	Shape   Shape
	// Version is the informational marker of a versioned payload, if any.
	Version string
	// Skipped counts list elements that were not objects.
	Skipped int
}

// IDs lists the batch ids in batch order.
func (b Batch) IDs() []string {
	ids := make([]string, len(b.Records))
	for i, r := range b.Records {
		ids[i] = r.ID
	}
	return ids
}

// Normalizer decodes payloads. The zero value is not usable; call New.
type Normalizer struct {
	clock  func() time.Time
	newID  func() string
	logger *slog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock overrides the import timestamp source.
func WithClock(fn func() time.Time) Option {
	return func(n *Normalizer) {
		if fn != nil {
			n.clock = fn
		}
	}
}

// WithIDFunc overrides id synthesis for records without an id.
func WithIDFunc(fn func() string) Option {
	return func(n *Normalizer) {
		if fn != nil {
			n.newID = fn
		}
	}
}

// WithLogger sets the logger used for skipped elements.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		clock:  core.Now,
		newID:  SynthesizeID,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SynthesizeID returns a time-ordered id for records imported without one.
func SynthesizeID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf("imported-%d", time.Now().UnixNano())
	}
	return "imported-" + id.String()
}

// Normalize decodes payload and returns the normalized batch. A payload that
// cannot be decoded, or whose top level is not an object or list, fails with
// core.ErrParse. A batch without any record fails with core.ErrNoRecords.
func (n *Normalizer) Normalize(payload []byte, format Format) (Batch, error) {
	tree, err := decode(payload, format)
	if err != nil {
		return Batch{}, err
	}

	items, batch, err := detect(tree)
	if err != nil {
		return Batch{}, err
	}

	now := n.clock()
	for i, item := range items {
		obj, ok := asObject(item)
		if !ok {
			batch.Skipped++
			n.logger.Warn("skipping non-object import element", "index", i, "type", fmt.Sprintf("%T", item))
			continue
		}
		batch.Records = append(batch.Records, n.record(obj, now))
	}

	if len(batch.Records) == 0 {
		return batch, core.ErrNoRecords
	}
	n.logger.Debug("payload normalized", "shape", batch.Shape.String(), "records", len(batch.Records), "skipped", batch.Skipped)
	return batch, nil
}

func decode(payload []byte, format Format) (any, error) {
	var tree any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(payload, &tree); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrParse, err)
		}
	case FormatJSON, "":
		if err := json.Unmarshal(payload, &tree); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrParse, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", core.ErrParse, format)
	}
	return tree, nil
}

func detect(tree any) ([]any, Batch, error) {
	if list, ok := tree.([]any); ok {
		return list, Batch{Shape: ShapeSequence}, nil
	}
	obj, ok := asObject(tree)
	if !ok {
		return nil, Batch{}, fmt.Errorf("%w: payload is %s, want a record or a list of records", core.ErrParse, describe(tree))
	}
	if list, ok := obj["products"].([]any); ok {
		if marker, present := obj["version"]; present {
			return list, Batch{Shape: ShapeVersionedProducts, Version: fmt.Sprint(marker)}, nil
		}
		return list, Batch{Shape: ShapeProducts}, nil
	}
	if !hasRecordField(obj) {
		return nil, Batch{Shape: ShapeSingle}, nil
	}
	return []any{obj}, Batch{Shape: ShapeSingle}, nil
}

// recordFields are the keys that make a bare object read as one record.
var recordFields = []string{"id", "name", "html", "content"}

func hasRecordField(obj map[string]any) bool {
	for _, k := range recordFields {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}

func (n *Normalizer) record(obj map[string]any, now time.Time) core.Record {
	id, _ := stringField(obj, "id")
	id = strings.TrimSpace(id)
	if id == "" {
		id = n.newID()
	}

	name, ok := stringField(obj, "name")
	if !ok {
		name = "Imported " + id
	}

	content, _ := stringField(obj, "html", "content")

	createdAt, ok := timeField(obj, "createdAt")
	if !ok || createdAt.After(now) {
		createdAt = now
	}
	updatedAt := now

	return core.Record{
		ID:        id,
		Name:      name,
		Content:   content,
		Variants:  variantsField(obj, "versions", "variants"),
		CreatedAt: createdAt,
		UpdatedAt: &updatedAt,
	}
}

// stringField returns the first key holding a string.
func stringField(obj map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok {
			return s, true
		}
	}
	return "", false
}

func timeField(obj map[string]any, key string) (time.Time, bool) {
	switch v := obj[key].(type) {
	case string:
		ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(v))
		if err != nil {
			return time.Time{}, false
		}
		return ts.UTC().Truncate(time.Millisecond), true
	case time.Time:
		return v.UTC().Truncate(time.Millisecond), true
	default:
		return time.Time{}, false
	}
}

// variantsField keeps string-valued entries of the first mapping found.
// The reserved default key addresses the body and is dropped.
func variantsField(obj map[string]any, keys ...string) map[string]string {
	for _, k := range keys {
		m, ok := asObject(obj[k])
		if !ok {
			continue
		}
		var out map[string]string
		for key, v := range m {
			s, ok := v.(string)
			if !ok || key == "" || key == core.DefaultVariant {
				continue
			}
			if out == nil {
				out = make(map[string]string, len(m))
			}
			out[key] = s
		}
		return out
	}
	return nil
}

// asObject accepts both JSON objects and YAML mappings, whose keys may decode
// as arbitrary scalars.
func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case float64, int, int64, uint64:
		return "a number"
	case bool:
		return "a boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
