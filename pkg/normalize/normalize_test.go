package normalize

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/htmlrms/pkg/core"
)

var importTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestNormalizer() *Normalizer {
	seq := 0
	return New(
		WithClock(func() time.Time { return importTime }),
		WithIDFunc(func() string {
			seq++
			return fmt.Sprintf("imported-%d", seq)
		}),
	)
}

func TestNormalize_Shapes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		shape   Shape
		ids     []string
		version string
	}{
		{
			name:    "bare sequence",
			payload: `[{"id":"a"},{"id":"b"}]`,
			shape:   ShapeSequence,
			ids:     []string{"a", "b"},
		},
		{
			name:    "products object",
			payload: `{"products":[{"id":"a"}]}`,
			shape:   ShapeProducts,
			ids:     []string{"a"},
		},
		{
			name:    "versioned products object",
			payload: `{"version":"2.0","products":[{"id":"a"},{"id":"b"}]}`,
			shape:   ShapeVersionedProducts,
			ids:     []string{"a", "b"},
			version: "2.0",
		},
		{
			name:    "single record",
			payload: `{"id":"solo","html":"<p>x</p>"}`,
			shape:   ShapeSingle,
			ids:     []string{"solo"},
		},
		{
			name:    "products that is not a list is a single record",
			payload: `{"id":"odd","products":"none"}`,
			shape:   ShapeSingle,
			ids:     []string{"odd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := newTestNormalizer().Normalize([]byte(tt.payload), FormatJSON)
			require.NoError(t, err)
			assert.Equal(t, tt.shape, batch.Shape)
			assert.Equal(t, tt.ids, batch.IDs())
			assert.Equal(t, tt.version, batch.Version)
		})
	}
}

func TestNormalize_Defaults(t *testing.T) {
	batch, err := newTestNormalizer().Normalize([]byte(`[{}]`), FormatJSON)
	require.NoError(t, err)
	require.Len(t, batch.Records, 1)

	r := batch.Records[0]
	assert.Equal(t, "imported-1", r.ID)
	assert.Equal(t, "Imported imported-1", r.Name)
	assert.Equal(t, "", r.Content)
	assert.Empty(t, r.Variants)
	assert.True(t, r.CreatedAt.Equal(importTime))
	require.NotNil(t, r.UpdatedAt)
	assert.True(t, r.UpdatedAt.Equal(importTime))
}

func TestNormalize_WrongTypesFallBackToDefaults(t *testing.T) {
	payload := `[{
		"id": 42,
		"name": ["not", "a", "name"],
		"html": {"nested": true},
		"versions": "mobile",
		"createdAt": "yesterday",
		"updatedAt": "2020-01-01T00:00:00Z"
	}]`

	batch, err := newTestNormalizer().Normalize([]byte(payload), FormatJSON)
	require.NoError(t, err)
	require.Len(t, batch.Records, 1)

	r := batch.Records[0]
	assert.Equal(t, "imported-1", r.ID)
	assert.Equal(t, "Imported imported-1", r.Name)
	assert.Equal(t, "", r.Content)
	assert.Nil(t, r.Variants)
	assert.True(t, r.CreatedAt.Equal(importTime))
	assert.True(t, r.UpdatedAt.Equal(importTime), "updatedAt is always the import time")
}

func TestNormalize_FieldsAndAliases(t *testing.T) {
	payload := `[
		{"id":" p1 ","name":"One","html":"<h1>1</h1>","versions":{"mobile":"<p>m</p>","default":"x","broken":3},"createdAt":"2024-05-01T10:00:00.123Z"},
		{"id":"p2","content":"<h1>2</h1>","variants":{"print":"<p>p</p>"}}
	]`

	batch, err := newTestNormalizer().Normalize([]byte(payload), FormatJSON)
	require.NoError(t, err)
	require.Len(t, batch.Records, 2)

	p1 := batch.Records[0]
	assert.Equal(t, "p1", p1.ID)
	assert.Equal(t, "One", p1.Name)
	assert.Equal(t, "<h1>1</h1>", p1.Content)
	assert.Equal(t, map[string]string{"mobile": "<p>m</p>"}, p1.Variants)
	assert.True(t, p1.CreatedAt.Equal(time.Date(2024, 5, 1, 10, 0, 0, 123e6, time.UTC)))

	p2 := batch.Records[1]
	assert.Equal(t, "<h1>2</h1>", p2.Content)
	assert.Equal(t, map[string]string{"print": "<p>p</p>"}, p2.Variants)
}

func TestNormalize_FutureCreatedAtIsClamped(t *testing.T) {
	batch, err := newTestNormalizer().Normalize([]byte(`{"id":"a","createdAt":"2099-01-01T00:00:00Z"}`), FormatJSON)
	require.NoError(t, err)

	r := batch.Records[0]
	assert.True(t, r.CreatedAt.Equal(importTime))
	assert.False(t, r.UpdatedAt.Before(r.CreatedAt))
}

func TestNormalize_SkipsNonObjects(t *testing.T) {
	batch, err := newTestNormalizer().Normalize([]byte(`[{"id":"a"}, 3, "x", null, {"id":"b"}]`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, batch.IDs())
	assert.Equal(t, 3, batch.Skipped)
}

func TestNormalize_Failures(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		format  Format
		want    error
	}{
		{name: "bare string", payload: `"not json"`, format: FormatJSON, want: core.ErrParse},
		{name: "malformed text", payload: `not json`, format: FormatJSON, want: core.ErrParse},
		{name: "truncated", payload: `[{"id":"a"`, format: FormatJSON, want: core.ErrParse},
		{name: "empty payload", payload: ``, format: FormatJSON, want: core.ErrParse},
		{name: "number", payload: `12`, format: FormatJSON, want: core.ErrParse},
		{name: "yaml scalar", payload: `not json`, format: FormatYAML, want: core.ErrParse},
		{name: "unknown format", payload: `[]`, format: Format("xml"), want: core.ErrParse},
		{name: "empty list", payload: `[]`, format: FormatJSON, want: core.ErrNoRecords},
		{name: "only scalars", payload: `[1,2]`, format: FormatJSON, want: core.ErrNoRecords},
		{name: "empty products", payload: `{"products":[]}`, format: FormatJSON, want: core.ErrNoRecords},
		{name: "object without record fields", payload: `{"foo":1}`, format: FormatJSON, want: core.ErrNoRecords},
		{name: "products that is not a list", payload: `{"products":"x"}`, format: FormatJSON, want: core.ErrNoRecords},
		{name: "empty object", payload: `{}`, format: FormatJSON, want: core.ErrNoRecords},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := newTestNormalizer().Normalize([]byte(tt.payload), tt.format)
			require.ErrorIs(t, err, tt.want)
			assert.Empty(t, batch.Records)
			assert.Equal(t, core.KindParseFailure, core.Kind(err))
		})
	}
}

func TestNormalize_YAML(t *testing.T) {
	payload := `
version: 1
products:
  - id: banner
    name: Banner
    html: "<div>banner</div>"
    versions:
      mobile: "<div>m</div>"
    createdAt: 2024-01-02T03:04:05Z
  - id: footer
`
	batch, err := newTestNormalizer().Normalize([]byte(payload), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, ShapeVersionedProducts, batch.Shape)
	assert.Equal(t, "1", batch.Version)
	require.Equal(t, []string{"banner", "footer"}, batch.IDs())

	banner := batch.Records[0]
	assert.Equal(t, "<div>banner</div>", banner.Content)
	assert.Equal(t, map[string]string{"mobile": "<div>m</div>"}, banner.Variants)
	assert.True(t, banner.CreatedAt.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("dump.YAML"))
	assert.Equal(t, FormatYAML, FormatFromPath("a/b.yml"))
	assert.Equal(t, FormatJSON, FormatFromPath("export.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("noext"))
}

func TestSynthesizeID(t *testing.T) {
	a, b := SynthesizeID(), SynthesizeID()
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^imported-[0-9a-f-]{36}$`, a)
}
