package platform_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/htmlrms/internal/platform"
	"github.com/aretw0/htmlrms/pkg/adapters/fs"
	"github.com/aretw0/htmlrms/pkg/adapters/memory"
	"github.com/aretw0/htmlrms/pkg/core"
	"github.com/aretw0/htmlrms/pkg/merge"
	"github.com/aretw0/htmlrms/pkg/normalize"
)

func TestOpen_FSRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	ws, err := platform.Open(ctx, dir, platform.WithVersioning(false))
	require.NoError(t, err)
	assert.IsType(t, &fs.Slot{}, ws.Slot)

	r, err := ws.Store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, ws.Store.SetContent(ctx, r.ID, core.DefaultVariant, "<h1>x</h1>"))
	require.NoError(t, ws.Close())

	_, err = os.Stat(filepath.Join(dir, platform.DefaultSlotName+".json"))
	require.NoError(t, err)

	reopened, err := platform.Open(ctx, dir, platform.WithVersioning(false))
	require.NoError(t, err)
	content, ok := reopened.Store.Content(r.ID, core.DefaultVariant)
	require.True(t, ok)
	assert.Equal(t, "<h1>x</h1>", content)
}

func TestOpen_CorruptSnapshotStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shop.json"), []byte("{broken"), 0644))

	ws, err := platform.Open(context.Background(), dir,
		platform.WithVersioning(false),
		platform.WithSlotName("shop"),
	)
	require.NoError(t, err)
	assert.Zero(t, ws.Store.Len())
	require.Len(t, ws.Warnings, 1)
	assert.ErrorIs(t, ws.Warnings[0], core.ErrParse)
}

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "records.db")
	ctx := context.Background()

	ws, err := platform.Open(ctx, path, platform.WithAdapter("sqlite"))
	require.NoError(t, err)
	_, err = ws.Store.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, ws.Close())

	reopened, err := platform.Open(ctx, path, platform.WithAdapter("sqlite"))
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, 1, reopened.Store.Len())
}

func TestOpen_InjectedSlotAndImport(t *testing.T) {
	slot := memory.NewSlot([]byte(`[{"id":"a","name":"A","html":"","createdAt":"2025-01-01T00:00:00Z"},{"id":"b","name":"B","html":"old","createdAt":"2025-01-01T00:00:00Z"}]`))
	reg := prometheus.NewRegistry()
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	ws, err := platform.Open(context.Background(), "",
		platform.WithSlot(slot),
		platform.WithMetrics(reg),
		platform.WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)
	require.Equal(t, 2, ws.Store.Len())

	res, err := ws.Importer.Import(context.Background(), []byte(`[{"id":"b","content":"new"},{"id":"c"}]`), normalize.FormatJSON,
		func([]string) bool { return true })
	require.NoError(t, err)
	assert.Equal(t, merge.StatePersisted, res.State)
	assert.Equal(t, 2, res.Count)

	var got []string
	for _, r := range ws.Store.List() {
		got = append(got, r.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 1, slot.Writes())
	assert.Equal(t, 3.0, testutil.ToFloat64(ws.Metrics.Records))
}

func TestOpen_ReadOnly(t *testing.T) {
	slot := memory.NewSlot(nil)
	ws, err := platform.Open(context.Background(), "", platform.WithSlot(slot), platform.WithReadOnly(true))
	require.NoError(t, err)

	_, err = ws.Store.Create(context.Background())
	assert.ErrorIs(t, err, core.ErrReadOnly)
	assert.Equal(t, core.KindPersistenceFailure, core.Kind(err))
	assert.Equal(t, 1, ws.Store.Len(), "memory stays the source of truth")
	assert.Zero(t, slot.Writes())
}

func TestOpen_Template(t *testing.T) {
	ws, err := platform.Open(context.Background(), "", platform.WithAdapter("memory"), platform.WithTemplate(core.StarterTemplate))
	require.NoError(t, err)

	r, err := ws.Store.Create(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.StarterTemplate, r.Content)
}

func TestOpen_UnknownAdapter(t *testing.T) {
	_, err := platform.Open(context.Background(), "", platform.WithAdapter("floppy"))
	assert.ErrorContains(t, err, "unknown adapter")
}

func TestOpen_PostgresRequiresDSN(t *testing.T) {
	_, err := platform.Open(context.Background(), "", platform.WithAdapter("postgres"))
	assert.Error(t, err)
}
