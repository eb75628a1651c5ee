package sqlslot_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/htmlrms/pkg/adapters/sqlslot"
	"github.com/aretw0/htmlrms/pkg/core"
)

func openSQLite(t *testing.T, path, name string) *sqlslot.Slot {
	t.Helper()
	slot, err := sqlslot.Open(context.Background(), sqlslot.SQLite, path, name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = slot.Close() })
	return slot
}

func TestSQLiteSlot(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "htmlrms.db")

	slot := openSQLite(t, path, "htmlManagerV2Data")

	_, err := slot.Read(ctx)
	require.ErrorIs(t, err, core.ErrSlotEmpty)

	require.NoError(t, slot.Write(ctx, []byte(`[{"id":"a"}]`)))
	require.NoError(t, slot.Write(ctx, []byte(`[{"id":"b"}]`)))

	got, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"b"}]`, string(got))

	state := slot.State().(sqlslot.SlotState)
	assert.Equal(t, "sqlite", state.Dialect)
	assert.True(t, state.OwnsHandle)
	assert.Equal(t, "sqlite-slot", slot.ComponentType())
}

func TestSQLiteSlot_NamesAreIndependent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "htmlrms.db")

	first := openSQLite(t, path, "first")
	require.NoError(t, first.Write(ctx, []byte("[1]")))
	require.NoError(t, first.Close())

	second := openSQLite(t, path, "second")
	_, err := second.Read(ctx)
	assert.ErrorIs(t, err, core.ErrSlotEmpty)
	require.NoError(t, second.Close())

	reopened := openSQLite(t, path, "first")
	got, err := reopened.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "[1]", string(got))
}

func TestPostgresSlot(t *testing.T) {
	dsn := os.Getenv("HTMLRMS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("HTMLRMS_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	slot, err := sqlslot.Open(ctx, sqlslot.Postgres, dsn, "htmlrms-test-"+t.Name())
	require.NoError(t, err)
	defer slot.Close()

	require.NoError(t, slot.Write(ctx, []byte("[]")))
	require.NoError(t, slot.Write(ctx, []byte(`[{"id":"pg"}]`)))
	got, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"pg"}]`, string(got))
}
