package slots

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almahdi/dentalbot/internal/database"
)

func newTestManager(t *testing.T, now time.Time) (*Manager, database.Store) {
	t.Helper()

	db, err := sqlx.Connect("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.ApplyMigrations(db.DB))

	store := database.NewStore(db, nil)
	mgr := NewManager(store, nil).WithClock(func() time.Time { return now })
	return mgr, store
}

func TestEnsureFutureSlotsGeneratesWindow(t *testing.T) {
	// 09:00 clinic time: every hour of day zero is still bookable.
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, clinicTZ)
	mgr, store := newTestManager(t, now)
	ctx := context.Background()

	require.NoError(t, mgr.EnsureFutureSlots(ctx))

	slots, err := store.ListAvailableSlots(ctx, "0000-00-00 00:00", 100)
	require.NoError(t, err)
	assert.Len(t, slots, 7*len(bookableHours))
	assert.Equal(t, "2026-08-31 10:00", slots[0].StartsAt)
	assert.Equal(t, "2026-09-06 20:00", slots[len(slots)-1].StartsAt)
}

func TestEnsureFutureSlotsSkipsElapsedHours(t *testing.T) {
	// 15:00: today's 10/12/14 slots already started and are not generated.
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, clinicTZ)
	mgr, store := newTestManager(t, now)
	ctx := context.Background()

	require.NoError(t, mgr.EnsureFutureSlots(ctx))

	slots, err := store.ListAvailableSlots(ctx, "0000-00-00 00:00", 100)
	require.NoError(t, err)
	assert.Len(t, slots, 7*len(bookableHours)-3)
	assert.Equal(t, "2026-08-31 16:00", slots[0].StartsAt)
}

func TestEnsureFutureSlotsIsIdempotent(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, clinicTZ)
	mgr, store := newTestManager(t, now)
	ctx := context.Background()

	require.NoError(t, mgr.EnsureFutureSlots(ctx))
	require.NoError(t, mgr.EnsureFutureSlots(ctx))

	slots, err := store.ListAvailableSlots(ctx, "0000-00-00 00:00", 100)
	require.NoError(t, err)
	assert.Len(t, slots, 7*len(bookableHours))
}

func TestEnsureFutureSlotsKeepsBookedRows(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, clinicTZ)
	mgr, store := newTestManager(t, now)
	ctx := context.Background()

	require.NoError(t, mgr.EnsureFutureSlots(ctx))

	ok, err := mgr.Book(ctx, "2026-09-01 10:00", 42)
	require.NoError(t, err)
	require.True(t, ok)

	// Regeneration must not resurrect or duplicate the booked slot.
	require.NoError(t, mgr.EnsureFutureSlots(ctx))

	slot, err := store.FindAvailableSlotBySuffix(ctx, "09-01 10:00", "2026-08-31 09:00")
	require.NoError(t, err)
	assert.Nil(t, slot)
}

func TestEnsureFutureSlotsPurgesStale(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, clinicTZ)
	mgr, store := newTestManager(t, now)
	ctx := context.Background()

	// Leftovers from long-gone days, one of them booked.
	require.NoError(t, store.InsertSlot(ctx, "2026-08-20 10:00"))
	require.NoError(t, store.InsertSlot(ctx, "2026-08-25 12:00"))
	ok, err := store.BookSlot(ctx, "2026-08-25 12:00", 7)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, mgr.EnsureFutureSlots(ctx))

	slots, err := store.ListAvailableSlots(ctx, "0000-00-00 00:00", 200)
	require.NoError(t, err)
	for _, s := range slots {
		assert.GreaterOrEqual(t, s.StartsAt, "2026-08-30")
	}
}

func TestListAvailableRefreshesAndLimits(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, clinicTZ)
	mgr, _ := newTestManager(t, now)
	ctx := context.Background()

	slots, err := mgr.ListAvailable(ctx, DefaultListLimit)
	require.NoError(t, err)
	require.Len(t, slots, DefaultListLimit)
	assert.Equal(t, "2026-08-31 10:00", slots[0].StartsAt)
}

func TestFindByLabel(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, clinicTZ)
	mgr, _ := newTestManager(t, now)
	ctx := context.Background()

	require.NoError(t, mgr.EnsureFutureSlots(ctx))

	slot, err := mgr.FindByLabel(ctx, "09-02 14:00")
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.Equal(t, "2026-09-02 14:00", slot.StartsAt)

	slot, err = mgr.FindByLabel(ctx, "nonsense")
	require.NoError(t, err)
	assert.Nil(t, slot)
}

func TestLabelAndSplitKey(t *testing.T) {
	assert.Equal(t, "09-02 14:00", Label("2026-09-02 14:00"))

	day, clock := SplitKey("2026-09-02 14:00")
	assert.Equal(t, "2026-09-02", day)
	assert.Equal(t, "14:00", clock)
}

func TestTomorrowDay(t *testing.T) {
	now := time.Date(2026, 8, 31, 23, 30, 0, 0, clinicTZ)
	mgr, _ := newTestManager(t, now)

	assert.Equal(t, "2026-09-01", mgr.TomorrowDay())
}
