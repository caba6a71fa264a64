package reminder

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almahdi/dentalbot/internal/database"
	"github.com/almahdi/dentalbot/internal/slots"
)

type fakeSender struct {
	sent   []*bot.SendMessageParams
	failOn int64
}

func (f *fakeSender) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	if chatID, ok := params.ChatID.(int64); ok && chatID == f.failOn {
		return nil, errors.New("forbidden: bot was blocked by the user")
	}
	f.sent = append(f.sent, params)
	return &models.Message{ID: len(f.sent)}, nil
}

func newTestDispatcher(t *testing.T, sender *fakeSender) (*Dispatcher, database.Store) {
	t.Helper()

	db, err := sqlx.Connect("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.ApplyMigrations(db.DB))

	store := database.NewStore(db, nil)
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.FixedZone("GST", 4*60*60))
	mgr := slots.NewManager(store, nil).WithClock(func() time.Time { return now })

	return NewDispatcher(store, mgr, sender, nil), store
}

func strPtr(s string) *string { return &s }

func TestRunSendsLocalizedReminders(t *testing.T) {
	sender := &fakeSender{}
	d, store := newTestDispatcher(t, sender)
	ctx := context.Background()

	require.NoError(t, store.UpsertUser(ctx, database.UserUpdate{ChatID: 1, Lang: strPtr("en"), Name: strPtr("Ann")}))
	require.NoError(t, store.UpsertUser(ctx, database.UserUpdate{ChatID: 2, Lang: strPtr("fa"), Name: strPtr("امید")}))

	// Two bookings tomorrow, one today (not due), one tomorrow unbooked.
	require.NoError(t, store.InsertSlot(ctx, "2026-09-01 10:00"))
	require.NoError(t, store.InsertSlot(ctx, "2026-09-01 12:00"))
	require.NoError(t, store.InsertSlot(ctx, "2026-09-01 14:00"))
	require.NoError(t, store.InsertSlot(ctx, "2026-08-31 16:00"))

	for _, b := range []struct {
		key    string
		chatID int64
	}{
		{"2026-09-01 10:00", 1},
		{"2026-09-01 12:00", 2},
		{"2026-08-31 16:00", 1},
	} {
		ok, err := store.BookSlot(ctx, b.key, b.chatID)
		require.NoError(t, err)
		require.True(t, ok)
	}

	sent, err := d.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	require.Len(t, sender.sent, 2)

	for _, msg := range sender.sent {
		assert.True(t, len(msg.Text) > 0)
		assert.Contains(t, msg.Text, "⏰")
	}

	// English reminder carries the name, date, and time.
	var annMsg string
	for _, msg := range sender.sent {
		if msg.ChatID == int64(1) {
			annMsg = msg.Text
		}
	}
	assert.Contains(t, annMsg, "Ann")
	assert.Contains(t, annMsg, "2026-09-01")
	assert.Contains(t, annMsg, "10:00")
}

func TestRunIsIdempotentWithinDay(t *testing.T) {
	sender := &fakeSender{}
	d, store := newTestDispatcher(t, sender)
	ctx := context.Background()

	require.NoError(t, store.UpsertUser(ctx, database.UserUpdate{ChatID: 1, Lang: strPtr("en"), Name: strPtr("Ann")}))
	require.NoError(t, store.InsertSlot(ctx, "2026-09-01 10:00"))
	ok, err := store.BookSlot(ctx, "2026-09-01 10:00", 1)
	require.NoError(t, err)
	require.True(t, ok)

	sent, err := d.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	// Running the sweep again the same day sends nothing new.
	sent, err = d.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Len(t, sender.sent, 1)
}

func TestRunRetriesFailedSendNextSweep(t *testing.T) {
	sender := &fakeSender{failOn: 1}
	d, store := newTestDispatcher(t, sender)
	ctx := context.Background()

	require.NoError(t, store.UpsertUser(ctx, database.UserUpdate{ChatID: 1, Lang: strPtr("en"), Name: strPtr("Ann")}))
	require.NoError(t, store.InsertSlot(ctx, "2026-09-01 10:00"))
	ok, err := store.BookSlot(ctx, "2026-09-01 10:00", 1)
	require.NoError(t, err)
	require.True(t, ok)

	sent, err := d.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	// Delivery works again; the slot was never marked, so it is retried.
	sender.failOn = 0
	sent, err = d.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}
