package database

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	db, err := sqlx.Connect("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, ApplyMigrations(db.DB))
	return NewStore(db, nil)
}

func strPtr(s string) *string { return &s }

func TestGetUserNotFound(t *testing.T) {
	store := newTestStore(t)

	user, err := store.GetUser(context.Background(), 12345)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUpsertUserPartialUpdates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// First contact: only the language is known.
	require.NoError(t, store.UpsertUser(ctx, UserUpdate{ChatID: 1, Lang: strPtr("en")}))

	user, err := store.GetUser(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "en", user.Lang)
	assert.False(t, user.Name.Valid)
	assert.False(t, user.Phone.Valid)

	// Completing registration fills the rest without touching the language.
	require.NoError(t, store.UpsertUser(ctx, UserUpdate{
		ChatID:   1,
		Name:     strPtr("Ann"),
		Whatsapp: strPtr("0555123456"),
		Phone:    strPtr("+971500000000"),
	}))

	user, err = store.GetUser(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "en", user.Lang)
	assert.Equal(t, "Ann", user.Name.String)
	assert.Equal(t, "0555123456", user.Whatsapp.String)
	assert.Equal(t, "+971500000000", user.Phone.String)

	// A later language change keeps the profile fields.
	require.NoError(t, store.UpsertUser(ctx, UserUpdate{ChatID: 1, Lang: strPtr("ru")}))

	user, err = store.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "ru", user.Lang)
	assert.Equal(t, "Ann", user.Name.String)
}

func TestUpsertUserDefaultsLangOnInsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertUser(ctx, UserUpdate{ChatID: 2, Name: strPtr("Omid")}))

	user, err := store.GetUser(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "fa", user.Lang)
}

func TestAllChatIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ids, err := store.AllChatIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, store.UpsertUser(ctx, UserUpdate{ChatID: 3, Lang: strPtr("en")}))
	require.NoError(t, store.UpsertUser(ctx, UserUpdate{ChatID: 1, Lang: strPtr("fa")}))
	require.NoError(t, store.UpsertUser(ctx, UserUpdate{ChatID: 2, Lang: strPtr("ar")}))

	ids, err = store.AllChatIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestConversationStateLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	state, err := store.GetState(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, state)

	require.NoError(t, store.SaveState(ctx, &ConversationState{
		ChatID: 1,
		Flow:   FlowRegistration,
		Step:   StepLang,
	}))

	state, err = store.GetState(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, FlowRegistration, state.Flow)
	assert.Equal(t, StepLang, state.Step)

	// Advancing a step replaces the row, carrying accumulated data.
	state.Step = StepName
	state.Data.Lang = "en"
	require.NoError(t, store.SaveState(ctx, state))

	state, err = store.GetState(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, StepName, state.Step)
	assert.Equal(t, "en", state.Data.Lang)

	require.NoError(t, store.DeleteState(ctx, 1))

	state, err = store.GetState(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, state)

	// Deleting an absent state is a no-op.
	require.NoError(t, store.DeleteState(ctx, 1))
}

func TestSaveStateRejectsMismatchedStep(t *testing.T) {
	store := newTestStore(t)

	err := store.SaveState(context.Background(), &ConversationState{
		ChatID: 1,
		Flow:   FlowRegistration,
		Step:   StepSlot,
	})
	require.Error(t, err)
}

func TestStateDataRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveState(ctx, &ConversationState{
		ChatID: 7,
		Flow:   FlowBooking,
		Step:   StepSlot,
		Data: StateData{
			Lang:    "ar",
			Service: "Implants",
			Doctor:  "Dr. Sara Ahmadi",
		},
	}))

	state, err := store.GetState(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, "ar", state.Data.Lang)
	assert.Equal(t, "Implants", state.Data.Service)
	assert.Equal(t, "Dr. Sara Ahmadi", state.Data.Doctor)
}

func TestSlotInsertAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertSlot(ctx, "2026-09-01 10:00"))
	require.NoError(t, store.InsertSlot(ctx, "2026-09-01 12:00"))
	require.NoError(t, store.InsertSlot(ctx, "2026-09-02 10:00"))
	// Duplicates are ignored, not errors.
	require.NoError(t, store.InsertSlot(ctx, "2026-09-01 10:00"))

	slots, err := store.ListAvailableSlots(ctx, "2026-09-01 00:00", 10)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, "2026-09-01 10:00", slots[0].StartsAt)
	assert.Equal(t, "2026-09-01 12:00", slots[1].StartsAt)
	assert.Equal(t, "2026-09-02 10:00", slots[2].StartsAt)

	// Past slots are excluded and the limit is honored.
	slots, err = store.ListAvailableSlots(ctx, "2026-09-01 11:00", 1)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "2026-09-01 12:00", slots[0].StartsAt)
}

func TestDeleteSlotsBefore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertSlot(ctx, "2026-08-20 10:00"))
	require.NoError(t, store.InsertSlot(ctx, "2026-08-30 10:00"))
	require.NoError(t, store.InsertSlot(ctx, "2026-09-01 10:00"))

	purged, err := store.DeleteSlotsBefore(ctx, "2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	slots, err := store.ListAvailableSlots(ctx, "2026-01-01 00:00", 10)
	require.NoError(t, err)
	assert.Len(t, slots, 2)
}

func TestFindAvailableSlotBySuffix(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertSlot(ctx, "2026-09-01 10:00"))
	require.NoError(t, store.InsertSlot(ctx, "2026-09-01 12:00"))

	slot, err := store.FindAvailableSlotBySuffix(ctx, "09-01 12:00", "2026-09-01 00:00")
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.Equal(t, "2026-09-01 12:00", slot.StartsAt)

	// Unknown label resolves to nothing.
	slot, err = store.FindAvailableSlotBySuffix(ctx, "09-03 10:00", "2026-09-01 00:00")
	require.NoError(t, err)
	assert.Nil(t, slot)

	// Booked slots are invisible to the lookup.
	ok, err := store.BookSlot(ctx, "2026-09-01 12:00", 42)
	require.NoError(t, err)
	require.True(t, ok)

	slot, err = store.FindAvailableSlotBySuffix(ctx, "09-01 12:00", "2026-09-01 00:00")
	require.NoError(t, err)
	assert.Nil(t, slot)
}

func TestBookSlotExactlyOneWinner(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertSlot(ctx, "2026-09-01 10:00"))

	const contenders = 20
	var wg sync.WaitGroup
	wins := make(chan int64, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(chatID int64) {
			defer wg.Done()
			ok, err := store.BookSlot(ctx, "2026-09-01 10:00", chatID)
			assert.NoError(t, err)
			if ok {
				wins <- chatID
			}
		}(int64(i + 1))
	}
	wg.Wait()
	close(wins)

	var winners []int64
	for w := range wins {
		winners = append(winners, w)
	}
	require.Len(t, winners, 1)

	// The slot records the winner.
	slot, err := store.FindAvailableSlotBySuffix(ctx, "09-01 10:00", "2026-09-01 00:00")
	require.NoError(t, err)
	assert.Nil(t, slot)
}

func TestBookSlotUnknownKey(t *testing.T) {
	store := newTestStore(t)

	ok, err := store.BookSlot(context.Background(), "2026-09-01 10:00", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPendingRemindersAndMark(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertUser(ctx, UserUpdate{ChatID: 5, Lang: strPtr("en"), Name: strPtr("Ann")}))
	require.NoError(t, store.InsertSlot(ctx, "2026-09-01 14:00"))
	require.NoError(t, store.InsertSlot(ctx, "2026-09-01 16:00"))

	ok, err := store.BookSlot(ctx, "2026-09-01 14:00", 5)
	require.NoError(t, err)
	require.True(t, ok)

	pending, err := store.PendingReminders(ctx, "2026-09-01")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(5), pending[0].ChatID)
	assert.Equal(t, "Ann", pending[0].Name.String)
	assert.Equal(t, "en", pending[0].Lang)
	assert.Equal(t, "2026-09-01 14:00", pending[0].StartsAt)

	slotID := pending[0].SlotID

	// Other days return nothing.
	otherDay, err := store.PendingReminders(ctx, "2026-09-02")
	require.NoError(t, err)
	assert.Empty(t, otherDay)

	require.NoError(t, store.MarkReminderSent(ctx, slotID))

	// A marked slot drops out of the pending set.
	pending, err = store.PendingReminders(ctx, "2026-09-01")
	require.NoError(t, err)
	assert.Empty(t, pending)
}
