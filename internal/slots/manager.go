// Package slots maintains the rolling window of bookable appointment times
// and performs atomic booking against the store.
package slots

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/almahdi/dentalbot/internal/database"
)

// Clinic schedule: appointments start on fixed hours, every day, for the
// next horizonDays days. All times are clinic-local (Dubai, UTC+4).
var (
	clinicTZ      = time.FixedZone("GST", 4*60*60)
	bookableHours = []int{10, 12, 14, 16, 18, 20}
)

const (
	horizonDays = 7

	// keyLayout is the canonical slot key, e.g. "2026-08-31 14:00".
	keyLayout = "2006-01-02 15:04"
	dayLayout = "2006-01-02"
)

// DefaultListLimit caps how many slots are offered on the keyboard at once.
const DefaultListLimit = 10

// Manager generates, lists, and books appointment slots.
type Manager struct {
	store  database.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewManager creates a slot manager over the store. The clock is the real
// time; tests override it with WithClock.
func NewManager(store database.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		store:  store,
		logger: logger.With("component", "slots"),
		now:    time.Now,
	}
}

// WithClock replaces the manager's clock and returns the manager.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Now returns the current clinic-local time.
func (m *Manager) Now() time.Time {
	return m.now().In(clinicTZ)
}

// Label renders a slot key as the short keyboard label ("MM-DD HH:MM").
// Labels are unique within the rolling window because it never spans more
// than seven days.
func Label(startsAt string) string {
	if len(startsAt) <= 5 {
		return startsAt
	}
	return startsAt[5:]
}

// EnsureFutureSlots generates any missing slots for the next seven days and
// purges slots that started before yesterday. Generation uses INSERT OR
// IGNORE, so repeated runs are idempotent and never touch booked rows.
func (m *Manager) EnsureFutureSlots(ctx context.Context) error {
	now := m.Now()

	for day := 0; day < horizonDays; day++ {
		date := now.AddDate(0, 0, day)
		for _, hour := range bookableHours {
			starts := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, clinicTZ)
			if !starts.After(now) {
				continue
			}
			if err := m.store.InsertSlot(ctx, starts.Format(keyLayout)); err != nil {
				return fmt.Errorf("failed to generate slot: %w", err)
			}
		}
	}

	cutoff := now.AddDate(0, 0, -1).Format(dayLayout)
	purged, err := m.store.DeleteSlotsBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge stale slots: %w", err)
	}
	if purged > 0 {
		m.logger.InfoContext(ctx, "Purged stale slots", "count", purged, "cutoff", cutoff)
	}
	return nil
}

// ListAvailable refreshes the slot window and returns up to limit unbooked
// future slots in chronological order.
func (m *Manager) ListAvailable(ctx context.Context, limit int) ([]database.Slot, error) {
	if err := m.EnsureFutureSlots(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return m.store.ListAvailableSlots(ctx, m.Now().Format(keyLayout), limit)
}

// FindByLabel resolves a keyboard label ("MM-DD HH:MM") back to an unbooked
// future slot. Returns nil when no such slot exists.
func (m *Manager) FindByLabel(ctx context.Context, label string) (*database.Slot, error) {
	return m.store.FindAvailableSlotBySuffix(ctx, label, m.Now().Format(keyLayout))
}

// Book attempts to claim the slot for the chat. The conditional update in
// the store guarantees at most one caller wins; ok is false when the slot
// was already booked.
func (m *Manager) Book(ctx context.Context, startsAt string, chatID int64) (bool, error) {
	ok, err := m.store.BookSlot(ctx, startsAt, chatID)
	if err != nil {
		return false, fmt.Errorf("failed to book slot: %w", err)
	}
	if ok {
		m.logger.InfoContext(ctx, "Slot booked", "starts_at", startsAt, "chat_id", chatID)
	}
	return ok, nil
}

// TomorrowDay returns tomorrow's clinic-local date ("2006-01-02"), the day
// reminder sweeps target.
func (m *Manager) TomorrowDay() string {
	return m.Now().AddDate(0, 0, 1).Format(dayLayout)
}

// SplitKey splits a slot key into its date and time parts for message
// formatting.
func SplitKey(startsAt string) (day, clock string) {
	if len(startsAt) < len(keyLayout) {
		return startsAt, ""
	}
	return startsAt[:10], startsAt[11:]
}
