package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations. Methods accept
// context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// GetUser retrieves a user by chat ID. Returns nil, nil if not found.
	GetUser(ctx context.Context, chatID int64) (*User, error)

	// UpsertUser inserts or partially updates a user row; nil fields of the
	// update are left untouched on existing rows.
	UpsertUser(ctx context.Context, upd UserUpdate) error

	// AllChatIDs returns the chat IDs of every known user (broadcast fan-out).
	AllChatIDs(ctx context.Context) ([]int64, error)

	// GetState retrieves a chat's conversation state. Returns nil, nil if the
	// chat is idle.
	GetState(ctx context.Context, chatID int64) (*ConversationState, error)

	// SaveState inserts or replaces a chat's conversation state.
	SaveState(ctx context.Context, state *ConversationState) error

	// DeleteState removes a chat's conversation state. Deleting an absent
	// state is a no-op.
	DeleteState(ctx context.Context, chatID int64) error

	// InsertSlot inserts a slot keyed by its timestamp string; duplicates are
	// silently ignored.
	InsertSlot(ctx context.Context, startsAt string) error

	// DeleteSlotsBefore purges slots whose key sorts before the cutoff and
	// returns the number purged.
	DeleteSlotsBefore(ctx context.Context, cutoff string) (int64, error)

	// ListAvailableSlots returns up to limit unbooked slots strictly after
	// the given timestamp string, in ascending order.
	ListAvailableSlots(ctx context.Context, after string, limit int) ([]Slot, error)

	// FindAvailableSlotBySuffix finds the earliest unbooked future slot whose
	// key ends with the given suffix. Returns nil, nil if there is none.
	FindAvailableSlotBySuffix(ctx context.Context, suffix, after string) (*Slot, error)

	// BookSlot atomically books a slot for a user if and only if it is still
	// unbooked, reporting whether the booking won. A false result is the
	// expected lost-race outcome, not an error.
	BookSlot(ctx context.Context, startsAt string, chatID int64) (bool, error)

	// PendingReminders returns booked, not-yet-reminded slots on the given
	// day ("2006-01-02"), joined with their owners' name and language.
	PendingReminders(ctx context.Context, day string) ([]PendingReminder, error)

	// MarkReminderSent flips the one-way reminder flag. Calling it twice for
	// the same slot is a no-op the second time.
	MarkReminderSent(ctx context.Context, slotID int64) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) GetUser(ctx context.Context, chatID int64) (*User, error) {
	var user User
	query := `SELECT chat_id, name, whatsapp, phone, lang, created_at, updated_at
	          FROM users WHERE chat_id = ?`

	err := s.db.GetContext(ctx, &user, query, chatID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting user", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to get user %d: %w", chatID, err)
	}
	return &user, nil
}

func (s *sqlxStore) UpsertUser(ctx context.Context, upd UserUpdate) error {
	if upd.ChatID == 0 {
		return fmt.Errorf("user update must have a non-zero chat_id")
	}

	now := time.Now().UTC()

	// COALESCE keeps existing column values where the update carries nil.
	// The language default only applies on first insert; an update with a nil
	// language keeps whatever the row already has.
	query := `
        INSERT INTO users (chat_id, name, whatsapp, phone, lang, created_at, updated_at)
        VALUES (?, ?, ?, ?, COALESCE(?, 'fa'), ?, ?)
        ON CONFLICT(chat_id) DO UPDATE SET
            name       = COALESCE(excluded.name, users.name),
            whatsapp   = COALESCE(excluded.whatsapp, users.whatsapp),
            phone      = COALESCE(excluded.phone, users.phone),
            lang       = COALESCE(?, users.lang),
            updated_at = excluded.updated_at;
    `

	_, err := s.db.ExecContext(ctx, query,
		upd.ChatID, upd.Name, upd.Whatsapp, upd.Phone, upd.Lang, now, now, upd.Lang)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error upserting user", "chat_id", upd.ChatID, "error", err)
		return fmt.Errorf("failed to upsert user %d: %w", upd.ChatID, err)
	}

	s.logger.DebugContext(ctx, "User upserted", "chat_id", upd.ChatID)
	return nil
}

func (s *sqlxStore) AllChatIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, `SELECT chat_id FROM users ORDER BY chat_id`); err != nil {
		s.logger.ErrorContext(ctx, "Error listing chat IDs", "error", err)
		return nil, fmt.Errorf("failed to list chat IDs: %w", err)
	}
	return ids, nil
}

func (s *sqlxStore) GetState(ctx context.Context, chatID int64) (*ConversationState, error) {
	var state ConversationState
	query := `SELECT chat_id, flow, step, data, updated_at
	          FROM conversation_states WHERE chat_id = ?`

	err := s.db.GetContext(ctx, &state, query, chatID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting conversation state", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to get state for chat %d: %w", chatID, err)
	}
	return &state, nil
}

func (s *sqlxStore) SaveState(ctx context.Context, state *ConversationState) error {
	if state == nil {
		return fmt.Errorf("cannot save nil conversation state")
	}
	if !state.Flow.ValidStep(state.Step) {
		return fmt.Errorf("step %q does not belong to flow %q", state.Step, state.Flow)
	}

	state.UpdatedAt = time.Now().UTC()

	query := `
        INSERT OR REPLACE INTO conversation_states (chat_id, flow, step, data, updated_at)
        VALUES (:chat_id, :flow, :step, :data, :updated_at);
    `
	if _, err := s.db.NamedExecContext(ctx, query, state); err != nil {
		s.logger.ErrorContext(ctx, "Error saving conversation state",
			"chat_id", state.ChatID, "flow", state.Flow, "step", state.Step, "error", err)
		return fmt.Errorf("failed to save state for chat %d: %w", state.ChatID, err)
	}

	s.logger.DebugContext(ctx, "Conversation state saved",
		"chat_id", state.ChatID, "flow", state.Flow, "step", state.Step)
	return nil
}

func (s *sqlxStore) DeleteState(ctx context.Context, chatID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM conversation_states WHERE chat_id = ?`, chatID); err != nil {
		s.logger.ErrorContext(ctx, "Error deleting conversation state", "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to delete state for chat %d: %w", chatID, err)
	}
	return nil
}

func (s *sqlxStore) InsertSlot(ctx context.Context, startsAt string) error {
	if startsAt == "" {
		return fmt.Errorf("slot timestamp cannot be empty")
	}
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO slots (starts_at) VALUES (?)`, startsAt); err != nil {
		s.logger.ErrorContext(ctx, "Error inserting slot", "starts_at", startsAt, "error", err)
		return fmt.Errorf("failed to insert slot %q: %w", startsAt, err)
	}
	return nil
}

func (s *sqlxStore) DeleteSlotsBefore(ctx context.Context, cutoff string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE starts_at < ?`, cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error purging old slots", "cutoff", cutoff, "error", err)
		return 0, fmt.Errorf("failed to purge slots before %q: %w", cutoff, err)
	}

	purged, _ := result.RowsAffected()
	if purged > 0 {
		s.logger.InfoContext(ctx, "Purged old slots", "cutoff", cutoff, "count", purged)
	}
	return purged, nil
}

func (s *sqlxStore) ListAvailableSlots(ctx context.Context, after string, limit int) ([]Slot, error) {
	if limit <= 0 {
		limit = 10
	}

	var slots []Slot
	query := `
        SELECT id, starts_at, booked, booked_by, reminder_sent
        FROM slots
        WHERE booked = 0 AND starts_at > ?
        ORDER BY starts_at ASC
        LIMIT ?;
    `
	if err := s.db.SelectContext(ctx, &slots, query, after, limit); err != nil {
		s.logger.ErrorContext(ctx, "Error listing available slots", "after", after, "error", err)
		return nil, fmt.Errorf("failed to list available slots: %w", err)
	}
	return slots, nil
}

func (s *sqlxStore) FindAvailableSlotBySuffix(ctx context.Context, suffix, after string) (*Slot, error) {
	if suffix == "" {
		return nil, nil
	}

	var slot Slot
	query := `
        SELECT id, starts_at, booked, booked_by, reminder_sent
        FROM slots
        WHERE booked = 0 AND starts_at > ? AND starts_at LIKE ?
        ORDER BY starts_at ASC
        LIMIT 1;
    `
	err := s.db.GetContext(ctx, &slot, query, after, "%"+suffix)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error looking up slot by suffix", "suffix", suffix, "error", err)
		return nil, fmt.Errorf("failed to look up slot by suffix %q: %w", suffix, err)
	}
	return &slot, nil
}

func (s *sqlxStore) BookSlot(ctx context.Context, startsAt string, chatID int64) (bool, error) {
	// The conditional update is the single write path for booking: it only
	// succeeds while booked is still 0, so two concurrent attempts can never
	// both win.
	query := `UPDATE slots SET booked = 1, booked_by = ? WHERE starts_at = ? AND booked = 0`

	result, err := s.db.ExecContext(ctx, query, chatID, startsAt)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error booking slot", "starts_at", startsAt, "chat_id", chatID, "error", err)
		return false, fmt.Errorf("failed to book slot %q: %w", startsAt, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read booking result for slot %q: %w", startsAt, err)
	}

	booked := affected > 0
	s.logger.InfoContext(ctx, "Slot booking attempt",
		"starts_at", startsAt, "chat_id", chatID, "booked", booked)
	return booked, nil
}

func (s *sqlxStore) PendingReminders(ctx context.Context, day string) ([]PendingReminder, error) {
	var reminders []PendingReminder
	query := `
        SELECT slots.id AS slot_id, slots.starts_at, users.chat_id, users.name, users.lang
        FROM slots
        JOIN users ON slots.booked_by = users.chat_id
        WHERE slots.booked = 1 AND slots.reminder_sent = 0 AND slots.starts_at LIKE ?
        ORDER BY slots.starts_at ASC;
    `
	if err := s.db.SelectContext(ctx, &reminders, query, day+"%"); err != nil {
		s.logger.ErrorContext(ctx, "Error fetching pending reminders", "day", day, "error", err)
		return nil, fmt.Errorf("failed to fetch pending reminders for %q: %w", day, err)
	}
	return reminders, nil
}

func (s *sqlxStore) MarkReminderSent(ctx context.Context, slotID int64) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE slots SET reminder_sent = 1 WHERE id = ?`, slotID); err != nil {
		s.logger.ErrorContext(ctx, "Error marking reminder sent", "slot_id", slotID, "error", err)
		return fmt.Errorf("failed to mark reminder sent for slot %d: %w", slotID, err)
	}
	return nil
}
