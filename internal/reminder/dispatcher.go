// Package reminder sends next-day appointment reminders to booked patients.
package reminder

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/almahdi/dentalbot/internal/database"
	"github.com/almahdi/dentalbot/internal/i18n"
	"github.com/almahdi/dentalbot/internal/slots"
)

// Sender is the Telegram send surface the dispatcher needs. *bot.Bot
// satisfies it; tests substitute a fake.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Dispatcher delivers one reminder per booked slot starting tomorrow.
// Each slot is marked sent after successful delivery, so a sweep that runs
// twice in a day never double-sends.
type Dispatcher struct {
	store  database.Store
	slots  *slots.Manager
	sender Sender
	logger *slog.Logger
}

// NewDispatcher creates a reminder dispatcher.
func NewDispatcher(store database.Store, mgr *slots.Manager, sender Sender, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{
		store:  store,
		slots:  mgr,
		sender: sender,
		logger: logger.With("component", "reminder"),
	}
}

// Run sends reminders for tomorrow's booked, not-yet-reminded slots and
// returns how many were delivered. A failed send is logged and skipped
// without marking the slot, so the next sweep retries it.
func (d *Dispatcher) Run(ctx context.Context) (int, error) {
	day := d.slots.TomorrowDay()

	pending, err := d.store.PendingReminders(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("failed to load pending reminders: %w", err)
	}

	sent := 0
	for _, p := range pending {
		name := p.Name.String
		if name == "" {
			name = "Patient"
		}
		date, clock := slots.SplitKey(p.StartsAt)
		text := "⏰ " + fmt.Sprintf(i18n.T(i18n.Lang(p.Lang)).ReminderMsg, name, date, clock)

		if _, err := d.sender.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: p.ChatID,
			Text:   text,
		}); err != nil {
			d.logger.WarnContext(ctx, "Failed to send reminder, will retry next sweep", "chat_id", p.ChatID, "slot_id", p.SlotID, "error", err)
			continue
		}

		if err := d.store.MarkReminderSent(ctx, p.SlotID); err != nil {
			d.logger.ErrorContext(ctx, "Failed to mark reminder sent", "slot_id", p.SlotID, "error", err)
			continue
		}
		sent++
	}

	d.logger.InfoContext(ctx, "Reminder sweep finished", "day", day, "pending", len(pending), "sent", sent)
	return sent, nil
}
