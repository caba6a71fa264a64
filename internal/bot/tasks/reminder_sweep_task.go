package tasks

import (
	"context"
	"fmt"
	"time"
)

// newReminderSweepTask creates the scheduled task that sends next-day
// appointment reminders.
func newReminderSweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "reminder_sweep")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled reminder sweep...")
		startTime := time.Now()

		sent, err := deps.Reminders.Run(ctx)

		duration := time.Since(startTime)
		if err != nil {
			log.ErrorContext(ctx, "Reminder sweep failed", "error", err, "duration", duration)
			return fmt.Errorf("reminder sweep failed: %w", err)
		}

		log.InfoContext(ctx, "Scheduled reminder sweep completed", "sent", sent, "duration", duration)
		return nil
	}
}
