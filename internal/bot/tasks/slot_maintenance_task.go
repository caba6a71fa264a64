package tasks

import (
	"context"
	"fmt"
	"time"
)

// newSlotMaintenanceTask creates the scheduled task that tops up the rolling
// slot window and purges stale slots.
func newSlotMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "slot_maintenance")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled slot maintenance...")
		startTime := time.Now()

		err := deps.Slots.EnsureFutureSlots(ctx)

		duration := time.Since(startTime)
		if err != nil {
			log.ErrorContext(ctx, "Slot maintenance failed", "error", err, "duration", duration)
			return fmt.Errorf("slot maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "Scheduled slot maintenance completed", "duration", duration)
		return nil
	}
}
