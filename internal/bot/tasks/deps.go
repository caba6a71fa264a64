// Package tasks implements scheduled background tasks for the clinic bot.
// It includes task definitions, dependencies, and registration mechanisms.
package tasks

import (
	"log/slog"

	"github.com/almahdi/dentalbot/internal/config"
	"github.com/almahdi/dentalbot/internal/database"
	"github.com/almahdi/dentalbot/internal/reminder"
	"github.com/almahdi/dentalbot/internal/slots"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger    *slog.Logger
	Store     database.Store
	Slots     *slots.Manager
	Reminders *reminder.Dispatcher
	Config    *config.Config
}
