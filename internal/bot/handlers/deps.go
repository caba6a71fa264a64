package handlers

import (
	"log/slog"

	"github.com/almahdi/dentalbot/internal/config"
	"github.com/almahdi/dentalbot/internal/database"
	"github.com/almahdi/dentalbot/internal/gemini"
	"github.com/almahdi/dentalbot/internal/slots"
)

// HandlerDeps provides dependencies for Telegram message handlers.
type HandlerDeps struct {
	Logger       *slog.Logger
	Config       *config.Config
	Store        database.Store
	GeminiClient gemini.Client
	Slots        *slots.Manager
}
