package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/almahdi/dentalbot/internal/database"
	"github.com/almahdi/dentalbot/internal/i18n"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	h := startHandler{deps}
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		h.process(ctx, b, update)
	}
}

// startHandler processes the /start command using injected dependencies.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) process(ctx context.Context, client ChatClient, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /start command", "chat_id", chatID)

	// /start always restarts registration from the language step, dropping
	// whatever flow was in progress.
	if err := h.deps.Store.DeleteState(ctx, chatID); err != nil {
		log.ErrorContext(ctx, "Failed to clear conversation state", "error", err, "chat_id", chatID)
	}

	state := &database.ConversationState{
		ChatID: chatID,
		Flow:   database.FlowRegistration,
		Step:   database.StepLang,
	}
	if err := h.deps.Store.SaveState(ctx, state); err != nil {
		log.ErrorContext(ctx, "Failed to save registration state", "error", err, "chat_id", chatID)
		sendText(ctx, client, h.deps, chatID, i18n.T(i18n.English).AIError)
		return
	}

	// The language isn't known yet, so the prompt carries every language.
	var sb strings.Builder
	for i, lang := range i18n.Supported() {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(i18n.T(lang).SelectLanguage)
	}

	sendWithMarkup(ctx, client, h.deps, chatID, sb.String(), i18n.LanguageKeyboard())
}
