package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/almahdi/dentalbot/internal/database"
	"github.com/almahdi/dentalbot/internal/i18n"
)

// NewConversationHandler returns the default handler that drives the
// per-chat conversation state machine: registration, booking, menu actions,
// photo analysis, and AI Q&A.
func NewConversationHandler(deps HandlerDeps) bot.HandlerFunc {
	h := conversationHandler{deps}
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		h.process(ctx, b, update)
	}
}

type conversationHandler struct {
	deps HandlerDeps
}

func (h conversationHandler) process(ctx context.Context, client ChatClient, update *models.Update) {
	log := h.deps.Logger.With("handler", "conversation")

	msg := update.Message
	if msg == nil || msg.From == nil {
		log.DebugContext(ctx, "Ignoring update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	user, err := h.deps.Store.GetUser(ctx, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load user", "error", err, "chat_id", chatID)
		return
	}

	lang := i18n.Farsi
	if user != nil {
		lang = i18n.Lang(user.Lang)
	}

	// A main-menu tap always wins: it abandons whatever flow is in progress.
	if text != "" && i18n.IsMenuLabel(text) {
		if user == nil {
			h.promptRegistration(ctx, client, chatID)
			return
		}
		if err := h.deps.Store.DeleteState(ctx, chatID); err != nil {
			log.ErrorContext(ctx, "Failed to clear state on menu tap", "error", err, "chat_id", chatID)
		}
		h.handleMenuTap(ctx, client, chatID, lang, text)
		return
	}

	// Photos bypass the flows: they go straight to AI analysis without
	// touching the conversation state.
	if len(msg.Photo) > 0 {
		if user == nil {
			h.promptRegistration(ctx, client, chatID)
			return
		}
		h.handlePhoto(ctx, client, chatID, lang, user, msg)
		return
	}

	state, err := h.deps.Store.GetState(ctx, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load conversation state", "error", err, "chat_id", chatID)
		return
	}

	if state != nil {
		switch state.Flow {
		case database.FlowRegistration:
			h.handleRegistrationStep(ctx, client, chatID, state, msg)
		case database.FlowBooking:
			h.handleBookingStep(ctx, client, chatID, lang, user, state, text)
		default:
			// Unknown flow in the database; reset rather than wedge the chat.
			log.WarnContext(ctx, "Dropping state with unknown flow", "flow", state.Flow, "chat_id", chatID)
			if err := h.deps.Store.DeleteState(ctx, chatID); err != nil {
				log.ErrorContext(ctx, "Failed to drop unknown-flow state", "error", err, "chat_id", chatID)
			}
		}
		return
	}

	if text == "" {
		log.DebugContext(ctx, "Ignoring empty idle message", "chat_id", chatID)
		return
	}

	if user == nil {
		h.promptRegistration(ctx, client, chatID)
		return
	}

	// Idle registered chat with free text: hand it to the AI assistant.
	h.handleQuestion(ctx, client, chatID, lang, user, text)
}

// promptRegistration tells an unregistered chat to run /start. The language
// isn't known yet, so the message carries Farsi and English.
func (h conversationHandler) promptRegistration(ctx context.Context, client ChatClient, chatID int64) {
	text := i18n.T(i18n.Farsi).PleaseRegisterFirst + "\n\n" + i18n.T(i18n.English).PleaseRegisterFirst
	sendText(ctx, client, h.deps, chatID, text)
}

func (h conversationHandler) handleMenuTap(ctx context.Context, client ChatClient, chatID int64, lang i18n.Lang, text string) {
	log := h.deps.Logger.With("handler", "conversation")

	// The tapped label may belong to any language's keyboard; resolve it
	// against all of them, preferring the user's own language.
	action, ok := i18n.MenuAction(lang, text)
	if !ok {
		for _, other := range i18n.Supported() {
			if action, ok = i18n.MenuAction(other, text); ok {
				break
			}
		}
	}
	if !ok {
		log.WarnContext(ctx, "Menu interceptor matched but no action resolved", "chat_id", chatID, "text", text)
		return
	}

	t := i18n.T(lang)
	switch action {
	case i18n.ActionServices:
		sendWithMarkup(ctx, client, h.deps, chatID, t.ServicesReply, i18n.MainKeyboard(lang))
	case i18n.ActionHours:
		sendWithMarkup(ctx, client, h.deps, chatID, t.HoursReply, i18n.MainKeyboard(lang))
	case i18n.ActionAddress:
		sendMarkdown(ctx, client, h.deps, chatID, t.AddressReply, i18n.MainKeyboard(lang))
	case i18n.ActionBook:
		h.startBooking(ctx, client, chatID, lang)
	case i18n.ActionAsk:
		sendWithMarkup(ctx, client, h.deps, chatID, t.AskPrompt, i18n.MainKeyboard(lang))
	}
}

func (h conversationHandler) handleQuestion(ctx context.Context, client ChatClient, chatID int64, lang i18n.Lang, user *database.User, question string) {
	log := h.deps.Logger.With("handler", "conversation")

	_, _ = client.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping})

	aiCtx, cancel := context.WithTimeout(ctx, aiProcessingTimeout)
	defer cancel()

	answer, err := h.deps.GeminiClient.AskQuestion(aiCtx, question, lang)
	if err != nil {
		log.ErrorContext(ctx, "AI question answering failed", "error", err, "chat_id", chatID)
		sendText(ctx, client, h.deps, chatID, i18n.T(lang).AIConnectionError)
		return
	}

	sendText(ctx, client, h.deps, chatID, h.greeting(lang, user)+"🦷 AI:\n"+answer)
}

// greeting renders the localized "Dear <name>, " prefix for AI replies.
func (h conversationHandler) greeting(lang i18n.Lang, user *database.User) string {
	name := user.Name.String
	if name == "" {
		return ""
	}
	return fmt.Sprintf(i18n.T(lang).Greeting, name)
}
