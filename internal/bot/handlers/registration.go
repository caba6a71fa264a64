package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/almahdi/dentalbot/internal/database"
	"github.com/almahdi/dentalbot/internal/i18n"
)

// handleRegistrationStep advances the registration flow one step. The flow
// is lang -> name -> whatsapp -> phone; the phone step only accepts a
// platform-verified contact belonging to the chat itself.
func (h conversationHandler) handleRegistrationStep(ctx context.Context, client ChatClient, chatID int64, state *database.ConversationState, msg *models.Message) {
	log := h.deps.Logger.With("handler", "registration")
	text := strings.TrimSpace(msg.Text)

	switch state.Step {
	case database.StepLang:
		lang, ok := i18n.MatchLanguageSelection(text)
		if !ok {
			sendWithMarkup(ctx, client, h.deps, chatID, i18n.T(i18n.Farsi).SelectLanguage+"\n"+i18n.T(i18n.English).SelectLanguage, i18n.LanguageKeyboard())
			return
		}

		// Picking a language creates the user row; from here on the chat
		// counts as registered even if the rest of the flow is abandoned.
		langStr := string(lang)
		if err := h.deps.Store.UpsertUser(ctx, database.UserUpdate{ChatID: chatID, Lang: &langStr}); err != nil {
			log.ErrorContext(ctx, "Failed to store user language", "error", err, "chat_id", chatID)
			sendText(ctx, client, h.deps, chatID, i18n.T(lang).AIError)
			return
		}

		state.Step = database.StepName
		state.Data.Lang = langStr
		if err := h.deps.Store.SaveState(ctx, state); err != nil {
			log.ErrorContext(ctx, "Failed to advance registration state", "error", err, "chat_id", chatID)
			return
		}
		sendWithMarkup(ctx, client, h.deps, chatID, i18n.T(lang).NamePrompt, i18n.RemoveKeyboard())

	case database.StepName:
		lang := i18n.Lang(state.Data.Lang)
		// A stale language-keyboard tap must not be stored as a name.
		if text == "" || i18n.IsSelectorLabel(text) {
			sendText(ctx, client, h.deps, chatID, i18n.T(lang).NameError)
			return
		}

		state.Step = database.StepWhatsapp
		state.Data.Name = text
		if err := h.deps.Store.SaveState(ctx, state); err != nil {
			log.ErrorContext(ctx, "Failed to advance registration state", "error", err, "chat_id", chatID)
			return
		}
		sendText(ctx, client, h.deps, chatID, i18n.T(lang).WhatsappPrompt)

	case database.StepWhatsapp:
		lang := i18n.Lang(state.Data.Lang)
		if text == "" {
			sendText(ctx, client, h.deps, chatID, i18n.T(lang).WhatsappPrompt)
			return
		}

		state.Step = database.StepPhone
		state.Data.Whatsapp = text
		if err := h.deps.Store.SaveState(ctx, state); err != nil {
			log.ErrorContext(ctx, "Failed to advance registration state", "error", err, "chat_id", chatID)
			return
		}
		sendWithMarkup(ctx, client, h.deps, chatID, i18n.T(lang).PhonePrompt, i18n.ContactKeyboard(lang))

	case database.StepPhone:
		h.handlePhoneStep(ctx, client, chatID, state, msg)

	default:
		log.WarnContext(ctx, "Registration state has unknown step, resetting", "step", state.Step, "chat_id", chatID)
		if err := h.deps.Store.DeleteState(ctx, chatID); err != nil {
			log.ErrorContext(ctx, "Failed to reset broken registration state", "error", err, "chat_id", chatID)
		}
	}
}

func (h conversationHandler) handlePhoneStep(ctx context.Context, client ChatClient, chatID int64, state *database.ConversationState, msg *models.Message) {
	log := h.deps.Logger.With("handler", "registration")
	lang := i18n.Lang(state.Data.Lang)
	t := i18n.T(lang)

	if msg.Contact == nil {
		// Typed phone numbers are not accepted; only the contact button
		// proves number ownership.
		sendWithMarkup(ctx, client, h.deps, chatID, t.UseButtonError, i18n.ContactKeyboard(lang))
		return
	}

	// A forwarded contact carries someone else's user ID. In a private chat
	// the chat ID equals the owner's user ID, so this pins the number to
	// the sender.
	if msg.Contact.UserID != chatID {
		log.WarnContext(ctx, "Rejected contact not owned by sender", "chat_id", chatID, "contact_user_id", msg.Contact.UserID)
		sendWithMarkup(ctx, client, h.deps, chatID, t.NotYourContact, i18n.ContactKeyboard(lang))
		return
	}

	upd := database.UserUpdate{
		ChatID: chatID,
		Phone:  &msg.Contact.PhoneNumber,
	}
	if state.Data.Name != "" {
		upd.Name = &state.Data.Name
	}
	if state.Data.Whatsapp != "" {
		upd.Whatsapp = &state.Data.Whatsapp
	}
	if err := h.deps.Store.UpsertUser(ctx, upd); err != nil {
		log.ErrorContext(ctx, "Failed to complete registration", "error", err, "chat_id", chatID)
		sendText(ctx, client, h.deps, chatID, t.AIError)
		return
	}

	if err := h.deps.Store.DeleteState(ctx, chatID); err != nil {
		log.ErrorContext(ctx, "Failed to clear state after registration", "error", err, "chat_id", chatID)
	}

	log.InfoContext(ctx, "Registration completed", "chat_id", chatID)
	sendWithMarkup(ctx, client, h.deps, chatID, t.RegComplete, i18n.MainKeyboard(lang))
}
