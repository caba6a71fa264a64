package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"

	"github.com/almahdi/dentalbot/internal/database"
	"github.com/almahdi/dentalbot/internal/i18n"
	"github.com/almahdi/dentalbot/internal/slots"
)

// startBooking begins the booking flow at the service step.
func (h conversationHandler) startBooking(ctx context.Context, client ChatClient, chatID int64, lang i18n.Lang) {
	log := h.deps.Logger.With("handler", "booking")

	state := &database.ConversationState{
		ChatID: chatID,
		Flow:   database.FlowBooking,
		Step:   database.StepService,
		Data:   database.StateData{Lang: string(lang)},
	}
	if err := h.deps.Store.SaveState(ctx, state); err != nil {
		log.ErrorContext(ctx, "Failed to start booking flow", "error", err, "chat_id", chatID)
		sendText(ctx, client, h.deps, chatID, i18n.T(lang).AIError)
		return
	}

	sendWithMarkup(ctx, client, h.deps, chatID, i18n.T(lang).BookingPrompt, i18n.CancelKeyboard(lang))
}

// handleBookingStep advances the booking flow one step. The flow is
// service -> doctor -> slot; the cancel button aborts at any step.
func (h conversationHandler) handleBookingStep(ctx context.Context, client ChatClient, chatID int64, lang i18n.Lang, user *database.User, state *database.ConversationState, text string) {
	log := h.deps.Logger.With("handler", "booking")
	t := i18n.T(lang)

	if i18n.IsCancel(lang, text) {
		if err := h.deps.Store.DeleteState(ctx, chatID); err != nil {
			log.ErrorContext(ctx, "Failed to clear state on cancel", "error", err, "chat_id", chatID)
		}
		sendWithMarkup(ctx, client, h.deps, chatID, t.Cancelled, i18n.MainKeyboard(lang))
		return
	}

	switch state.Step {
	case database.StepService:
		if text == "" {
			sendWithMarkup(ctx, client, h.deps, chatID, t.BookingPrompt, i18n.CancelKeyboard(lang))
			return
		}
		state.Step = database.StepDoctor
		state.Data.Service = text
		if err := h.deps.Store.SaveState(ctx, state); err != nil {
			log.ErrorContext(ctx, "Failed to advance booking state", "error", err, "chat_id", chatID)
			return
		}
		sendWithMarkup(ctx, client, h.deps, chatID, t.DoctorPrompt, i18n.DoctorsKeyboard(lang))

	case database.StepDoctor:
		if text == "" {
			sendWithMarkup(ctx, client, h.deps, chatID, t.DoctorPrompt, i18n.DoctorsKeyboard(lang))
			return
		}
		state.Step = database.StepSlot
		state.Data.Doctor = text
		if err := h.deps.Store.SaveState(ctx, state); err != nil {
			log.ErrorContext(ctx, "Failed to advance booking state", "error", err, "chat_id", chatID)
			return
		}
		h.offerSlots(ctx, client, chatID, lang)

	case database.StepSlot:
		h.handleSlotStep(ctx, client, chatID, lang, user, state, text)

	default:
		log.WarnContext(ctx, "Booking state has unknown step, resetting", "step", state.Step, "chat_id", chatID)
		if err := h.deps.Store.DeleteState(ctx, chatID); err != nil {
			log.ErrorContext(ctx, "Failed to reset broken booking state", "error", err, "chat_id", chatID)
		}
	}
}

// offerSlots sends the current list of available slots, or ends the flow
// when none remain.
func (h conversationHandler) offerSlots(ctx context.Context, client ChatClient, chatID int64, lang i18n.Lang) {
	log := h.deps.Logger.With("handler", "booking")
	t := i18n.T(lang)

	available, err := h.deps.Slots.ListAvailable(ctx, slots.DefaultListLimit)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list available slots", "error", err, "chat_id", chatID)
		sendText(ctx, client, h.deps, chatID, t.AIError)
		return
	}

	if len(available) == 0 {
		if err := h.deps.Store.DeleteState(ctx, chatID); err != nil {
			log.ErrorContext(ctx, "Failed to clear state after empty slot list", "error", err, "chat_id", chatID)
		}
		sendWithMarkup(ctx, client, h.deps, chatID, t.NoSlots, i18n.MainKeyboard(lang))
		return
	}

	labels := make([]string, 0, len(available))
	for _, s := range available {
		labels = append(labels, slots.Label(s.StartsAt))
	}
	sendWithMarkup(ctx, client, h.deps, chatID, t.TimePrompt, i18n.SlotsKeyboard(lang, labels))
}

func (h conversationHandler) handleSlotStep(ctx context.Context, client ChatClient, chatID int64, lang i18n.Lang, user *database.User, state *database.ConversationState, text string) {
	log := h.deps.Logger.With("handler", "booking")
	t := i18n.T(lang)

	slot, err := h.deps.Slots.FindByLabel(ctx, text)
	if err != nil {
		log.ErrorContext(ctx, "Failed to resolve slot label", "error", err, "chat_id", chatID)
		sendText(ctx, client, h.deps, chatID, t.AIError)
		return
	}
	if slot == nil {
		// Either the label is garbage or someone else just took the slot;
		// both get a fresh list.
		sendText(ctx, client, h.deps, chatID, t.SlotTaken)
		h.offerSlots(ctx, client, chatID, lang)
		return
	}

	booked, err := h.deps.Slots.Book(ctx, slot.StartsAt, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to book slot", "error", err, "chat_id", chatID)
		sendText(ctx, client, h.deps, chatID, t.AIError)
		return
	}
	if !booked {
		sendText(ctx, client, h.deps, chatID, t.SlotTaken)
		h.offerSlots(ctx, client, chatID, lang)
		return
	}

	if err := h.deps.Store.DeleteState(ctx, chatID); err != nil {
		log.ErrorContext(ctx, "Failed to clear state after booking", "error", err, "chat_id", chatID)
	}

	log.InfoContext(ctx, "Booking confirmed", "chat_id", chatID, "starts_at", slot.StartsAt)
	sendWithMarkup(ctx, client, h.deps, chatID, t.BookingDone, i18n.MainKeyboard(lang))

	h.notifyOperator(ctx, client, user, state, slot.StartsAt)
}

// notifyOperator tells the operator chat about a confirmed booking. Failures
// are logged only; the patient's booking already succeeded.
func (h conversationHandler) notifyOperator(ctx context.Context, client ChatClient, user *database.User, state *database.ConversationState, startsAt string) {
	adminChatID := h.deps.Config.Telegram.AdminChatID
	if adminChatID == 0 {
		return
	}

	name := user.Name.String
	if name == "" {
		name = fmt.Sprintf("chat %d", user.ChatID)
	}
	text := fmt.Sprintf("📅 New booking: %s — %s\nService: %s\nDoctor: %s\nPhone: %s",
		name, startsAt, state.Data.Service, state.Data.Doctor, user.Phone.String)

	if _, err := client.SendMessage(ctx, &bot.SendMessageParams{ChatID: adminChatID, Text: text}); err != nil {
		h.deps.Logger.WarnContext(ctx, "Failed to notify operator about booking", "error", err, "chat_id", user.ChatID)
	}
}
