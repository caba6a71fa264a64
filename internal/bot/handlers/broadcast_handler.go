package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewBroadcastHandler returns a handler for the /broadcast command. The
// registry wraps it with AdminOnly so only the operator chat reaches it.
func NewBroadcastHandler(deps HandlerDeps) bot.HandlerFunc {
	h := broadcastHandler{deps}
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		h.process(ctx, b, update)
	}
}

type broadcastHandler struct {
	deps HandlerDeps
}

func (h broadcastHandler) process(ctx context.Context, client ChatClient, update *models.Update) {
	log := h.deps.Logger.With("handler", "broadcast")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	body := strings.TrimSpace(strings.TrimPrefix(update.Message.Text, "/broadcast"))
	if body == "" {
		sendText(ctx, client, h.deps, chatID, "Usage: /broadcast <message>")
		return
	}

	chatIDs, err := h.deps.Store.AllChatIDs(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load chat IDs for broadcast", "error", err)
		sendText(ctx, client, h.deps, chatID, "Broadcast failed: could not load recipients.")
		return
	}

	sent := 0
	for _, recipient := range chatIDs {
		if _, err := client.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: recipient,
			Text:   "📢 " + body,
		}); err != nil {
			// Users who blocked the bot fail here; keep going.
			log.WarnContext(ctx, "Failed to deliver broadcast message", "chat_id", recipient, "error", err)
			continue
		}
		sent++
	}

	log.InfoContext(ctx, "Broadcast finished", "recipients", len(chatIDs), "sent", sent)
	sendText(ctx, client, h.deps, chatID, fmt.Sprintf("Broadcast delivered to %d of %d users.", sent, len(chatIDs)))
}
