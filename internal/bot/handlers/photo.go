package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/almahdi/dentalbot/internal/database"
	"github.com/almahdi/dentalbot/internal/i18n"
)

// handlePhoto downloads the photo the patient sent and replies with the AI
// analysis. The reply always carries the not-a-diagnosis disclaimer.
func (h conversationHandler) handlePhoto(ctx context.Context, client ChatClient, chatID int64, lang i18n.Lang, user *database.User, msg *models.Message) {
	log := h.deps.Logger.With("handler", "photo")
	t := i18n.T(lang)

	var bestPhoto models.PhotoSize
	bestQuality := 0
	for _, photo := range msg.Photo {
		if photo.Width*photo.Height > bestQuality {
			bestQuality = photo.Width * photo.Height
			bestPhoto = photo
		}
	}

	maxBytes := h.deps.Config.Telegram.MaxPhotoBytes
	if bestPhoto.FileSize > 0 && int64(bestPhoto.FileSize) > maxBytes {
		log.InfoContext(ctx, "Rejected oversized photo", "chat_id", chatID, "file_size", bestPhoto.FileSize)
		sendText(ctx, client, h.deps, chatID, t.FileTooLarge)
		return
	}

	sendText(ctx, client, h.deps, chatID, t.PhotoAnalyzing)
	_, _ = client.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping})

	data, mimeType, err := DownloadPhoto(ctx, client, h.deps.Config.Telegram.Token, bestPhoto.FileID, maxBytes)
	if err != nil {
		log.ErrorContext(ctx, "Photo download failed", "error", err, "chat_id", chatID, "file_id", bestPhoto.FileID)
		sendText(ctx, client, h.deps, chatID, t.AIError)
		return
	}

	aiCtx, cancel := context.WithTimeout(ctx, aiProcessingTimeout)
	defer cancel()

	analysis, err := h.deps.GeminiClient.AnalyzeImage(aiCtx, data, mimeType, msg.Caption, lang)
	if err != nil {
		log.ErrorContext(ctx, "AI image analysis failed", "error", err, "chat_id", chatID)
		sendText(ctx, client, h.deps, chatID, t.AIConnectionError)
		return
	}

	sendText(ctx, client, h.deps, chatID, h.greeting(lang, user)+"🦷 AI:\n"+analysis+t.PhotoDisclaimer)
}
