package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	photoDownloadTimeout = 30 * time.Second
	aiProcessingTimeout  = 2 * time.Minute
	sendMessageTimeout   = 10 * time.Second
)

// ChatClient is the Telegram surface the handlers use. *bot.Bot satisfies
// it; tests substitute a fake.
type ChatClient interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
	GetFile(ctx context.Context, params *bot.GetFileParams) (*models.File, error)
}

// sendText sends a plain text message, logging failures.
func sendText(ctx context.Context, client ChatClient, deps HandlerDeps, chatID int64, text string) {
	sendWithMarkup(ctx, client, deps, chatID, text, nil)
}

// sendWithMarkup sends a text message with an optional reply markup.
func sendWithMarkup(ctx context.Context, client ChatClient, deps HandlerDeps, chatID int64, text string, markup models.ReplyMarkup) {
	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()

	params := &bot.SendMessageParams{ChatID: chatID, Text: text}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := client.SendMessage(sendCtx, params); err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
	}
}

// sendMarkdown sends a Markdown-formatted message with an optional markup.
func sendMarkdown(ctx context.Context, client ChatClient, deps HandlerDeps, chatID int64, text string, markup models.ReplyMarkup) {
	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()

	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdown,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := client.SendMessage(sendCtx, params); err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to send markdown message", "error", err, "chat_id", chatID)
	}
}

// DownloadPhoto downloads a photo from Telegram's file API using the provided
// file ID. It returns the photo data, detected MIME type, and any error.
func DownloadPhoto(ctx context.Context, client ChatClient, token, fileID string, maxBytes int64) (data []byte, mimeType string, err error) {
	if token == "" {
		return nil, "", fmt.Errorf("empty token provided for photo download")
	}
	if fileID == "" {
		return nil, "", fmt.Errorf("empty fileID provided for photo download")
	}
	if ctx.Err() != nil {
		return nil, "", fmt.Errorf("context cancelled before file download: %w", ctx.Err())
	}

	downloadCtx, cancel := context.WithTimeout(ctx, photoDownloadTimeout)
	defer cancel()

	fileObj, err := client.GetFile(downloadCtx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get file info from Telegram: %w", err)
	}
	if fileObj.FilePath == "" {
		return nil, "", fmt.Errorf("empty file path returned from Telegram for file ID %s", fileID)
	}

	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", token, fileObj.FilePath)
	req, err := http.NewRequestWithContext(downloadCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create HTTP request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download file: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, "", fmt.Errorf("unexpected status code %d from file API: %s", resp.StatusCode, string(bodyBytes))
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file data: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("received empty file data")
	}

	mimeType = http.DetectContentType(data)
	return data, mimeType, nil
}
