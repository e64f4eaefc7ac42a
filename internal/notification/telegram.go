package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/allisson/order-guard/internal/errors"
)

// DefaultAPIURL is the production Telegram Bot API base URL.
const DefaultAPIURL = "https://api.telegram.org"

// Config holds Telegram client configuration.
type Config struct {
	APIURL   string
	BotToken string
	ChatID   string
	Timeout  time.Duration
}

// TelegramClient delivers messages via the Telegram Bot API. Messages are sent
// with Markdown formatting; on failure a single plain-text retry is attempted
// before giving up.
type TelegramClient struct {
	baseURL    string
	botToken   string
	chatID     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewTelegramClient creates a Telegram notification client.
func NewTelegramClient(cfg Config, logger *slog.Logger) *TelegramClient {
	baseURL := cfg.APIURL
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &TelegramClient{
		baseURL:    baseURL,
		botToken:   cfg.BotToken,
		chatID:     cfg.ChatID,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Send delivers a message. The Markdown attempt runs first; if it fails for
// any reason a plain-text fallback is tried once. Returns an error only when
// both attempts fail.
func (c *TelegramClient) Send(ctx context.Context, text string) error {
	err := c.sendMessage(ctx, text, "Markdown")
	if err == nil {
		return nil
	}

	c.logger.Error("telegram send failed, retrying as plain text", slog.Any("error", err))

	if fallbackErr := c.sendMessage(ctx, text, ""); fallbackErr != nil {
		c.logger.Error("telegram send failed (plain text fallback)", slog.Any("error", fallbackErr))
		return apperrors.Wrap(err, "telegram delivery failed")
	}

	return nil
}

// sendMessage posts a single sendMessage call with the given parse mode.
// An empty parse mode sends unformatted text.
func (c *TelegramClient) sendMessage(ctx context.Context, text, parseMode string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.botToken)

	payload := map[string]string{
		"chat_id": c.chatID,
		"text":    text,
	}
	if parseMode != "" {
		payload["parse_mode"] = parseMode
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal telegram payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return apperrors.Wrap(err, "failed to build telegram request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(err, "failed to send telegram message")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("telegram send failed: status %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
