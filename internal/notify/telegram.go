// Package notify доставляет уведомления о новых заказах во внешний канал.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTelegramURL задаёт адрес Telegram Bot API по умолчанию.
const DefaultTelegramURL = "https://api.telegram.org"

// TelegramClient отправляет сообщения в чат через Telegram Bot API.
type TelegramClient struct {
	baseURL    string
	token      string
	chatID     string
	httpClient *http.Client
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// NewTelegramClient создаёт клиент бота с указанным токеном для заданного чата.
func NewTelegramClient(baseURL, token, chatID string) *TelegramClient {
	if baseURL == "" {
		baseURL = DefaultTelegramURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	return &TelegramClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		chatID:  chatID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send отправляет HTML-сообщение в чат.
func (c *TelegramClient) Send(ctx context.Context, text string) error {
	if c == nil || c.token == "" || c.chatID == "" {
		return fmt.Errorf("telegram client not configured")
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                c.chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// URL содержит токен бота и не должен попасть в журнал.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || !result.OK {
		return fmt.Errorf("unexpected status: %d: %s", resp.StatusCode, result.Description)
	}

	return nil
}
