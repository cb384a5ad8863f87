package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	sigerrors "github.com/ducminhle1904/directional-signals/internal/errors"
)

// TelegramAPI is the Bot API endpoint
const TelegramAPI = "https://api.telegram.org"

// Telegram parse modes
const (
	ParseModeHTML     = "HTML"
	ParseModeMarkdown = "Markdown"
	ParseModePlain    = ""
)

// TelegramNotifier sends alerts through the Telegram Bot API
type TelegramNotifier struct {
	token     string
	chatID    string
	parseMode string
	silent    bool
	baseURL   string
	client    *http.Client
	logger    zerolog.Logger
}

// NewTelegramNotifier creates a notifier for the default chatID.
// parseMode is HTML, Markdown or empty for plain text.
func NewTelegramNotifier(token, chatID, parseMode string, logger zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		token:     token,
		chatID:    chatID,
		parseMode: parseMode,
		baseURL:   TelegramAPI,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
	}
}

// WithBaseURL points the notifier at another Bot API server
func (t *TelegramNotifier) WithBaseURL(baseURL string) *TelegramNotifier {
	t.baseURL = strings.TrimRight(baseURL, "/")
	return t
}

// WithSilent sends messages without a notification sound
func (t *TelegramNotifier) WithSilent(silent bool) *TelegramNotifier {
	t.silent = silent
	return t
}

var levelEmoji = map[string]string{
	LevelInfo:    "ℹ️",
	LevelWarning: "⚠️",
	LevelError:   "❌",
	LevelSuccess: "✅",
}

var (
	htmlEscaper     = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")
)

// escape makes text literal under the notifier's parse mode
func (t *TelegramNotifier) escape(text string) string {
	switch t.parseMode {
	case ParseModeHTML:
		return htmlEscaper.Replace(text)
	case ParseModeMarkdown:
		return markdownEscaper.Replace(text)
	}
	return text
}

// FormatMessage renders the alert text for the notifier's parse mode.
// Title and message are escaped; only the title emphasis is markup.
func (t *TelegramNotifier) FormatMessage(alert Alert) string {
	emoji, ok := levelEmoji[alert.Level]
	if !ok {
		emoji = "📢"
	}

	title := t.escape(alert.Title)
	message := t.escape(alert.Message)
	if title != "" {
		switch t.parseMode {
		case ParseModeHTML:
			title = "<b>" + title + "</b>"
		case ParseModeMarkdown:
			title = "*" + title + "*"
		}
	}

	switch {
	case title != "" && message != "":
		return fmt.Sprintf("%s %s\n\n%s", emoji, title, message)
	case title != "":
		return fmt.Sprintf("%s %s", emoji, title)
	default:
		return fmt.Sprintf("%s %s", emoji, message)
	}
}

// SendAlert sends alert to the default chat
func (t *TelegramNotifier) SendAlert(ctx context.Context, alert Alert) error {
	return t.SendTo(ctx, alert)
}

// SendTo sends alert to chatIDs, or the default chat when none are given.
// It succeeds when at least one chat accepted the message.
func (t *TelegramNotifier) SendTo(ctx context.Context, alert Alert, chatIDs ...string) error {
	if len(chatIDs) == 0 {
		chatIDs = []string{t.chatID}
	}

	text := t.FormatMessage(alert)
	sent := 0
	var lastErr error
	for _, chatID := range chatIDs {
		if err := t.send(ctx, chatID, text); err != nil {
			t.logger.Error().Err(err).Str("chat_id", chatID).Msg("Telegram send failed")
			lastErr = err
			continue
		}
		sent++
	}

	if sent == 0 {
		return sigerrors.NewDeliveryError("telegram", "send", lastErr).
			WithContext("chats", len(chatIDs))
	}
	t.logger.Debug().Int("sent", sent).Int("chats", len(chatIDs)).Str("title", alert.Title).Msg("Telegram alert sent")
	return nil
}

func (t *TelegramNotifier) send(ctx context.Context, chatID, text string) error {
	payload := map[string]interface{}{
		"chat_id":              chatID,
		"text":                 text,
		"disable_notification": t.silent,
	}
	if t.parseMode != ParseModePlain {
		payload["parse_mode"] = t.parseMode
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
