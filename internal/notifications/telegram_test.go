package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sigerrors "github.com/ducminhle1904/directional-signals/internal/errors"
	"github.com/ducminhle1904/directional-signals/internal/features"
)

type telegramServer struct {
	mu       sync.Mutex
	payloads []map[string]interface{}
	paths    []string
	reject   map[string]bool
}

func (s *telegramServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&payload)

	s.mu.Lock()
	s.payloads = append(s.payloads, payload)
	s.paths = append(s.paths, r.URL.Path)
	s.mu.Unlock()

	if chatID, _ := payload["chat_id"].(string); s.reject[chatID] {
		http.Error(w, `{"ok":false,"description":"chat not found"}`, http.StatusBadRequest)
		return
	}
	_, _ = w.Write([]byte(`{"ok":true}`))
}

func newTestNotifier(t *testing.T, parseMode string, reject ...string) (*TelegramNotifier, *telegramServer) {
	t.Helper()
	srv := &telegramServer{reject: map[string]bool{}}
	for _, id := range reject {
		srv.reject[id] = true
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	n := NewTelegramNotifier("TOKEN", "100", parseMode, zerolog.Nop()).WithBaseURL(ts.URL)
	return n, srv
}

func TestFormatMessage(t *testing.T) {
	alert := Alert{Level: LevelWarning, Title: "Signal", Message: "BTCUSDT short"}

	html := NewTelegramNotifier("", "", ParseModeHTML, zerolog.Nop())
	assert.Equal(t, "⚠️ <b>Signal</b>\n\nBTCUSDT short", html.FormatMessage(alert))

	md := NewTelegramNotifier("", "", ParseModeMarkdown, zerolog.Nop())
	assert.Equal(t, "⚠️ *Signal*\n\nBTCUSDT short", md.FormatMessage(alert))

	plain := NewTelegramNotifier("", "", ParseModePlain, zerolog.Nop())
	assert.Equal(t, "⚠️ Signal\n\nBTCUSDT short", plain.FormatMessage(alert))
	assert.Equal(t, "✅ only title", plain.FormatMessage(Alert{Level: LevelSuccess, Title: "only title"}))
	assert.Equal(t, "📢 only body", plain.FormatMessage(Alert{Level: "custom", Message: "only body"}))
}

func TestFormatMessage_EscapesEntities(t *testing.T) {
	alert := Alert{Level: LevelSuccess, Title: "ema_crossover_25_50 LONG", Message: "Pair: BTC_USDT *1m* [x] <a & b>"}

	md := NewTelegramNotifier("", "", ParseModeMarkdown, zerolog.Nop())
	assert.Equal(t, "✅ *ema\\_crossover\\_25\\_50 LONG*\n\nPair: BTC\\_USDT \\*1m\\* \\[x] <a & b>", md.FormatMessage(alert))

	html := NewTelegramNotifier("", "", ParseModeHTML, zerolog.Nop())
	assert.Equal(t, "✅ <b>ema_crossover_25_50 LONG</b>\n\nPair: BTC_USDT *1m* [x] &lt;a &amp; b&gt;", html.FormatMessage(alert))

	plain := NewTelegramNotifier("", "", ParseModePlain, zerolog.Nop())
	assert.Equal(t, "✅ ema_crossover_25_50 LONG\n\nPair: BTC_USDT *1m* [x] <a & b>", plain.FormatMessage(alert))
}

func TestSendAlert_DefaultChat(t *testing.T) {
	n, srv := newTestNotifier(t, ParseModeHTML)

	require.NoError(t, n.SendAlert(context.Background(), Alert{Level: LevelInfo, Title: "hello"}))

	require.Len(t, srv.payloads, 1)
	assert.Equal(t, "/botTOKEN/sendMessage", srv.paths[0])
	assert.Equal(t, "100", srv.payloads[0]["chat_id"])
	assert.Equal(t, "HTML", srv.payloads[0]["parse_mode"])
	assert.Equal(t, false, srv.payloads[0]["disable_notification"])
}

func TestSendTo_PartialSuccess(t *testing.T) {
	n, srv := newTestNotifier(t, ParseModePlain, "200")

	require.NoError(t, n.SendTo(context.Background(), Alert{Message: "x"}, "200", "300"))
	require.Len(t, srv.payloads, 2)
	_, hasMode := srv.payloads[1]["parse_mode"]
	assert.False(t, hasMode, "plain text sends no parse mode")
}

func TestSendTo_AllFail(t *testing.T) {
	n, _ := newTestNotifier(t, ParseModeHTML, "100")

	err := n.SendAlert(context.Background(), Alert{Message: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")

	var sigErr *sigerrors.SignalError
	require.True(t, errors.As(err, &sigErr))
	assert.Equal(t, sigerrors.ErrorCategoryDelivery, sigErr.Category)
}

func TestSignalAlert(t *testing.T) {
	signal := features.Signal{
		SignalName:  "rsi_14",
		TradingPair: "BTCUSDT",
		Category:    "rsi",
		Value:       -0.75,
		Timestamp:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	alert := SignalAlert(signal, "bybit", 42000.5)
	assert.Equal(t, LevelWarning, alert.Level)
	assert.Equal(t, "rsi_14 SHORT", alert.Title)
	assert.True(t, strings.Contains(alert.Message, "Intensity: 0.75"))
	assert.True(t, strings.Contains(alert.Message, "Connector: bybit"))
	assert.True(t, strings.Contains(alert.Message, "2024-01-01 12:00:00 UTC"))
}
