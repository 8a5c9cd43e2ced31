package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spamsniffer/internal/domain"
)

func spamScan() domain.Scan {
	return domain.Scan{
		From:    "deals@example.com",
		Subject: "Win <big>",
		Verdict: domain.Verdict{
			IsSpam:    true,
			SpamScore: 0.93,
			SpamType:  domain.SpamTypePromotional,
			Summary:   "Claim your free prize.",
		},
	}
}

func TestTelegramNotifySendsToEveryChat(t *testing.T) {
	var (
		mu    sync.Mutex
		chats []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		mu.Lock()
		chats = append(chats, body["chat_id"].(string))
		mu.Unlock()
		assert.Equal(t, "HTML", body["parse_mode"])
		assert.Contains(t, body["text"], "Win &lt;big&gt;")
	}))
	defer srv.Close()

	tg := NewTelegramWithBase(srv.URL, "TOKEN", []string{"1", "2"})
	require.NoError(t, tg.Notify(context.Background(), Notification{Scan: spamScan()}))

	assert.Equal(t, []string{"1", "2"}, chats)
}

func TestTelegramNotifyErrorAndBreaker(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	tg := NewTelegramWithBase(srv.URL, "TOKEN", []string{"1"})
	for i := 0; i < 8; i++ {
		assert.Error(t, tg.Notify(context.Background(), Notification{Scan: spamScan()}))
	}

	// the breaker opens after five consecutive failures
	assert.Equal(t, 5, calls)
}

func TestFormatMessage(t *testing.T) {
	msg := formatMessage(Notification{Scan: spamScan()})

	assert.Contains(t, msg, "Promotional email detected")
	assert.Contains(t, msg, "deals@example.com")
	assert.Contains(t, msg, "93%")
}
