package notifier

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

const defaultAPIBase = "https://api.telegram.org"

type Telegram struct {
	botToken string
	chatIDs  []string
	apiBase  string
	client   *http.Client
	cb       *gobreaker.CircuitBreaker
}

func NewTelegram(botToken string, chatIDs []string) *Telegram {
	return NewTelegramWithBase(defaultAPIBase, botToken, chatIDs)
}

// NewTelegramWithBase points the notifier at another Bot API endpoint.
func NewTelegramWithBase(apiBase, botToken string, chatIDs []string) *Telegram {
	settings := gobreaker.Settings{
		Name:        "telegram",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	}

	return &Telegram{
		botToken: botToken,
		chatIDs:  chatIDs,
		apiBase:  apiBase,
		client:   &http.Client{Timeout: 10 * time.Second},
		cb:       gobreaker.NewCircuitBreaker(settings),
	}
}

func (t *Telegram) Notify(ctx context.Context, n Notification) error {
	text := formatMessage(n)

	for _, chatID := range t.chatIDs {
		_, err := t.cb.Execute(func() (interface{}, error) {
			return nil, t.send(ctx, chatID, text)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (t *Telegram) send(ctx context.Context, chatID, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)

	body, _ := json.Marshal(map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %d", resp.StatusCode)
	}

	return nil
}

func formatMessage(n Notification) string {
	s := n.Scan
	from := s.From
	if from == "" {
		from = "unknown sender"
	}

	return fmt.Sprintf(`🚫 <b>%s email detected</b>

<b>From:</b> %s
<b>Subject:</b> %s
<b>Score:</b> %.0f%%

<b>Summary:</b>
%s`,
		html.EscapeString(string(s.Verdict.SpamType)),
		html.EscapeString(from),
		html.EscapeString(s.Subject),
		s.Verdict.SpamScore*100,
		html.EscapeString(s.Verdict.Summary),
	)
}
