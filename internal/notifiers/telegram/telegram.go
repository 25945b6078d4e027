package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shyim/db-auto-backup/internal/notification"
)

const (
	defaultAPIURL = "https://api.telegram.org"
	// Telegram rejects messages longer than this
	maxMessage = 4096
)

func init() {
	notification.Register(&TelegramType{})
}

// TelegramType implements NotifierType for Telegram
type TelegramType struct{}

// Name returns the notifier type identifier
func (t *TelegramType) Name() string {
	return "telegram"
}

// Create instantiates a Telegram notifier from options
func (t *TelegramType) Create(name string, options map[string]string) (notification.Notifier, error) {
	token, ok := options["token"]
	if !ok || token == "" {
		return nil, fmt.Errorf("telegram notifier %q requires 'token' option", name)
	}

	chatID, ok := options["chat-id"]
	if !ok || chatID == "" {
		return nil, fmt.Errorf("telegram notifier %q requires 'chat-id' option", name)
	}

	apiURL := strings.TrimSuffix(options["api-url"], "/")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	return &TelegramNotifier{
		name:   name,
		token:  token,
		chatID: chatID,
		apiURL: apiURL,
		client: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// TelegramNotifier sends the run report via the Telegram Bot API
type TelegramNotifier struct {
	name   string
	token  string
	chatID string
	apiURL string
	client *http.Client
}

// Name returns the notifier instance name
func (t *TelegramNotifier) Name() string {
	return t.name
}

// Type returns the notifier type
func (t *TelegramNotifier) Type() string {
	return "telegram"
}

// Send sends finished runs to Telegram
func (t *TelegramNotifier) Send(ctx context.Context, event notification.Event) error {
	if event.Type != notification.EventRunFinished {
		return nil
	}

	payload := map[string]interface{}{
		"chat_id":    t.chatID,
		"text":       formatMessage(event),
		"parse_mode": "HTML",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}

	return nil
}

// formatMessage formats a finished run into a Telegram message
func formatMessage(event notification.Event) string {
	emoji, title := "✅", "Backup Run Completed"
	if event.Failed > 0 {
		emoji, title = "❌", "Backup Run Failed"
	}

	header := fmt.Sprintf("%s <b>%s</b>\n", emoji, title)
	header += fmt.Sprintf("Succeeded: %d, failed: %d\n\n", event.Succeeded, event.Failed)

	report := event.Report
	if report == "" {
		report = "No containers backed up"
	}

	// Leave room for the header and the pre tags
	limit := maxMessage - len(header) - len("<pre></pre>")
	escaped := html.EscapeString(report)
	if len(escaped) > limit {
		cut := limit - 3
		// Never split a multi-byte rune
		for cut > 0 && !utf8.RuneStart(escaped[cut]) {
			cut--
		}
		escaped = escaped[:cut] + "..."
		// Do not cut an entity in half
		if i := strings.LastIndex(escaped, "&"); i != -1 && !strings.Contains(escaped[i:], ";") {
			escaped = escaped[:i] + "..."
		}
	}

	return header + "<pre>" + escaped + "</pre>"
}
