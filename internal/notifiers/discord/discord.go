package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/shyim/db-auto-backup/internal/notification"
)

// Discord rejects embed descriptions longer than this
const maxDescription = 4096

func init() {
	notification.Register(&DiscordType{})
}

// DiscordType implements NotifierType for Discord
type DiscordType struct{}

// Name returns the notifier type identifier
func (t *DiscordType) Name() string {
	return "discord"
}

// Create instantiates a Discord notifier from options
func (t *DiscordType) Create(name string, options map[string]string) (notification.Notifier, error) {
	webhookURL, ok := options["webhook-url"]
	if !ok || webhookURL == "" {
		return nil, fmt.Errorf("discord notifier %q requires 'webhook-url' option", name)
	}

	username := options["username"]
	if username == "" {
		username = "DB Auto Backup"
	}

	return &DiscordNotifier{
		name:       name,
		webhookURL: webhookURL,
		username:   username,
		client:     &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// DiscordNotifier posts the run report via a Discord webhook
type DiscordNotifier struct {
	name       string
	webhookURL string
	username   string
	client     *http.Client
}

// Name returns the notifier instance name
func (d *DiscordNotifier) Name() string {
	return d.name
}

// Type returns the notifier type
func (d *DiscordNotifier) Type() string {
	return "discord"
}

// Send posts finished runs to Discord. Started runs are not announced.
func (d *DiscordNotifier) Send(ctx context.Context, event notification.Event) error {
	if event.Type != notification.EventRunFinished {
		return nil
	}

	payload := map[string]interface{}{
		"username": d.username,
		"embeds":   []map[string]interface{}{d.createEmbed(event)},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("discord API returned status %d", resp.StatusCode)
	}

	return nil
}

// createEmbed creates a Discord embed for a finished run
func (d *DiscordNotifier) createEmbed(event notification.Event) map[string]interface{} {
	title := "Backup Run Completed"
	color := 3066993 // Green
	if event.Failed > 0 {
		title = "Backup Run Failed"
		color = 15158332 // Red
	}

	description := event.Report
	if description == "" {
		description = "No containers backed up"
	}
	description = "```\n" + truncate(description, maxDescription-8) + "\n```"

	return map[string]interface{}{
		"title":       title,
		"color":       color,
		"description": description,
		"fields": []map[string]interface{}{
			{
				"name":   "Succeeded",
				"value":  fmt.Sprintf("%d", event.Succeeded),
				"inline": true,
			},
			{
				"name":   "Failed",
				"value":  fmt.Sprintf("%d", event.Failed),
				"inline": true,
			},
		},
		"timestamp": event.Timestamp.Format(time.RFC3339),
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit - 3
	// Never split a multi-byte rune
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
