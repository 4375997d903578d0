// Package discord posts run summaries to a Discord webhook.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Embed accent colors.
const (
	ColorAdded   = 0x57F287
	ColorRemoved = 0xED4245
)

// Notifier defines the notification surface exposed to the sync pipeline.
// Notification failures never fail a run; implementations log and move on.
type Notifier interface {
	Notify(ctx context.Context, title string, lines []string, color int)
}

// NewNotifier builds a webhook notifier when a webhook URL is configured.
// With no URL it returns a noop implementation.
func NewNotifier(webhookURL string, logger *slog.Logger) Notifier {
	webhookURL = strings.TrimSpace(webhookURL)
	if webhookURL == "" {
		return noopNotifier{}
	}
	return &webhookNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type noopNotifier struct{}

func (noopNotifier) Notify(ctx context.Context, title string, lines []string, color int) {}

type webhookNotifier struct {
	webhookURL string
	client     *http.Client
	logger     *slog.Logger
}

type embed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

func (n *webhookNotifier) Notify(ctx context.Context, title string, lines []string, color int) {
	if len(lines) == 0 {
		return
	}

	if err := n.send(ctx, title, strings.Join(lines, "\n"), color); err != nil {
		n.logger.Error("failed to send discord notification", "title", title, "error", err)
	}
}

func (n *webhookNotifier) send(ctx context.Context, title, description string, color int) error {
	body, err := json.Marshal(webhookPayload{
		Embeds: []embed{{Title: title, Description: description, Color: color}},
	})
	if err != nil {
		return fmt.Errorf("encode discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("discord webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	return nil
}
