package discord

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

const (
	// Colors for Discord embeds
	colorRed    = 15158332 // 0xE74C3C - run failed
	colorGreen  = 5763719  // 0x57F287 - every code done
	colorYellow = 16776960 // 0xFFFF00 - partial run

	// Default timeout for webhook requests
	defaultWebhookTimeout = 10 * time.Second

	// Max retries for rate limiting
	maxRetries = 3
)

// WebhookPayload represents a Discord webhook message
type WebhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Embed represents a Discord embed
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

// EmbedField represents a field in a Discord embed
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// EmbedFooter represents the footer of a Discord embed
type EmbedFooter struct {
	Text string `json:"text"`
}

// RunReport is what a finished run tells the channel.
type RunReport struct {
	RunID        string
	Spreadsheet  string
	CodesDone    int
	CodesSkipped int
	CodesFailed  int
	RowsWritten  int
	Runtime      time.Duration
	FatalCause   string
}

// NewRunSummaryPayload creates the end-of-run message. A run with a fatal
// cause is red and pings @here.
func NewRunSummaryPayload(r RunReport) WebhookPayload {
	embed := Embed{
		Title: "📊 Tournament Stats Updated",
		Color: colorGreen,
		Fields: []EmbedField{
			{Name: "Done", Value: formatNumber(r.CodesDone), Inline: true},
			{Name: "Skipped", Value: formatNumber(r.CodesSkipped), Inline: true},
			{Name: "Failed", Value: formatNumber(r.CodesFailed), Inline: true},
			{Name: "Rows Written", Value: formatNumber(r.RowsWritten), Inline: true},
			{Name: "Runtime", Value: formatDuration(r.Runtime), Inline: true},
		},
		Footer: &EmbedFooter{Text: "Run " + r.RunID},
	}
	if r.Spreadsheet != "" {
		embed.Description = "Sheet: " + r.Spreadsheet
	}

	payload := WebhookPayload{Embeds: []Embed{embed}}
	switch {
	case r.FatalCause != "":
		payload.Content = "@here Tournament stats run failed!"
		payload.Embeds[0].Title = "❌ Tournament Stats Run Failed"
		payload.Embeds[0].Color = colorRed
		payload.Embeds[0].Fields = append(payload.Embeds[0].Fields, EmbedField{Name: "Cause", Value: r.FatalCause})
	case r.CodesSkipped > 0:
		payload.Embeds[0].Color = colorYellow
	}
	return payload
}

// NewRunFailedPayload creates the message for a run that could not start,
// such as a rejected API key or an unshared spreadsheet.
func NewRunFailedPayload(runID, cause string) WebhookPayload {
	return WebhookPayload{
		Content: "@here Tournament stats run failed!",
		Embeds: []Embed{{
			Title:       "❌ Tournament Stats Run Failed",
			Description: cause,
			Color:       colorRed,
			Footer:      &EmbedFooter{Text: "Run " + runID},
		}},
	}
}

// WebhookClient sends notifications to Discord webhooks
type WebhookClient struct {
	webhookURL string
	httpClient *http.Client
}

// NewWebhookClient creates a new WebhookClient
func NewWebhookClient(webhookURL string) *WebhookClient {
	return &WebhookClient{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: defaultWebhookTimeout,
		},
	}
}

// SendRunSummary posts the end-of-run report
func (c *WebhookClient) SendRunSummary(ctx context.Context, r RunReport) error {
	return c.sendPayload(ctx, NewRunSummaryPayload(r))
}

// SendRunFailed posts a startup failure
func (c *WebhookClient) SendRunFailed(ctx context.Context, runID string, cause error) error {
	return c.sendPayload(ctx, NewRunFailedPayload(runID, cause.Error()))
}

// sendPayload sends a webhook payload with retry on rate limiting
func (c *WebhookClient) sendPayload(ctx context.Context, payload WebhookPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		resp.Body.Close()

		// Discord returns 204 No Content
		if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusOK {
			return nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			waitDuration := time.Second
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				if seconds, err := strconv.Atoi(retryAfter); err == nil {
					waitDuration = time.Duration(seconds) * time.Second
				}
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitDuration):
				continue
			}
		}

		return fmt.Errorf("webhook request failed with status %d", resp.StatusCode)
	}

	return fmt.Errorf("webhook request failed after %d retries", maxRetries)
}

// formatNumber formats a number with commas (e.g., 47832 -> "47,832")
func formatNumber(n int) string {
	if n < 1000 {
		return strconv.Itoa(n)
	}

	s := strconv.Itoa(n)
	var result bytes.Buffer
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result.WriteByte(',')
		}
		result.WriteRune(c)
	}
	return result.String()
}

// formatDuration formats a duration as "Xm Ys" (e.g., 4m 12s)
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
