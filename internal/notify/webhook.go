package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"coinpulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// Discord embed descriptions cap at 4096 characters.
const maxEmbedDescription = 4096

// WebhookNotifier posts a ranked score table to a Discord-compatible
// webhook. An empty URL disables delivery without error, so the
// notifier can always be wired in.
type WebhookNotifier struct {
	url    string
	http   *http.Client
	tracer trace.Tracer
	nowFn  func() time.Time
}

func NewWebhookNotifier(tracer trace.Tracer, url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    strings.TrimSpace(url),
		http:   &http.Client{Timeout: 10 * time.Second},
		tracer: tracer,
		nowFn:  time.Now,
	}
}

func (n *WebhookNotifier) Enabled() bool {
	return n.url != ""
}

// SendLeaderboard delivers the ranked table under the given title.
// With no scorable rows it still announces the empty period so the
// channel sees that the report ran.
func (n *WebhookNotifier) SendLeaderboard(ctx context.Context, title string, entries []domain.LeaderboardEntry, commentary string) error {
	ctx, span := n.tracer.Start(ctx, "notify.send-leaderboard")
	defer span.End()

	if !n.Enabled() {
		log.Println("notify: webhook URL not configured, skipping delivery")
		return nil
	}

	if len(entries) == 0 {
		content := fmt.Sprintf("**%s**\n\nNo scorable data available for this period.", title)
		return n.post(ctx, map[string]any{"content": content})
	}

	description := "```markdown\n" + FormatTable(entries) + "\n```"
	if commentary != "" {
		description += "\n" + commentary
	}
	if len(description) > maxEmbedDescription {
		description = description[:maxEmbedDescription-20] + "\n... (truncated)"
	}

	embed := map[string]any{
		"title":       ":bar_chart: " + title,
		"description": description,
		"color":       0x00ff00,
		"footer": map[string]any{
			"text": "Report generated on " + n.nowFn().UTC().Format("2006-01-02 15:04:05 UTC"),
		},
	}
	return n.post(ctx, map[string]any{"embeds": []any{embed}})
}

func (n *WebhookNotifier) post(ctx context.Context, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook delivery failed: HTTP %s", resp.Status)
	}
	return nil
}

// FormatTable renders entries as a fixed-column markdown table. Scores
// print with two decimals to keep the columns narrow in chat clients.
func FormatTable(entries []domain.LeaderboardEntry) string {
	var b strings.Builder
	b.WriteString("| Rank | Coin | Score |\n")
	b.WriteString("|------|------|-------|\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "| %d | %s | %.2f |\n", e.Rank, e.Symbol, e.Score)
	}
	return strings.TrimRight(b.String(), "\n")
}
