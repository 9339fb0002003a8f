package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"coinpulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testNotifier(url string, rt roundTripFunc) *WebhookNotifier {
	n := NewWebhookNotifier(trace.NewNoopTracerProvider().Tracer("test"), url)
	n.http = &http.Client{Transport: rt}
	n.nowFn = func() time.Time { return time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC) }
	return n
}

func okResponse() *http.Response {
	return &http.Response{
		StatusCode: http.StatusNoContent,
		Status:     "204 No Content",
		Body:       io.NopCloser(strings.NewReader("")),
	}
}

func TestSendLeaderboardPostsEmbed(t *testing.T) {
	var captured []byte
	n := testNotifier("https://discord.example/webhook", func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", req.Method)
		}
		if got := req.Header.Get("Content-Type"); got != "application/json" {
			t.Fatalf("unexpected content type %q", got)
		}
		captured, _ = io.ReadAll(req.Body)
		return okResponse(), nil
	})

	entries := []domain.LeaderboardEntry{
		{Rank: 1, Symbol: "BTC", Score: 81.68},
		{Rank: 2, Symbol: "ETH", Score: 74.26},
	}
	if err := n.SendLeaderboard(context.Background(), "Daily Crypto Scores", entries, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload struct {
		Embeds []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"embeds"`
	}
	if err := json.Unmarshal(captured, &payload); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if len(payload.Embeds) != 1 {
		t.Fatalf("expected one embed, got %d", len(payload.Embeds))
	}
	if !strings.Contains(payload.Embeds[0].Title, "Daily Crypto Scores") {
		t.Fatalf("unexpected embed title %q", payload.Embeds[0].Title)
	}
	description := payload.Embeds[0].Description
	if !strings.Contains(description, "```markdown") || !strings.Contains(description, "| 1 | BTC | 81.68 |") {
		t.Fatalf("unexpected embed description %q", description)
	}
}

func TestSendLeaderboardEmptyPeriod(t *testing.T) {
	var captured []byte
	n := testNotifier("https://discord.example/webhook", func(req *http.Request) (*http.Response, error) {
		captured, _ = io.ReadAll(req.Body)
		return okResponse(), nil
	})

	if err := n.SendLeaderboard(context.Background(), "Daily Crypto Scores", nil, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(captured), "No scorable data available") {
		t.Fatalf("expected empty-period message, got %s", captured)
	}
}

func TestSendLeaderboardDisabledWithoutURL(t *testing.T) {
	n := testNotifier("", func(req *http.Request) (*http.Response, error) {
		t.Fatal("no request expected when webhook is not configured")
		return nil, nil
	})
	if err := n.SendLeaderboard(context.Background(), "t", []domain.LeaderboardEntry{{Rank: 1, Symbol: "BTC"}}, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSendLeaderboardTruncatesLongTables(t *testing.T) {
	var captured []byte
	n := testNotifier("https://discord.example/webhook", func(req *http.Request) (*http.Response, error) {
		captured, _ = io.ReadAll(req.Body)
		return okResponse(), nil
	})

	entries := make([]domain.LeaderboardEntry, 0, 300)
	for i := 0; i < 300; i++ {
		entries = append(entries, domain.LeaderboardEntry{Rank: i + 1, Symbol: fmt.Sprintf("COIN%03d", i), Score: 50})
	}
	if err := n.SendLeaderboard(context.Background(), "t", entries, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload struct {
		Embeds []struct {
			Description string `json:"description"`
		} `json:"embeds"`
	}
	if err := json.Unmarshal(captured, &payload); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if len(payload.Embeds[0].Description) > maxEmbedDescription {
		t.Fatalf("description exceeds embed limit: %d", len(payload.Embeds[0].Description))
	}
	if !strings.Contains(payload.Embeds[0].Description, "(truncated)") {
		t.Fatal("expected truncation marker")
	}
}

func TestSendLeaderboardSurfacesHTTPFailure(t *testing.T) {
	n := testNotifier("https://discord.example/webhook", func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusBadRequest,
			Status:     "400 Bad Request",
			Body:       io.NopCloser(strings.NewReader("")),
		}, nil
	})
	err := n.SendLeaderboard(context.Background(), "t", []domain.LeaderboardEntry{{Rank: 1, Symbol: "BTC"}}, "")
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected HTTP failure error, got %v", err)
	}
}

func TestFormatTable(t *testing.T) {
	got := FormatTable([]domain.LeaderboardEntry{{Rank: 1, Symbol: "SOL", Score: 66.5}})
	want := "| Rank | Coin | Score |\n|------|------|-------|\n| 1 | SOL | 66.50 |"
	if got != want {
		t.Fatalf("unexpected table:\n%s", got)
	}
}
