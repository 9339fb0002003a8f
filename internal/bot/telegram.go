package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"coinpulse/internal/domain"

	tele "gopkg.in/telebot.v3"
)

// ScoreReader is the read-only slice of the repository the bot needs.
type ScoreReader interface {
	LatestLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	LatestScore(ctx context.Context, symbol string) (*domain.ScoreResult, error)
}

func StartTelegramBot(scores ScoreReader) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/top", func(c tele.Context) error {
		entries, err := scores.LatestLeaderboard(context.Background(), 10)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching leaderboard: %v", err))
		}
		if len(entries) == 0 {
			return c.Send("No scores recorded yet.")
		}
		var sb strings.Builder
		sb.WriteString("Top assets by composite score\n")
		for _, e := range entries {
			sb.WriteString(fmt.Sprintf("%d. %s  %.2f\n", e.Rank, e.Symbol, e.Score))
		}
		return c.Send(sb.String())
	})

	b.Handle("/score", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send(fmt.Sprintf("Usage: /score BTC\nSupported: %s", strings.Join(domain.SupportedSymbols, ", ")))
		}
		symbol := strings.ToUpper(args[0])
		if _, ok := domain.MarketID[symbol]; !ok {
			return c.Send(fmt.Sprintf("Unknown symbol: %s\nSupported: %s", symbol, strings.Join(domain.SupportedSymbols, ", ")))
		}
		result, err := scores.LatestScore(context.Background(), symbol)
		if err != nil {
			return c.Send(fmt.Sprintf("No score available for %s yet", symbol))
		}
		return c.Send(formatScore(result))
	})

	log.Println("Telegram bot started")
	go b.Start()
}

func formatScore(result *domain.ScoreResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s composite score: %.2f\n", result.Symbol, result.Score))
	sb.WriteString(fmt.Sprintf("Multiplier: %.1fx on %d mentions\n", result.Multiplier, result.TotalMentions))

	names := make([]string, 0, len(result.Contributions))
	for name := range result.Contributions {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return result.Contributions[names[i]].Contribution > result.Contributions[names[j]].Contribution
	})

	sb.WriteString("Drivers:\n")
	for _, name := range names {
		c := result.Contributions[name]
		sb.WriteString(fmt.Sprintf("  %s: %.3f\n", name, c.Contribution))
	}
	if len(result.SourceErrors) > 0 {
		sb.WriteString(fmt.Sprintf("Note: %d source(s) failed last cycle\n", len(result.SourceErrors)))
	}
	return strings.TrimRight(sb.String(), "\n")
}
