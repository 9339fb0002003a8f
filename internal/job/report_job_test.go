package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"coinpulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type leaderboardReaderStub struct {
	entries []domain.LeaderboardEntry
	err     error
}

func (s *leaderboardReaderStub) LatestLeaderboard(context.Context, int) ([]domain.LeaderboardEntry, error) {
	return s.entries, s.err
}

type summaryWriterStub struct {
	saved []domain.LeaderboardEntry
	day   time.Time
	err   error
}

func (s *summaryWriterStub) SaveDailySummary(_ context.Context, day time.Time, entries []domain.LeaderboardEntry) error {
	s.day, s.saved = day, entries
	return s.err
}

type notifierStub struct {
	title      string
	entries    []domain.LeaderboardEntry
	commentary string
	calls      int
}

func (s *notifierStub) SendLeaderboard(_ context.Context, title string, entries []domain.LeaderboardEntry, commentary string) error {
	s.calls++
	s.title, s.entries, s.commentary = title, entries, commentary
	return nil
}

type commentatorStub struct {
	reply string
	err   error
}

func (s *commentatorStub) DailyCommentary(context.Context, []domain.LeaderboardEntry, []domain.ScoreResult) (string, error) {
	return s.reply, s.err
}

func TestReportJobRunOnce(t *testing.T) {
	entries := []domain.LeaderboardEntry{{Rank: 1, Symbol: "BTC", Score: 81.68}}
	reader := &leaderboardReaderStub{entries: entries}
	summaries := &summaryWriterStub{}
	notifier := &notifierStub{}
	commentator := &commentatorStub{reply: "BTC leads."}

	job := NewReportJob(trace.NewNoopTracerProvider().Tracer("test"), reader, summaries, notifier, commentator, 8, 10)
	now := time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC)
	job.RunOnce(context.Background(), now)

	if len(summaries.saved) != 1 {
		t.Fatalf("expected summary saved, got %+v", summaries.saved)
	}
	if notifier.calls != 1 {
		t.Fatalf("expected one webhook delivery, got %d", notifier.calls)
	}
	if notifier.title != "Daily Crypto Scores 2026-08-29" {
		t.Fatalf("unexpected report title %q", notifier.title)
	}
	if notifier.commentary != "BTC leads." {
		t.Fatalf("expected commentary passed through, got %q", notifier.commentary)
	}
}

func TestReportJobCommentaryFailureIsNonFatal(t *testing.T) {
	reader := &leaderboardReaderStub{entries: []domain.LeaderboardEntry{{Rank: 1, Symbol: "BTC"}}}
	notifier := &notifierStub{}
	commentator := &commentatorStub{err: errors.New("api down")}

	job := NewReportJob(trace.NewNoopTracerProvider().Tracer("test"), reader, nil, notifier, commentator, 8, 10)
	job.RunOnce(context.Background(), time.Now())

	if notifier.calls != 1 {
		t.Fatal("report must still deliver without commentary")
	}
	if notifier.commentary != "" {
		t.Fatalf("expected empty commentary after failure, got %q", notifier.commentary)
	}
}

func TestReportJobSkipsDeliveryWhenQueryFails(t *testing.T) {
	reader := &leaderboardReaderStub{err: errors.New("db down")}
	notifier := &notifierStub{}

	job := NewReportJob(trace.NewNoopTracerProvider().Tracer("test"), reader, nil, notifier, nil, 8, 10)
	job.RunOnce(context.Background(), time.Now())

	if notifier.calls != 0 {
		t.Fatal("no delivery expected when the leaderboard query fails")
	}
}

func TestNextRunUTC(t *testing.T) {
	now := time.Date(2026, 8, 29, 9, 30, 0, 0, time.UTC)
	next := nextRunUTC(now, 8)
	want := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("expected %v, got %v", want, next)
	}

	next = nextRunUTC(now, 10)
	want = time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("expected %v, got %v", want, next)
	}
}
