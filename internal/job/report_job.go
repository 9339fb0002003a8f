package job

import (
	"context"
	"log"
	"time"

	"coinpulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type LeaderboardReader interface {
	LatestLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

type SummaryWriter interface {
	SaveDailySummary(ctx context.Context, day time.Time, entries []domain.LeaderboardEntry) error
}

type LeaderboardNotifier interface {
	SendLeaderboard(ctx context.Context, title string, entries []domain.LeaderboardEntry, commentary string) error
}

type Commentator interface {
	DailyCommentary(ctx context.Context, entries []domain.LeaderboardEntry, results []domain.ScoreResult) (string, error)
}

// ReportJob publishes the daily top-N report: snapshot the current
// leaderboard, persist it as the day's summary, and push it to the
// notification webhook. Runs once per day at a fixed UTC hour.
type ReportJob struct {
	tracer      trace.Tracer
	leaderboard LeaderboardReader
	summaries   SummaryWriter
	notifier    LeaderboardNotifier
	commentator Commentator
	reportHour  int
	topN        int
}

func NewReportJob(
	tracer trace.Tracer,
	leaderboard LeaderboardReader,
	summaries SummaryWriter,
	notifier LeaderboardNotifier,
	commentator Commentator,
	reportHourUTC int,
	topN int,
) *ReportJob {
	if reportHourUTC < 0 || reportHourUTC > 23 {
		reportHourUTC = 8
	}
	if topN <= 0 {
		topN = 10
	}
	return &ReportJob{
		tracer:      tracer,
		leaderboard: leaderboard,
		summaries:   summaries,
		notifier:    notifier,
		commentator: commentator,
		reportHour:  reportHourUTC,
		topN:        topN,
	}
}

func (j *ReportJob) Start(ctx context.Context) {
	if j.leaderboard == nil {
		log.Println("Report job disabled: no leaderboard reader")
		<-ctx.Done()
		return
	}
	for {
		next := nextRunUTC(time.Now().UTC(), j.reportHour)
		wait := time.Until(next)
		if wait < time.Second {
			wait = time.Second
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			j.RunOnce(ctx, time.Now())
		}
	}
}

// RunOnce builds and delivers one report. Exposed for the report CLI,
// which triggers the same flow on demand.
func (j *ReportJob) RunOnce(ctx context.Context, now time.Time) {
	ctx, span := j.tracer.Start(ctx, "report-job.run-once")
	defer span.End()

	now = now.UTC()
	entries, err := j.leaderboard.LatestLeaderboard(ctx, j.topN)
	if err != nil {
		log.Printf("Report error: leaderboard query failed: %v", err)
		return
	}

	if j.summaries != nil {
		if err := j.summaries.SaveDailySummary(ctx, now, entries); err != nil {
			log.Printf("Report warning: summary save failed: %v", err)
		}
	}

	commentary := ""
	if j.commentator != nil {
		commentary, err = j.commentator.DailyCommentary(ctx, entries, nil)
		if err != nil {
			log.Printf("Report warning: commentary unavailable: %v", err)
			commentary = ""
		}
	}

	if j.notifier != nil {
		title := "Daily Crypto Scores " + now.Format("2006-01-02")
		if err := j.notifier.SendLeaderboard(ctx, title, entries, commentary); err != nil {
			log.Printf("Report error: webhook delivery failed: %v", err)
			return
		}
	}
	log.Printf("Daily report published entries=%d", len(entries))
}

func nextRunUTC(now time.Time, hour int) time.Time {
	run := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !run.After(now) {
		run = run.Add(24 * time.Hour)
	}
	return run
}
