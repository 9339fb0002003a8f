package main

import (
	"context"
	"log"
	"os"
	"time"

	"coinpulse/internal/analyst"
	"coinpulse/internal/config"
	"coinpulse/internal/db"
	"coinpulse/internal/job"
	"coinpulse/internal/notify"
	"coinpulse/internal/repository"
	"coinpulse/pkg/tracing"

	"github.com/joho/godotenv"
)

var (
	loadEnvFunc        = godotenv.Load
	loadConfigFunc     = config.Load
	initPostgresFunc   = db.InitPostgres
	initTracerFunc     = tracing.InitTracer
	newMetricsRepoFunc = repository.NewMetricsRepository
	newNotifierFunc    = notify.NewWebhookNotifier
	newReportJobFunc   = job.NewReportJob
	nowFunc            = time.Now
)

// Runs one daily report on demand: snapshot the leaderboard, persist
// the day's summary, and deliver it to the configured webhook. Useful
// for re-sending a report without waiting for the scheduled hour.
func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	initPostgresFunc(ctx)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	if db.Pool == nil {
		log.Println("Report skipped: no Postgres connection")
		return
	}
	repo := newMetricsRepoFunc(db.Pool, tracer)

	var commentator job.Commentator
	if cfg.OpenAIAPIKey != "" {
		commentator = analyst.NewService(tracer, analyst.NewOpenAIClient(cfg.OpenAIAPIKey), cfg.OpenAIModel)
	}
	notifier := newNotifierFunc(tracer, cfg.DiscordWebhookURL)

	reportJob := newReportJobFunc(tracer, repo, repo, notifier, commentator, cfg.ReportHourUTC, cfg.TopN)
	reportJob.RunOnce(ctx, nowFunc())
}
