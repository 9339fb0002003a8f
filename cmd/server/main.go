package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coinpulse/internal/analyst"
	"coinpulse/internal/bot"
	"coinpulse/internal/cache"
	"coinpulse/internal/collector"
	"coinpulse/internal/config"
	"coinpulse/internal/db"
	"coinpulse/internal/handler"
	"coinpulse/internal/job"
	"coinpulse/internal/notify"
	"coinpulse/internal/provider"
	"coinpulse/internal/repository"
	"coinpulse/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "coinpulse/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initPostgresFunc       = db.InitPostgres
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	newMetricsRepoFunc     = repository.NewMetricsRepository
	newMarketProviderFunc  = provider.NewMarketProvider
	newOnChainProviderFunc = provider.NewOnChainProvider
	newSocialProviderFunc  = provider.NewSocialProvider
	newNewsProviderFunc    = provider.NewNewsProvider
	newCollectorFunc       = collector.NewService
	newCollectorJobFunc    = job.NewCollectorJob
	newReportJobFunc       = job.NewReportJob
	newNotifierFunc        = notify.NewWebhookNotifier
	startJobFunc           = func(start func(ctx context.Context), ctx context.Context) { go start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           CoinPulse API
// @version         1.0
// @description     Crypto activity and sentiment scoring service with OpenTelemetry tracing.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create repository and run migrations
	repo := newMetricsRepoFunc(db.Pool, tracer)
	if db.Pool != nil {
		if err := repo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Upstream providers and the collection service
	snapshots := cache.NewSnapshots(cache.Client)
	svc := newCollectorFunc(
		tracer,
		repo,
		snapshots,
		newMarketProviderFunc(tracer),
		newOnChainProviderFunc(tracer, cfg.BlockscoutBaseURL),
		newSocialProviderFunc(tracer, cfg.CryptoPanicToken),
		newNewsProviderFunc(tracer),
		collector.Config{
			SocialPostLimit: cfg.SocialPostLimit,
			NewsMaxRecords:  cfg.NewsMaxRecords,
		},
	)

	// Background jobs (stopped by ctx cancel)
	collectorJob := newCollectorJobFunc(tracer, svc, time.Duration(cfg.CollectIntervalMins)*time.Minute)
	startJobFunc(collectorJob.Start, ctx)

	var commentator job.Commentator
	if cfg.OpenAIAPIKey != "" {
		commentator = analyst.NewService(tracer, analyst.NewOpenAIClient(cfg.OpenAIAPIKey), cfg.OpenAIModel)
		log.Println("Report commentary enabled")
	}
	notifier := newNotifierFunc(tracer, cfg.DiscordWebhookURL)
	reportJob := newReportJobFunc(tracer, repo, repo, notifier, commentator, cfg.ReportHourUTC, cfg.TopN)
	startJobFunc(reportJob.Start, ctx)

	// Start Telegram bot
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	startTelegramBotFunc(repo)

	// Create handlers and routes
	h := newHandlerFunc(tracer, repo, snapshots, svc, cfg.TopN)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("coinpulse"))

	h.RegisterRoutes(r, cfg.APIKey)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
