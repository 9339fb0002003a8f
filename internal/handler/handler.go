package handler

import (
	"context"
	"time"

	"coinpulse/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type ScoreStore interface {
	LatestLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	LatestScore(ctx context.Context, symbol string) (*domain.ScoreResult, error)
}

type CacheReader interface {
	Get(ctx context.Context, key string) (string, error)
}

type CollectRunner interface {
	RunCycle(ctx context.Context, now time.Time) (domain.CollectRunResult, error)
}

type Handler struct {
	tracer trace.Tracer
	store  ScoreStore
	cache  CacheReader
	runner CollectRunner
	topN   int
}

func New(tracer trace.Tracer, store ScoreStore, cache CacheReader, runner CollectRunner, topN int) *Handler {
	if topN <= 0 {
		topN = 10
	}
	return &Handler{
		tracer: tracer,
		store:  store,
		cache:  cache,
		runner: runner,
		topN:   topN,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.GET("/health", h.Health)
	r.GET("/api/leaderboard", h.GetLeaderboard)
	r.GET("/api/scores/:symbol", h.GetScore)
	r.POST("/api/collect/run", APIKeyAuth(apiKey), h.TriggerCollectRun)
}
