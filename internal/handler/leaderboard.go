package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"coinpulse/internal/collector"
	"coinpulse/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

// GetLeaderboard godoc
// @Summary      Latest composite-score leaderboard
// @Description  Returns the current ranked assets, served from the Redis snapshot when fresh and Postgres otherwise
// @Tags         scores
// @Produce      json
// @Success      200  {array}   domain.LeaderboardEntry
// @Failure      500  {object}  map[string]string
// @Router       /api/leaderboard [get]
func (h *Handler) GetLeaderboard(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-leaderboard")
	defer span.End()

	if h.cache != nil {
		cached, err := h.cache.Get(ctx, collector.LeaderboardCacheKey)
		if err != nil {
			log.Printf("leaderboard cache read failed: %v", err)
		} else if cached != "" {
			var entries []domain.LeaderboardEntry
			if err := json.Unmarshal([]byte(cached), &entries); err != nil {
				log.Printf("leaderboard cache entry is malformed, falling back to store: %v", err)
			} else {
				span.SetAttributes(attribute.Bool("cache.hit", true))
				c.JSON(http.StatusOK, entries)
				return
			}
		}
	}

	entries, err := h.store.LatestLeaderboard(ctx, h.topN)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load leaderboard"})
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// GetScore godoc
// @Summary      Latest score for one asset
// @Description  Returns the most recent composite score with its full attribution trace
// @Tags         scores
// @Produce      json
// @Param        symbol  path  string  true  "Asset symbol (e.g. BTC)"
// @Success      200  {object}  domain.ScoreResult
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/scores/{symbol} [get]
func (h *Handler) GetScore(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-score")
	defer span.End()

	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	span.SetAttributes(attribute.String("asset.symbol", symbol))

	result, err := h.store.LatestScore(ctx, symbol)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no score recorded for symbol: " + symbol})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load score"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// TriggerCollectRun godoc
// @Summary      Trigger a collection cycle manually
// @Description  Runs one fetch/clean/score cycle over all configured assets and returns its counters
// @Tags         collect
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/collect/run [post]
func (h *Handler) TriggerCollectRun(c *gin.Context) {
	if h.runner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "collector unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.trigger-collect-run")
	defer span.End()

	result, err := h.runner.RunCycle(ctx, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"assets":          result.AssetsProcessed,
		"records_written": result.RecordsWritten,
		"scores_written":  result.ScoresWritten,
		"source_failures": result.SourceFailures,
		"errors":          result.Errors,
	})
}
