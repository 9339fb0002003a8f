package repository

import (
	"context"
	"encoding/json"
	"time"

	"coinpulse/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createMetricsTables = `
CREATE TABLE IF NOT EXISTS assets (
    id        BIGSERIAL PRIMARY KEY,
    asset_id  TEXT NOT NULL UNIQUE,
    symbol    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS metric_records (
    id                BIGSERIAL PRIMARY KEY,
    asset_ref         BIGINT NOT NULL REFERENCES assets(id),
    price             NUMERIC NOT NULL,
    volume            NUMERIC NOT NULL,
    market_cap        NUMERIC NOT NULL,
    active_addresses  BIGINT NOT NULL,
    tx_count          BIGINT NOT NULL,
    supply            NUMERIC NOT NULL,
    mentions          BIGINT NOT NULL,
    sentiment_score   DOUBLE PRECISION NOT NULL,
    news_sentiment    DOUBLE PRECISION NOT NULL,
    news_articles     BIGINT NOT NULL,
    notes             JSONB NOT NULL DEFAULT '[]',
    source_errors     JSONB NOT NULL DEFAULT '[]',
    cleaned_at        TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_metric_records_asset_time
    ON metric_records (asset_ref, cleaned_at DESC);

CREATE TABLE IF NOT EXISTS scores (
    id                 BIGSERIAL PRIMARY KEY,
    asset_ref          BIGINT NOT NULL REFERENCES assets(id),
    score              DOUBLE PRECISION NOT NULL,
    raw_weighted_score DOUBLE PRECISION NOT NULL,
    multiplier         DOUBLE PRECISION NOT NULL,
    scaling_constant   DOUBLE PRECISION NOT NULL,
    total_mentions     BIGINT NOT NULL,
    attribution        JSONB NOT NULL,
    source_errors      JSONB NOT NULL DEFAULT '[]',
    scored_at          TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scores_asset_time
    ON scores (asset_ref, scored_at DESC);

CREATE TABLE IF NOT EXISTS daily_summaries (
    id           BIGSERIAL PRIMARY KEY,
    report_date  DATE NOT NULL UNIQUE,
    payload      JSONB NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type MetricsRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewMetricsRepository(pool PgxPool, tracer trace.Tracer) *MetricsRepository {
	return &MetricsRepository{pool: pool, tracer: tracer}
}

func (r *MetricsRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "metrics-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createMetricsTables)
	return err
}

// UpsertAsset registers or refreshes an asset and returns its row id.
// The symbol is updated on conflict so a late-arriving real symbol
// replaces an earlier sentinel.
func (r *MetricsRepository) UpsertAsset(ctx context.Context, assetID, symbol string) (int64, error) {
	_, span := r.tracer.Start(ctx, "metrics-repo.upsert-asset")
	defer span.End()

	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO assets (asset_id, symbol)
		 VALUES ($1, $2)
		 ON CONFLICT (asset_id) DO UPDATE SET symbol = EXCLUDED.symbol
		 RETURNING id`,
		assetID, symbol,
	).Scan(&id)
	return id, err
}

// LookupAssetID resolves a display symbol to the asset row id. Returns
// pgx.ErrNoRows when the symbol has never been collected.
func (r *MetricsRepository) LookupAssetID(ctx context.Context, symbol string) (int64, error) {
	_, span := r.tracer.Start(ctx, "metrics-repo.lookup-asset-id")
	defer span.End()

	var id int64
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM assets WHERE symbol = $1 ORDER BY id LIMIT 1`,
		symbol,
	).Scan(&id)
	return id, err
}

func (r *MetricsRepository) InsertMetricRecord(ctx context.Context, assetRef int64, record domain.CleanedMetricRecord) error {
	_, span := r.tracer.Start(ctx, "metrics-repo.insert-metric-record")
	defer span.End()

	notes, err := json.Marshal(emptyIfNil(record.Notes))
	if err != nil {
		return err
	}
	sourceErrors, err := json.Marshal(emptyIfNil(record.SourceErrors))
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO metric_records
		     (asset_ref, price, volume, market_cap, active_addresses, tx_count, supply,
		      mentions, sentiment_score, news_sentiment, news_articles, notes, source_errors, cleaned_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		assetRef, record.Price, record.Volume, record.MarketCap, record.ActiveAddresses,
		record.TxCount, record.Supply, record.Mentions, record.SentimentScore,
		record.NewsSentiment, record.NewsArticles, string(notes), string(sourceErrors), record.CleanedAt,
	)
	return err
}

func (r *MetricsRepository) InsertScore(ctx context.Context, assetRef int64, result domain.ScoreResult) error {
	_, span := r.tracer.Start(ctx, "metrics-repo.insert-score")
	defer span.End()

	attribution, err := json.Marshal(result.Contributions)
	if err != nil {
		return err
	}
	sourceErrors, err := json.Marshal(emptyIfNil(result.SourceErrors))
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO scores
		     (asset_ref, score, raw_weighted_score, multiplier, scaling_constant,
		      total_mentions, attribution, source_errors, scored_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		assetRef, result.Score, result.RawWeightedScore, result.Multiplier,
		result.ScalingConstant, result.TotalMentions, string(attribution),
		string(sourceErrors), result.ScoredAt,
	)
	return err
}

// LatestScore returns the most recent stored score for a symbol with
// its full attribution trace.
func (r *MetricsRepository) LatestScore(ctx context.Context, symbol string) (*domain.ScoreResult, error) {
	_, span := r.tracer.Start(ctx, "metrics-repo.latest-score")
	defer span.End()

	var (
		result       domain.ScoreResult
		attribution  []byte
		sourceErrors []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT a.asset_id, a.symbol, s.score, s.raw_weighted_score, s.multiplier,
		        s.scaling_constant, s.total_mentions, s.attribution, s.source_errors, s.scored_at
		 FROM scores s
		 JOIN assets a ON a.id = s.asset_ref
		 WHERE a.symbol = $1
		 ORDER BY s.scored_at DESC
		 LIMIT 1`,
		symbol,
	).Scan(
		&result.AssetID, &result.Symbol, &result.Score, &result.RawWeightedScore,
		&result.Multiplier, &result.ScalingConstant, &result.TotalMentions,
		&attribution, &sourceErrors, &result.ScoredAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(attribution, &result.Contributions); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sourceErrors, &result.SourceErrors); err != nil {
		return nil, err
	}
	return &result, nil
}

// LatestLeaderboard ranks every asset by its most recent score.
func (r *MetricsRepository) LatestLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	_, span := r.tracer.Start(ctx, "metrics-repo.latest-leaderboard")
	defer span.End()

	if limit <= 0 {
		limit = 10
	}

	rows, err := r.pool.Query(ctx,
		`SELECT symbol, score, scored_at FROM (
		     SELECT DISTINCT ON (s.asset_ref) a.symbol, s.score, s.scored_at
		     FROM scores s
		     JOIN assets a ON a.id = s.asset_ref
		     ORDER BY s.asset_ref, s.scored_at DESC
		 ) latest
		 ORDER BY score DESC, symbol ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		entry := domain.LeaderboardEntry{}
		if err := rows.Scan(&entry.Symbol, &entry.Score, &entry.ScoredAt); err != nil {
			return nil, err
		}
		entry.Rank = len(entries) + 1
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// SaveDailySummary stores one report day's ranked snapshot. Re-running
// a report for the same day overwrites the previous snapshot.
func (r *MetricsRepository) SaveDailySummary(ctx context.Context, day time.Time, entries []domain.LeaderboardEntry) error {
	_, span := r.tracer.Start(ctx, "metrics-repo.save-daily-summary")
	defer span.End()

	payload, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO daily_summaries (report_date, payload)
		 VALUES ($1, $2)
		 ON CONFLICT (report_date) DO UPDATE SET payload = EXCLUDED.payload, created_at = now()`,
		day.UTC().Truncate(24*time.Hour), string(payload),
	)
	return err
}

func emptyIfNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
