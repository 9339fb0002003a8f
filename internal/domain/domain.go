package domain

import "time"

// Metric names used as keys in attribution maps and persistence.
const (
	MetricPrice           = "price"
	MetricVolume          = "volume"
	MetricMarketCap       = "market_cap"
	MetricActiveAddresses = "active_addresses"
	MetricTxCount         = "tx_count"
	MetricSupply          = "supply"
	MetricMentions        = "mentions"
	MetricSentimentScore  = "sentiment_score"
	MetricNewsSentiment   = "news_sentiment_score"
	MetricNewsArticles    = "news_article_count"
)

// UnknownSymbol is the last-resort display symbol for a record whose
// upstream payloads never carried one. Records are never dropped for it.
const UnknownSymbol = "UNKNOWN"

// RawMetricRecord is one asset's merged upstream data for a single
// collection cycle. Every metric is independently nullable: nil means
// "source did not return a value", never zero. Records are built once
// per cycle and not mutated afterwards; cleaning produces a new record.
type RawMetricRecord struct {
	AssetID string `json:"asset_id"`
	Symbol  string `json:"symbol"`

	Price           *float64 `json:"price,omitempty"`
	Volume          *float64 `json:"volume,omitempty"`
	MarketCap       *float64 `json:"market_cap,omitempty"`
	ActiveAddresses *int64   `json:"active_addresses,omitempty"`
	TxCount         *int64   `json:"tx_count,omitempty"`
	Supply          *float64 `json:"supply,omitempty"`
	Mentions        *int64   `json:"mentions,omitempty"`
	SentimentScore  *float64 `json:"sentiment_score,omitempty"`
	NewsSentiment   *float64 `json:"news_sentiment_score,omitempty"`
	NewsArticles    *int64   `json:"news_article_count,omitempty"`

	// SourceErrors lists upstreams that failed this cycle, for audit.
	// A non-empty list never blocks cleaning or scoring.
	SourceErrors []string  `json:"source_errors,omitempty"`
	CollectedAt  time.Time `json:"collected_at"`
}

// CleanedMetricRecord has the same shape as RawMetricRecord with every
// metric coerced to its declared numeric type. Missing values become 0
// or 0.0, so downstream scoring never special-cases absent data.
type CleanedMetricRecord struct {
	AssetID string `json:"asset_id"`
	Symbol  string `json:"symbol"`

	Price           float64 `json:"price"`
	Volume          float64 `json:"volume"`
	MarketCap       float64 `json:"market_cap"`
	ActiveAddresses int64   `json:"active_addresses"`
	TxCount         int64   `json:"tx_count"`
	Supply          float64 `json:"supply"`
	Mentions        int64   `json:"mentions"`
	SentimentScore  float64 `json:"sentiment_score"`
	NewsSentiment   float64 `json:"news_sentiment_score"`
	NewsArticles    int64   `json:"news_article_count"`

	// Notes records which fields were defaulted or failed coercion.
	// Observability only; carries no scoring weight.
	Notes        []string  `json:"notes,omitempty"`
	SourceErrors []string  `json:"source_errors,omitempty"`
	CleanedAt    time.Time `json:"cleaned_at"`
}

// MetricContribution is one metric's line in the attribution trace.
// EffectiveWeight differs from Weight only for sentiment-class metrics,
// where the mention multiplier applies.
type MetricContribution struct {
	OriginalValue    float64 `json:"original_value"`
	TransformedValue float64 `json:"transformed_value"`
	Weight           float64 `json:"weight"`
	EffectiveWeight  float64 `json:"effective_weight"`
	Contribution     float64 `json:"contribution"`
}

// ScoreResult is the scored output for one cleaned record. Together
// with the scaling constant and multiplier, the attribution map is
// sufficient to reconstruct the score without re-running the pipeline.
type ScoreResult struct {
	AssetID          string                        `json:"asset_id"`
	Symbol           string                        `json:"symbol"`
	Score            float64                       `json:"score"`
	RawWeightedScore float64                       `json:"raw_weighted_score"`
	Multiplier       float64                       `json:"multiplier"`
	ScalingConstant  float64                       `json:"scaling_constant"`
	TotalMentions    int64                         `json:"total_mentions"`
	Contributions    map[string]MetricContribution `json:"contributions"`
	SourceErrors     []string                      `json:"source_errors,omitempty"`
	ScoredAt         time.Time                     `json:"scored_at"`
}

// LeaderboardEntry is one row of the ranked output handed to the
// notifier and served over the API.
type LeaderboardEntry struct {
	Rank     int       `json:"rank"`
	Symbol   string    `json:"symbol"`
	Score    float64   `json:"score"`
	ScoredAt time.Time `json:"scored_at"`
}

// CollectRunResult summarizes one full collection pass over all assets.
// Errors are non-fatal per-source warnings; a run always completes.
type CollectRunResult struct {
	AssetsProcessed int      `json:"assets_processed"`
	RecordsWritten  int      `json:"records_written"`
	ScoresWritten   int      `json:"scores_written"`
	SourceFailures  int      `json:"source_failures"`
	Errors          []string `json:"errors,omitempty"`
}
