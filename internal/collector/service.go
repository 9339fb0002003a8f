package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"coinpulse/internal/domain"
	"coinpulse/internal/provider"
	"coinpulse/internal/scoring"

	"go.opentelemetry.io/otel/trace"
)

// LeaderboardCacheKey is where the latest ranked snapshot lives in Redis.
const LeaderboardCacheKey = "coinpulse:leaderboard"

type MarketReader interface {
	FetchSnapshot(ctx context.Context, assetID string) (*provider.MarketSnapshot, *provider.FetchError)
}

type OnChainReader interface {
	FetchTokenActivity(ctx context.Context, contract string) (*provider.TokenActivity, *provider.FetchError)
	FetchTokenSupply(ctx context.Context, contract string, decimals int) (float64, *provider.FetchError)
}

type SocialReader interface {
	FetchPosts(ctx context.Context, symbol string, limit int) ([]provider.SocialPost, *provider.FetchError)
}

type NewsReader interface {
	FetchArticles(ctx context.Context, query string, maxRecords int) ([]provider.NewsArticle, *provider.FetchError)
}

type Store interface {
	UpsertAsset(ctx context.Context, assetID, symbol string) (int64, error)
	InsertMetricRecord(ctx context.Context, assetRef int64, record domain.CleanedMetricRecord) error
	InsertScore(ctx context.Context, assetRef int64, result domain.ScoreResult) error
}

type Cache interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

type Config struct {
	Symbols         []string
	SocialPostLimit int
	NewsMaxRecords  int
	LeaderboardTTL  time.Duration
}

// Service runs the full per-asset fetch, clean, score, persist cycle.
// Assets are processed strictly one at a time so the providers' shared
// rate-limit budgets hold without cross-asset coordination.
type Service struct {
	tracer trace.Tracer
	repo   Store
	cache  Cache

	market  MarketReader
	onchain OnChainReader
	social  SocialReader
	news    NewsReader

	cfg Config
}

func NewService(
	tracer trace.Tracer,
	repo Store,
	cache Cache,
	market MarketReader,
	onchain OnChainReader,
	social SocialReader,
	news NewsReader,
	cfg Config,
) *Service {
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = append([]string(nil), domain.SupportedSymbols...)
	}
	if cfg.SocialPostLimit <= 0 {
		cfg.SocialPostLimit = 50
	}
	if cfg.NewsMaxRecords <= 0 {
		cfg.NewsMaxRecords = 75
	}
	if cfg.LeaderboardTTL <= 0 {
		cfg.LeaderboardTTL = 30 * time.Minute
	}

	return &Service{
		tracer:  tracer,
		repo:    repo,
		cache:   cache,
		market:  market,
		onchain: onchain,
		social:  social,
		news:    news,
		cfg:     cfg,
	}
}

// RunCycle collects, scores, and persists every configured asset once.
// A run always completes: upstream failures become defaulted metrics
// plus audit entries, and persistence failures are logged and skipped.
// The error return is reserved for unusable wiring, not data problems.
func (s *Service) RunCycle(ctx context.Context, now time.Time) (domain.CollectRunResult, error) {
	ctx, span := s.tracer.Start(ctx, "collector.run-cycle")
	defer span.End()

	if s.repo == nil {
		return domain.CollectRunResult{}, fmt.Errorf("collector store is not initialized")
	}

	now = now.UTC()
	result := domain.CollectRunResult{}
	scores := make([]domain.ScoreResult, 0, len(s.cfg.Symbols))

	for _, symbol := range s.cfg.Symbols {
		raw := s.collectAsset(ctx, now, symbol)
		result.AssetsProcessed++
		result.SourceFailures += len(raw.SourceErrors)

		cleaned := scoring.Clean(raw, now)
		scored := scoring.Score(cleaned, now)
		scores = append(scores, scored)

		assetRef, err := s.repo.UpsertAsset(ctx, raw.AssetID, cleaned.Symbol)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("asset_upsert:%s: %v", symbol, err))
			log.Printf("collector: asset upsert failed for %s: %v", symbol, err)
			continue
		}
		if err := s.repo.InsertMetricRecord(ctx, assetRef, cleaned); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("metrics_store:%s: %v", symbol, err))
			log.Printf("collector: metric insert failed for %s: %v", symbol, err)
		} else {
			result.RecordsWritten++
		}
		if err := s.repo.InsertScore(ctx, assetRef, scored); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("score_store:%s: %v", symbol, err))
			log.Printf("collector: score insert failed for %s: %v", symbol, err)
		} else {
			result.ScoresWritten++
		}
	}

	if err := s.cacheLeaderboard(ctx, Rank(scores)); err != nil {
		result.Errors = append(result.Errors, "leaderboard_cache: "+err.Error())
	}

	return result, nil
}

// collectAsset merges the four upstream fetches into one raw record.
// Each fetch fails independently; a failed source leaves its metrics
// nil and appends an audit entry, nothing more.
func (s *Service) collectAsset(ctx context.Context, now time.Time, symbol string) domain.RawMetricRecord {
	ctx, span := s.tracer.Start(ctx, "collector.collect-asset")
	defer span.End()

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	assetID, ok := domain.MarketID[symbol]
	if !ok {
		assetID = strings.ToLower(symbol)
	}

	raw := domain.RawMetricRecord{
		AssetID:     assetID,
		Symbol:      symbol,
		CollectedAt: now,
	}

	if s.market != nil {
		if snapshot, ferr := s.market.FetchSnapshot(ctx, assetID); ferr != nil {
			raw.SourceErrors = append(raw.SourceErrors, ferr.Error())
		} else {
			raw.Price = snapshot.Price
			raw.Volume = snapshot.Volume
			raw.MarketCap = snapshot.MarketCap
		}
	}

	// On-chain proxies exist only for assets with a tracked contract;
	// native coins simply have no entry and keep nil metrics.
	if contract, tracked := domain.TokenContracts[symbol]; tracked && s.onchain != nil {
		if activity, ferr := s.onchain.FetchTokenActivity(ctx, contract.Address); ferr != nil {
			raw.SourceErrors = append(raw.SourceErrors, ferr.Error())
		} else {
			raw.ActiveAddresses = &activity.ActiveAddresses
			raw.TxCount = &activity.TransferCount
		}
		if supply, ferr := s.onchain.FetchTokenSupply(ctx, contract.Address, contract.Decimals); ferr != nil {
			raw.SourceErrors = append(raw.SourceErrors, ferr.Error())
		} else {
			raw.Supply = &supply
		}
	}

	if s.social != nil {
		if posts, ferr := s.social.FetchPosts(ctx, symbol, s.cfg.SocialPostLimit); ferr != nil {
			raw.SourceErrors = append(raw.SourceErrors, ferr.Error())
		} else {
			agg := AggregateVotes(posts, symbol)
			mentions := int64(agg.Processed)
			raw.Mentions = &mentions
			score := agg.Score
			raw.SentimentScore = &score
		}
	}

	if s.news != nil {
		if articles, ferr := s.news.FetchArticles(ctx, newsQuery(symbol), s.cfg.NewsMaxRecords); ferr != nil {
			raw.SourceErrors = append(raw.SourceErrors, ferr.Error())
		} else {
			agg := AggregateTone(articles)
			count := int64(agg.Articles)
			raw.NewsArticles = &count
			if agg.Toned > 0 {
				tone := agg.Score
				raw.NewsSentiment = &tone
			}
		}
	}

	return raw
}

func (s *Service) cacheLeaderboard(ctx context.Context, entries []domain.LeaderboardEntry) error {
	if s.cache == nil || len(entries) == 0 {
		return nil
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, LeaderboardCacheKey, string(payload), s.cfg.LeaderboardTTL)
}

// Rank orders scores descending and assigns 1-based ranks. Ties break
// on symbol so the ordering is stable across runs.
func Rank(scores []domain.ScoreResult) []domain.LeaderboardEntry {
	sorted := append([]domain.ScoreResult(nil), scores...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Symbol < sorted[j].Symbol
	})

	entries := make([]domain.LeaderboardEntry, 0, len(sorted))
	for i, row := range sorted {
		entries = append(entries, domain.LeaderboardEntry{
			Rank:     i + 1,
			Symbol:   row.Symbol,
			Score:    row.Score,
			ScoredAt: row.ScoredAt,
		})
	}
	return entries
}

// newsQuery builds a search term that pairs the ticker with the asset
// name so generic tickers do not match unrelated coverage.
func newsQuery(symbol string) string {
	if name, ok := domain.MarketID[symbol]; ok {
		return fmt.Sprintf("%s crypto %s", name, symbol)
	}
	return symbol + " crypto"
}
