package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"coinpulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const marketBaseURL = "https://api.coingecko.com/api/v3"

// MarketProvider fetches price, 24h volume, and market cap from the
// CoinGecko free API.
type MarketProvider struct {
	rc      *retryClient
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewMarketProvider creates a provider with built-in rate limiting.
// The free tier allows roughly 10 calls/minute; we stay at 8.
func NewMarketProvider(tracer trace.Tracer) *MarketProvider {
	return &MarketProvider{
		rc:      newRetryClient("market", 12*time.Second, 1500*time.Millisecond),
		baseURL: marketBaseURL,
		tracer:  tracer,
		limiter: NewRateLimiter(8, 7500*time.Millisecond),
	}
}

// FetchSnapshot fetches the current market snapshot for one asset id.
// Fields the upstream omits stay nil in the snapshot; the outcome is
// either a snapshot or a FetchError, never both.
func (p *MarketProvider) FetchSnapshot(ctx context.Context, assetID string) (*MarketSnapshot, *FetchError) {
	_, span := p.tracer.Start(ctx, "market.fetch-snapshot")
	defer span.End()

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Upstream: "market", Op: "fetch-snapshot", Cause: "rate limit wait: " + err.Error()}
	}

	u := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd&include_market_cap=true&include_24hr_vol=true",
		p.baseURL, url.QueryEscape(assetID))

	// Response shape: {"bitcoin": {"usd": 97000, "usd_market_cap": 1.9e12, "usd_24h_vol": 4.5e10}}
	var raw map[string]map[string]*float64
	if ferr := p.rc.getJSON(ctx, "fetch-snapshot", u, nil, &raw); ferr != nil {
		return nil, ferr
	}

	data, ok := raw[assetID]
	if !ok {
		return nil, &FetchError{Upstream: "market", Op: "fetch-snapshot", Cause: "asset id missing from payload: " + assetID}
	}

	return &MarketSnapshot{
		AssetID:   assetID,
		Symbol:    domain.MarketIDToSymbol[assetID],
		Price:     data["usd"],
		Volume:    data["usd_24h_vol"],
		MarketCap: data["usd_market_cap"],
	}, nil
}
