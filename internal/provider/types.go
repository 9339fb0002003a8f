package provider

import "fmt"

// FetchError is the typed failure half of every upstream call's outcome.
// Providers never let a raw transport or decode error cross the package
// boundary; callers receive either a payload or one of these.
type FetchError struct {
	// Upstream names the external service ("market", "onchain", ...).
	Upstream string
	// Op is the logical operation that failed ("fetch-snapshot", ...).
	Op string
	// Cause is a short human-readable reason, never a stack trace.
	Cause string
	// RateLimited is true only when the call kept hitting HTTP 429
	// until the retry budget ran out. All other failures are
	// non-retryable by policy.
	RateLimited bool
}

func (e *FetchError) Error() string {
	if e.RateLimited {
		return fmt.Sprintf("%s %s: rate limited: %s", e.Upstream, e.Op, e.Cause)
	}
	return fmt.Sprintf("%s %s: %s", e.Upstream, e.Op, e.Cause)
}

// MarketSnapshot is the market-data payload for one asset. Fields the
// upstream omitted stay nil; the caller decides what absence means.
type MarketSnapshot struct {
	AssetID   string
	Symbol    string
	Price     *float64
	Volume    *float64
	MarketCap *float64
}

// TokenActivity summarizes recent transfer traffic for one token
// contract: a distinct-participant proxy for active addresses and the
// transfer count observed in the listing window.
type TokenActivity struct {
	Contract        string
	ActiveAddresses int64
	TransferCount   int64
}

// Votes is the per-post vote tally from the social upstream.
type Votes struct {
	Positive int64 `json:"positive"`
	Negative int64 `json:"negative"`
}

// SocialPost is one post from the social listing endpoint.
type SocialPost struct {
	Title      string
	Currencies []string
	Votes      Votes
}

// NewsArticle is one article from the news-search endpoint. Tone is the
// upstream's comma-separated tone string; the first field is the
// numeric tone value.
type NewsArticle struct {
	Title    string
	URL      string
	SeenDate string
	Tone     string
}
