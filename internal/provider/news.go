package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const (
	newsBaseURL        = "https://api.gdeltproject.org/api/v2/doc/doc"
	defaultNewsMaxRecs = 75
	maxAllowedNewsRecs = 250
)

// NewsProvider queries the GDELT doc search API for recent articles
// about an asset. Tone stays as the upstream's comma-separated string;
// ToneValue extracts the numeric first field.
type NewsProvider struct {
	rc      *retryClient
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

func NewNewsProvider(tracer trace.Tracer) *NewsProvider {
	return &NewsProvider{
		rc:      newRetryClient("news", 15*time.Second, time.Second),
		baseURL: newsBaseURL,
		tracer:  tracer,
		limiter: NewRateLimiter(6, 10*time.Second),
	}
}

// FetchArticles searches recent coverage for the given query term.
func (p *NewsProvider) FetchArticles(ctx context.Context, query string, maxRecords int) ([]NewsArticle, *FetchError) {
	_, span := p.tracer.Start(ctx, "news.fetch-articles")
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &FetchError{Upstream: "news", Op: "fetch-articles", Cause: "query is required"}
	}
	if maxRecords <= 0 {
		maxRecords = defaultNewsMaxRecs
	}
	if maxRecords > maxAllowedNewsRecs {
		maxRecords = maxAllowedNewsRecs
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Upstream: "news", Op: "fetch-articles", Cause: "rate limit wait: " + err.Error()}
	}

	u := fmt.Sprintf("%s?query=%s&mode=artlist&format=json&maxrecords=%d&timespan=24h",
		p.baseURL, url.QueryEscape(query), maxRecords)

	var payload struct {
		Articles []struct {
			Title    string `json:"title"`
			URL      string `json:"url"`
			SeenDate string `json:"seendate"`
			Tone     string `json:"tone"`
		} `json:"articles"`
	}
	if ferr := p.rc.getJSON(ctx, "fetch-articles", u, nil, &payload); ferr != nil {
		return nil, ferr
	}

	articles := make([]NewsArticle, 0, len(payload.Articles))
	for _, row := range payload.Articles {
		articles = append(articles, NewsArticle{
			Title:    strings.TrimSpace(row.Title),
			URL:      strings.TrimSpace(row.URL),
			SeenDate: strings.TrimSpace(row.SeenDate),
			Tone:     strings.TrimSpace(row.Tone),
		})
	}
	return articles, nil
}

// ToneValue parses an article's numeric tone from the comma-separated
// tone string. The bool is false when the field is missing or not
// numeric; such articles are skipped by aggregation, not fatal.
func ToneValue(a NewsArticle) (float64, bool) {
	first := a.Tone
	if i := strings.IndexByte(first, ','); i >= 0 {
		first = first[:i]
	}
	return parseFloatString(first)
}
