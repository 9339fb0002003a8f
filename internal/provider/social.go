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
	socialBaseURL          = "https://cryptopanic.com/api/v1"
	defaultSocialPostLimit = 50
)

// SocialProvider lists social/news posts tagged with a currency from a
// CryptoPanic-compatible API. It hands back the raw batch; relevance
// filtering and vote aggregation happen in the collector.
type SocialProvider struct {
	rc        *retryClient
	baseURL   string
	authToken string
	tracer    trace.Tracer
	limiter   *RateLimiter
}

func NewSocialProvider(tracer trace.Tracer, authToken string) *SocialProvider {
	return &SocialProvider{
		rc:        newRetryClient("social", 12*time.Second, time.Second),
		baseURL:   socialBaseURL,
		authToken: strings.TrimSpace(authToken),
		tracer:    tracer,
		limiter:   NewRateLimiter(5, 12*time.Second),
	}
}

// FetchPosts fetches posts tagged with the given symbol. A missing
// auth token is a configuration failure for this source only; it never
// aborts collection of the other upstreams.
func (p *SocialProvider) FetchPosts(ctx context.Context, symbol string, limit int) ([]SocialPost, *FetchError) {
	_, span := p.tracer.Start(ctx, "social.fetch-posts")
	defer span.End()

	if p.authToken == "" {
		return nil, &FetchError{Upstream: "social", Op: "fetch-posts", Cause: "auth token not configured"}
	}
	if limit <= 0 {
		limit = defaultSocialPostLimit
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Upstream: "social", Op: "fetch-posts", Cause: "rate limit wait: " + err.Error()}
	}

	u := fmt.Sprintf("%s/posts/?auth_token=%s&currencies=%s&public=true",
		p.baseURL, url.QueryEscape(p.authToken), url.QueryEscape(symbol))

	var payload struct {
		Results []struct {
			Title      string `json:"title"`
			Currencies []struct {
				Code string `json:"code"`
			} `json:"currencies"`
			Votes struct {
				Positive int64 `json:"positive"`
				Negative int64 `json:"negative"`
			} `json:"votes"`
		} `json:"results"`
	}
	if ferr := p.rc.getJSON(ctx, "fetch-posts", u, nil, &payload); ferr != nil {
		return nil, ferr
	}

	posts := make([]SocialPost, 0, len(payload.Results))
	for _, row := range payload.Results {
		if len(posts) >= limit {
			break
		}
		currencies := make([]string, 0, len(row.Currencies))
		for _, c := range row.Currencies {
			if code := strings.ToUpper(strings.TrimSpace(c.Code)); code != "" {
				currencies = append(currencies, code)
			}
		}
		posts = append(posts, SocialPost{
			Title:      strings.TrimSpace(row.Title),
			Currencies: currencies,
			Votes:      Votes{Positive: row.Votes.Positive, Negative: row.Votes.Negative},
		})
	}
	return posts, nil
}
