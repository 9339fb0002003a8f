package collector

import (
	"strings"

	"coinpulse/internal/provider"
)

// VoteAggregate is the reduced sentiment signal for one asset's social
// batch. Processed counts posts that survived relevance filtering;
// Voted counts the subset that carried any vote signal and therefore
// entered the average.
type VoteAggregate struct {
	Score     float64
	Processed int
	Voted     int
}

// AggregateVotes filters a social batch for the target symbol and
// averages per-post vote sentiment. Posts without a title or not
// tagged with the symbol are dropped, guarding against upstream
// over-matching. Each voted post contributes
// (positive-negative)/(positive+negative+1), bounded in (-1,1) and
// dampened when vote counts are low. An empty or fully-unvoted batch
// aggregates to a neutral 0, not a failure.
func AggregateVotes(posts []provider.SocialPost, symbol string) VoteAggregate {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	var agg VoteAggregate
	sum := 0.0
	for _, post := range posts {
		if strings.TrimSpace(post.Title) == "" {
			continue
		}
		if !taggedWith(post.Currencies, symbol) {
			continue
		}
		agg.Processed++

		p, n := post.Votes.Positive, post.Votes.Negative
		if p == 0 && n == 0 {
			continue
		}
		agg.Voted++
		sum += float64(p-n) / float64(p+n+1)
	}

	if agg.Voted > 0 {
		agg.Score = sum / float64(agg.Voted)
	}
	return agg
}

func taggedWith(currencies []string, symbol string) bool {
	for _, c := range currencies {
		if strings.EqualFold(c, symbol) {
			return true
		}
	}
	return false
}

// ToneAggregate is the reduced news signal for one asset's article
// batch. Articles counts everything fetched; Toned counts articles
// whose tone field parsed to a number.
type ToneAggregate struct {
	Score    float64
	Articles int
	Toned    int
}

// AggregateTone averages the numeric tone across articles that carry
// one. Articles with a missing or malformed tone field are skipped,
// not fatal. The average stays in the upstream's native roughly
// [-10,10] range; rescaling happens at the transform stage.
func AggregateTone(articles []provider.NewsArticle) ToneAggregate {
	agg := ToneAggregate{Articles: len(articles)}
	sum := 0.0
	for _, a := range articles {
		tone, ok := provider.ToneValue(a)
		if !ok {
			continue
		}
		agg.Toned++
		sum += tone
	}
	if agg.Toned > 0 {
		agg.Score = sum / float64(agg.Toned)
	}
	return agg
}
