package scoring

import (
	"time"

	"coinpulse/internal/domain"
)

// ScalingConstant maps the raw weighted sum onto the 0..100 display
// range. With log1p-transformed magnitude metrics a large-cap asset
// lands around 13-16 raw, so 6.0 uses most of the range without
// routinely saturating it.
const ScalingConstant = 6.0

// Weights are fixed across all assets. They sum to 1.0 before the
// mention multiplier is applied to the sentiment-class metrics.
var Weights = map[string]float64{
	domain.MetricVolume:          0.20,
	domain.MetricMarketCap:       0.20,
	domain.MetricActiveAddresses: 0.20,
	domain.MetricTxCount:         0.10,
	domain.MetricSentimentScore:  0.20,
	domain.MetricNewsSentiment:   0.10,
}

// scoredMetrics fixes the iteration order so attribution output and
// floating-point summation are deterministic across runs.
var scoredMetrics = []string{
	domain.MetricVolume,
	domain.MetricMarketCap,
	domain.MetricActiveAddresses,
	domain.MetricTxCount,
	domain.MetricSentimentScore,
	domain.MetricNewsSentiment,
}

var sentimentMetrics = map[string]bool{
	domain.MetricSentimentScore: true,
	domain.MetricNewsSentiment:  true,
}

// Score computes the composite score for one cleaned record. Every
// record gets a score; sparse inputs simply contribute zeros. The
// returned attribution carries each metric's original value, transform
// output, weights, and contribution, so any score can be explained
// after the fact.
func Score(cleaned domain.CleanedMetricRecord, now time.Time) domain.ScoreResult {
	totalMentions := cleaned.Mentions + cleaned.NewsArticles
	multiplier := MentionMultiplier(totalMentions)

	values := map[string]float64{
		domain.MetricVolume:          cleaned.Volume,
		domain.MetricMarketCap:       cleaned.MarketCap,
		domain.MetricActiveAddresses: float64(cleaned.ActiveAddresses),
		domain.MetricTxCount:         float64(cleaned.TxCount),
		domain.MetricSentimentScore:  cleaned.SentimentScore,
		domain.MetricNewsSentiment:   cleaned.NewsSentiment,
	}

	raw := 0.0
	contributions := make(map[string]domain.MetricContribution, len(scoredMetrics))
	for _, name := range scoredMetrics {
		original := values[name]
		transformed := Transform(name, original)

		weight := Weights[name]
		effective := weight
		if sentimentMetrics[name] {
			effective = weight * multiplier
		}

		contribution := effective * transformed
		raw += contribution
		contributions[name] = domain.MetricContribution{
			OriginalValue:    original,
			TransformedValue: transformed,
			Weight:           weight,
			EffectiveWeight:  effective,
			Contribution:     contribution,
		}
	}

	return domain.ScoreResult{
		AssetID:          cleaned.AssetID,
		Symbol:           cleaned.Symbol,
		Score:            clamp(raw*ScalingConstant, 0, 100),
		RawWeightedScore: raw,
		Multiplier:       multiplier,
		ScalingConstant:  ScalingConstant,
		TotalMentions:    totalMentions,
		Contributions:    contributions,
		SourceErrors:     cleaned.SourceErrors,
		ScoredAt:         now.UTC(),
	}
}
