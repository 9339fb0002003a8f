package scoring

import (
	"fmt"
	"strings"
	"time"

	"coinpulse/internal/domain"
)

// Clean coerces a raw record into a fully-populated one. Missing
// numeric fields default to zero and each default is noted, so a score
// can always be produced and audited. Cleaning never fails and never
// drops a record.
func Clean(raw domain.RawMetricRecord, now time.Time) domain.CleanedMetricRecord {
	cleaned := domain.CleanedMetricRecord{
		AssetID:      raw.AssetID,
		Symbol:       strings.TrimSpace(raw.Symbol),
		SourceErrors: raw.SourceErrors,
		CleanedAt:    now.UTC(),
	}

	if cleaned.Symbol == "" {
		cleaned.Symbol = domain.UnknownSymbol
		cleaned.Notes = append(cleaned.Notes, "symbol: missing, defaulted to "+domain.UnknownSymbol)
	}

	cleaned.Price = cleanFloat(&cleaned.Notes, domain.MetricPrice, raw.Price)
	cleaned.Volume = cleanFloat(&cleaned.Notes, domain.MetricVolume, raw.Volume)
	cleaned.MarketCap = cleanFloat(&cleaned.Notes, domain.MetricMarketCap, raw.MarketCap)
	cleaned.ActiveAddresses = cleanInt(&cleaned.Notes, domain.MetricActiveAddresses, raw.ActiveAddresses)
	cleaned.TxCount = cleanInt(&cleaned.Notes, domain.MetricTxCount, raw.TxCount)
	cleaned.Supply = cleanFloat(&cleaned.Notes, domain.MetricSupply, raw.Supply)
	cleaned.Mentions = cleanInt(&cleaned.Notes, domain.MetricMentions, raw.Mentions)
	cleaned.SentimentScore = cleanFloat(&cleaned.Notes, domain.MetricSentimentScore, raw.SentimentScore)
	cleaned.NewsSentiment = cleanFloat(&cleaned.Notes, domain.MetricNewsSentiment, raw.NewsSentiment)
	cleaned.NewsArticles = cleanInt(&cleaned.Notes, domain.MetricNewsArticles, raw.NewsArticles)

	return cleaned
}

func cleanFloat(notes *[]string, name string, v *float64) float64 {
	if v == nil {
		*notes = append(*notes, fmt.Sprintf("%s: missing, defaulted to 0.0", name))
		return 0
	}
	return *v
}

func cleanInt(notes *[]string, name string, v *int64) int64 {
	if v == nil {
		*notes = append(*notes, fmt.Sprintf("%s: missing, defaulted to 0", name))
		return 0
	}
	return *v
}
