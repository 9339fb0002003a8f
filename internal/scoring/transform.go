package scoring

import "math"

// Transform maps a cleaned metric value into score space by metric
// name. Unknown metrics pass through unchanged.
//
// Magnitude metrics use log1p so assets spanning orders of magnitude
// stay comparable. Social sentiment shifts [-1,1] into [0,1]. News
// tone compresses the upstream's roughly [-10,10] range into [0,1].
func Transform(metric string, v float64) float64 {
	switch metric {
	case "volume", "market_cap", "active_addresses", "tx_count":
		if v < 0 {
			v = 0
		}
		return math.Log1p(v)
	case "sentiment_score":
		return (v + 1) / 2
	case "news_sentiment_score":
		return clamp((v+10)/20, 0, 1)
	default:
		return v
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
