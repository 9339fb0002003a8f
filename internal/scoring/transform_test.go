package scoring

import (
	"math"
	"testing"
)

func TestTransformMagnitude(t *testing.T) {
	got := Transform("volume", 0)
	if got != 0 {
		t.Fatalf("expected log1p(0)=0, got %f", got)
	}

	got = Transform("market_cap", math.E - 1)
	if math.Abs(got-1) > 1e-12 {
		t.Fatalf("expected log1p(e-1)=1, got %f", got)
	}

	// Negative magnitudes are treated as zero, never NaN.
	got = Transform("active_addresses", -500)
	if got != 0 {
		t.Fatalf("expected negative magnitude to clamp to 0, got %f", got)
	}

	small := Transform("tx_count", 100)
	large := Transform("tx_count", 10000)
	if large <= small {
		t.Fatalf("expected monotonic transform, got %f <= %f", large, small)
	}
}

func TestTransformSocialSentiment(t *testing.T) {
	cases := map[float64]float64{-1: 0, 0: 0.5, 1: 1, 0.34: 0.67}
	for in, want := range cases {
		got := Transform("sentiment_score", in)
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("sentiment_score(%f): expected %f, got %f", in, want, got)
		}
	}
}

func TestTransformNewsTone(t *testing.T) {
	cases := map[float64]float64{-10: 0, 0: 0.5, 10: 1, 1.8: 0.59}
	for in, want := range cases {
		got := Transform("news_sentiment_score", in)
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("news_sentiment_score(%f): expected %f, got %f", in, want, got)
		}
	}

	// Out-of-range tones clamp instead of escaping [0,1].
	if got := Transform("news_sentiment_score", 42); got != 1 {
		t.Fatalf("expected extreme tone to clamp to 1, got %f", got)
	}
	if got := Transform("news_sentiment_score", -42); got != 0 {
		t.Fatalf("expected extreme tone to clamp to 0, got %f", got)
	}
}

func TestTransformUnknownMetricIsIdentity(t *testing.T) {
	if got := Transform("supply", 123.45); got != 123.45 {
		t.Fatalf("expected identity transform, got %f", got)
	}
}

func TestClampAdversarialInputs(t *testing.T) {
	if got := clamp(math.NaN(), 0, 100); got != 0 {
		t.Fatalf("expected NaN to clamp to 0, got %f", got)
	}
	if got := clamp(math.Inf(1), 0, 100); got != 0 {
		t.Fatalf("expected +Inf to clamp to 0, got %f", got)
	}
	if got := clamp(150, 0, 100); got != 100 {
		t.Fatalf("expected 150 to clamp to 100, got %f", got)
	}
	if got := clamp(-5, 0, 100); got != 0 {
		t.Fatalf("expected -5 to clamp to 0, got %f", got)
	}
}
