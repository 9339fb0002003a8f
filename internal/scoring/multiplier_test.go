package scoring

import "testing"

func TestMentionMultiplierBuckets(t *testing.T) {
	cases := []struct {
		mentions int64
		want     float64
	}{
		{0, 0.8},
		{99, 0.8},
		{100, 1.0},
		{999, 1.0},
		{1000, 1.2},
		{9999, 1.2},
		{10000, 1.5},
		{250000, 1.5},
	}
	for _, tc := range cases {
		if got := MentionMultiplier(tc.mentions); got != tc.want {
			t.Fatalf("MentionMultiplier(%d): expected %f, got %f", tc.mentions, tc.want, got)
		}
	}
}
