package scoring

// MentionMultiplier scales sentiment weight by attention volume, the
// sum of social mentions and news articles for the cycle. Thin
// discussion discounts sentiment, heavy discussion amplifies it.
// Boundary counts land in the higher bucket.
func MentionMultiplier(totalMentions int64) float64 {
	switch {
	case totalMentions < 100:
		return 0.8
	case totalMentions < 1000:
		return 1.0
	case totalMentions < 10000:
		return 1.2
	default:
		return 1.5
	}
}
