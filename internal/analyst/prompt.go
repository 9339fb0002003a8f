package analyst

import (
	"fmt"
	"sort"
	"strings"

	"coinpulse/internal/domain"
)

const maxCommentaryLen = 900

const systemPrompt = `You are a crypto market analyst writing a one-paragraph daily note for a metrics dashboard.

The scores you receive are composite metrics: log-compressed volume, market cap, and on-chain activity, plus social and news sentiment scaled by attention volume. They measure activity and attention, not price targets.

Rules:
- Write 2-3 sentences, plain prose, no bullet points or headers.
- Reference only the data provided. Never fabricate numbers.
- Name the top-ranked asset and the strongest driver behind its score.
- Mention any asset whose score leans heavily on defaulted (missing) data only if the context flags it.
- No financial advice, no price predictions.`

// FormatScoreContext renders the leaderboard and each asset's leading
// score drivers as the user message for the commentary request.
func FormatScoreContext(entries []domain.LeaderboardEntry, results []domain.ScoreResult) string {
	var sb strings.Builder

	sb.WriteString("Leaderboard:\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("  %d. %s score=%.2f\n", e.Rank, e.Symbol, e.Score))
	}

	bySymbol := make(map[string]domain.ScoreResult, len(results))
	for _, r := range results {
		bySymbol[r.Symbol] = r
	}

	for _, e := range entries {
		r, ok := bySymbol[e.Symbol]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n%s drivers (multiplier %.1f, mentions %d):\n", r.Symbol, r.Multiplier, r.TotalMentions))
		for _, line := range topDrivers(r, 3) {
			sb.WriteString("  " + line + "\n")
		}
		if len(r.SourceErrors) > 0 {
			sb.WriteString(fmt.Sprintf("  note: %d source(s) failed this cycle, some metrics defaulted\n", len(r.SourceErrors)))
		}
	}

	return sb.String()
}

func topDrivers(r domain.ScoreResult, n int) []string {
	type driver struct {
		name         string
		contribution float64
	}
	drivers := make([]driver, 0, len(r.Contributions))
	for name, c := range r.Contributions {
		drivers = append(drivers, driver{name: name, contribution: c.Contribution})
	}
	sort.Slice(drivers, func(i, j int) bool {
		if drivers[i].contribution != drivers[j].contribution {
			return drivers[i].contribution > drivers[j].contribution
		}
		return drivers[i].name < drivers[j].name
	})
	if len(drivers) > n {
		drivers = drivers[:n]
	}

	lines := make([]string, 0, len(drivers))
	for _, d := range drivers {
		lines = append(lines, fmt.Sprintf("%s contributed %.3f", d.name, d.contribution))
	}
	return lines
}
