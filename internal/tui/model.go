package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"coinpulse/internal/domain"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	leaderboardLimit = 10
	refreshInterval  = 30 * time.Second
	queryTimeout     = 10 * time.Second
)

// ScoreQuerier is the read surface the dashboard needs. Satisfied by
// the metrics repository.
type ScoreQuerier interface {
	LatestLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	LatestScore(ctx context.Context, symbol string) (*domain.ScoreResult, error)
}

// Services carries everything a TUI session depends on.
type Services struct {
	Scores   ScoreQuerier
	Username string
}

type viewState int

const (
	viewLeaderboard viewState = iota
	viewDetail
)

type leaderboardMsg []domain.LeaderboardEntry

type detailMsg *domain.ScoreResult

type errMsg struct{ err error }

type tickMsg time.Time

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1)
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
	detailHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("86"))
	tableBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))
)

// AppModel is the root bubbletea model for the SSH dashboard.
type AppModel struct {
	svc       Services
	state     viewState
	table     table.Model
	entries   []domain.LeaderboardEntry
	detail    *domain.ScoreResult
	err       error
	width     int
	height    int
	refreshed time.Time
}

func NewAppModel(svc Services) *AppModel {
	columns := []table.Column{
		{Title: "Rank", Width: 6},
		{Title: "Coin", Width: 8},
		{Title: "Score", Width: 10},
		{Title: "Scored At", Width: 20},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(leaderboardLimit+1),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderBottom(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	return &AppModel{svc: svc, state: viewLeaderboard, table: t}
}

// SetSize is called by the SSH server with the client's PTY dimensions.
func (m *AppModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	if height > 8 {
		m.table.SetHeight(height - 6)
	}
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(m.fetchLeaderboard(), tickCmd())
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.fetchLeaderboard()
		case "esc":
			if m.state == viewDetail {
				m.state = viewLeaderboard
				m.detail = nil
			}
			return m, nil
		case "enter":
			if m.state == viewLeaderboard {
				if symbol := m.selectedSymbol(); symbol != "" {
					return m, m.fetchDetail(symbol)
				}
			}
			return m, nil
		}

	case leaderboardMsg:
		m.err = nil
		m.entries = msg
		m.refreshed = time.Now()
		m.table.SetRows(leaderboardRows(msg))
		return m, nil

	case detailMsg:
		m.err = nil
		m.detail = msg
		m.state = viewDetail
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetchLeaderboard(), tickCmd())
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *AppModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("CoinPulse"))
	if m.svc.Username != "" {
		b.WriteString(statusStyle.Render(" " + m.svc.Username))
	}
	b.WriteString("\n\n")

	switch m.state {
	case viewDetail:
		b.WriteString(m.detailView())
	default:
		b.WriteString(tableBorderStyle.Render(m.table.View()))
		b.WriteString("\n")
		if !m.refreshed.IsZero() {
			b.WriteString(statusStyle.Render("updated " + m.refreshed.UTC().Format("15:04:05 UTC")))
			b.WriteString("\n")
		}
	}

	if m.err != nil {
		b.WriteString(errStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(statusStyle.Render(m.helpLine()))
	return b.String()
}

func (m *AppModel) helpLine() string {
	if m.state == viewDetail {
		return "esc back • r refresh • q quit"
	}
	return "enter details • r refresh • q quit"
}

func (m *AppModel) selectedSymbol() string {
	row := m.table.SelectedRow()
	if len(row) < 2 {
		return ""
	}
	return row[1]
}

func (m *AppModel) detailView() string {
	if m.detail == nil {
		return statusStyle.Render("no score loaded")
	}
	r := m.detail

	var b strings.Builder
	b.WriteString(detailHeaderStyle.Render(fmt.Sprintf("%s  score %.2f", r.Symbol, r.Score)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("raw %.4f  multiplier %.1f  mentions %d\n", r.RawWeightedScore, r.Multiplier, r.TotalMentions))
	b.WriteString(fmt.Sprintf("scored %s\n\n", r.ScoredAt.UTC().Format("2006-01-02 15:04 UTC")))

	names := make([]string, 0, len(r.Contributions))
	for name := range r.Contributions {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return r.Contributions[names[i]].Contribution > r.Contributions[names[j]].Contribution
	})
	for _, name := range names {
		c := r.Contributions[name]
		b.WriteString(fmt.Sprintf("  %-22s %.4f  (weight %.2f)\n", name, c.Contribution, c.EffectiveWeight))
	}

	if len(r.SourceErrors) > 0 {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(fmt.Sprintf("%d source failure(s) this cycle", len(r.SourceErrors))))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *AppModel) fetchLeaderboard() tea.Cmd {
	return func() tea.Msg {
		if m.svc.Scores == nil {
			return errMsg{err: fmt.Errorf("score store unavailable")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		entries, err := m.svc.Scores.LatestLeaderboard(ctx, leaderboardLimit)
		if err != nil {
			return errMsg{err: err}
		}
		return leaderboardMsg(entries)
	}
}

func (m *AppModel) fetchDetail(symbol string) tea.Cmd {
	return func() tea.Msg {
		if m.svc.Scores == nil {
			return errMsg{err: fmt.Errorf("score store unavailable")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		result, err := m.svc.Scores.LatestScore(ctx, symbol)
		if err != nil {
			return errMsg{err: err}
		}
		return detailMsg(result)
	}
}

func leaderboardRows(entries []domain.LeaderboardEntry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", e.Rank),
			e.Symbol,
			fmt.Sprintf("%.2f", e.Score),
			e.ScoredAt.UTC().Format("2006-01-02 15:04"),
		})
	}
	return rows
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
