package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"simscan/internal/domain"
	"simscan/internal/report"
)

const (
	pageSize     = 20
	explainTerms = 10
)

// SimilarityPort is the TUI-facing subset of the similarity service.
type SimilarityPort interface {
	Top(ctx context.Context, k int) ([]domain.Pair, error)
	Query(ctx context.Context, group string, k int) ([]domain.Pair, error)
	Explain(a, b string, limit int) ([]domain.Contribution, error)
}

// Model is the Bubble Tea model for browsing pair scores.
type Model struct {
	service  SimilarityPort
	input    textinput.Model
	viewport viewport.Model
	results  []domain.Pair
	summary  string
	status   string
	cursor   int
	ready    bool
}

// New creates a new TUI model showing the best pairs of the last scan.
func New(service SimilarityPort, summary domain.Summary) Model {
	ti := textinput.New()
	ti.Prompt = "group> "
	ti.Placeholder = "Type a group name and press Enter (empty shows all)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	m := Model{service: service, input: ti, viewport: vp, summary: describe(summary)}
	m.load("")
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2
		totalFooterLines := 1
		reserved := totalHeaderLines + totalFooterLines + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderResults())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			m.load(strings.TrimSpace(m.input.Value()))
			m.viewport.SetContent(m.renderResults())
			return m, nil
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderResults())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderResults())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Group Similarity")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

// Selected returns the pair under the cursor.
func (m Model) Selected() (domain.Pair, bool) {
	if len(m.results) == 0 {
		return domain.Pair{}, false
	}
	return m.results[m.cursor], true
}

func (m *Model) load(group string) {
	var (
		res []domain.Pair
		err error
	)
	if group == "" {
		res, err = m.service.Top(context.Background(), pageSize)
	} else {
		res, err = m.service.Query(context.Background(), group, pageSize)
	}
	if err != nil {
		m.status = "Error: " + err.Error()
		m.results = nil
		m.cursor = 0
		return
	}
	m.results = res
	m.cursor = 0
	if group == "" {
		m.status = fmt.Sprintf("Top %d pairs", len(res))
	} else {
		m.status = fmt.Sprintf("Top %d pairs for %q", len(res), group)
	}
}

func (m Model) renderResults() string {
	if len(m.results) == 0 {
		return "No pairs."
	}
	var b strings.Builder
	for i, p := range m.results {
		line := fmt.Sprintf("%s  %s  %s", report.FormatScore(p.Score), p.A, p.B)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.renderExplanation())
	return b.String()
}

func (m Model) renderExplanation() string {
	p, ok := m.Selected()
	if !ok {
		return ""
	}
	cs, err := m.service.Explain(p.A, p.B, explainTerms)
	if err != nil {
		return "Error: " + err.Error()
	}
	if len(cs) == 0 {
		return fmt.Sprintf("%s and %s share no terms.", p.A, p.B)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Shared terms of %s and %s:\n", p.A, p.B)
	for i, c := range cs {
		term := c.Term
		if i < 3 {
			term = highlightStyle.Render(term)
		}
		fmt.Fprintf(&b, "  %-24s %s\n", term, report.FormatScore(c.Product))
	}
	return b.String()
}

func describe(s domain.Summary) string {
	out := fmt.Sprintf("%d groups, %d pairs from %s", s.Groups, s.Pairs, s.Root)
	if len(s.EmptyGroups) > 0 {
		out += fmt.Sprintf(" (%d without tokens)", len(s.EmptyGroups))
	}
	return out
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
)
