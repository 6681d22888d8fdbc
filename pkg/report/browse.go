package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/fedigraph/pkg/analysis"
)

type view int

const (
	overviewView view = iota
	rankingsView
	communitiesView
	viewCount
)

var viewNames = []string{"Overview", "Rankings", "Communities"}

type keyMap struct {
	Tab       key.Binding
	ShiftTab  key.Binding
	NextGraph key.Binding
	Quit      key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	NextGraph: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "next graph"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "prev measure"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "next measure"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.NextGraph, k.Left, k.Right, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.NextGraph},
		{k.Up, k.Down, k.Left, k.Right},
		{k.Quit},
	}
}

type model struct {
	report      *Report
	currentView view
	graphIdx    int
	measureIdx  int
	table       table.Model
	help        help.Model
	keys        keyMap
	width       int
	height      int
}

func newModel(r *Report) model {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)

	m := model{
		report: r,
		table:  t,
		help:   help.New(),
		keys:   keys,
	}
	m.refreshTable()
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.currentView = (m.currentView + 1) % viewCount
			m.refreshTable()
			return m, nil

		case key.Matches(msg, m.keys.ShiftTab):
			m.currentView = (m.currentView + viewCount - 1) % viewCount
			m.refreshTable()
			return m, nil

		case key.Matches(msg, m.keys.NextGraph):
			if n := len(m.report.Graphs); n > 0 {
				m.graphIdx = (m.graphIdx + 1) % n
			}
			m.refreshTable()
			return m, nil

		case key.Matches(msg, m.keys.Right) && m.currentView == rankingsView:
			m.measureIdx = (m.measureIdx + 1) % len(analysis.ScoreMeasures)
			m.refreshTable()
			return m, nil

		case key.Matches(msg, m.keys.Left) && m.currentView == rankingsView:
			n := len(analysis.ScoreMeasures)
			m.measureIdx = (m.measureIdx + n - 1) % n
			m.refreshTable()
			return m, nil
		}
	}

	if m.currentView != overviewView {
		m.table, cmd = m.table.Update(msg)
	}
	return m, cmd
}

func (m *model) graph() *GraphReport {
	if len(m.report.Graphs) == 0 {
		return nil
	}
	return m.report.Graphs[m.graphIdx]
}

func (m *model) measure() string {
	return analysis.ScoreMeasures[m.measureIdx]
}

// refreshTable rebuilds the table for the current view, graph and measure.
// Rows are cleared before columns change so the table never renders rows
// wider than its column set.
func (m *model) refreshTable() {
	m.table.SetRows(nil)
	g := m.graph()

	switch m.currentView {
	case rankingsView:
		m.table.SetColumns([]table.Column{
			{Title: "#", Width: 4},
			{Title: "Node", Width: 28},
			{Title: "Score", Width: 14},
		})
		if g != nil {
			m.table.SetRows(rankingRows(g, m.measure()))
		}
	case communitiesView:
		m.table.SetColumns([]table.Column{
			{Title: "ID", Width: 6},
			{Title: "Size", Width: 6},
			{Title: "Density", Width: 9},
			{Title: "Members", Width: 48},
		})
		if g != nil {
			m.table.SetRows(communityRows(g))
		}
	default:
		m.table.SetColumns(nil)
	}
	m.table.GotoTop()
}

func rankingRows(g *GraphReport, measure string) []table.Row {
	var rows []table.Row
	if g.Metrics != nil {
		if scores, ok := g.Metrics.Scores(measure); ok {
			ranked := g.Metrics.Top(measure, len(scores))
			for i, r := range ranked {
				rows = append(rows, table.Row{
					fmt.Sprintf("%d", i+1),
					r.NodeID,
					fmt.Sprintf("%.6f", r.Score),
				})
			}
			return rows
		}
	}
	// Fall back to the persisted ranking when full scores are unavailable.
	for i, r := range g.Top[measure] {
		rows = append(rows, table.Row{fmt.Sprintf("%d", i+1), r.NodeID, fmt.Sprintf("%.6f", r.Score)})
	}
	return rows
}

func communityRows(g *GraphReport) []table.Row {
	if g.Partition == nil || !g.Partition.Defined {
		return nil
	}
	comms := append(g.Partition.Communities[:0:0], g.Partition.Communities...)
	sort.SliceStable(comms, func(i, j int) bool { return comms[i].Size > comms[j].Size })

	rows := make([]table.Row, 0, len(comms))
	for _, c := range comms {
		members := c.Nodes
		if len(members) > 5 {
			members = append(members[:5:5], "...")
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", c.ID),
			fmt.Sprintf("%d", c.Size),
			fmt.Sprintf("%.3f", c.Density),
			strings.Join(members, ", "),
		})
	}
	return rows
}

func (m model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("fedigraph report " + m.report.RunID))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	g := m.graph()
	if g == nil {
		s.WriteString(contentStyle.Render("no graphs in report"))
	} else {
		s.WriteString(headerStyle.Render(g.Name))
		s.WriteString("\n")
		switch m.currentView {
		case overviewView:
			s.WriteString(contentStyle.Render(statsBoxStyle.Render(graphBox(g))))
		case rankingsView:
			s.WriteString(contentStyle.Render("Measure: " + m.measure()))
			s.WriteString("\n")
			s.WriteString(contentStyle.Render(m.table.View()))
		case communitiesView:
			if g.Partition == nil || !g.Partition.Defined {
				s.WriteString(contentStyle.Render(warnStyle.Render("communities " + undefined)))
			} else {
				s.WriteString(contentStyle.Render(fmt.Sprintf("%d communities, modularity %.4f",
					g.Partition.CommunityCount(), g.Partition.Modularity)))
				s.WriteString("\n")
				s.WriteString(contentStyle.Render(m.table.View()))
			}
		}
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	return s.String()
}

func (m model) renderTabs() string {
	var rendered []string
	for i, name := range viewNames {
		if view(i) == m.currentView {
			rendered = append(rendered, activeTabStyle.Render(name))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// Browse opens an interactive terminal browser over the report.
func Browse(r *Report) error {
	p := tea.NewProgram(newModel(r), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run report browser: %w", err)
	}
	return nil
}
