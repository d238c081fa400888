// Package browse is the terminal browser over archived reports.
package browse

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/algoreport/internal/archive"
	"github.com/abelbrown/algoreport/internal/platform"
	"github.com/abelbrown/algoreport/internal/render"
	"github.com/abelbrown/algoreport/internal/report"
	"github.com/abelbrown/algoreport/internal/ui"
)

type keyMap struct {
	Open     key.Binding
	Back     key.Binding
	Next     key.Binding
	Prev     key.Binding
	Trending key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Back:     key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
	Next:     key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next platform")),
	Prev:     key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab", "prev platform")),
	Trending: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "trending only")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// platforms supplies display names for the tabs.
var platforms = platform.Defaults()

type reportItem struct {
	index int
	r     report.Report
}

func (i reportItem) Title() string {
	return fmt.Sprintf("%s  %d insights, %d hot", i.r.Date, i.r.Total(), i.r.Trending())
}

func (i reportItem) Description() string {
	if i.r.Summary == "" {
		return report.NoSummary
	}
	return i.r.Summary
}

func (i reportItem) FilterValue() string { return i.r.Date + " " + i.r.Summary }

// Model lists archived reports; enter opens one, tab walks its platforms.
type Model struct {
	list          list.Model
	reports       []report.Report
	open          int // index into reports; -1 while on the list
	platform      int // index into platform.All
	trendingOnly  bool
	width, height int
}

// New creates a browser over a.
func New(a *archive.Archive) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(ui.ColorHighlight).
		BorderForeground(ui.ColorHighlight)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		BorderForeground(ui.ColorHighlight)

	var items []list.Item
	var reports []report.Report
	if a != nil {
		reports = a.Reports
	}
	for i, r := range reports {
		items = append(items, reportItem{index: i, r: r})
	}

	l := list.New(items, delegate, 0, 0)
	l.Title = fmt.Sprintf("Report archive (%d)", len(reports))
	l.Styles.Title = ui.Title
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)

	return Model{list: l, reports: reports, open: -1}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case tea.KeyMsg:
		if m.open >= 0 {
			return m.updateDetail(msg)
		}
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Open):
			if item, ok := m.list.SelectedItem().(reportItem); ok {
				m.open = item.index
				m.platform = 0
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(platform.All)
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Back):
		m.open = -1
	case key.Matches(msg, keys.Next):
		m.platform = (m.platform + 1) % n
	case key.Matches(msg, keys.Prev):
		m.platform = (m.platform + n - 1) % n
	case key.Matches(msg, keys.Trending):
		m.trendingOnly = !m.trendingOnly
	}
	return m, nil
}

func (m Model) View() string {
	if len(m.reports) == 0 {
		return ui.HelpStyle.Render(render.Placeholder + "\n\n" + helpLine(keys.Quit))
	}
	if m.open >= 0 {
		return m.detailView()
	}
	return m.list.View() + "\n" + helpLine(keys.Open, keys.Quit)
}

func (m Model) detailView() string {
	r := m.reports[m.open]
	id := platform.All[m.platform]

	var tabs []string
	for i, pid := range platform.All {
		name := string(pid)
		if p, ok := platform.Lookup(platforms, pid); ok {
			name = p.Name
		}
		label := fmt.Sprintf("%s (%d)", name, len(r.Insights(pid)))
		if i == m.platform {
			tabs = append(tabs, ui.SelectedItem.Render(label))
		} else {
			tabs = append(tabs, ui.NormalItem.Render(label))
		}
	}

	var b strings.Builder
	b.WriteString(ui.Title.Render(r.Date))
	b.WriteString("\n")
	summary := r.Summary
	if summary == "" {
		summary = report.NoSummary
	}
	b.WriteString(ui.Summary.Render(summary))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	width := render.TitleWidth
	if m.width > 30 && m.width-30 < width {
		width = m.width - 30
	}

	shown := 0
	for _, in := range r.Insights(id) {
		if m.trendingOnly && !in.Trending {
			continue
		}
		shown++
		line := fmt.Sprintf("%s %s %s",
			ui.Meta.Render(fmt.Sprintf("%5d▲", in.Score)),
			ui.CategoryBadge.Render(render.CategoryLabel(in.Category)),
			render.FitTitle(in.Title, width))
		if in.Trending {
			line += " " + ui.HotBadge.Render("HOT")
		}
		b.WriteString(line)
		b.WriteString("\n")
		if in.URL != "" && in.URL != platform.FallbackURL {
			b.WriteString(ui.Meta.Render("        " + in.URL))
			b.WriteString("\n")
		}
	}
	if shown == 0 {
		b.WriteString(ui.Meta.Render("  (none)"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpLine(keys.Next, keys.Prev, keys.Trending, keys.Back, keys.Quit))
	return b.String()
}

func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, ui.StatusBarKey.Render(h.Key)+" "+ui.StatusBarText.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
