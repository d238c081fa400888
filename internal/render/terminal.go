package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/algoreport/internal/platform"
	"github.com/abelbrown/algoreport/internal/report"
	"github.com/abelbrown/algoreport/internal/ui"
)

// TitleWidth is the display width titles are cut to in terminal output.
const TitleWidth = 60

// Terminal writes a compact summary of one run's report.
func Terminal(w io.Writer, r report.Report, archiveLen int) error {
	var b strings.Builder

	b.WriteString(ui.Title.Render(fmt.Sprintf("algoreport %s", r.Date)))
	b.WriteString(" ")
	b.WriteString(ui.Meta.Render(fmt.Sprintf("%d insights, %d trending, %d archived",
		r.Total(), r.Trending(), archiveLen)))
	b.WriteString("\n")

	summary := r.Summary
	if summary == "" {
		summary = report.NoSummary
	}
	b.WriteString(ui.Summary.Render(summary))
	b.WriteString("\n")

	for _, id := range platform.All {
		insights := r.Insights(id)
		header := ui.SectionHeader.Foreground(ui.PlatformColors[string(id)])
		b.WriteString(header.Render(fmt.Sprintf("%s (%d)", platformNames[id], len(insights))))
		b.WriteString("\n")
		if len(insights) == 0 {
			b.WriteString(ui.Meta.Render("   (none)"))
			b.WriteString("\n")
			continue
		}
		for _, in := range insights {
			b.WriteString(insightLine(in))
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func insightLine(in report.Insight) string {
	title := FitTitle(in.Title, TitleWidth)
	parts := []string{
		"  ",
		ui.Meta.Render(fmt.Sprintf("%5d▲ %4d💬", in.Score, in.Comments)),
		" ",
		ui.CategoryBadge.Render(CategoryLabel(in.Category)),
		title,
	}
	if in.Trending {
		parts = append(parts, " ", ui.HotBadge.Render("HOT"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// FitTitle truncates s to width display cells and pads it to exactly width,
// so wide (CJK) titles line up with ASCII ones.
func FitTitle(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	s = runewidth.Truncate(s, width, "…")
	return runewidth.FillRight(s, width)
}
