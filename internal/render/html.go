// Package render turns the archive into its two presentations: the static
// HTML page and the terminal run summary.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/abelbrown/algoreport/internal/archive"
	"github.com/abelbrown/algoreport/internal/filter"
	"github.com/abelbrown/algoreport/internal/platform"
	"github.com/abelbrown/algoreport/internal/report"
)

// Placeholder is shown instead of a report when the archive is empty.
const Placeholder = "데이터를 수집하고 있습니다..."

//go:embed templates/page.html
var templateFS embed.FS

var pageTmpl = template.Must(
	template.New("page.html").
		Funcs(template.FuncMap{"categoryLabel": CategoryLabel}).
		ParseFS(templateFS, "templates/page.html"),
)

var platformIcons = map[platform.ID]string{
	platform.YouTube:   "🎥",
	platform.Instagram: "📸",
	platform.TikTok:    "🎵",
}

var platformNames = map[platform.ID]string{
	platform.YouTube:   "YouTube",
	platform.Instagram: "Instagram",
	platform.TikTok:    "TikTok",
}

var categoryLabels = map[filter.Category]string{
	filter.CategoryAlgorithm:    "알고리즘",
	filter.CategoryGrowth:       "성장",
	filter.CategoryIssue:        "문제해결",
	filter.CategoryTips:         "팁",
	filter.CategoryMonetization: "수익화",
	filter.CategoryGeneral:      "일반",
}

// CategoryLabel returns the display label for a category.
func CategoryLabel(c filter.Category) string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

type tab struct {
	Key   string
	Label string
}

// tabs drive the client-side filter. "general" has no tab.
var tabs = []tab{
	{"all", "전체"},
	{"trending", "🔥 트렌딩"},
	{string(filter.CategoryAlgorithm), "알고리즘"},
	{string(filter.CategoryGrowth), "성장"},
	{string(filter.CategoryIssue), "문제해결"},
	{string(filter.CategoryTips), "팁"},
	{string(filter.CategoryMonetization), "수익화"},
}

type stat struct {
	Name  string
	Count int
}

type platformView struct {
	ID       platform.ID
	Name     string
	Icon     string
	Insights []report.Insight
}

type reportView struct {
	Index     int
	Active    bool
	Date      string
	Summary   string
	Platforms []platformView
}

type pageView struct {
	Date        string
	Generated   string
	ReportCount int
	Stats       []stat
	Tabs        []tab
	Empty       bool
	Placeholder string
	Reports     []reportView
}

// HTML renders the archive as a self-contained page. The newest report is
// shown first; every archived report is reachable from the sidebar.
func HTML(a *archive.Archive, now time.Time) ([]byte, error) {
	if a == nil {
		a = archive.New(now)
	}

	view := pageView{
		Date:        now.UTC().Format(report.DateLayout),
		Generated:   now.Format("2006-01-02 15:04:05 MST"),
		ReportCount: a.Len(),
		Tabs:        tabs,
		Placeholder: Placeholder,
	}

	latest, ok := a.Latest()
	view.Empty = !ok
	if ok {
		view.Date = latest.Date
	}
	for _, id := range platform.All {
		view.Stats = append(view.Stats, stat{Name: platformNames[id], Count: len(latest.Insights(id))})
	}

	for i, r := range a.Reports {
		view.Reports = append(view.Reports, buildReportView(i, r))
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

func buildReportView(i int, r report.Report) reportView {
	summary := r.Summary
	if summary == "" {
		summary = report.NoSummary
	}
	rv := reportView{
		Index:   i,
		Active:  i == 0,
		Date:    r.Date,
		Summary: summary,
	}
	for _, id := range platform.All {
		rv.Platforms = append(rv.Platforms, platformView{
			ID:       id,
			Name:     platformNames[id],
			Icon:     platformIcons[id],
			Insights: r.Insights(id),
		})
	}
	return rv
}
