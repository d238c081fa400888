package render

import (
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/algoreport/internal/archive"
	"github.com/abelbrown/algoreport/internal/filter"
	"github.com/abelbrown/algoreport/internal/platform"
	"github.com/abelbrown/algoreport/internal/report"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func sampleArchive() *archive.Archive {
	a := archive.New(testNow)
	older := report.Assemble(testNow.AddDate(0, 0, -1), map[platform.ID][]report.Insight{
		platform.TikTok: {{ID: "old", Title: "Yesterday's FYP change", Score: 3, Category: filter.CategoryAlgorithm}},
	}, report.DefaultCap, "")
	latest := report.Assemble(testNow, map[platform.ID][]report.Insight{
		platform.YouTube: {
			{ID: "a", Title: "YouTube Algorithm Update Explained", Content: "details", Score: 150,
				Comments: 4, URL: "https://reddit.com/r/NewTubers/comments/a/", Category: filter.CategoryAlgorithm, Trending: true},
			{ID: "b", Title: "Small channel tips", Score: 20, Category: filter.CategoryTips},
		},
		platform.Instagram: {{ID: "c", Title: "Reels reach", Score: 5, Category: filter.CategoryGeneral}},
	}, report.DefaultCap, "today's summary")
	a.Append(older)
	a.Append(latest)
	return a
}

func TestHTMLLatestReport(t *testing.T) {
	out, err := HTML(sampleArchive(), testNow)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	page := string(out)

	wants := []string{
		"<!DOCTYPE html>",
		"YouTube Algorithm Update Explained",
		"https://reddit.com/r/NewTubers/comments/a/",
		"🔥 HOT",
		"today&#39;s summary",
		`data-category="algorithm"`,
		`data-trending="true"`,
		`data-filter="monetization"`,
		"2024-03-01",
		"2024-02-29",
		"Yesterday&#39;s FYP change",
		`id="search"`,
	}
	for _, w := range wants {
		if !strings.Contains(page, w) {
			t.Errorf("page missing %q", w)
		}
	}
	if strings.Contains(page, Placeholder) {
		t.Error("placeholder shown for non-empty archive")
	}
	if got := strings.Count(page, "🔥 HOT"); got != 1 {
		t.Errorf("HOT badge count = %d, want 1", got)
	}
}

func TestHTMLOnlyLatestVisible(t *testing.T) {
	out, err := HTML(sampleArchive(), testNow)
	if err != nil {
		t.Fatal(err)
	}
	page := string(out)
	if !strings.Contains(page, `<div class="report" data-report="0">`) {
		t.Error("latest report not visible")
	}
	if !strings.Contains(page, `<div class="report hidden" data-report="1">`) {
		t.Error("older report not hidden")
	}
}

func TestHTMLEmptyArchive(t *testing.T) {
	out, err := HTML(archive.New(testNow), testNow)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	page := string(out)
	if !strings.Contains(page, Placeholder) {
		t.Error("placeholder missing for empty archive")
	}
	if !strings.Contains(page, "2024-03-01") {
		t.Error("current date missing")
	}
}

func TestHTMLNilArchive(t *testing.T) {
	if _, err := HTML(nil, testNow); err != nil {
		t.Fatalf("HTML(nil): %v", err)
	}
}

func TestHTMLEscapesContent(t *testing.T) {
	a := archive.New(testNow)
	a.Append(report.Assemble(testNow, map[platform.ID][]report.Insight{
		platform.YouTube: {{Title: "<script>alert(1)</script>", Content: "a & b", URL: "javascript:alert(1)"}},
	}, report.DefaultCap, ""))

	out, err := HTML(a, testNow)
	if err != nil {
		t.Fatal(err)
	}
	page := string(out)
	if strings.Contains(page, "<script>alert(1)</script>") {
		t.Error("title not escaped")
	}
	if strings.Contains(page, `href="javascript:alert(1)"`) {
		t.Error("unsafe URL not filtered")
	}
	if !strings.Contains(page, "a &amp; b") {
		t.Error("content not escaped")
	}
}

func TestHTMLNoSummary(t *testing.T) {
	a := archive.New(testNow)
	a.Append(report.Assemble(testNow, nil, report.DefaultCap, ""))
	out, err := HTML(a, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), report.NoSummary) {
		t.Error("empty summary not replaced")
	}
}

func TestCategoryLabel(t *testing.T) {
	for _, c := range filter.Categories {
		if CategoryLabel(c) == string(c) {
			t.Errorf("category %q has no label", c)
		}
	}
	if got := CategoryLabel("other"); got != "other" {
		t.Errorf("unknown category label = %q", got)
	}
}
