// Package report turns filtered posts into insights and assembles them into
// the per-run Report.
package report

import (
	"sort"
	"time"

	"github.com/abelbrown/algoreport/internal/fetch"
	"github.com/abelbrown/algoreport/internal/filter"
	"github.com/abelbrown/algoreport/internal/platform"
)

const (
	// DefaultCap bounds each platform's insight list.
	DefaultCap = 6

	// ContentLimit bounds the body excerpt, in runes.
	ContentLimit = 400

	// DateLayout formats Report.Date.
	DateLayout = "2006-01-02"
)

// Insight is a post annotated with a category and a trending flag.
// JSON field names match the archive file format.
type Insight struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Content  string          `json:"content"`
	Score    int             `json:"score"`
	Comments int             `json:"comments"`
	URL      string          `json:"url"`
	Author   string          `json:"author"`
	Created  time.Time       `json:"created"`
	Category filter.Category `json:"category"`
	Trending bool            `json:"trending"`
}

// FromPost builds an Insight for a post that passed the relevance filter.
func FromPost(p fetch.Post, pl platform.Platform) Insight {
	return Insight{
		ID:       p.ID,
		Title:    p.Title,
		Content:  truncate(p.Body, ContentLimit),
		Score:    p.Score,
		Comments: p.Comments,
		URL:      p.Permalink,
		Author:   p.Author,
		Created:  p.Created,
		Category: filter.Categorize(p.Title),
		Trending: p.Score > pl.TrendingThreshold,
	}
}

// FromPosts converts posts in order.
func FromPosts(posts []fetch.Post, pl platform.Platform) []Insight {
	out := make([]Insight, 0, len(posts))
	for _, p := range posts {
		out = append(out, FromPost(p, pl))
	}
	return out
}

// Fallback returns the canned insights for a platform, stamped with now.
func Fallback(id platform.ID, now time.Time) []Insight {
	canned := platform.FallbackData(id)
	out := make([]Insight, 0, len(canned))
	for _, c := range canned {
		out = append(out, Insight{
			ID:       c.ID,
			Title:    c.Title,
			Content:  c.Content,
			Score:    c.Score,
			Comments: c.Comments,
			URL:      platform.FallbackURL,
			Author:   c.Author,
			Created:  now,
			Category: filter.ParseCategory(c.Category),
			Trending: c.Trending,
		})
	}
	return out
}

// Report is one run's output.
type Report struct {
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
	YouTube   []Insight `json:"youtube"`
	Instagram []Insight `json:"instagram"`
	TikTok    []Insight `json:"tiktok"`
	Summary   string    `json:"summary"`
}

// Insights returns the list for one platform.
func (r Report) Insights(id platform.ID) []Insight {
	switch id {
	case platform.YouTube:
		return r.YouTube
	case platform.Instagram:
		return r.Instagram
	case platform.TikTok:
		return r.TikTok
	}
	return nil
}

func (r *Report) set(id platform.ID, insights []Insight) {
	switch id {
	case platform.YouTube:
		r.YouTube = insights
	case platform.Instagram:
		r.Instagram = insights
	case platform.TikTok:
		r.TikTok = insights
	}
}

// Total counts insights across platforms.
func (r Report) Total() int {
	return len(r.YouTube) + len(r.Instagram) + len(r.TikTok)
}

// Trending counts trending insights across platforms.
func (r Report) Trending() int {
	n := 0
	for _, id := range platform.All {
		for _, in := range r.Insights(id) {
			if in.Trending {
				n++
			}
		}
	}
	return n
}

// Assemble caps each platform's list with Top and packages the result.
// Platforms missing from perPlatform get an empty list. Nothing is validated
// across platforms; an all-empty report is legal.
func Assemble(now time.Time, perPlatform map[platform.ID][]Insight, cap int, summary string) Report {
	now = now.UTC()
	r := Report{
		Date:      now.Format(DateLayout),
		Timestamp: now,
		Summary:   summary,
	}
	for _, id := range platform.All {
		r.set(id, Top(perPlatform[id], cap))
	}
	return r
}

// Top returns at most n insights, highest score first. The sort is stable,
// so equal scores keep their feed order. The input is not modified.
func Top(insights []Insight, n int) []Insight {
	if n <= 0 {
		return []Insight{}
	}
	sorted := make([]Insight, len(insights))
	copy(sorted, insights)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// truncate shortens s to maxLen runes without breaking UTF-8.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
