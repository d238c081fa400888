// Package filter provides pure filter functions for posts.
// All functions are simple: []Post in, []Post out. No side effects.
package filter

import (
	"strings"
	"time"

	"github.com/abelbrown/algoreport/internal/fetch"
)

// Options tune Relevant.
type Options struct {
	// CheckBody also matches keywords against the post body.
	CheckBody bool

	// MinScore excludes posts scoring below it, regardless of keyword match.
	// Nil disables the threshold.
	MinScore *int
}

// Relevant keeps posts whose lower-cased title (or body, with CheckBody)
// contains at least one keyword as a literal substring. Input order is
// preserved. An empty keyword set keeps nothing.
func Relevant(posts []fetch.Post, keywords []string, opts Options) []fetch.Post {
	result := make([]fetch.Post, 0, len(posts))
	if len(posts) == 0 || len(keywords) == 0 {
		return result
	}

	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}

	for _, p := range posts {
		if opts.MinScore != nil && p.Score < *opts.MinScore {
			continue
		}
		if matches(p, lowered, opts.CheckBody) {
			result = append(result, p)
		}
	}
	return result
}

// matches reports whether any keyword appears in the post. First hit wins.
func matches(p fetch.Post, keywords []string, checkBody bool) bool {
	title := strings.ToLower(p.Title)
	body := ""
	if checkBody {
		body = strings.ToLower(p.Body)
	}
	for _, kw := range keywords {
		if strings.Contains(title, kw) {
			return true
		}
		if checkBody && strings.Contains(body, kw) {
			return true
		}
	}
	return false
}

// Dedup removes posts with a repeated ID or permalink. First occurrence wins.
// Listings can repeat a stickied post across pages.
func Dedup(posts []fetch.Post) []fetch.Post {
	result := make([]fetch.Post, 0, len(posts))
	seenIDs := make(map[string]bool)
	seenLinks := make(map[string]bool)

	for _, p := range posts {
		if p.ID != "" && seenIDs[p.ID] {
			continue
		}
		if p.Permalink != "" && seenLinks[p.Permalink] {
			continue
		}
		if p.ID != "" {
			seenIDs[p.ID] = true
		}
		if p.Permalink != "" {
			seenLinks[p.Permalink] = true
		}
		result = append(result, p)
	}
	return result
}

// ByAge removes posts created before now-maxAge. Posts with no creation
// time are kept. A non-positive maxAge keeps everything.
func ByAge(posts []fetch.Post, now time.Time, maxAge time.Duration) []fetch.Post {
	if maxAge <= 0 {
		return append([]fetch.Post{}, posts...)
	}

	cutoff := now.Add(-maxAge)
	result := make([]fetch.Post, 0, len(posts))
	for _, p := range posts {
		if p.Created.IsZero() || p.Created.After(cutoff) {
			result = append(result, p)
		}
	}
	return result
}
