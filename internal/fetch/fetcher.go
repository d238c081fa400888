// Package fetch reads community discussion feeds.
//
// A Fetcher issues one GET per Source, identifying itself with a User-Agent,
// and converts the listing into Posts. Two wire formats are understood: the
// Reddit JSON listing (hot.json) and the equivalent Atom feed (hot/.rss).
// Every failure, whatever its cause, is reported as a *Error.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/abelbrown/algoreport/internal/platform"
)

const (
	// DefaultTimeout bounds a single feed request.
	DefaultTimeout = 15 * time.Second

	// DefaultUserAgent identifies the client to the feed host.
	DefaultUserAgent = "AlgorithmBot/2.0"

	// maxBodyBytes caps how much of a response is read.
	maxBodyBytes = 8 << 20

	permalinkBase = "https://reddit.com"
)

// Wire formats a Source can use.
const (
	FormatJSON = "json"
	FormatRSS  = "rss"
)

// Source is one feed endpoint.
type Source struct {
	Platform platform.ID
	Name     string // Display name, used in errors and logs
	URL      string
	Format   string // FormatJSON (default) or FormatRSS
	Limit    int    // Sent as ?limit=N when positive
}

// SourceFor builds the Source for a platform.
func SourceFor(p platform.Platform, limit int) Source {
	return Source{
		Platform: p.ID,
		Name:     p.Name,
		URL:      p.FeedURL,
		Format:   p.Format,
		Limit:    limit,
	}
}

// Post is one item from a feed listing. Never mutated after Fetch returns it.
type Post struct {
	ID          string
	Title       string
	Body        string
	Score       int
	Comments    int
	Author      string
	Permalink   string // Absolute URL
	Created     time.Time
	UpvoteRatio float64 // 0 when the feed does not report it
}

// Error is the single failure type returned by Fetch. Network errors,
// HTTP status errors and malformed listings are not distinguished beyond
// the message.
type Error struct {
	Source string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.Source, e.Msg, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.Source, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Fetcher retrieves posts from feed sources. Safe for concurrent use.
type Fetcher struct {
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
}

// NewFetcher creates a Fetcher with the given request timeout and User-Agent.
// Zero values fall back to DefaultTimeout and DefaultUserAgent.
func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Every(500*time.Millisecond), 3),
	}
}

// SetRateLimit replaces the limiter shared by all requests from this Fetcher.
// A non-positive interval disables limiting.
func (f *Fetcher) SetRateLimit(every time.Duration, burst int) {
	if burst < 1 {
		burst = 1
	}
	if every <= 0 {
		f.limiter = rate.NewLimiter(rate.Inf, burst)
		return
	}
	f.limiter = rate.NewLimiter(rate.Every(every), burst)
}

// Fetch retrieves the current listing for src. The request honours ctx as
// well as the Fetcher's own timeout.
func (f *Fetcher) Fetch(ctx context.Context, src Source) ([]Post, error) {
	name := src.Name
	if name == "" {
		name = string(src.Platform)
	}
	fail := func(msg string, err error) ([]Post, error) {
		return nil, &Error{Source: name, Msg: msg, Err: err}
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return fail("rate limiter", err)
	}

	target, err := withLimit(src.URL, src.Limit)
	if err != nil {
		return fail("invalid url", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fail("create request", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return fail("request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(fmt.Sprintf("HTTP %d", resp.StatusCode), nil)
	}

	body := io.LimitReader(resp.Body, maxBodyBytes)

	var posts []Post
	switch src.Format {
	case FormatRSS:
		posts, err = parseAtom(body)
	case FormatJSON, "":
		posts, err = parseListing(body)
	default:
		return fail("unknown format "+src.Format, nil)
	}
	if err != nil {
		return fail("malformed response", err)
	}
	return posts, nil
}

// withLimit adds the limit query parameter when n > 0.
func withLimit(raw string, n int) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%q is not an absolute URL", raw)
	}
	if n > 0 {
		q := u.Query()
		q.Set("limit", fmt.Sprint(n))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// listing is the subset of a Reddit listing response we read.
type listing struct {
	Data *struct {
		Children []struct {
			Data *listingPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type listingPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	Permalink   string  `json:"permalink"`
	Author      string  `json:"author"`
	CreatedUTC  float64 `json:"created_utc"`
	UpvoteRatio float64 `json:"upvote_ratio"`
}

var errMissingChildren = errors.New("listing has no data.children")

func parseListing(r io.Reader) ([]Post, error) {
	var l listing
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return nil, err
	}
	if l.Data == nil || l.Data.Children == nil {
		return nil, errMissingChildren
	}

	posts := make([]Post, 0, len(l.Data.Children))
	for i, child := range l.Data.Children {
		if child.Data == nil {
			return nil, fmt.Errorf("child %d has no data", i)
		}
		d := child.Data
		posts = append(posts, Post{
			ID:          d.ID,
			Title:       d.Title,
			Body:        d.Selftext,
			Score:       d.Score,
			Comments:    max(d.NumComments, 0),
			Author:      d.Author,
			Permalink:   absolutePermalink(d.Permalink),
			Created:     time.Unix(int64(d.CreatedUTC), 0).UTC(),
			UpvoteRatio: d.UpvoteRatio,
		})
	}
	return posts, nil
}

func absolutePermalink(p string) string {
	if p == "" || strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	return permalinkBase + p
}

// htmlTagRe matches HTML tags in Atom content.
var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// whitespaceRe matches runs of whitespace.
var whitespaceRe = regexp.MustCompile(`\s+`)

// parseAtom reads the Atom flavour of a listing. Atom carries no score or
// comment count, so both are zero.
func parseAtom(r io.Reader) ([]Post, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, err
	}

	posts := make([]Post, 0, len(feed.Items))
	for _, item := range feed.Items {
		created := time.Time{}
		if item.PublishedParsed != nil {
			created = item.PublishedParsed.UTC()
		} else if item.UpdatedParsed != nil {
			created = item.UpdatedParsed.UTC()
		}

		author := ""
		if item.Author != nil {
			author = strings.TrimPrefix(item.Author.Name, "/u/")
		}

		body := item.Content
		if body == "" {
			body = item.Description
		}

		posts = append(posts, Post{
			ID:        strings.TrimPrefix(item.GUID, "t3_"),
			Title:     item.Title,
			Body:      stripHTML(body),
			Author:    author,
			Permalink: item.Link,
			Created:   created,
		})
	}
	return posts, nil
}

func stripHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
