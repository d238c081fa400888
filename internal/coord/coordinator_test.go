package coord

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abelbrown/algoreport/internal/archive"
	"github.com/abelbrown/algoreport/internal/fetch"
	"github.com/abelbrown/algoreport/internal/filter"
	"github.com/abelbrown/algoreport/internal/metrics"
	"github.com/abelbrown/algoreport/internal/otel"
	"github.com/abelbrown/algoreport/internal/platform"
	"github.com/abelbrown/algoreport/internal/report"
)

// mockFetcher implements the fetcher interface for testing.
type mockFetcher struct {
	mu          sync.Mutex
	fetchedSrcs []fetch.Source
	posts       map[platform.ID][]fetch.Post
	errs        map[platform.ID]error
	fetchDelay  time.Duration
	fetchCount  atomic.Int32
}

func (m *mockFetcher) Fetch(ctx context.Context, src fetch.Source) ([]fetch.Post, error) {
	m.fetchCount.Add(1)

	if m.fetchDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, &fetch.Error{Source: src.Name, Msg: "request failed", Err: ctx.Err()}
		case <-time.After(m.fetchDelay):
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.fetchedSrcs = append(m.fetchedSrcs, src)
	if err := m.errs[src.Platform]; err != nil {
		return nil, err
	}
	return m.posts[src.Platform], nil
}

func (m *mockFetcher) getFetchedSources() []fetch.Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]fetch.Source, len(m.fetchedSrcs))
	copy(result, m.fetchedSrcs)
	return result
}

// memStore is an in-memory archive.Store.
type memStore struct {
	mu      sync.Mutex
	saved   *archive.Archive
	saves   int
	loadErr error
	saveErr error
}

func (s *memStore) Load(ctx context.Context) (*archive.Archive, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return archive.New(time.Now()), s.loadErr
	}
	if s.saved == nil {
		return archive.New(time.Now()), nil
	}
	cp := *s.saved
	cp.Reports = append([]report.Report(nil), s.saved.Reports...)
	return &cp, nil
}

func (s *memStore) Save(ctx context.Context, a *archive.Archive) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	cp := *a
	s.saved = &cp
	return nil
}

func livePosts() map[platform.ID][]fetch.Post {
	return map[platform.ID][]fetch.Post{
		platform.YouTube: {
			{ID: "y1", Title: "YouTube Algorithm Update Explained", Score: 150, Permalink: "https://reddit.com/r/NewTubers/y1"},
			{ID: "y2", Title: "My vacation photos", Score: 10},
		},
		platform.Instagram: {
			{ID: "i1", Title: "Reels reach dropped", Score: 30},
		},
		platform.TikTok: {
			{ID: "t1", Title: "Stuck at 0 views on fyp", Score: 80},
			{ID: "t1", Title: "Stuck at 0 views on fyp", Score: 80},
		},
	}
}

func newTestCoordinator(t *testing.T, f fetcher, st archive.Store, cfg Config) *Coordinator {
	t.Helper()
	if cfg.HTMLPath == "" && !cfg.DryRun {
		cfg.HTMLPath = filepath.Join(t.TempDir(), "index.html")
	}
	return NewCoordinatorWithFetcher(f, st, platform.Defaults(), cfg, nil, nil)
}

func TestRunFetchesAllPlatforms(t *testing.T) {
	mock := &mockFetcher{posts: livePosts()}
	st := &memStore{}
	c := newTestCoordinator(t, mock, st, Config{Limit: 25})

	res, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	fetched := mock.getFetchedSources()
	if len(fetched) != len(platform.All) {
		t.Fatalf("fetched %d sources, want %d", len(fetched), len(platform.All))
	}
	for _, src := range fetched {
		if src.Limit != 25 {
			t.Errorf("%s: limit = %d", src.Platform, src.Limit)
		}
	}

	if res.Fallbacks() != 0 {
		t.Errorf("Fallbacks = %d, want 0", res.Fallbacks())
	}
	for i, pr := range res.Platforms {
		if pr.Platform != platform.All[i] {
			t.Errorf("Platforms[%d] = %s, want %s", i, pr.Platform, platform.All[i])
		}
		if !pr.Live || pr.Err != nil {
			t.Errorf("%s: live=%v err=%v", pr.Platform, pr.Live, pr.Err)
		}
	}

	yt := res.Report.YouTube
	if len(yt) != 1 || yt[0].Title != "YouTube Algorithm Update Explained" {
		t.Fatalf("youtube = %+v", yt)
	}
	if yt[0].Category != filter.CategoryAlgorithm || !yt[0].Trending {
		t.Errorf("youtube insight = %+v", yt[0])
	}
	if len(res.Report.TikTok) != 1 {
		t.Errorf("duplicate tiktok post not removed: %d", len(res.Report.TikTok))
	}

	if st.saves != 1 || st.saved.Len() != 1 {
		t.Errorf("saves = %d", st.saves)
	}
	if res.ArchiveErr != nil || res.ArchiveLoadErr != nil {
		t.Errorf("archive errors: %v %v", res.ArchiveLoadErr, res.ArchiveErr)
	}
	if res.RunID == "" || res.Finished.Before(res.Started) {
		t.Errorf("run bookkeeping: %+v", res)
	}
}

func TestRunFallbackForFailingPlatform(t *testing.T) {
	mock := &mockFetcher{
		posts: livePosts(),
		errs: map[platform.ID]error{
			platform.Instagram: &fetch.Error{Source: "Instagram", Msg: "HTTP 503"},
		},
	}
	c := newTestCoordinator(t, mock, &memStore{}, Config{})

	res, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Fallbacks() != 1 {
		t.Fatalf("Fallbacks = %d, want 1", res.Fallbacks())
	}
	ig := res.Platforms[1]
	var fe *fetch.Error
	if ig.Live || !errors.As(ig.Err, &fe) {
		t.Errorf("instagram result = %+v", ig)
	}

	if len(res.Report.Instagram) != 2 {
		t.Errorf("instagram fallback insights = %d, want 2", len(res.Report.Instagram))
	}
	for _, in := range res.Report.Instagram {
		if in.URL != platform.FallbackURL {
			t.Errorf("fallback URL = %q", in.URL)
		}
	}
	if len(res.Report.YouTube) == 0 || len(res.Report.TikTok) == 0 {
		t.Error("healthy platforms lost their data")
	}
}

func TestRunAllPlatformsFail(t *testing.T) {
	boom := errors.New("network down")
	mock := &mockFetcher{errs: map[platform.ID]error{
		platform.YouTube: boom, platform.Instagram: boom, platform.TikTok: boom,
	}}
	c := newTestCoordinator(t, mock, &memStore{}, Config{})

	res, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Fallbacks() != 3 {
		t.Errorf("Fallbacks = %d", res.Fallbacks())
	}
	if res.Report.Total() != 6 {
		t.Errorf("Total = %d, want 6 canned insights", res.Report.Total())
	}
}

func TestRunTimeoutFallsBack(t *testing.T) {
	mock := &mockFetcher{posts: livePosts(), fetchDelay: time.Second}
	c := newTestCoordinator(t, mock, &memStore{}, Config{Timeout: 20 * time.Millisecond})

	start := time.Now()
	res, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if time.Since(start) > 900*time.Millisecond {
		t.Error("per-platform timeout not applied")
	}
	if res.Fallbacks() != 3 {
		t.Errorf("Fallbacks = %d, want 3", res.Fallbacks())
	}
	for _, pr := range res.Platforms {
		if !errors.Is(pr.Err, context.DeadlineExceeded) {
			t.Errorf("%s: err = %v", pr.Platform, pr.Err)
		}
	}
}

func TestRunRecordsArchiveSaveError(t *testing.T) {
	saveErr := errors.New("disk full")
	st := &memStore{saveErr: saveErr}
	htmlPath := filepath.Join(t.TempDir(), "index.html")
	c := newTestCoordinator(t, &mockFetcher{posts: livePosts()}, st, Config{HTMLPath: htmlPath})

	res, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !errors.Is(res.ArchiveErr, saveErr) {
		t.Errorf("ArchiveErr = %v", res.ArchiveErr)
	}
	if _, err := os.Stat(htmlPath); err != nil {
		t.Errorf("page not written after save failure: %v", err)
	}
}

func TestRunCorruptArchiveStartsFresh(t *testing.T) {
	st := &memStore{loadErr: errors.New("bad json")}
	c := newTestCoordinator(t, &mockFetcher{posts: livePosts()}, st, Config{})

	res, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.ArchiveLoadErr == nil {
		t.Error("load error not recorded")
	}
	if res.Archive.Len() != 1 {
		t.Errorf("archive len = %d, want 1", res.Archive.Len())
	}
}

func TestRunAppendsToArchive(t *testing.T) {
	st := &memStore{}
	c := newTestCoordinator(t, &mockFetcher{posts: livePosts()}, st, Config{})

	for i := 0; i < 3; i++ {
		if _, err := c.Run(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if st.saved.Len() != 3 {
		t.Errorf("archive len = %d, want 3", st.saved.Len())
	}
}

func TestRunWritesHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site", "index.html")
	c := newTestCoordinator(t, &mockFetcher{posts: livePosts()}, &memStore{}, Config{HTMLPath: path})

	if _, err := c.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "YouTube Algorithm Update Explained") {
		t.Error("page missing fetched insight")
	}
}

func TestRunHTMLWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	// A regular file where a directory is needed.
	path := filepath.Join(blocker, "index.html")
	c := newTestCoordinator(t, &mockFetcher{posts: livePosts()}, &memStore{}, Config{HTMLPath: path})

	res, err := c.Run(context.Background())
	if err == nil {
		t.Fatal("expected render error")
	}
	if res == nil || res.Archive == nil {
		t.Fatal("result missing on render failure")
	}
}

func TestRunDryRun(t *testing.T) {
	st := &memStore{}
	c := newTestCoordinator(t, &mockFetcher{posts: livePosts()}, st, Config{DryRun: true})

	res, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.saves != 0 {
		t.Error("dry run saved the archive")
	}
	if res.Report.Total() == 0 {
		t.Error("dry run produced no report")
	}
}

func TestRunCapAndSummary(t *testing.T) {
	posts := livePosts()
	for i := 0; i < 10; i++ {
		posts[platform.YouTube] = append(posts[platform.YouTube],
			fetch.Post{ID: string(rune('a' + i)), Title: "youtube growth", Score: i})
	}
	c := newTestCoordinator(t, &mockFetcher{posts: posts}, &memStore{},
		Config{Cap: 3, Summary: report.None{}})

	res, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Report.YouTube) != 3 {
		t.Errorf("youtube = %d insights, want 3", len(res.Report.YouTube))
	}
	if res.Report.YouTube[0].Score != 150 {
		t.Errorf("top score = %d", res.Report.YouTube[0].Score)
	}
	if res.Report.Summary != "" {
		t.Errorf("Summary = %q, want empty", res.Report.Summary)
	}
}

func TestRunEmitsEvents(t *testing.T) {
	var buf bytes.Buffer
	events := otel.NewLogger(&buf)
	m := metrics.New()

	mock := &mockFetcher{
		posts: livePosts(),
		errs:  map[platform.ID]error{platform.TikTok: errors.New("boom")},
	}
	c := NewCoordinatorWithFetcher(mock, &memStore{}, platform.Defaults(),
		Config{HTMLPath: filepath.Join(t.TempDir(), "index.html")}, events, m)

	res, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	events.Close()

	recs, err := otel.ReadTail(&buf, 0, otel.Filter{RunID: res.RunID})
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[otel.EventKind]int)
	for _, r := range recs {
		seen[r.Event.Kind]++
	}
	wants := map[otel.EventKind]int{
		otel.KindStartup:         1,
		otel.KindArchiveLoad:     1,
		otel.KindFetchStart:      3,
		otel.KindFetchComplete:   2,
		otel.KindFetchError:      1,
		otel.KindFetchFallback:   1,
		otel.KindReportAssembled: 1,
		otel.KindArchiveSave:     1,
		otel.KindRenderComplete:  1,
		otel.KindShutdown:        1,
	}
	for k, n := range wants {
		if seen[k] != n {
			t.Errorf("%s: %d events, want %d", k, seen[k], n)
		}
	}
}

func TestStartRunsImmediatelyAndStops(t *testing.T) {
	mock := &mockFetcher{posts: livePosts()}
	c := newTestCoordinator(t, mock, &memStore{}, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	runs := make(chan *Result, 10)
	if err := c.Start(ctx, time.Hour, func(r *Result, err error) { runs <- r }); err != nil {
		t.Fatal(err)
	}

	select {
	case r := <-runs:
		if r == nil {
			t.Error("nil result")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first run did not happen immediately")
	}

	cancel()
	done := make(chan struct{})
	go func() {
		c.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after cancel")
	}
}

func TestStartTicks(t *testing.T) {
	c := newTestCoordinator(t, &mockFetcher{posts: livePosts()}, &memStore{}, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var n atomic.Int32
	if err := c.Start(ctx, 20*time.Millisecond, func(*Result, error) { n.Add(1) }); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for n.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	c.Wait()
	if n.Load() < 3 {
		t.Errorf("runs = %d, want >= 3", n.Load())
	}
}

func TestStartRejectsZeroInterval(t *testing.T) {
	c := newTestCoordinator(t, &mockFetcher{}, &memStore{}, Config{})
	if err := c.Start(context.Background(), 0, nil); err == nil {
		t.Error("expected error for zero interval")
	}
}

func TestPlatformsCopied(t *testing.T) {
	ps := platform.Defaults()
	c := NewCoordinatorWithFetcher(&mockFetcher{}, &memStore{}, ps, Config{}, nil, nil)
	ps[0].Keywords = nil
	if len(c.platforms[0].Keywords) == 0 {
		t.Error("coordinator shares the caller's platform slice")
	}
}
