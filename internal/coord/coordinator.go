// Package coord runs one collection cycle: fetch every platform, build the
// report, update the archive and render the page.
package coord

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/algoreport/internal/archive"
	"github.com/abelbrown/algoreport/internal/fetch"
	"github.com/abelbrown/algoreport/internal/filter"
	"github.com/abelbrown/algoreport/internal/logging"
	"github.com/abelbrown/algoreport/internal/metrics"
	"github.com/abelbrown/algoreport/internal/otel"
	"github.com/abelbrown/algoreport/internal/platform"
	"github.com/abelbrown/algoreport/internal/render"
	"github.com/abelbrown/algoreport/internal/report"
)

const comp = "coord"

// fetcher interface for dependency injection (testing).
type fetcher interface {
	Fetch(ctx context.Context, src fetch.Source) ([]fetch.Post, error)
}

// Config holds the per-run settings.
type Config struct {
	Timeout     time.Duration // per platform fetch; zero means fetch.DefaultTimeout
	Limit       int           // ?limit=N on each request
	Concurrency int           // platforms fetched at once; zero means all
	Cap         int           // insights kept per platform; zero means report.DefaultCap
	MaxAge      time.Duration // drop older posts; zero keeps all
	Summary     report.SummaryPicker

	// HTMLPath receives the rendered page. Empty skips rendering.
	HTMLPath string

	// DryRun fetches and assembles but writes nothing.
	DryRun bool
}

// Coordinator runs collection cycles.
// Uses context cancellation as the ONLY stop mechanism for Start.
type Coordinator struct {
	fetcher   fetcher
	store     archive.Store
	platforms []platform.Platform // IMMUTABLE: set at construction, never modified
	cfg       Config
	events    *otel.Logger
	metrics   *metrics.Metrics // optional
	log       *log.Logger
	now       func() time.Time
	wg        sync.WaitGroup
}

// NewCoordinator creates a Coordinator with the real fetcher.
// events and m may be nil.
func NewCoordinator(f *fetch.Fetcher, st archive.Store, ps []platform.Platform, cfg Config, events *otel.Logger, m *metrics.Metrics) *Coordinator {
	return NewCoordinatorWithFetcher(f, st, ps, cfg, events, m)
}

// NewCoordinatorWithFetcher allows injecting a custom fetcher (for testing).
func NewCoordinatorWithFetcher(f fetcher, st archive.Store, ps []platform.Platform, cfg Config, events *otel.Logger, m *metrics.Metrics) *Coordinator {
	psCopy := make([]platform.Platform, len(ps))
	copy(psCopy, ps)

	if cfg.Timeout <= 0 {
		cfg.Timeout = fetch.DefaultTimeout
	}
	if cfg.Cap <= 0 {
		cfg.Cap = report.DefaultCap
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = len(psCopy)
	}
	if cfg.Summary == nil {
		cfg.Summary = report.Rotate{Pool: report.SummaryPool}
	}
	if events == nil {
		events = otel.NewNullLogger()
	}

	return &Coordinator{
		fetcher:   f,
		store:     st,
		platforms: psCopy,
		cfg:       cfg,
		events:    events,
		metrics:   m,
		log:       logging.WithPrefix(comp),
		now:       time.Now,
	}
}

// PlatformResult records how one platform's data was obtained.
type PlatformResult struct {
	Platform platform.ID
	Live     bool  // false when fallback data was used
	Err      error // fetch failure that caused the fallback
	Posts    int   // posts in the feed
	Matched  int   // posts that passed the relevance filter
	Duration time.Duration
}

// Result is the outcome of one Run. Every field is set even when parts of
// the run failed.
type Result struct {
	RunID     string
	Started   time.Time
	Finished  time.Time
	Report    report.Report
	Archive   *archive.Archive
	Platforms []PlatformResult // in platform.All order

	ArchiveLoadErr error // archive was unreadable; a fresh one was used
	ArchiveErr     error // archive could not be saved
}

// Fallbacks counts platforms that used canned data.
func (r *Result) Fallbacks() int {
	n := 0
	for _, p := range r.Platforms {
		if !p.Live {
			n++
		}
	}
	return n
}

// Run performs one collection cycle. Fetch and archive failures are absorbed
// and recorded in the Result; the returned error is non-nil only when the
// page could not be rendered or written.
func (c *Coordinator) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		RunID:   uuid.NewString(),
		Started: c.now(),
	}
	c.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindStartup, Comp: comp, RunID: res.RunID,
		Count: len(c.platforms), Msg: "run started"})

	a, err := c.store.Load(ctx)
	if a == nil {
		a = archive.New(res.Started)
	}
	if err != nil {
		res.ArchiveLoadErr = err
		c.log.Warn("archive unreadable, starting fresh", "err", err)
		c.events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindArchiveError, Comp: comp, RunID: res.RunID,
			Msg: "load", Err: err.Error()})
		if c.metrics != nil {
			c.metrics.ArchiveErrors.WithLabelValues("load").Inc()
		}
	}
	c.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindArchiveLoad, Comp: comp, RunID: res.RunID,
		Count: a.Len()})

	perPlatform, results := c.collect(ctx, res.RunID)
	res.Platforms = results

	summary := c.cfg.Summary.Pick(res.Started)
	rep := report.Assemble(res.Started, perPlatform, c.cfg.Cap, summary)
	res.Report = rep
	c.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindReportAssembled, Comp: comp, RunID: res.RunID,
		Count: rep.Total(), Extra: map[string]any{"trending": rep.Trending(), "fallbacks": res.Fallbacks()}})
	if c.metrics != nil {
		for _, id := range platform.All {
			ins := rep.Insights(id)
			trending := 0
			for _, in := range ins {
				if in.Trending {
					trending++
				}
			}
			c.metrics.ObserveReport(string(id), len(ins), trending)
		}
	}

	a.Append(rep)
	res.Archive = a

	if !c.cfg.DryRun {
		if err := c.store.Save(ctx, a); err != nil {
			res.ArchiveErr = err
			c.log.Error("archive save failed", "err", err)
			c.events.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindArchiveError, Comp: comp, RunID: res.RunID,
				Msg: "save", Err: err.Error()})
			if c.metrics != nil {
				c.metrics.ArchiveErrors.WithLabelValues("save").Inc()
			}
		} else {
			c.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindArchiveSave, Comp: comp, RunID: res.RunID,
				Count: a.Len()})
		}
	}

	renderErr := c.writeHTML(res.RunID, a)

	res.Finished = c.now()
	if c.metrics != nil {
		c.metrics.ObserveRun(a.Len(), res.Finished)
	}
	c.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindShutdown, Comp: comp, RunID: res.RunID,
		Dur: res.Finished.Sub(res.Started), Msg: "run finished"})

	return res, renderErr
}

// writeHTML renders the archive to the configured path.
func (c *Coordinator) writeHTML(runID string, a *archive.Archive) error {
	if c.cfg.HTMLPath == "" || c.cfg.DryRun {
		return nil
	}
	err := RenderTo(c.cfg.HTMLPath, a, c.now())
	if err != nil {
		c.log.Error("render failed", "path", c.cfg.HTMLPath, "err", err)
		c.events.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindRenderError, Comp: comp, RunID: runID,
			Err: err.Error()})
		return err
	}
	c.log.Info("page written", "path", c.cfg.HTMLPath, "reports", a.Len())
	c.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindRenderComplete, Comp: comp, RunID: runID,
		Source: c.cfg.HTMLPath, Count: a.Len()})
	return nil
}

// RenderTo renders a and writes it to path atomically.
func RenderTo(path string, a *archive.Archive, now time.Time) error {
	page, err := render.HTML(a, now)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return archive.WriteFileAtomic(path, page, 0644)
}

// collect fetches every platform in parallel. Each platform has its own
// timeout and never fails the group; failures fall back to canned data.
func (c *Coordinator) collect(ctx context.Context, runID string) (map[platform.ID][]report.Insight, []PlatformResult) {
	insights := make([][]report.Insight, len(c.platforms))
	results := make([]PlatformResult, len(c.platforms))

	var g errgroup.Group
	g.SetLimit(c.cfg.Concurrency)

	for i, p := range c.platforms {
		g.Go(func() error {
			insights[i], results[i] = c.collectPlatform(ctx, runID, p)
			return nil // never fail the group - errors reported per-platform
		})
	}
	_ = g.Wait()

	per := make(map[platform.ID][]report.Insight, len(c.platforms))
	byID := make(map[platform.ID]PlatformResult, len(c.platforms))
	for i, p := range c.platforms {
		per[p.ID] = insights[i]
		byID[p.ID] = results[i]
	}

	ordered := make([]PlatformResult, 0, len(results))
	for _, id := range platform.All {
		if r, ok := byID[id]; ok {
			ordered = append(ordered, r)
		}
	}
	return per, ordered
}

// collectPlatform fetches, filters and converts one platform's feed.
func (c *Coordinator) collectPlatform(ctx context.Context, runID string, p platform.Platform) ([]report.Insight, PlatformResult) {
	res := PlatformResult{Platform: p.ID}
	src := fetch.SourceFor(p, c.cfg.Limit)

	c.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindFetchStart, Comp: comp, RunID: runID,
		Platform: string(p.ID), Source: src.URL})

	fetchCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	posts, err := c.fetcher.Fetch(fetchCtx, src)
	res.Duration = time.Since(start)

	if err != nil {
		res.Err = err
		fallback := report.Fallback(p.ID, c.now())
		c.log.Warn("fetch failed, using fallback", "platform", p.ID, "err", err)
		c.events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindFetchError, Comp: comp, RunID: runID,
			Platform: string(p.ID), Dur: res.Duration, Err: err.Error()})
		c.events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindFetchFallback, Comp: comp, RunID: runID,
			Platform: string(p.ID), Count: len(fallback)})
		if c.metrics != nil {
			c.metrics.ObserveFetch(string(p.ID), false, 0, res.Duration)
		}
		return fallback, res
	}

	posts = filter.ByAge(filter.Dedup(posts), c.now(), c.cfg.MaxAge)
	kept := filter.Relevant(posts, p.Keywords, filter.Options{CheckBody: p.CheckBody, MinScore: p.MinScore})

	res.Live = true
	res.Posts = len(posts)
	res.Matched = len(kept)

	c.log.Info("fetched", "platform", p.ID, "posts", len(posts), "matched", len(kept), "dur", res.Duration.Round(time.Millisecond))
	c.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFetchComplete, Comp: comp, RunID: runID,
		Platform: string(p.ID), Dur: res.Duration, Count: len(kept),
		Extra: map[string]any{"posts": len(posts)}})
	if c.metrics != nil {
		c.metrics.ObserveFetch(string(p.ID), true, len(posts), res.Duration)
	}

	return report.FromPosts(kept, p), res
}

// Start runs a cycle immediately, then every interval until ctx is
// cancelled. onResult is called after each cycle from the background
// goroutine.
func (c *Coordinator) Start(ctx context.Context, interval time.Duration, onResult func(*Result, error)) error {
	if interval <= 0 {
		return errors.New("coord: interval must be positive")
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		c.runOnce(ctx, onResult)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.runOnce(ctx, onResult)
			}
		}
	}()
	return nil
}

func (c *Coordinator) runOnce(ctx context.Context, onResult func(*Result, error)) {
	if ctx.Err() != nil {
		return
	}
	res, err := c.Run(ctx)
	if onResult != nil {
		onResult(res, err)
	}
}

// Wait blocks until the background goroutine exits.
// Call after canceling the context passed to Start.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}
