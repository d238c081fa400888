package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abelbrown/algoreport/internal/config"
	"github.com/abelbrown/algoreport/internal/coord"
	"github.com/abelbrown/algoreport/internal/fetch"
	"github.com/abelbrown/algoreport/internal/logging"
	"github.com/abelbrown/algoreport/internal/metrics"
	"github.com/abelbrown/algoreport/internal/otel"
	"github.com/abelbrown/algoreport/internal/render"
	"github.com/abelbrown/algoreport/internal/report"
	"github.com/abelbrown/algoreport/internal/ui"
)

// runRun returns the process exit code: 1 only when the page could not be
// written.
func runRun() int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", config.DefaultPath(), "Config file path")
	every := fs.Duration("every", 0, "Repeat on this interval until interrupted (e.g. 6h)")
	dryRun := fs.Bool("dry-run", false, "Fetch and print without writing the archive or page")
	quiet := fs.Bool("q", false, "Do not print the report")
	fs.Parse(os.Args[1:])

	cfg := loadConfig(*cfgPath)

	if err := logging.Init(logging.Options{
		Dir:     cfg.Logging.Dir,
		Level:   cfg.Logging.Level,
		Console: os.Stderr,
	}); err != nil {
		fatalf("logging: %v", err)
	}
	defer logging.Close()

	var events *otel.Logger
	if cfg.Logging.EventLog != "" {
		l, err := otel.NewFileLogger(cfg.Logging.EventLog)
		if err != nil {
			logging.Warn("event log disabled", "path", cfg.Logging.EventLog, "err", err)
		}
		events = l
	}
	if events == nil {
		events = otel.NewNullLogger()
	}
	defer events.Close()
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	events.SetRingBuffer(ring)

	st, closeStore, err := openStore(cfg)
	if err != nil {
		logging.Warn("archive backend unavailable, running without persistence", "backend", cfg.Archive.Backend, "err", err)
	}
	defer closeStore()

	summary, err := report.NewSummaryPicker(cfg.Report.Summary)
	if err != nil {
		fatalf("%v", err)
	}

	f := fetch.NewFetcher(cfg.Timeout(), cfg.Fetch.UserAgent)
	f.SetRateLimit(cfg.RateInterval(), cfg.Fetch.RateBurst)

	m := metrics.New()

	htmlPath := cfg.Output.HTMLPath
	c := coord.NewCoordinator(f, st, cfg.ResolvedPlatforms(), coord.Config{
		Timeout:     cfg.Timeout(),
		Limit:       cfg.Fetch.Limit,
		Concurrency: cfg.Fetch.Concurrency,
		Cap:         cfg.Report.Cap,
		MaxAge:      cfg.MaxAge(),
		Summary:     summary,
		HTMLPath:    htmlPath,
		DryRun:      *dryRun,
	}, events, m)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	finish := func(res *coord.Result, err error) int {
		code := 0
		if res != nil && !*quiet {
			if perr := render.Terminal(os.Stdout, res.Report, res.Archive.Len()); perr != nil {
				logging.Warn("terminal output failed", "err", perr)
			}
			printWarnings(ring, res.RunID)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render(fmt.Sprintf("page not written: %v", err)))
			code = 1
		}
		if cfg.Output.MetricsFile != "" && !*dryRun {
			if merr := m.WriteTextfile(cfg.Output.MetricsFile); merr != nil {
				logging.Warn("metrics textfile not written", "path", cfg.Output.MetricsFile, "err", merr)
			}
		}
		return code
	}

	if *every <= 0 {
		res, err := c.Run(ctx)
		return finish(res, err)
	}

	logging.Info("scheduled mode", "every", every.String())
	if err := c.Start(ctx, *every, func(res *coord.Result, err error) {
		finish(res, err)
		if res != nil {
			logging.Info("next run", "at", time.Now().Add(*every).Format(time.Kitchen))
		}
	}); err != nil {
		fatalf("%v", err)
	}
	<-ctx.Done()
	c.Wait()
	logging.Info("stopped")
	return 0
}

// printWarnings lists the warn-and-above events of one run.
func printWarnings(ring *otel.RingBuffer, runID string) {
	var lines []string
	for _, ev := range ring.AtLeast(otel.LevelWarn) {
		if ev.RunID != runID {
			continue
		}
		lines = append(lines, otel.Format(ev))
	}
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(os.Stdout)
	fmt.Fprintln(os.Stdout, ui.SectionHeader.Render(fmt.Sprintf("Warnings (%d)", len(lines))))
	for _, l := range lines {
		fmt.Fprintln(os.Stdout, ui.Meta.Render("  "+l))
	}
}
