package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/abelbrown/algoreport/internal/config"
	"github.com/abelbrown/algoreport/internal/otel"
)

func runEvents() {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	cfgPath := fs.String("config", config.DefaultPath(), "Config file path")
	tail := fs.Int("tail", 50, "Number of recent events to show (0 = all)")
	kind := fs.String("kind", "", "Filter by event kind prefix (e.g. 'fetch')")
	level := fs.String("level", "", "Minimum level: debug, info, warn, error")
	plat := fs.String("platform", "", "Filter by platform (youtube, instagram, tiktok)")
	runID := fs.String("run", "", "Filter by run ID")
	rawJSON := fs.Bool("json", false, "Output raw JSON lines")
	fs.Parse(os.Args[1:])

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fatalf("config: %v", err)
	}
	logPath := cfg.Logging.EventLog
	if logPath == "" {
		fatalf("event log disabled in %s", *cfgPath)
	}

	f, err := os.Open(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		fmt.Fprintf(os.Stderr, "  Event log not found at %s\n", logPath)
		fmt.Fprintf(os.Stderr, "  Run 'algoreport run' first to generate events.\n")
		os.Exit(1)
	}
	defer f.Close()

	records, err := otel.ReadTail(f, *tail, otel.Filter{
		Kind:     *kind,
		Level:    otel.Level(*level),
		Platform: *plat,
		RunID:    *runID,
	})
	if err != nil {
		fatalf("read %s: %v", logPath, err)
	}

	for _, rec := range records {
		if *rawJSON {
			fmt.Println(string(rec.Raw))
		} else {
			fmt.Println(otel.Format(rec.Event))
		}
	}
}
