// Command algoreport collects creator-algorithm discussions from Reddit,
// keeps a rolling archive of daily reports and renders them as a static page.
//
// Usage:
//
//	algoreport                  Show help
//	algoreport run              Collect once, archive, render
//	algoreport run -every 6h    Collect on a schedule until interrupted
//	algoreport render           Re-render the page from the archive
//	algoreport browse           Browse archived reports in the terminal
//	algoreport events           JSONL event log viewer
//	algoreport config           Show the effective configuration
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const usage = `algoreport - platform algorithm report generator

Usage:
  algoreport <command> [flags]

Commands:
  run         Fetch feeds, archive today's report and write the page
  render      Re-render the page from the stored archive
  browse      Browse archived reports in the terminal
  events      JSONL event log viewer
  config      Show the effective configuration (-init writes it)

Environment (also read from ./.env):
  ALGOREPORT_OUTPUT           HTML output path
  ALGOREPORT_ARCHIVE          Archive file path
  ALGOREPORT_ARCHIVE_BACKEND  json or sqlite
  ALGOREPORT_TIMEOUT          Per-platform fetch timeout (seconds or duration)
  ALGOREPORT_USER_AGENT       User-Agent sent to Reddit
  ALGOREPORT_SUMMARY          rotate or none
  ALGOREPORT_METRICS_FILE     Prometheus textfile path
  ALGOREPORT_LOG_LEVEL        debug, info, warn, error

Run 'algoreport <command> -h' for command-specific help.
`

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "run":
		os.Exit(runRun())
	case "render":
		runRender()
	case "browse":
		runBrowse()
	case "events":
		runEvents()
	case "config":
		runConfig()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "algoreport: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
