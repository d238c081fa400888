// Package config loads and validates algoreport's settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/abelbrown/algoreport/internal/platform"
)

// Archive backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config is the persistent application configuration
type Config struct {
	Output  OutputConfig  `json:"output"`
	Archive ArchiveConfig `json:"archive"`
	Fetch   FetchConfig   `json:"fetch"`
	Report  ReportConfig  `json:"report"`
	Logging LoggingConfig `json:"logging"`

	// Platforms overrides built-in platform settings, keyed by platform ID.
	Platforms map[string]PlatformOverride `json:"platforms,omitempty"`
}

// OutputConfig holds generated artifact locations
type OutputConfig struct {
	HTMLPath    string `json:"html_path"`
	MetricsFile string `json:"metrics_file,omitempty"` // Prometheus textfile; empty disables
}

// ArchiveConfig selects where reports are kept
type ArchiveConfig struct {
	Backend string `json:"backend"` // "json" or "sqlite"
	Path    string `json:"path"`    // Empty uses the backend's default file name
}

// FetchConfig holds feed client settings
type FetchConfig struct {
	TimeoutSeconds int    `json:"timeout_seconds"`
	UserAgent      string `json:"user_agent"`
	Limit          int    `json:"limit"`            // ?limit=N per request; 0 leaves it to the server
	RateIntervalMs int    `json:"rate_interval_ms"` // Minimum spacing between requests; 0 disables
	RateBurst      int    `json:"rate_burst"`
	Concurrency    int    `json:"concurrency"`             // Platforms fetched at once
	MaxAgeHours    int    `json:"max_age_hours,omitempty"` // Ignore older posts; 0 keeps all
}

// ReportConfig holds report assembly settings
type ReportConfig struct {
	Cap     int    `json:"cap"`     // Insights kept per platform
	Summary string `json:"summary"` // "rotate" or "none"
}

// LoggingConfig holds log destinations
type LoggingConfig struct {
	Dir      string `json:"dir,omitempty"` // Dated log files; empty logs to stderr only
	Level    string `json:"level"`
	EventLog string `json:"event_log,omitempty"` // JSONL run events; empty disables
}

// PlatformOverride replaces individual fields of a built-in platform.
// Nil or empty fields keep the built-in value.
type PlatformOverride struct {
	FeedURL           string   `json:"feed_url,omitempty"`
	Format            string   `json:"format,omitempty"`
	Keywords          []string `json:"keywords,omitempty"`
	TrendingThreshold *int     `json:"trending_threshold,omitempty"`
	MinScore          *int     `json:"min_score,omitempty"`
	CheckBody         *bool    `json:"check_body,omitempty"`
}

// DataDir returns ~/.algoreport, or .algoreport when the home directory
// cannot be determined.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".algoreport"
	}
	return filepath.Join(home, ".algoreport")
}

// DefaultPath returns the path to the config file
func DefaultPath() string {
	return filepath.Join(DataDir(), "config.json")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			HTMLPath: "index.html",
		},
		Archive: ArchiveConfig{
			Backend: BackendJSON,
		},
		Fetch: FetchConfig{
			TimeoutSeconds: 15,
			UserAgent:      "AlgorithmBot/2.0",
			Limit:          25,
			RateIntervalMs: 500,
			RateBurst:      3,
			Concurrency:    3,
		},
		Report: ReportConfig{
			Cap:     6,
			Summary: "rotate",
		},
		Logging: LoggingConfig{
			Level:    "info",
			EventLog: filepath.Join(DataDir(), "events.jsonl"),
		},
	}
}

// Load reads config from path. A missing file yields defaults; a malformed
// one is an error. Fields absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes config to path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// ApplyEnv overrides settings from ALGOREPORT_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("ALGOREPORT_OUTPUT"); v != "" {
		c.Output.HTMLPath = v
	}
	if v := os.Getenv("ALGOREPORT_ARCHIVE"); v != "" {
		c.Archive.Path = v
	}
	if v := os.Getenv("ALGOREPORT_ARCHIVE_BACKEND"); v != "" {
		c.Archive.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("ALGOREPORT_TIMEOUT"); v != "" {
		secs, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("ALGOREPORT_TIMEOUT: %w", err)
		}
		c.Fetch.TimeoutSeconds = secs
	}
	if v := os.Getenv("ALGOREPORT_USER_AGENT"); v != "" {
		c.Fetch.UserAgent = v
	}
	if v := os.Getenv("ALGOREPORT_SUMMARY"); v != "" {
		c.Report.Summary = strings.ToLower(v)
	}
	if v := os.Getenv("ALGOREPORT_METRICS_FILE"); v != "" {
		c.Output.MetricsFile = v
	}
	if v := os.Getenv("ALGOREPORT_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	return nil
}

// parseSeconds accepts "20" or a duration such as "20s".
func parseSeconds(v string) (int, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%q is neither seconds nor a duration", v)
	}
	return int(d.Round(time.Second) / time.Second), nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Output.HTMLPath == "" {
		errs = append(errs, errors.New("output.html_path is empty"))
	}
	switch c.Archive.Backend {
	case BackendJSON, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("archive.backend %q: want %q or %q", c.Archive.Backend, BackendJSON, BackendSQLite))
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("fetch.timeout_seconds must be positive, got %d", c.Fetch.TimeoutSeconds))
	}
	if c.Fetch.Limit < 0 {
		errs = append(errs, fmt.Errorf("fetch.limit must not be negative, got %d", c.Fetch.Limit))
	}
	if c.Fetch.RateIntervalMs < 0 {
		errs = append(errs, fmt.Errorf("fetch.rate_interval_ms must not be negative, got %d", c.Fetch.RateIntervalMs))
	}
	if c.Fetch.MaxAgeHours < 0 {
		errs = append(errs, fmt.Errorf("fetch.max_age_hours must not be negative, got %d", c.Fetch.MaxAgeHours))
	}
	if c.Fetch.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("fetch.concurrency must be positive, got %d", c.Fetch.Concurrency))
	}
	if c.Report.Cap <= 0 {
		errs = append(errs, fmt.Errorf("report.cap must be positive, got %d", c.Report.Cap))
	}
	switch c.Report.Summary {
	case "rotate", "none":
	default:
		errs = append(errs, fmt.Errorf("report.summary %q: want \"rotate\" or \"none\"", c.Report.Summary))
	}
	for id, o := range c.Platforms {
		if !platform.ID(id).Valid() {
			errs = append(errs, fmt.Errorf("platforms: unknown platform %q", id))
		}
		switch o.Format {
		case "", "json", "rss":
		default:
			errs = append(errs, fmt.Errorf("platforms.%s.format %q: want \"json\" or \"rss\"", id, o.Format))
		}
	}
	return errors.Join(errs...)
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// RateInterval returns the minimum spacing between requests.
func (c *Config) RateInterval() time.Duration {
	return time.Duration(c.Fetch.RateIntervalMs) * time.Millisecond
}

// MaxAge returns the post age cutoff, zero when disabled.
func (c *Config) MaxAge() time.Duration {
	return time.Duration(c.Fetch.MaxAgeHours) * time.Hour
}

// ArchivePath returns the configured archive location or the backend default.
func (c *Config) ArchivePath() string {
	if c.Archive.Path != "" {
		return c.Archive.Path
	}
	if c.Archive.Backend == BackendSQLite {
		return "algoreport.db"
	}
	return "reports_archive.json"
}

// ResolvedPlatforms returns the built-in platforms with overrides applied.
func (c *Config) ResolvedPlatforms() []platform.Platform {
	ps := platform.Defaults()
	for i := range ps {
		o, ok := c.Platforms[string(ps[i].ID)]
		if !ok {
			continue
		}
		if o.FeedURL != "" {
			ps[i].FeedURL = o.FeedURL
		}
		if o.Format != "" {
			ps[i].Format = o.Format
		}
		if len(o.Keywords) > 0 {
			ps[i].Keywords = o.Keywords
		}
		if o.TrendingThreshold != nil {
			ps[i].TrendingThreshold = *o.TrendingThreshold
		}
		if o.MinScore != nil {
			v := *o.MinScore
			ps[i].MinScore = &v
		}
		if o.CheckBody != nil {
			ps[i].CheckBody = *o.CheckBody
		}
	}
	return ps
}
