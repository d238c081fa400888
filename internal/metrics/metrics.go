// Package metrics exports run statistics in the Prometheus text format.
//
// algoreport runs as a short-lived process, so nothing is served over HTTP.
// After each run the registry is written to a textfile that a node_exporter
// textfile collector can pick up.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for fetch results.
const (
	OutcomeLive     = "live"
	OutcomeFallback = "fallback"
)

// Metrics holds all Prometheus metrics for a run.
type Metrics struct {
	Registry *prometheus.Registry

	RunsTotal        prometheus.Counter
	LastRunTimestamp prometheus.Gauge
	FetchTotal       *prometheus.CounterVec   // labels: platform, outcome
	FetchDuration    *prometheus.HistogramVec // labels: platform
	PostsFetched     *prometheus.GaugeVec     // labels: platform
	Insights         *prometheus.GaugeVec     // labels: platform
	Trending         *prometheus.GaugeVec     // labels: platform
	ArchiveReports   prometheus.Gauge
	ArchiveErrors    *prometheus.CounterVec // labels: op
}

// New creates and registers every metric on a private registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "algoreport_runs_total",
			Help: "Collection runs completed by this process.",
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "algoreport_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "algoreport_fetch_total",
			Help: "Platform fetches by outcome.",
		}, []string{"platform", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "algoreport_fetch_duration_seconds",
			Help:    "Time spent fetching one platform feed.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		}, []string{"platform"}),
		PostsFetched: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "algoreport_posts_fetched",
			Help: "Posts returned by the feed in the last run.",
		}, []string{"platform"}),
		Insights: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "algoreport_insights",
			Help: "Insights in the last report.",
		}, []string{"platform"}),
		Trending: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "algoreport_trending_insights",
			Help: "Trending insights in the last report.",
		}, []string{"platform"}),
		ArchiveReports: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "algoreport_archive_reports",
			Help: "Reports held in the archive.",
		}),
		ArchiveErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "algoreport_archive_errors_total",
			Help: "Archive load and save failures.",
		}, []string{"op"}),
	}

	m.Registry.MustRegister(
		m.RunsTotal,
		m.LastRunTimestamp,
		m.FetchTotal,
		m.FetchDuration,
		m.PostsFetched,
		m.Insights,
		m.Trending,
		m.ArchiveReports,
		m.ArchiveErrors,
	)
	return m
}

// ObserveFetch records one platform fetch.
func (m *Metrics) ObserveFetch(platform string, live bool, posts int, d time.Duration) {
	outcome := OutcomeFallback
	if live {
		outcome = OutcomeLive
	}
	m.FetchTotal.WithLabelValues(platform, outcome).Inc()
	m.FetchDuration.WithLabelValues(platform).Observe(d.Seconds())
	m.PostsFetched.WithLabelValues(platform).Set(float64(posts))
}

// ObserveReport records the size of a platform's insight list.
func (m *Metrics) ObserveReport(platform string, insights, trending int) {
	m.Insights.WithLabelValues(platform).Set(float64(insights))
	m.Trending.WithLabelValues(platform).Set(float64(trending))
}

// ObserveRun marks a finished run.
func (m *Metrics) ObserveRun(archiveLen int, finished time.Time) {
	m.RunsTotal.Inc()
	m.ArchiveReports.Set(float64(archiveLen))
	m.LastRunTimestamp.Set(float64(finished.Unix()))
}

// WriteTextfile writes the registry to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
