// Package archive keeps the bounded, newest-first history of reports.
package archive

import (
	"context"
	"time"

	"github.com/abelbrown/algoreport/internal/report"
)

const (
	// MaxReports bounds the archive length.
	MaxReports = 30

	// Version is written into archive metadata.
	Version = "2.0"
)

// Metadata describes the archive as a whole.
type Metadata struct {
	Created      time.Time `json:"created"`
	LastUpdated  time.Time `json:"lastUpdated"`
	TotalReports int       `json:"totalReports"`
	Version      string    `json:"version"`
}

// Archive is the report history, newest first. Order is insertion order;
// two reports may carry the same date.
type Archive struct {
	Reports  []report.Report `json:"reports"`
	Metadata Metadata        `json:"metadata"`
}

// New returns an empty archive created at now.
func New(now time.Time) *Archive {
	now = now.UTC()
	return &Archive{
		Reports: []report.Report{},
		Metadata: Metadata{
			Created:     now,
			LastUpdated: now,
			Version:     Version,
		},
	}
}

// Append puts r at the front and drops the oldest entries beyond MaxReports.
func (a *Archive) Append(r report.Report) {
	reports := make([]report.Report, 0, min(len(a.Reports)+1, MaxReports))
	reports = append(reports, r)
	for _, old := range a.Reports {
		if len(reports) == MaxReports {
			break
		}
		reports = append(reports, old)
	}
	a.Reports = reports
	a.Metadata.TotalReports = len(reports)
}

// Latest returns the newest report.
func (a *Archive) Latest() (report.Report, bool) {
	if len(a.Reports) == 0 {
		return report.Report{}, false
	}
	return a.Reports[0], true
}

// Len returns the number of archived reports.
func (a *Archive) Len() int { return len(a.Reports) }

// Touch refreshes metadata before a save.
func (a *Archive) Touch(now time.Time) {
	a.Metadata.LastUpdated = now.UTC()
	a.Metadata.TotalReports = len(a.Reports)
	if a.Metadata.Version == "" {
		a.Metadata.Version = Version
	}
	if a.Metadata.Created.IsZero() {
		a.Metadata.Created = now.UTC()
	}
}

// Normalize repairs an archive read from storage: nil report lists become
// empty, over-long histories are cut to MaxReports.
func Normalize(a *Archive) {
	if a.Reports == nil {
		a.Reports = []report.Report{}
	}
	if len(a.Reports) > MaxReports {
		a.Reports = a.Reports[:MaxReports]
	}
	if a.Metadata.Version == "" {
		a.Metadata.Version = Version
	}
	a.Metadata.TotalReports = len(a.Reports)
}

// Store persists an archive.
//
// Load always returns a usable archive. A missing backing store yields a
// fresh archive and a nil error; an unreadable one yields a fresh archive
// and the error, which callers log and otherwise ignore.
type Store interface {
	Load(ctx context.Context) (*Archive, error)
	Save(ctx context.Context, a *Archive) error
}
