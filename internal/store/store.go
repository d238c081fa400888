// Package store provides SQLite persistence for the report archive.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/abelbrown/algoreport/internal/archive"
	"github.com/abelbrown/algoreport/internal/report"
)

// DefaultFile is the database file name used when none is configured.
const DefaultFile = "algoreport.db"

// Store keeps the archive in SQLite: one row per report holding its JSON
// payload, plus key/value metadata. It implements archive.Store.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex // Protects all database operations

	now func() time.Time
}

var _ archive.Store = (*Store)(nil)

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for better concurrent read performance (file-based DBs only).
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// Each in-memory store gets its own named database; shared cache lets
		// every pooled connection see it.
		connStr = "file:algoreport-" + uuid.NewString() + "?mode=memory&cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db, now: time.Now}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

// createTables creates the required tables and indexes if they don't exist.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		payload TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_date ON reports(date);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

const (
	metaCreated     = "created"
	metaLastUpdated = "lastUpdated"
	metaVersion     = "version"
)

// Load reads the archive. An empty database yields a fresh archive and a nil
// error; unreadable rows yield a fresh archive and the error.
// Thread-safe: acquires read lock.
func (s *Store) Load(ctx context.Context) (*archive.Archive, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fresh := archive.New(s.now())

	meta, err := s.readMetadata(ctx)
	if err != nil {
		return fresh, fmt.Errorf("read metadata: %w", err)
	}

	reports, err := s.readReports(ctx)
	if err != nil {
		return fresh, fmt.Errorf("read reports: %w", err)
	}

	if len(meta) == 0 && len(reports) == 0 {
		return fresh, nil
	}

	a := &archive.Archive{Reports: reports}
	a.Metadata.Version = meta[metaVersion]
	if v, ok := meta[metaCreated]; ok {
		if a.Metadata.Created, err = time.Parse(time.RFC3339Nano, v); err != nil {
			return fresh, fmt.Errorf("parse created: %w", err)
		}
	} else {
		a.Metadata.Created = fresh.Metadata.Created
	}
	if v, ok := meta[metaLastUpdated]; ok {
		if a.Metadata.LastUpdated, err = time.Parse(time.RFC3339Nano, v); err != nil {
			return fresh, fmt.Errorf("parse lastUpdated: %w", err)
		}
	}
	archive.Normalize(a)
	return a, nil
}

// readMetadata returns every metadata key. Caller must hold s.mu.
func (s *Store) readMetadata(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM metadata")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

// readReports returns archived reports newest first. Caller must hold s.mu.
func (s *Store) readReports(ctx context.Context) ([]report.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT seq, payload FROM reports ORDER BY seq DESC LIMIT ?", archive.MaxReports)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []report.Report
	for rows.Next() {
		var seq int64
		var payload string
		if err := rows.Scan(&seq, &payload); err != nil {
			return nil, err
		}
		var r report.Report
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, fmt.Errorf("report %d: %w", seq, err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// Save replaces the stored archive in one transaction. Rows beyond
// archive.MaxReports are never written.
// Thread-safe: acquires write lock.
func (s *Store) Save(ctx context.Context, a *archive.Archive) error {
	if a == nil {
		return errors.New("save: nil archive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a.Touch(s.now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM reports"); err != nil {
		return fmt.Errorf("clear reports: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO reports (date, created_at, payload) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	n := min(len(a.Reports), archive.MaxReports)
	// Oldest first, so the newest report gets the highest seq.
	for i := n - 1; i >= 0; i-- {
		r := a.Reports[i]
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode report %s: %w", r.Date, err)
		}
		if _, err := stmt.ExecContext(ctx, r.Date, r.Timestamp, string(payload)); err != nil {
			return fmt.Errorf("insert report %s: %w", r.Date, err)
		}
	}

	meta := map[string]string{
		metaCreated:     a.Metadata.Created.Format(time.RFC3339Nano),
		metaLastUpdated: a.Metadata.LastUpdated.Format(time.RFC3339Nano),
		metaVersion:     a.Metadata.Version,
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("write metadata %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Count returns the number of stored reports.
// Thread-safe: acquires read lock.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports").Scan(&n)
	return n, err
}
