package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abelbrown/algoreport/internal/archive"
	"github.com/abelbrown/algoreport/internal/config"
	"github.com/abelbrown/algoreport/internal/store"
)

// loadConfig reads the config file, applies environment overrides and
// validates the result, exiting on failure.
func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fatalf("config: %v", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		fatalf("invalid config:\n%v", err)
	}
	return cfg
}

// openStore opens the configured archive backend. The returned store is
// always usable: when the backend cannot be opened the error is returned
// alongside an archive.Unavailable, so runs still render and record the
// failure. The close function is always safe to call.
func openStore(cfg *config.Config) (archive.Store, func(), error) {
	path := cfg.ArchivePath()
	switch cfg.Archive.Backend {
	case config.BackendSQLite:
		st, err := openSQLite(path)
		if err != nil {
			return archive.NewUnavailable(err), func() {}, err
		}
		return st, func() { st.Close() }, nil
	default:
		return archive.NewFileStore(path), func() {}, nil
	}
}

func openSQLite(path string) (*store.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create archive directory: %w", err)
		}
	}
	return store.Open(path)
}

// describeArchive reports how many reports the store holds. The sqlite
// backend answers from the database; others load the archive.
func describeArchive(ctx context.Context, st archive.Store) string {
	var (
		n   int
		err error
	)
	switch s := st.(type) {
	case *store.Store:
		n, err = s.Count(ctx)
	default:
		var a *archive.Archive
		a, err = st.Load(ctx)
		if a != nil {
			n = a.Len()
		}
	}
	if err != nil {
		return fmt.Sprintf("%d reports (unreadable: %v)", n, err)
	}
	return fmt.Sprintf("%d reports", n)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
