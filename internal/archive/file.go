package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// DefaultFile is the archive file name used when none is configured.
const DefaultFile = "reports_archive.json"

// FileStore keeps the archive in a pretty-printed JSON file.
type FileStore struct {
	Path string

	// now is overridden in tests.
	now func() time.Time
}

// NewFileStore returns a FileStore for path.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFile
	}
	return &FileStore{Path: path, now: time.Now}
}

func (s *FileStore) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// Load reads the archive file.
func (s *FileStore) Load(ctx context.Context) (*Archive, error) {
	if err := ctx.Err(); err != nil {
		return New(s.clock()), err
	}

	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(s.clock()), nil
	}
	if err != nil {
		return New(s.clock()), fmt.Errorf("read archive: %w", err)
	}

	var a Archive
	if err := json.Unmarshal(data, &a); err != nil {
		return New(s.clock()), fmt.Errorf("parse archive %s: %w", s.Path, err)
	}
	Normalize(&a)
	if a.Metadata.Created.IsZero() {
		a.Metadata.Created = s.clock().UTC()
	}
	return &a, nil
}

// Save writes the archive through a temp file and rename, so readers never
// see a partial file.
func (s *FileStore) Save(ctx context.Context, a *Archive) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.Touch(s.clock())

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("encode archive: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}
	return WriteFileAtomic(s.Path, data, 0644)
}

// WriteFileAtomic writes data to a temp file beside path and renames it
// into place.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
