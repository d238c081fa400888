package archive

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func fixedStore(path string, now time.Time) *FileStore {
	s := NewFileStore(path)
	s.now = func() time.Time { return now }
	return s
}

func TestFileStoreLoadMissing(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))
	a, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if a == nil || a.Len() != 0 {
		t.Fatalf("got %+v, want empty archive", a)
	}
}

func TestFileStoreLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	a, err := NewFileStore(path).Load(context.Background())
	if err == nil {
		t.Error("expected error for corrupt file")
	}
	if a == nil || a.Len() != 0 || a.Metadata.Version != Version {
		t.Fatalf("got %+v, want fresh archive", a)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "nested", "archive.json")
	s := fixedStore(path, now)
	ctx := context.Background()

	a, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	a.Append(reportN(1))
	a.Append(reportN(2))
	if err := s.Save(ctx, a); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Len() != 2 || got.Reports[0].Date != "day-02" {
		t.Errorf("reports = %+v", got.Reports)
	}
	if got.Metadata.TotalReports != 2 || !got.Metadata.LastUpdated.Equal(now) {
		t.Errorf("metadata = %+v", got.Metadata)
	}
}

func TestFileStoreFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.json")
	s := NewFileStore(path)
	a := New(time.Now())
	a.Append(reportN(1))
	if err := s.Save(context.Background(), a); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw struct {
		Reports  []json.RawMessage `json:"reports"`
		Metadata map[string]any    `json:"metadata"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if len(raw.Reports) != 1 {
		t.Errorf("reports = %d", len(raw.Reports))
	}
	for _, key := range []string{"created", "lastUpdated", "totalReports", "version"} {
		if _, ok := raw.Metadata[key]; !ok {
			t.Errorf("metadata missing %q", key)
		}
	}
	if raw.Metadata["version"] != "2.0" {
		t.Errorf("version = %v", raw.Metadata["version"])
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestFileStoreSaveError(t *testing.T) {
	dir := t.TempDir()
	// A directory where the file should be makes the rename fail.
	path := filepath.Join(dir, "archive.json")
	if err := os.Mkdir(path, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(path, "x"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := NewFileStore(path).Save(context.Background(), New(time.Now())); err == nil {
		t.Error("expected save error")
	}
}

func TestFileStoreCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewFileStore(filepath.Join(t.TempDir(), "a.json"))
	if err := s.Save(ctx, New(time.Now())); err == nil {
		t.Error("Save with cancelled context succeeded")
	}
	a, err := s.Load(ctx)
	if err == nil || a == nil {
		t.Errorf("Load with cancelled context: a=%v err=%v", a, err)
	}
}
