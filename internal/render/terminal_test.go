package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/algoreport/internal/report"
)

func TestTerminal(t *testing.T) {
	a := sampleArchive()
	latest, _ := a.Latest()

	var buf bytes.Buffer
	if err := Terminal(&buf, latest, a.Len()); err != nil {
		t.Fatalf("Terminal: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"2024-03-01", "YouTube", "Instagram", "TikTok", "HOT", "today's summary", "2 archived"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "(none)") {
		t.Error("empty platform not marked")
	}
}

func TestTerminalNoSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := Terminal(&buf, report.Report{Date: "2024-03-01"}, 0); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), report.NoSummary) {
		t.Error("missing no-summary text")
	}
}

func TestFitTitle(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
	}{
		{"short ascii", "hello", 10},
		{"long ascii", strings.Repeat("x", 80), 20},
		{"wide runes", strings.Repeat("알고리즘", 10), 15},
		{"newlines collapsed", "a\nb\tc", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FitTitle(tt.in, tt.width)
			if w := runewidth.StringWidth(got); w != tt.width {
				t.Errorf("width = %d, want %d (%q)", w, tt.width, got)
			}
			if strings.ContainsAny(got, "\n\t") {
				t.Errorf("control whitespace kept: %q", got)
			}
		})
	}
}
