package report

import (
	"testing"
	"time"
)

func TestRotateIsDeterministic(t *testing.T) {
	p := Rotate{Pool: SummaryPool}
	morning := time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC)
	if p.Pick(morning) != p.Pick(evening) {
		t.Error("same date produced different summaries")
	}
}

func TestRotateWalksPool(t *testing.T) {
	p := Rotate{Pool: []string{"a", "b", "c"}}
	jan1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	want := []string{"a", "b", "c", "a"}
	for i, w := range want {
		if got := p.Pick(jan1.AddDate(0, 0, i)); got != w {
			t.Errorf("day %d: got %q, want %q", i, got, w)
		}
	}
}

func TestRotateEmptyPool(t *testing.T) {
	if got := (Rotate{}).Pick(time.Now()); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestNewSummaryPicker(t *testing.T) {
	tests := []struct {
		mode    string
		wantErr bool
		empty   bool
	}{
		{"rotate", false, false},
		{"", false, false},
		{"none", false, true},
		{"random", true, false},
	}
	day := time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		p, err := NewSummaryPicker(tt.mode)
		if (err != nil) != tt.wantErr {
			t.Errorf("mode %q: err = %v", tt.mode, err)
			continue
		}
		if err != nil {
			continue
		}
		if got := p.Pick(day); (got == "") != tt.empty {
			t.Errorf("mode %q: Pick = %q", tt.mode, got)
		}
	}
}
