package otel

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Filter selects events when reading a log back. Zero fields match anything.
type Filter struct {
	Kind     string // kind prefix, e.g. "fetch"
	Level    Level  // minimum level
	Platform string
	RunID    string
}

// Match reports whether e passes the filter.
func (f Filter) Match(e Event) bool {
	if f.Kind != "" && !strings.HasPrefix(string(e.Kind), f.Kind) {
		return false
	}
	if f.Level != "" && e.Level.Rank() < f.Level.Rank() {
		return false
	}
	if f.Platform != "" && e.Platform != f.Platform {
		return false
	}
	if f.RunID != "" && e.RunID != f.RunID {
		return false
	}
	return true
}

// Record is one decoded log line with its original bytes.
type Record struct {
	Event Event
	Raw   []byte
}

// ReadTail returns the last n records in r matching f. Lines that are not
// valid events are skipped. n <= 0 returns every match.
func ReadTail(r io.Reader, n int, f Filter) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	// Allow large lines (some events may have big Extra maps)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	var out []Record
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev Event
		if json.Unmarshal(raw, &ev) != nil || ev.Kind == "" {
			continue
		}
		if !f.Match(ev) {
			continue
		}
		// scanner reuses its buffer
		rawCopy := make([]byte, len(raw))
		copy(rawCopy, raw)
		out = append(out, Record{Event: ev, Raw: rawCopy})
		if n > 0 && len(out) > n {
			out = out[1:]
		}
	}
	return out, scanner.Err()
}

// Format renders an event as one human-readable line.
func Format(ev Event) string {
	ts := ev.Time.Format("2006-01-02 15:04:05")
	lvl := strings.ToUpper(string(ev.Level))
	if lvl == "" {
		lvl = "?"
	}

	parts := []string{fmt.Sprintf("%s %-5s [%-5s] %-18s", ts, lvl, ev.Comp, ev.Kind)}

	if ev.Platform != "" {
		parts = append(parts, "platform="+ev.Platform)
	}
	if ev.Msg != "" {
		parts = append(parts, ev.Msg)
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", ev.Count))
	}
	if ev.Source != "" {
		parts = append(parts, "src="+ev.Source)
	}
	if ev.Err != "" {
		parts = append(parts, "err="+ev.Err)
	}
	return strings.Join(parts, " ")
}

func durPrecision(ms float64) int {
	if ms >= 100 {
		return 0
	}
	if ms >= 1 {
		return 1
	}
	return 2
}
