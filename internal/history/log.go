// Package history holds the activity log: a run-length encoded timeline where
// every entry lasts until the next entry starts, and the last one lasts until
// the currently open activity started.
package history

import (
	"slices"
	"strings"
	"time"
)

// LatLong is an optional geographic position attached to an entry.
type LatLong struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// Entry is one logged activity start event. Note is empty when absent.
type Entry struct {
	StartTime int64    `json:"start_time"`
	Activity  string   `json:"activity"`
	Note      string   `json:"note,omitempty"`
	Location  *LatLong `json:"location,omitempty"`
}

// Span is an entry together with its implicit end time.
type Span struct {
	Entry
	End int64 `json:"end_time"`
}

// Duration returns End - StartTime.
func (s Span) Duration() time.Duration {
	return time.Duration(s.End-s.StartTime) * time.Second
}

// Log is an immutable, normalized activity timeline. Mutating methods return a
// new Log and leave the receiver untouched.
type Log struct {
	entries []Entry
	current int64
}

// New builds a normalized log. currentActivityStartTime is raised to the last
// entry's start when it would otherwise precede it.
func New(entries []Entry, currentActivityStartTime int64) Log {
	normalized := Normalize(entries)
	if n := len(normalized); n > 0 && currentActivityStartTime < normalized[n-1].StartTime {
		currentActivityStartTime = normalized[n-1].StartTime
	}
	return Log{entries: normalized, current: currentActivityStartTime}
}

// Normalize sorts entries by start time, keeps the last of any entries sharing
// a start time, and drops every entry whose (activity, note) repeats the one
// before it. The input slice is not modified.
func Normalize(entries []Entry) []Entry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		switch {
		case a.StartTime < b.StartTime:
			return -1
		case a.StartTime > b.StartTime:
			return 1
		}
		return 0
	})

	deduped := make([]Entry, 0, len(sorted))
	for _, entry := range sorted {
		if n := len(deduped); n > 0 && deduped[n-1].StartTime == entry.StartTime {
			deduped[n-1] = entry
			continue
		}
		deduped = append(deduped, entry)
	}

	out := make([]Entry, 0, len(deduped))
	for _, entry := range deduped {
		if n := len(out); n > 0 && out[n-1].Activity == entry.Activity && out[n-1].Note == entry.Note {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// Entries returns a copy of the entries in ascending start order.
func (l Log) Entries() []Entry {
	return slices.Clone(l.entries)
}

// Len reports the number of entries.
func (l Log) Len() int {
	return len(l.entries)
}

// CurrentActivityStartTime is when the open, not yet logged activity began.
func (l Log) CurrentActivityStartTime() int64 {
	return l.current
}

// First returns the earliest entry.
func (l Log) First() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[0], true
}

// Last returns the most recent entry.
func (l Log) Last() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Find looks up the entry starting at startTime.
func (l Log) Find(startTime int64) (Entry, bool) {
	i := l.index(startTime)
	if i < 0 {
		return Entry{}, false
	}
	return l.entries[i], true
}

// Spans pairs every entry with its end time.
func (l Log) Spans() []Span {
	spans := make([]Span, len(l.entries))
	for i, entry := range l.entries {
		end := l.current
		if i+1 < len(l.entries) {
			end = l.entries[i+1].StartTime
		}
		spans[i] = Span{Entry: entry, End: end}
	}
	return spans
}

// SpansBetween returns spans starting in [from, to). A zero to means no upper bound.
func (l Log) SpansBetween(from, to int64) []Span {
	var out []Span
	for _, span := range l.Spans() {
		if span.StartTime < from || (to > 0 && span.StartTime >= to) {
			continue
		}
		out = append(out, span)
	}
	return out
}

// Since returns the entries whose start time is at or after from.
func (l Log) Since(from int64) []Entry {
	i, _ := slices.BinarySearchFunc(l.entries, from, func(e Entry, t int64) int {
		switch {
		case e.StartTime < t:
			return -1
		case e.StartTime > t:
			return 1
		}
		return 0
	})
	return slices.Clone(l.entries[i:])
}

func (l Log) index(startTime int64) int {
	i, found := slices.BinarySearchFunc(l.entries, startTime, func(e Entry, t int64) int {
		switch {
		case e.StartTime < t:
			return -1
		case e.StartTime > t:
			return 1
		}
		return 0
	})
	if !found {
		return -1
	}
	return i
}

func sanitizeActivityAndNote(activity, note string) (string, string) {
	clean := func(s string) string {
		s = strings.Map(func(r rune) rune {
			if r == '\t' || r == '\n' || r == '\r' {
				return ' '
			}
			return r
		}, s)
		return strings.TrimSpace(s)
	}
	return clean(activity), clean(note)
}
