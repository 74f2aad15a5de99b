package history

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinValidStartTime is the lower bound (exclusive) for any parsed start time.
const MinValidStartTime int64 = 1_500_000_000

var (
	ErrBlankActivity      = errors.New("activity must not be blank")
	ErrInvalidStartTime   = errors.New("invalid start time")
	ErrEntryNotFound      = errors.New("entry not found")
	ErrDuplicateStartTime = errors.New("another entry already starts at this time")
)

// Append closes the open activity: a new entry starting at the current
// activity start time is added, and the current start moves to now.
func (l Log) Append(activity, note string, location *LatLong, now time.Time) (Log, error) {
	activity, note = sanitizeActivityAndNote(activity, note)
	if activity == "" {
		return l, ErrBlankActivity
	}
	nowUnix := now.Unix()
	if nowUnix < l.current {
		return l, fmt.Errorf("%w: now precedes current activity start", ErrInvalidStartTime)
	}

	entries := append(l.Entries(), Entry{
		StartTime: l.current,
		Activity:  activity,
		Note:      note,
		Location:  location,
	})
	return Log{entries: Normalize(entries), current: nowUnix}, nil
}

// Edit replaces the entry starting at oldStart. startSpec is interpreted by
// ParseStartTime relative to oldStart. The location is kept.
func (l Log) Edit(oldStart int64, startSpec, activity, note string, now time.Time) (Log, error) {
	activity, note = sanitizeActivityAndNote(activity, note)
	if activity == "" {
		return l, ErrBlankActivity
	}
	idx := l.index(oldStart)
	if idx < 0 {
		return l, ErrEntryNotFound
	}

	newStart, err := ParseStartTime(startSpec, oldStart, now)
	if err != nil {
		return l, err
	}
	if newStart > l.current {
		return l, fmt.Errorf("%w: %d is after the current activity start", ErrInvalidStartTime, newStart)
	}
	if newStart != oldStart && l.index(newStart) >= 0 {
		return l, ErrDuplicateStartTime
	}

	entries := l.Entries()
	entries[idx] = Entry{
		StartTime: newStart,
		Activity:  activity,
		Note:      note,
		Location:  entries[idx].Location,
	}
	return Log{entries: Normalize(entries), current: l.current}, nil
}

// Delete removes the entry starting at startTime; its time folds into the
// previous entry.
func (l Log) Delete(startTime int64) (Log, error) {
	idx := l.index(startTime)
	if idx < 0 {
		return l, ErrEntryNotFound
	}
	entries := l.Entries()
	entries = append(entries[:idx], entries[idx+1:]...)
	return Log{entries: Normalize(entries), current: l.current}, nil
}

// ParseStartTime resolves a user supplied start time:
//
//	""        keep oldStart
//	"HH:MM"   that wall-clock time today in now's location, or yesterday if it would be in the future
//	10 digits an absolute unix timestamp
//	integer   a minute offset applied to oldStart
//
// The result must be after MinValidStartTime and not after now.
func ParseStartTime(spec string, oldStart int64, now time.Time) (int64, error) {
	spec = strings.TrimSpace(spec)

	var (
		start int64
		err   error
	)
	switch {
	case spec == "":
		start = oldStart
	case strings.Contains(spec, ":"):
		start, err = parseClockTime(spec, now)
	case len(spec) == 10 && isDigits(spec):
		start, err = strconv.ParseInt(spec, 10, 64)
	default:
		var minutes int64
		minutes, err = strconv.ParseInt(spec, 10, 64)
		start = oldStart + minutes*60
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStartTime, spec)
	}
	if start <= MinValidStartTime || start > now.Unix() {
		return 0, fmt.Errorf("%w: %q resolves out of range", ErrInvalidStartTime, spec)
	}
	return start, nil
}

func parseClockTime(spec string, now time.Time) (int64, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 2 {
		return 0, errors.New("expected HH:MM")
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, errors.New("hour out of range")
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, errors.New("minute out of range")
	}

	t := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if t.After(now) {
		t = time.Date(now.Year(), now.Month(), now.Day()-1, hour, minute, 0, 0, now.Location())
	}
	return t.Unix(), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
