// Package suggest ranks likely next activities and guesses the activity the
// user is probably doing right now.
package suggest

import (
	"sort"
	"time"

	"github.com/chronolog/internal/history"
)

const (
	// Lookback bounds the history considered for suggestions and predictions.
	Lookback = 30 * 24 * time.Hour
	// MinHistory is the history span needed before ranking replaces recency.
	MinHistory = 7 * 24 * time.Hour
	// MaxSuggestions caps the ranked list.
	MaxSuggestions = 4
	// CurrentWindow is how long the last entry stays highlighted as current.
	CurrentWindow = 8 * time.Hour
)

// DefaultActivities is returned for an empty log.
var DefaultActivities = []string{"Work", "Break", "Lunch", "Meeting"}

// Suggest returns up to MaxSuggestions activities ranked by time-of-day
// proximity, recency and weekday recurrence over the last 30 days.
func Suggest(log history.Log, now time.Time) []string {
	first, ok := log.First()
	if !ok {
		return append([]string(nil), DefaultActivities...)
	}
	if now.Sub(time.Unix(first.StartTime, 0)) < MinHistory {
		return recentDistinct(log, MaxSuggestions)
	}

	loc := now.Location()
	nowWindow := hourWindow(now)
	scores := make(map[string]float64)
	for _, entry := range log.Since(now.Add(-Lookback).Unix()) {
		start := time.Unix(entry.StartTime, 0).In(loc)
		if start.After(now) {
			continue
		}
		score := 1.0 *
			proximityMultiplier(circularDistance(hourWindow(start), nowWindow, 24)) *
			recencyMultiplier(now.Sub(start)) *
			weekdayMultiplier(start, now)
		scores[entry.Activity] += score
	}
	if len(scores) == 0 {
		return recentDistinct(log, MaxSuggestions)
	}

	ranked := make([]string, 0, len(scores))
	for activity := range scores {
		ranked = append(ranked, activity)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if scores[ranked[i]] != scores[ranked[j]] {
			return scores[ranked[i]] > scores[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	if len(ranked) > MaxSuggestions {
		ranked = ranked[:MaxSuggestions]
	}
	return ranked
}

// Current returns the last entry when the open activity started less than
// CurrentWindow before now.
func Current(log history.Log, now time.Time) (history.Entry, bool) {
	last, ok := log.Last()
	if !ok {
		return history.Entry{}, false
	}
	if now.Sub(time.Unix(log.CurrentActivityStartTime(), 0)) >= CurrentWindow {
		return history.Entry{}, false
	}
	return last, true
}

func recentDistinct(log history.Log, limit int) []string {
	entries := log.Entries()
	seen := make(map[string]bool)
	var out []string
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		activity := entries[i].Activity
		if seen[activity] {
			continue
		}
		seen[activity] = true
		out = append(out, activity)
	}
	return out
}

func hourWindow(t time.Time) int {
	return t.Hour()
}

func circularDistance(a, b, size int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	return min(d, size-d)
}

func proximityMultiplier(distance int) float64 {
	switch {
	case distance == 0:
		return 3.0
	case distance == 1:
		return 2.0
	case distance <= 2:
		return 1.5
	case distance <= 4:
		return 1.2
	default:
		return 1.0
	}
}

func recencyMultiplier(age time.Duration) float64 {
	const day = 24 * time.Hour
	switch {
	case age <= day:
		return 1.5
	case age <= 3*day:
		return 1.3
	case age <= 7*day:
		return 1.2
	case age <= 14*day:
		return 1.1
	default:
		return 1.0
	}
}

func weekdayMultiplier(start, now time.Time) float64 {
	if start.Weekday() == now.Weekday() {
		return 1.3
	}
	return 1.0
}
