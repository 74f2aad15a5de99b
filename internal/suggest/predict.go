package suggest

import (
	"time"

	"github.com/chronolog/internal/history"
)

const (
	// MinOccurrences is the fewest window hits a prediction needs.
	MinOccurrences = 3
	// MinShare is the smallest share of the window total a prediction needs.
	MinShare = 0.3
)

// Prediction is a best guess at the ongoing activity.
type Prediction struct {
	Activity   string  `json:"activity"`
	Confidence float64 `json:"confidence"`
}

// Tally counts activities started in the current 30-minute time-of-day window
// and its two neighbours over the lookback period.
type Tally struct {
	Counts map[string]int
	Total  int
}

// CountWindow builds the tally for now.
func CountWindow(log history.Log, now time.Time) Tally {
	loc := now.Location()
	current := halfHourWindow(now)
	t := Tally{Counts: make(map[string]int)}
	for _, entry := range log.Since(now.Add(-Lookback).Unix()) {
		start := time.Unix(entry.StartTime, 0).In(loc)
		if start.After(now) {
			continue
		}
		if circularDistance(halfHourWindow(start), current, 48) > 1 {
			continue
		}
		t.Counts[entry.Activity]++
		t.Total++
	}
	return t
}

// Share is activity's fraction of the tally.
func (t Tally) Share(activity string) float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Counts[activity]) / float64(t.Total)
}

// Best returns the most frequent activity meeting MinOccurrences and MinShare.
func (t Tally) Best() (Prediction, bool) {
	var (
		best      string
		bestCount int
	)
	for activity, n := range t.Counts {
		if n < MinOccurrences || t.Share(activity) < MinShare {
			continue
		}
		if n > bestCount || (n == bestCount && activity < best) {
			best, bestCount = activity, n
		}
	}
	if bestCount == 0 {
		return Prediction{}, false
	}
	return Prediction{Activity: best, Confidence: t.Share(best)}, true
}

// Predict guesses the activity the user is doing at now.
func Predict(log history.Log, now time.Time) (Prediction, bool) {
	return CountWindow(log, now).Best()
}

func halfHourWindow(t time.Time) int {
	return (t.Hour()*60 + t.Minute()) / 30
}
