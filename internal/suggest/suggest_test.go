package suggest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronolog/internal/history"
)

// weekdayLog logs Work at 09:00, Lunch at 12:00 and Sleep at 23:00 on every
// weekday in [from, to).
func weekdayLog(from, to time.Time, extra ...history.Entry) history.Log {
	var entries []history.Entry
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		at := func(h, m int) int64 {
			return time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, time.UTC).Unix()
		}
		entries = append(entries,
			history.Entry{StartTime: at(9, 0), Activity: "Work"},
			history.Entry{StartTime: at(12, 0), Activity: "Lunch"},
			history.Entry{StartTime: at(23, 0), Activity: "Sleep"},
		)
	}
	entries = append(entries, extra...)
	return history.New(entries, to.Unix())
}

func TestSuggestRanksByTimeOfDay(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 15, 0, 0, time.UTC) // Friday
	log := weekdayLog(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))

	got := Suggest(log, now)
	require.NotEmpty(t, got)
	assert.Equal(t, "Work", got[0])
	assert.LessOrEqual(t, len(got), MaxSuggestions)
	assert.ElementsMatch(t, []string{"Work", "Lunch", "Sleep"}, got)

	evening := time.Date(2024, 3, 15, 22, 50, 0, 0, time.UTC)
	assert.Equal(t, "Sleep", Suggest(log, evening)[0])
}

func TestSuggestCapsAtFour(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var extra []history.Entry
	for i, name := range []string{"Read", "Walk", "Cook", "Call"} {
		extra = append(extra, history.Entry{
			StartTime: time.Date(2024, 3, 9, 10+i, 0, 0, 0, time.UTC).Unix(),
			Activity:  name,
		})
	}
	log := weekdayLog(from, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), extra...)
	assert.Len(t, Suggest(log, time.Date(2024, 3, 15, 9, 15, 0, 0, time.UTC)), MaxSuggestions)
}

func TestSuggestFallbacks(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, DefaultActivities, Suggest(history.Log{}, now))

	short := history.New([]history.Entry{
		{StartTime: now.Add(-48 * time.Hour).Unix(), Activity: "Work"},
		{StartTime: now.Add(-40 * time.Hour).Unix(), Activity: "Gym"},
		{StartTime: now.Add(-30 * time.Hour).Unix(), Activity: "Work"},
		{StartTime: now.Add(-20 * time.Hour).Unix(), Activity: "Read"},
	}, now.Add(-time.Hour).Unix())
	assert.Equal(t, []string{"Read", "Work", "Gym"}, Suggest(short, now))
}

func TestPredict(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	coffee := []history.Entry{
		{StartTime: time.Date(2024, 3, 4, 9, 40, 0, 0, time.UTC).Unix(), Activity: "Coffee"},
		{StartTime: time.Date(2024, 3, 5, 9, 40, 0, 0, time.UTC).Unix(), Activity: "Coffee"},
	}
	log := weekdayLog(from, to, coffee...)

	now := time.Date(2024, 3, 15, 9, 15, 0, 0, time.UTC)
	p, ok := Predict(log, now)
	require.True(t, ok)
	assert.Equal(t, "Work", p.Activity)
	assert.InDelta(t, 10.0/12.0, p.Confidence, 1e-9)

	tally := CountWindow(log, now)
	assert.Equal(t, p.Confidence, tally.Share("Work"), "prediction and share come from the same tally")
	assert.Equal(t, 2, tally.Counts["Coffee"])

	_, ok = Predict(log, time.Date(2024, 3, 15, 16, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestPredictRequiresShare(t *testing.T) {
	now := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
	var entries []history.Entry
	names := []string{"A", "B", "C", "D"}
	for day := 1; day <= 12; day++ {
		entries = append(entries,
			history.Entry{StartTime: time.Date(2024, 3, day, 9, 0, 0, 0, time.UTC).Unix(), Activity: names[day%4]},
			history.Entry{StartTime: time.Date(2024, 3, day, 11, 0, 0, 0, time.UTC).Unix(), Activity: "Other"},
		)
	}
	log := history.New(entries, now.Add(-time.Hour).Unix())

	tally := CountWindow(log, now)
	assert.Equal(t, 12, tally.Total)
	_, ok := tally.Best()
	assert.False(t, ok, "3 of 12 is below the required share")
}

func TestPredictWrapsMidnight(t *testing.T) {
	var entries []history.Entry
	for day := 1; day <= 3; day++ {
		entries = append(entries,
			history.Entry{StartTime: time.Date(2024, 3, day, 23, 50, 0, 0, time.UTC).Unix(), Activity: "Sleep"},
			history.Entry{StartTime: time.Date(2024, 3, day+1, 8, 0, 0, 0, time.UTC).Unix(), Activity: "Work"},
		)
	}
	now := time.Date(2024, 3, 10, 0, 5, 0, 0, time.UTC)
	log := history.New(entries, now.Add(-time.Hour).Unix())

	p, ok := Predict(log, now)
	require.True(t, ok)
	assert.Equal(t, "Sleep", p.Activity)
	assert.Equal(t, 1.0, p.Confidence)
}

func TestCurrent(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	log := history.New([]history.Entry{{StartTime: now.Add(-3 * time.Hour).Unix(), Activity: "Work"}}, now.Add(-2*time.Hour).Unix())

	e, ok := Current(log, now)
	require.True(t, ok)
	assert.Equal(t, "Work", e.Activity)

	_, ok = Current(log, now.Add(7*time.Hour))
	assert.False(t, ok)

	_, ok = Current(history.Log{}, now)
	assert.False(t, ok)
}
