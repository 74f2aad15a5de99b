// Package habit computes streak and consistency metrics for a single activity.
package habit

import (
	"strings"
	"time"

	"github.com/chronolog/internal/history"
)

// DefaultSkipDaysAllowed is the streak forgiveness budget.
const DefaultSkipDaysAllowed = 2

// Trend compares the last seven days with the seven before them.
type Trend string

const (
	TrendImproving Trend = "IMPROVING"
	TrendStable    Trend = "STABLE"
	TrendDeclining Trend = "DECLINING"
)

// minTrendEntries is the history needed before a trend is reported.
const minTrendEntries = 4

const week = 7 * 24 * time.Hour

// Metrics describes one activity as of a reference time.
type Metrics struct {
	Activity         string  `json:"activity"`
	CurrentStreak    int     `json:"current_streak"`
	LongestStreak    int     `json:"longest_streak"`
	ConsistencyScore float64 `json:"consistency_score"`
	WeeklyActual     int     `json:"weekly_actual"`
	WeeklyTarget     int     `json:"weekly_target,omitempty"`
	SkipDaysUsed     int     `json:"skip_days_used"`
	SkipDaysAllowed  int     `json:"skip_days_allowed"`
	Trend            Trend   `json:"trend"`
	LastActivity     int64   `json:"last_activity,omitempty"`
	Occurrences      int     `json:"occurrences"`
}

// Calculator computes Metrics. Calendar days follow the location of the
// reference time passed to Calculate.
type Calculator struct {
	SkipDaysAllowed int
}

// NewCalculator returns a calculator with the given skip budget; negative
// values fall back to DefaultSkipDaysAllowed.
func NewCalculator(skipDaysAllowed int) Calculator {
	if skipDaysAllowed < 0 {
		skipDaysAllowed = DefaultSkipDaysAllowed
	}
	return Calculator{SkipDaysAllowed: skipDaysAllowed}
}

// Calculate matches activity case-insensitively and ignores entries after now.
func (c Calculator) Calculate(log history.Log, activity string, now time.Time) Metrics {
	activity = strings.TrimSpace(activity)
	m := Metrics{
		Activity:        activity,
		SkipDaysAllowed: c.SkipDaysAllowed,
		WeeklyTarget:    WeeklyTarget(activity),
		Trend:           TrendStable,
	}

	var starts []time.Time
	for _, entry := range log.Entries() {
		if entry.StartTime > now.Unix() || !strings.EqualFold(entry.Activity, activity) {
			continue
		}
		starts = append(starts, time.Unix(entry.StartTime, 0).In(now.Location()))
	}
	if len(starts) == 0 {
		return m
	}

	m.Occurrences = len(starts)
	m.LastActivity = starts[len(starts)-1].Unix()

	days := Days(starts)
	m.CurrentStreak, m.SkipDaysUsed = CurrentStreak(days, c.SkipDaysAllowed)
	m.LongestStreak = LongestStreak(days)

	weekStart := now.Add(-week)
	activeDays := make(map[int]bool)
	for _, s := range starts {
		if !s.Before(weekStart) {
			m.WeeklyActual++
			activeDays[DayNumber(s)] = true
		}
	}
	m.ConsistencyScore = min(1.0, float64(len(activeDays))/float64(max(1, 7-c.SkipDaysAllowed)))
	m.Trend = trend(starts, now)
	return m
}

// WeeklyTarget returns the built-in weekly goal for well-known habits, or 0.
func WeeklyTarget(activity string) int {
	switch strings.ToLower(strings.TrimSpace(activity)) {
	case "exercise", "workout", "gym":
		return 3
	case "reading", "read":
		return 5
	case "meditation", "meditate":
		return 7
	}
	return 0
}

func trend(starts []time.Time, now time.Time) Trend {
	if len(starts) < minTrendEntries {
		return TrendStable
	}
	oneWeekAgo, twoWeeksAgo := now.Add(-week), now.Add(-2*week)
	last, previous := 0, 0
	for _, s := range starts {
		switch {
		case !s.Before(oneWeekAgo):
			last++
		case !s.Before(twoWeeksAgo):
			previous++
		}
	}
	switch {
	case last > previous:
		return TrendImproving
	case last < previous:
		return TrendDeclining
	}
	return TrendStable
}
