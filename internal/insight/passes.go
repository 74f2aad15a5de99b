package insight

import (
	"fmt"
	"math"

	"github.com/chronolog/internal/habit"
	"github.com/chronolog/internal/history"
)

func (d *Detector) brokenStreaks(w *windows) []Insight {
	var out []Insight
	for _, key := range w.keys {
		g := w.groups[key]
		if len(g.week) > 0 || len(g.earlier) == 0 {
			continue
		}
		streak, _ := habit.CurrentStreak(habit.Days(g.earlier), d.cfg.SkipDaysAllowed)
		if streak < d.cfg.MinBrokenStreak {
			continue
		}
		out = append(out, Insight{
			Kind:      KindBrokenStreak,
			Activity:  g.name,
			Text:      fmt.Sprintf("Your %d-day %s streak ended. Pick it back up this week?", streak, g.name),
			Magnitude: float64(streak),
		})
	}
	return out
}

func (d *Detector) durationOutliers(w *windows) []Insight {
	var out []Insight
	for _, key := range w.keys {
		g := w.groups[key]
		if len(g.week) == 0 {
			continue
		}
		baseline := meanDuration(g.baseline)
		if baseline <= 0 {
			continue
		}
		current := meanDuration(g.week)
		deviation := float64(current-baseline) / float64(baseline)
		if math.Abs(deviation) <= d.cfg.DurationDeviation {
			continue
		}
		direction := "longer"
		if deviation < 0 {
			direction = "shorter"
		}
		out = append(out, Insight{
			Kind:     KindDurationOutlier,
			Activity: g.name,
			Text: fmt.Sprintf("%s took %.0f%% %s than usual this week (%s vs %s)",
				g.name, math.Abs(deviation)*100, direction,
				history.FormatDuration(current), history.FormatDuration(baseline)),
			Magnitude: math.Abs(deviation),
		})
	}
	return out
}

func (d *Detector) timingShifts(w *windows) []Insight {
	loc := w.ref.Location()
	var out []Insight
	for _, key := range w.keys {
		g := w.groups[key]
		if len(g.week) == 0 || len(g.baseline) == 0 {
			continue
		}
		delta := meanHour(g.week, loc) - meanHour(g.baseline, loc)
		if math.Abs(delta) < d.cfg.TimingShiftHours {
			continue
		}
		direction := "later"
		if delta < 0 {
			direction = "earlier"
		}
		out = append(out, Insight{
			Kind:      KindTimingShift,
			Activity:  g.name,
			Text:      fmt.Sprintf("You started %s about %.1f hours %s than usual this week", g.name, math.Abs(delta), direction),
			Magnitude: math.Abs(delta),
		})
	}
	return out
}

func (d *Detector) newActivities(w *windows) []Insight {
	var out []Insight
	for _, key := range w.keys {
		g := w.groups[key]
		if len(g.week) == 0 || g.preceding > 0 {
			continue
		}
		out = append(out, Insight{
			Kind:      KindNewActivity,
			Activity:  g.name,
			Text:      fmt.Sprintf("New this week: %s (%d times)", g.name, len(g.week)),
			Magnitude: float64(len(g.week)),
		})
	}
	return out
}
