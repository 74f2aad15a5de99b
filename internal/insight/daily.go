package insight

import (
	"fmt"
	"strings"
	"time"

	"github.com/chronolog/internal/history"
)

// Energy is the estimated energy level of a day.
type Energy string

const (
	EnergyUnknown Energy = "Unknown"
	EnergyHigh    Energy = "High"
	EnergyMedium  Energy = "Medium"
	EnergyLow     Energy = "Low"
)

// Mood is the estimated mood of a day.
type Mood string

const (
	MoodUnknown  Mood = "Unknown"
	MoodHappy    Mood = "Happy"
	MoodCalm     Mood = "Calm"
	MoodStressed Mood = "Stressed"
	MoodSocial   Mood = "Social"
	MoodNeutral  Mood = "Neutral"
)

// EmptyDayText is the productivity text for a day without entries.
const EmptyDayText = "Start logging activities to see your productivity patterns!"

// neutralBalanceScore is reported for days without entries.
const neutralBalanceScore = 5

var (
	productiveWords = []string{"work", "meeting", "email", "coding", "programming"}
	unwindWords     = []string{"break", "lunch", "dinner", "relax", "rest", "home"}

	scoreWorkWords     = []string{"work", "meeting", "email", "coding"}
	scorePersonalWords = []string{"break", "lunch", "relax", "exercise", "family"}

	highEnergyWords = []string{"exercise", "workout", "gym", "work", "coding", "meeting"}
	lowEnergyWords  = []string{"rest", "sleep", "relax", "tv", "reading"}

	socialWords    = []string{"meeting", "family", "friends", "social"}
	stressfulWords = []string{"work", "email", "urgent", "deadline"}
	relaxingWords  = []string{"break", "lunch", "walk", "music", "hobby"}
)

// DailySummary describes one calendar day of the log.
type DailySummary struct {
	Date         string `json:"date"`
	Productivity string `json:"productivity"`
	// PeakHour is the hour of day whose entries accumulated the most time.
	PeakHour     *int   `json:"peak_hour,omitempty"`
	BalanceScore int    `json:"balance_score"`
	Energy       Energy `json:"energy"`
	Mood         Mood   `json:"mood"`
}

// AnalyzeDay summarizes the entries starting on day's calendar date in day's
// location. Each entry lasts until the next one starts, even past midnight.
// The open activity is not counted.
func AnalyzeDay(log history.Log, day time.Time) DailySummary {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	spans := log.SpansBetween(start.Unix(), end.Unix())

	summary := DailySummary{
		Date:         start.Format("2006-01-02"),
		Productivity: EmptyDayText,
		BalanceScore: neutralBalanceScore,
		Energy:       EnergyUnknown,
		Mood:         MoodUnknown,
	}
	if len(spans) == 0 {
		return summary
	}

	peak := peakHour(spans, day.Location())
	summary.PeakHour = &peak
	summary.Productivity = fmt.Sprintf("You've been most productive between %s and %s. %s",
		formatHour(peak), formatHour((peak+1)%24), balanceText(spans))
	summary.BalanceScore = balanceScore(spans)
	summary.Energy, summary.Mood = energyAndMood(spans)
	return summary
}

// peakHour returns the start hour with the most accumulated time, the
// earliest one on ties.
func peakHour(spans []history.Span, loc *time.Location) int {
	var byHour [24]time.Duration
	for _, s := range spans {
		byHour[time.Unix(s.StartTime, 0).In(loc).Hour()] += s.Duration()
	}
	best := -1
	for h, d := range byHour {
		if d > 0 && (best < 0 || d > byHour[best]) {
			best = h
		}
	}
	if best < 0 {
		// Every span has zero length; fall back to the first start.
		best = time.Unix(spans[0].StartTime, 0).In(loc).Hour()
	}
	return best
}

func balanceText(spans []history.Span) string {
	work, unwind := timeMatching(spans, productiveWords), timeMatching(spans, unwindWords)
	switch {
	case work > unwind*2:
		return "You've been working hard today."
	case unwind > work*2:
		return "You've had plenty of relaxation time."
	default:
		return "Your day is balanced with a good mix of work and relaxation."
	}
}

// balanceScore rates a day from 1 to 10: up to 4 points for variety, 2 to 4
// for the work/personal ratio and 1 or 2 for a 30 minute to 2 hour average
// entry length.
func balanceScore(spans []history.Span) int {
	distinct := make(map[string]bool)
	var total time.Duration
	for _, s := range spans {
		distinct[strings.ToLower(s.Activity)] = true
		total += s.Duration()
	}
	variety := min(len(distinct)*2, 4)

	ratio := 2
	work, personal := timeMatching(spans, scoreWorkWords), timeMatching(spans, scorePersonalWords)
	if work+personal > 0 {
		share := float64(work) / float64(work+personal)
		switch {
		case share >= 0.4 && share <= 0.7:
			ratio = 4
		case share >= 0.3 && share <= 0.8:
			ratio = 3
		}
	}

	pacing := 1
	if avg := total / time.Duration(len(spans)); avg > 30*time.Minute && avg < 2*time.Hour {
		pacing = 2
	}
	return min(variety+ratio+pacing, 10)
}

func energyAndMood(spans []history.Span) (Energy, Mood) {
	high, low := float64(timeMatching(spans, highEnergyWords)), float64(timeMatching(spans, lowEnergyWords))
	energy := EnergyMedium
	switch {
	case high > low*1.5:
		energy = EnergyHigh
	case low > high*1.5:
		energy = EnergyLow
	}

	social := timeMatching(spans, socialWords)
	stress := timeMatching(spans, stressfulWords)
	relax := timeMatching(spans, relaxingWords)
	var mood Mood
	switch {
	case relax > stress && social > 0:
		mood = MoodHappy
	case relax > stress:
		mood = MoodCalm
	case stress > relax*2:
		mood = MoodStressed
	case social > 0:
		mood = MoodSocial
	default:
		mood = MoodNeutral
	}
	return energy, mood
}

// timeMatching sums the durations of spans whose lowercased activity contains
// any of words.
func timeMatching(spans []history.Span, words []string) time.Duration {
	var total time.Duration
	for _, s := range spans {
		activity := strings.ToLower(s.Activity)
		for _, w := range words {
			if strings.Contains(activity, w) {
				total += s.Duration()
				break
			}
		}
	}
	return total
}

func formatHour(hour int) string {
	switch {
	case hour == 0:
		return "12 AM"
	case hour < 12:
		return fmt.Sprintf("%d AM", hour)
	case hour == 12:
		return "12 PM"
	default:
		return fmt.Sprintf("%d PM", hour-12)
	}
}
