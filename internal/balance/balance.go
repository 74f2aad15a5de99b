// Package balance groups logged time into broad life categories and measures
// how evenly a week was spread across them.
package balance

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/chronolog/internal/habit"
	"github.com/chronolog/internal/history"
)

// Category is a broad area of life.
type Category string

const (
	HealthFitness       Category = "health_fitness"
	RelationshipsFamily Category = "relationships_family"
	LearningGrowth      Category = "learning_growth"
	HobbiesCreativity   Category = "hobbies_creativity"
	RestRelaxation      Category = "rest_relaxation"
	PersonalCare        Category = "personal_care"
	WorkCareer          Category = "work_career"
	Other               Category = "other"
)

type categoryRule struct {
	category Category
	display  string
	words    []string
}

// rules are checked in order; the first rule with a matching word wins.
var rules = []categoryRule{
	{HealthFitness, "Health & Fitness", []string{"exercise", "gym", "workout", "walk", "sport", "run", "bike", "yoga"}},
	{RelationshipsFamily, "Relationships & Family", []string{"family", "friends", "social", "date", "call", "visit"}},
	{LearningGrowth, "Learning & Growth", []string{"learn", "study", "read", "course", "tutorial", "research"}},
	{HobbiesCreativity, "Hobbies & Creativity", []string{"hobby", "music", "art", "craft", "creative", "draw", "paint", "game"}},
	{RestRelaxation, "Rest & Relaxation", []string{"sleep", "rest", "relax", "break", "nap", "meditat"}},
	{PersonalCare, "Personal Care", []string{"shower", "grooming", "breakfast", "lunch", "dinner", "meal", "eat", "personal"}},
	{WorkCareer, "Work & Career", []string{"work", "meeting", "email", "coding", "project", "office", "job", "career"}},
}

// watched are the categories reported as improvement areas when neglected.
var watched = []Category{HealthFitness, RelationshipsFamily, LearningGrowth, RestRelaxation}

const (
	week = 7 * 24 * time.Hour
	// personalBestWeeks is how many trailing weeks PersonalBest looks at.
	personalBestWeeks = 4
	// trendThreshold is the relative change between weeks that counts as a trend.
	trendThreshold = 0.2
	// strongConsistency is the share of active days that makes a strength.
	strongConsistency = 5.0 / 7.0
)

// CategoryOf maps an activity name to its life category by substring match.
func CategoryOf(activity string) Category {
	lower := strings.ToLower(activity)
	for _, r := range rules {
		for _, w := range r.words {
			if strings.Contains(lower, w) {
				return r.category
			}
		}
	}
	return Other
}

// DisplayName returns the human readable name of c.
func DisplayName(c Category) string {
	for _, r := range rules {
		if r.category == c {
			return r.display
		}
	}
	return "Other"
}

// CategoryMetrics is one category's share of the trailing week.
type CategoryMetrics struct {
	Category     Category    `json:"category"`
	DisplayName  string      `json:"display_name"`
	WeeklyHours  float64     `json:"weekly_hours"`
	Percentage   float64     `json:"percentage"`
	Consistency  float64     `json:"consistency"`
	Trend        habit.Trend `json:"trend"`
	PersonalBest float64     `json:"personal_best"`
}

// Metrics summarizes the trailing week of a log.
type Metrics struct {
	Categories []CategoryMetrics `json:"categories"`
	// Overall is the evenness of time across the named categories, 0 to 1.
	Overall          float64  `json:"overall"`
	WeeklyTotalHours float64  `json:"weekly_total_hours"`
	Strengths        []string `json:"strengths"`
	ImprovementAreas []string `json:"improvement_areas"`
}

// Active counts the named (non-Other) categories with logged time.
func (m Metrics) Active() int {
	n := 0
	for _, c := range m.Categories {
		if c.Category != Other {
			n++
		}
	}
	return n
}

// Calculate measures the week [now-7d, now). Spans are clipped to each
// window, so an activity running across the boundary counts partially.
func Calculate(log history.Log, now time.Time) Metrics {
	spans := log.Spans()
	var weeks [personalBestWeeks]map[Category]time.Duration
	for i := range weeks {
		to := now.Add(-time.Duration(i) * week)
		weeks[i] = hoursIn(spans, to.Add(-week), to)
	}
	current, previous := weeks[0], weeks[1]
	days := activeDays(spans, now.Add(-week), now)

	var total time.Duration
	for _, d := range current {
		total += d
	}

	m := Metrics{
		WeeklyTotalHours: total.Hours(),
		Strengths:        []string{},
		ImprovementAreas: []string{},
	}
	for category, d := range current {
		if d <= 0 {
			continue
		}
		best := 0.0
		for _, w := range weeks {
			best = math.Max(best, w[category].Hours())
		}
		m.Categories = append(m.Categories, CategoryMetrics{
			Category:     category,
			DisplayName:  DisplayName(category),
			WeeklyHours:  d.Hours(),
			Percentage:   100 * float64(d) / float64(total),
			Consistency:  float64(len(days[category])) / 7,
			Trend:        trendOf(d, previous[category]),
			PersonalBest: best,
		})
	}
	sort.Slice(m.Categories, func(i, j int) bool {
		if m.Categories[i].WeeklyHours != m.Categories[j].WeeklyHours {
			return m.Categories[i].WeeklyHours > m.Categories[j].WeeklyHours
		}
		return m.Categories[i].Category < m.Categories[j].Category
	})

	m.Overall = evenness(current)
	for _, c := range m.Categories {
		if c.Category != Other && c.Consistency >= strongConsistency {
			m.Strengths = append(m.Strengths, c.DisplayName)
		}
	}
	for _, c := range watched {
		if current[c] <= 0 || trendOf(current[c], previous[c]) == habit.TrendDeclining {
			m.ImprovementAreas = append(m.ImprovementAreas, DisplayName(c))
		}
	}
	return m
}

func hoursIn(spans []history.Span, from, to time.Time) map[Category]time.Duration {
	out := make(map[Category]time.Duration)
	lo, hi := from.Unix(), to.Unix()
	for _, s := range spans {
		start, end := max(s.StartTime, lo), min(s.End, hi)
		if end <= start {
			continue
		}
		out[CategoryOf(s.Activity)] += time.Duration(end-start) * time.Second
	}
	return out
}

func activeDays(spans []history.Span, from, to time.Time) map[Category]map[int]bool {
	out := make(map[Category]map[int]bool)
	for _, s := range spans {
		if s.StartTime < from.Unix() || s.StartTime >= to.Unix() {
			continue
		}
		c := CategoryOf(s.Activity)
		if out[c] == nil {
			out[c] = make(map[int]bool)
		}
		out[c][habit.DayNumber(time.Unix(s.StartTime, 0).In(to.Location()))] = true
	}
	return out
}

func trendOf(current, previous time.Duration) habit.Trend {
	switch {
	case previous <= 0 && current > 0:
		return habit.TrendImproving
	case previous <= 0:
		return habit.TrendStable
	}
	change := float64(current-previous) / float64(previous)
	switch {
	case change > trendThreshold:
		return habit.TrendImproving
	case change < -trendThreshold:
		return habit.TrendDeclining
	}
	return habit.TrendStable
}

// evenness is the Shannon entropy of the named categories' shares divided by
// its maximum, so a week spent on one category scores 0 and a week split
// evenly across all seven scores 1.
func evenness(hours map[Category]time.Duration) float64 {
	var total time.Duration
	for c, d := range hours {
		if c != Other {
			total += d
		}
	}
	if total <= 0 {
		return 0
	}
	entropy := 0.0
	for c, d := range hours {
		if c == Other || d <= 0 {
			continue
		}
		p := float64(d) / float64(total)
		entropy -= p * math.Log(p)
	}
	return entropy / math.Log(float64(len(rules)))
}
