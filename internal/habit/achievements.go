package habit

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/chronolog/internal/history"
)

// Achievement is a milestone, either earned or still locked.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
	Message     string `json:"message"`
	// Category is the life category of the activity for streak milestones.
	Category       string `json:"category,omitempty"`
	Locked         bool   `json:"locked"`
	NewlyEarned    bool   `json:"newly_earned"`
	UnlockCriteria string `json:"unlock_criteria,omitempty"`
	Progress       string `json:"progress,omitempty"`
}

// BalanceSummary is the part of a life-balance measurement milestones need.
type BalanceSummary struct {
	ActiveCategories int
	Overall          float64
}

// recentActivities is how many of the latest entries streak milestones cover.
const recentActivities = 30

// newlyEarnedWindow is how recent activity must be for a milestone to be new.
const newlyEarnedWindow = 24 * time.Hour

var streakTiers = []struct {
	days    int
	title   string
	emoji   string
	earned  string
	message string
}{
	{3, "Three Day Warrior", "🔥", "Completed 3 days of %s!", "You're building momentum with %s!"},
	{7, "Week Champion", "🏆", "Amazing! 7 days strong with %s", "A full week of %s - you're unstoppable!"},
	{30, "Monthly Master", "💎", "Incredible 30-day streak with %s!", "30 days of %s - you've formed a real habit!"},
}

// Achievements lists every milestone as of now, earned ones first, then by ID.
// Streak milestones cover the distinct activities among the latest 30
// entries; categorize may be nil.
func (c Calculator) Achievements(log history.Log, now time.Time, b BalanceSummary, categorize func(string) string) []Achievement {
	var entries []history.Entry
	for _, e := range log.Entries() {
		if e.StartTime <= now.Unix() {
			entries = append(entries, e)
		}
	}
	recent := len(entries) > 0 && entries[len(entries)-1].StartTime >= now.Add(-newlyEarnedWindow).Unix()

	var out []Achievement
	for _, activity := range latestActivities(entries) {
		m := c.Calculate(log, activity, now)
		fresh := m.LastActivity >= now.Add(-newlyEarnedWindow).Unix()
		lower := strings.ToLower(activity)
		for _, tier := range streakTiers {
			a := Achievement{
				ID:      fmt.Sprintf("streak_%d_%s", tier.days, lower),
				Title:   tier.title,
				Emoji:   tier.emoji,
				Message: fmt.Sprintf(tier.message, activity),
			}
			if categorize != nil {
				a.Category = categorize(activity)
			}
			if m.CurrentStreak >= tier.days {
				a.Description = fmt.Sprintf(tier.earned, lower)
				a.NewlyEarned = fresh
			} else {
				a.Description = fmt.Sprintf("Complete %d days of %s", tier.days, lower)
				lock(&a, fmt.Sprintf("Complete %d consecutive days of %s", tier.days, activity),
					fmt.Sprintf("%d/%d days", m.CurrentStreak, tier.days))
			}
			out = append(out, a)
		}
	}

	out = append(out, balanceAchievements(b, recent)...)
	out = append(out, varietyAchievement(entries, now, recent))
	out = append(out, firstTimeAchievements(entries, now)...)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Locked != out[j].Locked {
			return !out[i].Locked
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func lock(a *Achievement, criteria, progress string) {
	a.Locked = true
	a.UnlockCriteria = criteria
	a.Progress = progress
}

// latestActivities returns the distinct names, compared case-insensitively,
// among the last entries in order of first appearance.
func latestActivities(entries []history.Entry) []string {
	if len(entries) > recentActivities {
		entries = entries[len(entries)-recentActivities:]
	}
	seen := make(map[string]bool)
	var names []string
	for _, e := range entries {
		key := strings.ToLower(e.Activity)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, e.Activity)
	}
	return names
}

func balanceAchievements(b BalanceSummary, recent bool) []Achievement {
	balanced := Achievement{
		ID:      "balanced_life",
		Title:   "Life Balance Master",
		Emoji:   "⚖️",
		Message: "You're living a wonderfully balanced life!",
	}
	if b.Overall > 0.7 && b.ActiveCategories >= 4 {
		balanced.Description = fmt.Sprintf("Great balance across %d life categories!", b.ActiveCategories)
		balanced.NewlyEarned = recent
	} else {
		balanced.Description = "Achieve balance across 4+ life categories"
		lock(&balanced, "Track activities in 4+ life categories with 70%+ balance",
			fmt.Sprintf("%d/4 categories, %d%% balance", b.ActiveCategories, int(b.Overall*100)))
	}

	diverse := Achievement{
		ID:      "diverse_life",
		Title:   "Renaissance Person",
		Emoji:   "🌟",
		Message: "Your life is beautifully diverse and rich!",
	}
	if b.ActiveCategories >= 6 {
		diverse.Description = fmt.Sprintf("Active in %d different life areas!", b.ActiveCategories)
		diverse.NewlyEarned = recent
	} else {
		diverse.Description = "Be active in 6+ different life areas"
		lock(&diverse, "Track activities across 6+ different life categories",
			fmt.Sprintf("%d/6 life areas", b.ActiveCategories))
	}
	return []Achievement{balanced, diverse}
}

func varietyAchievement(entries []history.Entry, now time.Time, recent bool) Achievement {
	thisWeekStart, lastWeekStart := now.Add(-week).Unix(), now.Add(-2*week).Unix()
	thisWeek, lastWeek := make(map[string]bool), make(map[string]bool)
	for _, e := range entries {
		switch {
		case e.StartTime >= thisWeekStart:
			thisWeek[e.Activity] = true
		case e.StartTime >= lastWeekStart:
			lastWeek[e.Activity] = true
		}
	}

	a := Achievement{
		ID:      "consistency_improvement",
		Title:   "Consistency Champion",
		Emoji:   "📈",
		Message: "Your consistency is improving week by week!",
	}
	if len(thisWeek) > len(lastWeek) && len(thisWeek) >= 3 {
		a.Description = fmt.Sprintf("More variety this week than last - %d different activities!", len(thisWeek))
		a.NewlyEarned = recent
	} else {
		a.Description = "Do more varied activities than last week"
		lock(&a, "Track more varied activities this week than last week (minimum 3)",
			fmt.Sprintf("This week: %d, Last week: %d", len(thisWeek), len(lastWeek)))
	}
	return a
}

func firstTimeAchievements(entries []history.Entry, now time.Time) []Achievement {
	first := Achievement{
		ID:      "first_entry",
		Title:   "Journey Begins",
		Emoji:   "🎯",
		Message: "Welcome to your personal growth journey!",
	}
	if len(entries) > 0 {
		first.Description = "Congratulations on your first tracked activity!"
		first.NewlyEarned = len(entries) == 1
	} else {
		first.Description = "Track your first activity"
		lock(&first, "Track your first activity to get started", "0/1 activities tracked")
	}

	weekStart := now.Add(-week).Unix()
	thisWeek := 0
	for _, e := range entries {
		if e.StartTime >= weekStart {
			thisWeek++
		}
	}
	firstWeek := Achievement{
		ID:      "first_week",
		Title:   "Week One Warrior",
		Emoji:   "🌱",
		Message: "You're building great tracking habits!",
	}
	if thisWeek >= 5 {
		firstWeek.Description = "Successfully tracked activities for a full week!"
		firstWeek.NewlyEarned = len(entries) <= 10
	} else {
		firstWeek.Description = "Track activities for a full week"
		lock(&firstWeek, "Track 5+ activities in one week", fmt.Sprintf("%d/5 activities this week", thisWeek))
	}
	return []Achievement{first, firstWeek}
}
