package habit

import (
	"slices"
	"time"
)

// DayNumber is the civil day of t in its own location, counted from the epoch.
func DayNumber(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// Days returns the distinct day numbers of times in ascending order.
func Days(times []time.Time) []int {
	days := make([]int, 0, len(times))
	for _, t := range times {
		days = append(days, DayNumber(t))
	}
	slices.Sort(days)
	return slices.Compact(days)
}

// CurrentStreak walks days backwards from the most recent one. A gap of g days
// continues the streak while the skips used so far plus g-1 stay within
// skipAllowed. days must be ascending and distinct.
func CurrentStreak(days []int, skipAllowed int) (streak, skipsUsed int) {
	if len(days) == 0 {
		return 0, 0
	}
	streak = 1
	for i := len(days) - 1; i > 0; i-- {
		gap := days[i] - days[i-1]
		if gap != 1 && skipsUsed+gap-1 > skipAllowed {
			break
		}
		skipsUsed += gap - 1
		streak++
	}
	return streak, skipsUsed
}

// LongestStreak is the longest run of consecutive days, without forgiveness.
func LongestStreak(days []int) int {
	if len(days) == 0 {
		return 0
	}
	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i]-days[i-1] == 1 {
			run++
			longest = max(longest, run)
		} else {
			run = 1
		}
	}
	return longest
}
