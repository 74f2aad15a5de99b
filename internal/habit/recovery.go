package habit

import (
	"fmt"
	"strings"
	"time"
)

// Recovery is an encouragement shown when a habit has lapsed for a few days.
type Recovery struct {
	Activity          string `json:"activity"`
	SkipDaysRemaining int    `json:"skip_days_remaining"`
	Message           string `json:"message"`
	AdjustedGoal      string `json:"adjusted_goal,omitempty"`
}

// Recover reports a Recovery when the last occurrence was more than a day
// before now. Days missed since then count against the remaining skip budget.
func Recover(m Metrics, now time.Time) (Recovery, bool) {
	if m.LastActivity == 0 {
		return Recovery{}, false
	}
	missed := DayNumber(now) - DayNumber(time.Unix(m.LastActivity, 0).In(now.Location())) - 1
	if missed < 1 {
		return Recovery{}, false
	}

	r := Recovery{
		Activity:          m.Activity,
		SkipDaysRemaining: max(0, m.SkipDaysAllowed-m.SkipDaysUsed-missed),
	}
	if r.SkipDaysRemaining > 0 {
		r.Message = fmt.Sprintf("Life happens! You have %d skip days left this week", r.SkipDaysRemaining)
	} else {
		r.Message = "Consider adjusting your goals - progress matters more than perfection"
		r.AdjustedGoal = fmt.Sprintf("Try %s just once this week", strings.ToLower(m.Activity))
	}
	return r, true
}
