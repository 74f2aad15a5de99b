package insight

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronolog/internal/history"
)

var ref = time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)

type builder []history.Entry

func (b *builder) add(day, hour, minute int, activity string) {
	*b = append(*b, history.Entry{
		StartTime: time.Date(2024, 3, day, hour, minute, 0, 0, time.UTC).Unix(),
		Activity:  activity,
	})
}

func (b builder) log() history.Log {
	return history.New(b, ref.Unix())
}

// mixedMonth has a 10-day Meditate streak that stopped before the last week,
// a Reading session three times its usual length and a brand new activity.
func mixedMonth() history.Log {
	var b builder
	for day := 1; day <= 31; day++ {
		if day >= 10 && day <= 19 {
			b.add(day, 8, 0, "Meditate")
		}
		b.add(day, 9, 0, "Work")
		b.add(day, 17, 0, "Home")
		switch day {
		case 5, 12, 19:
			b.add(day, 20, 0, "Reading")
			b.add(day, 20, 30, "Home")
		case 26:
			b.add(day, 20, 0, "Reading")
			b.add(day, 21, 30, "Home")
		case 27, 29:
			b.add(day, 18, 0, "Pottery")
			b.add(day, 19, 0, "Home")
		}
	}
	return b.log()
}

func TestDetectPriorityOrder(t *testing.T) {
	got := Detect(mixedMonth(), ref, nil)
	require.Len(t, got, 3)

	assert.Equal(t, KindBrokenStreak, got[0].Kind)
	assert.Equal(t, "Meditate", got[0].Activity)
	assert.Equal(t, 10.0, got[0].Magnitude)
	assert.Equal(t, 1, got[0].Rank)

	assert.Equal(t, KindDurationOutlier, got[1].Kind)
	assert.Equal(t, "Reading", got[1].Activity)
	assert.InDelta(t, 1.0, got[1].Magnitude, 1e-9)
	assert.Contains(t, got[1].Text, "longer")

	assert.Equal(t, KindNewActivity, got[2].Kind)
	assert.Equal(t, "Pottery", got[2].Activity)
	assert.Equal(t, 3, got[2].Rank)
}

func TestDetectBaselinePlaceholder(t *testing.T) {
	var b builder
	b.add(28, 9, 0, "Work")
	b.add(28, 17, 0, "Home")

	got := Detect(b.log(), ref, nil)
	require.Len(t, got, 1)
	assert.Equal(t, KindBaseline, got[0].Kind)
	assert.Equal(t, BaselineText, got[0].Text)

	assert.Equal(t, KindBaseline, Detect(history.Log{}, ref, nil)[0].Kind)
}

func TestDetectTimingShift(t *testing.T) {
	var b builder
	for day := 1; day <= 31; day++ {
		hour := 5
		if day >= 25 {
			hour = 9
		}
		b.add(day, hour, 0, "Run")
		b.add(day, 10, 0, "Work")
		b.add(day, 18, 0, "Home")
	}

	got := Detect(b.log(), ref, nil)
	require.Len(t, got, 2)
	assert.Equal(t, KindDurationOutlier, got[0].Kind)
	assert.Equal(t, "Run", got[0].Activity)
	assert.Contains(t, got[0].Text, "shorter")

	assert.Equal(t, KindTimingShift, got[1].Kind)
	assert.Equal(t, "Run", got[1].Activity)
	assert.True(t, strings.Contains(got[1].Text, "later"), got[1].Text)
	assert.InDelta(t, 9-178.0/30, got[1].Magnitude, 1e-9)
}

func TestDetectGroupsByNormalizedName(t *testing.T) {
	var b builder
	for day := 1; day <= 31; day++ {
		name := "Running"
		if day%2 == 0 {
			name = "running"
		}
		if day < 20 {
			b.add(day, 7, 0, name)
		}
		b.add(day, 8, 0, "Work")
	}

	got := Detect(b.log(), ref, nil)
	require.NotEmpty(t, got)
	assert.Equal(t, KindBrokenStreak, got[0].Kind)
	assert.Equal(t, 18.0, got[0].Magnitude, "the 1st at 07:00 is outside the 30-day baseline")

	raw := Detect(b.log(), ref, func(s string) string { return s })
	assert.Equal(t, KindBrokenStreak, raw[0].Kind)
	assert.Equal(t, 3.0, raw[0].Magnitude, "without folding the case each spelling has gaps")
}

func TestDetectThresholdsAreConfigurable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DurationDeviation = 5
	got := NewDetector(cfg, nil).Detect(mixedMonth(), ref)
	for _, in := range got {
		assert.NotEqual(t, KindDurationOutlier, in.Kind)
	}

	cfg = DefaultConfig()
	cfg.PassCutoff = 1
	assert.Len(t, NewDetector(cfg, nil).Detect(mixedMonth(), ref), 1)
}

// at returns an entry days before ref at the given wall-clock time.
func at(days, hour, minute int, activity string) history.Entry {
	d := ref.AddDate(0, 0, -days)
	return history.Entry{
		StartTime: time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC).Unix(),
		Activity:  activity,
	}
}

// dailyWork logs Work at 09:00 on each of the last n days.
func dailyWork(n int) []history.Entry {
	var entries []history.Entry
	for days := n; days >= 1; days-- {
		entries = append(entries, at(days, 9, 0, "Work"))
	}
	return entries
}

func candidatesFor(candidates []Insight, activity string) []Insight {
	var out []Insight
	for _, c := range candidates {
		if c.Activity == activity {
			out = append(out, c)
		}
	}
	return out
}

func TestBrokenStreakWindow(t *testing.T) {
	tests := []struct {
		name      string
		from, to  int
		magnitude float64
	}{
		{name: "ended long before the baseline", from: 70, to: 61},
		{name: "ended inside the baseline", from: 20, to: 11, magnitude: 10},
		{name: "started before the baseline", from: 34, to: 25, magnitude: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := dailyWork(80)
			for days := tt.from; days >= tt.to; days-- {
				entries = append(entries, at(days, 8, 0, "Guitar"))
			}
			d := NewDetector(DefaultConfig(), nil)
			got := candidatesFor(d.brokenStreaks(d.buildWindows(history.New(entries, ref.Unix()), ref)), "Guitar")
			if tt.magnitude == 0 {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, tt.magnitude, got[0].Magnitude)
		})
	}
}

func TestDetectIgnoresStaleStreak(t *testing.T) {
	entries := dailyWork(80)
	for days := 70; days >= 61; days-- {
		entries = append(entries, at(days, 8, 0, "Guitar"))
	}
	for _, in := range Detect(history.New(entries, ref.Unix()), ref, nil) {
		assert.NotEqual(t, KindBrokenStreak, in.Kind, in.Text)
	}
}

func TestNewActivityWindow(t *testing.T) {
	tests := []struct {
		name    string
		earlier history.Entry
		isNew   bool
	}{
		{name: "seen 25 days ago", earlier: at(25, 18, 0, "Pottery"), isNew: false},
		{name: "seen exactly at the baseline start", earlier: at(30, 12, 0, "Pottery"), isNew: false},
		{name: "seen 35 days ago", earlier: at(35, 18, 0, "Pottery"), isNew: true},
		{name: "seen exactly at the week start", earlier: at(7, 12, 0, "Pottery"), isNew: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := append(dailyWork(40), tt.earlier, at(3, 18, 0, "Pottery"))
			d := NewDetector(DefaultConfig(), nil)
			got := candidatesFor(d.newActivities(d.buildWindows(history.New(entries, ref.Unix()), ref)), "Pottery")
			assert.Equal(t, tt.isNew, len(got) == 1)
		})
	}
}

func TestDurationOutlierThreshold(t *testing.T) {
	// Three 40 minute naps before the week and one this week. The baseline
	// mean includes this week's nap.
	tests := []struct {
		name    string
		minutes int
		flagged bool
	}{
		{name: "exactly fifty percent longer", minutes: 72, flagged: false},
		{name: "just over fifty percent longer", minutes: 73, flagged: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entries []history.Entry
			for _, days := range []int{20, 15, 10} {
				entries = append(entries, at(days, 13, 0, "Nap"), at(days, 13, 40, "Work"))
			}
			entries = append(entries, at(3, 13, 0, "Nap"), at(3, 13, tt.minutes, "Work"))

			d := NewDetector(DefaultConfig(), nil)
			got := candidatesFor(d.durationOutliers(d.buildWindows(history.New(entries, ref.Unix()), ref)), "Nap")
			assert.Equal(t, tt.flagged, len(got) == 1)
		})
	}
}

func TestTimingShiftThreshold(t *testing.T) {
	tests := []struct {
		name          string
		hour, minute  int
		flagged       bool
		expectedDelta float64
	}{
		{name: "exactly two hours later", hour: 10, flagged: true, expectedDelta: 2},
		{name: "just under two hours later", hour: 9, minute: 45, flagged: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entries []history.Entry
			for _, days := range []int{20, 15} {
				entries = append(entries, at(days, 6, 0, "Swim"), at(days, 7, 0, "Work"))
			}
			for _, days := range []int{3, 2} {
				entries = append(entries, at(days, tt.hour, tt.minute, "Swim"), at(days, tt.hour+1, tt.minute, "Work"))
			}

			d := NewDetector(DefaultConfig(), nil)
			got := candidatesFor(d.timingShifts(d.buildWindows(history.New(entries, ref.Unix()), ref)), "Swim")
			if !tt.flagged {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, tt.expectedDelta, got[0].Magnitude)
			assert.Contains(t, got[0].Text, "later")
		})
	}
}

func twoDays() history.Log {
	var b builder
	b.add(29, 7, 0, "Gym")
	b.add(29, 9, 0, "Family walk")
	b.add(29, 10, 0, "Coding")
	b.add(29, 12, 0, "Home")

	b.add(30, 8, 0, "Breakfast")
	b.add(30, 9, 0, "Work")
	b.add(30, 12, 0, "Lunch")
	b.add(30, 13, 0, "Work")
	b.add(30, 17, 0, "Home")
	b.add(30, 23, 0, "Sleep")

	b.add(31, 8, 0, "Work")
	return b.log()
}

func TestAnalyzeDay(t *testing.T) {
	tests := []struct {
		name         string
		day          int
		peak         int
		productivity string
		score        int
		energy       Energy
		mood         Mood
	}{
		{
			name:         "office day",
			day:          30,
			peak:         23,
			productivity: "You've been most productive between 11 PM and 12 AM. Your day is balanced with a good mix of work and relaxation.",
			score:        8,
			energy:       EnergyMedium,
			mood:         MoodStressed,
		},
		{
			name:         "active day",
			day:          29,
			peak:         12,
			productivity: "You've been most productive between 12 PM and 1 PM. You've had plenty of relaxation time.",
			score:        9,
			energy:       EnergyHigh,
			mood:         MoodHappy,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeDay(twoDays(), time.Date(2024, 3, tt.day, 15, 0, 0, 0, time.UTC))
			require.NotNil(t, got.PeakHour)
			assert.Equal(t, tt.peak, *got.PeakHour)
			assert.Equal(t, tt.productivity, got.Productivity)
			assert.Equal(t, tt.score, got.BalanceScore)
			assert.Equal(t, tt.energy, got.Energy)
			assert.Equal(t, tt.mood, got.Mood)
		})
	}
}

func TestAnalyzeEmptyDay(t *testing.T) {
	got := AnalyzeDay(twoDays(), time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, DailySummary{
		Date:         "2024-03-15",
		Productivity: EmptyDayText,
		BalanceScore: 5,
		Energy:       EnergyUnknown,
		Mood:         MoodUnknown,
	}, got)
}
