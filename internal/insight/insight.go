// Package insight compares the trailing week of an activity log with its
// 30-day baseline and reports the most significant deviations.
package insight

import (
	"sort"
	"time"

	"github.com/chronolog/internal/history"
	"github.com/chronolog/internal/textnorm"
)

// Kind identifies the detector that produced an insight.
type Kind string

const (
	KindBaseline        Kind = "baseline"
	KindBrokenStreak    Kind = "broken_streak"
	KindDurationOutlier Kind = "duration_outlier"
	KindTimingShift     Kind = "timing_shift"
	KindNewActivity     Kind = "new_activity"
)

// Insight is one ranked observation. Rank 1 is the most important.
type Insight struct {
	Kind      Kind    `json:"kind"`
	Activity  string  `json:"activity,omitempty"`
	Text      string  `json:"text"`
	Magnitude float64 `json:"magnitude"`
	Rank      int     `json:"rank"`
}

// Normalizer maps an activity name to the key activities are grouped by.
type Normalizer func(string) string

// Config holds the detection thresholds.
type Config struct {
	MinHistory        time.Duration
	Week              time.Duration
	Baseline          time.Duration
	MinBrokenStreak   int
	SkipDaysAllowed   int
	DurationDeviation float64
	TimingShiftHours  float64
	MaxInsights       int
	// Passes after the first stop once this many insights were collected.
	PassCutoff int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MinHistory:        7 * 24 * time.Hour,
		Week:              7 * 24 * time.Hour,
		Baseline:          30 * 24 * time.Hour,
		MinBrokenStreak:   3,
		SkipDaysAllowed:   2,
		DurationDeviation: 0.5,
		TimingShiftHours:  2,
		MaxInsights:       4,
		PassCutoff:        3,
	}
}

// BaselineText is the placeholder shown until enough history exists.
const BaselineText = "Building your baseline - insights appear after a week of tracking"

// Detector runs the insight passes. It holds no state between calls.
type Detector struct {
	cfg       Config
	normalize Normalizer
}

// NewDetector returns a detector. A nil normalizer groups by
// textnorm.NormalizeText, falling back to the raw name when that is empty.
func NewDetector(cfg Config, normalize Normalizer) *Detector {
	if normalize == nil {
		normalize = textnorm.NormalizeText
	}
	return &Detector{cfg: cfg, normalize: normalize}
}

// Detect runs a default detector.
func Detect(log history.Log, ref time.Time, normalize Normalizer) []Insight {
	return NewDetector(DefaultConfig(), normalize).Detect(log, ref)
}

// Detect returns at most MaxInsights insights in priority order. Broken
// streaks come first, then duration outliers, timing shifts and new
// activities; each pass contributes only its strongest candidate.
func (d *Detector) Detect(log history.Log, ref time.Time) []Insight {
	first, ok := log.First()
	if !ok || ref.Sub(time.Unix(first.StartTime, 0)) < d.cfg.MinHistory {
		return []Insight{{Kind: KindBaseline, Text: BaselineText, Rank: 1}}
	}

	w := d.buildWindows(log, ref)
	passes := []func(*windows) []Insight{
		d.brokenStreaks,
		d.durationOutliers,
		d.timingShifts,
		d.newActivities,
	}

	var out []Insight
	for i, pass := range passes {
		if i > 0 && len(out) >= d.cfg.PassCutoff {
			break
		}
		if len(out) >= d.cfg.MaxInsights {
			break
		}
		candidates := pass(w)
		if len(candidates) == 0 {
			continue
		}
		sortCandidates(candidates)
		out = append(out, candidates[0])
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func sortCandidates(c []Insight) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Magnitude != c[j].Magnitude {
			return c[i].Magnitude > c[j].Magnitude
		}
		return c[i].Activity < c[j].Activity
	})
}
