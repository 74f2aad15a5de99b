package insight

import (
	"time"

	"github.com/chronolog/internal/history"
)

// group collects the spans of one normalized activity.
type group struct {
	name     string
	week     []history.Span
	baseline []history.Span
	// preceding is the part of the baseline before the week starts.
	preceding int
	// earlier holds baseline start times before the week, for streaks.
	earlier []time.Time
}

type windows struct {
	ref       time.Time
	weekStart time.Time
	groups    map[string]*group
	keys      []string
}

func (d *Detector) buildWindows(log history.Log, ref time.Time) *windows {
	w := &windows{
		ref:       ref,
		weekStart: ref.Add(-d.cfg.Week),
		groups:    make(map[string]*group),
	}
	baselineStart := ref.Add(-d.cfg.Baseline).Unix()
	weekStart, refUnix := w.weekStart.Unix(), ref.Unix()

	for _, span := range log.Spans() {
		if span.StartTime > refUnix {
			break
		}
		key := d.normalize(span.Activity)
		if key == "" {
			key = span.Activity
		}
		g, ok := w.groups[key]
		if !ok {
			g = &group{}
			w.groups[key] = g
			w.keys = append(w.keys, key)
		}
		g.name = span.Activity

		start := span.StartTime
		if start >= weekStart {
			g.week = append(g.week, span)
		}
		if start >= baselineStart && start < refUnix {
			g.baseline = append(g.baseline, span)
			if start < weekStart {
				g.preceding++
				g.earlier = append(g.earlier, time.Unix(start, 0).In(ref.Location()))
			}
		}
	}
	return w
}

func meanDuration(spans []history.Span) time.Duration {
	if len(spans) == 0 {
		return 0
	}
	var total time.Duration
	for _, s := range spans {
		total += s.Duration()
	}
	return total / time.Duration(len(spans))
}

func meanHour(spans []history.Span, loc *time.Location) float64 {
	if len(spans) == 0 {
		return 0
	}
	var total float64
	for _, s := range spans {
		t := time.Unix(s.StartTime, 0).In(loc)
		total += float64(t.Hour()) + float64(t.Minute())/60
	}
	return total / float64(len(spans))
}
