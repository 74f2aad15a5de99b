package history

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base int64 = 1_700_000_000

func TestNormalize(t *testing.T) {
	entries := []Entry{
		{StartTime: base + 300, Activity: "Work"},
		{StartTime: base, Activity: "Sleep"},
		{StartTime: base + 100, Activity: "Work"},
		{StartTime: base + 200, Activity: "Work"},
		{StartTime: base + 400, Activity: "Lunch", Note: "first"},
		{StartTime: base + 400, Activity: "Lunch", Note: "second"},
	}

	got := Normalize(entries)
	require.Len(t, got, 3)
	assert.Equal(t, "Sleep", got[0].Activity)
	assert.Equal(t, base+100, got[1].StartTime)
	assert.Equal(t, "second", got[2].Note)

	assert.Equal(t, got, Normalize(got), "normalize must be idempotent")
	assert.Equal(t, base+300, entries[0].StartTime, "input must not be modified")
}

func TestNormalizeKeepsDifferentNotes(t *testing.T) {
	got := Normalize([]Entry{
		{StartTime: base, Activity: "Work", Note: "a"},
		{StartTime: base + 10, Activity: "Work", Note: "b"},
	})
	assert.Len(t, got, 2)
}

func TestNewRaisesCurrent(t *testing.T) {
	l := New([]Entry{{StartTime: base + 50, Activity: "Work"}}, base)
	assert.Equal(t, base+50, l.CurrentActivityStartTime())
}

func TestAppend(t *testing.T) {
	now := time.Unix(base+600, 0)
	l := New(nil, base)

	l, err := l.Append("  Work ", "", nil, now)
	require.NoError(t, err)
	require.Equal(t, 1, l.Len())
	first, _ := l.First()
	assert.Equal(t, base, first.StartTime)
	assert.Equal(t, "Work", first.Activity)
	assert.Equal(t, base+600, l.CurrentActivityStartTime())

	// same activity and note collapses into the previous entry
	l2, err := l.Append("Work", "", nil, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, l2.Len())
	assert.Equal(t, base+660, l2.CurrentActivityStartTime())

	_, err = l.Append("   ", "", nil, now)
	assert.ErrorIs(t, err, ErrBlankActivity)

	_, err = l.Append("Break", "", nil, time.Unix(base, 0))
	assert.ErrorIs(t, err, ErrInvalidStartTime)
}

func TestAppendDoesNotMutateReceiver(t *testing.T) {
	l := New([]Entry{{StartTime: base, Activity: "Sleep"}}, base+100)
	_, err := l.Append("Work", "", nil, time.Unix(base+200, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, base+100, l.CurrentActivityStartTime())
}

func TestSpans(t *testing.T) {
	l := New([]Entry{
		{StartTime: base, Activity: "Sleep"},
		{StartTime: base + 3600, Activity: "Work"},
	}, base+5400)

	spans := l.Spans()
	require.Len(t, spans, 2)
	assert.Equal(t, time.Hour, spans[0].Duration())
	assert.Equal(t, base+5400, spans[1].End)
	assert.Len(t, l.SpansBetween(base+1, 0), 1)
	assert.Len(t, l.Since(base+3600), 1)
}

func TestParseStartTime(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, loc)
	old := now.Add(-time.Hour).Unix()

	tests := []struct {
		name string
		spec string
		want int64
		err  bool
	}{
		{name: "empty keeps old", spec: "", want: old},
		{name: "clock today", spec: "09:30", want: time.Date(2024, 3, 10, 9, 30, 0, 0, loc).Unix()},
		{name: "clock rolls back a day", spec: "13:00", want: time.Date(2024, 3, 9, 13, 0, 0, 0, loc).Unix()},
		{name: "absolute", spec: "1710000000", want: 1710000000},
		{name: "negative minutes", spec: "-15", want: old - 900},
		{name: "positive minutes", spec: "30", want: old + 1800},
		{name: "future offset", spec: "120", err: true},
		{name: "invalid clock", spec: "99:99", err: true},
		{name: "garbage", spec: "soon", err: true},
		{name: "before sentinel", spec: "1000000000", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStartTime(tt.spec, old, now)
			if tt.err {
				assert.ErrorIs(t, err, ErrInvalidStartTime)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEdit(t *testing.T) {
	now := time.Unix(base+10_000, 0)
	l := New([]Entry{
		{StartTime: base, Activity: "Sleep"},
		{StartTime: base + 3600, Activity: "Work", Location: &LatLong{Lat: 1, Long: 2}},
		{StartTime: base + 7200, Activity: "Lunch"},
	}, base+9000)

	edited, err := l.Edit(base+3600, "-10", "Commute", "bus", now)
	require.NoError(t, err)
	e, ok := edited.Find(base + 3000)
	require.True(t, ok)
	assert.Equal(t, "Commute", e.Activity)
	assert.Equal(t, "bus", e.Note)
	require.NotNil(t, e.Location)

	_, err = l.Edit(base+1, "", "Work", "", now)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = l.Edit(base+3600, "", " ", "", now)
	assert.ErrorIs(t, err, ErrBlankActivity)

	_, err = l.Edit(base+3600, "60", "Work", "", now)
	assert.ErrorIs(t, err, ErrDuplicateStartTime)

	_, err = l.Edit(base+3600, "99:99", "Work", "", now)
	assert.ErrorIs(t, err, ErrInvalidStartTime)

	_, err = l.Edit(base+7200, "5000", "Lunch", "", time.Unix(base+1_000_000, 0))
	assert.ErrorIs(t, err, ErrInvalidStartTime, "must not move past the current activity start")

	merged, err := l.Edit(base+3600, "", "Sleep", "", now)
	require.NoError(t, err)
	assert.Equal(t, 2, merged.Len())
}

func TestDelete(t *testing.T) {
	l := New([]Entry{
		{StartTime: base, Activity: "Sleep"},
		{StartTime: base + 100, Activity: "Work"},
		{StartTime: base + 200, Activity: "Sleep"},
	}, base+300)

	deleted, err := l.Delete(base + 100)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted.Len(), "neighbours with the same activity merge")
	assert.Equal(t, base+300, deleted.Spans()[0].End)

	_, err = l.Delete(base + 1)
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.Equal(t, 3, l.Len())
}

func TestTSVRoundTrip(t *testing.T) {
	l := New([]Entry{
		{StartTime: base, Activity: "Sleep"},
		{StartTime: base + 100, Activity: "Run", Note: "5km", Location: &LatLong{Lat: 52.52, Long: 13.405}},
	}, base+500)

	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, l))
	assert.True(t, strings.HasSuffix(buf.String(), "\t\t\t\t1700000500\n"))

	got, err := ReadTSV(&buf, 0)
	require.NoError(t, err)
	assert.Equal(t, l.Entries(), got.Entries())
	assert.Equal(t, l.CurrentActivityStartTime(), got.CurrentActivityStartTime())
}

func TestReadTSVErrors(t *testing.T) {
	_, err := ReadTSV(strings.NewReader("Work\t\t\n"), 0)
	assert.Error(t, err)

	_, err = ReadTSV(strings.NewReader("Work\t\t\t\tnope\n"), 0)
	assert.Error(t, err)

	l, err := ReadTSV(strings.NewReader("Work\t\t\t\t1700000000\n"), base+99)
	require.NoError(t, err)
	assert.Equal(t, base+99, l.CurrentActivityStartTime())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0m", FormatDuration(20*time.Second))
	assert.Equal(t, "45m", FormatDuration(45*time.Minute))
	assert.Equal(t, "1h 5m", FormatDuration(65*time.Minute))
	assert.Equal(t, "1d 2h 0m", FormatDuration(26*time.Hour))
}
