package history

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadTSV parses the tab separated export format: one
// "activity\tlat\tlong\tnote\tstart" line per entry, plus a line with an empty
// activity whose last field is the current activity start time. When that line
// is missing, fallbackCurrent is used.
func ReadTSV(r io.Reader, fallbackCurrent int64) (Log, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var entries []Entry
	current := fallbackCurrent
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 5 {
			return Log{}, fmt.Errorf("line %d: expected 5 fields, got %d", lineNo, len(fields))
		}
		start, err := strconv.ParseInt(strings.TrimSpace(fields[4]), 10, 64)
		if err != nil {
			return Log{}, fmt.Errorf("line %d: parse start time: %w", lineNo, err)
		}
		if fields[0] == "" {
			current = start
			continue
		}

		entry := Entry{StartTime: start, Activity: fields[0], Note: fields[3]}
		if fields[1] != "" && fields[2] != "" {
			lat, latErr := strconv.ParseFloat(fields[1], 64)
			long, longErr := strconv.ParseFloat(fields[2], 64)
			if latErr != nil || longErr != nil {
				return Log{}, fmt.Errorf("line %d: invalid location", lineNo)
			}
			entry.Location = &LatLong{Lat: lat, Long: long}
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return Log{}, fmt.Errorf("read tsv: %w", err)
	}
	return New(entries, current), nil
}

// WriteTSV writes l in the format ReadTSV accepts.
func WriteTSV(w io.Writer, l Log) error {
	bw := bufio.NewWriter(w)
	for _, entry := range l.entries {
		lat, long := "", ""
		if entry.Location != nil {
			lat = strconv.FormatFloat(entry.Location.Lat, 'f', -1, 64)
			long = strconv.FormatFloat(entry.Location.Long, 'f', -1, 64)
		}
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%d\n", entry.Activity, lat, long, entry.Note, entry.StartTime); err != nil {
			return fmt.Errorf("write tsv: %w", err)
		}
	}
	if _, err := fmt.Fprintf(bw, "\t\t\t\t%d\n", l.current); err != nil {
		return fmt.Errorf("write tsv: %w", err)
	}
	return bw.Flush()
}
