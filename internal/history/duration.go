package history

import (
	"fmt"
	"time"
)

// FormatDuration renders d as "1d 2h 5m", rounded to the nearest minute.
// Durations under half a minute render as "0m".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	minutes := int64(d.Round(time.Minute) / time.Minute)
	days := minutes / (24 * 60)
	hours := (minutes / 60) % 24
	minutes %= 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
