// Package timeutil formats the epoch-millisecond timestamps the store keeps.
package timeutil

import (
	"fmt"
	"time"
)

func FormatDate(millis int64) string {
	return time.UnixMilli(millis).Format("Jan 02, 2006")
}

func FormatDateTime(millis int64) string {
	return time.UnixMilli(millis).Format("Jan 02, 2006 15:04")
}

// RelativeTime renders a timestamp relative to now: "Just now", "5 minutes
// ago", then hours, then days, falling back to the date past a week.
func RelativeTime(millis int64, now time.Time) string {
	diff := now.Sub(time.UnixMilli(millis))

	seconds := int64(diff.Seconds())
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	switch {
	case seconds < 60:
		return "Just now"
	case minutes < 60:
		return fmt.Sprintf("%d %s ago", minutes, plural(minutes, "minute"))
	case hours < 24:
		return fmt.Sprintf("%d %s ago", hours, plural(hours, "hour"))
	case days < 7:
		return fmt.Sprintf("%d %s ago", days, plural(days, "day"))
	default:
		return FormatDate(millis)
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
