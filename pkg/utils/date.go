package utils

import (
	"fmt"
	"time"
)

func TimeNowUTC() time.Time {
	return time.Now().UTC()
}

func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsNewerDay reports whether now falls on a later calendar day (UTC) than ref.
func IsNewerDay(now, ref time.Time) bool {
	return StartOfDay(now).After(StartOfDay(ref))
}

func PrettyDate(date time.Time) string {
	date = date.UTC()
	return fmt.Sprintf("%02d %s %d - %02d:%02d UTC",
		date.Day(),
		date.Month().String()[:3],
		date.Year(),
		date.Hour(),
		date.Minute(),
	)
}

// FormatUptime renders a duration as "2d 3h 4m", dropping leading zero units.
func FormatUptime(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
