// Package timeago renders service timestamps as relative "time ago" strings.
package timeago

import (
	"fmt"
	"time"
)

// Format renders an ISO-8601 timestamp relative to the current time.
// Unparseable or future timestamps render as an empty string.
func Format(datetime string) string {
	return FormatAt(datetime, time.Now())
}

// FormatAt renders datetime relative to now.
func FormatAt(datetime string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, datetime)
	if err != nil {
		return ""
	}

	diff := now.Sub(t)
	if diff < 0 {
		return ""
	}

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < 2*time.Minute:
		return "a minute ago"
	case diff < 50*time.Minute:
		return fmt.Sprintf("%d minutes ago", diff/time.Minute)
	case diff < 90*time.Minute:
		return "an hour ago"
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", diff/time.Hour)
	case diff < 48*time.Hour:
		return "yesterday"
	default:
		return fmt.Sprintf("%d days ago", diff/(24*time.Hour))
	}
}
