package domain

import "fmt"

// FormatDuration renders a duration in seconds as m:ss, flooring to whole
// seconds: 0 -> "0:00", 65 -> "1:05", 3599.9 -> "59:59".
func FormatDuration(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	s := int(seconds)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// Truncate caps a string at max runes.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
