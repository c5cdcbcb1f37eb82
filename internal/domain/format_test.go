package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	testCases := []struct {
		seconds  float64
		expected string
	}{
		{0, "0:00"},
		{65, "1:05"},
		{3599.9, "59:59"},
		{125.4, "2:05"},
		{600, "10:00"},
		{59.999, "0:59"},
		{-3, "0:00"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatDuration(tc.seconds))
		})
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", 250)
	assert.Len(t, Truncate(long, MaxFieldLength), 200)
	assert.Equal(t, long[:200], Truncate(long, MaxFieldLength))

	assert.Equal(t, "short", Truncate("short", MaxFieldLength))
	assert.Equal(t, "", Truncate("", 10))

	// Rune-safe: multibyte characters are not split
	assert.Equal(t, "ααα", Truncate("ααααα", 3))
}

func TestChangeEventSubject(t *testing.T) {
	current := &Track{Title: "Current"}
	old := &Track{Title: "Old"}

	testCases := []struct {
		name     string
		event    ChangeEvent
		expected *Track
	}{
		{"insert uses record", ChangeEvent{Type: EventInsert, Record: current, OldRecord: old}, current},
		{"update uses record", ChangeEvent{Type: EventUpdate, Record: current, OldRecord: old}, current},
		{"delete uses old record", ChangeEvent{Type: EventDelete, Record: current, OldRecord: old}, old},
		{"delete without old record", ChangeEvent{Type: EventDelete}, nil},
		{"insert without record", ChangeEvent{Type: EventInsert}, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.event.Subject())
		})
	}
}
