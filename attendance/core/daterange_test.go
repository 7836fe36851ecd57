package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveDateRange(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		start    string
		end      string
		expected DateRange
	}{
		{name: "Defaults", expected: DateRange{Start: "2024-03-01", End: "2024-03-15"}},
		{name: "Explicit", start: "2024-01-01", end: "2024-01-31", expected: DateRange{Start: "2024-01-01", End: "2024-01-31"}},
		{name: "Garbage falls back", start: "not-a-date", end: "not-a-date", expected: DateRange{Start: "2024-03-01", End: "2024-03-15"}},
		{name: "Only start", start: "2024-02-10", expected: DateRange{Start: "2024-02-10", End: "2024-03-15"}},
		{name: "Only end", end: "2024-03-05", expected: DateRange{Start: "2024-03-01", End: "2024-03-05"}},
		{name: "Reversed bounds swap", start: "2024-03-10", end: "2024-03-02", expected: DateRange{Start: "2024-03-02", End: "2024-03-10"}},
		{name: "Sheet style", start: "1 Feb 24", end: "29 Feb 2024", expected: DateRange{Start: "2024-02-01", End: "2024-02-29"}},
		{name: "Slash layout", start: "2024/02/03", end: "", expected: DateRange{Start: "2024-02-03", End: "2024-03-15"}},
		{name: "RFC3339", start: "2024-02-03T22:15:00Z", expected: DateRange{Start: "2024-02-03", End: "2024-03-15"}},
		{name: "Natural language", start: "yesterday", end: "today", expected: DateRange{Start: "2024-03-14", End: "2024-03-15"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveDateRange(tt.start, tt.end, now))
		})
	}
}

func TestParseLooseDateRejectsPartialMatches(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	_, ok := ParseLooseDate("see you tomorrow maybe", now)
	assert.False(t, ok)
	_, ok = ParseLooseDate("   ", now)
	assert.False(t, ok)
}
