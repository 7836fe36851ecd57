package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name     string
		items    []int
		size     int
		expected [][]int
	}{
		{name: "Empty", items: nil, size: 10, expected: nil},
		{name: "Exact multiple", items: []int{1, 2, 3, 4}, size: 2, expected: [][]int{{1, 2}, {3, 4}}},
		{name: "Remainder", items: []int{1, 2, 3, 4, 5}, size: 2, expected: [][]int{{1, 2}, {3, 4}, {5}}},
		{name: "Size larger than input", items: []int{1, 2}, size: 10, expected: [][]int{{1, 2}}},
		{name: "Non-positive size", items: []int{1, 2, 3}, size: 0, expected: [][]int{{1, 2, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Chunk(tt.items, tt.size))
		})
	}
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, []string{"a", "", ""}, PadRight([]string{"a"}, 3))
	assert.Equal(t, []string{"a", "b"}, PadRight([]string{"a", "b"}, 1))
	assert.Len(t, PadRight(nil, 9), 9)
}

func TestStartOfMonth(t *testing.T) {
	d := MustParseDate("2025-03-17")
	assert.Equal(t, MustParseDate("2025-03-01"), StartOfMonth(d))
}

func TestMap(t *testing.T) {
	assert.Equal(t, []string{"1", "2"}, Map([]int{1, 2}, func(i int) string { return string(rune('0' + i)) }))
	assert.Empty(t, Map([]int(nil), func(i int) int { return i }))
}

func TestToSet(t *testing.T) {
	set := ToSet([]int{2, 3, 2})
	assert.Len(t, set, 2)
	assert.Contains(t, set, 3)
}
