package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseName(t *testing.T) {
	testCases := []struct {
		id       string
		expected string
	}{
		{id: "Newtonsoft.Json", expected: "Newtonsoft"},
		{id: "xunit", expected: "xunit"},
		{id: "Microsoft.Extensions.Logging", expected: "Microsoft"},
		{id: ".Leading", expected: ""},
		{id: "", expected: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.id, func(t *testing.T) {
			assert.Equal(t, tc.expected, BaseName(tc.id))
		})
	}
}

func TestGroupByBaseName(t *testing.T) {
	testCases := []struct {
		name     string
		ids      []string
		top      int
		expected []string
	}{
		{
			name:     "first occurrence per prefix wins",
			ids:      []string{"Foo.Bar", "Foo.Baz", "Qux"},
			top:      DefaultTop,
			expected: []string{"Foo.Bar", "Qux"},
		},
		{
			name:     "rank order decides the representative",
			ids:      []string{"Foo.Baz", "Qux", "Foo.Bar"},
			top:      DefaultTop,
			expected: []string{"Foo.Baz", "Qux"},
		},
		{
			name:     "id without a dot groups with dotted ids of the same prefix",
			ids:      []string{"Serilog", "Serilog.Sinks.Console", "Moq"},
			top:      DefaultTop,
			expected: []string{"Serilog", "Moq"},
		},
		{
			name:     "non-positive top yields nothing",
			ids:      []string{"A", "B"},
			top:      0,
			expected: []string{},
		},
		{
			name:     "empty input",
			ids:      nil,
			top:      QuickTop,
			expected: []string{},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, GroupByBaseName(tc.ids, tc.top))
		})
	}
}

func TestGroupByBaseName_Truncation(t *testing.T) {
	ids := make([]string, 0, 250)
	for i := range 250 {
		ids = append(ids, fmt.Sprintf("Pkg%d.Core", i))
	}

	for _, top := range []int{DefaultTop, QuickTop} {
		t.Run(fmt.Sprintf("top %d", top), func(t *testing.T) {
			got := GroupByBaseName(ids, top)
			assert.Len(t, got, top)
			assert.Equal(t, "Pkg0.Core", got[0])
		})
	}

	t.Run("shorter input is returned whole", func(t *testing.T) {
		assert.Len(t, GroupByBaseName(ids[:7], DefaultTop), 7)
	})
}
