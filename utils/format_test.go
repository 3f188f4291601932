package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFullName(t *testing.T) {
	tests := []struct {
		name     string
		first    string
		middle   *string
		maiden   *string
		last     string
		expected string
	}{
		{
			name:     "first and last only",
			first:    "Thandi",
			last:     "Nkosi",
			expected: "Thandi Nkosi",
		},
		{
			name:     "all parts",
			first:    "Thandi",
			middle:   ToPtr("Grace"),
			maiden:   ToPtr("Dlamini"),
			last:     "Nkosi",
			expected: "Thandi Grace Dlamini Nkosi",
		},
		{
			name:     "blank middle is skipped",
			first:    "Thandi",
			middle:   ToPtr("  "),
			last:     "Nkosi",
			expected: "Thandi Nkosi",
		},
		{
			name:     "whitespace trimmed",
			first:    " Thandi ",
			last:     " Nkosi ",
			expected: "Thandi Nkosi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FullName(tt.first, tt.middle, tt.maiden, tt.last))
		})
	}
}

func TestAgeAt(t *testing.T) {
	t.Run("birthday already passed that year", func(t *testing.T) {
		age := AgeAt(date(1950, time.March, 10), ToPtr(date(2023, time.June, 1)))
		require.NotNil(t, age)
		assert.Equal(t, 73, *age)
	})

	t.Run("passing before birthday decrements", func(t *testing.T) {
		age := AgeAt(date(1950, time.September, 10), ToPtr(date(2023, time.June, 1)))
		require.NotNil(t, age)
		assert.Equal(t, 72, *age)
	})

	t.Run("same month earlier day decrements", func(t *testing.T) {
		age := AgeAt(date(1950, time.June, 15), ToPtr(date(2023, time.June, 14)))
		require.NotNil(t, age)
		assert.Equal(t, 72, *age)
	})

	t.Run("same month same day does not decrement", func(t *testing.T) {
		age := AgeAt(date(1950, time.June, 15), ToPtr(date(2023, time.June, 15)))
		require.NotNil(t, age)
		assert.Equal(t, 73, *age)
	})

	t.Run("missing passing date", func(t *testing.T) {
		assert.Nil(t, AgeAt(date(1950, time.June, 15), nil))
	})

	t.Run("negative result", func(t *testing.T) {
		assert.Nil(t, AgeAt(date(2023, time.June, 15), ToPtr(date(2020, time.January, 1))))
	})
}

func TestFormatYearRange(t *testing.T) {
	assert.Equal(t, "1941 - 2023", FormatYearRange(date(1941, time.May, 2), ToPtr(date(2023, time.February, 7))))
	assert.Equal(t, "1941 -", FormatYearRange(date(1941, time.May, 2), nil))
	assert.Equal(t, "- 2023", FormatYearRange(time.Time{}, ToPtr(date(2023, time.February, 7))))
	assert.Equal(t, "", FormatYearRange(time.Time{}, nil))
}

func TestFormatLongDate(t *testing.T) {
	assert.Equal(t, "February 7, 2023", FormatLongDate(date(2023, time.February, 7)))
	assert.Equal(t, "", FormatLongDate(time.Time{}))
}
