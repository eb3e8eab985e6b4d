package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthDays(t *testing.T) {
	tests := []struct {
		month Month
		days  int
	}{
		{NewMonth(2024, time.February), 29},
		{NewMonth(2023, time.February), 28},
		{NewMonth(2024, time.April), 30},
		{NewMonth(2024, time.December), 31},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.days, tt.month.Days(), tt.month.String())
	}
}

func TestMonthNavigation(t *testing.T) {
	dec := NewMonth(2023, time.December)
	assert.Equal(t, NewMonth(2024, time.January), dec.Next())
	assert.Equal(t, dec, dec.Next().Prev())
	assert.Equal(t, Month{Year: 2024, Month: time.January}, NewMonth(2023, 13))
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2024-03")
	require.NoError(t, err)
	assert.Equal(t, NewMonth(2024, time.March), m)
	assert.Equal(t, "2024-03", m.String())
	assert.True(t, m.Contains(day(2024, time.March, 31)))
	assert.False(t, m.Contains(day(2024, time.April, 1)))

	_, err = ParseMonth("March 2024")
	assert.Error(t, err)
}
