package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLeapYear(t *testing.T) {
	tests := []struct {
		year int
		want bool
	}{
		{1900, false},
		{2000, true},
		{2019, false},
		{2020, true},
		{2100, false},
		{2400, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsLeapYear(tt.year), "year %d", tt.year)
	}
}

func TestMonthLength(t *testing.T) {
	assert.Equal(t, 29, MonthLength(time.February, 2020))
	assert.Equal(t, 28, MonthLength(time.February, 2019))
	assert.Equal(t, 31, MonthLength(time.January, 2019))
	assert.Equal(t, 30, MonthLength(time.April, 2019))
	assert.Equal(t, 31, MonthLength(time.December, 2019))
	assert.Equal(t, 0, MonthLength(13, 2019))
}

func TestWeekdayNumber(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"Monday", 0},
		{"mon.", 0},
		{"Tues", 1},
		{"tue.", 1},
		{"WED", 2},
		{"thurs.", 3},
		{"Thursday", 3},
		{"fri", 4},
		{"Saturday", 5},
		{"sun.", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WeekdayNumber(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := WeekdayNumber("funday")
	assert.ErrorIs(t, err, ErrUnknownName)
}

func TestMonthNumber(t *testing.T) {
	tests := []struct {
		name string
		want time.Month
	}{
		{"3", time.March},
		{"03", time.March},
		{"12", time.December},
		{"Jan.", time.January},
		{"sept", time.September},
		{"Sept.", time.September},
		{"september", time.September},
		{"MAY", time.May},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MonthNumber(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"13", "0", "smarch", ""} {
		_, err := MonthNumber(bad)
		assert.ErrorIs(t, err, ErrUnknownName, bad)
	}
}

func TestQuarterNumber(t *testing.T) {
	for token, want := range map[string]int{"Q1": 1, "q4": 4, "second": 2, "Third": 3} {
		got, err := QuarterNumber(token)
		require.NoError(t, err)
		assert.Equal(t, want, got, token)
	}

	_, err := QuarterNumber("q5")
	assert.ErrorIs(t, err, ErrUnknownName)
}

func TestDayNumber(t *testing.T) {
	for token, want := range map[string]int{"1st": 1, "2nd": 2, "3rd": 3, "11th": 11, "22nd": 22, "31st": 31, "07": 7, "9": 9} {
		got, err := DayNumber(token)
		require.NoError(t, err)
		assert.Equal(t, want, got, token)
	}

	for _, bad := range []string{"32", "0", "1nd", "11st", "x"} {
		_, err := DayNumber(bad)
		assert.ErrorIs(t, err, ErrUnknownName, bad)
	}
}

func TestQuarters(t *testing.T) {
	assert.Equal(t, 1, QuarterOf(time.March))
	assert.Equal(t, 2, QuarterOf(time.April))
	assert.Equal(t, 3, QuarterOf(time.September))
	assert.Equal(t, 4, QuarterOf(time.October))

	first, last := QuarterMonths(3)
	assert.Equal(t, time.July, first)
	assert.Equal(t, time.September, last)
}

func TestWeekday(t *testing.T) {
	// 2020-03-11 was a Wednesday.
	assert.Equal(t, 2, Weekday(time.Date(2020, 3, 11, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 6, Weekday(time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC)))
}
