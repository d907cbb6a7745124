package value

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDate(t *testing.T) {
	d, err := NewDate(2020, time.February, 29)
	require.NoError(t, err)
	assert.Equal(t, "2020-02-29", d.String())

	for _, bad := range [][3]int{{2019, 2, 29}, {2020, 2, 30}, {2015, 13, 12}, {2015, 0, 1}, {2015, 4, 31}, {0, 1, 1}} {
		_, err := NewDate(bad[0], time.Month(bad[1]), bad[2])
		assert.ErrorIs(t, err, ErrInvalidDate, "%v", bad)
	}
}

func TestNewDate_EveryValidDay(t *testing.T) {
	for _, year := range []int{1900, 2000, 2019, 2020} {
		for month := time.January; month <= time.December; month++ {
			for day := 1; ; day++ {
				d, err := NewDate(year, month, day)
				if err != nil {
					assert.Greater(t, day, 27)
					break
				}
				assert.Equal(t, year, d.Year())
				assert.Equal(t, month, d.Month())
				assert.Equal(t, day, d.Day())
			}
		}
	}
}

func TestDate_AddMonths(t *testing.T) {
	tests := []struct {
		from   Date
		months int
		want   string
	}{
		{MustDate(2020, time.January, 31), 1, "2020-02-29"},
		{MustDate(2019, time.January, 31), 1, "2019-02-28"},
		{MustDate(2020, time.March, 11), -3, "2019-12-11"},
		{MustDate(2020, time.December, 15), 1, "2021-01-15"},
		{MustDate(2020, time.March, 31), -1, "2020-02-29"},
		{MustDate(2020, time.March, 11), 12, "2021-03-11"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.AddMonths(tt.months).String())
	}
}

func TestNewTimeOfDay(t *testing.T) {
	c, err := NewTimeOfDay(14, 30, 0)
	require.NoError(t, err)
	assert.Equal(t, "14:30:00", c.String())

	_, err = NewTimeOfDay(24, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestDaysBetween(t *testing.T) {
	a := MustDate(2020, time.March, 11)
	assert.Equal(t, 1, DaysBetween(a, a.AddDays(1)))
	assert.Equal(t, -7, DaysBetween(a, a.AddDays(-7)))
	assert.Equal(t, 1, DaysBetween(a.At(TimeOfDay{Hour: 8}), a.AddDays(1).At(TimeOfDay{Hour: 8})))
	assert.Equal(t, 0, DaysBetween(TimeOfDay{}, a))
}

func TestEqual(t *testing.T) {
	a := MustDate(2020, time.March, 11)
	assert.True(t, Equal(a, MustDate(2020, time.March, 11)))
	assert.False(t, Equal(a, a.At(TimeOfDay{})))
	assert.True(t, Equal(TimeOfDay{Hour: 3}, TimeOfDay{Hour: 3}))
	assert.True(t, Equal(DateInterval(a, a.AddDays(2)), DateInterval(a, a.AddDays(2))))
	assert.False(t, Equal(DateInterval(a, a.AddDays(2)), DateInterval(a, a.AddDays(3))))
}

func TestWire_RoundTrip(t *testing.T) {
	a := MustDate(2020, time.March, 11)
	iv, err := NewInterval(a, a.AddDays(3).At(TimeOfDay{Hour: 18}))
	require.NoError(t, err)

	for _, v := range []Value{a, a.At(TimeOfDay{Hour: 12, Minute: 5, Second: 9}), TimeOfDay{Hour: 21}, iv} {
		got, err := Decode(Encode(v))
		require.NoError(t, err)
		assert.True(t, Equal(v, got), v.String())
	}

	_, err = Decode(&Wire{Kind: "fortnight"})
	assert.Error(t, err)
}
