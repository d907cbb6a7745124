// Package value defines the calendar values produced by the resolvers: dates,
// date-times, times of day and closed intervals between them.
//
// All values are timezone-naive wall-clock readings kept in UTC. Converting
// them into a caller's timezone is the job of the finalize package.
package value

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/kronos/plugin/kronos/calendar"
)

var (
	// ErrInvalidDate is returned when a year/month/day triple does not exist.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidTime is returned when an hour/minute/second triple is out of range.
	ErrInvalidTime = errors.New("invalid time of day")
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
	isoLayout      = "2006-01-02T15:04:05"
	clockLayout    = "15:04:05"
	secondsPerDay  = 24 * 60 * 60
)

// Kind tags the variants of Value.
type Kind int

const (
	KindDate Kind = iota + 1
	KindDateTime
	KindTimeOfDay
	KindInterval
)

func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	case KindTimeOfDay:
		return "time"
	case KindInterval:
		return "interval"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a resolved calendar value. The set of implementations is closed.
type Value interface {
	Kind() Kind
	String() string
	isValue()
}

// MinDate and MaxDate bound open-ended intervals.
var (
	MinDate = Date{t: time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)}
	MaxDate = Date{t: time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)}
)

// Date is a calendar day.
type Date struct {
	t time.Time
}

// NewDate builds a date, rejecting days that do not exist such as February 30.
func NewDate(year int, month time.Month, day int) (Date, error) {
	if year < 1 || year > 9999 || month < time.January || month > time.December ||
		day < 1 || day > calendar.MonthLength(month, year) {
		return Date{}, errors.Wrapf(ErrInvalidDate, "%04d-%02d-%02d", year, int(month), day)
	}
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}, nil
}

// MustDate is NewDate for known-good literals.
func MustDate(year int, month time.Month, day int) Date {
	d, err := NewDate(year, month, day)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf returns the calendar day of t as read on its own wall clock.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (Date) Kind() Kind { return KindDate }
func (Date) isValue()   {}

func (d Date) String() string { return d.t.Format(dateLayout) }

func (d Date) Year() int          { return d.t.Year() }
func (d Date) Month() time.Month  { return d.t.Month() }
func (d Date) Day() int           { return d.t.Day() }
func (d Date) Time() time.Time    { return d.t }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// Weekday returns Monday=0..Sunday=6.
func (d Date) Weekday() int { return calendar.Weekday(d.t) }

// AddDays moves the date by n days.
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// AddMonths moves the date by n calendar months, clamping the day to the
// length of the target month (January 31 + 1 month = February 28/29).
func (d Date) AddMonths(n int) Date {
	idx := d.Year()*12 + int(d.Month()) - 1 + n
	year, month := floorDiv(idx, 12), time.Month(idx-floorDiv(idx, 12)*12+1)
	day := min(d.Day(), calendar.MonthLength(month, year))
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// At combines the date with a time of day.
func (d Date) At(c TimeOfDay) DateTime {
	return DateTime{t: time.Date(d.Year(), d.Month(), d.Day(), c.Hour, c.Minute, c.Second, 0, time.UTC)}
}

// dayNumber counts days since the Unix epoch without going through time.Duration,
// which cannot span MinDate..MaxDate.
func (d Date) dayNumber() int64 { return d.t.Unix() / secondsPerDay }

// DateTime is a calendar day plus a wall-clock time, second precision.
type DateTime struct {
	t time.Time
}

// DateTimeOf reads t's wall clock, dropping sub-second precision and location.
func DateTimeOf(t time.Time) DateTime {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return DateTime{t: time.Date(y, mo, d, h, mi, s, 0, time.UTC)}
}

func (DateTime) Kind() Kind { return KindDateTime }
func (DateTime) isValue()   {}

func (dt DateTime) String() string { return dt.t.Format(dateTimeLayout) }

// ISO renders the value with a T separator.
func (dt DateTime) ISO() string { return dt.t.Format(isoLayout) }

func (dt DateTime) Time() time.Time       { return dt.t }
func (dt DateTime) Date() Date            { return DateOf(dt.t) }
func (dt DateTime) Equal(o DateTime) bool { return dt.t.Equal(o.t) }

// Clock returns the time-of-day part.
func (dt DateTime) Clock() TimeOfDay {
	h, m, s := dt.t.Clock()
	return TimeOfDay{Hour: h, Minute: m, Second: s}
}

// Add moves the value by d.
func (dt DateTime) Add(d time.Duration) DateTime { return DateTime{t: dt.t.Add(d)} }

// AddDays moves the value by n days keeping the clock.
func (dt DateTime) AddDays(n int) DateTime { return DateTime{t: dt.t.AddDate(0, 0, n)} }

// AddMonths moves the value by n calendar months with the day clamped.
func (dt DateTime) AddMonths(n int) DateTime { return dt.Date().AddMonths(n).At(dt.Clock()) }

// TimeOfDay is a wall-clock reading with no date.
type TimeOfDay struct {
	Hour, Minute, Second int
}

// NewTimeOfDay validates the clock fields.
func NewTimeOfDay(hour, minute, second int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return TimeOfDay{}, errors.Wrapf(ErrInvalidTime, "%02d:%02d:%02d", hour, minute, second)
	}
	return TimeOfDay{Hour: hour, Minute: minute, Second: second}, nil
}

func (TimeOfDay) Kind() Kind { return KindTimeOfDay }
func (TimeOfDay) isValue()   {}

func (c TimeOfDay) String() string {
	return time.Date(1, 1, 1, c.Hour, c.Minute, c.Second, 0, time.UTC).Format(clockLayout)
}

// Equal reports whether a and b are the same value.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Date:
		b, ok := b.(Date)
		return ok && a.Equal(b)
	case DateTime:
		b, ok := b.(DateTime)
		return ok && a.Equal(b)
	case TimeOfDay:
		b, ok := b.(TimeOfDay)
		return ok && a == b
	case Interval:
		b, ok := b.(Interval)
		return ok && Equal(a.start, b.start) && Equal(a.end, b.end)
	default:
		return a == nil && b == nil
	}
}

// DaysBetween returns to−from in whole days, floored. Intervals are measured
// by their start, or by their end when the starts coincide; a time of day has
// no date and counts as zero.
func DaysBetween(from, to Value) int {
	if a, ok := from.(Interval); ok {
		if b, ok := to.(Interval); ok && Equal(a.start, b.start) {
			return DaysBetween(a.end, b.end)
		}
	}
	a, okA := unixSeconds(from)
	b, okB := unixSeconds(to)
	if !okA || !okB {
		return 0
	}
	return int(floorDiv64(b-a, secondsPerDay))
}

func unixSeconds(v Value) (int64, bool) {
	switch v := v.(type) {
	case Date:
		return v.t.Unix(), true
	case DateTime:
		return v.t.Unix(), true
	case Interval:
		return unixSeconds(v.start)
	default:
		return 0, false
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorDiv64(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
