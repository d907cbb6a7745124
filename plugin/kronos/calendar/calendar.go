// Package calendar holds the fixed Gregorian tables used by the resolvers:
// leap years, month lengths and the English name lookups for weekdays,
// months, quarters and day ordinals.
package calendar

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
)

// ErrUnknownName is returned when a lookup key is not in its table.
var ErrUnknownName = errors.New("unknown calendar name")

var monthLengths = [...]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

var weekdays = map[string]int{
	"mon": 0, "monday": 0,
	"tue": 1, "tues": 1, "tuesday": 1,
	"wed": 2, "wednesday": 2,
	"thu": 3, "thurs": 3, "thursday": 3,
	"fri": 4, "friday": 4,
	"sat": 5, "saturday": 5,
	"sun": 6, "sunday": 6,
}

var months = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

var quarters = map[string]int{
	"q1": 1, "first": 1,
	"q2": 2, "second": 2,
	"q3": 3, "third": 3,
	"q4": 4, "fourth": 4,
}

// IsLeapYear reports whether y has a February 29.
func IsLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// MonthLength returns the number of days in month m of year y.
func MonthLength(m time.Month, y int) int {
	if m < time.January || m > time.December {
		return 0
	}
	if m == time.February && IsLeapYear(y) {
		return 29
	}
	return monthLengths[m]
}

// WeekdayNumber maps a weekday name to Monday=0..Sunday=6.
func WeekdayNumber(name string) (int, error) {
	key := normalize(name)
	if n, ok := weekdays[key]; ok {
		return n, nil
	}
	return 0, errors.Wrapf(ErrUnknownName, "weekday %q", name)
}

// MonthNumber maps "3", "03", "mar", "Mar." or "March" to time.March.
func MonthNumber(name string) (time.Month, error) {
	key := normalize(name)
	if m, ok := months[key]; ok {
		return m, nil
	}
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= 12 {
		return time.Month(n), nil
	}
	return 0, errors.Wrapf(ErrUnknownName, "month %q", name)
}

// QuarterNumber maps "Q1".."Q4" or "first".."fourth" to 1..4.
func QuarterNumber(token string) (int, error) {
	if q, ok := quarters[normalize(token)]; ok {
		return q, nil
	}
	return 0, errors.Wrapf(ErrUnknownName, "quarter %q", token)
}

// DayNumber maps "7", "07" or "7th" to 7. Ordinal suffixes must agree with the number.
func DayNumber(token string) (int, error) {
	key := normalize(token)
	digits := strings.TrimRight(key, "abcdefghijklmnopqrstuvwxyz")
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > 31 {
		return 0, errors.Wrapf(ErrUnknownName, "day %q", token)
	}
	if suffix := key[len(digits):]; suffix != "" && suffix != ordinalSuffix(n) {
		return 0, errors.Wrapf(ErrUnknownName, "day %q", token)
	}
	return n, nil
}

// QuarterOf returns the quarter containing month m.
func QuarterOf(m time.Month) int {
	switch {
	case m < time.April:
		return 1
	case m < time.July:
		return 2
	case m < time.October:
		return 3
	default:
		return 4
	}
}

// QuarterMonths returns the first and last month of quarter q.
func QuarterMonths(q int) (time.Month, time.Month) {
	first := time.Month(3*(q-1) + 1)
	return first, first + 2
}

// Weekday returns the weekday of t with Monday=0..Sunday=6.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func ordinalSuffix(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// normalize folds case and drops surrounding space and one trailing period.
func normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".")
	return cases.Fold().String(s)
}
