// Package fragment defines the captured fields of every recognized phrase
// shape. The grammar produces fragments and the resolvers consume them; a
// fragment is a plain value and is never mutated after capture.
package fragment

import (
	"strings"

	"github.com/pkg/errors"
)

// Shape identifies a fragment variant.
type Shape int

const (
	ShapeRejected Shape = iota + 1
	ShapeDate
	ShapeNamedDay
	ShapeWeekday
	ShapeClock
	ShapeDateTime
	ShapeRelativeInterval
	ShapeQuarterInterval
	ShapeMonthInterval
	ShapeYearInterval
	ShapeBound
	ShapeHalf
	ShapeRange
	ShapeOffset
	ShapeNow
	ShapePartOfDay
	ShapeASAP
)

var shapeNames = map[Shape]string{
	ShapeRejected:         "rejected",
	ShapeDate:             "date",
	ShapeNamedDay:         "named_day",
	ShapeWeekday:          "weekday",
	ShapeClock:            "clock",
	ShapeDateTime:         "datetime",
	ShapeRelativeInterval: "relative_interval",
	ShapeQuarterInterval:  "quarter_interval",
	ShapeMonthInterval:    "month_interval",
	ShapeYearInterval:     "year_interval",
	ShapeBound:            "bound",
	ShapeHalf:             "half",
	ShapeRange:            "range",
	ShapeOffset:           "offset",
	ShapeNow:              "now",
	ShapePartOfDay:        "part_of_day",
	ShapeASAP:             "asap",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return "unknown"
}

// Fragment is implemented by every captured phrase shape.
type Fragment interface {
	Shape() Shape
}

// Direction is the last/this/next marker of a phrase. The zero value means
// the phrase named no direction at all.
type Direction int

const (
	Undirected Direction = iota
	Last
	This
	Next
)

// Sign returns -1, 0 or +1.
func (d Direction) Sign() int {
	switch d {
	case Last:
		return -1
	case Next:
		return 1
	default:
		return 0
	}
}

func (d Direction) String() string {
	switch d {
	case Last:
		return "last"
	case This:
		return "this"
	case Next:
		return "next"
	default:
		return "undirected"
	}
}

// ParseDirection reads "last", "this last", "this" or "next".
func ParseDirection(s string) Direction {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "last"):
		return Last
	case strings.Contains(s, "next"):
		return Next
	case strings.Contains(s, "this"):
		return This
	default:
		return Undirected
	}
}

// Unit is a calendar or clock unit.
type Unit string

const (
	UnitYear   Unit = "year"
	UnitMonth  Unit = "month"
	UnitWeek   Unit = "week"
	UnitDay    Unit = "day"
	UnitHour   Unit = "hour"
	UnitMinute Unit = "minute"
	UnitSecond Unit = "second"
)

// ErrUnknownUnit is returned by ParseUnit.
var ErrUnknownUnit = errors.New("unknown unit")

// ParseUnit accepts singular and plural unit names.
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s"))
	switch u {
	case UnitYear, UnitMonth, UnitWeek, UnitDay, UnitHour, UnitMinute, UnitSecond:
		return u, nil
	}
	return "", errors.Wrapf(ErrUnknownUnit, "%q", s)
}

// Meridiem is the am/pm marker of a clock reading.
type Meridiem int

const (
	NoMeridiem Meridiem = iota
	AM
	PM
)

// Edge selects the beginning, middle or end of an interval.
type Edge int

const (
	Beginning Edge = iota + 1
	Middle
	End
)

// ParseEdge reads beginning/start/early, middle/mid and end/late.
func ParseEdge(s string) (Edge, bool) {
	switch strings.ToLower(s) {
	case "beginning", "start", "early":
		return Beginning, true
	case "middle", "mid":
		return Middle, true
	case "end", "late":
		return End, true
	}
	return 0, false
}

// Rejected marks text that looks like a date or time but must not resolve,
// such as greetings or year-day-month triples.
type Rejected struct {
	Reason string
}

// Date is an explicit calendar date. Zero/empty fields were not captured.
type Date struct {
	Year    int
	Month   string
	Day     string
	Weekday string
}

// NamedDay is today, yesterday or tomorrow.
type NamedDay struct {
	Name string
}

// Weekday is a weekday name with an optional last/this/next marker.
type Weekday struct {
	Name      string
	Direction Direction
}

// Clock is a time-of-day phrase. Named clocks ("noon") and the current
// clock ("this time") take precedence over the numeric fields.
type Clock struct {
	Hour, Minute, Second int
	Meridiem             Meridiem
	OClock               bool
	Named                string
	Current              bool
}

// DateTime is a day part, a clock part, or both. Day holds a Date, NamedDay
// or Weekday fragment.
type DateTime struct {
	Day   Fragment
	Clock *Clock
}

// RelativeInterval is "last/this/next week|month|year" with an optional day
// of month ("the 1st of next month") or month ("december last year").
type RelativeInterval struct {
	Unit      Unit
	Direction Direction
	Day       string
	Month     string
}

// QuarterInterval is "Q3 2019", "second quarter" or "next quarter".
type QuarterInterval struct {
	Quarter   string
	Year      int
	Direction Direction
}

// MonthInterval is a month name with an optional year.
type MonthInterval struct {
	Month string
	Year  int
}

// YearInterval is a bare year or "last/this/next year". Priced marks "$1999".
type YearInterval struct {
	Year      int
	Direction Direction
	Priced    bool
}

// Bound is "beginning/middle/end of <interval or named day>".
type Bound struct {
	Edge Edge
	Of   Fragment
}

// Half is "first/second half of <interval or named day>".
type Half struct {
	Second bool
	Of     Fragment
}

// Range is a pair of datetime phrases. A nil side is open.
type Range struct {
	Start, End                   *DateTime
	ExclusiveStart, ExclusiveEnd bool
}

// Offset is "N units from/before/after <datetime>", "in N units" or
// "N units ago". A nil Anchor means today; Clock optionally sets the time.
type Offset struct {
	Quantity int
	Unit     Unit
	Sign     int
	Anchor   *DateTime
	Clock    *Clock
}

// Now is "now", optionally shifted by a number of clock units.
type Now struct {
	Quantity int
	Unit     Unit
	Sign     int
}

// PartOfDay is "tonight" or "last/this/next morning|evening|...".
type PartOfDay struct {
	Part      string
	Direction Direction
}

// ASAP is "asap".
type ASAP struct{}

func (Rejected) Shape() Shape         { return ShapeRejected }
func (Date) Shape() Shape             { return ShapeDate }
func (NamedDay) Shape() Shape         { return ShapeNamedDay }
func (Weekday) Shape() Shape          { return ShapeWeekday }
func (Clock) Shape() Shape            { return ShapeClock }
func (DateTime) Shape() Shape         { return ShapeDateTime }
func (RelativeInterval) Shape() Shape { return ShapeRelativeInterval }
func (QuarterInterval) Shape() Shape  { return ShapeQuarterInterval }
func (MonthInterval) Shape() Shape    { return ShapeMonthInterval }
func (YearInterval) Shape() Shape     { return ShapeYearInterval }
func (Bound) Shape() Shape            { return ShapeBound }
func (Half) Shape() Shape             { return ShapeHalf }
func (Range) Shape() Shape            { return ShapeRange }
func (Offset) Shape() Shape           { return ShapeOffset }
func (Now) Shape() Shape              { return ShapeNow }
func (PartOfDay) Shape() Shape        { return ShapePartOfDay }
func (ASAP) Shape() Shape             { return ShapeASAP }

// IsUndirected reports whether f hinges on a weekday with no last/this/next
// marker and therefore needs both a past and a future reading.
func IsUndirected(f Fragment) bool {
	switch f := f.(type) {
	case Weekday:
		return f.Direction == Undirected
	case DateTime:
		return f.Day != nil && IsUndirected(f.Day)
	case Offset:
		return f.Anchor != nil && IsUndirected(*f.Anchor)
	default:
		return false
	}
}

// Direct returns a copy of f with its undirected weekday pointed at d.
// Fragments without one are returned unchanged.
func Direct(f Fragment, d Direction) Fragment {
	switch f := f.(type) {
	case Weekday:
		if f.Direction == Undirected {
			f.Direction = d
		}
		return f
	case DateTime:
		if f.Day != nil {
			f.Day = Direct(f.Day, d)
		}
		return f
	case Offset:
		if f.Anchor != nil {
			anchor := Direct(*f.Anchor, d).(DateTime)
			f.Anchor = &anchor
		}
		return f
	default:
		return f
	}
}
