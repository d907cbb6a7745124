package value

import (
	"time"

	"github.com/pkg/errors"
)

// ErrUnsupportedInterval is returned for endpoint pairs that carry no date at
// all, such as "3pm to 5pm".
var ErrUnsupportedInterval = errors.New("unsupported interval endpoints")

var endOfDay = TimeOfDay{Hour: 23, Minute: 59, Second: 59}

// Interval is a closed range. After construction both endpoints are dates or
// both are date-times.
type Interval struct {
	start, end Value
}

// NewInterval promotes the endpoints to a common granularity. A nil start
// means MinDate and a nil end means MaxDate.
//
//	date-time   | date        end   -> that date at 23:59:59
//	date-time   | time        end   -> start's date at that time
//	date        | date-time   start -> that date at 00:00:00
//	date        | time        start -> 00:00:00, end -> start's date at that time
//	time        | date        start -> end's date at that time, end -> 23:59:59
//	time        | date-time   start -> end's date at that time
//	time        | time        ErrUnsupportedInterval
//
// Endpoints are never reordered: each one is resolved on its own, so an end
// before the start is kept as given.
func NewInterval(start, end Value) (Interval, error) {
	if start == nil {
		start = MinDate
	}
	if end == nil {
		end = MaxDate
	}

	switch s := start.(type) {
	case DateTime:
		switch e := end.(type) {
		case DateTime:
			return Interval{start: s, end: e}, nil
		case Date:
			return Interval{start: s, end: e.At(endOfDay)}, nil
		case TimeOfDay:
			return Interval{start: s, end: s.Date().At(e)}, nil
		}
	case Date:
		switch e := end.(type) {
		case Date:
			return Interval{start: s, end: e}, nil
		case DateTime:
			return Interval{start: s.At(TimeOfDay{}), end: e}, nil
		case TimeOfDay:
			return Interval{start: s.At(TimeOfDay{}), end: s.At(e)}, nil
		}
	case TimeOfDay:
		switch e := end.(type) {
		case Date:
			return Interval{start: e.At(s), end: e.At(endOfDay)}, nil
		case DateTime:
			return Interval{start: e.Date().At(s), end: e}, nil
		case TimeOfDay:
			return Interval{}, errors.Wrapf(ErrUnsupportedInterval, "%s to %s", s, e)
		}
	}
	return Interval{}, errors.Wrapf(ErrUnsupportedInterval, "%s to %s", start.Kind(), end.Kind())
}

// DateInterval is NewInterval for two dates, which cannot fail.
func DateInterval(start, end Date) Interval {
	return Interval{start: start, end: end}
}

func (Interval) Kind() Kind { return KindInterval }
func (Interval) isValue()   {}

func (iv Interval) String() string { return iv.StartString() + "/" + iv.EndString() }

func (iv Interval) Start() Value { return iv.start }
func (iv Interval) End() Value   { return iv.end }

// StartString and EndString render the endpoints as ISO dates or date-times.
func (iv Interval) StartString() string { return isoString(iv.start) }
func (iv Interval) EndString() string   { return isoString(iv.end) }

// Midpoint is start plus half the elapsed duration, floored to whole days for
// date intervals and whole seconds for date-time intervals.
func (iv Interval) Midpoint() Value {
	switch s := iv.start.(type) {
	case Date:
		e, _ := iv.end.(Date)
		return s.AddDays(int(floorDiv64(e.dayNumber()-s.dayNumber(), 2)))
	case DateTime:
		e, _ := iv.end.(DateTime)
		half := floorDiv64(e.t.Unix()-s.t.Unix(), 2)
		return DateTime{t: time.Unix(s.t.Unix()+half, 0).UTC()}
	default:
		return iv.start
	}
}

// FirstHalf returns [start, midpoint].
func (iv Interval) FirstHalf() Interval { return Interval{start: iv.start, end: iv.Midpoint()} }

// SecondHalf returns [midpoint, end].
func (iv Interval) SecondHalf() Interval { return Interval{start: iv.Midpoint(), end: iv.end} }

func isoString(v Value) string {
	if dt, ok := v.(DateTime); ok {
		return dt.ISO()
	}
	return v.String()
}
