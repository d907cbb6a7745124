package resolve

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/kronos/plugin/kronos/calendar"
	"github.com/hrygo/kronos/plugin/kronos/fragment"
	"github.com/hrygo/kronos/plugin/kronos/value"
)

const (
	// asapHour is the hour "asap" rolls forward to.
	asapHour = 8
	// Two-digit years above this value belong to the 1900s.
	centuryPivot = 30
)

var (
	workdayStart = value.TimeOfDay{Hour: 8}
	workdayEnd   = value.TimeOfDay{Hour: 18}
)

var namedClocks = map[string]value.TimeOfDay{
	"midnight":  {Hour: 0},
	"dawn":      {Hour: 5},
	"sunrise":   {Hour: 6},
	"morning":   {Hour: 9},
	"am":        {Hour: 9},
	"noon":      {Hour: 12},
	"afternoon": {Hour: 14},
	"pm":        {Hour: 14},
	"dusk":      {Hour: 17},
	"sunset":    {Hour: 18},
	"eod":       {Hour: 18},
	"evening":   {Hour: 19},
	"night":     {Hour: 21},
	"tonight":   {Hour: 21},
}

var namedDays = map[string]int{
	"yesterday": -1,
	"today":     0,
	"tomorrow":  1,
}

// typed adapts a resolver for one fragment variant to the generic signature.
func typed[F fragment.Fragment](fn func(F, Reference) (value.Value, error)) Resolver {
	return func(f fragment.Fragment, ref Reference) (value.Value, error) {
		v, ok := f.(F)
		if !ok {
			return nil, errors.Wrapf(ErrUnsupportedShape, "%T", f)
		}
		return fn(v, ref)
	}
}

// ExpandYear maps two-digit years to 1931..2030. Other years are returned as is.
func ExpandYear(year int) int {
	switch {
	case year >= 100:
		return year
	case year > centuryPivot:
		return 1900 + year
	default:
		return 2000 + year
	}
}

func resolveRejected(f fragment.Rejected, _ Reference) (value.Value, error) {
	return nil, errors.Wrapf(ErrRejected, "%s", f.Reason)
}

func resolveDate(f fragment.Date, ref Reference) (value.Value, error) {
	return explicitDate(f, ref)
}

func resolveNamedDay(f fragment.NamedDay, ref Reference) (value.Value, error) {
	return namedDay(f, ref)
}

func resolveWeekday(f fragment.Weekday, ref Reference) (value.Value, error) {
	return weekday(f, ref)
}

func resolveClock(f fragment.Clock, ref Reference) (value.Value, error) {
	c, err := clock(f, ref)
	if err != nil {
		return nil, err
	}
	return ref.Today.At(c), nil
}

// resolveDateTime anchors a bare clock on the reference day.
func resolveDateTime(f fragment.DateTime, ref Reference) (value.Value, error) {
	v, err := dateTimeSpec(f, ref)
	if err != nil {
		return nil, err
	}
	if c, ok := v.(value.TimeOfDay); ok {
		return ref.Today.At(c), nil
	}
	return v, nil
}

func explicitDate(f fragment.Date, ref Reference) (value.Date, error) {
	year, month := ref.Today.Year(), ref.Today.Month()
	if f.Year != 0 {
		year = ExpandYear(f.Year)
	}
	if f.Month != "" {
		m, err := calendar.MonthNumber(f.Month)
		if err != nil {
			return value.Date{}, err
		}
		month = m
	}
	day, err := calendar.DayNumber(f.Day)
	if err != nil {
		return value.Date{}, err
	}

	d, err := value.NewDate(year, month, day)
	if err != nil {
		return value.Date{}, err
	}
	if f.Weekday != "" {
		wd, err := calendar.WeekdayNumber(f.Weekday)
		if err != nil {
			return value.Date{}, err
		}
		if wd != d.Weekday() {
			return value.Date{}, errors.Wrapf(ErrWeekdayMismatch, "%s is not a %s", d, f.Weekday)
		}
	}
	return d, nil
}

func namedDay(f fragment.NamedDay, ref Reference) (value.Date, error) {
	offset, ok := namedDays[strings.ToLower(f.Name)]
	if !ok {
		return value.Date{}, errors.Wrapf(calendar.ErrUnknownName, "day %q", f.Name)
	}
	return ref.Today.AddDays(offset), nil
}

// weekday finds the nearest named weekday in the requested direction:
// this -> 0..6 days ahead, next -> 1..7 days ahead, last -> 1..7 days back.
func weekday(f fragment.Weekday, ref Reference) (value.Date, error) {
	named, err := calendar.WeekdayNumber(f.Name)
	if err != nil {
		return value.Date{}, err
	}
	diff := named - ref.Today.Weekday()
	switch f.Direction {
	case fragment.This:
		diff = (diff + 7) % 7
	case fragment.Next:
		if diff <= 0 {
			diff += 7
		}
	case fragment.Last:
		if diff >= 0 {
			diff -= 7
		}
	default:
		return value.Date{}, errors.Wrapf(ErrUnsupportedShape, "undirected weekday %q", f.Name)
	}
	return ref.Today.AddDays(diff), nil
}

func dayOf(f fragment.Fragment, ref Reference) (value.Date, error) {
	switch f := f.(type) {
	case fragment.Date:
		return explicitDate(f, ref)
	case fragment.NamedDay:
		return namedDay(f, ref)
	case fragment.Weekday:
		return weekday(f, ref)
	default:
		return value.Date{}, errors.Wrapf(ErrUnsupportedShape, "day part %T", f)
	}
}

func clock(f fragment.Clock, ref Reference) (value.TimeOfDay, error) {
	if f.Current {
		return ref.Clock(), nil
	}
	if f.Named != "" {
		c, ok := namedClocks[strings.ToLower(f.Named)]
		if !ok {
			return value.TimeOfDay{}, errors.Wrapf(calendar.ErrUnknownName, "time of day %q", f.Named)
		}
		return c, nil
	}

	hour := f.Hour
	switch {
	case f.Meridiem != fragment.NoMeridiem:
		hour %= 12
		if f.Meridiem == fragment.PM {
			hour += 12
		}
	case f.OClock:
		// Bare o'clock hours are read between 07:00 and 18:00.
		hour %= 12
		if hour < 7 {
			hour += 12
		}
	}
	return value.NewTimeOfDay(hour, f.Minute, f.Second)
}

// dateTimeSpec resolves the day and clock parts. A phrase with only a clock
// stays a time of day so ranges can promote it against their other end.
func dateTimeSpec(f fragment.DateTime, ref Reference) (value.Value, error) {
	var (
		day    value.Date
		hasDay bool
	)
	if f.Day != nil {
		d, err := dayOf(f.Day, ref)
		if err != nil {
			return nil, err
		}
		day, hasDay = d, true
	}

	if f.Clock == nil {
		if !hasDay {
			return nil, errors.Wrap(ErrUnsupportedShape, "datetime without day or clock")
		}
		return day, nil
	}
	c, err := clock(*f.Clock, ref)
	if err != nil {
		return nil, err
	}
	if !hasDay {
		return c, nil
	}
	return day.At(c), nil
}

func resolveRelativeInterval(f fragment.RelativeInterval, ref Reference) (value.Value, error) {
	dir := f.Direction.Sign()
	today := ref.Today

	switch f.Unit {
	case fragment.UnitDay:
		return value.NewInterval(today.At(workdayStart), today.At(workdayEnd))
	case fragment.UnitWeek:
		monday := today.AddDays(-today.Weekday() + 7*dir)
		return value.DateInterval(monday, monday.AddDays(6)), nil
	case fragment.UnitMonth:
		shifted := today.AddMonths(dir)
		if f.Day != "" {
			day, err := calendar.DayNumber(f.Day)
			if err != nil {
				return nil, err
			}
			return value.NewDate(shifted.Year(), shifted.Month(), day)
		}
		return monthSpan(shifted.Year(), shifted.Month(), shifted.Month())
	case fragment.UnitYear:
		year := today.Year() + dir
		if f.Month != "" {
			month, err := calendar.MonthNumber(f.Month)
			if err != nil {
				return nil, err
			}
			return monthSpan(year, month, month)
		}
		return monthSpan(year, time.January, time.December)
	default:
		return nil, errors.Wrapf(ErrUnsupportedShape, "relative %s interval", f.Unit)
	}
}

func resolveQuarterInterval(f fragment.QuarterInterval, ref Reference) (value.Value, error) {
	var quarter, year int
	if f.Direction != fragment.Undirected {
		shifted := ref.Today.AddMonths(3 * f.Direction.Sign())
		quarter, year = calendar.QuarterOf(shifted.Month()), shifted.Year()
	} else {
		q, err := calendar.QuarterNumber(f.Quarter)
		if err != nil {
			return nil, err
		}
		quarter, year = q, ref.Today.Year()
		if f.Year != 0 {
			year = ExpandYear(f.Year)
		}
	}
	first, last := calendar.QuarterMonths(quarter)
	return monthSpan(year, first, last)
}

func resolveMonthInterval(f fragment.MonthInterval, ref Reference) (value.Value, error) {
	month, err := calendar.MonthNumber(f.Month)
	if err != nil {
		return nil, err
	}
	year := ref.Today.Year()
	if f.Year != 0 {
		year = ExpandYear(f.Year)
	}
	return monthSpan(year, month, month)
}

// resolveYearInterval accepts bare years in 1931..2030 only; other numbers
// are far more often quantities, prices or street numbers.
func resolveYearInterval(f fragment.YearInterval, ref Reference) (value.Value, error) {
	if f.Priced {
		return nil, errors.Wrapf(ErrRejected, "price $%d", f.Year)
	}
	if f.Direction != fragment.Undirected {
		return monthSpan(ref.Today.Year()+f.Direction.Sign(), time.January, time.December)
	}
	year := ExpandYear(f.Year)
	if year-centuryPivot <= 1900 || year-centuryPivot > 2000 {
		return nil, errors.Wrapf(ErrOutOfRange, "year %d", year)
	}
	return monthSpan(year, time.January, time.December)
}

func resolvePartOfDay(f fragment.PartOfDay, ref Reference) (value.Value, error) {
	c, ok := namedClocks[strings.ToLower(f.Part)]
	if !ok {
		return nil, errors.Wrapf(calendar.ErrUnknownName, "part of day %q", f.Part)
	}
	return ref.Today.AddDays(f.Direction.Sign()).At(c), nil
}

// resolveNow is the only resolver that reads the true instant directly.
func resolveNow(f fragment.Now, ref Reference) (value.Value, error) {
	now := value.DateTimeOf(ref.Now)
	if f.Quantity == 0 {
		return now, nil
	}
	return shift(now, f.Quantity*f.Sign, f.Unit)
}

func resolveASAP(_ fragment.ASAP, ref Reference) (value.Value, error) {
	next := ref.Today.At(value.TimeOfDay{Hour: asapHour})
	if ref.Now.Hour() >= asapHour {
		next = next.AddDays(1)
	}
	return next, nil
}

// monthSpan is the first day of month first through the last day of month last.
func monthSpan(year int, first, last time.Month) (value.Value, error) {
	start, err := value.NewDate(year, first, 1)
	if err != nil {
		return nil, err
	}
	end, err := value.NewDate(year, last, calendar.MonthLength(last, year))
	if err != nil {
		return nil, err
	}
	return value.DateInterval(start, end), nil
}

// shift moves a date or date-time by n units. Years and months move by
// calendar months with the day clamped; sub-day units turn a date into its
// midnight first.
func shift(v value.Value, n int, unit fragment.Unit) (value.Value, error) {
	var out value.Value
	switch v := v.(type) {
	case value.Date:
		switch unit {
		case fragment.UnitYear:
			out = v.AddMonths(12 * n)
		case fragment.UnitMonth:
			out = v.AddMonths(n)
		case fragment.UnitWeek:
			out = v.AddDays(7 * n)
		case fragment.UnitDay:
			out = v.AddDays(n)
		default:
			return shift(v.At(value.TimeOfDay{}), n, unit)
		}
	case value.DateTime:
		switch unit {
		case fragment.UnitYear:
			out = v.AddMonths(12 * n)
		case fragment.UnitMonth:
			out = v.AddMonths(n)
		case fragment.UnitWeek:
			out = v.AddDays(7 * n)
		case fragment.UnitDay:
			out = v.AddDays(n)
		case fragment.UnitHour:
			out = v.Add(time.Duration(n) * time.Hour)
		case fragment.UnitMinute:
			out = v.Add(time.Duration(n) * time.Minute)
		case fragment.UnitSecond:
			out = v.Add(time.Duration(n) * time.Second)
		default:
			return nil, errors.Wrapf(ErrUnsupportedShape, "unit %q", unit)
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedShape, "cannot shift %T", v)
	}

	if year := yearOf(out); year < 1 || year > 9999 {
		return nil, errors.Wrapf(ErrOutOfRange, "year %d", year)
	}
	return out, nil
}

func yearOf(v value.Value) int {
	switch v := v.(type) {
	case value.Date:
		return v.Year()
	case value.DateTime:
		return v.Time().Year()
	default:
		return 0
	}
}
