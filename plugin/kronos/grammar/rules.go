package grammar

import (
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/pkg/errors"

	"github.com/hrygo/kronos/plugin/kronos/fragment"
	"github.com/hrygo/kronos/plugin/kronos/wordnum"
)

// errNoCapture is returned by a builder when the match carries none of the
// groups it needs. The scanner then skips the match.
var errNoCapture = errors.New("match carries no usable capture")

type rule struct {
	name  string
	re    *regexp2.Regexp
	build func(m *regexp2.Match) (fragment.Fragment, error)
}

func newRule(name, pattern string, timeout time.Duration, build func(m *regexp2.Match) (fragment.Fragment, error)) *rule {
	re := regexp2.MustCompile(pattern, regexp2.IgnoreCase)
	re.MatchTimeout = timeout
	return &rule{name: name, re: re, build: build}
}

// newRules lists the phrase shapes in priority order. When two rules match at
// the same position the earlier one wins.
func newRules(timeout time.Duration) []*rule {
	return []*rule{
		newRule("greeting",
			seq(kw("good"), sp, kw("morning", "afternoon", "evening", "night")),
			timeout, reject("greeting")),

		newRule("bound",
			seq(
				alt(
					seq(group("edge1", kw("beginning", "start", "middle", "end")), sp, kw("of")),
					group("edge2", kw("early", "late")),
					seq(group("edge3", kw("mid")), opt(sp, alt(kw("of"), `-`))),
				),
				sp, intervalPattern("i"),
			),
			timeout, buildBound),

		newRule("half",
			seq(
				group("half", kw("earlier", "first", "later", "second")), sp, kw("half"),
				opt(sp, alt(kw("of"), `-`)), sp, intervalPattern("i"),
			),
			timeout, buildHalf),

		newRule("between",
			seq(kw("between"), sp, dateTimePattern("s"), sp, kw("and"), sp, dateTimePattern("e")),
			timeout, buildRange(false, false)),

		newRule("from_to",
			seq(opt(kw("from"), sp), dateTimePattern("s"), sp, alt(kw("to"), `-`), sp, dateTimePattern("e")),
			timeout, buildRange(false, false)),

		newRule("after",
			seq(kw("after"), sp, dateTimePattern("s"), opt(sp, kw("before"), sp, dateTimePattern("e"))),
			timeout, buildRange(true, true)),

		newRule("before",
			seq(kw("before"), sp, dateTimePattern("e"), opt(sp, kw("after"), sp, dateTimePattern("s"))),
			timeout, buildRange(true, true)),

		newRule("datetime", dateTimePattern(""), timeout, buildDateTime),

		newRule("offset",
			seq(
				opt(kw("in"), sp), quantityPattern(""), sp,
				group("unit", alt(dateUnit, timeUnit)), sp,
				group("odir", kw("from", "before", "after")), sp,
				dateTimePattern("a"),
			),
			timeout, buildOffset),

		newRule("relative_interval", relativeIntervalPattern(""), timeout, buildRelativeInterval),

		newRule("count_days", countFromNowPattern(dateUnit, true), timeout, buildCountDays),

		newRule("now",
			alt(group("now", kw("now")), countFromNowPattern(timeUnit, false)),
			timeout, buildNow),

		newRule("part_of_day",
			alt(
				group("tonight", kw("tonight")),
				seq(
					group("pdir", dir), sp,
					alt(
						group("pword", kw("morning", "dawn", "sunrise", "afternoon", "dusk", "sunset", "evening", "eod", "night")),
						group("pam", `\b`+amWord),
						group("ppm", `\b`+pmWord),
					),
				),
			),
			timeout, buildPartOfDay),

		newRule("year_day_month",
			seq(year4, sp, group("ysep", `[/\-.]`), sp, alt(intDay, ordinalWord), sp, `\k<ysep>`, sp, alt(intMonth, month)),
			timeout, reject("year-day-month")),

		newRule("quarter", quarterPattern(""), timeout, buildQuarterRule),

		newRule("month", monthIntervalPattern(""), timeout, buildMonthRule),

		newRule("year", seq(opt(group("price", `\$`)), group("year", year4)), timeout, buildYearRule),

		newRule("asap", kw("asap"), timeout, func(*regexp2.Match) (fragment.Fragment, error) {
			return fragment.ASAP{}, nil
		}),
	}
}

// countFromNowPattern is "[in] N units from now", "N units ago|before now"
// and "in N units". Date units also accept a trailing clock on the last form.
func countFromNowPattern(unit string, withClock bool) string {
	inForm := seq(kw("in"), sp, quantityPattern("i"), sp, group("iunit", unit))
	if withClock {
		inForm += opt(sp, clockPattern("c"))
	}
	return alt(
		seq(opt(kw("in"), sp), quantityPattern("f"), sp, group("funit", unit), sp, kw("from"), sp, kw("now")),
		seq(quantityPattern("b"), sp, group("bunit", unit), sp, alt(kw("ago"), seq(kw("before"), sp, kw("now")))),
		inForm,
	)
}

func reject(reason string) func(*regexp2.Match) (fragment.Fragment, error) {
	return func(*regexp2.Match) (fragment.Fragment, error) {
		return fragment.Rejected{Reason: reason}, nil
	}
}

func has(m *regexp2.Match, name string) bool {
	g := m.GroupByName(name)
	return g != nil && g.Length > 0
}

func text(m *regexp2.Match, name string) string {
	g := m.GroupByName(name)
	if g == nil || g.Length == 0 {
		return ""
	}
	return g.String()
}

// first returns the first non-empty capture among names.
func first(m *regexp2.Match, names ...string) string {
	for _, n := range names {
		if s := text(m, n); s != "" {
			return s
		}
	}
	return ""
}

func number(m *regexp2.Match, name string) (int, error) {
	s := text(m, name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(err, "group %s", name)
	}
	return n, nil
}

func quantity(m *regexp2.Match, p string) (int, error) {
	switch {
	case has(m, p+"qnum"):
		return number(m, p+"qnum")
	case has(m, p+"qcouple"):
		return 2, nil
	case has(m, p+"qspelled"):
		n, err := wordnum.Parse(text(m, p+"qspelled"))
		if err != nil {
			return 0, err
		}
		if n > 1e6 {
			return 0, errors.Errorf("quantity %d too large", n)
		}
		return int(n), nil
	case has(m, p+"qa"):
		return 1, nil
	default:
		return 0, errNoCapture
	}
}

func clockOf(m *regexp2.Match, p string) (*fragment.Clock, error) {
	if has(m, p+"current") {
		return &fragment.Clock{Current: true}, nil
	}
	if named := first(m, p+"named1", p+"named2", p+"named3"); named != "" {
		return &fragment.Clock{Named: strings.ToLower(named)}, nil
	}

	var (
		c     fragment.Clock
		err   error
		parts [3]string
	)
	switch {
	case has(m, p+"ohour"):
		c.OClock = true
		parts = [3]string{p + "ohour"}
	case has(m, p+"ahour"):
		c.Meridiem = fragment.AM
		if has(m, p+"pm") {
			c.Meridiem = fragment.PM
		}
		parts = [3]string{p + "ahour", p + "amin", p + "asec"}
	case has(m, p+"fhour"):
		parts = [3]string{p + "fhour", p + "fmin", p + "fsec"}
	default:
		return nil, nil
	}

	fields := []*int{&c.Hour, &c.Minute, &c.Second}
	for i, name := range parts {
		if name == "" {
			continue
		}
		if *fields[i], err = number(m, name); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func dateOf(m *regexp2.Match, p string) (fragment.Fragment, error) {
	type layout struct{ year, month, day, weekday string }
	layouts := []layout{
		{p + "ymdY", p + "ymdM", p + "ymdD", p + "wd"},
		{p + "mdyY", p + "mdyM", p + "mdyD", p + "wd"},
		{"", p + "mdM", p + "mdD", p + "wd"},
		{"", p + "dmyM", p + "dmyD", p + "wd"},
		{"", p + "dmM", p + "dmD", p + "wd"},
		{"", "", p + "ordD", p + "wd2"},
	}
	for _, l := range layouts {
		if !has(m, l.day) {
			continue
		}
		d := fragment.Date{Day: text(m, l.day), Weekday: text(m, l.weekday)}
		if l.month != "" {
			d.Month = text(m, l.month)
		}
		if l.year != "" {
			year, err := number(m, l.year)
			if err != nil {
				return nil, err
			}
			d.Year = year
		}
		return d, nil
	}
	return nil, nil
}

func dayOf(m *regexp2.Match, p string) (fragment.Fragment, error) {
	d, err := dateOf(m, p)
	if err != nil || d != nil {
		return d, err
	}
	if has(m, p+"named") {
		return fragment.NamedDay{Name: strings.ToLower(text(m, p+"named"))}, nil
	}
	if has(m, p+"wname") {
		return fragment.Weekday{Name: text(m, p+"wname"), Direction: fragment.ParseDirection(text(m, p+"wdir"))}, nil
	}
	return nil, nil
}

// dateTimeOf reads a dateTimePattern embedded under prefix p. It returns nil
// when neither a day nor a clock was captured.
func dateTimeOf(m *regexp2.Match, p string) (*fragment.DateTime, error) {
	var dt fragment.DateTime
	for _, side := range []string{"1", "2"} {
		day, err := dayOf(m, p+"d"+side)
		if err != nil {
			return nil, err
		}
		c, err := clockOf(m, p+"c"+side)
		if err != nil {
			return nil, err
		}
		if day != nil {
			dt.Day = day
		}
		if c != nil {
			dt.Clock = c
		}
	}
	if dt.Day == nil && dt.Clock == nil {
		return nil, nil
	}
	return &dt, nil
}

func relativeIntervalOf(m *regexp2.Match, p string) (fragment.Fragment, error) {
	switch {
	case has(m, p+"rdir"):
		unit, err := fragment.ParseUnit(text(m, p+"runit"))
		if err != nil {
			return nil, err
		}
		return fragment.RelativeInterval{
			Unit:      unit,
			Direction: fragment.ParseDirection(text(m, p+"rdir")),
			Day:       text(m, p+"rday"),
		}, nil
	case has(m, p+"rdir2"):
		return fragment.RelativeInterval{
			Unit:      fragment.UnitYear,
			Direction: fragment.ParseDirection(text(m, p+"rdir2")),
			Month:     text(m, p+"rmonth"),
		}, nil
	default:
		return nil, nil
	}
}

func quarterOf(m *regexp2.Match, p string) (fragment.Fragment, error) {
	if has(m, p+"qdir") {
		return fragment.QuarterInterval{Direction: fragment.ParseDirection(text(m, p+"qdir"))}, nil
	}
	q := first(m, p+"qname", p+"qword")
	if q == "" {
		return nil, nil
	}
	year, err := number(m, p+"qyear")
	if err != nil {
		return nil, err
	}
	return fragment.QuarterInterval{Quarter: q, Year: year}, nil
}

func monthIntervalOf(m *regexp2.Match, p string) (fragment.Fragment, error) {
	if !has(m, p+"mname") {
		return nil, nil
	}
	year, err := number(m, p+"myear")
	if err != nil {
		return nil, err
	}
	return fragment.MonthInterval{Month: text(m, p+"mname"), Year: year}, nil
}

// intervalOf reads an intervalPattern embedded under prefix p.
func intervalOf(m *regexp2.Match, p string) (fragment.Fragment, error) {
	for _, read := range []func(*regexp2.Match, string) (fragment.Fragment, error){
		monthIntervalOf, quarterOf, relativeIntervalOf,
	} {
		f, err := read(m, p)
		if err != nil || f != nil {
			return f, err
		}
	}
	switch {
	case has(m, p+"year"):
		year, err := number(m, p+"year")
		if err != nil {
			return nil, err
		}
		return fragment.YearInterval{Year: year}, nil
	case has(m, p+"named"):
		return fragment.NamedDay{Name: strings.ToLower(text(m, p+"named"))}, nil
	case has(m, p+"unit"):
		unit, err := fragment.ParseUnit(text(m, p+"unit"))
		if err != nil {
			return nil, err
		}
		return fragment.RelativeInterval{Unit: unit, Direction: fragment.This}, nil
	default:
		return nil, errNoCapture
	}
}

func buildBound(m *regexp2.Match) (fragment.Fragment, error) {
	edge, ok := fragment.ParseEdge(first(m, "edge1", "edge2", "edge3"))
	if !ok {
		return nil, errNoCapture
	}
	of, err := intervalOf(m, "i")
	if err != nil {
		return nil, err
	}
	return fragment.Bound{Edge: edge, Of: of}, nil
}

func buildHalf(m *regexp2.Match) (fragment.Fragment, error) {
	of, err := intervalOf(m, "i")
	if err != nil {
		return nil, err
	}
	half := strings.ToLower(text(m, "half"))
	return fragment.Half{Second: half == "later" || half == "second", Of: of}, nil
}

func buildRange(exclusiveStart, exclusiveEnd bool) func(*regexp2.Match) (fragment.Fragment, error) {
	return func(m *regexp2.Match) (fragment.Fragment, error) {
		start, err := dateTimeOf(m, "s")
		if err != nil {
			return nil, err
		}
		end, err := dateTimeOf(m, "e")
		if err != nil {
			return nil, err
		}
		if start == nil && end == nil {
			return nil, errNoCapture
		}
		return fragment.Range{
			Start:          start,
			End:            end,
			ExclusiveStart: exclusiveStart && start != nil,
			ExclusiveEnd:   exclusiveEnd && end != nil,
		}, nil
	}
}

func buildDateTime(m *regexp2.Match) (fragment.Fragment, error) {
	dt, err := dateTimeOf(m, "")
	if err != nil {
		return nil, err
	}
	if dt == nil {
		return nil, errNoCapture
	}
	return *dt, nil
}

func buildOffset(m *regexp2.Match) (fragment.Fragment, error) {
	qty, err := quantity(m, "")
	if err != nil {
		return nil, err
	}
	unit, err := fragment.ParseUnit(text(m, "unit"))
	if err != nil {
		return nil, err
	}
	anchor, err := dateTimeOf(m, "a")
	if err != nil {
		return nil, err
	}
	if anchor == nil {
		return nil, errNoCapture
	}
	sign := 1
	if strings.EqualFold(text(m, "odir"), "before") {
		sign = -1
	}
	return fragment.Offset{Quantity: qty, Unit: unit, Sign: sign, Anchor: anchor}, nil
}

func buildRelativeInterval(m *regexp2.Match) (fragment.Fragment, error) {
	f, err := relativeIntervalOf(m, "")
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, errNoCapture
	}
	return f, nil
}

// countFromNow reads a countFromNowPattern match.
func countFromNow(m *regexp2.Match) (qty int, unit fragment.Unit, sign int, err error) {
	for _, form := range []struct {
		prefix string
		sign   int
	}{{"f", 1}, {"b", -1}, {"i", 1}} {
		if !has(m, form.prefix+"unit") {
			continue
		}
		if qty, err = quantity(m, form.prefix); err != nil {
			return 0, "", 0, err
		}
		if unit, err = fragment.ParseUnit(text(m, form.prefix+"unit")); err != nil {
			return 0, "", 0, err
		}
		return qty, unit, form.sign, nil
	}
	return 0, "", 0, errNoCapture
}

func buildCountDays(m *regexp2.Match) (fragment.Fragment, error) {
	qty, unit, sign, err := countFromNow(m)
	if err != nil {
		return nil, err
	}
	c, err := clockOf(m, "c")
	if err != nil {
		return nil, err
	}
	return fragment.Offset{Quantity: qty, Unit: unit, Sign: sign, Clock: c}, nil
}

func buildNow(m *regexp2.Match) (fragment.Fragment, error) {
	if has(m, "now") {
		return fragment.Now{}, nil
	}
	qty, unit, sign, err := countFromNow(m)
	if err != nil {
		return nil, err
	}
	return fragment.Now{Quantity: qty, Unit: unit, Sign: sign}, nil
}

func buildPartOfDay(m *regexp2.Match) (fragment.Fragment, error) {
	if has(m, "tonight") {
		return fragment.PartOfDay{Part: "tonight", Direction: fragment.This}, nil
	}
	part := strings.ToLower(text(m, "pword"))
	switch {
	case has(m, "pam"):
		part = "am"
	case has(m, "ppm"):
		part = "pm"
	}
	return fragment.PartOfDay{Part: part, Direction: fragment.ParseDirection(text(m, "pdir"))}, nil
}

func buildQuarterRule(m *regexp2.Match) (fragment.Fragment, error) {
	f, err := quarterOf(m, "")
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, errNoCapture
	}
	return f, nil
}

func buildMonthRule(m *regexp2.Match) (fragment.Fragment, error) {
	f, err := monthIntervalOf(m, "")
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, errNoCapture
	}
	return f, nil
}

func buildYearRule(m *regexp2.Match) (fragment.Fragment, error) {
	year, err := number(m, "year")
	if err != nil {
		return nil, err
	}
	return fragment.YearInterval{Year: year, Priced: has(m, "price")}, nil
}
