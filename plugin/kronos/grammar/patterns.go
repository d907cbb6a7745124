package grammar

import (
	"sort"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
)

// Pattern text is assembled from small builders so that each phrase shape can
// embed the shapes it is made of. Builders that capture take a prefix which is
// prepended to every group name; two embeddings of the same shape in one rule
// use different prefixes.

const (
	sp = `\s*`

	monthWord = `(?:jan(?:uary|\.)?|feb(?:ruary|\.)?|mar(?:ch|\.)?|apr(?:il|\.)?|may` +
		`|jun(?:e|\.)?|jul(?:y|\.)?|aug(?:ust|\.)?|sep(?:t(?:ember|\.)?|\.)?` +
		`|oct(?:ober|\.)?|nov(?:ember|\.)?|dec(?:ember|\.)?)`

	weekdayWord = `(?:mon(?:day|\.)?|tue(?:s(?:day|\.)?|\.)?|wed(?:nesday|\.)?` +
		`|thu(?:rs(?:day|\.)?|\.)?|fri(?:day|\.)?|sat(?:urday|\.)?|sun(?:day|\.)?)`

	ordinalWord = `\b(?:[23]0th|[23]?(?:1st|2nd|3rd|[4-9]th)|1\dth)\b`

	intMonth = `\b(?:1[012]|0?[1-9])\b`
	intDay   = `\b(?:3[01]|[12]\d|0?[1-9])\b`
	year4    = `\b\d{4}\b`
	year2    = `\b\d{2}\b`

	amWord = `a(?:\.\s?)?m\.?(?!\w)`
	pmWord = `p(?:\.\s?)?m\.?(?!\w)`

	numberWord = `(?:thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen` +
		`|twenty|thirty|fourty|forty|fifty|sixty|seventy|eighty|ninety` +
		`|zero|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve` +
		`|hundreds?|thousand|million|billion)`
)

// month matches a month name, closed so that "mar" does not match "march" partially.
var month = `\b` + monthWord + `(?!\w)`

var weekday = `\b` + weekdayWord + `(?!\w)`

var (
	dateUnit = kw("year", "years", "month", "months", "week", "weeks", "day", "days")
	timeUnit = kw("hour", "hours", "minute", "minutes", "second", "seconds")
	dir      = kw("last", "this", "next")
)

// kw matches any of words as whole words, longest first.
func kw(words ...string) string {
	sorted := append([]string(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	alts := make([]string, len(sorted))
	for i, w := range sorted {
		p := regexp2.Escape(w)
		if isWordRune(w[0]) {
			p = `\b` + p
		}
		if isWordRune(w[len(w)-1]) {
			p += `\b`
		}
		alts[i] = p
	}
	return alt(alts...)
}

func isWordRune(b byte) bool {
	r := rune(b)
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func alt(ps ...string) string { return `(?:` + strings.Join(ps, "|") + `)` }

func opt(ps ...string) string { return `(?:` + strings.Join(ps, "") + `)?` }

func seq(ps ...string) string { return strings.Join(ps, "") }

func group(name, p string) string { return `(?<` + name + `>` + p + `)` }

// monthToken is a numeric or named month.
func monthToken(name string) string {
	return group(name, alt(intMonth, month))
}

// dayToken is a numeric or ordinal day of month.
func dayToken(name string) string {
	return group(name, alt(intDay, ordinalWord))
}

func yearToken(name string) string {
	return group(name, alt(year4, year2))
}

// clockPattern covers numeric clocks, named times of day and "this time".
//
// Groups: current, named1..3, ohour, ahour/amin/asec/am/pm, fhour/fmin/fsec.
func clockPattern(p string) string {
	oclock := seq(
		group(p+"ohour", `\b(?:1[0-2]|0?[1-9])`), sp,
		alt(`\bo'clock\b`, `\boclock\b`, `\bo clock\b`),
	)
	meridiem := seq(
		group(p+"ahour", `\b(?:1[0-2]|0?[1-9])`),
		opt(`:`, group(p+"amin", `[0-5]\d`), opt(`:`, group(p+"asec", `[0-5]\d`))),
		sp, alt(group(p+"am", amWord), group(p+"pm", pmWord)),
	)
	full := seq(
		group(p+"fhour", `\b(?:2[0-3]|[01]?\d)`),
		`:`, group(p+"fmin", `[0-5]\d`),
		opt(`:`, group(p+"fsec", `[0-5]\d`)),
	)
	zone := kw("eastern", "central", "mountain", "pacific",
		"est", "cst", "mst", "pst", "edt", "cdt", "mdt", "pdt", "et", "ct", "mt", "pt")
	hms := seq(opt(kw("at", "@"), sp), alt(oclock, meridiem, full), opt(sp, zone))

	return alt(
		seq(
			opt(kw("at", "around", "@"), sp),
			alt(
				group(p+"current", seq(kw("this"), sp, kw("time"))),
				hms,
				group(p+"named1", kw("noon", "midnight", "dusk", "dawn", "sunrise", "sunset", "night")),
			),
		),
		seq(opt(opt(kw("in"), sp), kw("the"), sp), group(p+"named2", kw("morning", "afternoon", "evening", "night"))),
		seq(opt(kw("by"), sp), group(p+"named3", kw("eod"))),
	)
}

// datePattern covers explicit dates, optionally preceded by a weekday name.
// A bare ordinal followed by "of next month" is left to the relative interval rule.
//
// Groups: wd, ymdY/ymdM/ymdD, mdyM/mdyD/mdyY, mdM/mdD, dmyD/dmyM, dmD/dmM, wd2/ordD.
func datePattern(p string) string {
	ymd := seq(
		group(p+"ymdY", year4), sp,
		group(p+"ymdS", `[/\-.]`), sp, monthToken(p+"ymdM"), sp, `\k<`+p+`ymdS>`, sp,
		dayToken(p+"ymdD"),
	)
	mdy := seq(
		monthToken(p+"mdyM"), sp, opt(`[/\-.]`), sp, opt(kw("the"), sp), dayToken(p+"mdyD"),
		opt(sp, opt(`[/\-.,]`), sp, yearToken(p+"mdyY"), `(?!\s*:)`),
	)
	mmdd := seq(group(p+"mdM", `\b(?:1[012]|0[1-9])`), group(p+"mdD", `(?:3[01]|[12]\d|0[1-9])\b`))
	dmy := seq(dayToken(p+"dmyD"), sp, opt(alt(kw("of"), `-`), sp), monthToken(p+"dmyM"))
	dmyTight := seq(group(p+"dmD", `\b(?:3[01]|[12]\d|0?[1-9])`), group(p+"dmM", monthWord+`\b`))
	ordinal := seq(
		alt(seq(group(p+"wd2", weekday), sp, opt(kw("the"))), kw("the")), sp,
		group(p+"ordD", ordinalWord),
		`(?!\s*of\s+(?:last|this|next)\s+(?:weeks?|months?)\b)`,
	)

	return alt(
		seq(opt(group(p+"wd", weekday), sp, opt(`,`), sp), alt(ymd, mdy, mmdd, dmy, dmyTight)),
		ordinal,
	)
}

// weekdayRefPattern is a weekday with an optional last/this/next marker.
func weekdayRefPattern(p string) string {
	marker := alt(seq(opt(kw("this"), sp), kw("last")), kw("this"), kw("next"))
	return seq(opt(group(p+"wdir", marker), sp), group(p+"wname", weekday))
}

// dayPattern is an explicit date, a named day or a weekday reference.
func dayPattern(p string) string {
	return alt(
		datePattern(p),
		group(p+"named", kw("yesterday", "today", "tomorrow")),
		weekdayRefPattern(p),
	)
}

// relativeIntervalPattern is "[the 1st of] next month", "this week" or
// "[december] last year".
//
// Groups: rday, rdir, runit, rmonth, rdir2, ryear.
func relativeIntervalPattern(p string) string {
	return alt(
		seq(
			opt(opt(kw("the"), sp), dayToken(p+"rday"), sp, kw("of"), sp),
			group(p+"rdir", dir), sp, group(p+"runit", kw("week", "weeks", "month", "months")),
		),
		seq(
			opt(group(p+"rmonth", month), sp),
			group(p+"rdir2", dir), sp, group(p+"ryear", kw("year", "years")),
		),
	)
}

// dateTimePattern is an optional leading relative interval followed by a
// clock and/or a day in either order.
func dateTimePattern(p string) string {
	return seq(
		opt(relativeIntervalPattern(p+"l"), sp),
		alt(
			seq(clockPattern(p+"c1"), opt(sp, opt(kw("of", "on"), sp), dayPattern(p+"d1"))),
			seq(dayPattern(p+"d2"), opt(sp, opt(`,`), sp, clockPattern(p+"c2"))),
		),
	)
}

// quantityPattern is a count: digits, "a couple (of)", "a"/"an" or a spelled-out number.
func quantityPattern(p string) string {
	spelled := seq(`\b`, numberWord, `(?:[\s-]+(?:and[\s-]+)?`, numberWord, `)*\b`)
	return alt(
		group(p+"qnum", `\b\d{1,6}\b`),
		group(p+"qcouple", seq(opt(kw("a"), sp), kw("couple"), opt(sp, kw("of")))),
		group(p+"qspelled", spelled),
		group(p+"qa", kw("a", "an")),
	)
}

// quarterPattern is "Q3 [2019]", "third quarter [2019]" or "next quarter".
func quarterPattern(p string) string {
	return alt(
		seq(
			alt(
				group(p+"qname", `\bQ[1-4]\b`),
				seq(group(p+"qword", kw("first", "second", "third", "fourth")), sp, kw("quarter", "quarters")),
			),
			opt(sp, yearToken(p+"qyear")),
		),
		seq(group(p+"qdir", dir), sp, kw("quarter", "quarters")),
	)
}

// monthIntervalPattern is a month name with an optional year.
func monthIntervalPattern(p string) string {
	return seq(group(p+"mname", month), opt(sp, opt(`,`), sp, yearToken(p+"myear")))
}

// intervalPattern is anything a bound or half phrase can apply to.
func intervalPattern(p string) string {
	return alt(
		monthIntervalPattern(p),
		quarterPattern(p),
		yearToken(p+"year"),
		relativeIntervalPattern(p),
		group(p+"named", kw("yesterday", "today", "tomorrow")),
		group(p+"unit", dateUnit),
	)
}
