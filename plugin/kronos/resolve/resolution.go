package resolve

import (
	"time"

	"github.com/hrygo/kronos/plugin/kronos/fragment"
	"github.com/hrygo/kronos/plugin/kronos/value"
)

// Reference is the "now" of one resolution call. Now is the true instant in
// UTC; Today is the calendar day relative phrases count from. The alternate
// evaluation of the deferral protocol moves Today and leaves Now alone.
type Reference struct {
	Now   time.Time
	Today value.Date
}

// NewReference captures now at second precision.
func NewReference(now time.Time) Reference {
	now = now.UTC().Truncate(time.Second)
	return Reference{Now: now, Today: value.DateOf(now)}
}

// Clock returns the time of day of the true instant.
func (r Reference) Clock() value.TimeOfDay {
	return value.DateTimeOf(r.Now).Clock()
}

func (r Reference) shiftDays(n int) Reference {
	r.Today = r.Today.AddDays(n)
	return r
}

// Shift records how a value changes when the caller's calendar day differs
// from the reference day.
type Shift struct {
	// DaysDelta is alt minus true in days (interval start for intervals).
	DaysDelta int
	// Threshold is the caller UTC offset, in hours, from which Alt applies.
	// Positive thresholds apply at or above, negative ones at or below.
	Threshold int
	// Alt is the value evaluated on the shifted day.
	Alt value.Value
}

// Deferred is a value whose final form may depend on the caller's timezone.
type Deferred struct {
	Value value.Value
	Shift *Shift
}

// Collapse returns the value as seen by a caller at the given UTC offset.
func (d Deferred) Collapse(offset time.Duration) value.Value {
	if d.Shift == nil {
		return d.Value
	}
	hours := offset.Hours()
	threshold := float64(d.Shift.Threshold)
	if (threshold > 0 && hours >= threshold) || (threshold < 0 && hours <= threshold) {
		return d.Shift.Alt
	}
	return d.Value
}

// Resolution is the result of resolving one fragment. Exactly one of
// {Err, Past/Future pair, Deferred} is meaningful.
type Resolution struct {
	Deferred
	// Exact marks absolute instants ("now") that are rendered in the caller's offset.
	Exact  bool
	Past   *Resolution
	Future *Resolution
	Err    error
}

// Forked reports whether r holds a past/future pair.
func (r Resolution) Forked() bool {
	return r.Past != nil && r.Future != nil
}

// Branch selects the future or past reading of a forked resolution.
func (r Resolution) Branch(preferFuture bool) Resolution {
	if !r.Forked() {
		return r
	}
	if preferFuture {
		return *r.Future
	}
	return *r.Past
}

// Resolver turns a fragment into a value against a reference.
type Resolver func(f fragment.Fragment, ref Reference) (value.Value, error)

// Stage is a resolver composed with its deferral and forking policy.
type Stage func(f fragment.Fragment, ref Reference) Resolution

// Exact wraps resolvers of absolute instants; they are never deferred.
func Exact(r Resolver) Stage {
	return func(f fragment.Fragment, ref Reference) Resolution {
		v, err := r(f, ref)
		if err != nil {
			return Resolution{Err: err}
		}
		return Resolution{Deferred: Deferred{Value: v}, Exact: true}
	}
}

// WithTimezoneDeferral evaluates r at the reference day and at the adjacent
// day a caller in another timezone might be on. With diff the reference hour
// minus anchorHour (mod 24), the adjacent day is the next one when diff >= 12
// and the previous one otherwise.
func WithTimezoneDeferral(r Resolver, anchorHour int) Stage {
	return func(f fragment.Fragment, ref Reference) Resolution {
		diff := ((ref.Now.Hour()-anchorHour)%24 + 24) % 24
		days, threshold := -1, -diff-1
		if diff >= 12 {
			days, threshold = 1, 24-diff
		}

		trueValue, trueErr := r(f, ref)
		altValue, altErr := r(f, ref.shiftDays(days))
		switch {
		case trueErr != nil && altErr != nil:
			return Resolution{Err: trueErr}
		case trueErr != nil:
			return Resolution{Err: &ambiguityError{cause: trueErr}}
		case altErr != nil:
			return Resolution{Err: &ambiguityError{cause: altErr}}
		}

		if value.Equal(trueValue, altValue) {
			return Resolution{Deferred: Deferred{Value: trueValue}}
		}
		return Resolution{Deferred: Deferred{
			Value: trueValue,
			Shift: &Shift{
				DaysDelta: value.DaysBetween(trueValue, altValue),
				Threshold: threshold,
				Alt:       altValue,
			},
		}}
	}
}

// WithPastFutureFork resolves undirected weekday fragments twice, once
// pointed backward and once forward. Other fragments pass straight through.
func WithPastFutureFork(s Stage) Stage {
	return func(f fragment.Fragment, ref Reference) Resolution {
		if !fragment.IsUndirected(f) {
			return s(f, ref)
		}
		past := s(fragment.Direct(f, fragment.Last), ref)
		future := s(fragment.Direct(f, fragment.Next), ref)
		return Resolution{Past: &past, Future: &future}
	}
}
