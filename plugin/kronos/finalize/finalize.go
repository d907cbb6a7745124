// Package finalize turns resolutions into caller-facing output once the
// caller's UTC offset is known.
package finalize

import (
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/kronos/plugin/kronos/resolve"
	"github.com/hrygo/kronos/plugin/kronos/value"
)

const exactLayout = "2006-01-02 15:04:05-07:00"

// Policy selects among the readings a resolution carries.
type Policy struct {
	// PreferFuture picks the future branch of forked weekday references.
	PreferFuture bool
	// IntervalToDate replaces an interval by its start.
	IntervalToDate bool
}

// Interval is the serialized form of a value.Interval.
type Interval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Output is exactly one of Date, DateTime, Interval or ParsingError.
type Output struct {
	Date         string    `json:"date,omitempty"`
	DateTime     string    `json:"datetime,omitempty"`
	Interval     *Interval `json:"interval,omitempty"`
	ParsingError bool      `json:"datetime_parsing_error,omitempty"`

	// Err is the resolution failure behind ParsingError.
	Err error `json:"-"`
}

// Finalize renders every resolution for a caller at offset from UTC.
func Finalize(resolutions []resolve.Resolution, offset time.Duration, policy Policy) []Output {
	out := make([]Output, len(resolutions))
	for i, r := range resolutions {
		out[i] = One(r, offset, policy)
	}
	return out
}

// One renders a single resolution.
func One(r resolve.Resolution, offset time.Duration, policy Policy) Output {
	r = r.Branch(policy.PreferFuture)
	if r.Err != nil {
		return failed(r.Err)
	}
	if r.Value == nil {
		return failed(errors.New("empty resolution"))
	}

	v := r.Collapse(offset)
	if r.Exact {
		dt, ok := v.(value.DateTime)
		if !ok {
			return failed(errors.Errorf("exact resolution of kind %s", v.Kind()))
		}
		zone := time.FixedZone("", int(offset/time.Second))
		return Output{DateTime: dt.Time().In(zone).Format(exactLayout)}
	}

	if iv, ok := v.(value.Interval); ok && policy.IntervalToDate {
		v = iv.Start()
	}

	switch v := v.(type) {
	case value.Date:
		return Output{Date: v.String()}
	case value.DateTime:
		return Output{DateTime: v.String()}
	case value.Interval:
		return Output{Interval: &Interval{Start: v.StartString(), End: v.EndString()}}
	default:
		return failed(errors.Errorf("unsupported output kind %s", v.Kind()))
	}
}

func failed(err error) Output {
	return Output{ParsingError: true, Err: err}
}
