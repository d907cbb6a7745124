// Package resolve turns captured fragments into calendar values.
//
// Each phrase shape has one pure resolver of (fragment, reference). The
// Engine composes every resolver once with its policy: the timezone deferral
// protocol for anything counted from today, the past/future fork for
// undirected weekdays, and exact evaluation for "now".
package resolve

import (
	"github.com/pkg/errors"

	"github.com/hrygo/kronos/plugin/kronos/fragment"
	"github.com/hrygo/kronos/plugin/kronos/value"
)

// Engine resolves fragments. It is immutable after NewEngine and safe for
// concurrent use.
type Engine struct {
	raw    map[fragment.Shape]Resolver
	stages map[fragment.Shape]Stage
}

// NewEngine registers the resolver of every fragment shape.
func NewEngine() *Engine {
	e := &Engine{
		raw:    make(map[fragment.Shape]Resolver),
		stages: make(map[fragment.Shape]Stage),
	}

	e.raw[fragment.ShapeRejected] = typed(resolveRejected)
	e.raw[fragment.ShapeDate] = typed(resolveDate)
	e.raw[fragment.ShapeNamedDay] = typed(resolveNamedDay)
	e.raw[fragment.ShapeWeekday] = typed(resolveWeekday)
	e.raw[fragment.ShapeClock] = typed(resolveClock)
	e.raw[fragment.ShapeDateTime] = typed(resolveDateTime)
	e.raw[fragment.ShapeRelativeInterval] = typed(resolveRelativeInterval)
	e.raw[fragment.ShapeQuarterInterval] = typed(resolveQuarterInterval)
	e.raw[fragment.ShapeMonthInterval] = typed(resolveMonthInterval)
	e.raw[fragment.ShapeYearInterval] = typed(resolveYearInterval)
	e.raw[fragment.ShapeBound] = typed(e.resolveBound)
	e.raw[fragment.ShapeHalf] = typed(e.resolveHalf)
	e.raw[fragment.ShapeRange] = typed(resolveRange)
	e.raw[fragment.ShapeOffset] = typed(resolveOffset)
	e.raw[fragment.ShapeNow] = typed(resolveNow)
	e.raw[fragment.ShapePartOfDay] = typed(resolvePartOfDay)
	e.raw[fragment.ShapeASAP] = typed(resolveASAP)

	for shape, r := range e.raw {
		switch shape {
		case fragment.ShapeNow:
			e.stages[shape] = Exact(r)
		case fragment.ShapeASAP:
			e.stages[shape] = WithTimezoneDeferral(r, asapHour)
		default:
			e.stages[shape] = WithPastFutureFork(WithTimezoneDeferral(r, 0))
		}
	}
	return e
}

// Resolve resolves one fragment. Failures are returned in Resolution.Err and
// never affect other fragments.
func (e *Engine) Resolve(f fragment.Fragment, ref Reference) Resolution {
	if f == nil {
		return Resolution{Err: errors.Wrap(ErrUnsupportedShape, "nil fragment")}
	}
	stage, ok := e.stages[f.Shape()]
	if !ok {
		return Resolution{Err: errors.Wrapf(ErrUnsupportedShape, "%s", f.Shape())}
	}
	return stage(f, ref)
}

// ResolveAll resolves fragments independently against one reference.
func (e *Engine) ResolveAll(fragments []fragment.Fragment, ref Reference) []Resolution {
	out := make([]Resolution, len(fragments))
	for i, f := range fragments {
		out[i] = e.Resolve(f, ref)
	}
	return out
}

// operand resolves the inner fragment of a bound or half phrase with the
// same reference as the outer phrase.
func (e *Engine) operand(f fragment.Fragment, ref Reference) (value.Value, error) {
	if f == nil {
		return nil, errors.Wrap(ErrUnsupportedShape, "missing operand")
	}
	r, ok := e.raw[f.Shape()]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedShape, "operand %s", f.Shape())
	}
	return r(f, ref)
}

// resolveBound projects an interval onto its start, midpoint or end. A named
// day is already a single date and is returned for every edge.
func (e *Engine) resolveBound(f fragment.Bound, ref Reference) (value.Value, error) {
	if nd, ok := f.Of.(fragment.NamedDay); ok {
		return namedDay(nd, ref)
	}
	v, err := e.operand(f.Of, ref)
	if err != nil {
		return nil, err
	}
	iv, ok := v.(value.Interval)
	if !ok {
		return v, nil
	}
	switch f.Edge {
	case fragment.Beginning:
		return iv.Start(), nil
	case fragment.Middle:
		return iv.Midpoint(), nil
	case fragment.End:
		return iv.End(), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedShape, "edge %d", f.Edge)
	}
}

func (e *Engine) resolveHalf(f fragment.Half, ref Reference) (value.Value, error) {
	if nd, ok := f.Of.(fragment.NamedDay); ok {
		return namedDay(nd, ref)
	}
	v, err := e.operand(f.Of, ref)
	if err != nil {
		return nil, err
	}
	iv, ok := v.(value.Interval)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedShape, "half of %s", v.Kind())
	}
	if f.Second {
		return iv.SecondHalf(), nil
	}
	return iv.FirstHalf(), nil
}

// resolveRange reads weekdays inside a range forward. Exclusive bounds on
// whole days move one day inward.
func resolveRange(f fragment.Range, ref Reference) (value.Value, error) {
	var start, end value.Value
	if f.Start != nil {
		v, err := dateTimeSpec(fragment.Direct(*f.Start, fragment.Next).(fragment.DateTime), ref)
		if err != nil {
			return nil, err
		}
		if d, ok := v.(value.Date); ok && f.ExclusiveStart {
			v = d.AddDays(1)
		}
		start = v
	}
	if f.End != nil {
		v, err := dateTimeSpec(fragment.Direct(*f.End, fragment.Next).(fragment.DateTime), ref)
		if err != nil {
			return nil, err
		}
		if d, ok := v.(value.Date); ok && f.ExclusiveEnd {
			v = d.AddDays(-1)
		}
		end = v
	}
	return value.NewInterval(start, end)
}

func resolveOffset(f fragment.Offset, ref Reference) (value.Value, error) {
	var anchor value.Value = ref.Today
	if f.Anchor != nil {
		v, err := resolveDateTime(*f.Anchor, ref)
		if err != nil {
			return nil, err
		}
		anchor = v
	}

	shifted, err := shift(anchor, f.Quantity*f.Sign, f.Unit)
	if err != nil {
		return nil, err
	}
	if f.Clock == nil {
		return shifted, nil
	}

	c, err := clock(*f.Clock, ref)
	if err != nil {
		return nil, err
	}
	switch v := shifted.(type) {
	case value.Date:
		return v.At(c), nil
	case value.DateTime:
		return v.Date().At(c), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedShape, "clock on %s", shifted.Kind())
	}
}
