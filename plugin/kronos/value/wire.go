package value

import (
	"time"

	"github.com/pkg/errors"
)

// Wire is the persisted form of a Value.
type Wire struct {
	Kind  string `json:"kind"`
	Value string `json:"value,omitempty"`
	Start *Wire  `json:"start,omitempty"`
	End   *Wire  `json:"end,omitempty"`
}

// Encode converts v to its wire form. A nil value encodes to nil.
func Encode(v Value) *Wire {
	switch v := v.(type) {
	case nil:
		return nil
	case Interval:
		return &Wire{Kind: KindInterval.String(), Start: Encode(v.start), End: Encode(v.end)}
	default:
		return &Wire{Kind: v.Kind().String(), Value: v.String()}
	}
}

// Decode is the inverse of Encode.
func Decode(w *Wire) (Value, error) {
	if w == nil {
		return nil, nil
	}
	switch w.Kind {
	case KindDate.String():
		t, err := time.Parse(dateLayout, w.Value)
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode date")
		}
		return DateOf(t), nil
	case KindDateTime.String():
		t, err := time.Parse(dateTimeLayout, w.Value)
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode datetime")
		}
		return DateTimeOf(t), nil
	case KindTimeOfDay.String():
		t, err := time.Parse(clockLayout, w.Value)
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode time of day")
		}
		return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
	case KindInterval.String():
		start, err := Decode(w.Start)
		if err != nil {
			return nil, err
		}
		end, err := Decode(w.End)
		if err != nil {
			return nil, err
		}
		return NewInterval(start, end)
	default:
		return nil, errors.Errorf("unknown value kind %q", w.Kind)
	}
}
