package resolve

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/hrygo/kronos/plugin/kronos/value"
)

type wireShift struct {
	DaysDelta int         `json:"days_delta"`
	Threshold int         `json:"tz_threshold"`
	Alt       *value.Wire `json:"alt"`
}

type wireResolution struct {
	Value  *value.Wire     `json:"value,omitempty"`
	Shift  *wireShift      `json:"shift,omitempty"`
	Exact  bool            `json:"exact,omitempty"`
	Past   *wireResolution `json:"past,omitempty"`
	Future *wireResolution `json:"future,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// MarshalResolutions encodes resolutions so they can be finalized later,
// once the caller's timezone is known. Errors keep only their message.
func MarshalResolutions(resolutions []Resolution) ([]byte, error) {
	out := make([]*wireResolution, len(resolutions))
	for i, r := range resolutions {
		out[i] = toWire(r)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal resolutions")
	}
	return data, nil
}

// UnmarshalResolutions decodes the output of MarshalResolutions.
func UnmarshalResolutions(data []byte) ([]Resolution, error) {
	var in []*wireResolution
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal resolutions")
	}
	out := make([]Resolution, len(in))
	for i, w := range in {
		r, err := fromWire(w)
		if err != nil {
			return nil, errors.Wrapf(err, "resolution %d", i)
		}
		out[i] = r
	}
	return out, nil
}

func toWire(r Resolution) *wireResolution {
	w := &wireResolution{Exact: r.Exact}
	switch {
	case r.Err != nil:
		w.Error = r.Err.Error()
	case r.Forked():
		w.Past, w.Future = toWire(*r.Past), toWire(*r.Future)
	default:
		w.Value = value.Encode(r.Value)
		if r.Shift != nil {
			w.Shift = &wireShift{DaysDelta: r.Shift.DaysDelta, Threshold: r.Shift.Threshold, Alt: value.Encode(r.Shift.Alt)}
		}
	}
	return w
}

func fromWire(w *wireResolution) (Resolution, error) {
	if w == nil {
		return Resolution{}, errors.New("empty resolution")
	}
	if w.Error != "" {
		return Resolution{Err: errors.New(w.Error)}, nil
	}
	if w.Past != nil || w.Future != nil {
		past, err := fromWire(w.Past)
		if err != nil {
			return Resolution{}, err
		}
		future, err := fromWire(w.Future)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Past: &past, Future: &future}, nil
	}

	v, err := value.Decode(w.Value)
	if err != nil {
		return Resolution{}, err
	}
	r := Resolution{Deferred: Deferred{Value: v}, Exact: w.Exact}
	if w.Shift != nil {
		alt, err := value.Decode(w.Shift.Alt)
		if err != nil {
			return Resolution{}, err
		}
		r.Shift = &Shift{DaysDelta: w.Shift.DaysDelta, Threshold: w.Shift.Threshold, Alt: alt}
	}
	return r, nil
}
