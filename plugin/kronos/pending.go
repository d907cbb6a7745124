package kronos

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/kronos/plugin/kronos/resolve"
)

// Span locates a phrase in the input text.
type Span struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Pending holds resolutions whose rendering waits for the caller's timezone.
// Spans and Resolutions are parallel.
type Pending struct {
	Text        string
	Reference   time.Time
	Spans       []Span
	Resolutions []resolve.Resolution
}

type pendingPayload struct {
	Spans       []Span          `json:"spans"`
	Resolutions json.RawMessage `json:"resolutions"`
}

// Payload encodes spans and resolutions for storage.
func (p *Pending) Payload() ([]byte, error) {
	res, err := resolve.MarshalResolutions(p.Resolutions)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(pendingPayload{Spans: p.Spans, Resolutions: res})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal pending payload")
	}
	return data, nil
}

// DecodePending rebuilds a Pending from its stored parts.
func DecodePending(text string, reference time.Time, payload []byte) (*Pending, error) {
	var p pendingPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal pending payload")
	}
	resolutions, err := resolve.UnmarshalResolutions(p.Resolutions)
	if err != nil {
		return nil, err
	}
	if len(resolutions) != len(p.Spans) {
		return nil, errors.Errorf("pending payload has %d spans and %d resolutions", len(p.Spans), len(resolutions))
	}
	return &Pending{Text: text, Reference: reference, Spans: p.Spans, Resolutions: resolutions}, nil
}
