// Package kronos finds date and time phrases in free text and resolves them
// against the moment of the call, in the caller's timezone.
package kronos

import (
	"context"

	"github.com/hrygo/kronos/plugin/kronos/finalize"
)

// DateService defines the date parsing service interface.
// Consumers: the HTTP API and the CLI.
type DateService interface {
	// Parse scans text, resolves every phrase at the current instant and
	// renders it for opts.Timezone.
	Parse(ctx context.Context, text string, opts Options) ([]Match, error)

	// Resolve scans and resolves text without a timezone. The result can be
	// stored and finalized once the caller's timezone is known.
	Resolve(ctx context.Context, text string) (*Pending, error)

	// Finalize renders a pending result for opts.Timezone.
	Finalize(pending *Pending, opts Options) ([]Match, error)
}

// Options control how resolutions are rendered.
type Options struct {
	// Timezone is an IANA name or fixed offset. Empty selects the service default.
	Timezone       string `json:"timezone,omitempty"`
	PreferFuture   bool   `json:"prefer_future,omitempty"`
	IntervalToDate bool   `json:"interval_to_date,omitempty"`
}

// Policy returns the finalize policy selected by the options.
func (o Options) Policy() finalize.Policy {
	return finalize.Policy{PreferFuture: o.PreferFuture, IntervalToDate: o.IntervalToDate}
}

// Match is one recognized phrase. Start and End are rune offsets into the input.
type Match struct {
	Text   string          `json:"text"`
	Start  int             `json:"start"`
	End    int             `json:"end"`
	Parsed finalize.Output `json:"parsed"`
}
