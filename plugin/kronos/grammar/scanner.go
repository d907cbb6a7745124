// Package grammar recognizes date and time phrases in free text.
//
// A Scanner walks the text left to right. At each position every rule reports
// its next match; the earliest one wins, ties going to the rule listed first.
// Scanning resumes after the winning match, so reported spans never overlap.
package grammar

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/kronos/plugin/kronos/fragment"
)

// DefaultMatchTimeout bounds the time one rule may spend on one match attempt.
const DefaultMatchTimeout = 250 * time.Millisecond

// Match is one recognized span. Start and End are offsets in runes.
type Match struct {
	Start    int
	End      int
	Text     string
	Fragment fragment.Fragment
}

// Scanner is immutable and safe for concurrent use.
type Scanner struct {
	rules []*rule
}

// NewScanner compiles the grammar. A non-positive timeout selects DefaultMatchTimeout.
func NewScanner(timeout time.Duration) *Scanner {
	if timeout <= 0 {
		timeout = DefaultMatchTimeout
	}
	return &Scanner{rules: newRules(timeout)}
}

type candidate struct {
	start, end int
	frag       fragment.Fragment
	none       bool
}

// find returns the first match of r starting at or after from whose
// captures build a fragment.
func (r *rule) find(runes []rune, from int) (candidate, error) {
	for from <= len(runes) {
		m, err := r.re.FindRunesMatchStartingAt(runes, from)
		if err != nil {
			return candidate{}, errors.Wrapf(err, "rule %s", r.name)
		}
		if m == nil {
			return candidate{none: true}, nil
		}
		f, err := r.build(m)
		if err == nil && f != nil {
			return candidate{start: m.Index, end: m.Index + m.Length, frag: f}, nil
		}
		from = m.Index + 1
	}
	return candidate{none: true}, nil
}

// Scan returns every recognized span of text in order.
func (s *Scanner) Scan(ctx context.Context, text string) ([]Match, error) {
	runes := []rune(text)
	next := make([]*candidate, len(s.rules))

	var out []Match
	for pos := 0; pos < len(runes); {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		best := -1
		for i, r := range s.rules {
			c := next[i]
			if c == nil || (!c.none && c.start < pos) {
				found, err := r.find(runes, pos)
				if err != nil {
					return nil, err
				}
				c = &found
				next[i] = c
			}
			if c.none {
				continue
			}
			if best < 0 || c.start < next[best].start {
				best = i
			}
		}
		if best < 0 {
			break
		}

		c := next[best]
		out = append(out, Match{
			Start:    c.start,
			End:      c.end,
			Text:     string(runes[c.start:c.end]),
			Fragment: c.frag,
		})
		pos = max(c.end, c.start+1)
	}
	return out, nil
}
