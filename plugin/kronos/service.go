package kronos

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/kronos/plugin/kronos/finalize"
	"github.com/hrygo/kronos/plugin/kronos/grammar"
	"github.com/hrygo/kronos/plugin/kronos/resolve"
	"github.com/hrygo/kronos/server/timezone"
	"github.com/hrygo/kronos/store/cache"
)

// ErrInvalidTimezone is returned for an unknown timezone option.
var ErrInvalidTimezone = errors.New("invalid timezone")

// Config configures a Service. Zero values select defaults.
type Config struct {
	DefaultTimezone string
	CacheSize       int
	CacheTTL        time.Duration
	MatchTimeout    time.Duration
	Logger          *slog.Logger
	// Now overrides the clock used as the resolution reference.
	Now func() time.Time
}

// Service implements DateService with the rule grammar and resolver engine.
type Service struct {
	scanner    *grammar.Scanner
	engine     *resolve.Engine
	scans      *cache.LRUCache[[]grammar.Match]
	defaultLoc *time.Location
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a new date service.
func NewService(cfg Config) (*Service, error) {
	loc, err := timezone.ParseTimezone(cfg.DefaultTimezone)
	if err != nil {
		return nil, errors.Wrap(err, "default timezone")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		scanner:    grammar.NewScanner(cfg.MatchTimeout),
		engine:     resolve.NewEngine(),
		scans:      cache.NewLRUCache[[]grammar.Match](cfg.CacheSize, cfg.CacheTTL),
		defaultLoc: loc,
		logger:     logger,
		now:        now,
	}, nil
}

// Scan returns the phrases recognized in text. Results are cached by text.
func (s *Service) Scan(ctx context.Context, text string) ([]grammar.Match, error) {
	key := cache.Key(text)
	if matches, ok := s.scans.Get(key); ok {
		return matches, nil
	}
	matches, err := s.scanner.Scan(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan text")
	}
	s.scans.Set(key, matches)
	s.logger.Debug("scanned text", slog.Int("runes", len([]rune(text))), slog.Int("matches", len(matches)))
	return matches, nil
}

// Parse scans, resolves and renders text in one call.
func (s *Service) Parse(ctx context.Context, text string, opts Options) ([]Match, error) {
	loc, err := s.location(opts.Timezone)
	if err != nil {
		return nil, err
	}
	pending, err := s.Resolve(ctx, text)
	if err != nil {
		return nil, err
	}
	return s.render(pending, loc, opts.Policy()), nil
}

// Resolve scans text and resolves every phrase at the current instant.
func (s *Service) Resolve(ctx context.Context, text string) (*Pending, error) {
	ref := s.now().UTC()
	matches, err := s.Scan(ctx, text)
	if err != nil {
		return nil, err
	}

	pending := &Pending{
		Text:        text,
		Reference:   ref,
		Spans:       make([]Span, len(matches)),
		Resolutions: make([]resolve.Resolution, len(matches)),
	}
	reference := resolve.NewReference(ref)
	failed := 0
	for i, m := range matches {
		pending.Spans[i] = Span{Text: m.Text, Start: m.Start, End: m.End}
		r := s.engine.Resolve(m.Fragment, reference)
		if r.Err != nil {
			failed++
			s.logger.Debug("phrase did not resolve", slog.String("phrase", m.Text), slog.String("error", r.Err.Error()))
		}
		pending.Resolutions[i] = r
	}
	s.logger.Debug("resolved text", slog.Int("matches", len(matches)), slog.Int("failed", failed))
	return pending, nil
}

// Finalize renders a pending result for the caller's timezone.
func (s *Service) Finalize(pending *Pending, opts Options) ([]Match, error) {
	if pending == nil {
		return nil, errors.New("nil pending resolution")
	}
	if len(pending.Spans) != len(pending.Resolutions) {
		return nil, errors.Errorf("pending resolution has %d spans and %d resolutions", len(pending.Spans), len(pending.Resolutions))
	}
	loc, err := s.location(opts.Timezone)
	if err != nil {
		return nil, err
	}
	return s.render(pending, loc, opts.Policy()), nil
}

func (s *Service) render(p *Pending, loc *time.Location, policy finalize.Policy) []Match {
	offset := timezone.OffsetAt(loc, p.Reference)
	outputs := finalize.Finalize(p.Resolutions, offset, policy)

	out := make([]Match, len(outputs))
	for i, o := range outputs {
		span := p.Spans[i]
		out[i] = Match{Text: span.Text, Start: span.Start, End: span.End, Parsed: o}
	}
	return out
}

func (s *Service) location(tz string) (*time.Location, error) {
	if tz == "" {
		return s.defaultLoc, nil
	}
	loc, err := timezone.ParseTimezone(tz)
	if err != nil {
		return nil, errors.WithMessagef(ErrInvalidTimezone, "%q", tz)
	}
	return loc, nil
}

// CacheStats reports the scan cache counters.
func (s *Service) CacheStats() cache.Stats {
	return s.scans.Stats()
}

var _ DateService = (*Service)(nil)
