package v1

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/kronos/plugin/kronos"
	apierrors "github.com/hrygo/kronos/server/internal/errors"
	"github.com/hrygo/kronos/server/internal/observability"
	"github.com/hrygo/kronos/store"
)

const (
	// MaxTextLength is the longest accepted input, in runes.
	MaxTextLength = 10000
	// MaxBatchSize is the largest accepted batch.
	MaxBatchSize = 100
)

// RenderOptions are the per-request rendering options. Unset fields fall
// back to the server profile.
type RenderOptions struct {
	Timezone       string `json:"timezone"`
	PreferFuture   *bool  `json:"prefer_future"`
	IntervalToDate *bool  `json:"interval_to_date"`
}

type ParseDatesRequest struct {
	Text string `json:"text"`
	RenderOptions
}

type ParseDatesResponse struct {
	Matches []kronos.Match `json:"matches"`
}

type BatchParseDatesRequest struct {
	Texts []string `json:"texts"`
	RenderOptions
}

type BatchParseDatesResponse struct {
	Results []ParseDatesResponse `json:"results"`
}

type CreatePendingResolutionRequest struct {
	Text string `json:"text"`
}

type PendingResolutionResponse struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Reference string `json:"reference"`
	Spans     int    `json:"spans"`
	CreatedTs int64  `json:"created_ts"`
}

type FinalizePendingResolutionRequest struct {
	RenderOptions
}

func (s *APIV1Service) options(r RenderOptions) kronos.Options {
	opts := kronos.Options{Timezone: r.Timezone}
	if s.Profile != nil {
		opts.PreferFuture = s.Profile.PreferFuture
		opts.IntervalToDate = s.Profile.IntervalToDate
	}
	if r.PreferFuture != nil {
		opts.PreferFuture = *r.PreferFuture
	}
	if r.IntervalToDate != nil {
		opts.IntervalToDate = *r.IntervalToDate
	}
	return opts
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return apierrors.InvalidArgument("text is required")
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return apierrors.InvalidArgument("text is too long").WithContext("max_length", MaxTextLength)
	}
	return nil
}

func (s *APIV1Service) recordMatches(matches []kronos.Match) {
	failed := 0
	for _, m := range matches {
		if m.Parsed.ParsingError {
			failed++
		}
	}
	s.Metrics.RecordMatches(len(matches), failed)
}

// ParseDates handles POST /api/v1/dates/parse.
func (s *APIV1Service) ParseDates(c echo.Context) error {
	return s.observe(c, "parse", func(ctx context.Context, rc *observability.RequestContext) error {
		var req ParseDatesRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		if err := validateText(req.Text); err != nil {
			return err
		}

		matches, err := s.DateService.Parse(ctx, req.Text, s.options(req.RenderOptions))
		if err != nil {
			return err
		}
		s.recordMatches(matches)
		rc.Info("parsed text",
			slog.Int(observability.LogFieldTextLen, len(req.Text)),
			slog.Int(observability.LogFieldMatches, len(matches)),
			slog.String(observability.LogFieldTimezone, req.Timezone),
		)
		return c.JSON(http.StatusOK, ParseDatesResponse{Matches: nonNil(matches)})
	})
}

// BatchParseDates handles POST /api/v1/dates/parse/batch.
// Texts are parsed concurrently; results keep the request order.
func (s *APIV1Service) BatchParseDates(c echo.Context) error {
	return s.observe(c, "parse_batch", func(ctx context.Context, rc *observability.RequestContext) error {
		var req BatchParseDatesRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		if len(req.Texts) == 0 {
			return apierrors.InvalidArgument("texts is required")
		}
		if len(req.Texts) > MaxBatchSize {
			return apierrors.InvalidArgument("too many texts").WithContext("max_batch_size", MaxBatchSize)
		}
		for i, text := range req.Texts {
			if err := validateText(text); err != nil {
				return err.(*apierrors.APIError).WithContext("index", i)
			}
		}

		opts := s.options(req.RenderOptions)
		results := make([]ParseDatesResponse, len(req.Texts))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.batchConcurrency())
		for i, text := range req.Texts {
			g.Go(func() error {
				matches, err := s.DateService.Parse(gctx, text, opts)
				if err != nil {
					return errors.Wrapf(err, "text %d", i)
				}
				results[i] = ParseDatesResponse{Matches: nonNil(matches)}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		total := 0
		for _, r := range results {
			s.recordMatches(r.Matches)
			total += len(r.Matches)
		}
		rc.Info("parsed batch", slog.Int("texts", len(req.Texts)), slog.Int(observability.LogFieldMatches, total))
		return c.JSON(http.StatusOK, BatchParseDatesResponse{Results: results})
	})
}

// CreatePendingResolution handles POST /api/v1/dates/resolutions. It resolves
// text now and stores the result until the caller's timezone is known.
func (s *APIV1Service) CreatePendingResolution(c echo.Context) error {
	return s.observe(c, "resolve", func(ctx context.Context, rc *observability.RequestContext) error {
		var req CreatePendingResolutionRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		if err := validateText(req.Text); err != nil {
			return err
		}

		pending, err := s.DateService.Resolve(ctx, req.Text)
		if err != nil {
			return err
		}
		payload, err := pending.Payload()
		if err != nil {
			return err
		}
		created, err := s.Store.CreatePendingResolution(ctx, &store.PendingResolution{
			Text:        req.Text,
			ReferenceTs: pending.Reference.Unix(),
			Payload:     payload,
		})
		if err != nil {
			return errors.Wrap(err, "failed to store pending resolution")
		}

		rc.Info("stored pending resolution", slog.String("id", created.ID), slog.Int(observability.LogFieldMatches, len(pending.Spans)))
		return c.JSON(http.StatusCreated, PendingResolutionResponse{
			ID:        created.ID,
			Text:      created.Text,
			Reference: unixTime(created.ReferenceTs).Format("2006-01-02T15:04:05Z"),
			Spans:     len(pending.Spans),
			CreatedTs: created.CreatedTs,
		})
	})
}

// FinalizePendingResolution handles POST /api/v1/dates/resolutions/:id/finalize.
func (s *APIV1Service) FinalizePendingResolution(c echo.Context) error {
	return s.observe(c, "finalize", func(ctx context.Context, rc *observability.RequestContext) error {
		id := c.Param("id")
		var req FinalizePendingResolutionRequest
		if err := bind(c, &req); err != nil {
			return err
		}

		stored, err := s.Store.GetPendingResolution(ctx, &store.FindPendingResolution{ID: &id})
		if err != nil {
			return errors.Wrap(err, "failed to get pending resolution")
		}
		if stored == nil {
			return apierrors.NotFound("pending resolution", id)
		}
		pending, err := kronos.DecodePending(stored.Text, unixTime(stored.ReferenceTs), stored.Payload)
		if err != nil {
			return err
		}
		matches, err := s.DateService.Finalize(pending, s.options(req.RenderOptions))
		if err != nil {
			return err
		}

		s.recordMatches(matches)
		rc.Info("finalized pending resolution", slog.String("id", id), slog.String(observability.LogFieldTimezone, req.Timezone))
		return c.JSON(http.StatusOK, ParseDatesResponse{Matches: nonNil(matches)})
	})
}

func (s *APIV1Service) batchConcurrency() int {
	if s.Profile != nil && s.Profile.BatchConcurrency > 0 {
		return s.Profile.BatchConcurrency
	}
	return 4
}

func nonNil(matches []kronos.Match) []kronos.Match {
	if matches == nil {
		return []kronos.Match{}
	}
	return matches
}
