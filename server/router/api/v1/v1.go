package v1

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/kronos/internal/profile"
	"github.com/hrygo/kronos/plugin/kronos"
	apierrors "github.com/hrygo/kronos/server/internal/errors"
	"github.com/hrygo/kronos/server/internal/observability"
	"github.com/hrygo/kronos/server/middleware"
	"github.com/hrygo/kronos/store"
)

type APIV1Service struct {
	Profile     *profile.Profile
	Store       *store.Store
	DateService kronos.DateService
	Metrics     *observability.Metrics
	Logger      *slog.Logger
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, dateService kronos.DateService) *APIV1Service {
	return &APIV1Service{
		Profile:     profile,
		Store:       store,
		DateService: dateService,
		Metrics:     observability.NewMetrics(1000),
		Logger:      slog.Default(),
	}
}

// RegisterRoutes registers the REST handlers with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo, limiter *middleware.RateLimiter) {
	g := echoServer.Group("/api/v1")
	if limiter != nil {
		g.Use(limiter.Middleware())
	}

	g.POST("/dates/parse", s.ParseDates)
	g.POST("/dates/parse/batch", s.BatchParseDates)
	g.POST("/dates/resolutions", s.CreatePendingResolution)
	g.POST("/dates/resolutions/:id/finalize", s.FinalizePendingResolution)
	g.GET("/system/metrics", s.GetMetrics)
}

// observe runs one API operation with a request-scoped logger and metrics.
func (s *APIV1Service) observe(c echo.Context, operation string, fn func(ctx context.Context, rc *observability.RequestContext) error) error {
	requestID := c.Request().Header.Get(echo.HeaderXRequestID)
	var rc *observability.RequestContext
	if requestID != "" {
		rc = observability.NewRequestContextWithID(s.Logger, requestID, operation)
	} else {
		rc = observability.NewRequestContext(s.Logger, operation)
	}
	c.Response().Header().Set(echo.HeaderXRequestID, rc.RequestID)
	ctx := observability.WithRequestContext(c.Request().Context(), rc)

	s.Metrics.RecordRequest(operation)
	err := fn(ctx, rc)
	s.Metrics.RecordDuration(operation, rc.Duration())
	if err == nil {
		rc.Debug("request completed", slog.Int64(observability.LogFieldDuration, rc.Duration().Milliseconds()))
		return nil
	}

	s.Metrics.RecordFailure(operation)
	apiErr := toAPIError(err)
	if apiErr.Code == apierrors.ErrCodeInternal {
		rc.Error("request failed", err, slog.String(observability.LogFieldErrorCode, string(apiErr.Code)))
	} else {
		rc.Warn("request rejected", slog.String(observability.LogFieldErrorCode, string(apiErr.Code)), slog.String("error", err.Error()))
	}
	return c.JSON(apiErr.HTTPStatus(), ErrorResponse{Code: string(apiErr.Code), Message: apiErr.Message})
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func toAPIError(err error) *apierrors.APIError {
	var apiErr *apierrors.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, kronos.ErrInvalidTimezone):
		return apierrors.Wrap(err, apierrors.ErrCodeInvalidTimezone, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apierrors.ContextCanceled(err)
	default:
		return apierrors.Internal("internal error", err)
	}
}

// bind decodes the request body, reporting malformed input as INVALID_ARGUMENT.
func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code == http.StatusBadRequest {
			return apierrors.InvalidArgument("malformed request body")
		}
		return apierrors.InvalidArgument(err.Error())
	}
	return nil
}

func unixTime(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}
