package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/kronos/internal/profile"
	"github.com/hrygo/kronos/plugin/kronos"
	"github.com/hrygo/kronos/server/middleware"
	apiv1 "github.com/hrygo/kronos/server/router/api/v1"
	"github.com/hrygo/kronos/server/runner/prune"
	"github.com/hrygo/kronos/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	apiV1      *apiv1.APIV1Service
	limiter    *middleware.RateLimiter
	runnerStop context.CancelFunc
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	dateService, err := kronos.NewService(kronos.Config{
		DefaultTimezone: profile.DefaultTimezone,
		CacheSize:       profile.CacheSize,
		CacheTTL:        profile.CacheTTL,
		MatchTimeout:    profile.MatchTimeout,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create date service")
	}

	s := &Server{
		Profile: profile,
		Store:   store,
		limiter: middleware.NewRateLimiter(profile.RateLimit, profile.RateBurst),
	}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(echomiddleware.Recover())
	echoServer.Use(echomiddleware.BodyLimit("1M"))
	s.echoServer = echoServer

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	s.apiV1 = apiv1.NewAPIV1Service(profile, store, dateService)
	s.apiV1.RegisterRoutes(echoServer, s.limiter)

	slog.Debug("server initialized", slog.String("mode", profile.Mode), slog.String("driver", profile.Driver))
	return s, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrap(err, "failed to listen")
	}

	runnerCtx, cancel := context.WithCancel(ctx)
	s.runnerStop = cancel
	go prune.NewRunner(s.Store, s.Profile.PendingTTL, 10*time.Minute, s.limiter).Run(runnerCtx)

	s.echoServer.Listener = listener
	go func() {
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start echo server", "error", err)
		}
	}()
	slog.Info("kronos server started", slog.String("address", listener.Addr().String()))
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	slog.Info("server shutting down")

	if s.runnerStop != nil {
		s.runnerStop()
	}
	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close database", slog.String("error", err.Error()))
	}

	slog.Info("kronos stopped properly")
}
