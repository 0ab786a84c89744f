package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"refcontest/internal/config"
	"refcontest/internal/http-server/handlers/contest"
	herrors "refcontest/internal/http-server/handlers/errors"
	"refcontest/internal/http-server/handlers/health"
	"refcontest/internal/http-server/handlers/leaderboard"
	"refcontest/internal/http-server/handlers/participant"
	"refcontest/internal/http-server/middleware/authenticate"
	"refcontest/internal/http-server/middleware/timeout"
	"refcontest/lib/sl"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	leaderboard.Core
	contest.Core
	participant.Core
}

// NewRouter builds the reporting API routes; /metrics and /health are public.
func NewRouter(conf *config.Config, log *slog.Logger, handler Handler, gatherer prometheus.Gatherer) http.Handler {
	router := chi.NewRouter()
	router.Use(timeout.Timeout(5 * time.Second))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(herrors.NotFound(log))
	router.MethodNotAllowed(herrors.NotAllowed(log))

	router.Get("/health", health.Health(handler))
	if gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	router.Route("/v1", func(rootApi chi.Router) {
		rootApi.Use(authenticate.New(log, handler))
		rootApi.Get("/leaderboard", leaderboard.Top(log, handler, conf.Contest.LeaderboardSize))
		rootApi.Get("/contest", contest.Status(log, handler))
		rootApi.Get("/participants/{id}", participant.Stats(log, handler))
	})
	return router
}

func New(conf *config.Config, log *slog.Logger, handler Handler, gatherer prometheus.Gatherer) *Server {
	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	return &Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
		httpServer: &http.Server{
			Handler:      NewRouter(conf, log, handler, gatherer),
			ErrorLog:     httpLog,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	serverAddress := fmt.Sprintf("%s:%s", s.conf.Listen.BindIp, s.conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	s.log.Info("starting api server", slog.String("address", serverAddress))

	if err = s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
