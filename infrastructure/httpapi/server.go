// Package httpapi expõe o Application via HTTP com echo.
package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/lb-conn/xml-signer/application/usecases"
	"github.com/lb-conn/xml-signer/config"
)

type Router struct {
	Routes []*echo.Route
	Root   *echo.Group
	APIV1  *echo.Group
}

// Server keeps the echo instance and the dependencies used by the handlers.
type Server struct {
	Echo   *echo.Echo
	Router *Router

	Config config.Server
	App    *usecases.Application

	// MetricsHandler serve /metrics; nil quando as métricas estão desabilitadas.
	MetricsHandler http.Handler
}

// NewServer monta o echo com middlewares e rotas.
func NewServer(cfg config.Server, app *usecases.Application, metricsHandler http.Handler) *Server {
	s := &Server{
		Config:         cfg,
		App:            app,
		MetricsHandler: metricsHandler,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.DevMode
	e.Server.ReadTimeout = cfg.HTTP.ReadTimeout
	e.Server.WriteTimeout = cfg.HTTP.WriteTimeout
	e.HTTPErrorHandler = HTTPErrorHandler

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(contextLogger())
	e.Use(middleware.Recover())
	if cfg.HTTP.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.HTTP.BodyLimit))
	}

	s.Echo = e
	s.Router = &Router{
		Root: e.Group(""),
	}
	if cfg.HTTP.BasePath != "" && cfg.HTTP.BasePath != "/" {
		s.Router.APIV1 = e.Group(cfg.HTTP.BasePath)
	}

	s.Router.Routes = registerRoutes(s)
	return s
}

func (s *Server) Start() error {
	log.Info().Str("address", s.Config.HTTP.ListenAddress).Msg("Starting HTTP server")

	if err := s.Echo.Start(s.Config.HTTP.ListenAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to start echo server")
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Warn().Msg("Shutting down server")

	if err := s.Echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Failed to shutdown echo server")
		return err
	}
	return nil
}
