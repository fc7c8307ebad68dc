// Package httpserver hosts the uploader page and the parsed dataset on a
// loopback address, so the Firebase web SDK runs from an authorized origin.
package httpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/afero"

	"github.com/welling-fm/fireinspect/internal/errors"
	"github.com/welling-fm/fireinspect/internal/logger"
	"github.com/welling-fm/fireinspect/internal/observability"
)

const shutdownTimeout = 5 * time.Second

// Config configures a Server.
type Config struct {
	Listen       string
	Fs           afero.Fs
	PagePath     string
	ArtifactPath string
	Metrics      *observability.Metrics // nil disables /metrics
	Logger       logger.Logger
}

// Server encapsulates the Echo server.
type Server struct {
	Echo   *echo.Echo
	config Config
	log    logger.Logger
}

// New creates the server and registers its routes.
func New(cfg Config) *Server {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Global().Module("httpserver")
	}

	s := &Server{Echo: echo.New(), config: cfg, log: log}
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.configureMiddleware()
	s.initRoutes()
	return s
}

func (s *Server) configureMiddleware() {
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogRemoteIP: true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []logger.Field{
				logger.String("method", v.Method),
				logger.String("uri", v.URI),
				logger.Int("status", v.Status),
				logger.String("remote_ip", v.RemoteIP),
				logger.Duration("latency", v.Latency),
			}
			switch {
			case v.Status >= http.StatusInternalServerError:
				s.log.Error("request failed", append(fields, logger.Error(v.Error))...)
			case v.Status >= http.StatusBadRequest:
				s.log.Warn("request rejected", fields...)
			default:
				s.log.Debug("request served", fields...)
			}
			return nil
		},
	}))
}

func (s *Server) initRoutes() {
	s.Echo.GET("/", s.servePage)
	s.Echo.GET("/data.json", s.serveArtifact)
	s.Echo.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.config.Metrics != nil {
		s.Echo.GET("/metrics", echo.WrapHandler(s.config.Metrics.Handler()))
	}
}

func (s *Server) servePage(c echo.Context) error {
	return s.serveFile(c, s.config.PagePath, echo.MIMETextHTMLCharsetUTF8, "run `fireinspect parse --page` first")
}

func (s *Server) serveArtifact(c echo.Context) error {
	return s.serveFile(c, s.config.ArtifactPath, echo.MIMEApplicationJSON, "run `fireinspect parse` first")
}

// serveFile reads the file on every request so a re-run of parse is picked
// up without a restart.
func (s *Server) serveFile(c echo.Context, path, contentType, hint string) error {
	data, err := afero.ReadFile(s.config.Fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("%s not found: %s", path, hint))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "read failed").SetInternal(err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.Blob(http.StatusOK, contentType, data)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return errors.New(fmt.Errorf("listen on %s: %w", s.config.Listen, err)).
			Component("httpserver").
			Category(errors.CategoryNetwork).
			Build()
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.Echo.Listener = ln
	s.log.Info("serving uploader page", logger.String("url", "http://"+ln.Addr().String()+"/"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Echo.Start("")
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.New(err).
				Component("httpserver").
				Category(errors.CategoryNetwork).
				Build()
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Echo.Shutdown(shutdownCtx); err != nil {
		return errors.New(fmt.Errorf("shutdown: %w", err)).
			Component("httpserver").
			Category(errors.CategoryNetwork).
			Build()
	}
	s.log.Info("server stopped")
	return nil
}
