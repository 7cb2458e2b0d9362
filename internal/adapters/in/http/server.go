package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/config"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/out"
)

const shutdownTimeout = 10 * time.Second

type ServerOptions struct {
	// Отдаётся на /metrics без авторизации, может быть nil
	MetricsHandler http.Handler
	Observer       RequestObserver
}

type Server struct {
	server *http.Server
	logger out.LoggerPort
}

// NewRouter builds the gin engine with the public probes and the
// authenticated schedule API.
func NewRouter(cfg *config.Config, controller *ScheduleController, logger out.LoggerPort, opts ServerOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger, opts.Observer))

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": cfg.App.Version,
		})
	})
	if opts.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}

	controller.RegisterRoutes(router)
	return router
}

func NewServer(cfg *config.Config, handler http.Handler, logger out.LoggerPort) *Server {
	return &Server{
		server: &http.Server{
			Addr:              net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger.WithModule("HttpServer"),
	}
}

// Run blocks until the server stops. A graceful shutdown is not an error.
func (s *Server) Run() error {
	s.logger.Info("http.server.starting", out.LogFields{
		"addr": s.server.Addr,
	})

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("http.server.failed", out.LogFields{
			"error": err.Error(),
		})
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	s.logger.Info("http.server.stopping", out.LogFields{})
	return s.server.Shutdown(ctx)
}
