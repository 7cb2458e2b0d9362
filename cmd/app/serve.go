package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/adapters/in/http"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/adapters/in/rabbitmq"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/out"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the schedule API and the cache listener",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func runServer(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, true, nil)
	if err != nil {
		return err
	}
	defer a.close()

	a.service.Subscribe(func(event domain.ScheduleEvent) {
		a.logger.Debug("app.schedule.resynced", out.LogFields{
			"operation": event.Operation,
			"date":      event.Date.String(),
			"slots":     len(event.Slots),
		})
	})

	// Настройка Gin в зависимости от окружения
	if a.cfg.IsNotLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	controller := http.NewScheduleController(a.service, a.cfg)
	router := http.NewRouter(a.cfg, controller, a.logger, http.ServerOptions{
		MetricsHandler: a.metrics.Handler(),
		Observer:       a.metrics,
	})
	server := http.NewServer(a.cfg, router, a.logger)

	// Настройка RabbitMQ слушателя только если он включен
	listener, err := rabbitmq.NewCacheHitListener(a.service, a.cfg, a.logger)
	if err != nil {
		a.logger.Error("app.rabbitmq.init_failed", out.LogFields{
			"error": err.Error(),
		})
		return err
	}
	if listener != nil {
		if err := listener.Start(ctx); err != nil {
			a.logger.Error("app.rabbitmq.start_failed", out.LogFields{
				"error": err.Error(),
			})
			return err
		}
		defer func() {
			if err := listener.Stop(); err != nil {
				a.logger.Error("app.rabbitmq.stop_failed", out.LogFields{
					"error": err.Error(),
				})
			}
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Run()
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("app.shutdown.initiated", out.LogFields{})

	if err := server.Shutdown(context.Background()); err != nil {
		a.logger.Error("app.shutdown.failed", out.LogFields{
			"error": err.Error(),
		})
		return err
	}

	// Дополнительное логирование для разработки
	if a.cfg.IsLocal() {
		a.logger.Debug("app.config.debug", out.LogFields{
			"http": map[string]string{
				"host": a.cfg.HTTP.Host,
				"port": a.cfg.HTTP.Port,
			},
			"store": map[string]interface{}{
				"driver": a.cfg.Store.Driver,
				"url":    a.cfg.Store.URL,
			},
			"rabbitmq": map[string]interface{}{
				"enabled": a.cfg.RabbitMQ.Enabled,
				"queue":   a.cfg.RabbitMQ.Queue,
			},
			"cache": map[string]interface{}{
				"enabled": a.cfg.Cache.Enabled,
				"size":    a.cfg.Cache.ScheduleSize,
			},
		})
	}

	return nil
}
