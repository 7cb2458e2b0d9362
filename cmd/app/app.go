package main

import (
	"context"
	"fmt"
	"io"
	_ "time/tzdata"

	"github.com/suchimauz/practitioner-slot-scheduler/internal/adapters/out/cache"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/adapters/out/logger"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/adapters/out/metrics"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/adapters/out/rabbitmq"
	httpstore "github.com/suchimauz/practitioner-slot-scheduler/internal/adapters/out/store/http"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/adapters/out/store/memory"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/adapters/out/store/postgres"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/config"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/out"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/services/schedule_service"
)

// app holds the wired adapters shared by the commands.
type app struct {
	cfg       *config.Config
	logger    out.LoggerPort
	metrics   *metrics.PrometheusAdapter
	service   *schedule_service.ScheduleService
	publisher *rabbitmq.ScheduleEventPublisher
	closers   []func()
}

func loadConfig(logWriter io.Writer) (*config.Config, out.LoggerPort, error) {
	// Загрузка конфигурации
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Инициализация логгера с таймзоной
	mainLogger := logger.NewZerologLogger(logger.Options{
		Level:    cfg.App.LogLevel,
		Timezone: cfg.App.Timezone,
		Pretty:   cfg.IsLocal(),
		Writer:   logWriter,
	})

	return cfg, mainLogger, nil
}

func newStore(ctx context.Context, cfg *config.Config, log out.LoggerPort) (out.AppointmentStorePort, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverHttp:
		return httpstore.NewHttpStoreAdapter(cfg, log), func() {}, nil
	case config.StoreDriverPostgres:
		store, err := postgres.NewPostgresStoreAdapter(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return memory.NewMemoryStoreAdapter(), func() {}, nil
	}
}

// newApp wires the store, cache, metrics and the event publisher into the
// schedule service. publish=false skips the RabbitMQ publisher. A nil
// logWriter logs to stdout.
func newApp(ctx context.Context, publish bool, logWriter io.Writer) (*app, error) {
	cfg, mainLogger, err := loadConfig(logWriter)
	if err != nil {
		return nil, err
	}
	log := mainLogger.WithModule("Main")

	log.Info("app.starting", out.LogFields{
		"version":         cfg.App.Version,
		"env":             cfg.App.Env,
		"timezone":        cfg.App.Timezone,
		"storeDriver":     cfg.Store.Driver,
		"rabbitmqEnabled": cfg.RabbitMQ.Enabled,
		"cacheEnabled":    cfg.Cache.Enabled,
	})

	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	template, err := cfg.ScheduleTemplate()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: log}

	store, closeStore, err := newStore(ctx, cfg, mainLogger)
	if err != nil {
		log.Error("app.store.init_failed", out.LogFields{
			"driver": cfg.Store.Driver,
			"error":  err.Error(),
		})
		return nil, err
	}
	a.closers = append(a.closers, closeStore)

	// Интерфейс не должен хранить типизированный nil
	var cachePort out.CachePort
	if lru := cache.NewLRUCacheAdapter(cfg, mainLogger); lru != nil {
		cachePort = lru
	}

	var eventPort out.ScheduleEventPort
	if publish {
		a.publisher, err = rabbitmq.NewScheduleEventPublisher(cfg, mainLogger)
		if err != nil {
			a.close()
			return nil, err
		}
		if a.publisher != nil {
			eventPort = a.publisher
			a.closers = append(a.closers, func() {
				if err := a.publisher.Stop(); err != nil {
					log.Error("app.rabbitmq.publisher.stop_failed", out.LogFields{
						"error": err.Error(),
					})
				}
			})
		}
	}

	a.metrics = metrics.NewPrometheusAdapter()

	a.service = schedule_service.NewScheduleService(
		store,
		cachePort,
		eventPort,
		a.metrics,
		mainLogger,
		schedule_service.Options{
			Template:         template,
			Location:         location,
			ForbidPastCancel: cfg.Schedule.ForbidPastCancel,
			HistoryMaxDays:   cfg.Schedule.HistoryMaxDays,
		},
	)

	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
