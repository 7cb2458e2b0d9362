package schedule_service

import (
	"time"

	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/out"
)

const (
	defaultHistoryMaxDays = 93
	defaultBatchWorkers   = 8
)

type Options struct {
	Template domain.ScheduleTemplate
	Location *time.Location
	Now      func() time.Time

	// Отмена приёма, время которого уже прошло, запрещена
	ForbidPastCancel bool
	HistoryMaxDays   int
	BatchWorkers     int
}

type ScheduleService struct {
	storePort   out.AppointmentStorePort
	cachePort   out.CachePort
	metricsPort out.MetricsPort
	logger      out.LoggerPort

	generator *Generator
	resync    *ResyncController

	location         *time.Location
	now              func() time.Time
	forbidPastCancel bool
	historyMaxDays   int
	batchWorkers     int
}

func NewScheduleService(
	storePort out.AppointmentStorePort,
	cachePort out.CachePort,
	eventPort out.ScheduleEventPort,
	metricsPort out.MetricsPort,
	logger out.LoggerPort,
	opts Options,
) *ScheduleService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.HistoryMaxDays <= 0 {
		opts.HistoryMaxDays = defaultHistoryMaxDays
	}
	if opts.BatchWorkers <= 0 {
		opts.BatchWorkers = defaultBatchWorkers
	}

	logger = logger.WithModule("ScheduleService")
	generator := NewGenerator(opts.Template)

	return &ScheduleService{
		storePort:        storePort,
		cachePort:        cachePort,
		metricsPort:      metricsPort,
		logger:           logger,
		generator:        generator,
		resync:           NewResyncController(storePort, generator, cachePort, eventPort, metricsPort, logger, opts.Location, opts.Now),
		location:         opts.Location,
		now:              opts.Now,
		forbidPastCancel: opts.ForbidPastCancel,
		historyMaxDays:   opts.HistoryMaxDays,
		batchWorkers:     opts.BatchWorkers,
	}
}

// Subscribe registers a callback fired after every resync triggered by a mutation.
func (s *ScheduleService) Subscribe(listener func(domain.ScheduleEvent)) {
	s.resync.Subscribe(listener)
}

func (s *ScheduleService) DisplayState(slot domain.Slot) domain.SlotState {
	return domain.DisplayState(slot, s.location, s.now())
}

func (s *ScheduleService) observeOperation(operation string, err error) {
	if s.metricsPort != nil {
		s.metricsPort.ObserveOperation(operation, err)
	}
}
