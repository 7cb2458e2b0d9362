package schedule_service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/out"
)

// ResyncController rebuilds a date's schedule from the store. Load is used by
// the guard before validating; Resync after every mutation.
type ResyncController struct {
	storePort   out.AppointmentStorePort
	generator   *Generator
	cachePort   out.CachePort
	eventPort   out.ScheduleEventPort
	metricsPort out.MetricsPort
	logger      out.LoggerPort
	location    *time.Location
	now         func() time.Time
	versions    *cacheVersions

	mu        sync.RWMutex
	listeners []func(domain.ScheduleEvent)
}

func NewResyncController(
	storePort out.AppointmentStorePort,
	generator *Generator,
	cachePort out.CachePort,
	eventPort out.ScheduleEventPort,
	metricsPort out.MetricsPort,
	logger out.LoggerPort,
	location *time.Location,
	now func() time.Time,
) *ResyncController {
	if location == nil {
		location = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &ResyncController{
		storePort:   storePort,
		generator:   generator,
		cachePort:   cachePort,
		eventPort:   eventPort,
		metricsPort: metricsPort,
		logger:      logger.WithModule("ResyncController"),
		location:    location,
		now:         now,
		versions:    newCacheVersions(),
	}
}

func (r *ResyncController) Subscribe(listener func(domain.ScheduleEvent)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listeners = append(r.listeners, listener)
}

// Load fetches the date's records and merges them over the generated day. It
// never reads the cache.
func (r *ResyncController) Load(ctx context.Context, date json_types.Date) ([]domain.Slot, error) {
	records, err := r.storePort.ListAppointments(ctx, date)
	if err != nil {
		r.logger.Error("schedule.load.store_failed", out.LogFields{
			"date":  date.String(),
			"error": err.Error(),
		})
		return nil, &domain.StoreUnavailableError{Operation: "list appointments", Err: err}
	}

	slots, anomalies := Merge(r.generator.Generate(date), records)
	for _, anomaly := range anomalies {
		fields := out.LogFields{
			"date":      date.String(),
			"key":       anomaly.Key.String(),
			"backendId": anomaly.BackendID.String(),
		}
		if anomaly.KeptID != nil {
			fields["keptId"] = anomaly.KeptID.String()
		}
		r.logger.Warn("schedule.merge."+string(anomaly.Kind), fields)

		if r.metricsPort != nil {
			r.metricsPort.ObserveMergeAnomaly(string(anomaly.Kind))
		}
	}

	return slots, nil
}

// Resync reloads the date after a mutation, refreshes the read cache and
// fires the schedule event.
func (r *ResyncController) Resync(ctx context.Context, operation domain.ScheduleOperation, date json_types.Date, backendID *uuid.UUID) ([]domain.Slot, error) {
	started := r.now()

	// Старое расписание не должно пережить изменение, даже если перечитать не удалось
	seen := r.versions.invalidate(ctx, r.cachePort, date)

	slots, err := r.Load(ctx, date)
	if err != nil {
		r.logger.Error("schedule.resync.failed", out.LogFields{
			"operation": operation,
			"date":      date.String(),
			"error":     err.Error(),
		})
		return nil, err
	}

	// Более поздний resync той же даты сам положит своё расписание
	r.versions.storeIfCurrent(ctx, r.cachePort, date, seen, slots)
	if r.metricsPort != nil {
		r.metricsPort.ObserveResync(r.now().Sub(started))
	}

	event := domain.ScheduleEvent{
		Operation:  operation,
		Date:       date,
		BackendID:  backendID,
		Slots:      slots,
		ResyncedAt: r.now(),
		Reminder:   r.planReminder(operation, slots, backendID),
	}
	r.fire(ctx, event)

	r.logger.Debug("schedule.resync.done", out.LogFields{
		"operation":  operation,
		"date":       date.String(),
		"slotsCount": len(slots),
	})

	return slots, nil
}

// version returns the date's cache version. Pass it to cacheIfCurrent after
// loading the date outside of Resync.
func (r *ResyncController) version(date json_types.Date) scheduleVersion {
	return r.versions.current(date)
}

// cacheIfCurrent caches a loaded schedule unless the date was invalidated
// after seen was taken.
func (r *ResyncController) cacheIfCurrent(ctx context.Context, date json_types.Date, seen scheduleVersion, slots []domain.Slot) bool {
	return r.versions.storeIfCurrent(ctx, r.cachePort, date, seen, slots)
}

func (r *ResyncController) invalidate(ctx context.Context, date json_types.Date) {
	r.versions.invalidate(ctx, r.cachePort, date)
}

func (r *ResyncController) invalidateAll(ctx context.Context) {
	r.versions.invalidateAll(ctx, r.cachePort)
}

func (r *ResyncController) planReminder(operation domain.ScheduleOperation, slots []domain.Slot, backendID *uuid.UUID) *domain.Reminder {
	if backendID == nil {
		return nil
	}
	if operation != domain.ScheduleOperationAssign && operation != domain.ScheduleOperationModify {
		return nil
	}
	for _, slot := range slots {
		if slot.OwnedBy(*backendID) {
			return domain.PlanReminder(slot, r.location, r.now())
		}
	}
	return nil
}

func (r *ResyncController) fire(ctx context.Context, event domain.ScheduleEvent) {
	r.mu.RLock()
	listeners := make([]func(domain.ScheduleEvent), len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.RUnlock()

	for _, listener := range listeners {
		listener(event)
	}

	if r.eventPort == nil {
		return
	}
	// Изменение уже записано в хранилище, ошибка публикации его не отменяет
	if err := r.eventPort.PublishScheduleEvent(ctx, event); err != nil {
		r.logger.Error("schedule.resync.publish_failed", out.LogFields{
			"operation": event.Operation,
			"date":      event.Date.String(),
			"error":     err.Error(),
		})
	}
}
