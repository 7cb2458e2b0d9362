package schedule_service

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/out"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/utils"
)

// GetSchedule returns the merged day, served from the read cache when possible.
func (s *ScheduleService) GetSchedule(ctx context.Context, date json_types.Date) ([]domain.Slot, error) {
	if s.cachePort != nil {
		if slots, ok := s.cachePort.GetSchedule(ctx, date); ok {
			s.observeCache(true)
			return slots, nil
		}
		s.observeCache(false)
	}

	// Версию берём до чтения: изменение во время загрузки не даст закэшировать старое
	seen := s.resync.version(date)
	slots, err := s.resync.Load(ctx, date)
	if err != nil {
		return nil, err
	}

	if !s.resync.cacheIfCurrent(ctx, date, seen, slots) && s.cachePort != nil {
		s.logger.Debug("schedule.cache.store_skipped", out.LogFields{
			"date": date.String(),
		})
	}

	return slots, nil
}

// GetSchedules fetches several days concurrently.
func (s *ScheduleService) GetSchedules(ctx context.Context, dates []json_types.Date) (map[json_types.Date][]domain.Slot, error) {
	result := make(map[json_types.Date][]domain.Slot, len(dates))
	var mu sync.Mutex

	err := s.forEachDate(ctx, dates, func(ctx context.Context, date json_types.Date) error {
		slots, err := s.GetSchedule(ctx, date)
		if err != nil {
			return err
		}

		mu.Lock()
		result[date] = slots
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// AvailableSlots returns the bookable slots of the day: AVAILABLE and not yet started.
func (s *ScheduleService) AvailableSlots(ctx context.Context, date json_types.Date) ([]domain.Slot, error) {
	slots, err := s.GetSchedule(ctx, date)
	if err != nil {
		return nil, err
	}

	now := s.now()
	available := make([]domain.Slot, 0, len(slots))
	for _, slot := range slots {
		if slot.State != domain.SlotStateAvailable {
			continue
		}
		if !slot.StartsAt(s.location).After(now) {
			continue
		}
		available = append(available, slot)
	}

	return available, nil
}

// History lists appointments between from and to that are DONE or CANCELLED,
// most recent first.
func (s *ScheduleService) History(ctx context.Context, from, to json_types.Date) ([]domain.HistoryEntry, error) {
	if to.Before(from) {
		return nil, &domain.ValidationError{Field: "to", Reason: "must not be before from"}
	}
	if days := utils.DaysBetween(from, to); days > s.historyMaxDays {
		return nil, &domain.ValidationError{
			Field:  "to",
			Reason: fmt.Sprintf("range of %d days exceeds %d", days, s.historyMaxDays),
		}
	}

	now := s.now()
	entries := make([]domain.HistoryEntry, 0)
	var mu sync.Mutex

	err := s.forEachDate(ctx, utils.DatesBetween(from, to), func(ctx context.Context, date json_types.Date) error {
		records, err := s.storePort.ListAppointments(ctx, date)
		if err != nil {
			s.logger.Error("schedule.history.store_failed", out.LogFields{
				"date":  date.String(),
				"error": err.Error(),
			})
			return &domain.StoreUnavailableError{Operation: "list appointments", Err: err}
		}

		mu.Lock()
		defer mu.Unlock()
		for _, record := range records {
			state := record.DisplayState(s.location, now)
			if state != domain.SlotStateDone && state != domain.SlotStateCancelled {
				continue
			}
			entries = append(entries, domain.HistoryEntry{Appointment: record, DisplayState: state})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(entries, func(a, b domain.HistoryEntry) int {
		return b.Appointment.StartsAt(s.location).Compare(a.Appointment.StartsAt(s.location))
	})

	return entries, nil
}

// forEachDate runs fn for every date on a bounded pool of workers and returns
// the first error.
func (s *ScheduleService) forEachDate(ctx context.Context, dates []json_types.Date, fn func(context.Context, json_types.Date) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	jobs := make(chan json_types.Date)
	errCh := make(chan error, len(dates))

	workers := min(s.batchWorkers, len(dates))
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for date := range jobs {
				if err := fn(ctx, date); err != nil {
					errCh <- err
					cancel()
				}
			}
		}()
	}

	for _, date := range dates {
		jobs <- date
	}
	close(jobs)

	wg.Wait()
	close(errCh)

	if err, ok := <-errCh; ok {
		return err
	}
	return nil
}

func (s *ScheduleService) observeCache(hit bool) {
	if s.metricsPort != nil {
		s.metricsPort.ObserveCache(hit)
	}
}
