package schedule_service

import (
	"context"

	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/out"
)

// Сброс кэша расписаний

func (s *ScheduleService) InvalidateDate(ctx context.Context, date json_types.Date) error {
	if s.cachePort == nil {
		return nil
	}
	s.resync.invalidate(ctx, date)

	s.logger.Debug("schedule.cache.invalidated", out.LogFields{
		"date": date.String(),
	})
	return nil
}

func (s *ScheduleService) InvalidateAll(ctx context.Context) error {
	if s.cachePort == nil {
		return nil
	}
	s.resync.invalidateAll(ctx)

	s.logger.Debug("schedule.cache.invalidated_all", out.LogFields{})
	return nil
}
