package out

import (
	"context"

	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
)

// CachePort keeps merged schedules for read views only.
type CachePort interface {
	GetSchedule(ctx context.Context, date json_types.Date) ([]domain.Slot, bool)
	StoreSchedule(ctx context.Context, date json_types.Date, slots []domain.Slot)
	InvalidateSchedule(ctx context.Context, date json_types.Date)
	InvalidateAllSchedules(ctx context.Context)
}
