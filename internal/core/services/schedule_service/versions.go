package schedule_service

import (
	"context"
	"sync"

	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/out"
)

type scheduleVersion struct {
	epoch uint64
	date  uint64
}

// cacheVersions counts invalidations per date. A schedule loaded from the
// store is cached only if no invalidation happened since the load began, so a
// slow reader cannot put back a schedule that a mutation already replaced.
type cacheVersions struct {
	mu    sync.Mutex
	epoch uint64
	dates map[json_types.Date]uint64
}

func newCacheVersions() *cacheVersions {
	return &cacheVersions{dates: make(map[json_types.Date]uint64)}
}

func (v *cacheVersions) current(date json_types.Date) scheduleVersion {
	v.mu.Lock()
	defer v.mu.Unlock()

	return scheduleVersion{epoch: v.epoch, date: v.dates[date]}
}

// invalidate bumps the date and drops it from the cache in one step, and
// returns the new version.
func (v *cacheVersions) invalidate(ctx context.Context, cachePort out.CachePort, date json_types.Date) scheduleVersion {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.dates[date]++
	if cachePort != nil {
		cachePort.InvalidateSchedule(ctx, date)
	}
	return scheduleVersion{epoch: v.epoch, date: v.dates[date]}
}

func (v *cacheVersions) invalidateAll(ctx context.Context, cachePort out.CachePort) {
	v.mu.Lock()
	defer v.mu.Unlock()

	// Счётчики дат больше не нужны, эпоха их перекрывает
	v.epoch++
	v.dates = make(map[json_types.Date]uint64)
	if cachePort != nil {
		cachePort.InvalidateAllSchedules(ctx)
	}
}

// storeIfCurrent caches slots when the date is still at the seen version.
func (v *cacheVersions) storeIfCurrent(ctx context.Context, cachePort out.CachePort, date json_types.Date, seen scheduleVersion, slots []domain.Slot) bool {
	if cachePort == nil {
		return false
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.epoch != seen.epoch || v.dates[date] != seen.date {
		return false
	}
	cachePort.StoreSchedule(ctx, date, slots)
	return true
}
