package cache

import (
	"context"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/config"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/out"
)

// LRUCacheAdapter keeps merged schedules per date. Entries expire after the
// configured TTL so that external changes missed by the listener heal on their own.
type LRUCacheAdapter struct {
	cache  *expirable.LRU[json_types.Date, []domain.Slot]
	logger out.LoggerPort
}

func NewLRUCacheAdapter(cfg *config.Config, logger out.LoggerPort) *LRUCacheAdapter {
	if !cfg.Cache.Enabled {
		logger.Info("cache.disabled", out.LogFields{
			"message": "Cache is disabled",
		})
		return nil
	}

	logger = logger.WithModule("CacheAdapter")
	logger.Info("cache.init", out.LogFields{
		"size": cfg.Cache.ScheduleSize,
		"ttl":  cfg.Cache.TTL.String(),
	})

	return &LRUCacheAdapter{
		cache:  expirable.NewLRU[json_types.Date, []domain.Slot](cfg.Cache.ScheduleSize, nil, cfg.Cache.TTL),
		logger: logger,
	}
}

func (c *LRUCacheAdapter) GetSchedule(ctx context.Context, date json_types.Date) ([]domain.Slot, bool) {
	slots, exists := c.cache.Get(date)
	if !exists {
		c.logger.Debug("cache.get.miss", out.LogFields{
			"date": date.String(),
		})
		return nil, false
	}

	c.logger.Debug("cache.get.hit", out.LogFields{
		"date":       date.String(),
		"slotsCount": len(slots),
	})
	return copySlots(slots), true
}

func (c *LRUCacheAdapter) StoreSchedule(ctx context.Context, date json_types.Date, slots []domain.Slot) {
	c.cache.Add(date, copySlots(slots))

	c.logger.Debug("cache.store", out.LogFields{
		"date":       date.String(),
		"slotsCount": len(slots),
	})
}

func (c *LRUCacheAdapter) InvalidateSchedule(ctx context.Context, date json_types.Date) {
	c.cache.Remove(date)

	c.logger.Debug("cache.invalidate", out.LogFields{
		"date": date.String(),
	})
}

func (c *LRUCacheAdapter) InvalidateAllSchedules(ctx context.Context) {
	c.cache.Purge()

	c.logger.Info("cache.invalidate_all", out.LogFields{})
}

// Кэш отдаёт копии, чтобы читатели не меняли сохранённое расписание
func copySlots(slots []domain.Slot) []domain.Slot {
	copied := make([]domain.Slot, len(slots))
	for i, slot := range slots {
		if slot.Patient != nil {
			patient := *slot.Patient
			slot.Patient = &patient
		}
		if slot.BackendID != nil {
			id := *slot.BackendID
			slot.BackendID = &id
		}
		copied[i] = slot
	}
	return copied
}
