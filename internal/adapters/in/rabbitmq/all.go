package rabbitmq

import (
	"context"

	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/out"
)

func (l *CacheHitListener) processAllMessage(ctx context.Context, key CacheMessageRoutingKey) error {
	if key.CacheHitType != CacheHitTypeInvalidate {
		l.logger.Debug("_all_.message.skipped", out.LogFields{
			"type": key.CacheHitType,
		})
		return nil
	}

	if err := l.useCase.InvalidateAll(ctx); err != nil {
		return err
	}

	l.logger.Info("_all_.message.invalidated", out.LogFields{
		"source": key.Source,
	})
	return nil
}
