package out

import (
	"context"

	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
)

type ScheduleEventPort interface {
	PublishScheduleEvent(ctx context.Context, event domain.ScheduleEvent) error
}
