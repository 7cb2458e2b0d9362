package in

import (
	"context"

	"github.com/google/uuid"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
)

type AssignCommand struct {
	Date            json_types.Date
	Time            json_types.TimeOfDay
	Patient         domain.PatientRef
	DurationMinutes int
	Notes           string
}

// ModifyCommand changes a confirmed appointment. Nil fields stay as they are.
type ModifyCommand struct {
	BackendID       uuid.UUID
	Date            *json_types.Date
	Time            *json_types.TimeOfDay
	Patient         *domain.PatientRef
	DurationMinutes *int
	Notes           *string
}

type ScheduleUseCase interface {
	// Чтение расписания
	GetSchedule(ctx context.Context, date json_types.Date) ([]domain.Slot, error)
	GetSchedules(ctx context.Context, dates []json_types.Date) (map[json_types.Date][]domain.Slot, error)
	AvailableSlots(ctx context.Context, date json_types.Date) ([]domain.Slot, error)
	History(ctx context.Context, from, to json_types.Date) ([]domain.HistoryEntry, error)
	DisplayState(slot domain.Slot) domain.SlotState

	// Изменение расписания, каждое возвращает актуальное расписание даты
	Assign(ctx context.Context, cmd AssignCommand) ([]domain.Slot, error)
	Modify(ctx context.Context, cmd ModifyCommand) ([]domain.Slot, error)
	Cancel(ctx context.Context, backendID uuid.UUID) ([]domain.Slot, error)
	Block(ctx context.Context, date json_types.Date, t json_types.TimeOfDay) ([]domain.Slot, error)
	Unblock(ctx context.Context, date json_types.Date, t json_types.TimeOfDay) ([]domain.Slot, error)

	// Напоминания пациентам
	DueReminders(ctx context.Context, date json_types.Date) ([]domain.Reminder, error)
	CancelFromReminder(ctx context.Context, backendID uuid.UUID) ([]domain.Slot, error)

	// Сброс кэша при внешних изменениях
	InvalidateDate(ctx context.Context, date json_types.Date) error
	InvalidateAll(ctx context.Context) error
}
