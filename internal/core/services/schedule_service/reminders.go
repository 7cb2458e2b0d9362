package schedule_service

import (
	"context"

	"github.com/google/uuid"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/out"
)

// DueReminders lists the reminders of the date that should be sent now: the
// confirmed appointments starting in 48 to 72 hours.
func (s *ScheduleService) DueReminders(ctx context.Context, date json_types.Date) ([]domain.Reminder, error) {
	slots, err := s.GetSchedule(ctx, date)
	if err != nil {
		return nil, err
	}

	now := s.now()
	reminders := make([]domain.Reminder, 0)
	for _, slot := range slots {
		reminder := domain.PlanReminder(slot, s.location, now)
		if reminder == nil || !reminder.Due(now) {
			continue
		}
		reminders = append(reminders, *reminder)
	}

	return reminders, nil
}

// CancelFromReminder is the patient's cancellation from a reminder. It is
// accepted only until ReminderCancelWindow before the start.
func (s *ScheduleService) CancelFromReminder(ctx context.Context, backendID uuid.UUID) ([]domain.Slot, error) {
	record, err := s.getRecord(ctx, "cancel", backendID)
	if err != nil {
		s.observeOperation("cancel_from_reminder", err)
		return nil, err
	}

	cancelBefore := record.StartsAt(s.location).Add(-domain.ReminderCancelWindow)
	if record.State == domain.SlotStateConfirmed && !s.now().Before(cancelBefore) {
		s.logger.Info("schedule.cancel.reminder_window_closed", out.LogFields{
			"backendId":    backendID.String(),
			"cancelBefore": cancelBefore,
		})
		err := &domain.InvalidStateError{
			Operation: "cancel",
			Subject:   "appointment " + backendID.String(),
			State:     record.State,
			Reason:    "reminder cancellation window closed",
		}
		s.observeOperation("cancel_from_reminder", err)
		return nil, err
	}

	return s.Cancel(ctx, backendID)
}
