package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
)

const (
	// За сколько до приёма пациенту уходит напоминание
	ReminderLeadTime = 72 * time.Hour
	// Позже этого отменить запись из напоминания нельзя
	ReminderCancelWindow = 48 * time.Hour
)

// Reminder is the patient reminder of a confirmed appointment. It is due from
// SendAt until CancelBefore; the patient may cancel from it only in that window.
type Reminder struct {
	BackendID    uuid.UUID            `json:"backendId"`
	Date         json_types.Date      `json:"date"`
	Time         json_types.TimeOfDay `json:"time"`
	Patient      *PatientRef          `json:"patient,omitempty"`
	SendAt       time.Time            `json:"sendAt"`
	CancelBefore time.Time            `json:"cancelBefore"`
}

// PlanReminder returns the reminder of a slot booked at now, or nil when the
// slot is not CONFIRMED or starts within ReminderCancelWindow.
func PlanReminder(slot Slot, loc *time.Location, now time.Time) *Reminder {
	if slot.State != SlotStateConfirmed || slot.BackendID == nil {
		return nil
	}

	startsAt := slot.StartsAt(loc)
	cancelBefore := startsAt.Add(-ReminderCancelWindow)
	if !now.Before(cancelBefore) {
		return nil
	}

	sendAt := startsAt.Add(-ReminderLeadTime)
	if now.After(sendAt) {
		sendAt = now
	}

	reminder := &Reminder{
		BackendID:    *slot.BackendID,
		Date:         slot.Date,
		Time:         slot.Time,
		SendAt:       sendAt,
		CancelBefore: cancelBefore,
	}
	if slot.Patient != nil {
		patient := *slot.Patient
		reminder.Patient = &patient
	}
	return reminder
}

func (r Reminder) Due(now time.Time) bool {
	return !now.Before(r.SendAt) && now.Before(r.CancelBefore)
}

func (r Reminder) CanCancel(now time.Time) bool {
	return now.Before(r.CancelBefore)
}
