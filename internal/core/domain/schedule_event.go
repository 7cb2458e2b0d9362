package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
)

type ScheduleOperation string

const (
	ScheduleOperationAssign  ScheduleOperation = "assign"
	ScheduleOperationModify  ScheduleOperation = "modify"
	ScheduleOperationCancel  ScheduleOperation = "cancel"
	ScheduleOperationBlock   ScheduleOperation = "block"
	ScheduleOperationUnblock ScheduleOperation = "unblock"
)

// ScheduleEvent is fired after a mutation once the affected date has been resynced.
type ScheduleEvent struct {
	Operation  ScheduleOperation `json:"operation"`
	Date       json_types.Date   `json:"date"`
	BackendID  *uuid.UUID        `json:"backendId,omitempty"`
	Slots      []Slot            `json:"slots"`
	ResyncedAt time.Time         `json:"resyncedAt"`
	// Только для assign и modify, когда до приёма больше 48 часов
	Reminder *Reminder `json:"reminder,omitempty"`
}

// HistoryEntry is a past or cancelled appointment as presented by the history view.
type HistoryEntry struct {
	Appointment  Appointment `json:"appointment"`
	DisplayState SlotState   `json:"displayState"`
}
