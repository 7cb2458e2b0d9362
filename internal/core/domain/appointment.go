package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
)

// Appointment is the authoritative record held by the appointment store.
type Appointment struct {
	ID              uuid.UUID            `json:"id"`
	Date            json_types.Date      `json:"date"`
	Time            json_types.TimeOfDay `json:"time"`
	DurationMinutes int                  `json:"durationMinutes"`
	Patient         *PatientRef          `json:"patient,omitempty"`
	Notes           string               `json:"notes,omitempty"`
	State           SlotState            `json:"state"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

func (a Appointment) Key() SlotKey {
	return SlotKey{Date: a.Date, Time: a.Time}
}

func (a Appointment) StartsAt(loc *time.Location) time.Time {
	return a.Date.At(a.Time, loc)
}

func (a Appointment) DisplayState(loc *time.Location, now time.Time) SlotState {
	return displayState(a.State, a.StartsAt(loc), now)
}

// Active records occupy their key in the store; cancelled ones do not.
func (a Appointment) Active() bool {
	return a.State != SlotStateCancelled
}

// AppointmentPatch lists the fields to change. Nil means unchanged.
type AppointmentPatch struct {
	Date            *json_types.Date      `json:"date,omitempty"`
	Time            *json_types.TimeOfDay `json:"time,omitempty"`
	DurationMinutes *int                  `json:"durationMinutes,omitempty"`
	Patient         *PatientRef           `json:"patient,omitempty"`
	ClearPatient    bool                  `json:"clearPatient,omitempty"`
	Notes           *string               `json:"notes,omitempty"`
	State           *SlotState            `json:"state,omitempty"`
}

// Apply returns a copy of the record with the patch applied.
func (a Appointment) Apply(patch AppointmentPatch) Appointment {
	if patch.Date != nil {
		a.Date = *patch.Date
	}
	if patch.Time != nil {
		a.Time = *patch.Time
	}
	if patch.DurationMinutes != nil {
		a.DurationMinutes = *patch.DurationMinutes
	}
	if patch.ClearPatient {
		a.Patient = nil
	}
	if patch.Patient != nil {
		patient := *patch.Patient
		a.Patient = &patient
	}
	if patch.Notes != nil {
		a.Notes = *patch.Notes
	}
	if patch.State != nil {
		a.State = *patch.State
	}
	return a
}

// MovesKey reports whether applying the patch would change the record's key.
func (a Appointment) MovesKey(patch AppointmentPatch) bool {
	return a.Apply(patch).Key() != a.Key()
}
