package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
)

type SlotState string

const (
	SlotStateAvailable  SlotState = "AVAILABLE"
	SlotStateConfirmed  SlotState = "CONFIRMED"
	SlotStateBlocked    SlotState = "BLOCKED"
	SlotStateCancelled  SlotState = "CANCELLED"
	SlotStateDone       SlotState = "DONE"
	SlotStateInProgress SlotState = "IN_PROGRESS"
)

func (s SlotState) IsValid() bool {
	switch s {
	case SlotStateAvailable, SlotStateConfirmed, SlotStateBlocked,
		SlotStateCancelled, SlotStateDone, SlotStateInProgress:
		return true
	}
	return false
}

// CarriesPatient reports whether a slot in this state may hold patient data and notes.
func (s SlotState) CarriesPatient() bool {
	return s == SlotStateConfirmed || s == SlotStateCancelled
}

type PatientRef struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phoneNumber,omitempty"`
	Email     string `json:"email,omitempty"`
}

func (p PatientRef) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// SlotKey identifies a slot inside the practitioner's calendar.
type SlotKey struct {
	Date json_types.Date      `json:"date"`
	Time json_types.TimeOfDay `json:"time"`
}

func (k SlotKey) String() string {
	return k.Date.String() + " " + k.Time.String()
}

type Slot struct {
	Date            json_types.Date      `json:"date"`
	Time            json_types.TimeOfDay `json:"time"`
	State           SlotState            `json:"state"`
	DurationMinutes int                  `json:"durationMinutes"`
	Patient         *PatientRef          `json:"patient,omitempty"`
	BackendID       *uuid.UUID           `json:"backendId,omitempty"`
	Notes           string               `json:"notes,omitempty"`
}

func (s Slot) Key() SlotKey {
	return SlotKey{Date: s.Date, Time: s.Time}
}

func (s Slot) StartsAt(loc *time.Location) time.Time {
	return s.Date.At(s.Time, loc)
}

// OwnedBy reports whether the slot is backed by the record with the given id.
func (s Slot) OwnedBy(id uuid.UUID) bool {
	return s.BackendID != nil && *s.BackendID == id
}

// DisplayState is the state shown to readers: a confirmed slot whose start is
// strictly before now is presented as DONE. The stored state is not touched.
func DisplayState(slot Slot, loc *time.Location, now time.Time) SlotState {
	return displayState(slot.State, slot.StartsAt(loc), now)
}

func displayState(state SlotState, startsAt time.Time, now time.Time) SlotState {
	if state == SlotStateConfirmed && startsAt.Before(now) {
		return SlotStateDone
	}
	return state
}
