package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
)

var (
	testDate = json_types.NewDate(2024, time.May, 6)
	testNow  = time.Date(2024, time.May, 6, 12, 0, 0, 0, time.UTC)
)

func TestDisplayStateDerivesDone(t *testing.T) {
	cases := []struct {
		name     string
		state    SlotState
		hour     int
		expected SlotState
	}{
		{"confirmed in the past", SlotStateConfirmed, 10, SlotStateDone},
		{"confirmed starting now", SlotStateConfirmed, 12, SlotStateConfirmed},
		{"confirmed in the future", SlotStateConfirmed, 14, SlotStateConfirmed},
		{"cancelled in the past", SlotStateCancelled, 10, SlotStateCancelled},
		{"available in the past", SlotStateAvailable, 10, SlotStateAvailable},
		{"blocked in the past", SlotStateBlocked, 10, SlotStateBlocked},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			slot := Slot{Date: testDate, Time: json_types.NewTimeOfDay(tc.hour, 0), State: tc.state}
			assert.Equal(t, tc.expected, DisplayState(slot, time.UTC, testNow))

			appointment := Appointment{Date: slot.Date, Time: slot.Time, State: tc.state}
			assert.Equal(t, tc.expected, appointment.DisplayState(time.UTC, testNow))
			// Хранимое состояние остаётся прежним
			assert.Equal(t, tc.state, slot.State)
		})
	}
}

func TestDisplayStateRespectsLocation(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	// 10:00 по UTC-3 это 13:00 UTC, позже testNow
	slot := Slot{Date: testDate, Time: json_types.NewTimeOfDay(10, 0), State: SlotStateConfirmed}

	assert.Equal(t, SlotStateConfirmed, DisplayState(slot, loc, testNow))
}

func TestApplyPatch(t *testing.T) {
	patient := PatientRef{ID: "1", FirstName: "Ana"}
	record := Appointment{
		ID:              uuid.New(),
		Date:            testDate,
		Time:            json_types.NewTimeOfDay(10, 0),
		DurationMinutes: 50,
		Patient:         &patient,
		Notes:           "n",
		State:           SlotStateConfirmed,
	}

	newTime := json_types.NewTimeOfDay(11, 0)
	moved := record.Apply(AppointmentPatch{Time: &newTime})
	assert.Equal(t, newTime, moved.Time)
	assert.Equal(t, record.Patient, moved.Patient)
	assert.True(t, record.MovesKey(AppointmentPatch{Time: &newTime}))
	assert.False(t, record.MovesKey(AppointmentPatch{Notes: &record.Notes}))

	other := PatientRef{ID: "2"}
	replaced := record.Apply(AppointmentPatch{ClearPatient: true, Patient: &other})
	require.NotNil(t, replaced.Patient)
	assert.Equal(t, "2", replaced.Patient.ID)

	available := SlotStateAvailable
	empty := ""
	released := record.Apply(AppointmentPatch{ClearPatient: true, Notes: &empty, State: &available})
	assert.Nil(t, released.Patient)
	assert.Empty(t, released.Notes)
	assert.False(t, released.State.CarriesPatient())

	// Исходная запись не изменилась
	assert.Equal(t, "Ana", record.Patient.FirstName)
	assert.Equal(t, SlotStateConfirmed, record.State)
}

func TestActive(t *testing.T) {
	assert.True(t, Appointment{State: SlotStateConfirmed}.Active())
	assert.True(t, Appointment{State: SlotStateBlocked}.Active())
	assert.False(t, Appointment{State: SlotStateCancelled}.Active())
}

func TestParseWeekdays(t *testing.T) {
	weekdays, err := ParseWeekdays(" Sat, sun ,")
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Saturday, time.Sunday}, weekdays)

	_, err = ParseWeekdays("sat,holiday")
	assert.Error(t, err)
}

func TestParseTimeRange(t *testing.T) {
	r, err := ParseTimeRange("15:00-18:00")
	require.NoError(t, err)
	assert.True(t, r.Contains(json_types.NewTimeOfDay(15, 0)))
	assert.True(t, r.Contains(json_types.NewTimeOfDay(18, 0)))
	assert.False(t, r.Contains(json_types.NewTimeOfDay(19, 0)))

	for _, bad := range []string{"15:00", "18:00-15:00", "aa-bb"} {
		_, err := ParseTimeRange(bad)
		assert.Error(t, err, bad)
	}
}

func TestTemplateTicks(t *testing.T) {
	template := DefaultScheduleTemplate()
	require.NoError(t, template.Validate())

	ticks := template.Ticks()
	require.Len(t, ticks, 15)
	assert.Equal(t, json_types.NewTimeOfDay(8, 0), ticks[0])
	assert.Equal(t, json_types.NewTimeOfDay(22, 0), ticks[14])

	template.Tick = 0
	assert.Error(t, template.Validate())
	assert.Empty(t, template.Ticks())
}

func TestPeriods(t *testing.T) {
	assert.Equal(t, DayPeriodMorning, PeriodOf(json_types.NewTimeOfDay(8, 0)))
	assert.Equal(t, DayPeriodMorning, PeriodOf(json_types.NewTimeOfDay(12, 0)))
	assert.Equal(t, DayPeriodAfternoon, PeriodOf(json_types.NewTimeOfDay(13, 0)))
	assert.Equal(t, DayPeriodAfternoon, PeriodOf(json_types.NewTimeOfDay(19, 0)))
	assert.Equal(t, DayPeriodNight, PeriodOf(json_types.NewTimeOfDay(20, 0)))
	assert.Equal(t, DayPeriodNight, PeriodOf(json_types.NewTimeOfDay(22, 0)))

	slots := make([]Slot, 0)
	for _, tick := range DefaultScheduleTemplate().Ticks() {
		slots = append(slots, Slot{Date: testDate, Time: tick})
	}
	grouped := GroupByPeriod(slots)
	assert.Len(t, grouped.Morning, 5)
	assert.Len(t, grouped.Afternoon, 7)
	assert.Len(t, grouped.Night, 3)
}

func TestErrorsMatchSentinels(t *testing.T) {
	conflict := &ConflictError{Key: SlotKey{Date: testDate, Time: json_types.NewTimeOfDay(9, 0)}, State: SlotStateBlocked, Reason: OccupiedReason(SlotStateBlocked)}
	assert.ErrorIs(t, conflict, ErrConflict)
	assert.NotErrorIs(t, conflict, ErrInvalidState)
	assert.Equal(t, "slot 2024-05-06 09:00: blocked", conflict.Error())

	invalid := &InvalidStateError{Operation: "cancel", Subject: "appointment x", State: SlotStateCancelled, Reason: "already cancelled"}
	assert.ErrorIs(t, invalid, ErrInvalidState)
	assert.Equal(t, "cannot cancel appointment x: already cancelled", invalid.Error())

	assert.ErrorIs(t, &NotFoundError{}, ErrNotFound)
	assert.ErrorIs(t, &ValidationError{}, ErrValidation)
	assert.ErrorIs(t, &StoreUnavailableError{Err: ErrNotFound}, ErrStoreUnavailable)
}

func TestPatientFullName(t *testing.T) {
	assert.Equal(t, "Lucia Gomez", PatientRef{FirstName: "Lucia", LastName: "Gomez"}.FullName())
	assert.Equal(t, "Gomez", PatientRef{LastName: "Gomez"}.FullName())
	assert.Equal(t, "Lucia", PatientRef{FirstName: "Lucia"}.FullName())
}
