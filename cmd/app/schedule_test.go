package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
)

func TestPrintSchedule(t *testing.T) {
	date := json_types.NewDate(2024, time.May, 6)
	id := uuid.MustParse("5f0c6a2e-8a51-4d1b-9c59-1f3f4f6b8a10")
	slots := []domain.Slot{
		{Date: date, Time: json_types.NewTimeOfDay(8, 0), State: domain.SlotStateAvailable},
		{Date: date, Time: json_types.NewTimeOfDay(9, 0), State: domain.SlotStateConfirmed, BackendID: &id,
			Patient: &domain.PatientRef{FirstName: "Ana", LastName: "Lopez"}},
	}

	var buf bytes.Buffer
	err := printSchedule(&buf, slots, func(slot domain.Slot) domain.SlotState {
		if slot.State == domain.SlotStateConfirmed {
			return domain.SlotStateDone
		}
		return slot.State
	})
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Contains(t, string(lines[0]), "TIME")
	assert.Contains(t, string(lines[1]), "08:00")
	assert.Contains(t, string(lines[1]), "AVAILABLE")
	assert.Contains(t, string(lines[2]), "DONE")
	assert.Contains(t, string(lines[2]), "Ana Lopez")
	assert.Contains(t, string(lines[2]), id.String())
}
