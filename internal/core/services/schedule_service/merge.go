package schedule_service

import (
	"github.com/google/uuid"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
)

type MergeAnomalyKind string

const (
	// Records matching a tick whose winner is another record.
	MergeAnomalyDuplicate MergeAnomalyKind = "duplicate_record"
	// Records whose key is not a tick of the generated day.
	MergeAnomalyOrphan MergeAnomalyKind = "orphan_record"
)

type MergeAnomaly struct {
	Kind      MergeAnomalyKind
	Key       domain.SlotKey
	BackendID uuid.UUID
	KeptID    *uuid.UUID
}

// Merge overlays authoritative records on the base slots by exact (date, time)
// key. The first active record wins; a cancelled one wins only when no active
// record shares the key. The rest are reported, never combined.
func Merge(base []domain.Slot, records []domain.Appointment) ([]domain.Slot, []MergeAnomaly) {
	merged := make([]domain.Slot, 0, len(base))
	anomalies := make([]MergeAnomaly, 0)
	matched := make([]bool, len(records))

	for _, slot := range base {
		candidates := make([]int, 0, 1)
		winner := -1
		for i, record := range records {
			if record.Key() != slot.Key() {
				continue
			}
			matched[i] = true
			candidates = append(candidates, i)
			// Отменённую запись внешний писатель мог перекрыть новой активной
			if winner == -1 || (!records[winner].Active() && record.Active()) {
				winner = i
			}
		}

		if winner == -1 {
			merged = append(merged, slot)
			continue
		}

		keptID := records[winner].ID
		for _, i := range candidates {
			if i == winner {
				continue
			}
			anomalies = append(anomalies, MergeAnomaly{
				Kind:      MergeAnomalyDuplicate,
				Key:       slot.Key(),
				BackendID: records[i].ID,
				KeptID:    &keptID,
			})
		}
		merged = append(merged, overlay(slot, records[winner]))
	}

	for i, record := range records {
		if !matched[i] {
			anomalies = append(anomalies, MergeAnomaly{
				Kind:      MergeAnomalyOrphan,
				Key:       record.Key(),
				BackendID: record.ID,
			})
		}
	}

	return merged, anomalies
}

func overlay(slot domain.Slot, record domain.Appointment) domain.Slot {
	id := record.ID

	slot.State = record.State
	slot.BackendID = &id
	if record.DurationMinutes > 0 {
		slot.DurationMinutes = record.DurationMinutes
	}

	// Данные пациента живут только в подтверждённых и отменённых слотах
	slot.Patient = nil
	slot.Notes = ""
	if record.State.CarriesPatient() {
		if record.Patient != nil {
			patient := *record.Patient
			slot.Patient = &patient
		}
		slot.Notes = record.Notes
	}

	return slot
}
