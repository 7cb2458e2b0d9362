package schedule_service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/in"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/out"
)

// Assign books an AVAILABLE slot for a patient.
func (s *ScheduleService) Assign(ctx context.Context, cmd in.AssignCommand) (slots []domain.Slot, err error) {
	defer func() { s.observeOperation("assign", err) }()

	key := domain.SlotKey{Date: cmd.Date, Time: cmd.Time}
	s.logger.Info("schedule.assign.started", out.LogFields{
		"key":       key.String(),
		"patientId": cmd.Patient.ID,
	})

	if err := validatePatient(cmd.Patient); err != nil {
		return nil, err
	}
	duration, err := s.durationOrDefault(cmd.DurationMinutes)
	if err != nil {
		return nil, err
	}

	slot, err := s.freshSlot(ctx, key)
	if err != nil {
		return nil, err
	}

	if slot.State != domain.SlotStateAvailable {
		s.logger.Info("schedule.assign.conflict", out.LogFields{
			"key":   key.String(),
			"state": slot.State,
		})
		return nil, &domain.ConflictError{Key: key, State: slot.State, Reason: domain.OccupiedReason(slot.State)}
	}

	patient := cmd.Patient
	notes := cmd.Notes
	var saved *domain.Appointment

	if slot.BackendID != nil {
		// Слот открыт записью-переопределением (например, разблокированный выходной)
		confirmed := domain.SlotStateConfirmed
		saved, err = s.storePort.PatchAppointment(ctx, *slot.BackendID, domain.AppointmentPatch{
			State:           &confirmed,
			Patient:         &patient,
			DurationMinutes: &duration,
			Notes:           &notes,
		})
	} else {
		saved, err = s.storePort.CreateAppointment(ctx, domain.Appointment{
			Date:            cmd.Date,
			Time:            cmd.Time,
			DurationMinutes: duration,
			Patient:         &patient,
			Notes:           notes,
			State:           domain.SlotStateConfirmed,
		})
	}
	if err != nil {
		return nil, s.storeError("assign", key, slot.BackendID, err)
	}

	s.logger.Info("schedule.assign.stored", out.LogFields{
		"key":       key.String(),
		"backendId": saved.ID.String(),
	})

	return s.resync.Resync(ctx, domain.ScheduleOperationAssign, cmd.Date, &saved.ID)
}

// Modify changes a CONFIRMED appointment, possibly moving it to another slot.
func (s *ScheduleService) Modify(ctx context.Context, cmd in.ModifyCommand) (slots []domain.Slot, err error) {
	defer func() { s.observeOperation("modify", err) }()

	s.logger.Info("schedule.modify.started", out.LogFields{
		"backendId": cmd.BackendID.String(),
	})

	record, err := s.getRecord(ctx, "modify", cmd.BackendID)
	if err != nil {
		return nil, err
	}
	if record.State != domain.SlotStateConfirmed {
		return nil, &domain.InvalidStateError{
			Operation: "modify",
			Subject:   "appointment " + record.ID.String(),
			State:     record.State,
			Reason:    notBookedReason(record.State),
		}
	}

	if cmd.Patient != nil {
		if err := validatePatient(*cmd.Patient); err != nil {
			return nil, err
		}
	}
	if cmd.DurationMinutes != nil && *cmd.DurationMinutes <= 0 {
		return nil, &domain.ValidationError{Field: "durationMinutes", Reason: "must be positive"}
	}

	patch := domain.AppointmentPatch{
		Date:            cmd.Date,
		Time:            cmd.Time,
		DurationMinutes: cmd.DurationMinutes,
		Patient:         cmd.Patient,
		Notes:           cmd.Notes,
	}
	target := record.Apply(patch)

	if target.Key() != record.Key() {
		slot, err := s.freshSlot(ctx, target.Key())
		if err != nil {
			return nil, err
		}

		switch {
		case slot.OwnedBy(record.ID):
		case slot.State == domain.SlotStateAvailable && slot.BackendID != nil:
			return s.supersede(ctx, *record, target, *slot.BackendID)
		case slot.State == domain.SlotStateAvailable:
		default:
			s.logger.Info("schedule.modify.conflict", out.LogFields{
				"backendId": record.ID.String(),
				"target":    target.Key().String(),
				"state":     slot.State,
			})
			return nil, &domain.ConflictError{Key: target.Key(), State: slot.State, Reason: domain.OccupiedReason(slot.State)}
		}
	}

	if _, err := s.storePort.PatchAppointment(ctx, record.ID, patch); err != nil {
		return nil, s.storeError("modify", target.Key(), &record.ID, err)
	}

	return s.resyncMove(ctx, record.Date, target.Date, record.ID)
}

// supersede moves an appointment onto a slot held open by an availability
// override: the override record becomes the appointment and the old record
// releases its slot.
func (s *ScheduleService) supersede(ctx context.Context, record, target domain.Appointment, overrideID uuid.UUID) ([]domain.Slot, error) {
	s.logger.Info("schedule.modify.supersede", out.LogFields{
		"backendId":  record.ID.String(),
		"overrideId": overrideID.String(),
		"target":     target.Key().String(),
	})

	confirmed := domain.SlotStateConfirmed
	duration := target.DurationMinutes
	notes := target.Notes
	if _, err := s.storePort.PatchAppointment(ctx, overrideID, domain.AppointmentPatch{
		State:           &confirmed,
		Patient:         target.Patient,
		DurationMinutes: &duration,
		Notes:           &notes,
	}); err != nil {
		return nil, s.storeError("modify", target.Key(), &overrideID, err)
	}

	available := domain.SlotStateAvailable
	empty := ""
	if _, err := s.storePort.PatchAppointment(ctx, record.ID, domain.AppointmentPatch{
		State:        &available,
		ClearPatient: true,
		Notes:        &empty,
	}); err != nil {
		// Приём уже записан в новый слот, старую запись освободить не удалось
		s.logger.Error("schedule.modify.supersede_release_failed", out.LogFields{
			"backendId":  record.ID.String(),
			"overrideId": overrideID.String(),
			"error":      err.Error(),
		})
		return nil, s.storeError("modify", record.Key(), &record.ID, err)
	}

	return s.resyncMove(ctx, record.Date, target.Date, overrideID)
}

func (s *ScheduleService) resyncMove(ctx context.Context, from, to json_types.Date, backendID uuid.UUID) ([]domain.Slot, error) {
	if from != to {
		if _, err := s.resync.Resync(ctx, domain.ScheduleOperationModify, from, &backendID); err != nil {
			return nil, err
		}
	}
	return s.resync.Resync(ctx, domain.ScheduleOperationModify, to, &backendID)
}

// Cancel turns a CONFIRMED appointment into CANCELLED. Patient and notes stay
// on the record.
func (s *ScheduleService) Cancel(ctx context.Context, backendID uuid.UUID) (slots []domain.Slot, err error) {
	defer func() { s.observeOperation("cancel", err) }()

	s.logger.Info("schedule.cancel.started", out.LogFields{
		"backendId": backendID.String(),
	})

	record, err := s.getRecord(ctx, "cancel", backendID)
	if err != nil {
		return nil, err
	}
	if record.State != domain.SlotStateConfirmed {
		return nil, &domain.InvalidStateError{
			Operation: "cancel",
			Subject:   "appointment " + backendID.String(),
			State:     record.State,
			Reason:    notBookedReason(record.State),
		}
	}
	if s.forbidPastCancel && record.DisplayState(s.location, s.now()) == domain.SlotStateDone {
		return nil, &domain.InvalidStateError{
			Operation: "cancel",
			Subject:   "appointment " + backendID.String(),
			State:     domain.SlotStateDone,
			Reason:    domain.OccupiedReason(domain.SlotStateDone),
		}
	}

	if _, err := s.storePort.CancelAppointment(ctx, backendID); err != nil {
		return nil, s.storeError("cancel", record.Key(), &backendID, err)
	}

	return s.resync.Resync(ctx, domain.ScheduleOperationCancel, record.Date, &backendID)
}

// Block closes an AVAILABLE slot. Blocking never carries patient data.
func (s *ScheduleService) Block(ctx context.Context, date json_types.Date, t json_types.TimeOfDay) (slots []domain.Slot, err error) {
	defer func() { s.observeOperation("block", err) }()

	return s.toggleBlock(ctx, domain.SlotKey{Date: date, Time: t}, true)
}

// Unblock reopens a BLOCKED slot.
func (s *ScheduleService) Unblock(ctx context.Context, date json_types.Date, t json_types.TimeOfDay) (slots []domain.Slot, err error) {
	defer func() { s.observeOperation("unblock", err) }()

	return s.toggleBlock(ctx, domain.SlotKey{Date: date, Time: t}, false)
}

func (s *ScheduleService) toggleBlock(ctx context.Context, key domain.SlotKey, block bool) ([]domain.Slot, error) {
	operation := domain.ScheduleOperationUnblock
	from, to := domain.SlotStateBlocked, domain.SlotStateAvailable
	if block {
		operation = domain.ScheduleOperationBlock
		from, to = domain.SlotStateAvailable, domain.SlotStateBlocked
	}

	s.logger.Info("schedule."+string(operation)+".started", out.LogFields{
		"key": key.String(),
	})

	slot, err := s.freshSlot(ctx, key)
	if err != nil {
		return nil, err
	}

	if slot.State != from {
		return nil, &domain.InvalidStateError{
			Operation: string(operation),
			Subject:   "slot " + key.String(),
			State:     slot.State,
			Reason:    toggleReason(slot.State, block),
		}
	}

	var saved *domain.Appointment
	if slot.BackendID != nil {
		empty := ""
		saved, err = s.storePort.PatchAppointment(ctx, *slot.BackendID, domain.AppointmentPatch{
			State:        &to,
			ClearPatient: true,
			Notes:        &empty,
		})
	} else {
		// Запись без пациента перекрывает сгенерированное состояние слота
		saved, err = s.storePort.CreateAppointment(ctx, domain.Appointment{
			Date:            key.Date,
			Time:            key.Time,
			DurationMinutes: s.generator.Template().DefaultDurationMinutes,
			State:           to,
		})
	}
	if err != nil {
		return nil, s.storeError(string(operation), key, slot.BackendID, err)
	}

	return s.resync.Resync(ctx, operation, key.Date, &saved.ID)
}

// freshSlot merges the date from the store and returns the slot at key.
func (s *ScheduleService) freshSlot(ctx context.Context, key domain.SlotKey) (domain.Slot, error) {
	slots, err := s.resync.Load(ctx, key.Date)
	if err != nil {
		return domain.Slot{}, err
	}

	for _, slot := range slots {
		if slot.Time == key.Time {
			return slot, nil
		}
	}

	return domain.Slot{}, &domain.ValidationError{
		Field:  "time",
		Reason: fmt.Sprintf("no slot at %s", key),
	}
}

func (s *ScheduleService) getRecord(ctx context.Context, operation string, id uuid.UUID) (*domain.Appointment, error) {
	record, err := s.storePort.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, out.ErrStoreNotFound) {
			return nil, &domain.NotFoundError{BackendID: id}
		}
		s.logger.Error("schedule."+operation+".fetch_failed", out.LogFields{
			"backendId": id.String(),
			"error":     err.Error(),
		})
		return nil, &domain.StoreUnavailableError{Operation: "get appointment", Err: err}
	}
	return record, nil
}

// storeError translates a store failure. Nothing is retried: a blind retry of
// a create could book the slot twice.
func (s *ScheduleService) storeError(operation string, key domain.SlotKey, id *uuid.UUID, err error) error {
	switch {
	case errors.Is(err, out.ErrStoreConflict):
		return &domain.ConflictError{Key: key, Reason: "already booked"}
	case errors.Is(err, out.ErrStoreNotFound) && id != nil:
		return &domain.NotFoundError{BackendID: *id}
	}

	s.logger.Error("schedule."+operation+".store_failed", out.LogFields{
		"key":   key.String(),
		"error": err.Error(),
	})
	return &domain.StoreUnavailableError{Operation: operation, Err: err}
}

func (s *ScheduleService) durationOrDefault(minutes int) (int, error) {
	switch {
	case minutes == 0:
		return s.generator.Template().DefaultDurationMinutes, nil
	case minutes < 0:
		return 0, &domain.ValidationError{Field: "durationMinutes", Reason: "must be positive"}
	}
	return minutes, nil
}

func validatePatient(patient domain.PatientRef) error {
	if strings.TrimSpace(patient.ID) == "" {
		return &domain.ValidationError{Field: "patient.id", Reason: "an existing patient is required"}
	}
	return nil
}

func notBookedReason(state domain.SlotState) string {
	if state == domain.SlotStateAvailable {
		return "not booked"
	}
	return domain.OccupiedReason(state)
}

func toggleReason(state domain.SlotState, block bool) string {
	switch {
	case block && state == domain.SlotStateBlocked:
		return "already blocked"
	case !block && state == domain.SlotStateAvailable:
		return "not blocked"
	}
	return domain.OccupiedReason(state)
}
