package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrConflict         = errors.New("conflict")
	ErrInvalidState     = errors.New("invalid state")
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrValidation       = errors.New("validation failed")
)

// ConflictError means the target slot is not in the state the transition needs.
type ConflictError struct {
	Key    SlotKey
	State  SlotState
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot %s: %s", e.Key, e.Reason)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// InvalidStateError means the slot or record cannot accept the operation.
type InvalidStateError struct {
	Operation string
	Subject   string
	State     SlotState
	Reason    string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s %s: %s", e.Operation, e.Subject, e.Reason)
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

type NotFoundError struct {
	BackendID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("appointment %s not found", e.BackendID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StoreUnavailableError wraps a transport or backend failure of the appointment store.
type StoreUnavailableError struct {
	Operation string
	Err       error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("appointment store unavailable during %s: %v", e.Operation, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

func (e *StoreUnavailableError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// OccupiedReason describes why a slot in the given state cannot be taken.
func OccupiedReason(state SlotState) string {
	switch state {
	case SlotStateConfirmed:
		return "already confirmed"
	case SlotStateBlocked:
		return "blocked"
	case SlotStateCancelled:
		return "already cancelled"
	case SlotStateDone:
		return "already done"
	case SlotStateInProgress:
		return "in progress"
	case SlotStateAvailable:
		return "available"
	}
	return fmt.Sprintf("in state %s", state)
}
