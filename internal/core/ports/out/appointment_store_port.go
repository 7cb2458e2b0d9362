package out

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
)

var (
	// ErrStoreConflict is returned when the (date, time) key is already held by an active record.
	ErrStoreConflict = errors.New("appointment store: slot already occupied")
	ErrStoreNotFound = errors.New("appointment store: appointment not found")
)

// AppointmentStorePort is the authoritative appointment store.
type AppointmentStorePort interface {
	ListAppointments(ctx context.Context, date json_types.Date) ([]domain.Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*domain.Appointment, error)
	CreateAppointment(ctx context.Context, appointment domain.Appointment) (*domain.Appointment, error)
	PatchAppointment(ctx context.Context, id uuid.UUID, patch domain.AppointmentPatch) (*domain.Appointment, error)
	CancelAppointment(ctx context.Context, id uuid.UUID) (*domain.Appointment, error)
}
