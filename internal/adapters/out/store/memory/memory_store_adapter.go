package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/out"
)

// MemoryStoreAdapter keeps appointments in process memory. An active record
// holds its (date, time) key exclusively, like the unique index of the
// postgres store.
type MemoryStoreAdapter struct {
	mu      sync.RWMutex
	records map[uuid.UUID]domain.Appointment
	now     func() time.Time
}

func NewMemoryStoreAdapter() *MemoryStoreAdapter {
	return &MemoryStoreAdapter{
		records: make(map[uuid.UUID]domain.Appointment),
		now:     time.Now,
	}
}

// Seed inserts records as they are, bypassing the key check. Used to load
// fixtures, including inconsistent ones.
func (a *MemoryStoreAdapter) Seed(records ...domain.Appointment) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, record := range records {
		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}
		a.records[record.ID] = record
	}
}

func (a *MemoryStoreAdapter) ListAppointments(ctx context.Context, date json_types.Date) ([]domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	result := make([]domain.Appointment, 0)
	for _, record := range a.records {
		if record.Date == date {
			result = append(result, copyAppointment(record))
		}
	}

	// Порядок как у хранилища: по времени, затем по дате создания
	slices.SortFunc(result, func(x, y domain.Appointment) int {
		if c := x.Time.Minutes() - y.Time.Minutes(); c != 0 {
			return c
		}
		return x.CreatedAt.Compare(y.CreatedAt)
	})

	return result, nil
}

func (a *MemoryStoreAdapter) GetAppointment(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	record, ok := a.records[id]
	if !ok {
		return nil, out.ErrStoreNotFound
	}
	record = copyAppointment(record)
	return &record, nil
}

func (a *MemoryStoreAdapter) CreateAppointment(ctx context.Context, appointment domain.Appointment) (*domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if appointment.Active() && a.occupied(appointment.Key(), uuid.Nil) {
		return nil, out.ErrStoreConflict
	}

	now := a.now()
	appointment.ID = uuid.New()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now
	a.records[appointment.ID] = copyAppointment(appointment)

	return &appointment, nil
}

func (a *MemoryStoreAdapter) PatchAppointment(ctx context.Context, id uuid.UUID, patch domain.AppointmentPatch) (*domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	record, ok := a.records[id]
	if !ok {
		return nil, out.ErrStoreNotFound
	}

	updated := record.Apply(patch)
	if updated.Active() && a.occupied(updated.Key(), id) {
		return nil, out.ErrStoreConflict
	}
	updated.UpdatedAt = a.now()
	a.records[id] = copyAppointment(updated)

	return &updated, nil
}

func (a *MemoryStoreAdapter) CancelAppointment(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	cancelled := domain.SlotStateCancelled
	return a.PatchAppointment(ctx, id, domain.AppointmentPatch{State: &cancelled})
}

func (a *MemoryStoreAdapter) occupied(key domain.SlotKey, except uuid.UUID) bool {
	for id, record := range a.records {
		if id != except && record.Active() && record.Key() == key {
			return true
		}
	}
	return false
}

func copyAppointment(record domain.Appointment) domain.Appointment {
	if record.Patient != nil {
		patient := *record.Patient
		record.Patient = &patient
	}
	return record
}
