package schedule_service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/adapters/out/logger"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/adapters/out/store/memory"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/out"
)

var (
	// Среда, 1 мая 2024, полдень
	testNow = time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)

	monday    = json_types.NewDate(2024, time.May, 6)
	wednesday = json_types.NewDate(2024, time.May, 8)
	saturday  = json_types.NewDate(2024, time.May, 4)
	lastWeek  = json_types.NewDate(2024, time.April, 24)
)

func at(hour int) json_types.TimeOfDay {
	return json_types.NewTimeOfDay(hour, 0)
}

func patientX() domain.PatientRef {
	return domain.PatientRef{ID: "42", FirstName: "Lucia", LastName: "Gomez", Phone: "+5491100000000"}
}

func newTestService(store out.AppointmentStorePort, opts ...func(*Options)) *ScheduleService {
	options := Options{
		Template: domain.DefaultScheduleTemplate(),
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	}
	for _, opt := range opts {
		opt(&options)
	}
	return NewScheduleService(store, nil, nil, nil, logger.NewNopLogger(), options)
}

func newMemoryService(t *testing.T, opts ...func(*Options)) (*ScheduleService, *memory.MemoryStoreAdapter) {
	t.Helper()

	store := memory.NewMemoryStoreAdapter()
	return newTestService(store, opts...), store
}

func slotAt(t *testing.T, slots []domain.Slot, tm json_types.TimeOfDay) domain.Slot {
	t.Helper()

	for _, slot := range slots {
		if slot.Time == tm {
			return slot
		}
	}
	t.Fatalf("no slot at %s", tm)
	return domain.Slot{}
}

// mockStore подменяет хранилище там, где нужны отказы и подсчёт вызовов
type mockStore struct {
	mock.Mock
}

func (m *mockStore) ListAppointments(ctx context.Context, date json_types.Date) ([]domain.Appointment, error) {
	args := m.Called(ctx, date)
	records, _ := args.Get(0).([]domain.Appointment)
	return records, args.Error(1)
}

func (m *mockStore) GetAppointment(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*domain.Appointment)
	return record, args.Error(1)
}

func (m *mockStore) CreateAppointment(ctx context.Context, appointment domain.Appointment) (*domain.Appointment, error) {
	args := m.Called(ctx, appointment)
	record, _ := args.Get(0).(*domain.Appointment)
	return record, args.Error(1)
}

func (m *mockStore) PatchAppointment(ctx context.Context, id uuid.UUID, patch domain.AppointmentPatch) (*domain.Appointment, error) {
	args := m.Called(ctx, id, patch)
	record, _ := args.Get(0).(*domain.Appointment)
	return record, args.Error(1)
}

func (m *mockStore) CancelAppointment(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*domain.Appointment)
	return record, args.Error(1)
}

type mockEventPort struct {
	mock.Mock
}

func (m *mockEventPort) PublishScheduleEvent(ctx context.Context, event domain.ScheduleEvent) error {
	return m.Called(ctx, event).Error(0)
}
