package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/adapters/out/logger"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/config"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/out"
)

type rowStub struct {
	values []any
	err    error
}

func (r rowStub) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch target := d.(type) {
		case *string:
			*target = r.values[i].(string)
		case *int:
			*target = r.values[i].(int)
		case *time.Time:
			*target = r.values[i].(time.Time)
		case **string:
			if r.values[i] == nil {
				*target = nil
			} else {
				s := r.values[i].(string)
				*target = &s
			}
		}
	}
	return nil
}

func TestScanAppointment(t *testing.T) {
	id := uuid.New()
	created := time.Date(2024, time.May, 1, 9, 30, 0, 0, time.UTC)

	row := rowStub{values: []any{
		id.String(),
		time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC),
		14*60 + 30,
		50,
		"CONFIRMED",
		"p-1", "Ana", "Lopez", nil, "ana@example.com",
		"first visit",
		created,
		created,
	}}

	appointment, err := scanAppointment(row)
	require.NoError(t, err)

	assert.Equal(t, id, appointment.ID)
	assert.Equal(t, json_types.NewDate(2024, time.May, 6), appointment.Date)
	assert.Equal(t, json_types.NewTimeOfDay(14, 30), appointment.Time)
	assert.Equal(t, 50, appointment.DurationMinutes)
	assert.Equal(t, domain.SlotStateConfirmed, appointment.State)
	assert.Equal(t, &domain.PatientRef{ID: "p-1", FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com"}, appointment.Patient)
	assert.Equal(t, "first visit", appointment.Notes)
	assert.Equal(t, created, appointment.CreatedAt)
}

func TestScanAppointmentWithoutPatient(t *testing.T) {
	row := rowStub{values: []any{
		uuid.NewString(),
		time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC),
		10 * 60,
		50,
		"BLOCKED",
		nil, nil, nil, nil, nil,
		"",
		time.Now(),
		time.Now(),
	}}

	appointment, err := scanAppointment(row)
	require.NoError(t, err)
	assert.Nil(t, appointment.Patient)
	assert.Equal(t, domain.SlotStateBlocked, appointment.State)
}

func TestPatientColumns(t *testing.T) {
	assert.Equal(t, [5]*string{}, patientColumns(nil))

	columns := patientColumns(&domain.PatientRef{ID: "p-1", FirstName: "Ana", LastName: "Lopez"})
	require.NotNil(t, columns[0])
	assert.Equal(t, "p-1", *columns[0])
	assert.Nil(t, columns[3])
	assert.Nil(t, columns[4])

	assert.Equal(t, &domain.PatientRef{ID: "p-1", FirstName: "Ana", LastName: "Lopez"}, patientFromColumns(columns))
}

func TestMapError(t *testing.T) {
	a := &PostgresStoreAdapter{logger: logger.NewNopLogger()}

	assert.ErrorIs(t, a.mapError("test", pgx.ErrNoRows), out.ErrStoreNotFound)
	assert.ErrorIs(t, a.mapError("test", &pgconn.PgError{Code: "23505"}), out.ErrStoreConflict)

	other := errors.New("connection refused")
	assert.Equal(t, other, a.mapError("test", other))
}

// Integration tests run only against a real database.
func newTestAdapter(t *testing.T) *PostgresStoreAdapter {
	dsn := os.Getenv("SCHEDULE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SCHEDULE_TEST_DATABASE_URL is not set")
	}

	cfg := &config.Config{}
	cfg.Store.PostgresDSN = dsn
	cfg.Store.PostgresMaxConns = 2

	ctx := context.Background()
	adapter, err := NewPostgresStoreAdapter(ctx, cfg, logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(adapter.Close)

	require.NoError(t, adapter.Migrate(ctx))
	_, err = adapter.pool.Exec(ctx, `TRUNCATE appointment`)
	require.NoError(t, err)

	return adapter
}

func TestPostgresStoreLifecycle(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()
	date := json_types.NewDate(2024, time.May, 6)

	created, err := adapter.CreateAppointment(ctx, domain.Appointment{
		Date:            date,
		Time:            json_types.NewTimeOfDay(10, 0),
		DurationMinutes: 50,
		State:           domain.SlotStateConfirmed,
		Patient:         &domain.PatientRef{ID: "p-1", FirstName: "Ana", LastName: "Lopez"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	_, err = adapter.CreateAppointment(ctx, domain.Appointment{
		Date:  date,
		Time:  json_types.NewTimeOfDay(10, 0),
		State: domain.SlotStateBlocked,
	})
	assert.ErrorIs(t, err, out.ErrStoreConflict)

	moved := json_types.NewTimeOfDay(11, 0)
	patched, err := adapter.PatchAppointment(ctx, created.ID, domain.AppointmentPatch{Time: &moved})
	require.NoError(t, err)
	assert.Equal(t, moved, patched.Time)

	cancelled, err := adapter.CancelAppointment(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotStateCancelled, cancelled.State)
	assert.NotNil(t, cancelled.Patient)

	// Отменённая запись не занимает слот
	_, err = adapter.CreateAppointment(ctx, domain.Appointment{
		Date:    date,
		Time:    moved,
		State:   domain.SlotStateConfirmed,
		Patient: &domain.PatientRef{ID: "p-2"},
	})
	require.NoError(t, err)

	list, err := adapter.ListAppointments(ctx, date)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = adapter.GetAppointment(ctx, uuid.New())
	assert.ErrorIs(t, err, out.ErrStoreNotFound)
}
