package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/config"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/out"
)

//go:embed schema.sql
var schemaSQL string

const uniqueViolation = "23505"

const selectColumns = `id::text, slot_date, slot_minute, duration_minutes, state,
	patient_id, patient_first_name, patient_last_name, patient_phone, patient_email,
	notes, created_at, updated_at`

// PostgresStoreAdapter keeps appointments in PostgreSQL. A partial unique
// index holds one active record per (date, time).
type PostgresStoreAdapter struct {
	pool   *pgxpool.Pool
	logger out.LoggerPort
}

func NewPostgresStoreAdapter(ctx context.Context, cfg *config.Config, logger out.LoggerPort) (*PostgresStoreAdapter, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Store.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.Store.PostgresMaxConns > 0 {
		poolCfg.MaxConns = cfg.Store.PostgresMaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStoreAdapter{
		pool:   pool,
		logger: logger.WithModule("PostgresStoreAdapter"),
	}, nil
}

// Migrate creates the appointment table and its indexes. Safe to run repeatedly.
func (a *PostgresStoreAdapter) Migrate(ctx context.Context) error {
	if _, err := a.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	a.logger.Info("postgres.migrate.applied", out.LogFields{})
	return nil
}

func (a *PostgresStoreAdapter) Close() {
	a.pool.Close()
}

func (a *PostgresStoreAdapter) ListAppointments(ctx context.Context, date json_types.Date) ([]domain.Appointment, error) {
	rows, err := a.pool.Query(ctx,
		`SELECT `+selectColumns+` FROM appointment
		WHERE slot_date = $1
		ORDER BY slot_minute, created_at`,
		date.Time(time.UTC),
	)
	if err != nil {
		return nil, a.mapError("postgres.list.failed", err)
	}
	defer rows.Close()

	result := make([]domain.Appointment, 0)
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, a.mapError("postgres.list.scan_failed", err)
		}
		result = append(result, appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, a.mapError("postgres.list.failed", err)
	}

	return result, nil
}

func (a *PostgresStoreAdapter) GetAppointment(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	row := a.pool.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM appointment WHERE id = $1::uuid`,
		id.String(),
	)
	appointment, err := scanAppointment(row)
	if err != nil {
		return nil, a.mapError("postgres.get.failed", err)
	}
	return &appointment, nil
}

func (a *PostgresStoreAdapter) CreateAppointment(ctx context.Context, appointment domain.Appointment) (*domain.Appointment, error) {
	patient := patientColumns(appointment.Patient)
	row := a.pool.QueryRow(ctx,
		`INSERT INTO appointment (slot_date, slot_minute, duration_minutes, state,
			patient_id, patient_first_name, patient_last_name, patient_phone, patient_email, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+selectColumns,
		appointment.Date.Time(time.UTC),
		appointment.Time.Minutes(),
		appointment.DurationMinutes,
		string(appointment.State),
		patient[0], patient[1], patient[2], patient[3], patient[4],
		appointment.Notes,
	)
	created, err := scanAppointment(row)
	if err != nil {
		return nil, a.mapError("postgres.create.failed", err)
	}
	return &created, nil
}

// PatchAppointment locks the row, applies the patch in Go and writes the
// whole record back inside one transaction.
func (a *PostgresStoreAdapter) PatchAppointment(ctx context.Context, id uuid.UUID, patch domain.AppointmentPatch) (*domain.Appointment, error) {
	var updated domain.Appointment

	err := pgx.BeginFunc(ctx, a.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`SELECT `+selectColumns+` FROM appointment WHERE id = $1::uuid FOR UPDATE`,
			id.String(),
		)
		current, err := scanAppointment(row)
		if err != nil {
			return err
		}

		next := current.Apply(patch)
		patient := patientColumns(next.Patient)
		row = tx.QueryRow(ctx,
			`UPDATE appointment SET
				slot_date = $2, slot_minute = $3, duration_minutes = $4, state = $5,
				patient_id = $6, patient_first_name = $7, patient_last_name = $8,
				patient_phone = $9, patient_email = $10, notes = $11, updated_at = now()
			WHERE id = $1::uuid
			RETURNING `+selectColumns,
			id.String(),
			next.Date.Time(time.UTC),
			next.Time.Minutes(),
			next.DurationMinutes,
			string(next.State),
			patient[0], patient[1], patient[2], patient[3], patient[4],
			next.Notes,
		)
		updated, err = scanAppointment(row)
		return err
	})
	if err != nil {
		return nil, a.mapError("postgres.patch.failed", err)
	}

	return &updated, nil
}

func (a *PostgresStoreAdapter) CancelAppointment(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	cancelled := domain.SlotStateCancelled
	return a.PatchAppointment(ctx, id, domain.AppointmentPatch{State: &cancelled})
}

func (a *PostgresStoreAdapter) mapError(event string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return out.ErrStoreNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return out.ErrStoreConflict
	}

	a.logger.Error(event, out.LogFields{
		"error": err.Error(),
	})
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row scanner) (domain.Appointment, error) {
	var (
		id          string
		slotDate    time.Time
		minute      int
		state       string
		patient     [5]*string
		appointment domain.Appointment
	)

	err := row.Scan(
		&id, &slotDate, &minute, &appointment.DurationMinutes, &state,
		&patient[0], &patient[1], &patient[2], &patient[3], &patient[4],
		&appointment.Notes, &appointment.CreatedAt, &appointment.UpdatedAt,
	)
	if err != nil {
		return domain.Appointment{}, err
	}

	appointment.ID, err = uuid.Parse(id)
	if err != nil {
		return domain.Appointment{}, err
	}
	appointment.Date = json_types.DateOf(slotDate)
	appointment.Time = json_types.NewTimeOfDay(minute/60, minute%60)
	appointment.State = domain.SlotState(state)
	appointment.Patient = patientFromColumns(patient)

	return appointment, nil
}

func patientColumns(patient *domain.PatientRef) [5]*string {
	if patient == nil {
		return [5]*string{}
	}
	return [5]*string{
		&patient.ID,
		&patient.FirstName,
		&patient.LastName,
		nullable(patient.Phone),
		nullable(patient.Email),
	}
}

func patientFromColumns(columns [5]*string) *domain.PatientRef {
	if columns[0] == nil {
		return nil
	}
	value := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	return &domain.PatientRef{
		ID:        value(columns[0]),
		FirstName: value(columns[1]),
		LastName:  value(columns[2]),
		Phone:     value(columns[3]),
		Email:     value(columns[4]),
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
