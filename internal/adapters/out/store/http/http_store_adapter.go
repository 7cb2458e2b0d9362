package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/config"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/out"
)

const defaultTimeout = 10 * time.Second

// HttpStoreAdapter talks to the appointment backend over its REST API.
type HttpStoreAdapter struct {
	client   *http.Client
	baseURL  string
	username string
	password string
	logger   out.LoggerPort
}

func NewHttpStoreAdapter(cfg *config.Config, logger out.LoggerPort) *HttpStoreAdapter {
	timeout := cfg.Store.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &HttpStoreAdapter{
		client:   &http.Client{Timeout: timeout},
		baseURL:  cfg.Store.URL,
		username: cfg.Store.Username,
		password: cfg.Store.Password,
		logger:   logger.WithModule("HttpStoreAdapter"),
	}
}

func (a *HttpStoreAdapter) ListAppointments(ctx context.Context, date json_types.Date) ([]domain.Appointment, error) {
	a.logger.Debug("store.appointments.fetch", out.LogFields{
		"date": date.String(),
	})

	var appointments []domain.Appointment
	url := fmt.Sprintf("%s/appointments/%s", a.baseURL, date)
	if err := a.do(ctx, "store.appointments.fetch", http.MethodGet, url, nil, &appointments); err != nil {
		return nil, err
	}

	a.logger.Debug("store.appointments.fetch_success", out.LogFields{
		"date":  date.String(),
		"count": len(appointments),
	})

	return appointments, nil
}

func (a *HttpStoreAdapter) GetAppointment(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	var appointment domain.Appointment
	url := fmt.Sprintf("%s/appointment/%s", a.baseURL, id)
	if err := a.do(ctx, "store.appointment.fetch", http.MethodGet, url, nil, &appointment); err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (a *HttpStoreAdapter) CreateAppointment(ctx context.Context, appointment domain.Appointment) (*domain.Appointment, error) {
	a.logger.Info("store.appointment.create", out.LogFields{
		"key":   appointment.Key().String(),
		"state": appointment.State,
	})

	var created domain.Appointment
	url := fmt.Sprintf("%s/appointment", a.baseURL)
	if err := a.do(ctx, "store.appointment.create", http.MethodPost, url, newCreateRequest(appointment), &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// createRequest leaves out the id and timestamps, the backend assigns them.
type createRequest struct {
	Date            json_types.Date      `json:"date"`
	Time            json_types.TimeOfDay `json:"time"`
	DurationMinutes int                  `json:"durationMinutes"`
	Patient         *domain.PatientRef   `json:"patient,omitempty"`
	Notes           string               `json:"notes,omitempty"`
	State           domain.SlotState     `json:"state"`
}

func newCreateRequest(appointment domain.Appointment) createRequest {
	return createRequest{
		Date:            appointment.Date,
		Time:            appointment.Time,
		DurationMinutes: appointment.DurationMinutes,
		Patient:         appointment.Patient,
		Notes:           appointment.Notes,
		State:           appointment.State,
	}
}

func (a *HttpStoreAdapter) PatchAppointment(ctx context.Context, id uuid.UUID, patch domain.AppointmentPatch) (*domain.Appointment, error) {
	a.logger.Info("store.appointment.patch", out.LogFields{
		"backendId": id.String(),
	})

	var patched domain.Appointment
	url := fmt.Sprintf("%s/appointment/%s", a.baseURL, id)
	if err := a.do(ctx, "store.appointment.patch", http.MethodPatch, url, patch, &patched); err != nil {
		return nil, err
	}
	return &patched, nil
}

func (a *HttpStoreAdapter) CancelAppointment(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	a.logger.Info("store.appointment.cancel", out.LogFields{
		"backendId": id.String(),
	})

	var cancelled domain.Appointment
	url := fmt.Sprintf("%s/appointment/cancel/%s", a.baseURL, id)
	if err := a.do(ctx, "store.appointment.cancel", http.MethodPut, url, nil, &cancelled); err != nil {
		return nil, err
	}
	return &cancelled, nil
}

func (a *HttpStoreAdapter) do(ctx context.Context, event, method, url string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", event, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		a.logger.Error(event+"_failed", out.LogFields{
			"error": err.Error(),
		})
		return err
	}

	req.SetBasicAuth(a.username, a.password)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Error(event+"_failed", out.LogFields{
			"error": err.Error(),
		})
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return out.ErrStoreNotFound
	case resp.StatusCode == http.StatusConflict:
		return out.ErrStoreConflict
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		a.logger.Error(event+"_failed", out.LogFields{
			"status": resp.StatusCode,
		})
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil && !errors.Is(err, io.EOF) {
		a.logger.Error(event+".decode_failed", out.LogFields{
			"error": err.Error(),
		})
		return err
	}

	return nil
}
