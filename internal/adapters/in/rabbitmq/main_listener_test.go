package rabbitmq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/adapters/out/logger"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/in"
)

// invalidationRecorder реализует только сброс кэша, остальное не вызывается
type invalidationRecorder struct {
	in.ScheduleUseCase

	dates []json_types.Date
	all   int
	err   error
}

func (r *invalidationRecorder) InvalidateDate(_ context.Context, date json_types.Date) error {
	r.dates = append(r.dates, date)
	return r.err
}

func (r *invalidationRecorder) InvalidateAll(context.Context) error {
	r.all++
	return r.err
}

func newTestListener(useCase in.ScheduleUseCase) *CacheHitListener {
	return &CacheHitListener{
		useCase: useCase,
		logger:  logger.NewNopLogger(),
	}
}

func TestParseCacheMessageRoutingKey(t *testing.T) {
	key, err := parseCacheMessageRoutingKey("backend.slot-scheduler.Appointment.invalidate")
	require.NoError(t, err)
	assert.Equal(t, CacheMessageRoutingKey{
		Source:       "backend",
		Receiver:     "slot-scheduler",
		ResourceType: CacheHitResourceTypeAppointment,
		CacheHitType: CacheHitTypeInvalidate,
	}, key)

	_, err = parseCacheMessageRoutingKey("appointment.invalidate")
	assert.Error(t, err)
}

func TestAppointmentMessageInvalidatesDates(t *testing.T) {
	recorder := &invalidationRecorder{}
	listener := newTestListener(recorder)

	body := `{"date":"2024-05-06","dates":["2024-05-07","2024-05-06"],"appointment":{"date":"2024/05/08","time":"10:00:00","state":"CONFIRMED"}}`
	err := listener.processMessage(context.Background(), "backend.slot-scheduler.appointment.store", []byte(body))
	require.NoError(t, err)

	assert.Equal(t, []json_types.Date{
		json_types.NewDate(2024, time.May, 6),
		json_types.NewDate(2024, time.May, 7),
		json_types.NewDate(2024, time.May, 8),
	}, recorder.dates)
}

func TestAppointmentMessageErrors(t *testing.T) {
	cases := map[string]struct {
		routingKey string
		body       string
	}{
		"bad json":     {"backend.slot-scheduler.appointment.invalidate", `{"date":`},
		"no date":      {"backend.slot-scheduler.appointment.invalidate", `{}`},
		"bad date":     {"backend.slot-scheduler.appointment.invalidate", `{"date":"yesterday"}`},
		"unknown type": {"backend.slot-scheduler.appointment.delete", `{"date":"2024-05-06"}`},
		"short key":    {"appointment", `{"date":"2024-05-06"}`},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			recorder := &invalidationRecorder{}
			err := newTestListener(recorder).processMessage(context.Background(), tc.routingKey, []byte(tc.body))

			assert.Error(t, err)
			assert.Empty(t, recorder.dates)
		})
	}
}

func TestAllMessageInvalidatesEverything(t *testing.T) {
	recorder := &invalidationRecorder{}
	listener := newTestListener(recorder)

	require.NoError(t, listener.processMessage(context.Background(), "backend.slot-scheduler._all_.invalidate", nil))
	require.NoError(t, listener.processMessage(context.Background(), "backend.slot-scheduler._all_.store", nil))

	assert.Equal(t, 1, recorder.all)
}

func TestUnknownResourceIsSkipped(t *testing.T) {
	recorder := &invalidationRecorder{}

	err := newTestListener(recorder).processMessage(context.Background(), "backend.slot-scheduler.patient.store", []byte(`{}`))

	assert.NoError(t, err)
	assert.Empty(t, recorder.dates)
	assert.Zero(t, recorder.all)
}

func TestUseCaseErrorIsReturned(t *testing.T) {
	recorder := &invalidationRecorder{err: errors.New("cache down")}

	err := newTestListener(recorder).processMessage(context.Background(), "backend.slot-scheduler.appointment.invalidate", []byte(`{"date":"2024-05-06"}`))

	assert.EqualError(t, err, "cache down")
}
