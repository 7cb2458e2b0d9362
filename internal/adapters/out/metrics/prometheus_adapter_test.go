package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "conflict", Outcome(&domain.ConflictError{Reason: "already confirmed"}))
	assert.Equal(t, "invalid_state", Outcome(&domain.InvalidStateError{Reason: "not booked"}))
	assert.Equal(t, "not_found", Outcome(&domain.NotFoundError{}))
	assert.Equal(t, "validation", Outcome(&domain.ValidationError{Field: "time"}))
	assert.Equal(t, "store_unavailable", Outcome(&domain.StoreUnavailableError{Err: errors.New("down")}))
	assert.Equal(t, "error", Outcome(errors.New("boom")))
}

func TestObserveCounters(t *testing.T) {
	a := NewPrometheusAdapter()

	a.ObserveOperation("assign", nil)
	a.ObserveOperation("assign", &domain.ConflictError{})
	a.ObserveOperation("assign", &domain.ConflictError{})
	a.ObserveCache(true)
	a.ObserveCache(false)
	a.ObserveCache(false)
	a.ObserveMergeAnomaly("orphan_record")
	a.ObserveResync(15 * time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.operations.WithLabelValues("assign", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(a.operations.WithLabelValues("assign", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.cacheRequests.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(a.cacheRequests.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.mergeAnomalies.WithLabelValues("orphan_record")))
	assert.Equal(t, 1, testutil.CollectAndCount(a.resyncDuration))
}

func TestHandlerExposesMetrics(t *testing.T) {
	a := NewPrometheusAdapter()
	a.ObserveOperation("block", nil)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `slot_scheduler_operations_total{operation="block",outcome="ok"} 1`)
}
