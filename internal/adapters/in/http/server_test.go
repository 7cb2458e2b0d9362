package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/adapters/out/logger"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/config"
)

type observedRequest struct {
	method string
	route  string
	status int
}

type recordingObserver struct {
	requests []observedRequest
}

func (o *recordingObserver) ObserveHTTPRequest(method, route string, status int, _ time.Duration) {
	o.requests = append(o.requests, observedRequest{method: method, route: route, status: status})
}

func TestRouterProbesArePublic(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.App.Version = "1.2.3"
	cfg.Auth.BasicClients = []config.ConfigBasicClient{{Username: "front", Password: "secret"}}

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# metrics"))
	})
	observer := &recordingObserver{}
	router := NewRouter(cfg, NewScheduleController(&mockUseCase{}, cfg), logger.NewNopLogger(), ServerOptions{
		MetricsHandler: metrics,
		Observer:       observer,
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","version":"1.2.3"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/schedule/2024-05-06", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, []observedRequest{
		{method: http.MethodGet, route: "/health", status: http.StatusOK},
		{method: http.MethodGet, route: "/metrics", status: http.StatusOK},
		{method: http.MethodGet, route: "/api/v1/schedule/:date", status: http.StatusUnauthorized},
		{method: http.MethodGet, route: "unmatched", status: http.StatusNotFound},
	}, observer.requests)
}
