package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstrumentHandlerLabelsByRoutePattern(t *testing.T) {
	RequestDuration.Reset()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/messages/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := InstrumentHandler(mux)

	for _, path := range []string{"/api/v1/messages/1", "/api/v1/messages/2", "/api/v1/messages/3"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	// Distinct entity ids must collapse into the one matched pattern, not
	// mint a label value each.
	if got := testutil.CollectAndCount(RequestDuration); got != 1 {
		t.Fatalf("expected one route series, got %d", got)
	}
}

func TestInstrumentHandlerUnmatchedRoute(t *testing.T) {
	RequestDuration.Reset()

	h := InstrumentHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got := testutil.CollectAndCount(RequestDuration); got != 1 {
		t.Fatalf("expected one series, got %d", got)
	}
}
