package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func collectorServer(t *testing.T, failures int32) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) <= failures {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", srv.URL)
	return srv, &requests
}

func TestCheckCollectorRetriesUntilReachable(t *testing.T) {
	_, requests := collectorServer(t, 2)

	if err := checkCollector(context.Background(), 10*time.Second); err != nil {
		t.Fatalf("checkCollector() = %v, want nil", err)
	}
	if got := requests.Load(); got != 3 {
		t.Errorf("collector saw %d requests, want 3", got)
	}
}

func TestCheckCollectorGivesUp(t *testing.T) {
	_, requests := collectorServer(t, 1<<30)

	if err := checkCollector(context.Background(), 300*time.Millisecond); err == nil {
		t.Fatal("checkCollector() = nil, want error")
	}
	if got := requests.Load(); got < 1 {
		t.Errorf("collector saw %d requests, want at least 1", got)
	}
}
