package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func decodeProbe(t *testing.T, rec *httptest.ResponseRecorder) ProbeResponse {
	t.Helper()
	var resp ProbeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode probe response: %v", err)
	}
	return resp
}

func TestHealthChecker_Liveness(t *testing.T) {
	h := NewHealthChecker(nil)

	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("liveness status = %d, want %d", rec.Code, http.StatusOK)
	}
	if resp := decodeProbe(t, rec); resp.Status != probeStatusOK {
		t.Errorf("liveness body status = %q, want %q", resp.Status, probeStatusOK)
	}
}

func TestHealthChecker_Readiness(t *testing.T) {
	h := NewHealthChecker(nil)

	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("ready status = %d, want %d", rec.Code, http.StatusOK)
	}

	h.SetReady(false)
	rec = httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("not-ready status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if resp := decodeProbe(t, rec); resp.Checks["ready"] != probeStatusNotReady {
		t.Errorf("ready check = %q, want %q", resp.Checks["ready"], probeStatusNotReady)
	}

	h.SetReady(true)
	if !h.IsReady() {
		t.Error("IsReady() should be true after SetReady(true)")
	}
}

func TestHealthChecker_ReadinessDuringShutdown(t *testing.T) {
	sc, err := NewServerContextWithProvider(context.Background(), newTestProvider())
	if err != nil {
		t.Fatalf("NewServerContextWithProvider() error = %v", err)
	}
	h := NewHealthChecker(sc)

	if err := sc.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("shutdown readiness status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if resp := decodeProbe(t, rec); resp.Checks["shutdown"] != probeStatusShuttingDown {
		t.Errorf("shutdown check = %q, want %q", resp.Checks["shutdown"], probeStatusShuttingDown)
	}
}

func TestHealthChecker_Detailed(t *testing.T) {
	h := NewHealthChecker(nil)

	rec := httptest.NewRecorder()
	h.DetailedHealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("detailed status = %d, want %d", rec.Code, http.StatusOK)
	}
	resp := decodeProbe(t, rec)
	if resp.Status != probeStatusOK {
		t.Errorf("detailed body status = %q, want %q", resp.Status, probeStatusOK)
	}
	if resp.Uptime == "" {
		t.Error("detailed response should include uptime")
	}
}

func TestHealthChecker_RegisterEndpoints(t *testing.T) {
	h := NewHealthChecker(nil)
	mux := http.NewServeMux()
	h.RegisterHealthEndpoints(mux)

	for _, path := range []string{"/healthz", "/readyz", "/healthz/detailed"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}
