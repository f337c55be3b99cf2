package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	probeStatusOK           = "ok"
	probeStatusNotReady     = "not ready"
	probeStatusShuttingDown = "shutting down"
)

// HealthChecker serves Kubernetes-style liveness and readiness probes for
// the HTTP transports.
type HealthChecker struct {
	ready         atomic.Bool
	serverContext *ServerContext
	startedAt     time.Time
}

// NewHealthChecker creates a HealthChecker in the ready state.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{
		serverContext: sc,
		startedAt:     time.Now(),
	}
	h.ready.Store(true)
	return h
}

// SetReady marks the server as ready or not ready to receive traffic.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the server is ready to receive traffic.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

func (h *HealthChecker) shuttingDown() bool {
	return h.serverContext != nil && h.serverContext.IsShutdown()
}

// ProbeResponse is the JSON body returned by the probe endpoints.
type ProbeResponse struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime,omitempty"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LivenessHandler serves /healthz. Liveness only asserts the process is
// running, so it always reports ok.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeProbe(w, http.StatusOK, ProbeResponse{Status: probeStatusOK})
	})
}

// ReadinessHandler serves /readyz. The server is ready when it has not
// been marked unready and the server context is not shutting down.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		checks := map[string]string{
			"ready":    probeStatusOK,
			"shutdown": probeStatusOK,
		}
		status := probeStatusOK
		code := http.StatusOK

		if !h.ready.Load() {
			checks["ready"] = probeStatusNotReady
			status = probeStatusNotReady
			code = http.StatusServiceUnavailable
		}
		if h.shuttingDown() {
			checks["shutdown"] = probeStatusShuttingDown
			status = probeStatusNotReady
			code = http.StatusServiceUnavailable
		}

		writeProbe(w, code, ProbeResponse{Status: status, Checks: checks})
	})
}

// DetailedHealthHandler serves /healthz/detailed with uptime information.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := ProbeResponse{
			Status: probeStatusOK,
			Uptime: time.Since(h.startedAt).Truncate(time.Second).String(),
		}
		code := http.StatusOK

		switch {
		case !h.ready.Load():
			resp.Status = probeStatusNotReady
			code = http.StatusServiceUnavailable
		case h.shuttingDown():
			resp.Status = probeStatusShuttingDown
			code = http.StatusServiceUnavailable
		}

		writeProbe(w, code, resp)
	})
}

// RegisterHealthEndpoints installs the probe handlers on the given mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

func writeProbe(w http.ResponseWriter, code int, resp ProbeResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
