package server

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/letterrip/workspace-mcp/internal/instrumentation"
)

func newEnabledInstrumentation(t *testing.T) *instrumentation.Provider {
	t.Helper()

	config := instrumentation.DefaultConfig()
	config.Enabled = true
	config.MetricsExporter = instrumentation.ExporterPrometheus
	config.TracingExporter = instrumentation.ExporterNone

	provider, err := instrumentation.NewProvider(context.Background(), config)
	if err != nil {
		t.Fatalf("failed to create instrumentation provider: %v", err)
	}
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})
	return provider
}

func TestNewMetricsServer_RequiresProvider(t *testing.T) {
	_, err := NewMetricsServer(MetricsServerConfig{Addr: ":9090"})
	if err == nil {
		t.Fatal("expected error when instrumentation provider is missing")
	}
}

func TestNewMetricsServer_RequiresEnabledProvider(t *testing.T) {
	config := instrumentation.DefaultConfig()
	config.Enabled = false

	provider, err := instrumentation.NewProvider(context.Background(), config)
	if err != nil {
		t.Fatalf("failed to create disabled provider: %v", err)
	}

	_, err = NewMetricsServer(MetricsServerConfig{
		Addr:                    ":9090",
		InstrumentationProvider: provider,
	})
	if err == nil {
		t.Fatal("expected error when instrumentation provider is disabled")
	}
}

func TestNewMetricsServer_DefaultAddr(t *testing.T) {
	srv, err := NewMetricsServer(MetricsServerConfig{
		InstrumentationProvider: newEnabledInstrumentation(t),
	})
	if err != nil {
		t.Fatalf("NewMetricsServer() error = %v", err)
	}
	if srv.Addr() != DefaultMetricsAddr {
		t.Errorf("Addr() = %q, want %q", srv.Addr(), DefaultMetricsAddr)
	}
}

func TestMetricsServer_ServesMetrics(t *testing.T) {
	srv, err := NewMetricsServer(MetricsServerConfig{
		Addr:                    "127.0.0.1:0",
		InstrumentationProvider: newEnabledInstrumentation(t),
	})
	if err != nil {
		t.Fatalf("NewMetricsServer() error = %v", err)
	}

	ready := make(chan struct{})
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.StartWithReadySignal(ready); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ready:
	case err := <-serveErr:
		t.Fatalf("metrics server failed to start: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("metrics server startup timed out")
	}

	// Addr() reflects the bound ephemeral port once the server started.
	resp, err := http.Get(fmt.Sprintf("http://%s/metrics", srv.Addr()))
	if err != nil {
		t.Fatalf("failed to scrape metrics endpoint: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	_ = resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if err := <-serveErr; err != nil {
		t.Fatalf("metrics server returned error: %v", err)
	}
}
