package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/workspace-mcp/internal/mcp/oauth"
)

func newTestOAuthHandler(t *testing.T, baseURL string) *oauth.Handler {
	t.Helper()
	handler, err := oauth.NewHandler(&oauth.Config{Resource: baseURL})
	if err != nil {
		t.Fatalf("failed to create OAuth handler: %v", err)
	}
	t.Cleanup(handler.Shutdown)
	return handler
}

func TestValidateHTTPSRequirement(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{name: "HTTPS URL", baseURL: "https://mcp.example.com", wantErr: false},
		{name: "HTTPS with port", baseURL: "https://mcp.example.com:8443", wantErr: false},
		{name: "HTTPS with path", baseURL: "https://mcp.example.com/api", wantErr: false},
		{name: "HTTP localhost", baseURL: "http://localhost:8080", wantErr: false},
		{name: "HTTP 127.0.0.1", baseURL: "http://127.0.0.1:8080", wantErr: false},
		{name: "HTTP IPv6 loopback", baseURL: "http://[::1]:8080", wantErr: false},
		{name: "HTTP public host", baseURL: "http://mcp.example.com", wantErr: true},
		{name: "HTTP localhost subdomain", baseURL: "http://localhost.example.com", wantErr: true},
		{name: "HTTP loopback-prefixed domain", baseURL: "http://127.0.0.1.example.com", wantErr: true},
		{name: "empty URL", baseURL: "", wantErr: true},
		{name: "missing scheme", baseURL: "mcp.example.com", wantErr: true},
		{name: "unsupported scheme", baseURL: "ftp://example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateHTTPSRequirement(tt.baseURL)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateHTTPSRequirement(%q) error = %v, wantErr %v", tt.baseURL, err, tt.wantErr)
			}
		})
	}
}

func TestNewOAuthHTTPServerWithHandlerAndTLS_Validation(t *testing.T) {
	mcpSrv := mcpserver.NewMCPServer("test", "0.0.0")
	handler := newTestOAuthHandler(t, "http://localhost:8080")

	if _, err := NewOAuthHTTPServerWithHandlerAndTLS(mcpSrv, "streamable-http", nil, false, "", ""); err == nil {
		t.Error("expected error for nil OAuth handler")
	}

	if _, err := NewOAuthHTTPServerWithHandlerAndTLS(mcpSrv, "streamable-http", handler, false, "cert.pem", ""); err == nil {
		t.Error("expected error for certificate without key")
	}
	if _, err := NewOAuthHTTPServerWithHandlerAndTLS(mcpSrv, "streamable-http", handler, false, "", "key.pem"); err == nil {
		t.Error("expected error for key without certificate")
	}

	srv, err := NewOAuthHTTPServerWithHandlerAndTLS(mcpSrv, "streamable-http", handler, false, "", "")
	if err != nil {
		t.Fatalf("NewOAuthHTTPServerWithHandlerAndTLS() error = %v", err)
	}
	if srv.GetOAuthHandler() != handler {
		t.Error("GetOAuthHandler() should return the handler passed in")
	}
	if srv.SSOTokenStore() == nil {
		t.Error("SSOTokenStore() should not be nil")
	}
}

func TestOAuthHTTPServer_StartRejectsInsecureBaseURL(t *testing.T) {
	mcpSrv := mcpserver.NewMCPServer("test", "0.0.0")
	handler := newTestOAuthHandler(t, "http://localhost:8080")

	srv, err := NewOAuthHTTPServerWithHandler(mcpSrv, "streamable-http", handler, false)
	if err != nil {
		t.Fatalf("NewOAuthHTTPServerWithHandler() error = %v", err)
	}

	// Rewriting the resource after construction simulates a
	// misconfigured deployment.
	handler.GetConfig().Resource = "http://mcp.example.com"
	if err := srv.Start(":0"); err == nil {
		t.Error("expected Start to reject non-localhost HTTP base URL")
	}
}

func TestOAuthHTTPServer_StartRejectsUnknownServerType(t *testing.T) {
	mcpSrv := mcpserver.NewMCPServer("test", "0.0.0")
	handler := newTestOAuthHandler(t, "http://localhost:8080")

	srv, err := NewOAuthHTTPServerWithHandler(mcpSrv, "carrier-pigeon", handler, false)
	if err != nil {
		t.Fatalf("NewOAuthHTTPServerWithHandler() error = %v", err)
	}
	if err := srv.Start(":0"); err == nil {
		t.Error("expected Start to reject unknown server type")
	}
}

func TestOAuthHTTPServer_ShutdownWithoutStart(t *testing.T) {
	mcpSrv := mcpserver.NewMCPServer("test", "0.0.0")
	handler := newTestOAuthHandler(t, "http://localhost:8080")

	srv, err := NewOAuthHTTPServerWithHandler(mcpSrv, "streamable-http", handler, false)
	if err != nil {
		t.Fatalf("NewOAuthHTTPServerWithHandler() error = %v", err)
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestOAuthHTTPServer_TrackSession(t *testing.T) {
	mcpSrv := mcpserver.NewMCPServer("test", "0.0.0")
	handler := newTestOAuthHandler(t, "http://localhost:8080")

	srv, err := NewOAuthHTTPServerWithHandler(mcpSrv, "streamable-http", handler, false)
	if err != nil {
		t.Fatalf("NewOAuthHTTPServerWithHandler() error = %v", err)
	}
	defer srv.Shutdown(context.Background())

	called := 0
	wrapped := srv.trackSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called++
	}))

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer token-a")
	req = req.WithContext(oauth.ContextWithUserInfo(req.Context(), &oauth.GoogleUserInfo{Email: "alice@example.com"}))

	wrapped.ServeHTTP(httptest.NewRecorder(), req)
	wrapped.ServeHTTP(httptest.NewRecorder(), req)

	if called != 2 {
		t.Fatalf("next handler called %d times, want 2", called)
	}

	sessions := srv.SessionManager().ListSessions()
	if len(sessions) != 1 {
		t.Fatalf("ListSessions() = %v, want exactly one session", sessions)
	}
	if got := srv.SessionManager().GetAccountForSession(sessions[0]); got != "alice@example.com" {
		t.Errorf("session account = %q, want alice@example.com", got)
	}

	// Requests without credentials pass through without creating sessions.
	anon := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	wrapped.ServeHTTP(httptest.NewRecorder(), anon)
	if got := len(srv.SessionManager().ListSessions()); got != 1 {
		t.Errorf("anonymous request created a session, have %d", got)
	}
}
