package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/letterrip/workspace-mcp/internal/google"
)

func TestSessionIDManager_ResolveSessionID(t *testing.T) {
	m := NewSessionIDManager()
	defer m.Stop()

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer token-a")

	id1, err := m.ResolveSessionID(req)
	if err != nil {
		t.Fatalf("ResolveSessionID() error = %v", err)
	}
	if id1 == "" {
		t.Fatal("expected non-empty session ID")
	}

	// Same credentials map to the same session.
	id2, err := m.ResolveSessionID(req)
	if err != nil {
		t.Fatalf("ResolveSessionID() second call error = %v", err)
	}
	if id1 != id2 {
		t.Errorf("session IDs differ for the same token: %q vs %q", id1, id2)
	}

	// Different credentials map to a different session.
	other := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	other.Header.Set("Authorization", "Bearer token-b")
	id3, err := m.ResolveSessionID(other)
	if err != nil {
		t.Fatalf("ResolveSessionID() error = %v", err)
	}
	if id3 == id1 {
		t.Error("different tokens should produce different session IDs")
	}
}

func TestSessionIDManager_ResolveSessionID_NoHeader(t *testing.T) {
	m := NewSessionIDManager()
	defer m.Stop()

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	if _, err := m.ResolveSessionID(req); !errors.Is(err, ErrNoAuthorizationHeader) {
		t.Errorf("error = %v, want ErrNoAuthorizationHeader", err)
	}
}

func TestSessionIDManager_AccountMapping(t *testing.T) {
	m := NewSessionIDManager()
	defer m.Stop()

	if got := m.GetAccountForSession("unknown"); got != google.DefaultAccount {
		t.Errorf("unknown session account = %q, want %q", got, google.DefaultAccount)
	}

	m.SetAccountForSession("session-1", "alice@example.com")
	if got := m.GetAccountForSession("session-1"); got != "alice@example.com" {
		t.Errorf("account = %q, want alice@example.com", got)
	}

	m.RemoveSession("session-1")
	if got := m.GetAccountForSession("session-1"); got != google.DefaultAccount {
		t.Errorf("removed session account = %q, want %q", got, google.DefaultAccount)
	}
}

func TestSessionIDManager_ListSessions(t *testing.T) {
	m := NewSessionIDManager()
	defer m.Stop()

	m.SetAccountForSession("session-1", "alice@example.com")
	m.SetAccountForSession("session-2", "bob@example.com")

	sessions := m.ListSessions()
	if len(sessions) != 2 {
		t.Fatalf("ListSessions() returned %d sessions, want 2", len(sessions))
	}
}

func TestSessionIDManager_SweepExpired(t *testing.T) {
	m := NewSessionIDManagerWithLogger(10*time.Millisecond, nil)
	defer m.Stop()

	m.SetAccountForSession("stale", "alice@example.com")
	time.Sleep(30 * time.Millisecond)
	m.SetAccountForSession("fresh", "bob@example.com")

	m.sweepExpired()

	sessions := m.ListSessions()
	if len(sessions) != 1 || sessions[0] != "fresh" {
		t.Errorf("ListSessions() after sweep = %v, want [fresh]", sessions)
	}
}

func TestSessionIDManager_StopIsIdempotent(t *testing.T) {
	m := NewSessionIDManager()
	m.Stop()
	m.Stop()
}

func TestSessionIDManager_Touch(t *testing.T) {
	m := NewSessionIDManager()
	defer m.Stop()

	if !m.Touch("s1", "alice@example.com") {
		t.Error("first Touch() should report a new session")
	}
	if m.Touch("s1", "alice@example.com") {
		t.Error("second Touch() should not report a new session")
	}
	if got := m.GetAccountForSession("s1"); got != "alice@example.com" {
		t.Errorf("GetAccountForSession() = %q, want alice@example.com", got)
	}
}

func TestSessionIDManager_ExpiryCallback(t *testing.T) {
	m := NewSessionIDManagerWithLogger(10*time.Millisecond, nil)
	defer m.Stop()

	expired := 0
	m.SetExpiryCallback(func(n int) { expired += n })

	m.Touch("stale-1", "alice@example.com")
	m.Touch("stale-2", "bob@example.com")
	time.Sleep(30 * time.Millisecond)

	m.sweepExpired()

	if expired != 2 {
		t.Errorf("expiry callback saw %d sessions, want 2", expired)
	}
}
