package server

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/letterrip/workspace-mcp/internal/google"
)

const (
	// DefaultSessionTimeout is how long an idle session is kept before
	// the cleanup loop removes it.
	DefaultSessionTimeout = 24 * time.Hour

	sessionCleanupInterval = 10 * time.Minute
)

// ErrNoAuthorizationHeader is returned when a request carries no
// Authorization header to derive a session from.
var ErrNoAuthorizationHeader = errors.New("no authorization header provided")

type sessionInfo struct {
	account    string
	lastAccess time.Time
}

// SessionIDManager maps HTTP bearer credentials to stable session IDs and
// tracks which Google account each session belongs to. This lets several
// accounts share one server instance.
type SessionIDManager struct {
	mu             sync.RWMutex
	sessions       map[string]*sessionInfo
	sessionTimeout time.Duration
	cleanupTicker  *time.Ticker
	cleanupDone    chan struct{}
	stopOnce       sync.Once
	logger         *slog.Logger
	onExpire       func(expired int)
}

// NewSessionIDManager creates a session manager with the default timeout
// and logger.
func NewSessionIDManager() *SessionIDManager {
	return NewSessionIDManagerWithLogger(DefaultSessionTimeout, slog.Default())
}

// NewSessionIDManagerWithTimeout creates a session manager with a custom
// idle timeout.
func NewSessionIDManagerWithTimeout(timeout time.Duration) *SessionIDManager {
	return NewSessionIDManagerWithLogger(timeout, slog.Default())
}

// NewSessionIDManagerWithLogger creates a session manager with a custom
// timeout and logger, and starts the background cleanup loop.
func NewSessionIDManagerWithLogger(timeout time.Duration, logger *slog.Logger) *SessionIDManager {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}

	m := &SessionIDManager{
		sessions:       make(map[string]*sessionInfo),
		sessionTimeout: timeout,
		cleanupTicker:  time.NewTicker(sessionCleanupInterval),
		cleanupDone:    make(chan struct{}),
		logger:         logger,
	}
	go m.cleanupLoop()
	return m
}

// ResolveSessionID derives a stable session ID from the request's bearer
// credentials. Two requests with the same token map to the same session.
func (m *SessionIDManager) ResolveSessionID(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrNoAuthorizationHeader
	}
	return m.generateSessionID(authHeader), nil
}

// GetAccountForSession returns the account associated with a session,
// refreshing its last-access time. Unknown sessions map to the default
// account.
func (m *SessionIDManager) GetAccountForSession(sessionID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if info, ok := m.sessions[sessionID]; ok {
		info.lastAccess = time.Now()
		return info.account
	}
	return google.DefaultAccount
}

// Touch refreshes a session's last-access time, registering it under the
// given account when seen for the first time. Returns true for new
// sessions.
func (m *SessionIDManager) Touch(sessionID, account string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if info, ok := m.sessions[sessionID]; ok {
		info.lastAccess = time.Now()
		return false
	}
	m.sessions[sessionID] = &sessionInfo{
		account:    account,
		lastAccess: time.Now(),
	}
	return true
}

// SetExpiryCallback registers a function invoked with the number of
// sessions each cleanup sweep removes.
func (m *SessionIDManager) SetExpiryCallback(fn func(expired int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = fn
}

// SetAccountForSession associates an account with a session ID.
func (m *SessionIDManager) SetAccountForSession(sessionID, account string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = &sessionInfo{
		account:    account,
		lastAccess: time.Now(),
	}
}

// RemoveSession removes a session from the manager.
func (m *SessionIDManager) RemoveSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// ListSessions returns the IDs of all active sessions.
func (m *SessionIDManager) ListSessions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

func (m *SessionIDManager) generateSessionID(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func (m *SessionIDManager) cleanupLoop() {
	for {
		select {
		case <-m.cleanupTicker.C:
			m.sweepExpired()
		case <-m.cleanupDone:
			return
		}
	}
}

func (m *SessionIDManager) sweepExpired() {
	m.mu.Lock()
	now := time.Now()
	expired := 0
	for id, info := range m.sessions {
		if now.Sub(info.lastAccess) > m.sessionTimeout {
			delete(m.sessions, id)
			expired++
		}
	}
	onExpire := m.onExpire
	m.mu.Unlock()

	if expired > 0 {
		m.logger.Info("cleaned up expired sessions", "count", expired)
		if onExpire != nil {
			onExpire(expired)
		}
	}
}

// Stop terminates the cleanup loop. Safe to call more than once.
func (m *SessionIDManager) Stop() {
	m.stopOnce.Do(func() {
		m.cleanupTicker.Stop()
		close(m.cleanupDone)
	})
}
