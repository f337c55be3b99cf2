package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/letterrip/workspace-mcp/internal/calendar"
	"github.com/letterrip/workspace-mcp/internal/forms"
	"github.com/letterrip/workspace-mcp/internal/gmail"
	"github.com/letterrip/workspace-mcp/internal/google"
	"github.com/letterrip/workspace-mcp/internal/instrumentation"
	"github.com/letterrip/workspace-mcp/internal/logging"
	"github.com/letterrip/workspace-mcp/internal/sheets"
	"github.com/letterrip/workspace-mcp/internal/slides"
)

// ServerContext holds shared state for the MCP server, including lazily
// created per-account Google API clients. All methods are safe for
// concurrent use.
type ServerContext struct {
	ctx    context.Context
	logger *slog.Logger

	// tokenProvider supplies OAuth tokens for Google API clients.
	// For stdio transport this is the file-based provider; for HTTP
	// transport it is backed by the OAuth token store.
	tokenProvider google.TokenProvider

	mu              sync.RWMutex
	calendarClients map[string]*calendar.Client
	gmailClients    map[string]*gmail.Client
	sheetsClients   map[string]*sheets.Client
	formsClients    map[string]*forms.Client
	slidesClients   map[string]*slides.Client
	shutdown        bool

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
}

// NewServerContext creates a server context backed by the file token
// provider (tokens cached by the auth commands).
func NewServerContext(ctx context.Context) (*ServerContext, error) {
	return NewServerContextWithProvider(ctx, google.NewFileTokenProvider())
}

// NewServerContextWithProvider creates a server context with a custom
// token provider, typically one backed by the HTTP OAuth token store.
func NewServerContextWithProvider(ctx context.Context, tokenProvider google.TokenProvider) (*ServerContext, error) {
	if tokenProvider == nil {
		return nil, fmt.Errorf("token provider must not be nil")
	}
	return &ServerContext{
		ctx:             ctx,
		logger:          slog.Default(),
		tokenProvider:   tokenProvider,
		calendarClients: make(map[string]*calendar.Client),
		gmailClients:    make(map[string]*gmail.Client),
		sheetsClients:   make(map[string]*sheets.Client),
		formsClients:    make(map[string]*forms.Client),
		slidesClients:   make(map[string]*slides.Client),
	}, nil
}

// Context returns the server's base context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// TokenProvider returns the token provider used for Google API clients.
func (sc *ServerContext) TokenProvider() google.TokenProvider {
	return sc.tokenProvider
}

// SetMetrics attaches the instrumentation metrics used by tool handlers.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the attached metrics, or nil when instrumentation is
// disabled. Recording on a nil *Metrics is a no-op.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger attaches the audit logger used by tool handlers.
func (sc *ServerContext) SetAuditLogger(l *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = l
}

// AuditLogger returns the attached audit logger, or nil when disabled.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown reports whether Shutdown has been called.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// CalendarClientForAccount returns the Calendar client for the given
// account, creating it on first use.
func (sc *ServerContext) CalendarClientForAccount(account string) (*calendar.Client, error) {
	sc.mu.RLock()
	if sc.shutdown {
		sc.mu.RUnlock()
		return nil, fmt.Errorf("server context is shut down")
	}
	if c, ok := sc.calendarClients[account]; ok {
		sc.mu.RUnlock()
		return c, nil
	}
	sc.mu.RUnlock()

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.shutdown {
		return nil, fmt.Errorf("server context is shut down")
	}
	if c, ok := sc.calendarClients[account]; ok {
		return c, nil
	}

	c, err := calendar.NewClientForAccountWithProvider(sc.ctx, account, sc.tokenProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar client for account %s: %w", account, err)
	}
	sc.calendarClients[account] = c
	sc.logger.Debug("created Calendar client",
		logging.KeyAccount, logging.AnonymizeEmail(account))
	return c, nil
}

// GmailClientForAccount returns the Gmail client for the given account,
// creating it on first use.
func (sc *ServerContext) GmailClientForAccount(account string) (*gmail.Client, error) {
	sc.mu.RLock()
	if sc.shutdown {
		sc.mu.RUnlock()
		return nil, fmt.Errorf("server context is shut down")
	}
	if c, ok := sc.gmailClients[account]; ok {
		sc.mu.RUnlock()
		return c, nil
	}
	sc.mu.RUnlock()

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.shutdown {
		return nil, fmt.Errorf("server context is shut down")
	}
	if c, ok := sc.gmailClients[account]; ok {
		return c, nil
	}

	c, err := gmail.NewClientForAccountWithProvider(sc.ctx, account, sc.tokenProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail client for account %s: %w", account, err)
	}
	sc.gmailClients[account] = c
	sc.logger.Debug("created Gmail client",
		logging.KeyAccount, logging.AnonymizeEmail(account))
	return c, nil
}

// SheetsClientForAccount returns the Sheets client for the given account,
// creating it on first use.
func (sc *ServerContext) SheetsClientForAccount(account string) (*sheets.Client, error) {
	sc.mu.RLock()
	if sc.shutdown {
		sc.mu.RUnlock()
		return nil, fmt.Errorf("server context is shut down")
	}
	if c, ok := sc.sheetsClients[account]; ok {
		sc.mu.RUnlock()
		return c, nil
	}
	sc.mu.RUnlock()

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.shutdown {
		return nil, fmt.Errorf("server context is shut down")
	}
	if c, ok := sc.sheetsClients[account]; ok {
		return c, nil
	}

	c, err := sheets.NewClientForAccountWithProvider(sc.ctx, account, sc.tokenProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets client for account %s: %w", account, err)
	}
	sc.sheetsClients[account] = c
	sc.logger.Debug("created Sheets client",
		logging.KeyAccount, logging.AnonymizeEmail(account))
	return c, nil
}

// FormsClientForAccount returns the Forms client for the given account,
// creating it on first use.
func (sc *ServerContext) FormsClientForAccount(account string) (*forms.Client, error) {
	sc.mu.RLock()
	if sc.shutdown {
		sc.mu.RUnlock()
		return nil, fmt.Errorf("server context is shut down")
	}
	if c, ok := sc.formsClients[account]; ok {
		sc.mu.RUnlock()
		return c, nil
	}
	sc.mu.RUnlock()

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.shutdown {
		return nil, fmt.Errorf("server context is shut down")
	}
	if c, ok := sc.formsClients[account]; ok {
		return c, nil
	}

	c, err := forms.NewClientForAccountWithProvider(sc.ctx, account, sc.tokenProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create Forms client for account %s: %w", account, err)
	}
	sc.formsClients[account] = c
	sc.logger.Debug("created Forms client",
		logging.KeyAccount, logging.AnonymizeEmail(account))
	return c, nil
}

// SlidesClientForAccount returns the Slides client for the given account,
// creating it on first use.
func (sc *ServerContext) SlidesClientForAccount(account string) (*slides.Client, error) {
	sc.mu.RLock()
	if sc.shutdown {
		sc.mu.RUnlock()
		return nil, fmt.Errorf("server context is shut down")
	}
	if c, ok := sc.slidesClients[account]; ok {
		sc.mu.RUnlock()
		return c, nil
	}
	sc.mu.RUnlock()

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.shutdown {
		return nil, fmt.Errorf("server context is shut down")
	}
	if c, ok := sc.slidesClients[account]; ok {
		return c, nil
	}

	c, err := slides.NewClientForAccountWithProvider(sc.ctx, account, sc.tokenProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create Slides client for account %s: %w", account, err)
	}
	sc.slidesClients[account] = c
	sc.logger.Debug("created Slides client",
		logging.KeyAccount, logging.AnonymizeEmail(account))
	return c, nil
}

// HasTokenForAccount reports whether the token provider can authenticate
// the given account without user interaction.
func (sc *ServerContext) HasTokenForAccount(account string) bool {
	return sc.tokenProvider.HasTokenForAccount(account)
}

// Shutdown releases all cached clients. Subsequent client lookups fail.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.shutdown {
		return nil
	}
	sc.shutdown = true
	sc.calendarClients = make(map[string]*calendar.Client)
	sc.gmailClients = make(map[string]*gmail.Client)
	sc.sheetsClients = make(map[string]*sheets.Client)
	sc.formsClients = make(map[string]*forms.Client)
	sc.slidesClients = make(map[string]*slides.Client)
	return nil
}
