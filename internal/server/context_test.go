package server

import (
	"context"
	"fmt"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/letterrip/workspace-mcp/internal/instrumentation"
)

// staticTokenProvider returns canned tokens for tests.
type staticTokenProvider struct {
	tokens map[string]*oauth2.Token
}

func (p *staticTokenProvider) GetTokenForAccount(_ context.Context, account string) (*oauth2.Token, error) {
	if tok, ok := p.tokens[account]; ok {
		return tok, nil
	}
	return nil, fmt.Errorf("no token for account %s", account)
}

func (p *staticTokenProvider) HasTokenForAccount(account string) bool {
	_, ok := p.tokens[account]
	return ok
}

func newTestProvider(accounts ...string) *staticTokenProvider {
	p := &staticTokenProvider{tokens: make(map[string]*oauth2.Token)}
	for _, account := range accounts {
		p.tokens[account] = &oauth2.Token{
			AccessToken: "token-" + account,
			Expiry:      time.Now().Add(time.Hour),
		}
	}
	return p
}

func TestNewServerContextWithProvider_NilProvider(t *testing.T) {
	if _, err := NewServerContextWithProvider(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil token provider")
	}
}

func TestServerContext_ClientsAreCached(t *testing.T) {
	sc, err := NewServerContextWithProvider(context.Background(), newTestProvider("alice@example.com"))
	if err != nil {
		t.Fatalf("NewServerContextWithProvider() error = %v", err)
	}
	defer func() { _ = sc.Shutdown() }()

	c1, err := sc.CalendarClientForAccount("alice@example.com")
	if err != nil {
		t.Fatalf("CalendarClientForAccount() error = %v", err)
	}
	c2, err := sc.CalendarClientForAccount("alice@example.com")
	if err != nil {
		t.Fatalf("CalendarClientForAccount() second call error = %v", err)
	}
	if c1 != c2 {
		t.Error("expected the same cached client on repeated lookups")
	}
}

func TestServerContext_AllServiceClients(t *testing.T) {
	sc, err := NewServerContextWithProvider(context.Background(), newTestProvider("alice@example.com"))
	if err != nil {
		t.Fatalf("NewServerContextWithProvider() error = %v", err)
	}
	defer func() { _ = sc.Shutdown() }()

	if _, err := sc.CalendarClientForAccount("alice@example.com"); err != nil {
		t.Errorf("Calendar client: %v", err)
	}
	if _, err := sc.GmailClientForAccount("alice@example.com"); err != nil {
		t.Errorf("Gmail client: %v", err)
	}
	if _, err := sc.SheetsClientForAccount("alice@example.com"); err != nil {
		t.Errorf("Sheets client: %v", err)
	}
	if _, err := sc.FormsClientForAccount("alice@example.com"); err != nil {
		t.Errorf("Forms client: %v", err)
	}
	if _, err := sc.SlidesClientForAccount("alice@example.com"); err != nil {
		t.Errorf("Slides client: %v", err)
	}
}

func TestServerContext_Shutdown(t *testing.T) {
	sc, err := NewServerContextWithProvider(context.Background(), newTestProvider("alice@example.com"))
	if err != nil {
		t.Fatalf("NewServerContextWithProvider() error = %v", err)
	}

	if sc.IsShutdown() {
		t.Fatal("new context should not report shutdown")
	}
	if err := sc.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !sc.IsShutdown() {
		t.Error("context should report shutdown")
	}

	// Shutdown is idempotent.
	if err := sc.Shutdown(); err != nil {
		t.Fatalf("second Shutdown() error = %v", err)
	}

	if _, err := sc.GmailClientForAccount("alice@example.com"); err == nil {
		t.Error("expected client lookup to fail after shutdown")
	}
}

func TestServerContext_HasTokenForAccount(t *testing.T) {
	sc, err := NewServerContextWithProvider(context.Background(), newTestProvider("alice@example.com"))
	if err != nil {
		t.Fatalf("NewServerContextWithProvider() error = %v", err)
	}
	defer func() { _ = sc.Shutdown() }()

	if !sc.HasTokenForAccount("alice@example.com") {
		t.Error("expected token for known account")
	}
	if sc.HasTokenForAccount("bob@example.com") {
		t.Error("expected no token for unknown account")
	}
}

func TestServerContext_MetricsAndAuditLogger(t *testing.T) {
	sc, err := NewServerContextWithProvider(context.Background(), newTestProvider())
	if err != nil {
		t.Fatalf("NewServerContextWithProvider() error = %v", err)
	}
	defer func() { _ = sc.Shutdown() }()

	if sc.Metrics() != nil {
		t.Error("metrics should be nil before SetMetrics")
	}
	if sc.AuditLogger() != nil {
		t.Error("audit logger should be nil before SetAuditLogger")
	}

	m := &instrumentation.Metrics{}
	sc.SetMetrics(m)
	if sc.Metrics() != m {
		t.Error("Metrics() should return the value set")
	}

	al := instrumentation.NewAuditLogger(nil)
	sc.SetAuditLogger(al)
	if sc.AuditLogger() != al {
		t.Error("AuditLogger() should return the value set")
	}
}
