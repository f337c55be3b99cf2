package calendar_tools

import (
	"context"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/workspace-mcp/internal/calendar"
	"github.com/letterrip/workspace-mcp/internal/google"
	"github.com/letterrip/workspace-mcp/internal/server"
)

// getCalendarClient returns the Calendar client for the account, with an
// actionable authorization message when no token is available.
func getCalendarClient(_ context.Context, account string, sc *server.ServerContext) (*calendar.Client, error) {
	if !sc.HasTokenForAccount(account) {
		return nil, authRequiredError(account)
	}
	return sc.CalendarClientForAccount(account)
}

func authRequiredError(account string) error {
	authURL, err := google.GetAuthURLForAccount(account)
	if err != nil {
		return fmt.Errorf("no Google OAuth token for account %q, and OAuth is not configured: %w", account, err)
	}
	return fmt.Errorf(`Google OAuth token not found for account %q. To authorize access:

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account and grant access
3. Copy the authorization code
4. Call the google_save_auth_code tool with the code and account=%q

You only need to authorize once; tokens are refreshed automatically.`, account, authURL, account)
}

// RegisterCalendarTools registers all Calendar tools. Write operations
// (create, update, delete) are skipped in read-only mode.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := RegisterCalendarListTools(s, sc); err != nil {
		return fmt.Errorf("failed to register calendar list tools: %w", err)
	}
	if err := RegisterEventTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}
	if err := RegisterSchedulingTools(s, sc); err != nil {
		return fmt.Errorf("failed to register scheduling tools: %w", err)
	}
	return nil
}
