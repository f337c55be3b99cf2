package gmail_tools

import (
	"context"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/workspace-mcp/internal/gmail"
	"github.com/letterrip/workspace-mcp/internal/google"
	"github.com/letterrip/workspace-mcp/internal/server"
)

// getGmailClient returns the Gmail client for the account, with an
// actionable authorization message when no token is available.
func getGmailClient(_ context.Context, account string, sc *server.ServerContext) (*gmail.Client, error) {
	if !sc.HasTokenForAccount(account) {
		return nil, authRequiredError(account)
	}
	return sc.GmailClientForAccount(account)
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

// RegisterGmailTools registers all Gmail tools. Label and draft writes
// are skipped in read-only mode.
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := RegisterTriageTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register triage tools: %w", err)
	}
	if err := RegisterDraftTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register draft tools: %w", err)
	}
	return nil
}
