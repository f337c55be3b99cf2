package common

import (
	"context"

	"github.com/letterrip/workspace-mcp/internal/google"
	"github.com/letterrip/workspace-mcp/internal/mcp/oauth"
)

// GetAccountFromArgs resolves the Google account a tool call applies to.
//
// Priority order:
//  1. OAuth user email from context (set by the bearer-token middleware)
//  2. Explicit "account" argument in the request
//  3. The default account
func GetAccountFromArgs(ctx context.Context, args map[string]interface{}) string {
	if userInfo, ok := oauth.GetUserFromContext(ctx); ok && userInfo != nil && userInfo.Email != "" {
		return userInfo.Email
	}

	if account, ok := args["account"].(string); ok && account != "" {
		return account
	}
	return google.DefaultAccount
}
