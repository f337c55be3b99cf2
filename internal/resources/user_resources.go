package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/workspace-mcp/internal/gmail"
	"github.com/letterrip/workspace-mcp/internal/google"
	"github.com/letterrip/workspace-mcp/internal/mcp/oauth"
	"github.com/letterrip/workspace-mcp/internal/server"
)

// RegisterUserResources registers session-specific resources describing
// the current user and the triage taxonomy.
func RegisterUserResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	profileResource := mcp.NewResource(
		"user://profile",
		"Current User Profile",
		mcp.WithResourceDescription("Gmail profile of the currently authenticated Google account"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(profileResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleUserProfile(ctx, request, sc)
	})

	taxonomyResource := mcp.NewResource(
		"triage://categories",
		"Triage Categories",
		mcp.WithResourceDescription("The fixed triage categories and the Gmail labels they map to"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(taxonomyResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleTriageCategories(ctx, request)
	})

	return nil
}

// accountFromContext resolves the account from the OAuth context, falling
// back to the default account for stdio transport.
func accountFromContext(ctx context.Context) string {
	if userInfo, ok := oauth.GetUserFromContext(ctx); ok && userInfo.Email != "" {
		return userInfo.Email
	}
	return google.DefaultAccount
}

func jsonResource(uri string, payload interface{}) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func handleUserProfile(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	account := accountFromContext(ctx)

	client, err := sc.GmailClientForAccount(account)
	if err != nil {
		return nil, fmt.Errorf("no Gmail client for account %s: %w", account, err)
	}

	profile, err := client.GetProfile()
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	return jsonResource(request.Params.URI, map[string]interface{}{
		"account":       account,
		"email":         profile.EmailAddress,
		"historyId":     profile.HistoryID,
		"messagesTotal": profile.MessagesTotal,
		"threadsTotal":  profile.ThreadsTotal,
	})
}

func handleTriageCategories(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	categories := make([]map[string]string, 0, len(gmail.Categories()))
	for _, category := range gmail.Categories() {
		categories = append(categories, map[string]string{
			"category": string(category),
			"label":    category.LabelName(),
		})
	}
	return jsonResource(request.Params.URI, map[string]interface{}{
		"categories": categories,
	})
}
