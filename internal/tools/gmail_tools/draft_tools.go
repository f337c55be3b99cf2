package gmail_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/workspace-mcp/internal/gmail"
	"github.com/letterrip/workspace-mcp/internal/server"
	"github.com/letterrip/workspace-mcp/internal/tools/common"
)

// RegisterDraftTools registers draft listing and sent-mail tools, plus
// draft creation when writes are enabled.
func RegisterDraftTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listDraftsTool := mcp.NewTool("gmail_list_drafts",
		mcp.WithDescription("List Gmail drafts"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of drafts to return (default: 25)"),
		),
	)

	s.AddTool(listDraftsTool, common.InstrumentedToolHandlerWithService(
		"gmail_list_drafts", "gmail", "drafts", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListDrafts(ctx, request, sc)
		}))

	listSentTool := mcp.NewTool("gmail_list_sent",
		mcp.WithDescription("List sent mail, optionally filtered by recipient (useful for matching a writing style)"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("recipient",
			mcp.Description("Only include mail sent to this address"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of messages to return (default: 25)"),
		),
	)

	s.AddTool(listSentTool, common.InstrumentedToolHandlerWithService(
		"gmail_list_sent", "gmail", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListSent(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createDraftTool := mcp.NewTool("gmail_create_draft",
		mcp.WithDescription("Create a Gmail draft, optionally as a threaded reply to an existing message"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Comma-separated recipient addresses"),
		),
		mcp.WithString("cc",
			mcp.Description("Comma-separated CC addresses"),
		),
		mcp.WithString("subject",
			mcp.Description("Subject line; for replies, defaults to 'Re:' plus the original subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Plain-text message body"),
		),
		mcp.WithString("replyToMessageId",
			mcp.Description("Message ID to reply to; sets threading headers and the draft's thread"),
		),
	)

	s.AddTool(createDraftTool, common.InstrumentedToolHandlerWithService(
		"gmail_create_draft", "gmail", "drafts", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateDraft(ctx, request, sc)
		}))

	return nil
}

func maxResultsArg(args map[string]interface{}) int64 {
	if v, ok := args["maxResults"].(float64); ok && v > 0 {
		return int64(v)
	}
	return 25
}

func handleListDrafts(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	client, err := getGmailClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	drafts, err := client.ListDrafts(maxResultsArg(args))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list drafts: %v", err)), nil
	}

	if len(drafts) == 0 {
		return mcp.NewToolResultText("No drafts found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d draft(s):\n\n", len(drafts))
	for i, draft := range drafts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, draft.Subject)
		fmt.Fprintf(&b, "   ID: %s\n", draft.ID)
		if draft.To != "" {
			fmt.Fprintf(&b, "   To: %s\n", draft.To)
		}
		if draft.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", draft.Snippet)
		}
		b.WriteString("\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleListSent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	client, err := getGmailClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	emails, err := client.ListSent(stringArg(args, "recipient"), maxResultsArg(args))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list sent mail: %v", err)), nil
	}

	if len(emails) == 0 {
		return mcp.NewToolResultText("No sent messages found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d sent message(s):\n\n", len(emails))
	for i, email := range emails {
		fmt.Fprintf(&b, "%d. %s\n", i+1, email.Subject)
		fmt.Fprintf(&b, "   ID: %s\n", email.ID)
		if email.To != "" {
			fmt.Fprintf(&b, "   To: %s\n", email.To)
		}
		if !email.Date.IsZero() {
			fmt.Fprintf(&b, "   Date: %s\n", email.Date.Format(time.RFC3339))
		}
		if email.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", email.Snippet)
		}
		b.WriteString("\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleCreateDraft(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	to := splitAddresses(stringArg(args, "to"))
	if len(to) == 0 {
		return mcp.NewToolResultError("to is required"), nil
	}
	body, ok := args["body"].(string)
	if !ok || body == "" {
		return mcp.NewToolResultError("body is required"), nil
	}

	input := gmail.DraftInput{
		To:               to,
		Cc:               splitAddresses(stringArg(args, "cc")),
		Subject:          stringArg(args, "subject"),
		Body:             body,
		ReplyToMessageID: stringArg(args, "replyToMessageId"),
	}
	if input.Subject == "" && input.ReplyToMessageID == "" {
		return mcp.NewToolResultError("subject is required unless replyToMessageId is set"), nil
	}

	client, err := getGmailClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	draftID, err := client.CreateDraft(input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create draft: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Draft created with ID %s. Review and send it from Gmail.", draftID)), nil
}

// splitAddresses splits a comma-separated address list into trimmed,
// non-empty parts.
func splitAddresses(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
