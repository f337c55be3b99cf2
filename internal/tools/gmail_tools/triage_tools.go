package gmail_tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/workspace-mcp/internal/gmail"
	"github.com/letterrip/workspace-mcp/internal/server"
	"github.com/letterrip/workspace-mcp/internal/tools/batch"
	"github.com/letterrip/workspace-mcp/internal/tools/common"
)

// RegisterTriageTools registers the inbox triage tools. Label writes and
// label creation are skipped in read-only mode.
func RegisterTriageTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listUnprocessedTool := mcp.NewTool("gmail_list_unprocessed",
		mcp.WithDescription("List inbox messages that carry none of the triage labels yet"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithNumber("newerThanDays",
			mcp.Description("Only include mail received in the last N days"),
		),
		mcp.WithString("domain",
			mcp.Description("Only include mail from senders at this domain (e.g. 'example.com')"),
		),
		mcp.WithString("sender",
			mcp.Description("Only include mail from this sender address"),
		),
		mcp.WithString("after",
			mcp.Description("Only include mail after this date (Gmail syntax, YYYY/MM/DD)"),
		),
		mcp.WithString("before",
			mcp.Description("Only include mail before this date (Gmail syntax, YYYY/MM/DD)"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of results to return (default: 25)"),
		),
	)

	s.AddTool(listUnprocessedTool, common.InstrumentedToolHandlerWithService(
		"gmail_list_unprocessed", "gmail", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListUnprocessed(ctx, request, sc)
		}))

	getEmailTool := mcp.NewTool("gmail_get_email",
		mcp.WithDescription("Get the full content of a Gmail message, including its body"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the message to retrieve"),
		),
	)

	s.AddTool(getEmailTool, common.InstrumentedToolHandlerWithService(
		"gmail_get_email", "gmail", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEmail(ctx, request, sc)
		}))

	listLabelsTool := mcp.NewTool("gmail_list_labels",
		mcp.WithDescription("List all Gmail labels with their IDs (useful for diagnosing triage label issues)"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(listLabelsTool, common.InstrumentedToolHandlerWithService(
		"gmail_list_labels", "gmail", "labels", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListLabels(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	ensureLabelsTool := mcp.NewTool("gmail_ensure_labels",
		mcp.WithDescription("Create any missing triage labels (FYI, Respond, Write-Reply, To-Archive, Needs-Review)"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(ensureLabelsTool, common.InstrumentedToolHandlerWithService(
		"gmail_ensure_labels", "gmail", "labels", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleEnsureLabels(ctx, request, sc)
		}))

	applyLabelTool := mcp.NewTool("gmail_apply_label",
		mcp.WithDescription("Apply a triage label to one or more messages"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("messageIds",
			mcp.Required(),
			mcp.Description("Message ID (string) or array of message IDs to label"),
		),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("Triage category: 'fyi', 'respond', 'draft', 'archive' or 'needs_review'"),
		),
	)

	s.AddTool(applyLabelTool, common.InstrumentedToolHandlerWithService(
		"gmail_apply_label", "gmail", "labels", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleLabelChange(ctx, request, sc, true)
		}))

	removeLabelTool := mcp.NewTool("gmail_remove_label",
		mcp.WithDescription("Remove a triage label from one or more messages"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("messageIds",
			mcp.Required(),
			mcp.Description("Message ID (string) or array of message IDs to unlabel"),
		),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("Triage category: 'fyi', 'respond', 'draft', 'archive' or 'needs_review'"),
		),
	)

	s.AddTool(removeLabelTool, common.InstrumentedToolHandlerWithService(
		"gmail_remove_label", "gmail", "labels", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleLabelChange(ctx, request, sc, false)
		}))

	return nil
}

func handleListUnprocessed(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	query := gmail.UnprocessedQuery{
		Domain: stringArg(args, "domain"),
		Sender: stringArg(args, "sender"),
		After:  stringArg(args, "after"),
		Before: stringArg(args, "before"),
	}
	if v, ok := args["newerThanDays"].(float64); ok {
		query.NewerThanDays = int(v)
	}
	if v, ok := args["maxResults"].(float64); ok {
		query.MaxResults = int64(v)
	}

	client, err := getGmailClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	emails, err := client.ListUnprocessed(query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list unprocessed mail: %v", err)), nil
	}

	if len(emails) == 0 {
		return mcp.NewToolResultText("No unprocessed messages found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d unprocessed message(s):\n\n", len(emails))
	for i, email := range emails {
		fmt.Fprintf(&b, "%d. %s\n", i+1, email.Subject)
		fmt.Fprintf(&b, "   ID: %s\n", email.ID)
		fmt.Fprintf(&b, "   From: %s\n", email.From)
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

func handleGetEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	messageID, ok := args["messageId"].(string)
	if !ok || messageID == "" {
		return mcp.NewToolResultError("messageId is required"), nil
	}

	client, err := getGmailClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	email, err := client.GetEmail(messageID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get message: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n", email.Subject)
	fmt.Fprintf(&b, "From: %s\n", email.From)
	if email.To != "" {
		fmt.Fprintf(&b, "To: %s\n", email.To)
	}
	if !email.Date.IsZero() {
		fmt.Fprintf(&b, "Date: %s\n", email.Date.Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "Thread: %s\n", email.ThreadID)
	if len(email.Labels) > 0 {
		fmt.Fprintf(&b, "Labels: %s\n", strings.Join(email.Labels, ", "))
	}
	b.WriteString("\n")
	if email.Body != "" {
		b.WriteString(email.Body)
	} else {
		b.WriteString(email.Snippet)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleListLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	client, err := getGmailClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	labels, err := client.ListLabels()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list labels: %v", err)), nil
	}

	user, system := splitLabelsByType(labels)

	var b strings.Builder
	fmt.Fprintf(&b, "User labels (%d):\n", len(user))
	for _, label := range user {
		fmt.Fprintf(&b, "  %s (id %s)\n", label.Name, label.ID)
	}
	fmt.Fprintf(&b, "\nSystem labels (%d):\n", len(system))
	for _, label := range system {
		fmt.Fprintf(&b, "  %s\n", label.Name)
	}

	b.WriteString("\nTriage label names:\n")
	for _, category := range gmail.Categories() {
		fmt.Fprintf(&b, "  %s -> %s\n", category, category.LabelName())
	}

	return mcp.NewToolResultText(b.String()), nil
}

// splitLabelsByType separates user-created labels from the system ones
// Gmail provisions on every account.
func splitLabelsByType(labels []gmail.LabelInfo) (user, system []gmail.LabelInfo) {
	for _, label := range labels {
		if label.Type == "system" {
			system = append(system, label)
		} else {
			user = append(user, label)
		}
	}
	return user, system
}

func handleEnsureLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	client, err := getGmailClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	labels, err := client.EnsureLabels()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to ensure labels: %v", err)), nil
	}

	// Deterministic output order for the fixed taxonomy.
	categories := make([]string, 0, len(labels))
	for category := range labels {
		categories = append(categories, string(category))
	}
	sort.Strings(categories)

	var b strings.Builder
	fmt.Fprintf(&b, "Triage labels ready (%d):\n", len(labels))
	for _, category := range categories {
		cat := gmail.Category(category)
		fmt.Fprintf(&b, "  %s -> %s (id %s)\n", category, cat.LabelName(), labels[cat])
	}

	return mcp.NewToolResultText(b.String()), nil
}

// handleLabelChange applies or removes a triage label on a batch of
// message IDs.
func handleLabelChange(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, apply bool) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	messageIDs, err := batch.ParseStringOrArray(args["messageIds"], "messageIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	categoryArg, ok := args["category"].(string)
	if !ok || categoryArg == "" {
		return mcp.NewToolResultError("category is required"), nil
	}
	category, err := gmail.ParseCategory(categoryArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getGmailClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	verb := "applied to"
	change := client.ApplyLabel
	if !apply {
		verb = "removed from"
		change = client.RemoveLabel
	}

	results := batch.ProcessBatch(messageIDs, func(id string) (string, error) {
		if err := change(id, category); err != nil {
			return "", err
		}
		return fmt.Sprintf("label %q %s message", category.LabelName(), verb), nil
	})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

// stringArg returns the named string argument, or "" when absent.
func stringArg(args map[string]interface{}, name string) string {
	if v, ok := args[name].(string); ok {
		return v
	}
	return ""
}
