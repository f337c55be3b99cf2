package forms_tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/workspace-mcp/internal/forms"
	"github.com/letterrip/workspace-mcp/internal/google"
	"github.com/letterrip/workspace-mcp/internal/server"
	"github.com/letterrip/workspace-mcp/internal/tools/common"
)

// getFormsClient returns the Forms client for the account, with an
// actionable authorization message when no token is available.
func getFormsClient(_ context.Context, account string, sc *server.ServerContext) (*forms.Client, error) {
	if !sc.HasTokenForAccount(account) {
		return nil, authRequiredError(account)
	}
	return sc.FormsClientForAccount(account)
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

// RegisterFormsTools registers all Forms tools. All of them are read-only.
func RegisterFormsTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	getFormTool := mcp.NewTool("forms_get_form",
		mcp.WithDescription("Get a form's structure: title, description, and questions"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("formId",
			mcp.Required(),
			mcp.Description("The form ID (from its URL)"),
		),
	)

	s.AddTool(getFormTool, common.InstrumentedToolHandlerWithService(
		"forms_get_form", "forms", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetForm(ctx, request, sc)
		}))

	listResponsesTool := mcp.NewTool("forms_list_responses",
		mcp.WithDescription("List all responses to a form"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("formId",
			mcp.Required(),
			mcp.Description("The form ID (from its URL)"),
		),
	)

	s.AddTool(listResponsesTool, common.InstrumentedToolHandlerWithService(
		"forms_list_responses", "forms", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListResponses(ctx, request, sc)
		}))

	getResponseTool := mcp.NewTool("forms_get_response",
		mcp.WithDescription("Get a single form response with its answers"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("formId",
			mcp.Required(),
			mcp.Description("The form ID (from its URL)"),
		),
		mcp.WithString("responseId",
			mcp.Required(),
			mcp.Description("The ID of the response to retrieve"),
		),
	)

	s.AddTool(getResponseTool, common.InstrumentedToolHandlerWithService(
		"forms_get_response", "forms", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetResponse(ctx, request, sc)
		}))

	responsesAsRowsTool := mcp.NewTool("forms_responses_as_rows",
		mcp.WithDescription("Get form responses as rows keyed by question title"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("formId",
			mcp.Required(),
			mcp.Description("The form ID (from its URL)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of responses to include (default: all)"),
		),
	)

	s.AddTool(responsesAsRowsTool, common.InstrumentedToolHandlerWithService(
		"forms_responses_as_rows", "forms", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleResponsesAsRows(ctx, request, sc)
		}))

	responseSummaryTool := mcp.NewTool("forms_response_summary",
		mcp.WithDescription("Summarize form responses: counts, date range, and per-question answer distributions"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("formId",
			mcp.Required(),
			mcp.Description("The form ID (from its URL)"),
		),
	)

	s.AddTool(responseSummaryTool, common.InstrumentedToolHandlerWithService(
		"forms_response_summary", "forms", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleResponseSummary(ctx, request, sc)
		}))

	return nil
}

// stringArg returns the named string argument, or "" when absent.
func stringArg(args map[string]interface{}, name string) string {
	if v, ok := args[name].(string); ok {
		return v
	}
	return ""
}

func requiredFormID(args map[string]interface{}) (string, error) {
	id := stringArg(args, "formId")
	if id == "" {
		return "", fmt.Errorf("formId is required")
	}
	return id, nil
}

func writeResponse(b *strings.Builder, resp *forms.Response, questionTitles map[string]string) {
	fmt.Fprintf(b, "Response: %s\n", resp.ID)
	if !resp.SubmittedAt.IsZero() {
		fmt.Fprintf(b, "Submitted: %s\n", resp.SubmittedAt.Format(time.RFC3339))
	}
	if resp.RespondentEmail != "" {
		fmt.Fprintf(b, "Respondent: %s\n", resp.RespondentEmail)
	}

	questionIDs := make([]string, 0, len(resp.Answers))
	for id := range resp.Answers {
		questionIDs = append(questionIDs, id)
	}
	sort.Strings(questionIDs)

	for _, id := range questionIDs {
		label := id
		if title, ok := questionTitles[id]; ok && title != "" {
			label = title
		}
		fmt.Fprintf(b, "  %s: %s\n", label, strings.Join(resp.Answers[id], "; "))
	}
}

func handleGetForm(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	formID, err := requiredFormID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getFormsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	form, err := client.GetForm(formID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get form: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Form: %s\n", form.Title)
	fmt.Fprintf(&b, "ID: %s\n", form.ID)
	if form.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", form.Description)
	}
	if form.ResponderURI != "" {
		fmt.Fprintf(&b, "Responder link: %s\n", form.ResponderURI)
	}
	fmt.Fprintf(&b, "Questions (%d):\n", len(form.Questions))
	for i, q := range form.Questions {
		required := ""
		if q.Required {
			required = ", required"
		}
		fmt.Fprintf(&b, "  %d. %s (%s%s, id %s)\n", i+1, q.Title, q.Type, required, q.ID)
		if len(q.Options) > 0 {
			fmt.Fprintf(&b, "     Options: %s\n", strings.Join(q.Options, ", "))
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleListResponses(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	formID, err := requiredFormID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getFormsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responses, err := client.ListResponses(formID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list responses: %v", err)), nil
	}

	if len(responses) == 0 {
		return mcp.NewToolResultText("The form has no responses yet."), nil
	}

	titles := questionTitles(client, formID)

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d response(s):\n\n", len(responses))
	for i := range responses {
		writeResponse(&b, &responses[i], titles)
		b.WriteString("\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

// questionTitles maps question IDs to titles for readable answer output.
// Best effort; on error the raw IDs are shown instead.
func questionTitles(client *forms.Client, formID string) map[string]string {
	form, err := client.GetForm(formID)
	if err != nil {
		return nil
	}
	titles := make(map[string]string, len(form.Questions))
	for _, q := range form.Questions {
		titles[q.ID] = q.Title
	}
	return titles
}

func handleGetResponse(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	formID, err := requiredFormID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	responseID := stringArg(args, "responseId")
	if responseID == "" {
		return mcp.NewToolResultError("responseId is required"), nil
	}

	client, err := getFormsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := client.GetResponse(formID, responseID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get response: %v", err)), nil
	}

	var b strings.Builder
	writeResponse(&b, resp, questionTitles(client, formID))
	return mcp.NewToolResultText(b.String()), nil
}

func handleResponsesAsRows(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	formID, err := requiredFormID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := 0
	if v, ok := args["limit"].(float64); ok && v > 0 {
		limit = int(v)
	}

	client, err := getFormsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rows, err := client.ResponsesAsRows(formID, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get responses: %v", err)), nil
	}

	if len(rows) == 0 {
		return mcp.NewToolResultText("The form has no responses yet."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Got %d response row(s):\n\n", len(rows))
	for i, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprintf(&b, "Row %d:\n", i+1)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %s\n", k, row[k])
		}
		b.WriteString("\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleResponseSummary(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	formID, err := requiredFormID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getFormsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	summary, err := client.ResponseSummary(formID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to summarize responses: %v", err)), nil
	}

	if summary.TotalResponses == 0 {
		return mcp.NewToolResultText("The form has no responses yet."), nil
	}

	titles := questionTitles(client, formID)

	var b strings.Builder
	fmt.Fprintf(&b, "Total responses: %d\n", summary.TotalResponses)
	fmt.Fprintf(&b, "First response: %s\n", summary.FirstResponse.Format(time.RFC3339))
	fmt.Fprintf(&b, "Last response: %s\n", summary.LastResponse.Format(time.RFC3339))

	questionIDs := make([]string, 0, len(summary.QuestionStats))
	for id := range summary.QuestionStats {
		questionIDs = append(questionIDs, id)
	}
	sort.Strings(questionIDs)

	for _, id := range questionIDs {
		stats := summary.QuestionStats[id]
		label := id
		if title, ok := titles[id]; ok && title != "" {
			label = title
		}
		fmt.Fprintf(&b, "\n%s (%s): %d answer(s)\n", label, stats.Type, stats.TotalAnswers)

		values := make([]string, 0, len(stats.Distribution))
		for value := range stats.Distribution {
			values = append(values, value)
		}
		sort.Strings(values)
		for _, value := range values {
			fmt.Fprintf(&b, "  %s: %d\n", value, stats.Distribution[value])
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}
