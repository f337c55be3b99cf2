package sheets_tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/workspace-mcp/internal/google"
	"github.com/letterrip/workspace-mcp/internal/server"
	"github.com/letterrip/workspace-mcp/internal/sheets"
	"github.com/letterrip/workspace-mcp/internal/tools/common"
)

// getSheetsClient returns the Sheets client for the account, with an
// actionable authorization message when no token is available.
func getSheetsClient(_ context.Context, account string, sc *server.ServerContext) (*sheets.Client, error) {
	if !sc.HasTokenForAccount(account) {
		return nil, authRequiredError(account)
	}
	return sc.SheetsClientForAccount(account)
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

// RegisterSheetsTools registers all Sheets tools. All of them are
// read-only.
func RegisterSheetsTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	infoTool := mcp.NewTool("sheets_get_spreadsheet_info",
		mcp.WithDescription("Get spreadsheet metadata: title, locale, time zone, and sheet tabs"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID (from its URL)"),
		),
	)

	s.AddTool(infoTool, common.InstrumentedToolHandlerWithService(
		"sheets_get_spreadsheet_info", "sheets", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetSpreadsheetInfo(ctx, request, sc)
		}))

	listSheetsTool := mcp.NewTool("sheets_list_sheets",
		mcp.WithDescription("List the sheet tabs of a spreadsheet"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID (from its URL)"),
		),
	)

	s.AddTool(listSheetsTool, common.InstrumentedToolHandlerWithService(
		"sheets_list_sheets", "sheets", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListSheets(ctx, request, sc)
		}))

	headersTool := mcp.NewTool("sheets_get_headers",
		mcp.WithDescription("Get the header row of a sheet"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID (from its URL)"),
		),
		mcp.WithString("sheetTitle",
			mcp.Description("Sheet tab title (defaults to the first sheet)"),
		),
	)

	s.AddTool(headersTool, common.InstrumentedToolHandlerWithService(
		"sheets_get_headers", "sheets", "read", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetHeaders(ctx, request, sc)
		}))

	readSheetTool := mcp.NewTool("sheets_read_sheet",
		mcp.WithDescription("Read sheet rows as header-keyed records"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID (from its URL)"),
		),
		mcp.WithString("sheetTitle",
			mcp.Description("Sheet tab title (defaults to the first sheet)"),
		),
		mcp.WithString("range",
			mcp.Description("Optional A1 range within the sheet (e.g. 'A1:D50')"),
		),
	)

	s.AddTool(readSheetTool, common.InstrumentedToolHandlerWithService(
		"sheets_read_sheet", "sheets", "read", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReadSheet(ctx, request, sc)
		}))

	findRowsTool := mcp.NewTool("sheets_find_rows",
		mcp.WithDescription("Find rows where a column matches a value"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The spreadsheet ID (from its URL)"),
		),
		mcp.WithString("sheetTitle",
			mcp.Description("Sheet tab title (defaults to the first sheet)"),
		),
		mcp.WithString("column",
			mcp.Required(),
			mcp.Description("Header name of the column to match"),
		),
		mcp.WithString("value",
			mcp.Required(),
			mcp.Description("Value to match"),
		),
		mcp.WithBoolean("exact",
			mcp.Description("Require an exact match instead of a case-insensitive substring match"),
		),
	)

	s.AddTool(findRowsTool, common.InstrumentedToolHandlerWithService(
		"sheets_find_rows", "sheets", "read", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFindRows(ctx, request, sc)
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

func requiredSpreadsheetID(args map[string]interface{}) (string, error) {
	id := stringArg(args, "spreadsheetId")
	if id == "" {
		return "", fmt.Errorf("spreadsheetId is required")
	}
	return id, nil
}

// writeRows renders header-keyed rows with stable key order.
func writeRows(b *strings.Builder, rows []sheets.Row) {
	for i, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprintf(b, "Row %d:\n", i+1)
		for _, k := range keys {
			fmt.Fprintf(b, "  %s: %s\n", k, row[k])
		}
		b.WriteString("\n")
	}
}

func handleGetSpreadsheetInfo(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, err := requiredSpreadsheetID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getSheetsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := client.GetSpreadsheetInfo(spreadsheetID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get spreadsheet: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Spreadsheet: %s\n", info.Title)
	fmt.Fprintf(&b, "ID: %s\n", info.ID)
	if info.Locale != "" {
		fmt.Fprintf(&b, "Locale: %s\n", info.Locale)
	}
	if info.TimeZone != "" {
		fmt.Fprintf(&b, "Time zone: %s\n", info.TimeZone)
	}
	fmt.Fprintf(&b, "Sheets (%d):\n", len(info.Sheets))
	for _, sheet := range info.Sheets {
		fmt.Fprintf(&b, "  %d. %s (%dx%d)\n", sheet.Index+1, sheet.Title, sheet.Rows, sheet.Columns)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleListSheets(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, err := requiredSpreadsheetID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getSheetsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sheetInfos, err := client.ListSheets(spreadsheetID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list sheets: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d sheet(s):\n", len(sheetInfos))
	for _, sheet := range sheetInfos {
		fmt.Fprintf(&b, "  %d. %s (id %d, %d rows x %d columns)\n",
			sheet.Index+1, sheet.Title, sheet.ID, sheet.Rows, sheet.Columns)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleGetHeaders(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, err := requiredSpreadsheetID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getSheetsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	headers, err := client.GetHeaders(spreadsheetID, stringArg(args, "sheetTitle"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get headers: %v", err)), nil
	}

	if len(headers) == 0 {
		return mcp.NewToolResultText("The sheet has no header row."), nil
	}
	return mcp.NewToolResultText("Headers: " + strings.Join(headers, ", ")), nil
}

func handleReadSheet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, err := requiredSpreadsheetID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getSheetsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rows, err := client.ReadSheet(spreadsheetID, stringArg(args, "sheetTitle"), stringArg(args, "range"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read sheet: %v", err)), nil
	}

	if len(rows) == 0 {
		return mcp.NewToolResultText("No data rows found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Read %d row(s):\n\n", len(rows))
	writeRows(&b, rows)
	return mcp.NewToolResultText(b.String()), nil
}

func handleFindRows(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, err := requiredSpreadsheetID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	column := stringArg(args, "column")
	if column == "" {
		return mcp.NewToolResultError("column is required"), nil
	}
	value := stringArg(args, "value")
	if value == "" {
		return mcp.NewToolResultError("value is required"), nil
	}
	exact, _ := args["exact"].(bool)

	client, err := getSheetsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rows, err := client.FindRows(spreadsheetID, stringArg(args, "sheetTitle"), column, value, exact)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to find rows: %v", err)), nil
	}

	if len(rows) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No rows found where %s matches %q.", column, value)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d matching row(s):\n\n", len(rows))
	writeRows(&b, rows)
	return mcp.NewToolResultText(b.String()), nil
}
