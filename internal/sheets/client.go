package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/letterrip/workspace-mcp/internal/google"
)

// Client wraps the Google Sheets service for a single account.
type Client struct {
	svc           *sheets.Service
	account       string
	tokenProvider google.TokenProvider
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// NewClientForAccountWithProvider creates a new Sheets client authenticated
// for a specific account. The OAuth token is retrieved from the provider.
func NewClientForAccountWithProvider(ctx context.Context, account string, tokenProvider google.TokenProvider) (*Client, error) {
	if tokenProvider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	token, err := tokenProvider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	httpClient, err := google.NewHTTPClientWithToken(ctx, token)
	if err != nil {
		return nil, err
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		account:       account,
		tokenProvider: tokenProvider,
	}, nil
}

// NewClientForAccount creates a new Sheets client using the default
// file-based token provider.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	return NewClientForAccountWithProvider(ctx, account, google.NewFileTokenProvider())
}

// NewClient creates a new Sheets client for the default account.
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, google.DefaultAccount)
}

// GetSpreadsheetInfo retrieves spreadsheet metadata including all sheets.
func (c *Client) GetSpreadsheetInfo(spreadsheetID string) (*SpreadsheetInfo, error) {
	ss, err := c.svc.Spreadsheets.Get(spreadsheetID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet %s: %w", spreadsheetID, err)
	}

	info := &SpreadsheetInfo{ID: ss.SpreadsheetId}
	if ss.Properties != nil {
		info.Title = ss.Properties.Title
		info.Locale = ss.Properties.Locale
		info.TimeZone = ss.Properties.TimeZone
	}
	for _, sheet := range ss.Sheets {
		if sheet.Properties == nil {
			continue
		}
		si := SheetInfo{
			ID:    sheet.Properties.SheetId,
			Title: sheet.Properties.Title,
			Index: sheet.Properties.Index,
		}
		if grid := sheet.Properties.GridProperties; grid != nil {
			si.Rows = grid.RowCount
			si.Columns = grid.ColumnCount
		}
		info.Sheets = append(info.Sheets, si)
	}
	return info, nil
}

// ListSheets lists the sheets (tabs) of a spreadsheet.
func (c *Client) ListSheets(spreadsheetID string) ([]SheetInfo, error) {
	info, err := c.GetSpreadsheetInfo(spreadsheetID)
	if err != nil {
		return nil, err
	}
	return info.Sheets, nil
}

// GetHeaders returns the first row of a sheet.
func (c *Client) GetHeaders(spreadsheetID, sheetTitle string) ([]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, quoteSheetTitle(sheetTitle)+"!1:1").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}

	headers := make([]string, 0, len(resp.Values[0]))
	for _, cell := range resp.Values[0] {
		headers = append(headers, cellString(cell))
	}
	return headers, nil
}

// ReadSheet reads a sheet (or an A1 range within it) and returns the data
// rows keyed by the header row.
func (c *Client) ReadSheet(spreadsheetID, sheetTitle, a1Range string) ([]Row, error) {
	readRange := quoteSheetTitle(sheetTitle)
	if a1Range != "" {
		readRange += "!" + a1Range
	}

	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", readRange, err)
	}

	return rowsToMaps(resp.Values), nil
}

// FindRows returns the rows whose value in the given column matches.
// With exact=false, matching is a case-insensitive substring test.
func (c *Client) FindRows(spreadsheetID, sheetTitle, column, value string, exact bool) ([]Row, error) {
	rows, err := c.ReadSheet(spreadsheetID, sheetTitle, "")
	if err != nil {
		return nil, err
	}

	var matched []Row
	for _, row := range rows {
		if matchCell(row[column], value, exact) {
			matched = append(matched, row)
		}
	}
	return matched, nil
}

// rowsToMaps converts raw value rows to header-keyed maps. The first row is
// the header row; short data rows read as empty strings for the missing
// columns.
func rowsToMaps(values [][]interface{}) []Row {
	if len(values) < 1 {
		return nil
	}

	headers := make([]string, len(values[0]))
	for i, cell := range values[0] {
		headers[i] = cellString(cell)
	}

	rows := make([]Row, 0, len(values)-1)
	for _, raw := range values[1:] {
		row := make(Row, len(headers))
		for i, header := range headers {
			if header == "" {
				header = "column_" + strconv.Itoa(i+1)
			}
			if i < len(raw) {
				row[header] = cellString(raw[i])
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func matchCell(cell, value string, exact bool) bool {
	if exact {
		return cell == value
	}
	return strings.Contains(strings.ToLower(cell), strings.ToLower(value))
}

// cellString renders a cell value the way Sheets displays it. The API
// returns JSON scalars, so numbers arrive as float64.
func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// quoteSheetTitle wraps a sheet title in single quotes when A1 notation
// requires it (spaces or non-alphanumeric characters).
func quoteSheetTitle(title string) string {
	if title == "" {
		return title
	}
	for _, r := range title {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_') {
			return "'" + strings.ReplaceAll(title, "'", "''") + "'"
		}
	}
	return title
}
