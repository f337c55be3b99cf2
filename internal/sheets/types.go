package sheets

// SpreadsheetInfo describes a spreadsheet and its sheets.
type SpreadsheetInfo struct {
	ID       string
	Title    string
	Locale   string
	TimeZone string
	Sheets   []SheetInfo
}

// SheetInfo describes a single sheet (tab) within a spreadsheet.
type SheetInfo struct {
	ID      int64
	Title   string
	Index   int64
	Rows    int64
	Columns int64
}

// Row is a single data row keyed by header name.
type Row map[string]string
