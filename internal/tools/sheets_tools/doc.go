// Package sheets_tools provides read-only MCP tools for Google Sheets.
//
// The tools expose spreadsheet metadata, header rows, and header-keyed row
// data so that agents can read tabular reference data (rosters, trackers,
// schedules) without dealing with A1 notation directly.
package sheets_tools
