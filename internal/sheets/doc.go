// Package sheets provides a read-only client for the Google Sheets API.
//
// Rows are returned as header-keyed maps: the first row of a sheet (or of
// the requested A1 range) is treated as the header row, and shorter data
// rows are padded with empty strings so every row exposes every column.
package sheets
