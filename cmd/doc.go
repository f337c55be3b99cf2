// Package cmd implements the command-line interface for workspace-mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server exposing Gmail, Calendar, Sheets, Forms
//     and Slides tools to AI assistants
//   - setup: Authorize a Google account from the terminal and create the
//     triage labels
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default when no subcommand is specified.
package cmd
