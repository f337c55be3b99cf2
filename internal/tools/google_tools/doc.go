// Package google_tools provides MCP tools for the Google OAuth flow used
// by the stdio transport.
//
// The flow:
//  1. Call google_get_auth_url to get the authorization URL for an account
//  2. The user visits the URL and authorizes access
//  3. Call google_save_auth_code with the resulting code
//
// The saved token covers every Google service this server exposes
// (Gmail, Calendar, Sheets, Forms, Slides) and is refreshed automatically.
// HTTP transports authenticate through the OAuth middleware instead.
package google_tools
