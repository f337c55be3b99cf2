// Package gmail_tools provides MCP tools for inbox triage and drafting
// via the Gmail API.
//
// Read tools list unprocessed mail, fetch individual messages, and list
// drafts and sent mail. Write tools apply and remove triage labels,
// create the label taxonomy, and create reply drafts; they are only
// registered when the server runs with write access enabled.
//
// Triage labels form a fixed taxonomy (FYI, Respond, Write-Reply,
// To-Archive, Needs-Review) managed by the gmail package. A message is
// "unprocessed" when it carries none of these labels.
package gmail_tools
