// Package resources provides MCP resources: read-only data sources that
// clients can fetch alongside tool calls, such as the authenticated user's
// profile and the triage label taxonomy.
package resources
