// Package common provides shared helpers for MCP tool handlers: account
// resolution and instrumentation wrappers.
package common
