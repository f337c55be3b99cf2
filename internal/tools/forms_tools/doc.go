// Package forms_tools provides read-only MCP tools for Google Forms.
//
// The tools expose form structure (questions, types, options), individual
// responses, a tabular view of all responses keyed by question title, and
// aggregate answer statistics.
package forms_tools
