// Package calendar_tools provides MCP tools for Google Calendar:
// calendar and event management, free/busy queries, and the availability
// search that computes bookable slots across several calendars.
package calendar_tools
