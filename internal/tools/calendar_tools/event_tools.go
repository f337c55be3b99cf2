package calendar_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/workspace-mcp/internal/calendar"
	"github.com/letterrip/workspace-mcp/internal/server"
	"github.com/letterrip/workspace-mcp/internal/tools/common"
)

// RegisterEventTools registers the event tools. Create, update and delete
// are write operations and are skipped in read-only mode.
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listEventsTool := mcp.NewTool("calendar_list_events",
		mcp.WithDescription("List/search calendar events within a time range"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (use 'primary' for the primary calendar)"),
		),
		mcp.WithString("timeMin",
			mcp.Required(),
			mcp.Description("Start of the range (RFC3339, e.g. '2025-01-01T00:00:00Z'; offset-less timestamps are read as UTC)"),
		),
		mcp.WithString("timeMax",
			mcp.Required(),
			mcp.Description("End of the range, exclusive (RFC3339; offset-less timestamps are read as UTC)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional free-text query to filter events"),
		),
	)

	s.AddTool(listEventsTool, common.InstrumentedToolHandlerWithService(
		"calendar_list_events", "calendar", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEvents(ctx, request, sc)
		}))

	getEventTool := mcp.NewTool("calendar_get_event",
		mcp.WithDescription("Get details of a specific calendar event"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (use 'primary' for the primary calendar)"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the event to retrieve"),
		),
	)

	s.AddTool(getEventTool, common.InstrumentedToolHandlerWithService(
		"calendar_get_event", "calendar", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEvent(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createEventTool := mcp.NewTool("calendar_create_event",
		mcp.WithDescription("Create a new calendar event (supports recurrence, attendees, and Google Meet)"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (use 'primary' for the primary calendar)"),
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Event title"),
		),
		mcp.WithString("description",
			mcp.Description("Event description"),
		),
		mcp.WithString("location",
			mcp.Description("Event location"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Start time (RFC3339, e.g. '2025-01-15T14:00:00Z')"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("End time (RFC3339)"),
		),
		mcp.WithString("timeZone",
			mcp.Description("Time zone (e.g. 'America/New_York'). Defaults to UTC."),
		),
		mcp.WithString("attendees",
			mcp.Description("Comma-separated list of attendee email addresses"),
		),
		mcp.WithString("recurrence",
			mcp.Description("Recurrence rule (e.g. 'RRULE:FREQ=WEEKLY;BYDAY=MO,WE,FR')"),
		),
		mcp.WithString("sendUpdates",
			mcp.Description("Attendee notifications: 'all', 'externalOnly' or 'none'"),
		),
		mcp.WithBoolean("allDay",
			mcp.Description("Create as an all-day event (time portion of start/end is ignored)"),
		),
		mcp.WithBoolean("addGoogleMeet",
			mcp.Description("Attach an auto-generated Google Meet link"),
		),
	)

	s.AddTool(createEventTool, common.InstrumentedToolHandlerWithService(
		"calendar_create_event", "calendar", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateEvent(ctx, request, sc)
		}))

	updateEventTool := mcp.NewTool("calendar_update_event",
		mcp.WithDescription("Update an existing calendar event; omitted fields are left unchanged"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (use 'primary' for the primary calendar)"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the event to update"),
		),
		mcp.WithString("summary",
			mcp.Description("New event title"),
		),
		mcp.WithString("description",
			mcp.Description("New event description"),
		),
		mcp.WithString("location",
			mcp.Description("New event location"),
		),
		mcp.WithString("start",
			mcp.Description("New start time (RFC3339)"),
		),
		mcp.WithString("end",
			mcp.Description("New end time (RFC3339)"),
		),
		mcp.WithString("timeZone",
			mcp.Description("Time zone (e.g. 'America/New_York')"),
		),
		mcp.WithString("attendees",
			mcp.Description("Replacement comma-separated list of attendee email addresses"),
		),
		mcp.WithString("sendUpdates",
			mcp.Description("Attendee notifications: 'all', 'externalOnly' or 'none'"),
		),
		mcp.WithBoolean("allDay",
			mcp.Description("Convert to an all-day event"),
		),
	)

	s.AddTool(updateEventTool, common.InstrumentedToolHandlerWithService(
		"calendar_update_event", "calendar", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateEvent(ctx, request, sc)
		}))

	deleteEventTool := mcp.NewTool("calendar_delete_event",
		mcp.WithDescription("Delete a calendar event"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (use 'primary' for the primary calendar)"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the event to delete"),
		),
	)

	s.AddTool(deleteEventTool, common.InstrumentedToolHandlerWithService(
		"calendar_delete_event", "calendar", "delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteEvent(ctx, request, sc)
		}))

	return nil
}

// stringArg returns the named string argument, or fallback when absent.
func stringArg(args map[string]interface{}, name, fallback string) string {
	if v, ok := args[name].(string); ok && v != "" {
		return v
	}
	return fallback
}

// requiredTimeArg parses a required timestamp argument. Timestamps without
// an explicit UTC offset fall back to UTC rather than failing.
func requiredTimeArg(args map[string]interface{}, name string) (time.Time, error) {
	v, ok := args[name].(string)
	if !ok || v == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	t, err := parseTimestamp(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %v", name, err)
	}
	return t, nil
}

// parseTimestamp accepts RFC3339 timestamps, reading timestamps without
// offset information as UTC.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("timestamp %q is not RFC3339 (e.g. 2025-01-15T14:00:00Z)", s)
}

// splitCSV splits a comma-separated argument into trimmed, non-empty parts.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func formatEvent(b *strings.Builder, event *calendar.EventSummary) {
	fmt.Fprintf(b, "Event: %s\n", event.Summary)
	fmt.Fprintf(b, "ID: %s\n", event.ID)
	if event.AllDay {
		fmt.Fprintf(b, "Date: %s (all day)\n", event.Start.Format("2006-01-02"))
	} else {
		fmt.Fprintf(b, "Start: %s\n", event.Start.Format(time.RFC3339))
		fmt.Fprintf(b, "End: %s\n", event.End.Format(time.RFC3339))
	}
	if event.Location != "" {
		fmt.Fprintf(b, "Location: %s\n", event.Location)
	}
	if event.Status != "" {
		fmt.Fprintf(b, "Status: %s\n", event.Status)
	}
	if event.Organizer != "" {
		fmt.Fprintf(b, "Organizer: %s\n", event.Organizer)
	}
	if len(event.Attendees) > 0 {
		b.WriteString("Attendees:\n")
		for _, att := range event.Attendees {
			fmt.Fprintf(b, "  - %s (%s)\n", att.Email, att.ResponseStatus)
		}
	}
	if event.MeetLink != "" {
		fmt.Fprintf(b, "Meet: %s\n", event.MeetLink)
	}
	if event.HTMLLink != "" {
		fmt.Fprintf(b, "Link: %s\n", event.HTMLLink)
	}
	if event.Description != "" {
		fmt.Fprintf(b, "Description:\n%s\n", event.Description)
	}
}

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)
	calendarID := stringArg(args, "calendarId", "primary")

	timeMin, err := requiredTimeArg(args, "timeMin")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeMax, err := requiredTimeArg(args, "timeMax")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	events, err := client.ListEvents(calendarID, timeMin, timeMax, stringArg(args, "query", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list events: %v", err)), nil
	}

	if len(events) == 0 {
		return mcp.NewToolResultText("No events found in the given range."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d event(s):\n\n", len(events))
	for i, event := range events {
		fmt.Fprintf(&b, "%d. %s\n", i+1, event.Summary)
		fmt.Fprintf(&b, "   ID: %s\n", event.ID)
		if event.AllDay {
			fmt.Fprintf(&b, "   Date: %s (all day)\n", event.Start.Format("2006-01-02"))
		} else {
			fmt.Fprintf(&b, "   %s to %s\n",
				event.Start.Format("2006-01-02 15:04"),
				event.End.Format("15:04 MST"))
		}
		if event.Location != "" {
			fmt.Fprintf(&b, "   Location: %s\n", event.Location)
		}
		b.WriteString("\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleGetEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)
	calendarID := stringArg(args, "calendarId", "primary")

	eventID, ok := args["eventId"].(string)
	if !ok || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	client, err := getCalendarClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := client.GetEvent(calendarID, eventID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get event: %v", err)), nil
	}

	var b strings.Builder
	formatEvent(&b, event)
	return mcp.NewToolResultText(b.String()), nil
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)
	calendarID := stringArg(args, "calendarId", "primary")

	summary, ok := args["summary"].(string)
	if !ok || summary == "" {
		return mcp.NewToolResultError("summary is required"), nil
	}

	start, err := requiredTimeArg(args, "start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := requiredTimeArg(args, "end")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !start.Before(end) {
		return mcp.NewToolResultError("start must be before end"), nil
	}

	input := calendar.EventInput{
		Summary:     summary,
		Description: stringArg(args, "description", ""),
		Location:    stringArg(args, "location", ""),
		Start:       start,
		End:         end,
		TimeZone:    stringArg(args, "timeZone", ""),
		SendUpdates: stringArg(args, "sendUpdates", ""),
	}
	if attendees := stringArg(args, "attendees", ""); attendees != "" {
		input.Attendees = splitCSV(attendees)
	}
	if rule := stringArg(args, "recurrence", ""); rule != "" {
		input.Recurrence = []string{rule}
	}
	if allDay, ok := args["allDay"].(bool); ok {
		input.AllDay = allDay
	}
	if addMeet, ok := args["addGoogleMeet"].(bool); ok {
		input.AddConference = addMeet
	}

	client, err := getCalendarClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := client.CreateEvent(calendarID, input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create event: %v", err)), nil
	}

	var b strings.Builder
	b.WriteString("Event created.\n\n")
	formatEvent(&b, event)
	return mcp.NewToolResultText(b.String()), nil
}

func handleUpdateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)
	calendarID := stringArg(args, "calendarId", "primary")

	eventID, ok := args["eventId"].(string)
	if !ok || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	input := calendar.EventInput{
		Summary:     stringArg(args, "summary", ""),
		Description: stringArg(args, "description", ""),
		Location:    stringArg(args, "location", ""),
		TimeZone:    stringArg(args, "timeZone", ""),
		SendUpdates: stringArg(args, "sendUpdates", ""),
	}
	if v := stringArg(args, "start", ""); v != "" {
		t, err := parseTimestamp(v)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid start: %v", err)), nil
		}
		input.Start = t
	}
	if v := stringArg(args, "end", ""); v != "" {
		t, err := parseTimestamp(v)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid end: %v", err)), nil
		}
		input.End = t
	}
	if attendees := stringArg(args, "attendees", ""); attendees != "" {
		input.Attendees = splitCSV(attendees)
	}
	if allDay, ok := args["allDay"].(bool); ok {
		input.AllDay = allDay
	}

	client, err := getCalendarClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := client.UpdateEvent(calendarID, eventID, input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update event: %v", err)), nil
	}

	var b strings.Builder
	b.WriteString("Event updated.\n\n")
	formatEvent(&b, event)
	return mcp.NewToolResultText(b.String()), nil
}

func handleDeleteEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)
	calendarID := stringArg(args, "calendarId", "primary")

	eventID, ok := args["eventId"].(string)
	if !ok || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	client, err := getCalendarClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.DeleteEvent(calendarID, eventID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete event: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Event %s deleted.", eventID)), nil
}
