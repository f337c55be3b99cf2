package calendar_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/workspace-mcp/internal/scheduling"
	"github.com/letterrip/workspace-mcp/internal/server"
	"github.com/letterrip/workspace-mcp/internal/tools/common"
)

const (
	defaultDaysAhead          = 7
	defaultMinDurationMinutes = 30
	defaultWorkingHoursStart  = 9
	defaultWorkingHoursEnd    = 17
)

// RegisterSchedulingTools registers the free/busy and availability tools.
// Both are read-only.
func RegisterSchedulingTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	freeBusyTool := mcp.NewTool("calendar_query_freebusy",
		mcp.WithDescription("Query raw busy intervals for one or more calendars"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("calendarIds",
			mcp.Description("Comma-separated calendar IDs (default: 'primary')"),
		),
		mcp.WithString("timeMin",
			mcp.Description("Start of the range (RFC3339; offset-less timestamps are read as UTC). Defaults to now."),
		),
		mcp.WithString("timeMax",
			mcp.Description("End of the range (RFC3339). Defaults to daysAhead days after timeMin."),
		),
		mcp.WithNumber("daysAhead",
			mcp.Description("Range length in days when timeMax is omitted (default: 7)"),
		),
	)

	s.AddTool(freeBusyTool, common.InstrumentedToolHandlerWithService(
		"calendar_query_freebusy", "calendar", "freebusy", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleQueryFreeBusy(ctx, request, sc)
		}))

	findSlotsTool := mcp.NewTool("calendar_find_free_slots",
		mcp.WithDescription("Find free time slots across calendars, clipped to working hours (Mon-Fri)"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("calendarIds",
			mcp.Description("Comma-separated calendar IDs to consider busy (default: 'primary')"),
		),
		mcp.WithString("timeMin",
			mcp.Description("Start of the search range (RFC3339; offset-less timestamps are read as UTC). Defaults to now."),
		),
		mcp.WithString("timeMax",
			mcp.Description("End of the search range (RFC3339). Defaults to daysAhead days after timeMin."),
		),
		mcp.WithNumber("daysAhead",
			mcp.Description("Search range in days when timeMax is omitted (default: 7)"),
		),
		mcp.WithNumber("minDurationMinutes",
			mcp.Description("Minimum slot length in minutes (default: 30)"),
		),
		mcp.WithNumber("workingHoursStart",
			mcp.Description("Working day start hour, 0-23 (default: 9)"),
		),
		mcp.WithNumber("workingHoursEnd",
			mcp.Description("Working day end hour, 1-24 (default: 17)"),
		),
		mcp.WithString("timeZone",
			mcp.Description("IANA time zone the working hours apply in (default: UTC)"),
		),
	)

	s.AddTool(findSlotsTool, common.InstrumentedToolHandlerWithService(
		"calendar_find_free_slots", "calendar", "freebusy", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFindFreeSlots(ctx, request, sc)
		}))

	return nil
}

// intArg returns the named numeric argument as an int, or fallback when
// absent. MCP transports numbers as float64.
func intArg(args map[string]interface{}, name string, fallback int) int {
	if v, ok := args[name].(float64); ok {
		return int(v)
	}
	return fallback
}

// timeRangeFromArgs resolves the timeMin/timeMax pair, defaulting timeMin to
// now and timeMax to daysAhead days after timeMin.
func timeRangeFromArgs(args map[string]interface{}) (time.Time, time.Time, error) {
	timeMin := time.Now().UTC()
	if v := stringArg(args, "timeMin", ""); v != "" {
		t, err := parseTimestamp(v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid timeMin: %v", err)
		}
		timeMin = t
	}

	if v := stringArg(args, "timeMax", ""); v != "" {
		timeMax, err := parseTimestamp(v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid timeMax: %v", err)
		}
		if !timeMin.Before(timeMax) {
			return time.Time{}, time.Time{}, fmt.Errorf("timeMin must be before timeMax")
		}
		return timeMin, timeMax, nil
	}

	daysAhead := intArg(args, "daysAhead", defaultDaysAhead)
	if daysAhead <= 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("daysAhead must be positive")
	}
	return timeMin, timeMin.AddDate(0, 0, daysAhead), nil
}

func calendarIDsFromArgs(args map[string]interface{}) []string {
	ids := splitCSV(stringArg(args, "calendarIds", ""))
	if len(ids) == 0 {
		return []string{"primary"}
	}
	return ids
}

func handleQueryFreeBusy(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	timeMin, timeMax, err := timeRangeFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	infos, err := client.QueryFreeBusy(timeMin, timeMax, calendarIDsFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to query free/busy: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Busy intervals from %s to %s:\n\n",
		timeMin.Format(time.RFC3339), timeMax.Format(time.RFC3339))
	for _, info := range infos {
		fmt.Fprintf(&b, "Calendar: %s\n", info.Calendar)
		for _, errMsg := range info.Errors {
			fmt.Fprintf(&b, "  error: %s\n", errMsg)
		}
		if len(info.Busy) == 0 && len(info.Errors) == 0 {
			b.WriteString("  (no busy intervals)\n")
		}
		for _, tr := range info.Busy {
			fmt.Fprintf(&b, "  %s to %s\n",
				tr.Start.Format(time.RFC3339), tr.End.Format(time.RFC3339))
		}
		b.WriteString("\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleFindFreeSlots(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	timeMin, timeMax, err := timeRangeFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// 0 disables the minimum-duration filter.
	minDurationMinutes := intArg(args, "minDurationMinutes", defaultMinDurationMinutes)
	if minDurationMinutes < 0 {
		return mcp.NewToolResultError("minDurationMinutes must not be negative"), nil
	}
	minDuration := time.Duration(minDurationMinutes) * time.Minute

	wh := scheduling.WorkingHours{
		StartHour: intArg(args, "workingHoursStart", defaultWorkingHoursStart),
		EndHour:   intArg(args, "workingHoursEnd", defaultWorkingHoursEnd),
	}
	if tz := stringArg(args, "timeZone", ""); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid timeZone: %v", err)), nil
		}
		wh.Location = loc
	}

	client, err := getCalendarClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	slots, err := client.FindFreeSlots(timeMin, timeMax, calendarIDsFromArgs(args), minDuration, wh)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to find free slots: %v", err)), nil
	}

	payload, err := json.MarshalIndent(struct {
		TimeMin time.Time             `json:"timeMin"`
		TimeMax time.Time             `json:"timeMax"`
		Slots   []scheduling.FreeSlot `json:"slots"`
	}{timeMin, timeMax, slots}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format slots: %v", err)), nil
	}

	return mcp.NewToolResultText(string(payload)), nil
}
