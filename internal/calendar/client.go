package calendar

import (
	"context"
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/letterrip/workspace-mcp/internal/google"
	"github.com/letterrip/workspace-mcp/internal/scheduling"
)

// Client wraps the Google Calendar service for a single account.
type Client struct {
	svc           *calendar.Service
	account       string
	tokenProvider google.TokenProvider
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// NewClientForAccountWithProvider creates a new Calendar client authenticated
// for a specific account. The OAuth token is retrieved from the provider.
func NewClientForAccountWithProvider(ctx context.Context, account string, tokenProvider google.TokenProvider) (*Client, error) {
	if tokenProvider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	token, err := tokenProvider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	httpClient, err := google.NewHTTPClientWithToken(ctx, token)
	if err != nil {
		return nil, err
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{
		svc:           svc,
		account:       account,
		tokenProvider: tokenProvider,
	}, nil
}

// NewClientForAccount creates a new Calendar client using the default
// file-based token provider.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	return NewClientForAccountWithProvider(ctx, account, google.NewFileTokenProvider())
}

// NewClient creates a new Calendar client for the default account.
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, google.DefaultAccount)
}

// ListCalendars lists all calendars accessible to the user.
func (c *Client) ListCalendars() ([]CalendarInfo, error) {
	list, err := c.svc.CalendarList.List().Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	var calendars []CalendarInfo
	for _, entry := range list.Items {
		calendars = append(calendars, toCalendarInfo(entry))
	}
	return calendars, nil
}

// GetCalendar retrieves information about a specific calendar.
func (c *Client) GetCalendar(calendarID string) (*CalendarInfo, error) {
	entry, err := c.svc.CalendarList.Get(calendarID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar: %w", err)
	}

	info := toCalendarInfo(entry)
	return &info, nil
}

// GetPrimaryCalendar retrieves information about the primary calendar.
func (c *Client) GetPrimaryCalendar() (*CalendarInfo, error) {
	return c.GetCalendar("primary")
}

// ListEvents lists events in a calendar within a time range. Recurring
// events are expanded into single instances ordered by start time.
func (c *Client) ListEvents(calendarID string, timeMin, timeMax time.Time, query string) ([]EventSummary, error) {
	call := c.svc.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")

	if query != "" {
		call = call.Q(query)
	}

	events, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var summaries []EventSummary
	for _, event := range events.Items {
		summaries = append(summaries, toEventSummary(event))
	}
	return summaries, nil
}

// GetEvent retrieves a specific event by ID.
func (c *Client) GetEvent(calendarID, eventID string) (*EventSummary, error) {
	event, err := c.svc.Events.Get(calendarID, eventID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	summary := toEventSummary(event)
	return &summary, nil
}

// CreateEvent creates a new calendar event.
func (c *Client) CreateEvent(calendarID string, input EventInput) (*EventSummary, error) {
	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
	}
	applyEventTimes(event, input)
	applyAttendees(event, input.Attendees)

	if len(input.Recurrence) > 0 {
		event.Recurrence = input.Recurrence
	}

	call := c.svc.Events.Insert(calendarID, event)
	if input.AddConference {
		call = call.ConferenceDataVersion(1)
		event.ConferenceData = &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: fmt.Sprintf("meet-%d", time.Now().UnixNano()),
			},
		}
	}
	if input.SendUpdates != "" {
		call = call.SendUpdates(input.SendUpdates)
	}

	created, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	summary := toEventSummary(created)
	return &summary, nil
}

// UpdateEvent applies a partial update to an existing calendar event. Only
// the fields set in the input are changed.
func (c *Client) UpdateEvent(calendarID, eventID string, input EventInput) (*EventSummary, error) {
	existing, err := c.svc.Events.Get(calendarID, eventID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get existing event: %w", err)
	}

	if input.Summary != "" {
		existing.Summary = input.Summary
	}
	if input.Description != "" {
		existing.Description = input.Description
	}
	if input.Location != "" {
		existing.Location = input.Location
	}
	if !input.Start.IsZero() || !input.End.IsZero() {
		applyEventTimes(existing, input)
	}
	applyAttendees(existing, input.Attendees)
	if len(input.Recurrence) > 0 {
		existing.Recurrence = input.Recurrence
	}

	call := c.svc.Events.Update(calendarID, eventID, existing)
	if input.SendUpdates != "" {
		call = call.SendUpdates(input.SendUpdates)
	}

	updated, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	summary := toEventSummary(updated)
	return &summary, nil
}

// DeleteEvent deletes a calendar event.
func (c *Client) DeleteEvent(calendarID, eventID string) error {
	if err := c.svc.Events.Delete(calendarID, eventID).Do(); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// QueryFreeBusy checks availability for the given calendars in a time range.
// Per-calendar lookup failures (unknown IDs, no access) are reported in the
// result rather than failing the whole query.
func (c *Client) QueryFreeBusy(timeMin, timeMax time.Time, calendarIDs []string) ([]FreeBusyInfo, error) {
	items := make([]*calendar.FreeBusyRequestItem, len(calendarIDs))
	for i, id := range calendarIDs {
		items[i] = &calendar.FreeBusyRequestItem{Id: id}
	}

	query := &calendar.FreeBusyRequest{
		TimeMin: timeMin.Format(time.RFC3339),
		TimeMax: timeMax.Format(time.RFC3339),
		Items:   items,
	}

	result, err := c.svc.Freebusy.Query(query).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query freebusy: %w", err)
	}

	// Preserve the request order; the API returns a map.
	var infos []FreeBusyInfo
	for _, id := range calendarIDs {
		cal, ok := result.Calendars[id]
		if !ok {
			continue
		}

		info := FreeBusyInfo{Calendar: id}
		for _, busy := range cal.Busy {
			start, errStart := time.Parse(time.RFC3339, busy.Start)
			end, errEnd := time.Parse(time.RFC3339, busy.End)
			if errStart != nil || errEnd != nil {
				continue
			}
			info.Busy = append(info.Busy, TimeRange{Start: start, End: end})
		}
		for _, calErr := range cal.Errors {
			info.Errors = append(info.Errors, calErr.Reason)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// FindFreeSlots finds open meeting slots across the given calendars within
// [timeMin, timeMax). Busy data is fetched once via the free/busy API and
// handed to the scheduling engine, which merges the busy intervals, inverts
// them into gaps, and clips the gaps to working hours.
func (c *Client) FindFreeSlots(timeMin, timeMax time.Time, calendarIDs []string, minDuration time.Duration, wh scheduling.WorkingHours) ([]scheduling.FreeSlot, error) {
	infos, err := c.QueryFreeBusy(timeMin, timeMax, calendarIDs)
	if err != nil {
		return nil, err
	}

	busyByCalendar := make(map[string][]scheduling.BusyInterval, len(infos))
	for _, info := range infos {
		intervals := make([]scheduling.BusyInterval, 0, len(info.Busy))
		for _, tr := range info.Busy {
			intervals = append(intervals, scheduling.BusyInterval{Start: tr.Start, End: tr.End})
		}
		busyByCalendar[info.Calendar] = intervals
	}

	return scheduling.FindFreeSlots(busyByCalendar, timeMin, timeMax, minDuration, wh), nil
}

func applyEventTimes(event *calendar.Event, input EventInput) {
	tz := input.TimeZone
	if tz == "" {
		tz = "UTC"
	}

	set := func(t time.Time) *calendar.EventDateTime {
		if input.AllDay {
			return &calendar.EventDateTime{Date: t.Format("2006-01-02")}
		}
		return &calendar.EventDateTime{DateTime: t.Format(time.RFC3339), TimeZone: tz}
	}

	if !input.Start.IsZero() {
		event.Start = set(input.Start)
	}
	if !input.End.IsZero() {
		event.End = set(input.End)
	}
}

func applyAttendees(event *calendar.Event, emails []string) {
	if len(emails) == 0 {
		return
	}
	attendees := make([]*calendar.EventAttendee, 0, len(emails))
	for _, email := range emails {
		attendees = append(attendees, &calendar.EventAttendee{Email: email})
	}
	event.Attendees = attendees
}
