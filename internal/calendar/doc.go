// Package calendar provides a client for the Google Calendar API.
//
// It covers calendar and event CRUD, free/busy queries, and availability
// search: FindFreeSlots feeds free/busy data through the scheduling engine
// to produce bookable meeting slots.
//
// Clients are created per account via the Google OAuth2 flow and can manage
// events across multiple Google accounts.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := calendar.NewClient(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	events, err := client.ListEvents("primary", time.Now(), time.Now().AddDate(0, 0, 7), "")
//	if err != nil {
//	    log.Fatal(err)
//	}
package calendar
