// Package scheduling implements the availability engine used by the
// calendar tools to find meeting slots across multiple calendars.
//
// The engine is a pure function over already-fetched busy-interval data:
// it merges overlapping busy intervals, detects the free gaps within a
// query window, and clips those gaps to a recurring working-hours mask on
// weekdays, discarding slots shorter than a minimum duration.
//
// It performs no I/O and holds no state; concurrent calls over independent
// inputs are safe without synchronization. The caller is responsible for
// fetching busy data (see the calendar package's QueryFreeBusy) and for
// any timeouts or retries around that fetch.
package scheduling
