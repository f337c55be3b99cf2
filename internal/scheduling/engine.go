package scheduling

import (
	"sort"
	"time"
)

// BusyInterval is a half-open time interval [Start, End) during which a
// calendar is occupied. Intervals with Start >= End carry no information
// and are ignored by the engine.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// WorkingHours is a recurring daily availability mask. Slots are confined
// to [StartHour:00, EndHour:00) on Mondays through Fridays. When Location
// is nil the mask is evaluated in the zone each gap's start carries, so
// 9:00 means 9:00 in the caller's offset (boundaries parsed without an
// offset arrive in UTC). Hours are on the 24-hour clock; a mask with
// StartHour >= EndHour admits no time at all.
type WorkingHours struct {
	StartHour int
	EndHour   int
	Location  *time.Location
}

// DefaultWorkingHours is the 9:00-17:00 weekday mask applied when a caller
// does not specify one.
var DefaultWorkingHours = WorkingHours{StartHour: 9, EndHour: 17}

// FreeSlot is a bookable interval produced by the engine. Start and End
// are half-open like BusyInterval; DurationMinutes is the slot length in
// whole minutes, rounded down.
type FreeSlot struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"durationMinutes"`
}

func (wh WorkingHours) valid() bool {
	return wh.StartHour >= 0 && wh.EndHour <= 24 && wh.StartHour < wh.EndHour
}

// Merge normalizes a set of busy intervals: degenerate intervals are
// dropped, the rest are sorted by start time, and overlapping or touching
// intervals are coalesced. The result is a minimal, sorted, pairwise
// disjoint cover of the input; merging an already-merged set returns it
// unchanged. The input slice is not modified.
func Merge(busy []BusyInterval) []BusyInterval {
	clean := make([]BusyInterval, 0, len(busy))
	for _, b := range busy {
		if b.Start.Before(b.End) {
			clean = append(clean, b)
		}
	}
	if len(clean) == 0 {
		return nil
	}

	sort.Slice(clean, func(i, j int) bool {
		return clean[i].Start.Before(clean[j].Start)
	})

	merged := clean[:1]
	for _, b := range clean[1:] {
		last := &merged[len(merged)-1]
		// A busy block starting exactly when the previous one ends leaves
		// no usable gap, so touching intervals coalesce too.
		if !b.Start.After(last.End) {
			if b.End.After(last.End) {
				last.End = b.End
			}
			continue
		}
		merged = append(merged, b)
	}
	return merged
}

// Gaps returns the free intervals within the window [timeMin, timeMax)
// that are not covered by any busy interval. Busy time outside the window
// is ignored. The result is sorted and disjoint; an empty or inverted
// window yields nil.
func Gaps(busy []BusyInterval, timeMin, timeMax time.Time) []BusyInterval {
	if !timeMin.Before(timeMax) {
		return nil
	}

	var gaps []BusyInterval
	cursor := timeMin
	for _, b := range Merge(busy) {
		if !b.End.After(cursor) {
			continue
		}
		if !b.Start.Before(timeMax) {
			break
		}
		if b.Start.After(cursor) {
			gaps = append(gaps, BusyInterval{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(timeMax) {
		gaps = append(gaps, BusyInterval{Start: cursor, End: timeMax})
	}
	return gaps
}

// ClipToWorkingHours intersects free intervals with the recurring
// working-hours mask and keeps the pieces at least minDuration long.
// A gap spanning several days contributes one candidate slot per working
// day it covers. Slots come back in chronological order.
func ClipToWorkingHours(free []BusyInterval, wh WorkingHours, minDuration time.Duration) []FreeSlot {
	if !wh.valid() {
		return nil
	}

	var slots []FreeSlot
	for _, g := range free {
		if !g.Start.Before(g.End) {
			continue
		}
		loc := wh.Location
		if loc == nil {
			loc = g.Start.Location()
		}
		gs := g.Start.In(loc)
		ge := g.End.In(loc)

		// Walk each calendar day the gap touches and intersect with that
		// day's working window. time.Date handles DST transitions.
		for day := gs; day.Before(ge); day = startOfDay(day, loc).AddDate(0, 0, 1) {
			y, m, d := day.Date()
			winStart := time.Date(y, m, d, wh.StartHour, 0, 0, 0, loc)
			winEnd := time.Date(y, m, d, wh.EndHour, 0, 0, 0, loc)

			wd := winStart.Weekday()
			if wd == time.Saturday || wd == time.Sunday {
				continue
			}

			s, e := gs, ge
			if winStart.After(s) {
				s = winStart
			}
			if winEnd.Before(e) {
				e = winEnd
			}
			if dur := e.Sub(s); dur >= minDuration && dur > 0 {
				slots = append(slots, FreeSlot{
					Start:           s,
					End:             e,
					DurationMinutes: int(e.Sub(s) / time.Minute),
				})
			}
		}
	}
	return slots
}

// FindFreeSlots runs the full availability pipeline over the busy data of
// one or more calendars: the per-calendar intervals are pooled (time busy
// for any calendar is busy for the group), merged, inverted into gaps over
// [timeMin, timeMax), and clipped to the working-hours mask. minDuration
// values <= 0 mean no minimum. The function never returns nil; a fully
// booked window yields an empty slice.
func FindFreeSlots(busyByCalendar map[string][]BusyInterval, timeMin, timeMax time.Time, minDuration time.Duration, wh WorkingHours) []FreeSlot {
	var pooled []BusyInterval
	for _, intervals := range busyByCalendar {
		pooled = append(pooled, intervals...)
	}

	slots := ClipToWorkingHours(Gaps(pooled, timeMin, timeMax), wh, minDuration)
	if slots == nil {
		slots = []FreeSlot{}
	}
	return slots
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
