package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday 2024-01-15 is the anchor for most cases; the following Saturday
// is 2024-01-20.
func at(day, hour, min int) time.Time {
	return time.Date(2024, 1, day, hour, min, 0, 0, time.UTC)
}

func busy(s, e time.Time) BusyInterval { return BusyInterval{Start: s, End: e} }

func TestMerge_OverlappingIntervals(t *testing.T) {
	got := Merge([]BusyInterval{
		busy(at(15, 9, 0), at(15, 11, 0)),
		busy(at(15, 10, 0), at(15, 12, 0)),
	})
	require.Len(t, got, 1)
	assert.Equal(t, at(15, 9, 0), got[0].Start)
	assert.Equal(t, at(15, 12, 0), got[0].End)
}

func TestMerge_TouchingIntervalsCoalesce(t *testing.T) {
	got := Merge([]BusyInterval{
		busy(at(15, 9, 0), at(15, 10, 0)),
		busy(at(15, 10, 0), at(15, 11, 0)),
	})
	require.Len(t, got, 1)
	assert.Equal(t, at(15, 9, 0), got[0].Start)
	assert.Equal(t, at(15, 11, 0), got[0].End)
}

func TestMerge_ContainedInterval(t *testing.T) {
	got := Merge([]BusyInterval{
		busy(at(15, 9, 0), at(15, 17, 0)),
		busy(at(15, 10, 0), at(15, 11, 0)),
	})
	require.Len(t, got, 1)
	assert.Equal(t, at(15, 9, 0), got[0].Start)
	assert.Equal(t, at(15, 17, 0), got[0].End)
}

func TestMerge_UnsortedInput(t *testing.T) {
	got := Merge([]BusyInterval{
		busy(at(15, 14, 0), at(15, 15, 0)),
		busy(at(15, 9, 0), at(15, 10, 0)),
		busy(at(15, 11, 0), at(15, 12, 0)),
	})
	require.Len(t, got, 3)
	assert.Equal(t, at(15, 9, 0), got[0].Start)
	assert.Equal(t, at(15, 11, 0), got[1].Start)
	assert.Equal(t, at(15, 14, 0), got[2].Start)
}

func TestMerge_DropsDegenerateIntervals(t *testing.T) {
	got := Merge([]BusyInterval{
		busy(at(15, 10, 0), at(15, 10, 0)), // empty
		busy(at(15, 12, 0), at(15, 11, 0)), // inverted
	})
	assert.Empty(t, got)
}

func TestMerge_Idempotent(t *testing.T) {
	once := Merge([]BusyInterval{
		busy(at(15, 9, 0), at(15, 10, 30)),
		busy(at(15, 10, 0), at(15, 12, 0)),
		busy(at(15, 13, 0), at(15, 14, 0)),
	})
	twice := Merge(once)
	assert.Equal(t, once, twice)
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	in := []BusyInterval{
		busy(at(15, 14, 0), at(15, 15, 0)),
		busy(at(15, 9, 0), at(15, 10, 0)),
	}
	Merge(in)
	assert.Equal(t, at(15, 14, 0), in[0].Start, "input slice must not be reordered")
}

func TestGaps_EmptyBusyYieldsWholeWindow(t *testing.T) {
	got := Gaps(nil, at(15, 9, 0), at(15, 17, 0))
	require.Len(t, got, 1)
	assert.Equal(t, at(15, 9, 0), got[0].Start)
	assert.Equal(t, at(15, 17, 0), got[0].End)
}

func TestGaps_BusyCoveringWindow(t *testing.T) {
	got := Gaps([]BusyInterval{busy(at(15, 8, 0), at(15, 18, 0))}, at(15, 9, 0), at(15, 17, 0))
	assert.Empty(t, got)
}

func TestGaps_BetweenAndAroundBusy(t *testing.T) {
	got := Gaps([]BusyInterval{
		busy(at(15, 10, 0), at(15, 11, 0)),
		busy(at(15, 13, 0), at(15, 14, 0)),
	}, at(15, 9, 0), at(15, 17, 0))
	require.Len(t, got, 3)
	assert.Equal(t, busy(at(15, 9, 0), at(15, 10, 0)), got[0])
	assert.Equal(t, busy(at(15, 11, 0), at(15, 13, 0)), got[1])
	assert.Equal(t, busy(at(15, 14, 0), at(15, 17, 0)), got[2])
}

func TestGaps_BusyOutsideWindowIgnored(t *testing.T) {
	got := Gaps([]BusyInterval{
		busy(at(14, 10, 0), at(14, 11, 0)),
		busy(at(16, 10, 0), at(16, 11, 0)),
	}, at(15, 9, 0), at(15, 17, 0))
	require.Len(t, got, 1)
	assert.Equal(t, busy(at(15, 9, 0), at(15, 17, 0)), got[0])
}

func TestGaps_BusyStraddlingWindowEdges(t *testing.T) {
	got := Gaps([]BusyInterval{
		busy(at(15, 8, 0), at(15, 10, 0)),
		busy(at(15, 16, 0), at(15, 18, 0)),
	}, at(15, 9, 0), at(15, 17, 0))
	require.Len(t, got, 1)
	assert.Equal(t, busy(at(15, 10, 0), at(15, 16, 0)), got[0])
}

func TestGaps_InvertedWindow(t *testing.T) {
	assert.Nil(t, Gaps(nil, at(15, 17, 0), at(15, 9, 0)))
	assert.Nil(t, Gaps(nil, at(15, 9, 0), at(15, 9, 0)))
}

func TestClipToWorkingHours_ConfinesToMask(t *testing.T) {
	free := []BusyInterval{busy(at(15, 7, 0), at(15, 20, 0))}
	got := ClipToWorkingHours(free, WorkingHours{StartHour: 9, EndHour: 17}, 30*time.Minute)
	require.Len(t, got, 1)
	assert.Equal(t, at(15, 9, 0), got[0].Start)
	assert.Equal(t, at(15, 17, 0), got[0].End)
	assert.Equal(t, 480, got[0].DurationMinutes)
}

func TestClipToWorkingHours_SkipsWeekends(t *testing.T) {
	// Friday 19th 12:00 through Monday 22nd 12:00.
	free := []BusyInterval{busy(at(19, 12, 0), at(22, 12, 0))}
	got := ClipToWorkingHours(free, WorkingHours{StartHour: 9, EndHour: 17}, 30*time.Minute)
	require.Len(t, got, 2)
	assert.Equal(t, at(19, 12, 0), got[0].Start)
	assert.Equal(t, at(19, 17, 0), got[0].End)
	assert.Equal(t, at(22, 9, 0), got[1].Start)
	assert.Equal(t, at(22, 12, 0), got[1].End)
}

func TestClipToWorkingHours_MinDurationFilter(t *testing.T) {
	free := []BusyInterval{
		busy(at(15, 9, 0), at(15, 9, 20)),
		busy(at(15, 10, 0), at(15, 11, 0)),
	}
	got := ClipToWorkingHours(free, WorkingHours{StartHour: 9, EndHour: 17}, 30*time.Minute)
	require.Len(t, got, 1)
	assert.Equal(t, at(15, 10, 0), got[0].Start)
}

func TestClipToWorkingHours_InvalidMask(t *testing.T) {
	free := []BusyInterval{busy(at(15, 9, 0), at(15, 17, 0))}
	assert.Empty(t, ClipToWorkingHours(free, WorkingHours{StartHour: 17, EndHour: 9}, 0))
	assert.Empty(t, ClipToWorkingHours(free, WorkingHours{StartHour: 9, EndHour: 9}, 0))
}

func TestClipToWorkingHours_RespectsLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 14:00-22:00 UTC on the Monday is 9:00-17:00 in New York.
	free := []BusyInterval{busy(at(15, 0, 0), at(16, 0, 0))}
	got := ClipToWorkingHours(free, WorkingHours{StartHour: 9, EndHour: 17, Location: ny}, 0)
	require.Len(t, got, 1)
	assert.Equal(t, at(15, 14, 0), got[0].Start.UTC())
	assert.Equal(t, at(15, 22, 0), got[0].End.UTC())
}

func TestClipToWorkingHours_MaskFollowsGapOffset(t *testing.T) {
	plus2 := time.FixedZone("UTC+2", 2*60*60)

	// Monday 2026-01-05, boundaries carry +02:00 and no Location is set:
	// the 9:00-17:00 mask applies in the gap's own offset, not in UTC.
	free := []BusyInterval{busy(
		time.Date(2026, 1, 5, 0, 0, 0, 0, plus2),
		time.Date(2026, 1, 5, 23, 0, 0, 0, plus2),
	)}
	got := ClipToWorkingHours(free, WorkingHours{StartHour: 9, EndHour: 17}, 0)
	require.Len(t, got, 1)
	assert.True(t, got[0].Start.Equal(time.Date(2026, 1, 5, 9, 0, 0, 0, plus2)),
		"slot starts at 9:00+02:00, got %s", got[0].Start)
	assert.True(t, got[0].End.Equal(time.Date(2026, 1, 5, 17, 0, 0, 0, plus2)),
		"slot ends at 17:00+02:00, got %s", got[0].End)
	assert.Equal(t, time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC), got[0].Start.UTC())
}

func TestClipToWorkingHours_MinDurationExactBoundary(t *testing.T) {
	free := []BusyInterval{
		busy(at(15, 9, 0), at(15, 10, 0)),  // exactly 60 minutes
		busy(at(15, 16, 1), at(15, 18, 0)), // 59 minutes once clipped to 17:00
	}
	got := ClipToWorkingHours(free, WorkingHours{StartHour: 9, EndHour: 17}, 60*time.Minute)
	require.Len(t, got, 1)
	assert.Equal(t, at(15, 9, 0), got[0].Start)
	assert.Equal(t, 60, got[0].DurationMinutes)
}

func TestClipToWorkingHours_DurationRoundsDown(t *testing.T) {
	free := []BusyInterval{busy(at(15, 10, 0), at(15, 10, 59).Add(30*time.Second))}
	got := ClipToWorkingHours(free, WorkingHours{StartHour: 9, EndHour: 17}, 0)
	require.Len(t, got, 1)
	assert.Equal(t, 59, got[0].DurationMinutes)
}

func TestFindFreeSlots_FullDay(t *testing.T) {
	got := FindFreeSlots(nil, at(15, 0, 0), at(16, 0, 0), 30*time.Minute, DefaultWorkingHours)
	require.Len(t, got, 1)
	assert.Equal(t, at(15, 9, 0), got[0].Start)
	assert.Equal(t, at(15, 17, 0), got[0].End)
	assert.Equal(t, 480, got[0].DurationMinutes)
}

func TestFindFreeSlots_WithEvents(t *testing.T) {
	busyByCal := map[string][]BusyInterval{
		"primary": {
			busy(at(15, 9, 0), at(15, 10, 0)),
			busy(at(15, 12, 0), at(15, 13, 0)),
		},
		"team@example.com": {
			busy(at(15, 15, 0), at(15, 16, 0)),
		},
	}
	got := FindFreeSlots(busyByCal, at(15, 0, 0), at(16, 0, 0), 30*time.Minute, DefaultWorkingHours)
	require.Len(t, got, 3)
	assert.Equal(t, busy(at(15, 10, 0), at(15, 12, 0)), busy(got[0].Start, got[0].End))
	assert.Equal(t, busy(at(15, 13, 0), at(15, 15, 0)), busy(got[1].Start, got[1].End))
	assert.Equal(t, busy(at(15, 16, 0), at(15, 17, 0)), busy(got[2].Start, got[2].End))
	assert.Equal(t, 120, got[0].DurationMinutes)
}

func TestFindFreeSlots_OverlapAcrossCalendars(t *testing.T) {
	// Two calendars busy over overlapping ranges: the union blocks the slot.
	busyByCal := map[string][]BusyInterval{
		"a": {busy(at(15, 9, 0), at(15, 12, 0))},
		"b": {busy(at(15, 11, 0), at(15, 14, 0))},
	}
	got := FindFreeSlots(busyByCal, at(15, 0, 0), at(16, 0, 0), 30*time.Minute, DefaultWorkingHours)
	require.Len(t, got, 1)
	assert.Equal(t, at(15, 14, 0), got[0].Start)
	assert.Equal(t, at(15, 17, 0), got[0].End)
}

func TestFindFreeSlots_NoSpace(t *testing.T) {
	busyByCal := map[string][]BusyInterval{
		"primary": {busy(at(15, 8, 0), at(15, 18, 0))},
	}
	got := FindFreeSlots(busyByCal, at(15, 0, 0), at(16, 0, 0), 30*time.Minute, DefaultWorkingHours)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFindFreeSlots_InvalidRange(t *testing.T) {
	got := FindFreeSlots(nil, at(16, 0, 0), at(15, 0, 0), 30*time.Minute, DefaultWorkingHours)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFindFreeSlots_SlotsOrderedAndDisjoint(t *testing.T) {
	busyByCal := map[string][]BusyInterval{
		"primary": {
			busy(at(15, 10, 0), at(15, 11, 0)),
			busy(at(17, 13, 0), at(17, 14, 0)),
		},
	}
	got := FindFreeSlots(busyByCal, at(15, 0, 0), at(18, 0, 0), 0, DefaultWorkingHours)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Start.Before(got[i-1].End), "slot %d overlaps slot %d", i, i-1)
	}
}
