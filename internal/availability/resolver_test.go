package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotwise/scheduling-platform/internal/schedule"
)

func day(dateStr string) DateRange {
	d, _ := time.Parse(schedule.DateLayout, dateStr)
	return DateRange{From: d, To: d}
}

func TestResolveRegularWeek(t *testing.T) {
	tmpl := schedule.DefaultTemplate()

	// 2025-12-22 is a Monday; resolve Monday through Sunday.
	rng, err := NewDateRange("2025-12-22", "2025-12-28")
	require.NoError(t, err)

	blocks, err := Resolve(tmpl, tmpl.Exceptions, nil, rng)
	require.NoError(t, err)

	// Five working days, one block each; weekend yields nothing.
	require.Len(t, blocks, 5)
	for i, b := range blocks {
		assert.True(t, b.Available, "block %d should be available", i)
		assert.Equal(t, OriginRegular, b.Origin)
		assert.Equal(t, "09:00", b.Start)
		assert.Equal(t, "18:00", b.End)
	}
	assert.Equal(t, "2025-12-22", blocks[0].Date)
	assert.Equal(t, "2025-12-26", blocks[4].Date)
}

func TestResolveHolidayExceptionRemovesWorkingDay(t *testing.T) {
	// 2025-12-25 is a regular working Thursday.
	tmpl := schedule.DefaultTemplate()
	tmpl, err := tmpl.AddException(schedule.Exception{
		Date:      "2025-12-25",
		Type:      schedule.ExceptionHoliday,
		Available: false,
		Reason:    "Christmas",
	}, "test")
	require.NoError(t, err)

	rng, err := NewDateRange("2025-12-24", "2025-12-26")
	require.NoError(t, err)

	blocks, err := Resolve(tmpl, tmpl.Exceptions, nil, rng)
	require.NoError(t, err)

	var availableOnHoliday int
	for _, b := range blocks {
		if b.Date == "2025-12-25" {
			assert.False(t, b.Available)
			assert.Equal(t, OriginException, b.Origin)
			assert.Equal(t, "Christmas", b.Reason)
			if b.Available {
				availableOnHoliday++
			}
		}
	}
	assert.Zero(t, availableOnHoliday, "holiday must yield zero available blocks")

	// Neighboring days unaffected.
	for _, b := range blocks {
		if b.Date != "2025-12-25" {
			assert.True(t, b.Available, "block on %s should stay available", b.Date)
		}
	}
}

func TestResolvePartialDayException(t *testing.T) {
	tmpl := schedule.DefaultTemplate()
	// Split Monday into morning and afternoon.
	tmpl, err := tmpl.UpdateDaySchedule(schedule.Monday, schedule.DaySchedule{
		Working: true,
		Blocks: []schedule.TimeBlock{
			{Start: "09:00", End: "13:00"},
			{Start: "14:00", End: "18:00"},
		},
	}, "test")
	require.NoError(t, err)
	// Doctor's appointment eats the morning only.
	tmpl, err = tmpl.AddException(schedule.Exception{
		Date:      "2026-01-05", // a Monday
		Type:      schedule.ExceptionCustom,
		Available: false,
		Reason:    "appointment",
		Blocks:    []schedule.TimeBlock{{Start: "09:00", End: "12:00"}},
	}, "test")
	require.NoError(t, err)

	blocks, err := Resolve(tmpl, tmpl.Exceptions, nil, day("2026-01-05"))
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	assert.False(t, blocks[0].Available, "morning block intersects the exception")
	assert.Equal(t, OriginException, blocks[0].Origin)
	assert.True(t, blocks[1].Available, "afternoon block is untouched")
	assert.Equal(t, OriginRegular, blocks[1].Origin)
}

func TestResolveAvailableExceptionAddsBlocks(t *testing.T) {
	tmpl := schedule.DefaultTemplate()
	// Special Saturday opening.
	tmpl, err := tmpl.AddException(schedule.Exception{
		Date:      "2026-01-10", // a Saturday, normally closed
		Type:      schedule.ExceptionSpecialDay,
		Available: true,
		Reason:    "open house",
		Blocks:    []schedule.TimeBlock{{Start: "10:00", End: "14:00"}},
	}, "test")
	require.NoError(t, err)

	blocks, err := Resolve(tmpl, tmpl.Exceptions, nil, day("2026-01-10"))
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	assert.True(t, blocks[0].Available)
	assert.Equal(t, OriginException, blocks[0].Origin)
	assert.Equal(t, "10:00", blocks[0].Start)
	assert.Equal(t, "open house", blocks[0].Reason)
}

func TestResolveOverrideReplacesRegularDay(t *testing.T) {
	tmpl := schedule.DefaultTemplate()
	override := &schedule.BranchOverride{
		LocationID: "loc-2",
		Days: map[schedule.Weekday]schedule.DaySchedule{
			schedule.Monday: {
				Weekday: schedule.Monday,
				Working: true,
				Blocks:  []schedule.TimeBlock{{Start: "12:00", End: "20:00"}},
			},
			schedule.Tuesday: {
				Weekday: schedule.Tuesday,
				Working: false,
			},
		},
	}

	rng, err := NewDateRange("2026-01-05", "2026-01-07") // Mon-Wed
	require.NoError(t, err)

	blocks, err := Resolve(tmpl, tmpl.Exceptions, override, rng)
	require.NoError(t, err)

	byDate := map[string][]Block{}
	for _, b := range blocks {
		byDate[b.Date] = append(byDate[b.Date], b)
	}

	// Monday uses the override hours.
	require.Len(t, byDate["2026-01-05"], 1)
	assert.Equal(t, OriginOverride, byDate["2026-01-05"][0].Origin)
	assert.Equal(t, "12:00", byDate["2026-01-05"][0].Start)

	// Tuesday is closed at this location despite the regular template.
	assert.Empty(t, byDate["2026-01-06"])

	// Wednesday falls back to the regular schedule.
	require.Len(t, byDate["2026-01-07"], 1)
	assert.Equal(t, OriginRegular, byDate["2026-01-07"][0].Origin)
}

func TestResolveInvalidRange(t *testing.T) {
	tmpl := schedule.DefaultTemplate()
	from, _ := time.Parse(schedule.DateLayout, "2026-01-10")
	to, _ := time.Parse(schedule.DateLayout, "2026-01-05")

	_, err := Resolve(tmpl, nil, nil, DateRange{From: from, To: to})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestResolveIsDeterministic(t *testing.T) {
	tmpl := schedule.DefaultTemplate()
	tmpl, err := tmpl.AddException(schedule.Exception{
		Date: "2026-01-05", Type: schedule.ExceptionSpecialDay, Available: true,
		Blocks: []schedule.TimeBlock{{Start: "07:00", End: "08:30"}},
	}, "test")
	require.NoError(t, err)

	rng, err := NewDateRange("2026-01-05", "2026-01-09")
	require.NoError(t, err)

	first, err := Resolve(tmpl, tmpl.Exceptions, nil, rng)
	require.NoError(t, err)
	second, err := Resolve(tmpl, tmpl.Exceptions, nil, rng)
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical inputs must yield identical block lists")

	// Blocks within a day are ordered by start time.
	assert.Equal(t, "07:00", first[0].Start)
	assert.Equal(t, "09:00", first[1].Start)
}

func TestResolveCompletelyUnknownDayYieldsNothing(t *testing.T) {
	var tmpl schedule.WeeklyTemplate // zero template: no day schedules at all

	blocks, err := Resolve(tmpl, nil, nil, day("2026-01-05"))
	require.NoError(t, err)
	assert.Empty(t, blocks, "a date with no schedule source yields zero blocks, not an error")
}

func TestNewDateRangeRejectsGarbage(t *testing.T) {
	_, err := NewDateRange("2026-01-05", "garbage")
	assert.Error(t, err)
	_, err = NewDateRange("05.01.2026", "2026-01-06")
	assert.Error(t, err)
}

func TestBlockAnchoring(t *testing.T) {
	b := Block{Date: "2026-01-05", Start: "09:30", End: "10:45", Available: true, Origin: OriginRegular}
	start := b.StartAt(time.UTC)
	end := b.EndAt(time.UTC)

	assert.Equal(t, time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 1, 5, 10, 45, 0, 0, time.UTC), end)
}
