// Package availability resolves a resource's weekly template, exceptions,
// and optional location override into concrete open time blocks for a date
// range. Resolution is a pure read-then-compute: inputs are immutable
// snapshots and the results are never persisted.
package availability

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/slotwise/scheduling-platform/internal/schedule"
)

// Origin identifies which schedule source produced a block.
type Origin string

const (
	OriginRegular   Origin = "regular"
	OriginOverride  Origin = "override"
	OriginException Origin = "exception"
)

// Block is one contiguous interval on a specific date after merging
// template, override, and exceptions. Start and End are "HH:mm" strings;
// the interval is half-open.
type Block struct {
	Date      string `json:"date"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"isAvailable"`
	Origin    Origin `json:"origin"`
	Reason    string `json:"reason,omitempty"`
}

// StartAt anchors the block's start to an absolute instant in loc.
func (b Block) StartAt(loc *time.Location) time.Time {
	return atMinute(b.Date, b.Start, loc)
}

// EndAt anchors the block's end to an absolute instant in loc.
func (b Block) EndAt(loc *time.Location) time.Time {
	return atMinute(b.Date, b.End, loc)
}

func atMinute(date, hhmm string, loc *time.Location) time.Time {
	d, err := time.ParseInLocation(schedule.DateLayout, date, loc)
	if err != nil {
		return time.Time{}
	}
	m, err := schedule.MinuteOfDay(hhmm)
	if err != nil {
		return time.Time{}
	}
	return d.Add(time.Duration(m) * time.Minute)
}

// DateRange is an inclusive span of calendar dates.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ErrInvalidRange signals a range whose end precedes its start. This is a
// caller precondition violation, not an empty result.
var ErrInvalidRange = errors.New("availability: date range end before start")

// NewDateRange builds a range from YYYY-MM-DD strings.
func NewDateRange(from, to string) (DateRange, error) {
	f, err := time.Parse(schedule.DateLayout, from)
	if err != nil {
		return DateRange{}, fmt.Errorf("availability: invalid from date %q", from)
	}
	t, err := time.Parse(schedule.DateLayout, to)
	if err != nil {
		return DateRange{}, fmt.Errorf("availability: invalid to date %q", to)
	}
	return DateRange{From: f, To: t}, nil
}

// Resolve produces the availability blocks for each day in the range,
// ordered by date then start time.
//
// Per day: the override's day schedule, when present, replaces the regular
// one entirely; a non-working source emits nothing. Exceptions then apply
// at block level: an unavailable exception marks every intersecting block
// unavailable (whole day when the exception carries no blocks), and an
// available exception adds its own blocks as extra open time tagged with
// the exception origin.
func Resolve(tmpl schedule.WeeklyTemplate, exceptions []schedule.Exception, override *schedule.BranchOverride, rng DateRange) ([]Block, error) {
	if rng.To.Before(rng.From) {
		return nil, ErrInvalidRange
	}

	byDate := map[string][]schedule.Exception{}
	for _, e := range exceptions {
		byDate[e.Date] = append(byDate[e.Date], e)
	}

	var blocks []Block
	for d := rng.From; !d.After(rng.To); d = d.AddDate(0, 0, 1) {
		date := d.Format(schedule.DateLayout)
		blocks = append(blocks, resolveDay(tmpl, override, date, WeekdayOf(d), byDate[date])...)
	}
	return blocks, nil
}

// WeekdayOf is re-exported for callers iterating ranges themselves.
func WeekdayOf(t time.Time) schedule.Weekday {
	return schedule.WeekdayOf(t)
}

func resolveDay(tmpl schedule.WeeklyTemplate, override *schedule.BranchOverride, date string, weekday schedule.Weekday, exceptions []schedule.Exception) []Block {
	day, found := tmpl.Day(weekday)
	origin := OriginRegular
	if override != nil {
		if overrideDay, ok := override.Days[weekday]; ok {
			day, found = overrideDay, true
			origin = OriginOverride
		}
	}

	var blocks []Block
	if found && day.Working {
		for _, b := range day.Blocks {
			blocks = append(blocks, Block{
				Date:      date,
				Start:     b.Start,
				End:       b.End,
				Available: true,
				Origin:    origin,
			})
		}
	}

	for _, e := range exceptions {
		if e.Available {
			for _, b := range e.Blocks {
				blocks = append(blocks, Block{
					Date:      date,
					Start:     b.Start,
					End:       b.End,
					Available: true,
					Origin:    OriginException,
					Reason:    e.Reason,
				})
			}
			continue
		}
		for i := range blocks {
			if !blocks[i].Available {
				continue
			}
			if exceptionTouches(e, blocks[i]) {
				blocks[i].Available = false
				blocks[i].Origin = OriginException
				blocks[i].Reason = e.Reason
			}
		}
	}

	sortBlocks(blocks)
	return blocks
}

// exceptionTouches reports whether an unavailable exception's window
// intersects the block. An exception without blocks covers the whole day.
func exceptionTouches(e schedule.Exception, b Block) bool {
	if len(e.Blocks) == 0 {
		return true
	}
	window := schedule.TimeBlock{Start: b.Start, End: b.End}
	for _, eb := range e.Blocks {
		if eb.Overlaps(window) {
			return true
		}
	}
	return false
}

func sortBlocks(blocks []Block) {
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Start < blocks[j].Start
	})
}
