// Package schedule holds the weekly working-hours template for a bookable
// resource, its date-specific exceptions, and per-location overrides, plus
// the structural validation rules for all of them. The types here are plain
// data decoupled from any storage schema; persistence adapters convert at
// the boundary.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Weekday is one of the 7 fixed uppercase day tokens used in the persisted
// schedule representation.
type Weekday string

const (
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
	Sunday    Weekday = "SUNDAY"
)

// Weekdays lists all days in Monday-first order.
var Weekdays = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// WeekdayOf maps a calendar date to its schedule weekday token.
func WeekdayOf(t time.Time) Weekday {
	switch t.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// Valid reports whether the token is one of the 7 known weekdays.
func (w Weekday) Valid() bool {
	switch w {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	}
	return false
}

// ParseWeekday accepts a weekday token case-insensitively.
func ParseWeekday(s string) (Weekday, error) {
	w := Weekday(strings.ToUpper(strings.TrimSpace(s)))
	if !w.Valid() {
		return "", fmt.Errorf("schedule: unknown weekday %q", s)
	}
	return w, nil
}

// MinBlockMinutes is the shortest time block a schedule may contain.
const MinBlockMinutes = 15

// TimeBlock is a continuous open interval within one day. Start and End are
// minute-resolution "HH:mm" 24-hour strings; End is exclusive.
type TimeBlock struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// MinuteOfDay parses an "HH:mm" time into minutes since midnight.
func MinuteOfDay(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("schedule: invalid time %q, want HH:mm", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("schedule: invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("schedule: invalid minute in %q", s)
	}
	return hour*60 + minute, nil
}

// FormatMinute renders minutes since midnight as "HH:mm".
func FormatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Bounds returns the block's start and end as minutes since midnight.
func (b TimeBlock) Bounds() (start, end int, err error) {
	start, err = MinuteOfDay(b.Start)
	if err != nil {
		return 0, 0, err
	}
	end, err = MinuteOfDay(b.End)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// Overlaps reports whether two blocks intersect. Touching boundaries
// (one block ending exactly where the other starts) do not overlap.
func (b TimeBlock) Overlaps(other TimeBlock) bool {
	s1, e1, err := b.Bounds()
	if err != nil {
		return false
	}
	s2, e2, err := other.Bounds()
	if err != nil {
		return false
	}
	return s1 < e2 && e1 > s2
}

// DaySchedule is one weekday's entry in a template or override.
type DaySchedule struct {
	Weekday Weekday     `json:"weekday"`
	Working bool        `json:"isWorkingDay"`
	Blocks  []TimeBlock `json:"timeBlocks"`
}

// ExceptionType classifies a date-specific deviation from the template.
type ExceptionType string

const (
	ExceptionVacation   ExceptionType = "vacation"
	ExceptionSickLeave  ExceptionType = "sick_leave"
	ExceptionSpecialDay ExceptionType = "special_day"
	ExceptionHoliday    ExceptionType = "holiday"
	ExceptionCustom     ExceptionType = "custom"
)

// Valid reports whether the type is in the closed set.
func (t ExceptionType) Valid() bool {
	switch t {
	case ExceptionVacation, ExceptionSickLeave, ExceptionSpecialDay, ExceptionHoliday, ExceptionCustom:
		return true
	}
	return false
}

// DateLayout is the calendar-date format used by exceptions.
const DateLayout = "2006-01-02"

// Exception is a date-specific deviation: full or partial time off when
// Available is false, extra working blocks when Available is true.
// Blocks narrows the exception to part of the day; when empty the
// exception covers the whole day.
type Exception struct {
	ID        string        `json:"id"`
	Date      string        `json:"date"`
	Type      ExceptionType `json:"type"`
	Available bool          `json:"isAvailable"`
	Reason    string        `json:"reason,omitempty"`
	Blocks    []TimeBlock   `json:"timeBlocks,omitempty"`
}

// WeeklyTemplate is the recurring weekly schedule for one resource. It is
// treated as an immutable value: every mutation helper returns a new
// template with a bumped patch version and refreshed audit fields.
type WeeklyTemplate struct {
	Version     string         `json:"version"`
	Days        [7]DaySchedule `json:"defaultSchedule"`
	Exceptions  []Exception    `json:"exceptions"`
	Timezone    string         `json:"timezone"`
	LastUpdated time.Time      `json:"lastUpdated"`
	UpdatedBy   string         `json:"updatedBy"`
}

// BranchOverride substitutes day schedules when a resource serves from a
// secondary location. Days not present fall back to the regular template.
type BranchOverride struct {
	LocationID string                  `json:"locationId"`
	Days       map[Weekday]DaySchedule `json:"days"`
}

// DefaultTemplate returns the standard Monday-Friday 09:00-18:00 pattern
// used when a resource has no stored schedule yet.
func DefaultTemplate() WeeklyTemplate {
	t := WeeklyTemplate{
		Version:     "1.0.0",
		Timezone:    "UTC",
		LastUpdated: time.Now().UTC(),
		UpdatedBy:   "system",
	}
	for i, w := range Weekdays {
		day := DaySchedule{Weekday: w}
		if w != Saturday && w != Sunday {
			day.Working = true
			day.Blocks = []TimeBlock{{Start: "09:00", End: "18:00"}}
		}
		t.Days[i] = day
	}
	return t
}

// Day returns the entry for the given weekday.
func (t WeeklyTemplate) Day(w Weekday) (DaySchedule, bool) {
	for _, d := range t.Days {
		if d.Weekday == w {
			return d, true
		}
	}
	return DaySchedule{}, false
}

// ExceptionsOn returns the exceptions whose date equals the given day.
func (t WeeklyTemplate) ExceptionsOn(date string) []Exception {
	var out []Exception
	for _, e := range t.Exceptions {
		if e.Date == date {
			out = append(out, e)
		}
	}
	return out
}

// UpdateDaySchedule returns a copy of the template with one weekday
// replaced. The copy carries a bumped patch version and new audit fields.
func (t WeeklyTemplate) UpdateDaySchedule(w Weekday, day DaySchedule, updatedBy string) (WeeklyTemplate, error) {
	if !w.Valid() {
		return WeeklyTemplate{}, fmt.Errorf("schedule: unknown weekday %q", w)
	}
	day.Weekday = w
	next := t.clone()
	for i := range next.Days {
		if next.Days[i].Weekday == w {
			next.Days[i] = day
		}
	}
	next.touch(updatedBy)
	return next, nil
}

// AddException returns a copy of the template with the exception appended.
// An empty ID is filled in; an exception for the same date and ID replaces
// the previous entry.
func (t WeeklyTemplate) AddException(e Exception, updatedBy string) (WeeklyTemplate, error) {
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return WeeklyTemplate{}, fmt.Errorf("schedule: invalid exception date %q", e.Date)
	}
	if !e.Type.Valid() {
		return WeeklyTemplate{}, fmt.Errorf("schedule: unknown exception type %q", e.Type)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	next := t.clone()
	replaced := false
	for i, existing := range next.Exceptions {
		if existing.ID == e.ID {
			next.Exceptions[i] = e
			replaced = true
		}
	}
	if !replaced {
		next.Exceptions = append(next.Exceptions, e)
	}
	next.touch(updatedBy)
	return next, nil
}

// RemoveException returns a copy of the template without the identified
// exception. Removing an unknown ID is a no-op apart from the version bump.
func (t WeeklyTemplate) RemoveException(id string, updatedBy string) WeeklyTemplate {
	next := t.clone()
	kept := next.Exceptions[:0]
	for _, e := range next.Exceptions {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	next.Exceptions = kept
	next.touch(updatedBy)
	return next
}

// Location resolves the template's IANA timezone, falling back to UTC.
func (t WeeklyTemplate) Location() *time.Location {
	if t.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (t WeeklyTemplate) clone() WeeklyTemplate {
	next := t
	next.Exceptions = make([]Exception, len(t.Exceptions))
	copy(next.Exceptions, t.Exceptions)
	for i := range next.Days {
		blocks := make([]TimeBlock, len(t.Days[i].Blocks))
		copy(blocks, t.Days[i].Blocks)
		next.Days[i].Blocks = blocks
	}
	return next
}

func (t *WeeklyTemplate) touch(updatedBy string) {
	t.Version = bumpPatch(t.Version)
	t.LastUpdated = time.Now().UTC()
	if updatedBy != "" {
		t.UpdatedBy = updatedBy
	}
}

func bumpPatch(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return "1.0.1"
	}
	patch, err := strconv.Atoi(parts[2])
	if err != nil {
		return "1.0.1"
	}
	return fmt.Sprintf("%s.%s.%d", parts[0], parts[1], patch+1)
}
