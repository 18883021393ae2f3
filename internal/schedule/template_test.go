package schedule

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestDefaultTemplate(t *testing.T) {
	tmpl := DefaultTemplate()

	if tmpl.Version != "1.0.0" {
		t.Fatalf("expected version 1.0.0, got %s", tmpl.Version)
	}
	if len(tmpl.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(tmpl.Days))
	}

	for _, day := range tmpl.Days {
		switch day.Weekday {
		case Saturday, Sunday:
			if day.Working {
				t.Errorf("%s should not be a working day by default", day.Weekday)
			}
		default:
			if !day.Working {
				t.Errorf("%s should be a working day by default", day.Weekday)
			}
			if len(day.Blocks) != 1 || day.Blocks[0].Start != "09:00" || day.Blocks[0].End != "18:00" {
				t.Errorf("%s: expected single 09:00-18:00 block, got %+v", day.Weekday, day.Blocks)
			}
		}
	}
}

func TestMinuteOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"9:30", 0, true},
		{"0930", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := MinuteOfDay(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("MinuteOfDay(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("MinuteOfDay(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("MinuteOfDay(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTimeBlockOverlaps(t *testing.T) {
	base := TimeBlock{Start: "10:00", End: "11:00"}

	if !base.Overlaps(TimeBlock{Start: "10:30", End: "11:30"}) {
		t.Error("partially intersecting blocks should overlap")
	}
	if !base.Overlaps(TimeBlock{Start: "09:00", End: "12:00"}) {
		t.Error("containing block should overlap")
	}
	if base.Overlaps(TimeBlock{Start: "11:00", End: "12:00"}) {
		t.Error("touching boundary should not overlap")
	}
	if base.Overlaps(TimeBlock{Start: "08:00", End: "10:00"}) {
		t.Error("touching boundary should not overlap")
	}
}

func TestWeekdayOf(t *testing.T) {
	// 2025-12-25 is a Thursday.
	d := time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)
	if got := WeekdayOf(d); got != Thursday {
		t.Fatalf("expected THURSDAY, got %s", got)
	}
}

func TestAddExceptionBumpsVersionAndKeepsOriginal(t *testing.T) {
	tmpl := DefaultTemplate()

	next, err := tmpl.AddException(Exception{
		Date:      "2025-12-25",
		Type:      ExceptionHoliday,
		Available: false,
		Reason:    "Christmas",
	}, "alice")
	if err != nil {
		t.Fatalf("AddException returned error: %v", err)
	}

	if next.Version != "1.0.1" {
		t.Errorf("expected bumped version 1.0.1, got %s", next.Version)
	}
	if next.UpdatedBy != "alice" {
		t.Errorf("expected updatedBy alice, got %s", next.UpdatedBy)
	}
	if len(next.Exceptions) != 1 {
		t.Fatalf("expected 1 exception, got %d", len(next.Exceptions))
	}
	if next.Exceptions[0].ID == "" {
		t.Error("expected exception ID to be generated")
	}

	// Original value must be untouched.
	if len(tmpl.Exceptions) != 0 {
		t.Errorf("original template mutated: %d exceptions", len(tmpl.Exceptions))
	}
	if tmpl.Version != "1.0.0" {
		t.Errorf("original template version changed: %s", tmpl.Version)
	}
}

func TestAddExceptionRejectsBadInput(t *testing.T) {
	tmpl := DefaultTemplate()

	if _, err := tmpl.AddException(Exception{Date: "25.12.2025", Type: ExceptionHoliday}, ""); err == nil {
		t.Error("expected error for malformed date")
	}
	if _, err := tmpl.AddException(Exception{Date: "2025-12-25", Type: "sabbatical"}, ""); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestRemoveException(t *testing.T) {
	tmpl := DefaultTemplate()
	withExc, err := tmpl.AddException(Exception{
		ID:   "exc-1",
		Date: "2025-12-25",
		Type: ExceptionHoliday,
	}, "alice")
	if err != nil {
		t.Fatalf("AddException: %v", err)
	}

	removed := withExc.RemoveException("exc-1", "bob")
	if len(removed.Exceptions) != 0 {
		t.Fatalf("expected exception removed, got %d", len(removed.Exceptions))
	}
	if removed.Version != "1.0.2" {
		t.Errorf("expected version 1.0.2, got %s", removed.Version)
	}
	if removed.UpdatedBy != "bob" {
		t.Errorf("expected updatedBy bob, got %s", removed.UpdatedBy)
	}
}

func TestUpdateDaySchedule(t *testing.T) {
	tmpl := DefaultTemplate()

	next, err := tmpl.UpdateDaySchedule(Saturday, DaySchedule{
		Working: true,
		Blocks:  []TimeBlock{{Start: "10:00", End: "14:00"}},
	}, "alice")
	if err != nil {
		t.Fatalf("UpdateDaySchedule: %v", err)
	}

	day, ok := next.Day(Saturday)
	if !ok {
		t.Fatal("Saturday missing after update")
	}
	if !day.Working || len(day.Blocks) != 1 || day.Blocks[0].Start != "10:00" {
		t.Fatalf("unexpected Saturday schedule: %+v", day)
	}

	// Weekday field is filled in from the path, not the body.
	if day.Weekday != Saturday {
		t.Errorf("expected weekday SATURDAY, got %s", day.Weekday)
	}

	orig, _ := tmpl.Day(Saturday)
	if orig.Working {
		t.Error("original template mutated")
	}
}

func TestTemplateJSONRoundTrip(t *testing.T) {
	tmpl := DefaultTemplate()
	tmpl, err := tmpl.AddException(Exception{
		Date:      "2026-01-01",
		Type:      ExceptionHoliday,
		Available: false,
		Reason:    "New Year",
	}, "alice")
	if err != nil {
		t.Fatalf("AddException: %v", err)
	}

	before := ValidateTemplate(tmpl)

	data, err := json.Marshal(tmpl)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded WeeklyTemplate
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	after := ValidateTemplate(decoded)
	if before.Valid != after.Valid || len(before.Errors) != len(after.Errors) || len(before.Warnings) != len(after.Warnings) {
		t.Fatalf("validation report changed across round trip: before=%+v after=%+v", before, after)
	}

	// The persisted field names are part of the storage contract.
	for _, field := range []string{`"version"`, `"defaultSchedule"`, `"exceptions"`, `"timezone"`, `"lastUpdated"`, `"updatedBy"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("serialized template missing field %s", field)
		}
	}
}
