package schedule

import (
	"fmt"
	"time"
)

// ValidationResult is the report produced by the structural validators.
// Errors block a save; warnings flag suspicious but allowed shapes.
// Validators never panic or return Go errors for recoverable issues.
type ValidationResult struct {
	Valid    bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings,omitempty"`
}

func (r *ValidationResult) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Valid = false
}

func (r *ValidationResult) addWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// merge folds another report into this one.
func (r *ValidationResult) merge(other ValidationResult) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	if !other.Valid {
		r.Valid = false
	}
}

// ValidateTimeBlock checks a single block: parseable "HH:mm" endpoints,
// end after start, and the minimum duration.
func ValidateTimeBlock(b TimeBlock) ValidationResult {
	res := ValidationResult{Valid: true}
	start, err := MinuteOfDay(b.Start)
	if err != nil {
		res.addError("invalid start time %q: must be HH:mm", b.Start)
	}
	end, err := MinuteOfDay(b.End)
	if err != nil {
		res.addError("invalid end time %q: must be HH:mm", b.End)
	}
	if !res.Valid {
		return res
	}
	if end <= start {
		res.addError("block %s-%s: end must be after start", b.Start, b.End)
		return res
	}
	if end-start < MinBlockMinutes {
		res.addError("block %s-%s: shorter than %d minutes", b.Start, b.End, MinBlockMinutes)
	}
	return res
}

// ValidateTemplate checks the whole weekly template: all 7 weekdays
// present, every block structurally valid, and no two blocks on the same
// day overlapping. A working day with zero blocks is a warning, not an
// error.
func ValidateTemplate(t WeeklyTemplate) ValidationResult {
	res := ValidationResult{Valid: true}

	seen := map[Weekday]bool{}
	for _, day := range t.Days {
		if !day.Weekday.Valid() {
			res.addError("unknown weekday %q", day.Weekday)
			continue
		}
		if seen[day.Weekday] {
			res.addError("duplicate entry for %s", day.Weekday)
			continue
		}
		seen[day.Weekday] = true
		res.merge(validateDay(day))
	}
	for _, w := range Weekdays {
		if !seen[w] {
			res.addError("missing entry for %s", w)
		}
	}

	res.merge(ValidateExceptions(t.Exceptions))
	return res
}

func validateDay(day DaySchedule) ValidationResult {
	res := ValidationResult{Valid: true}
	if day.Working && len(day.Blocks) == 0 {
		res.addWarning("%s is a working day with no time blocks", day.Weekday)
	}
	for i, b := range day.Blocks {
		blockRes := ValidateTimeBlock(b)
		for _, msg := range blockRes.Errors {
			res.addError("%s block %d: %s", day.Weekday, i, msg)
		}
	}
	for i := 0; i < len(day.Blocks); i++ {
		for j := i + 1; j < len(day.Blocks); j++ {
			if day.Blocks[i].Overlaps(day.Blocks[j]) {
				res.addError("%s: blocks %d and %d overlap", day.Weekday, i, j)
			}
		}
	}
	return res
}

// ValidateExceptions checks an exception list independently of any
// template: date format, closed type set, and nested block validity for
// special-hours exceptions.
func ValidateExceptions(exceptions []Exception) ValidationResult {
	res := ValidationResult{Valid: true}
	for i, e := range exceptions {
		if _, err := time.Parse(DateLayout, e.Date); err != nil {
			res.addError("exception %d: invalid date %q, want YYYY-MM-DD", i, e.Date)
		}
		if !e.Type.Valid() {
			res.addError("exception %d: unknown type %q", i, e.Type)
		}
		for j, b := range e.Blocks {
			blockRes := ValidateTimeBlock(b)
			for _, msg := range blockRes.Errors {
				res.addError("exception %d block %d: %s", i, j, msg)
			}
		}
		for a := 0; a < len(e.Blocks); a++ {
			for b := a + 1; b < len(e.Blocks); b++ {
				if e.Blocks[a].Overlaps(e.Blocks[b]) {
					res.addError("exception %d: blocks %d and %d overlap", i, a, b)
				}
			}
		}
	}
	return res
}

// ValidateOverride applies the per-day rules to a branch override.
func ValidateOverride(o BranchOverride) ValidationResult {
	res := ValidationResult{Valid: true}
	for w, day := range o.Days {
		if !w.Valid() {
			res.addError("override: unknown weekday %q", w)
			continue
		}
		day.Weekday = w
		res.merge(validateDay(day))
	}
	return res
}
