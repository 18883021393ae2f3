package booking

import (
	"time"

	"github.com/slotwise/scheduling-platform/internal/availability"
)

// Verdict reasons returned by ValidateWindow.
const (
	ReasonOutsideAvailability = "outside availability"
	ReasonException           = "exception"
	ReasonConflict            = "conflict"
)

// Validation is the structured verdict for a proposed booking window. A
// failed check is a normal outcome, not an error: the caller uses the
// reason and conflicting IDs to offer alternatives.
type Validation struct {
	Valid          bool     `json:"isValid"`
	Reason         string   `json:"reason,omitempty"`
	ConflictingIDs []string `json:"conflictingReservationIds,omitempty"`
}

// ValidateWindow checks a candidate [start,end) window against resolved
// availability and existing reservations, short-circuiting on the first
// failed check:
//
//  1. the window must sit fully inside one available block;
//  2. it must not touch a block an exception marked unavailable;
//  3. it must not overlap an active reservation, skipping terminal
//     statuses and the reservation named by excludeID (used when a
//     reschedule is validated against itself).
func ValidateWindow(start, end time.Time, blocks []availability.Block, reservations []Reservation, excludeID string, loc *time.Location) Validation {
	if loc == nil {
		loc = time.UTC
	}

	contained := false
	for _, b := range blocks {
		if !b.Available {
			continue
		}
		if !b.StartAt(loc).After(start) && !b.EndAt(loc).Before(end) {
			contained = true
			break
		}
	}
	if !contained {
		return Validation{Valid: false, Reason: ReasonOutsideAvailability}
	}

	for _, b := range blocks {
		if b.Available || b.Origin != availability.OriginException {
			continue
		}
		if b.StartAt(loc).Before(end) && b.EndAt(loc).After(start) {
			return Validation{Valid: false, Reason: ReasonException}
		}
	}

	var conflicting []string
	for _, r := range reservations {
		if r.Status.Terminal() {
			continue
		}
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		if r.Overlaps(start, end) {
			conflicting = append(conflicting, r.ID)
		}
	}
	if len(conflicting) > 0 {
		return Validation{Valid: false, Reason: ReasonConflict, ConflictingIDs: conflicting}
	}

	return Validation{Valid: true}
}
