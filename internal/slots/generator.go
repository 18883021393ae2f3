// Package slots enumerates discrete bookable start/end pairs from resolved
// availability blocks.
package slots

import (
	"time"

	"github.com/slotwise/scheduling-platform/internal/availability"
	"github.com/slotwise/scheduling-platform/internal/booking"
)

// Slot is a candidate booking window of exactly the requested service
// duration, anchored to a date. Start and End are "HH:mm" strings and the
// interval is half-open.
type Slot struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Generate walks each available block stepping by step, emitting every
// candidate [t, t+serviceDuration) that fits inside the block and does not
// overlap an active reservation. Unavailable blocks are skipped entirely.
//
// step and serviceDuration are independent: 15-minute start granularity
// for a 60-minute service is a normal configuration. An empty result is a
// valid outcome (closed day, fully booked).
func Generate(blocks []availability.Block, serviceDuration, step time.Duration, reservations []booking.Reservation, loc *time.Location) []Slot {
	if serviceDuration <= 0 || step <= 0 {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	var out []Slot
	for _, b := range blocks {
		if !b.Available {
			continue
		}
		blockStart := b.StartAt(loc)
		blockEnd := b.EndAt(loc)
		for t := blockStart; !t.Add(serviceDuration).After(blockEnd); t = t.Add(step) {
			end := t.Add(serviceDuration)
			if overlapsActive(t, end, reservations) {
				continue
			}
			out = append(out, Slot{
				Date:  b.Date,
				Start: t.In(loc).Format("15:04"),
				End:   end.In(loc).Format("15:04"),
			})
		}
	}
	return out
}

func overlapsActive(start, end time.Time, reservations []booking.Reservation) bool {
	for _, r := range reservations {
		if r.Status.Terminal() {
			continue
		}
		if r.Overlaps(start, end) {
			return true
		}
	}
	return false
}
