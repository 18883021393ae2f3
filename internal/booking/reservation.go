// Package booking holds the reservation model consumed read-only by the
// scheduling engine and the conflict checker that renders a verdict for a
// proposed booking window.
package booking

import "time"

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// Terminal reports whether the status removes the reservation from
// conflict checks.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusNoShow
}

// Reservation is an existing booking against a resource. The engine never
// writes reservations; it only reads them for overlap detection.
type Reservation struct {
	ID         string    `json:"id"`
	ResourceID string    `json:"resourceId"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Status     Status    `json:"status"`
}

// Overlaps applies the half-open interval predicate: [rs,re) conflicts
// with [start,end) iff rs < end && re > start. Touching boundaries do not
// conflict.
func (r Reservation) Overlaps(start, end time.Time) bool {
	return r.Start.Before(end) && r.End.After(start)
}
