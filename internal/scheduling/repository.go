package scheduling

import (
	"context"
	"sync"
	"time"

	"github.com/slotwise/scheduling-platform/internal/booking"
	"github.com/slotwise/scheduling-platform/internal/schedule"
)

// ScheduleRepository loads and saves weekly templates and location
// overrides. LoadOverride returns nil when the location has no override.
type ScheduleRepository interface {
	LoadTemplate(ctx context.Context, resourceID string) (schedule.WeeklyTemplate, error)
	SaveTemplate(ctx context.Context, resourceID string, t schedule.WeeklyTemplate) error
	LoadOverride(ctx context.Context, resourceID, locationID string) (*schedule.BranchOverride, error)
	SaveOverride(ctx context.Context, resourceID string, o schedule.BranchOverride) error
}

// ReservationRepository reads existing reservations for conflict checks.
// Implementations return reservations overlapping the window with
// terminal statuses already excluded.
type ReservationRepository interface {
	FindOverlapping(ctx context.Context, resourceID string, from, to time.Time) ([]booking.Reservation, error)
}

// InMemoryScheduleRepository is a map-backed ScheduleRepository for tests
// and local development.
type InMemoryScheduleRepository struct {
	mu        sync.RWMutex
	templates map[string]schedule.WeeklyTemplate
	overrides map[string]schedule.BranchOverride
}

// NewInMemoryScheduleRepository creates an empty in-memory repository.
func NewInMemoryScheduleRepository() *InMemoryScheduleRepository {
	return &InMemoryScheduleRepository{
		templates: make(map[string]schedule.WeeklyTemplate),
		overrides: make(map[string]schedule.BranchOverride),
	}
}

// LoadTemplate returns the stored template, or the default pattern when
// the resource has none yet.
func (r *InMemoryScheduleRepository) LoadTemplate(ctx context.Context, resourceID string) (schedule.WeeklyTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.templates[resourceID]; ok {
		return t, nil
	}
	return schedule.DefaultTemplate(), nil
}

// SaveTemplate stores the template.
func (r *InMemoryScheduleRepository) SaveTemplate(ctx context.Context, resourceID string, t schedule.WeeklyTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[resourceID] = t
	return nil
}

// LoadOverride returns the stored override or nil.
func (r *InMemoryScheduleRepository) LoadOverride(ctx context.Context, resourceID, locationID string) (*schedule.BranchOverride, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if o, ok := r.overrides[resourceID+":"+locationID]; ok {
		return &o, nil
	}
	return nil, nil
}

// SaveOverride stores a location override.
func (r *InMemoryScheduleRepository) SaveOverride(ctx context.Context, resourceID string, o schedule.BranchOverride) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[resourceID+":"+o.LocationID] = o
	return nil
}

// InMemoryReservationRepository is a slice-backed ReservationRepository.
type InMemoryReservationRepository struct {
	mu           sync.RWMutex
	reservations []booking.Reservation
}

// NewInMemoryReservationRepository creates a repository seeded with the
// given reservations.
func NewInMemoryReservationRepository(reservations ...booking.Reservation) *InMemoryReservationRepository {
	return &InMemoryReservationRepository{reservations: reservations}
}

// Add appends a reservation.
func (r *InMemoryReservationRepository) Add(res booking.Reservation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reservations = append(r.reservations, res)
}

// FindOverlapping returns reservations for the resource intersecting
// [from, to), terminal statuses excluded.
func (r *InMemoryReservationRepository) FindOverlapping(ctx context.Context, resourceID string, from, to time.Time) ([]booking.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []booking.Reservation
	for _, res := range r.reservations {
		if res.ResourceID != resourceID || res.Status.Terminal() {
			continue
		}
		if res.Start.Before(to) && res.End.After(from) {
			out = append(out, res)
		}
	}
	return out, nil
}
