// Package scheduling wires the pure availability engine to its
// collaborators: the schedule store and the reservation store. Every call
// loads one consistent snapshot, computes, and discards. The service
// keeps no mutable state and holds no locks.
package scheduling

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/slotwise/scheduling-platform/internal/availability"
	"github.com/slotwise/scheduling-platform/internal/booking"
	"github.com/slotwise/scheduling-platform/internal/observability/metrics"
	"github.com/slotwise/scheduling-platform/internal/schedule"
	"github.com/slotwise/scheduling-platform/internal/slots"
	"github.com/slotwise/scheduling-platform/pkg/logging"
)

var tracer = otel.Tracer("slotwise.internal.scheduling")

// Service answers availability, slot, and booking-window questions for a
// resource. Repositories are injected; there is no package-level state.
type Service struct {
	schedules    ScheduleRepository
	reservations ReservationRepository
	logger       *logging.Logger
	metrics      *metrics.SchedulingMetrics
}

// NewService constructs a scheduling service.
func NewService(schedules ScheduleRepository, reservations ReservationRepository, logger *logging.Logger, m *metrics.SchedulingMetrics) *Service {
	if schedules == nil {
		panic("scheduling: schedule repository required")
	}
	if reservations == nil {
		panic("scheduling: reservation repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{schedules: schedules, reservations: reservations, logger: logger, metrics: m}
}

// Availability bundles the resolved blocks with the exceptions that were
// in force over the queried range.
type Availability struct {
	Blocks     []availability.Block `json:"blocks"`
	Exceptions []schedule.Exception `json:"exceptions"`
}

// ResolveAvailability loads the resource's template (and the location
// override when locationID is set) and resolves open blocks over the
// range. locationID empty means the primary location.
func (s *Service) ResolveAvailability(ctx context.Context, resourceID string, rng availability.DateRange, locationID string) (*Availability, error) {
	ctx, span := tracer.Start(ctx, "scheduling.resolve_availability")
	defer span.End()
	span.SetAttributes(attribute.String("scheduling.resource_id", resourceID))

	start := time.Now()
	tmpl, override, err := s.loadScheduleSnapshot(ctx, resourceID, locationID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	blocks, err := availability.Resolve(tmpl, tmpl.Exceptions, override, rng)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	exceptions := exceptionsInRange(tmpl.Exceptions, rng)
	s.metrics.ObserveResolve(len(blocks), time.Since(start).Seconds())
	s.logger.Debug("availability resolved",
		"resource_id", resourceID,
		"blocks", len(blocks),
		"exceptions", len(exceptions),
	)
	return &Availability{Blocks: blocks, Exceptions: exceptions}, nil
}

// GenerateSlots resolves one day of availability and enumerates bookable
// windows of serviceDuration at step granularity, filtered against the
// resource's active reservations.
func (s *Service) GenerateSlots(ctx context.Context, resourceID string, date time.Time, serviceDuration, step time.Duration, locationID string) ([]slots.Slot, error) {
	ctx, span := tracer.Start(ctx, "scheduling.generate_slots")
	defer span.End()
	span.SetAttributes(
		attribute.String("scheduling.resource_id", resourceID),
		attribute.String("scheduling.date", date.Format(schedule.DateLayout)),
	)

	if serviceDuration <= 0 {
		return nil, fmt.Errorf("scheduling: service duration must be positive")
	}
	if step <= 0 {
		step = serviceDuration
	}

	tmpl, override, err := s.loadScheduleSnapshot(ctx, resourceID, locationID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	rng := availability.DateRange{From: date, To: date}
	blocks, err := availability.Resolve(tmpl, tmpl.Exceptions, override, rng)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	loc := tmpl.Location()
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	reservations, err := s.reservations.FindOverlapping(ctx, resourceID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("scheduling: load reservations: %w", err)
	}

	generated := slots.Generate(blocks, serviceDuration, step, reservations, loc)
	s.metrics.ObserveSlots(len(generated))
	return generated, nil
}

// ValidateBookingWindow renders a verdict for a proposed [start,end)
// window. excludeReservationID lets a reschedule ignore the reservation
// being moved.
func (s *Service) ValidateBookingWindow(ctx context.Context, resourceID string, start, end time.Time, locationID, excludeReservationID string) (booking.Validation, error) {
	ctx, span := tracer.Start(ctx, "scheduling.validate_booking_window")
	defer span.End()
	span.SetAttributes(attribute.String("scheduling.resource_id", resourceID))

	if !end.After(start) {
		return booking.Validation{}, fmt.Errorf("scheduling: window end must be after start")
	}

	tmpl, override, err := s.loadScheduleSnapshot(ctx, resourceID, locationID)
	if err != nil {
		span.RecordError(err)
		return booking.Validation{}, err
	}

	loc := tmpl.Location()
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)
	blocks, err := availability.Resolve(tmpl, tmpl.Exceptions, override, availability.DateRange{From: from, To: to})
	if err != nil {
		span.RecordError(err)
		return booking.Validation{}, err
	}

	reservations, err := s.reservations.FindOverlapping(ctx, resourceID, from, to.AddDate(0, 0, 1))
	if err != nil {
		span.RecordError(err)
		return booking.Validation{}, fmt.Errorf("scheduling: load reservations: %w", err)
	}

	verdict := booking.ValidateWindow(start, end, blocks, reservations, excludeReservationID, loc)
	s.metrics.ObserveValidation(verdict.Valid, verdict.Reason)
	if !verdict.Valid {
		s.logger.Info("booking window rejected",
			"resource_id", resourceID,
			"reason", verdict.Reason,
			"conflicts", len(verdict.ConflictingIDs),
		)
	}
	return verdict, nil
}

// ValidateTemplate is a pure passthrough to the structural validator.
func (s *Service) ValidateTemplate(t schedule.WeeklyTemplate) schedule.ValidationResult {
	return schedule.ValidateTemplate(t)
}

// UpdateDaySchedule replaces one weekday of the resource's template,
// validating the result before saving. The stored value is returned.
func (s *Service) UpdateDaySchedule(ctx context.Context, resourceID string, weekday schedule.Weekday, day schedule.DaySchedule, updatedBy string) (schedule.WeeklyTemplate, schedule.ValidationResult, error) {
	tmpl, err := s.schedules.LoadTemplate(ctx, resourceID)
	if err != nil {
		return schedule.WeeklyTemplate{}, schedule.ValidationResult{}, fmt.Errorf("scheduling: load template: %w", err)
	}
	next, err := tmpl.UpdateDaySchedule(weekday, day, updatedBy)
	if err != nil {
		return schedule.WeeklyTemplate{}, schedule.ValidationResult{}, err
	}
	report := schedule.ValidateTemplate(next)
	if !report.Valid {
		return schedule.WeeklyTemplate{}, report, nil
	}
	if err := s.schedules.SaveTemplate(ctx, resourceID, next); err != nil {
		return schedule.WeeklyTemplate{}, report, fmt.Errorf("scheduling: save template: %w", err)
	}
	s.logger.Info("day schedule updated", "resource_id", resourceID, "weekday", weekday, "version", next.Version)
	return next, report, nil
}

// AddException appends a date-specific exception to the resource's
// template, validating before saving.
func (s *Service) AddException(ctx context.Context, resourceID string, e schedule.Exception, updatedBy string) (schedule.WeeklyTemplate, schedule.ValidationResult, error) {
	tmpl, err := s.schedules.LoadTemplate(ctx, resourceID)
	if err != nil {
		return schedule.WeeklyTemplate{}, schedule.ValidationResult{}, fmt.Errorf("scheduling: load template: %w", err)
	}
	next, err := tmpl.AddException(e, updatedBy)
	if err != nil {
		return schedule.WeeklyTemplate{}, schedule.ValidationResult{}, err
	}
	report := schedule.ValidateTemplate(next)
	if !report.Valid {
		return schedule.WeeklyTemplate{}, report, nil
	}
	if err := s.schedules.SaveTemplate(ctx, resourceID, next); err != nil {
		return schedule.WeeklyTemplate{}, report, fmt.Errorf("scheduling: save template: %w", err)
	}
	s.logger.Info("exception added", "resource_id", resourceID, "date", e.Date, "type", e.Type)
	return next, report, nil
}

// RemoveException deletes an exception by ID.
func (s *Service) RemoveException(ctx context.Context, resourceID, exceptionID, updatedBy string) (schedule.WeeklyTemplate, error) {
	tmpl, err := s.schedules.LoadTemplate(ctx, resourceID)
	if err != nil {
		return schedule.WeeklyTemplate{}, fmt.Errorf("scheduling: load template: %w", err)
	}
	next := tmpl.RemoveException(exceptionID, updatedBy)
	if err := s.schedules.SaveTemplate(ctx, resourceID, next); err != nil {
		return schedule.WeeklyTemplate{}, fmt.Errorf("scheduling: save template: %w", err)
	}
	s.logger.Info("exception removed", "resource_id", resourceID, "exception_id", exceptionID)
	return next, nil
}

// Template returns the resource's current weekly template.
func (s *Service) Template(ctx context.Context, resourceID string) (schedule.WeeklyTemplate, error) {
	tmpl, err := s.schedules.LoadTemplate(ctx, resourceID)
	if err != nil {
		return schedule.WeeklyTemplate{}, fmt.Errorf("scheduling: load template: %w", err)
	}
	return tmpl, nil
}

func (s *Service) loadScheduleSnapshot(ctx context.Context, resourceID, locationID string) (schedule.WeeklyTemplate, *schedule.BranchOverride, error) {
	tmpl, err := s.schedules.LoadTemplate(ctx, resourceID)
	if err != nil {
		return schedule.WeeklyTemplate{}, nil, fmt.Errorf("scheduling: load template: %w", err)
	}
	var override *schedule.BranchOverride
	if locationID != "" {
		override, err = s.schedules.LoadOverride(ctx, resourceID, locationID)
		if err != nil {
			return schedule.WeeklyTemplate{}, nil, fmt.Errorf("scheduling: load override: %w", err)
		}
	}
	return tmpl, override, nil
}

func exceptionsInRange(exceptions []schedule.Exception, rng availability.DateRange) []schedule.Exception {
	from := rng.From.Format(schedule.DateLayout)
	to := rng.To.Format(schedule.DateLayout)
	var out []schedule.Exception
	for _, e := range exceptions {
		if e.Date >= from && e.Date <= to {
			out = append(out, e)
		}
	}
	return out
}
