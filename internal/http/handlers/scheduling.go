// Package handlers exposes the scheduling engine over HTTP. Handlers stay
// thin: decode, call the service, encode. Empty block or slot lists are
// successful responses, never errors.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/slotwise/scheduling-platform/internal/availability"
	"github.com/slotwise/scheduling-platform/internal/http/middleware"
	"github.com/slotwise/scheduling-platform/internal/schedule"
	"github.com/slotwise/scheduling-platform/internal/scheduling"
	"github.com/slotwise/scheduling-platform/internal/slots"
	"github.com/slotwise/scheduling-platform/pkg/logging"
)

// SchedulingHandler serves availability, slot, and booking-window queries
// plus the admin schedule-editing endpoints.
type SchedulingHandler struct {
	svc         *scheduling.Service
	logger      *logging.Logger
	defaultStep time.Duration
}

// NewSchedulingHandler creates a scheduling handler.
func NewSchedulingHandler(svc *scheduling.Service, logger *logging.Logger, defaultStep time.Duration) *SchedulingHandler {
	if svc == nil {
		panic("handlers: scheduling service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if defaultStep <= 0 {
		defaultStep = 15 * time.Minute
	}
	return &SchedulingHandler{svc: svc, logger: logger, defaultStep: defaultStep}
}

// GetAvailability handles GET /resources/{resourceID}/availability.
// Query params: from, to (YYYY-MM-DD, required), location (optional).
func (h *SchedulingHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	resourceID := chi.URLParam(r, "resourceID")
	rng, err := availability.NewDateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.svc.ResolveAvailability(r.Context(), resourceID, rng, r.URL.Query().Get("location"))
	if err != nil {
		if errors.Is(err, availability.ErrInvalidRange) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("resolve availability failed", "error", err, "resource_id", resourceID)
		http.Error(w, "failed to resolve availability", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// SlotsResponse wraps the generated slots.
type SlotsResponse struct {
	Date  string       `json:"date"`
	Slots []slots.Slot `json:"slots"`
	Count int          `json:"count"`
}

// GetSlots handles GET /resources/{resourceID}/slots.
// Query params: date (YYYY-MM-DD, required), duration (minutes, required),
// step (minutes, optional), location (optional).
func (h *SchedulingHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
	resourceID := chi.URLParam(r, "resourceID")
	dateStr := r.URL.Query().Get("date")
	date, err := time.Parse(schedule.DateLayout, dateStr)
	if err != nil {
		http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	durationMin, err := strconv.Atoi(r.URL.Query().Get("duration"))
	if err != nil || durationMin <= 0 {
		http.Error(w, "duration must be a positive number of minutes", http.StatusBadRequest)
		return
	}

	step := h.defaultStep
	if stepStr := r.URL.Query().Get("step"); stepStr != "" {
		stepMin, err := strconv.Atoi(stepStr)
		if err != nil || stepMin <= 0 {
			http.Error(w, "step must be a positive number of minutes", http.StatusBadRequest)
			return
		}
		step = time.Duration(stepMin) * time.Minute
	}

	generated, err := h.svc.GenerateSlots(r.Context(), resourceID, date, time.Duration(durationMin)*time.Minute, step, r.URL.Query().Get("location"))
	if err != nil {
		h.logger.Error("generate slots failed", "error", err, "resource_id", resourceID)
		http.Error(w, "failed to generate slots", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, SlotsResponse{Date: dateStr, Slots: generated, Count: len(generated)})
}

// ValidateWindowRequest is the body for POST /bookings/validate.
type ValidateWindowRequest struct {
	ResourceID           string    `json:"resourceId"`
	Start                time.Time `json:"start"`
	End                  time.Time `json:"end"`
	LocationID           string    `json:"locationId,omitempty"`
	ExcludeReservationID string    `json:"excludeReservationId,omitempty"`
}

// ValidateWindow handles POST /bookings/validate. A rejected window is a
// 200 with isValid=false; the caller offers alternatives.
func (h *SchedulingHandler) ValidateWindow(w http.ResponseWriter, r *http.Request) {
	var req ValidateWindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ResourceID == "" {
		http.Error(w, "resourceId is required", http.StatusBadRequest)
		return
	}
	if !req.End.After(req.Start) {
		http.Error(w, "end must be after start", http.StatusBadRequest)
		return
	}

	verdict, err := h.svc.ValidateBookingWindow(r.Context(), req.ResourceID, req.Start, req.End, req.LocationID, req.ExcludeReservationID)
	if err != nil {
		h.logger.Error("validate booking window failed", "error", err, "resource_id", req.ResourceID)
		http.Error(w, "failed to validate booking window", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, verdict)
}

// GetTemplate handles GET /admin/resources/{resourceID}/schedule.
func (h *SchedulingHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	resourceID := chi.URLParam(r, "resourceID")
	tmpl, err := h.svc.Template(r.Context(), resourceID)
	if err != nil {
		h.logger.Error("load template failed", "error", err, "resource_id", resourceID)
		http.Error(w, "failed to load schedule", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

// ValidateTemplate handles POST /admin/schedules/validate: a dry-run
// structural check that never persists anything.
func (h *SchedulingHandler) ValidateTemplate(w http.ResponseWriter, r *http.Request) {
	var tmpl schedule.WeeklyTemplate
	if err := json.NewDecoder(r.Body).Decode(&tmpl); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.ValidateTemplate(tmpl))
}

// TemplateUpdateResponse couples the stored template with its validation
// report. When the report is invalid nothing was saved.
type TemplateUpdateResponse struct {
	Template   *schedule.WeeklyTemplate  `json:"template,omitempty"`
	Validation schedule.ValidationResult `json:"validation"`
}

// UpdateDaySchedule handles PUT /admin/resources/{resourceID}/schedule/days/{weekday}.
func (h *SchedulingHandler) UpdateDaySchedule(w http.ResponseWriter, r *http.Request) {
	resourceID := chi.URLParam(r, "resourceID")
	weekday, err := schedule.ParseWeekday(chi.URLParam(r, "weekday"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var day schedule.DaySchedule
	if err := json.NewDecoder(r.Body).Decode(&day); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	tmpl, report, err := h.svc.UpdateDaySchedule(r.Context(), resourceID, weekday, day, middleware.AdminSubject(r.Context()))
	if err != nil {
		h.logger.Error("update day schedule failed", "error", err, "resource_id", resourceID)
		http.Error(w, "failed to update schedule", http.StatusInternalServerError)
		return
	}
	if !report.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, TemplateUpdateResponse{Validation: report})
		return
	}
	writeJSON(w, http.StatusOK, TemplateUpdateResponse{Template: &tmpl, Validation: report})
}

// AddException handles POST /admin/resources/{resourceID}/exceptions.
func (h *SchedulingHandler) AddException(w http.ResponseWriter, r *http.Request) {
	resourceID := chi.URLParam(r, "resourceID")

	var exc schedule.Exception
	if err := json.NewDecoder(r.Body).Decode(&exc); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	tmpl, report, err := h.svc.AddException(r.Context(), resourceID, exc, middleware.AdminSubject(r.Context()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !report.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, TemplateUpdateResponse{Validation: report})
		return
	}
	writeJSON(w, http.StatusCreated, TemplateUpdateResponse{Template: &tmpl, Validation: report})
}

// RemoveException handles DELETE /admin/resources/{resourceID}/exceptions/{exceptionID}.
func (h *SchedulingHandler) RemoveException(w http.ResponseWriter, r *http.Request) {
	resourceID := chi.URLParam(r, "resourceID")
	exceptionID := chi.URLParam(r, "exceptionID")

	tmpl, err := h.svc.RemoveException(r.Context(), resourceID, exceptionID, middleware.AdminSubject(r.Context()))
	if err != nil {
		h.logger.Error("remove exception failed", "error", err, "resource_id", resourceID)
		http.Error(w, "failed to remove exception", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

// HealthCheck handles GET /health.
func (h *SchedulingHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
