package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/slotwise/scheduling-platform/internal/http/handlers"
	httpmiddleware "github.com/slotwise/scheduling-platform/internal/http/middleware"
	"github.com/slotwise/scheduling-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Scheduling         *handlers.SchedulingHandler
	MetricsHandler     http.Handler
	AdminJWTSecret     string
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", cfg.Scheduling.HealthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		public.Route("/resources/{resourceID}", func(r chi.Router) {
			r.Get("/availability", cfg.Scheduling.GetAvailability)
			r.Get("/slots", cfg.Scheduling.GetSlots)
		})
		public.Post("/bookings/validate", cfg.Scheduling.ValidateWindow)
	})

	// Admin endpoints: schedule editing behind the admin JWT.
	r.Group(func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminJWTSecret))
		admin.Route("/admin", func(r chi.Router) {
			r.Post("/schedules/validate", cfg.Scheduling.ValidateTemplate)
			r.Route("/resources/{resourceID}", func(r chi.Router) {
				r.Get("/schedule", cfg.Scheduling.GetTemplate)
				r.Put("/schedule/days/{weekday}", cfg.Scheduling.UpdateDaySchedule)
				r.Post("/exceptions", cfg.Scheduling.AddException)
				r.Delete("/exceptions/{exceptionID}", cfg.Scheduling.RemoveException)
			})
		})
	})

	return r
}
