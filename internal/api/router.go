package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinicware/dental-scheduler/internal/clinic"
)

type RouterConfig struct {
	Appointments *clinic.AppointmentRegistry
	Patients     *clinic.PatientRegistry
	Redis        *redis.Client // nil when no Redis lock is configured
	Logger       zerolog.Logger
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health endpoints
	health := NewHealthHandler(cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	h := newHandlers(cfg.Appointments, cfg.Patients)

	r.Route("/api", func(r chi.Router) {
		r.Get("/doctors", h.listDoctors)
		r.Route("/doctors/{doctor}", func(r chi.Router) {
			r.Get("/availability", h.doctorAvailability)
			r.Get("/availability/check", h.checkAvailability)
			r.Get("/alternatives", h.alternativeSlots)
			r.Get("/appointments", h.listDoctorAppointments)
		})

		r.Post("/appointments", h.bookAppointment)
		r.Get("/appointments/{id}", h.getAppointment)

		r.Get("/patients", h.listPatients)
		r.Post("/patients", h.createPatient)
		r.Get("/patients/{id}", h.getPatient)
		r.Put("/patients/{id}", h.updatePatient)
		r.Delete("/patients/{id}", h.deletePatient)
	})

	return r
}

type handlers struct {
	appointments *clinic.AppointmentRegistry
	patients     *clinic.PatientRegistry
	roster       map[string]bool
}

func newHandlers(appointments *clinic.AppointmentRegistry, patients *clinic.PatientRegistry) *handlers {
	roster := make(map[string]bool)
	for _, d := range appointments.Doctors() {
		roster[d] = true
	}
	return &handlers{
		appointments: appointments,
		patients:     patients,
		roster:       roster,
	}
}

// knownDoctor is the boundary's roster check; the registries themselves
// accept any doctor name.
func (h *handlers) knownDoctor(name string) bool {
	return h.roster[name]
}
