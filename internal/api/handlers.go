package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinicware/dental-scheduler/internal/clinic"
	"github.com/clinicware/dental-scheduler/internal/lock"
)

// doctorParam extracts the doctor path parameter. Roster names contain
// spaces, so the segment arrives percent-encoded.
func doctorParam(r *http.Request) string {
	raw := chi.URLParam(r, "doctor")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func (h *handlers) listDoctors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.appointments.Doctors())
}

// doctorAvailability returns the first upcoming days on which the doctor
// has free slots, each with its open hours.
func (h *handlers) doctorAvailability(w http.ResponseWriter, r *http.Request) {
	doctor := doctorParam(r)
	if !h.knownDoctor(doctor) {
		writeError(w, http.StatusNotFound, "doctor_not_found", "doctor "+doctor+" not found")
		return
	}

	days := h.appointments.FirstAvailableDays(doctor, clinic.DefaultSearchDays, clinic.DefaultSearchHorizon)

	out := make([]DayAvailabilityResponse, 0, len(days))
	for _, day := range days {
		slots := h.appointments.AvailableSlotsForDay(doctor, day)
		times := make([]string, 0, len(slots))
		for _, s := range slots {
			times = append(times, s.Format(timeFormat))
		}
		out = append(out, DayAvailabilityResponse{
			Date:           day.Format(dateFormat),
			AvailableSlots: times,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) checkAvailability(w http.ResponseWriter, r *http.Request) {
	doctor := doctorParam(r)
	if !h.knownDoctor(doctor) {
		writeError(w, http.StatusNotFound, "doctor_not_found", "doctor "+doctor+" not found")
		return
	}

	at, err := time.Parse(time.RFC3339, r.URL.Query().Get("at"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_time", "at must be an RFC3339 timestamp")
		return
	}

	writeJSON(w, http.StatusOK, AvailabilityCheckResponse{
		Doctor:    doctor,
		StartTime: at.Format(time.RFC3339),
		Available: h.appointments.IsSlotAvailable(doctor, at),
	})
}

func (h *handlers) alternativeSlots(w http.ResponseWriter, r *http.Request) {
	doctor := doctorParam(r)
	if !h.knownDoctor(doctor) {
		writeError(w, http.StatusNotFound, "doctor_not_found", "doctor "+doctor+" not found")
		return
	}

	at, err := time.Parse(time.RFC3339, r.URL.Query().Get("at"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_time", "at must be an RFC3339 timestamp")
		return
	}

	window := clinic.DefaultAlternativeWindow
	if raw := r.URL.Query().Get("window"); raw != "" {
		window, err = strconv.Atoi(raw)
		if err != nil || window <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_window", "window must be a positive integer")
			return
		}
	}

	slots := h.appointments.AlternativeSlots(doctor, at, window)
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotResponse{
			Date: s.Format(dateFormat),
			Time: s.Format(timeFormat),
		})
	}

	writeJSON(w, http.StatusOK, out)
}

// listDoctorAppointments returns the doctor's appointments on one date,
// ascending by start time.
func (h *handlers) listDoctorAppointments(w http.ResponseWriter, r *http.Request) {
	doctor := doctorParam(r)
	if !h.knownDoctor(doctor) {
		writeError(w, http.StatusNotFound, "doctor_not_found", "doctor "+doctor+" not found")
		return
	}

	date, err := time.Parse(dateFormat, r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "date must be formatted as "+dateFormat)
		return
	}

	var out []AppointmentResponse
	for _, a := range h.appointments.ListByDoctor(doctor) {
		y, m, d := a.StartTime.Date()
		if y == date.Year() && m == date.Month() && d == date.Day() {
			out = append(out, toAppointmentResponse(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	if out == nil {
		out = []AppointmentResponse{}
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) bookAppointment(w http.ResponseWriter, r *http.Request) {
	var req BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	if !h.knownDoctor(req.Doctor) {
		writeError(w, http.StatusBadRequest, "doctor_not_found", "doctor "+req.Doctor+" not found")
		return
	}
	if strings.TrimSpace(req.PatientName) == "" || strings.TrimSpace(req.PatientPhone) == "" {
		writeError(w, http.StatusBadRequest, "missing_patient_details", "patient name and phone are required")
		return
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_time", "start_time must be an RFC3339 timestamp")
		return
	}

	appt, err := h.appointments.Book(r.Context(), clinic.Appointment{
		Doctor:       req.Doctor,
		StartTime:    startTime,
		PatientName:  req.PatientName,
		PatientPhone: req.PatientPhone,
		Notes:        req.Notes,
	})
	if err != nil {
		handleBookError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
}

func handleBookError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, clinic.ErrSlotUnavailable):
		writeError(w, http.StatusBadRequest, "slot_unavailable", err.Error())
	case errors.Is(err, lock.ErrNotAcquired):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func (h *handlers) getAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
		return
	}

	appt, err := h.appointments.GetByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
}
