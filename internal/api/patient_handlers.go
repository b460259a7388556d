package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinicware/dental-scheduler/internal/clinic"
)

func (h *handlers) listPatients(w http.ResponseWriter, r *http.Request) {
	patients := h.patients.ListAll()
	out := make([]PatientResponse, 0, len(patients))
	for _, p := range patients {
		out = append(out, toPatientResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) getPatient(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
		return
	}

	p, err := h.patients.GetByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toPatientResponse(p))
}

// createPatient registers a patient directly, outside the booking flow.
// Phone uniqueness is enforced here; the registry itself does not check.
func (h *handlers) createPatient(w http.ResponseWriter, r *http.Request) {
	var req PatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Phone) == "" {
		writeError(w, http.StatusBadRequest, "missing_patient_details", "patient name and phone are required")
		return
	}

	if _, err := h.patients.GetByPhone(req.Phone); err == nil {
		writeError(w, http.StatusBadRequest, "phone_already_registered", "a patient with this phone number already exists")
		return
	}

	p := h.patients.Create(clinic.Patient{
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		DateOfBirth: req.DateOfBirth,
		DoctorNote:  req.DoctorNote,
	})

	writeJSON(w, http.StatusCreated, toPatientResponse(p))
}

func (h *handlers) updatePatient(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
		return
	}

	var req PatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	existing, err := h.patients.GetByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
		return
	}

	// Field updates never touch the visit history.
	existing.Name = req.Name
	existing.Phone = req.Phone
	existing.Email = req.Email
	existing.Address = req.Address
	existing.DateOfBirth = req.DateOfBirth
	existing.DoctorNote = req.DoctorNote

	if err := h.patients.Update(existing); err != nil {
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toPatientResponse(existing))
}

func (h *handlers) deletePatient(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
		return
	}

	if !h.patients.Delete(id) {
		writeError(w, http.StatusNotFound, "patient_not_found", "patient not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
