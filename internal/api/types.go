package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicware/dental-scheduler/internal/clinic"
)

const (
	dateFormat = "2006-01-02"
	timeFormat = "15:04"
)

type BookAppointmentRequest struct {
	Doctor       string `json:"doctor"`
	StartTime    string `json:"start_time"` // RFC3339
	PatientName  string `json:"patient_name"`
	PatientPhone string `json:"patient_phone"`
	Notes        string `json:"notes,omitempty"`
}

type AppointmentResponse struct {
	ID           uuid.UUID  `json:"id"`
	Doctor       string     `json:"doctor"`
	StartTime    time.Time  `json:"start_time"`
	PatientName  string     `json:"patient_name"`
	PatientPhone string     `json:"patient_phone"`
	PatientID    *uuid.UUID `json:"patient_id,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

func toAppointmentResponse(a clinic.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:           a.ID,
		Doctor:       a.Doctor,
		StartTime:    a.StartTime,
		PatientName:  a.PatientName,
		PatientPhone: a.PatientPhone,
		PatientID:    a.PatientID,
		Notes:        a.Notes,
	}
}

type DayAvailabilityResponse struct {
	Date           string   `json:"date"`
	AvailableSlots []string `json:"available_slots"`
}

type SlotResponse struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type AvailabilityCheckResponse struct {
	Doctor    string `json:"doctor"`
	StartTime string `json:"start_time"`
	Available bool   `json:"available"`
}

type PatientRequest struct {
	Name        string     `json:"name"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email,omitempty"`
	Address     string     `json:"address,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	DoctorNote  string     `json:"doctor_note,omitempty"`
}

type PatientResponse struct {
	ID             uuid.UUID   `json:"id"`
	Name           string      `json:"name"`
	Phone          string      `json:"phone"`
	Email          string      `json:"email,omitempty"`
	Address        string      `json:"address,omitempty"`
	DateOfBirth    *time.Time  `json:"date_of_birth,omitempty"`
	DoctorNote     string      `json:"doctor_note,omitempty"`
	AppointmentIDs []uuid.UUID `json:"appointment_ids"`
}

func toPatientResponse(p clinic.Patient) PatientResponse {
	ids := p.AppointmentIDs
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return PatientResponse{
		ID:             p.ID,
		Name:           p.Name,
		Phone:          p.Phone,
		Email:          p.Email,
		Address:        p.Address,
		DateOfBirth:    p.DateOfBirth,
		DoctorNote:     p.DoctorNote,
		AppointmentIDs: ids,
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
