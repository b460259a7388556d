package clinic

import (
	"time"

	"github.com/google/uuid"
)

// Appointment is one booked hour for a doctor. StartTime is always
// truncated to the start of its hour before storage.
type Appointment struct {
	ID           uuid.UUID
	Doctor       string
	StartTime    time.Time
	PatientName  string
	PatientPhone string
	PatientID    *uuid.UUID
	Notes        string
}

// Patient holds one patient record. Appointments reference a patient by
// id only, and patients hold appointment ids back; resolving either
// direction goes through the owning registry.
type Patient struct {
	ID             uuid.UUID
	Name           string
	Phone          string
	Email          string
	Address        string
	DateOfBirth    *time.Time
	DoctorNote     string
	AppointmentIDs []uuid.UUID
}

// clone copies the patient so callers never share the registry's
// appointment-id slice.
func (p Patient) clone() Patient {
	out := p
	out.AppointmentIDs = append([]uuid.UUID(nil), p.AppointmentIDs...)
	return out
}
