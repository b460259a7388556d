package clinic

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrPatientNotFound = errors.New("patient not found")

// PatientRegistry owns all patient records. It does not enforce phone
// uniqueness; that is the booking path's and the HTTP boundary's job.
type PatientRegistry struct {
	mu       sync.RWMutex
	patients map[uuid.UUID]Patient
}

func NewPatientRegistry() *PatientRegistry {
	return &PatientRegistry{
		patients: make(map[uuid.UUID]Patient),
	}
}

// ListAll returns a snapshot of every patient, in no particular order.
func (r *PatientRegistry) ListAll() []Patient {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Patient, 0, len(r.patients))
	for _, p := range r.patients {
		out = append(out, p.clone())
	}
	return out
}

// GetByID returns the patient stored under id.
func (r *PatientRegistry) GetByID(id uuid.UUID) (Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients[id]
	if !ok {
		return Patient{}, ErrPatientNotFound
	}
	return p.clone(), nil
}

// GetByPhone returns the first patient whose phone matches exactly.
// Should duplicates exist there is no defined tie-break.
func (r *PatientRegistry) GetByPhone(phone string) (Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.patients {
		if p.Phone == phone {
			return p.clone(), nil
		}
	}
	return Patient{}, ErrPatientNotFound
}

// Create stores the patient under a fresh id and returns the stored
// record, id included.
func (r *PatientRegistry) Create(p Patient) Patient {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.ID = uuid.New()
	r.patients[p.ID] = p.clone()
	return p
}

// Update replaces the stored patient carrying the same id.
func (r *PatientRegistry) Update(p Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patients[p.ID]; !ok {
		return ErrPatientNotFound
	}
	r.patients[p.ID] = p.clone()
	return nil
}

// Delete removes the patient and reports whether it existed.
func (r *PatientRegistry) Delete(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patients[id]; !ok {
		return false
	}
	delete(r.patients, id)
	return true
}

// AppendAppointmentRef records appointmentID on the patient's visit
// history. Unknown patient ids are a silent no-op; the booking path has
// already validated existence.
func (r *PatientRegistry) AppendAppointmentRef(patientID, appointmentID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.patients[patientID]
	if !ok {
		return
	}
	p.AppointmentIDs = append(p.AppointmentIDs, appointmentID)
	r.patients[patientID] = p
}
