package clinic

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinicware/dental-scheduler/internal/lock"
)

var (
	ErrSlotUnavailable     = errors.New("this time slot is not available")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// AppointmentRegistry owns all booked appointments and answers
// availability queries. Booking serializes its two critical sections
// (the slot conflict check and the per-phone patient lookup-or-create)
// through the configured Locker, and the final insert is a
// compare-and-insert on the slot index, so two concurrent bookings can
// never both claim the same (doctor, hour).
type AppointmentRegistry struct {
	mu           sync.RWMutex
	appointments map[uuid.UUID]Appointment
	slots        map[slotKey]uuid.UUID

	doctors  []string
	patients *PatientRegistry
	locker   lock.Locker

	now func() time.Time
}

// NewAppointmentRegistry builds a registry over the given doctor roster.
// patients may be nil, in which case bookings are stored without patient
// linkage. locker may be nil, in which case an in-process keyed mutex is
// used.
func NewAppointmentRegistry(doctors []string, patients *PatientRegistry, locker lock.Locker) *AppointmentRegistry {
	if locker == nil {
		locker = lock.NewKeyedMutex()
	}
	return &AppointmentRegistry{
		appointments: make(map[uuid.UUID]Appointment),
		slots:        make(map[slotKey]uuid.UUID),
		doctors:      append([]string(nil), doctors...),
		patients:     patients,
		locker:       locker,
		now:          time.Now,
	}
}

// Doctors returns the fixed roster.
func (r *AppointmentRegistry) Doctors() []string {
	return append([]string(nil), r.doctors...)
}

// ListAll returns a snapshot of every appointment, in no particular order.
func (r *AppointmentRegistry) ListAll() []Appointment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Appointment, 0, len(r.appointments))
	for _, a := range r.appointments {
		out = append(out, a)
	}
	return out
}

// ListByDoctor returns the appointments booked with the given doctor.
func (r *AppointmentRegistry) ListByDoctor(doctor string) []Appointment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Appointment
	for _, a := range r.appointments {
		if a.Doctor == doctor {
			out = append(out, a)
		}
	}
	return out
}

// GetByID returns the appointment stored under id.
func (r *AppointmentRegistry) GetByID(id uuid.UUID) (Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.appointments[id]
	if !ok {
		return Appointment{}, ErrAppointmentNotFound
	}
	return a, nil
}

// IsSlotAvailable reports whether the doctor can be booked at t. The
// timestamp is truncated to its hour first; weekends and hours outside
// business hours are never available.
func (r *AppointmentRegistry) IsSlotAvailable(doctor string, t time.Time) bool {
	t = truncateToHour(t)
	if isWeekend(t) || !withinOpenHours(t) {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	_, taken := r.slots[keyForSlot(doctor, t)]
	return !taken
}

// Book normalizes the appointment's timestamp, claims the slot and, when
// a patient registry is configured, links the appointment to the patient
// matching its phone number, creating that patient if the number was
// never seen before. The returned appointment carries the normalized
// timestamp and the generated id; callers must not assume the timestamp
// they submitted is preserved verbatim.
func (r *AppointmentRegistry) Book(ctx context.Context, appt Appointment) (Appointment, error) {
	appt.StartTime = truncateToHour(appt.StartTime)
	appt.ID = uuid.New()

	var booked Appointment
	err := r.locker.WithLock(ctx, slotLockKey(appt.Doctor, appt.StartTime), func(ctx context.Context) error {
		// The slot is claimed before the patient linkage runs: a
		// booking that loses the slot must not have touched the
		// patient registry, and one that fails to link gives the
		// claim back.
		if err := r.claimSlot(appt); err != nil {
			return err
		}

		if r.patients != nil {
			if err := r.linkPatient(ctx, &appt); err != nil {
				r.releaseSlot(appt)
				return err
			}
		}

		r.store(appt)
		booked = appt
		return nil
	})
	if err != nil {
		return Appointment{}, err
	}
	return booked, nil
}

// linkPatient resolves the patient owning the appointment's phone
// number, creating one on first contact. Serialized per phone so two
// concurrent first bookings from one number cannot create duplicate
// patients.
func (r *AppointmentRegistry) linkPatient(ctx context.Context, appt *Appointment) error {
	return r.locker.WithLock(ctx, phoneLockKey(appt.PatientPhone), func(context.Context) error {
		p, err := r.patients.GetByPhone(appt.PatientPhone)
		switch {
		case errors.Is(err, ErrPatientNotFound):
			p = r.patients.Create(Patient{
				Name:  appt.PatientName,
				Phone: appt.PatientPhone,
			})
		case err != nil:
			return fmt.Errorf("lookup patient by phone: %w", err)
		}

		id := p.ID
		appt.PatientID = &id
		r.patients.AppendAppointmentRef(p.ID, appt.ID)
		return nil
	})
}

// claimSlot reserves the slot index entry for appt. The compare-and-
// insert under the write lock is what makes double-booking impossible
// even when two bookings race past the external lock.
func (r *AppointmentRegistry) claimSlot(appt Appointment) error {
	if isWeekend(appt.StartTime) || !withinOpenHours(appt.StartTime) {
		return ErrSlotUnavailable
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := keyForSlot(appt.Doctor, appt.StartTime)
	if _, taken := r.slots[key]; taken {
		return ErrSlotUnavailable
	}
	r.slots[key] = appt.ID
	return nil
}

// releaseSlot gives a claimed slot back when the booking could not be
// completed. Only the claim holder's own entry is removed.
func (r *AppointmentRegistry) releaseSlot(appt Appointment) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := keyForSlot(appt.Doctor, appt.StartTime)
	if r.slots[key] == appt.ID {
		delete(r.slots, key)
	}
}

func (r *AppointmentRegistry) store(appt Appointment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appointments[appt.ID] = appt
}

// AvailableSlotsForDay returns the free hourly slots for the doctor on
// the given date, ascending. Weekends have none.
func (r *AppointmentRegistry) AvailableSlotsForDay(doctor string, date time.Time) []time.Time {
	if isWeekend(date) {
		return nil
	}

	var slots []time.Time
	for hour := OpenHour; hour < CloseHour; hour++ {
		t := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, date.Location())
		if r.IsSlotAvailable(doctor, t) {
			slots = append(slots, t)
		}
	}
	return slots
}

// FirstAvailableDays returns up to n upcoming weekdays, starting today,
// on which the doctor has at least one free slot. It scans at most
// horizonDays days forward and may return fewer than n when the horizon
// runs out. Non-positive arguments fall back to the package defaults.
func (r *AppointmentRegistry) FirstAvailableDays(doctor string, n, horizonDays int) []time.Time {
	if n <= 0 {
		n = DefaultSearchDays
	}
	if horizonDays <= 0 {
		horizonDays = DefaultSearchHorizon
	}

	var days []time.Time
	day := startOfDay(r.now())
	for i := 0; i < horizonDays && len(days) < n; i++ {
		if !isWeekend(day) && len(r.AvailableSlotsForDay(doctor, day)) > 0 {
			days = append(days, day)
		}
		day = day.AddDate(0, 0, 1)
	}
	return days
}

// AlternativeSlots returns every free slot within windowDays days on
// either side of t's date, ascending by date then hour.
func (r *AppointmentRegistry) AlternativeSlots(doctor string, t time.Time, windowDays int) []time.Time {
	if windowDays <= 0 {
		windowDays = DefaultAlternativeWindow
	}

	day := startOfDay(t).AddDate(0, 0, -windowDays)
	end := startOfDay(t).AddDate(0, 0, windowDays)

	var slots []time.Time
	for !day.After(end) {
		slots = append(slots, r.AvailableSlotsForDay(doctor, day)...)
		day = day.AddDate(0, 0, 1)
	}
	return slots
}

func slotLockKey(doctor string, t time.Time) string {
	return fmt.Sprintf("slot:%s:%s", doctor, t.Format("2006-01-02T15"))
}

func phoneLockKey(phone string) string {
	return "phone:" + phone
}
