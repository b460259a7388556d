package clinic

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatientRegistry_CreateAndGet(t *testing.T) {
	reg := NewPatientRegistry()

	dob := time.Date(1987, time.March, 14, 0, 0, 0, 0, time.UTC)
	created := reg.Create(Patient{
		Name:        "Jan Kowalski",
		Phone:       "555-123-4567",
		Email:       "jan@example.com",
		DateOfBirth: &dob,
	})
	require.NotEqual(t, uuid.Nil, created.ID)

	byID, err := reg.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, byID.Name)

	byPhone, err := reg.GetByPhone("555-123-4567")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byPhone.ID)
}

func TestPatientRegistry_NotFound(t *testing.T) {
	reg := NewPatientRegistry()

	_, err := reg.GetByID(uuid.New())
	assert.ErrorIs(t, err, ErrPatientNotFound)

	_, err = reg.GetByPhone("555-000-0000")
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestPatientRegistry_CreateDoesNotEnforcePhoneUniqueness(t *testing.T) {
	reg := NewPatientRegistry()

	a := reg.Create(Patient{Name: "Jan Kowalski", Phone: "555-123-4567"})
	b := reg.Create(Patient{Name: "Jan K.", Phone: "555-123-4567"})

	// Uniqueness is the caller's contract, not the registry's.
	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, reg.ListAll(), 2)
}

func TestPatientRegistry_Update(t *testing.T) {
	reg := NewPatientRegistry()

	p := reg.Create(Patient{Name: "Jan Kowalski", Phone: "555-123-4567"})

	p.DoctorNote = "sensitive to anesthetic"
	require.NoError(t, reg.Update(p))

	got, err := reg.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "sensitive to anesthetic", got.DoctorNote)
}

func TestPatientRegistry_UpdateMissing(t *testing.T) {
	reg := NewPatientRegistry()

	err := reg.Update(Patient{ID: uuid.New(), Name: "Nobody"})
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestPatientRegistry_Delete(t *testing.T) {
	reg := NewPatientRegistry()

	p := reg.Create(Patient{Name: "Jan Kowalski", Phone: "555-123-4567"})

	assert.True(t, reg.Delete(p.ID))
	assert.False(t, reg.Delete(p.ID))

	_, err := reg.GetByID(p.ID)
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestPatientRegistry_AppendAppointmentRef(t *testing.T) {
	reg := NewPatientRegistry()

	p := reg.Create(Patient{Name: "Jan Kowalski", Phone: "555-123-4567"})

	first := uuid.New()
	second := uuid.New()
	reg.AppendAppointmentRef(p.ID, first)
	reg.AppendAppointmentRef(p.ID, second)

	got, err := reg.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first, second}, got.AppointmentIDs, "insertion order kept")
}

func TestPatientRegistry_AppendAppointmentRefMissingPatient(t *testing.T) {
	reg := NewPatientRegistry()

	// Intentionally a no-op.
	reg.AppendAppointmentRef(uuid.New(), uuid.New())
	assert.Empty(t, reg.ListAll())
}

func TestPatientRegistry_ReturnsCopies(t *testing.T) {
	reg := NewPatientRegistry()

	p := reg.Create(Patient{Name: "Jan Kowalski", Phone: "555-123-4567"})
	reg.AppendAppointmentRef(p.ID, uuid.New())

	got, err := reg.GetByID(p.ID)
	require.NoError(t, err)

	got.AppointmentIDs[0] = uuid.Nil
	got.Name = "tampered"

	fresh, err := reg.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jan Kowalski", fresh.Name)
	assert.NotEqual(t, uuid.Nil, fresh.AppointmentIDs[0])
}
