package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ClinicDesk/models"
	"ClinicDesk/repositories"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPatientService(t *testing.T) (*PatientService, *VisitService) {
	t.Helper()
	driver := newDriver(t)
	visits := NewVisitService(repositories.NewVisitRepository(driver), nil, zerolog.Nop())
	return NewPatientService(repositories.NewPatientRepository(driver), visits, nil, zerolog.Nop()), visits
}

func TestRegisterAssignsIDsAndCodes(t *testing.T) {
	ctx := context.Background()
	patients, _ := newPatientService(t)
	year := time.Now().Year()

	body := []byte(`{"name":"Meera","gender":"Female","phoneNumber":"98450"}`)
	first, envelope, err := patients.Register(ctx, body)
	require.NoError(t, err)
	assert.False(t, envelope)
	second, _, err := patients.Register(ctx, body)
	require.NoError(t, err)

	assert.Equal(t, models.ID(1), first.Patient.ID)
	assert.Equal(t, models.ID(2), second.Patient.ID)
	assert.Equal(t, fmt.Sprintf("PAT-%d-0001", year), first.Patient.Code)
	assert.Equal(t, fmt.Sprintf("PAT-%d-0002", year), second.Patient.Code)
	assert.Equal(t, models.PatientActive, first.Patient.Status)
	assert.Equal(t, []string{}, first.Patient.PreviousConditions)
}

func TestRegisterWithVisit(t *testing.T) {
	ctx := context.Background()
	patients, visits := newPatientService(t)

	reg, envelope, err := patients.Register(ctx, []byte(`{"name":"Ravi","autoCreateVisit":true}`))
	require.NoError(t, err)
	assert.True(t, envelope)
	require.NotNil(t, reg.Visit)
	assert.True(t, reg.Visit.PatientID.Is(reg.Patient.ID))
	assert.Equal(t, models.VisitOpen, reg.Visit.Status)

	listed, err := visits.List(ctx, map[string][]string{"patientId": {reg.Patient.ID.String()}})
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	reg, envelope, err = patients.Register(ctx, []byte(`{"name":"Ravi","autoCreateVisit":false}`))
	require.NoError(t, err)
	assert.True(t, envelope)
	assert.Nil(t, reg.Visit)
}

func TestRegisterRequiresName(t *testing.T) {
	patients, _ := newPatientService(t)
	_, _, err := patients.Register(context.Background(), []byte(`{"gender":"Male"}`))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestClosingVisitStampsFinish(t *testing.T) {
	ctx := context.Background()
	_, visits := newPatientService(t)

	v, err := visits.Open(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, v.FinishedAt)

	closed, err := visits.Update(ctx, v.ID, []byte(`{"status":"closed"}`))
	require.NoError(t, err)
	require.NotNil(t, closed.FinishedAt)
	assert.Equal(t, v.ArrivedAt.Unix(), closed.ArrivedAt.Unix())
}

func TestTreatmentQueries(t *testing.T) {
	ctx := context.Background()
	driver := newDriver(t)
	treatments := NewTreatmentService(repositories.NewTreatmentRepository(driver), nil, zerolog.Nop())
	casesheets := NewCasesheetService(repositories.NewCasesheetRepository(driver), nil, zerolog.Nop())

	cs, err := casesheets.Create(ctx, []byte(`{"patientId":5}`))
	require.NoError(t, err)

	for _, body := range []string{
		`{"treatmentName":"Scaling","patientId":5,"casesheetId":1,"cost":"150.50"}`,
		`{"treatmentName":"Filling","patientId":5}`,
		`{"treatmentName":"Crown","patientId":6,"casesheetId":1}`,
	} {
		_, err := treatments.Create(ctx, []byte(body))
		require.NoError(t, err)
	}

	byPatient, err := treatments.ForPatient(ctx, 5)
	require.NoError(t, err)
	require.Len(t, byPatient, 2)
	assert.Equal(t, models.Amount(150.5), byPatient[0].Cost)
	assert.Equal(t, models.TreatmentPlanned, byPatient[0].Status)

	byCasesheet, err := treatments.ForCasesheet(ctx, cs.ID)
	require.NoError(t, err)
	assert.Len(t, byCasesheet, 2)

	_, err = casesheets.ForPatient(ctx, 6, cs.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
