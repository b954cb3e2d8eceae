package repositories

import (
	"ClinicDesk/models"
	"ClinicDesk/store"
)

type PatientRepository = Repository[*models.Patient]

func NewPatientRepository(driver store.Driver) *PatientRepository {
	return NewRepository(driver, models.PatientsCollection, func() *models.Patient { return &models.Patient{} })
}

type VisitRepository = Repository[*models.Visit]

func NewVisitRepository(driver store.Driver) *VisitRepository {
	return NewRepository(driver, models.VisitsCollection, func() *models.Visit { return &models.Visit{} })
}
