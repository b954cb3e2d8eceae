package repositories

import (
	"ClinicDesk/models"
	"ClinicDesk/store"
)

type CasesheetRepository = Repository[*models.Casesheet]

func NewCasesheetRepository(driver store.Driver) *CasesheetRepository {
	return NewRepository(driver, models.CasesheetsCollection, func() *models.Casesheet { return &models.Casesheet{} })
}

type TreatmentRepository = Repository[*models.Treatment]

func NewTreatmentRepository(driver store.Driver) *TreatmentRepository {
	return NewRepository(driver, models.TreatmentsCollection, func() *models.Treatment { return &models.Treatment{} })
}
