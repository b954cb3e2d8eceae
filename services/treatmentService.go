package services

import (
	"context"
	"time"

	"ClinicDesk/models"
	"ClinicDesk/repositories"

	"github.com/rs/zerolog"
)

type CasesheetService struct {
	*ResourceService[*models.Casesheet]
}

func NewCasesheetService(repo *repositories.CasesheetRepository, notifier Notifier, log zerolog.Logger) *CasesheetService {
	s := &CasesheetService{ResourceService: NewResourceService(repo, notifier, log)}
	s.prepare = func(c *models.Casesheet, created bool, now time.Time) {
		if c.Status == "" {
			c.Status = models.CasesheetOpen
		}
		if created && c.Date == "" {
			c.Date = now.Format("2006-01-02")
		}
	}
	return s
}

// ForPatient returns the casesheet only when it belongs to patientID.
func (s *CasesheetService) ForPatient(ctx context.Context, patientID, casesheetID models.ID) (*models.Casesheet, error) {
	cs, err := s.Get(ctx, casesheetID)
	if err != nil {
		return nil, err
	}
	if !cs.PatientID.Is(patientID) {
		return nil, ErrNotFound
	}
	return cs, nil
}

type TreatmentService struct {
	*ResourceService[*models.Treatment]
}

func NewTreatmentService(repo *repositories.TreatmentRepository, notifier Notifier, log zerolog.Logger) *TreatmentService {
	s := &TreatmentService{ResourceService: NewResourceService(repo, notifier, log)}
	s.prepare = func(t *models.Treatment, created bool, now time.Time) {
		if t.Status == "" {
			t.Status = models.TreatmentPlanned
		}
	}
	s.aliases = map[string]string{"date": "performedDate"}
	return s
}

// ForCasesheet lists the treatments recorded under a casesheet.
func (s *TreatmentService) ForCasesheet(ctx context.Context, casesheetID models.ID) ([]*models.Treatment, error) {
	return s.ListWhere(ctx, repositories.Filter{"casesheetId": casesheetID.String()})
}

// ForPatient lists every treatment of a patient.
func (s *TreatmentService) ForPatient(ctx context.Context, patientID models.ID) ([]*models.Treatment, error) {
	return s.ListWhere(ctx, repositories.Filter{"patientId": patientID.String()})
}
