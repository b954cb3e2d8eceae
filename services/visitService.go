package services

import (
	"context"
	"time"

	"ClinicDesk/models"
	"ClinicDesk/repositories"

	"github.com/rs/zerolog"
)

type VisitService struct {
	*ResourceService[*models.Visit]
}

func NewVisitService(repo *repositories.VisitRepository, notifier Notifier, log zerolog.Logger) *VisitService {
	s := &VisitService{ResourceService: NewResourceService(repo, notifier, log)}
	s.prepare = prepareVisit
	return s
}

func prepareVisit(v *models.Visit, created bool, now time.Time) {
	if v.Status == "" {
		v.Status = models.VisitOpen
	}
	if created && v.ArrivedAt.IsZero() {
		v.ArrivedAt = now
	}
	if v.Status == models.VisitClosed && v.FinishedAt == nil {
		finished := now
		v.FinishedAt = &finished
	}
}

// Open starts a visit for a patient who just arrived.
func (s *VisitService) Open(ctx context.Context, patientID models.ID) (*models.Visit, error) {
	return s.CreateRecord(ctx, &models.Visit{PatientID: models.NewRef(patientID), Status: models.VisitOpen})
}
