package services

import (
	"context"
	"fmt"
	"time"

	"ClinicDesk/models"
	"ClinicDesk/repositories"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

type PatientService struct {
	*ResourceService[*models.Patient]
	visits *VisitService
}

func NewPatientService(repo *repositories.PatientRepository, visits *VisitService, notifier Notifier, log zerolog.Logger) *PatientService {
	s := &PatientService{ResourceService: NewResourceService(repo, notifier, log), visits: visits}
	s.prepare = preparePatient
	return s
}

func preparePatient(p *models.Patient, created bool, now time.Time) {
	if p.Status == "" {
		p.Status = models.PatientActive
	}
	if p.PreviousConditions == nil {
		p.PreviousConditions = []string{}
	}
	if created && p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
}

// Registration is the result of creating a patient with an optional visit.
type Registration struct {
	Patient *models.Patient `json:"patient"`
	Visit   *models.Visit   `json:"visit"`
}

// Register creates a patient and, when the body carries autoCreateVisit,
// opens a visit for it. Envelope reports whether the caller asked about a
// visit at all, in which case the answer is the {patient, visit} pair.
func (s *PatientService) Register(ctx context.Context, body []byte) (reg Registration, envelope bool, err error) {
	flag := gjson.GetBytes(body, "autoCreateVisit")
	envelope = flag.Exists()

	patient, err := s.Create(ctx, body)
	if err != nil {
		return Registration{}, envelope, err
	}
	reg.Patient = patient
	if !flag.Bool() {
		return reg, envelope, nil
	}

	visit, err := s.visits.Open(ctx, patient.ID)
	if err != nil {
		s.log.Error().Err(err).Int64("patient_id", int64(patient.ID)).Msg("patient created without its visit")
		return reg, envelope, fmt.Errorf("patient %d created but visit failed: %w", patient.ID, err)
	}
	reg.Visit = visit
	return reg, envelope, nil
}
