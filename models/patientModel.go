package models

import (
	"encoding/json"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Status values.
const (
	PatientActive   = "Active"
	PatientInactive = "Inactive"

	VisitOpen   = "open"
	VisitClosed = "closed"

	CasesheetOpen   = "Open"
	CasesheetClosed = "Closed"

	TreatmentPlanned    = "Planned"
	TreatmentInProgress = "In Progress"
	TreatmentCompleted  = "Completed"
	TreatmentCancelled  = "Cancelled"
)

var errRefRequired = errors.New("cannot be blank")

// requiredRef fails on an absent reference.
var requiredRef = validation.By(func(value interface{}) error {
	if r, ok := value.(Ref); ok && !r.Valid {
		return errRefRequired
	}
	return nil
})

// Patient model
type Patient struct {
	Base
	Sequenced
	Name               string    `json:"name"`
	DateOfBirth        string    `json:"dateOfBirth"`
	Gender             string    `json:"gender"`
	PhoneNumber        string    `json:"phoneNumber"`
	Status             string    `json:"status"`
	PreviousConditions []string  `json:"previousConditions"`
	CreatedAt          time.Time `json:"createdAt"`
}

func (*Patient) CodePrefix() string { return "PAT" }

func (p *Patient) FilterValue(field string) (string, bool) {
	switch field {
	case "status":
		return p.Status, true
	case "gender":
		return p.Gender, true
	}
	return "", false
}

func (p *Patient) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Gender, validation.In("Male", "Female", "Other")),
		validation.Field(&p.Status, validation.In(PatientActive, PatientInactive)),
	)
}

// Visit model
type Visit struct {
	Base
	PatientID  Ref        `json:"patientId"`
	ArrivedAt  time.Time  `json:"arrivedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Status     string     `json:"status"`
}

func (v *Visit) FilterValue(field string) (string, bool) {
	switch field {
	case "patientId":
		return v.PatientID.String(), true
	case "status":
		return v.Status, true
	}
	return "", false
}

func (v *Visit) Validate() error {
	return validation.ValidateStruct(v,
		validation.Field(&v.PatientID, requiredRef),
		validation.Field(&v.Status, validation.In(VisitOpen, VisitClosed)),
	)
}

// Casesheet model
type Casesheet struct {
	Base
	Sequenced
	PatientID      Ref    `json:"patientId"`
	DoctorID       Ref    `json:"doctorId"`
	VisitID        Ref    `json:"visitId"`
	Date           string `json:"date"`
	ChiefComplaint string `json:"chiefComplaint"`
	Diagnosis      string `json:"diagnosis"`
	OnDiagnosis    string `json:"onDiagnosis,omitempty"`
	TreatmentPlan  string `json:"treatmentPlan"`
	Status         string `json:"status"`
}

func (*Casesheet) CodePrefix() string { return "CS" }

func (c *Casesheet) FilterValue(field string) (string, bool) {
	switch field {
	case "patientId":
		return c.PatientID.String(), true
	case "doctorId":
		return c.DoctorID.String(), true
	case "visitId":
		return c.VisitID.String(), true
	case "status":
		return c.Status, true
	}
	return "", false
}

func (c *Casesheet) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.PatientID, requiredRef),
		validation.Field(&c.Status, validation.In(CasesheetOpen, CasesheetClosed)),
	)
}

// Treatment model
type Treatment struct {
	Base
	Sequenced
	PatientID     Ref    `json:"patientId"`
	CasesheetID   Ref    `json:"casesheetId"`
	VisitID       Ref    `json:"visitId"`
	TreatmentName string `json:"treatmentName"`
	Description   string `json:"description,omitempty"`
	ToothNumber   string `json:"toothNumber,omitempty"`
	PerformedDate string `json:"performedDate,omitempty"`
	PerformedByID Ref    `json:"performedById"`
	Cost          Amount `json:"cost"`
	Status        string `json:"status"`
}

func (*Treatment) CodePrefix() string { return "TRT" }

// MarshalJSON also writes PerformedDate as "date", the name the treatment
// form reads it back under.
func (t Treatment) MarshalJSON() ([]byte, error) {
	type plain Treatment
	return json.Marshal(struct {
		plain
		Date string `json:"date,omitempty"`
	}{plain(t), t.PerformedDate})
}

func (t *Treatment) FilterValue(field string) (string, bool) {
	switch field {
	case "patientId":
		return t.PatientID.String(), true
	case "casesheetId":
		return t.CasesheetID.String(), true
	case "visitId":
		return t.VisitID.String(), true
	case "performedById":
		return t.PerformedByID.String(), true
	case "status":
		return t.Status, true
	}
	return "", false
}

func (t *Treatment) Validate() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.TreatmentName, validation.Required),
		validation.Field(&t.Cost, validation.Min(0.0)),
		validation.Field(&t.Status, validation.In(TreatmentPlanned, TreatmentInProgress, TreatmentCompleted, TreatmentCancelled)),
	)
}
