package models

import "time"

// Media is the metadata of an uploaded file. The bytes live in the uploads
// directory under Filename.
type Media struct {
	Base
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	Path         string    `json:"path"`
	ContentType  string    `json:"contentType"`
	Size         int64     `json:"size"`
	PatientID    Ref       `json:"patientId"`
	TreatmentID  Ref       `json:"treatmentId"`
	CasesheetID  Ref       `json:"casesheetId"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

func (m *Media) FilterValue(field string) (string, bool) {
	switch field {
	case "patientId":
		return m.PatientID.String(), true
	case "treatmentId":
		return m.TreatmentID.String(), true
	case "casesheetId":
		return m.CasesheetID.String(), true
	}
	return "", false
}
