package handlers

import (
	"net/http"

	"ClinicDesk/middlewares"
	"ClinicDesk/models"
	"ClinicDesk/repositories"
	"ClinicDesk/services"

	"github.com/gin-gonic/gin"
)

// PatientHandler serves /patients and the casesheet and treatment routes
// nested under a patient.
type PatientHandler struct {
	*ResourceHandler[*models.Patient]
	service    *services.PatientService
	casesheets *services.CasesheetService
	treatments *services.TreatmentService
}

func NewPatientHandler(service *services.PatientService, casesheets *services.CasesheetService, treatments *services.TreatmentService) *PatientHandler {
	return &PatientHandler{
		ResourceHandler: NewResourceHandler(service.ResourceService, "Patient"),
		service:         service,
		casesheets:      casesheets,
		treatments:      treatments,
	}
}

// CreatePatient answers with the plain patient, or with {patient, visit}
// when the body mentions autoCreateVisit.
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		fail(c, "Patient", err)
		return
	}
	reg, envelope, err := h.service.Register(c.Request.Context(), body)
	if err != nil {
		fail(c, "Patient", err)
		return
	}
	if envelope {
		middlewares.RespondJSON(c, reg, http.StatusCreated)
		return
	}
	middlewares.RespondJSON(c, reg.Patient, http.StatusCreated)
}

// patient loads the patient named by the :id parameter.
func (h *PatientHandler) patient(c *gin.Context) (*models.Patient, bool) {
	id, ok := pathID(c, "id", "Patient")
	if !ok {
		return nil, false
	}
	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, "Patient", err)
		return nil, false
	}
	return p, true
}

// casesheet loads the :casesheetId casesheet of the :id patient.
func (h *PatientHandler) casesheet(c *gin.Context) (*models.Casesheet, bool) {
	patientID, ok := pathID(c, "id", "Patient")
	if !ok {
		return nil, false
	}
	csID, ok := pathID(c, "casesheetId", "Casesheet")
	if !ok {
		return nil, false
	}
	cs, err := h.casesheets.ForPatient(c.Request.Context(), patientID, csID)
	if err != nil {
		fail(c, "Casesheet", err)
		return nil, false
	}
	return cs, true
}

func (h *PatientHandler) ListCasesheets(c *gin.Context) {
	p, ok := h.patient(c)
	if !ok {
		return
	}
	items, err := h.casesheets.ListWhere(c.Request.Context(), repositories.Filter{"patientId": p.ID.String()})
	if err != nil {
		fail(c, "Casesheet", err)
		return
	}
	middlewares.RespondJSON(c, items, http.StatusOK)
}

func (h *PatientHandler) CreateCasesheet(c *gin.Context) {
	p, ok := h.patient(c)
	if !ok {
		return
	}
	body, err := readBody(c)
	if err != nil {
		fail(c, "Casesheet", err)
		return
	}
	cs, err := h.casesheets.CreateWith(c.Request.Context(), body, func(cs *models.Casesheet) {
		cs.PatientID = models.NewRef(p.ID)
	})
	if err != nil {
		fail(c, "Casesheet", err)
		return
	}
	middlewares.RespondJSON(c, cs, http.StatusCreated)
}

func (h *PatientHandler) GetCasesheet(c *gin.Context) {
	cs, ok := h.casesheet(c)
	if !ok {
		return
	}
	middlewares.RespondJSON(c, cs, http.StatusOK)
}

func (h *PatientHandler) UpdateCasesheet(c *gin.Context) {
	patientID, ok := pathID(c, "id", "Patient")
	if !ok {
		return
	}
	csID, ok := pathID(c, "casesheetId", "Casesheet")
	if !ok {
		return
	}
	body, err := readBody(c)
	if err != nil {
		fail(c, "Casesheet", err)
		return
	}
	cs, err := h.casesheets.UpdateWith(c.Request.Context(), csID, body, &services.Scope[*models.Casesheet]{
		Owns: func(cs *models.Casesheet) bool { return cs.PatientID.Is(patientID) },
		Fix:  func(cs *models.Casesheet) { cs.PatientID = models.NewRef(patientID) },
	})
	if err != nil {
		fail(c, "Casesheet", err)
		return
	}
	middlewares.RespondJSON(c, cs, http.StatusOK)
}

func (h *PatientHandler) ListCasesheetTreatments(c *gin.Context) {
	cs, ok := h.casesheet(c)
	if !ok {
		return
	}
	items, err := h.treatments.ForCasesheet(c.Request.Context(), cs.ID)
	if err != nil {
		fail(c, "Treatment", err)
		return
	}
	middlewares.RespondJSON(c, items, http.StatusOK)
}

// CreateCasesheetTreatment records a treatment under the casesheet. The
// treatment inherits the casesheet's visit unless it names one.
func (h *PatientHandler) CreateCasesheetTreatment(c *gin.Context) {
	cs, ok := h.casesheet(c)
	if !ok {
		return
	}
	body, err := readBody(c)
	if err != nil {
		fail(c, "Treatment", err)
		return
	}
	t, err := h.treatments.CreateWith(c.Request.Context(), body, func(t *models.Treatment) {
		t.PatientID = cs.PatientID
		t.CasesheetID = models.NewRef(cs.ID)
		if !t.VisitID.Valid {
			t.VisitID = cs.VisitID
		}
	})
	if err != nil {
		fail(c, "Treatment", err)
		return
	}
	middlewares.RespondJSON(c, t, http.StatusCreated)
}

func (h *PatientHandler) UpdateCasesheetTreatment(c *gin.Context) {
	cs, ok := h.casesheet(c)
	if !ok {
		return
	}
	treatmentID, ok := pathID(c, "treatmentId", "Treatment")
	if !ok {
		return
	}
	body, err := readBody(c)
	if err != nil {
		fail(c, "Treatment", err)
		return
	}
	t, err := h.treatments.UpdateWith(c.Request.Context(), treatmentID, body, &services.Scope[*models.Treatment]{
		Owns: func(t *models.Treatment) bool { return t.CasesheetID.Is(cs.ID) },
		Fix: func(t *models.Treatment) {
			t.PatientID = cs.PatientID
			t.CasesheetID = models.NewRef(cs.ID)
		},
	})
	if err != nil {
		fail(c, "Treatment", err)
		return
	}
	middlewares.RespondJSON(c, t, http.StatusOK)
}

func (h *PatientHandler) ListPatientTreatments(c *gin.Context) {
	p, ok := h.patient(c)
	if !ok {
		return
	}
	items, err := h.treatments.ForPatient(c.Request.Context(), p.ID)
	if err != nil {
		fail(c, "Treatment", err)
		return
	}
	middlewares.RespondJSON(c, items, http.StatusOK)
}
