package handlers

import (
	"net/http"

	"ClinicDesk/middlewares"
	"ClinicDesk/models"
	"ClinicDesk/services"

	"github.com/gin-gonic/gin"
)

type CasesheetHandler struct {
	*ResourceHandler[*models.Casesheet]
	treatments *services.TreatmentService
}

func NewCasesheetHandler(service *services.CasesheetService, treatments *services.TreatmentService) *CasesheetHandler {
	return &CasesheetHandler{
		ResourceHandler: NewResourceHandler(service.ResourceService, "Casesheet"),
		treatments:      treatments,
	}
}

// Treatments lists the treatment history of a casesheet.
func (h *CasesheetHandler) Treatments(c *gin.Context) {
	id, ok := pathID(c, "id", "Casesheet")
	if !ok {
		return
	}
	if _, err := h.service.Get(c.Request.Context(), id); err != nil {
		fail(c, "Casesheet", err)
		return
	}
	items, err := h.treatments.ForCasesheet(c.Request.Context(), id)
	if err != nil {
		fail(c, "Treatment", err)
		return
	}
	middlewares.RespondJSON(c, items, http.StatusOK)
}

func NewTreatmentHandler(service *services.TreatmentService) *ResourceHandler[*models.Treatment] {
	return NewResourceHandler(service.ResourceService, "Treatment")
}

func NewVisitHandler(service *services.VisitService) *ResourceHandler[*models.Visit] {
	return NewResourceHandler(service.ResourceService, "Visit")
}
