package controllers

import (
	"ClinicDesk/handlers"
	"ClinicDesk/middlewares"
	"ClinicDesk/models"

	"github.com/gin-gonic/gin"
)

// APIHandlers groups the handlers mounted under /api.
type APIHandlers struct {
	Patients   *handlers.PatientHandler
	Visits     *handlers.ResourceHandler[*models.Visit]
	Casesheets *handlers.CasesheetHandler
	Treatments *handlers.ResourceHandler[*models.Treatment]
	Billings   *handlers.ResourceHandler[*models.Billing]
	Invoices   *handlers.ResourceHandler[*models.Invoice]
	Payments   *handlers.PaymentHandler
	Media      *handlers.MediaHandler
	Events     gin.HandlerFunc
}

// SetupAPIRoutes mounts the clinic resources on api. Every route needs a
// staff role; deleting a patient needs owner or admin.
func SetupAPIRoutes(api *gin.RouterGroup, h APIHandlers) {
	api.Use(middlewares.RequireRoles(models.StaffRoles...))

	api.GET("/patients", h.Patients.List)
	api.POST("/patients", h.Patients.CreatePatient)
	api.GET("/patients/:id", h.Patients.Get)
	api.PUT("/patients/:id", h.Patients.Update)
	api.DELETE("/patients/:id", middlewares.RequireRoles(models.ManagerRoles...), h.Patients.Delete)

	api.GET("/patients/:id/casesheets", h.Patients.ListCasesheets)
	api.POST("/patients/:id/casesheets", h.Patients.CreateCasesheet)
	api.GET("/patients/:id/casesheets/:casesheetId", h.Patients.GetCasesheet)
	api.PUT("/patients/:id/casesheets/:casesheetId", h.Patients.UpdateCasesheet)
	api.GET("/patients/:id/casesheets/:casesheetId/treatments", h.Patients.ListCasesheetTreatments)
	api.POST("/patients/:id/casesheets/:casesheetId/treatments", h.Patients.CreateCasesheetTreatment)
	api.PUT("/patients/:id/casesheets/:casesheetId/treatments/:treatmentId", h.Patients.UpdateCasesheetTreatment)
	api.GET("/patients/:id/treatments", h.Patients.ListPatientTreatments)

	api.GET("/visits", h.Visits.List)
	api.POST("/visits", h.Visits.Create)
	api.GET("/visits/:id", h.Visits.Get)
	api.PUT("/visits/:id", h.Visits.Update)
	api.DELETE("/visits/:id", h.Visits.Delete)

	api.GET("/casesheets", h.Casesheets.List)
	api.POST("/casesheets", h.Casesheets.Create)
	api.GET("/casesheets/:id", h.Casesheets.Get)
	api.PUT("/casesheets/:id", h.Casesheets.Update)
	api.DELETE("/casesheets/:id", h.Casesheets.Delete)
	api.GET("/casesheets/:id/treatments", h.Casesheets.Treatments)

	api.GET("/treatments", h.Treatments.List)
	api.POST("/treatments", h.Treatments.Create)
	api.GET("/treatments/:id", h.Treatments.Get)
	api.PUT("/treatments/:id", h.Treatments.Update)
	api.DELETE("/treatments/:id", h.Treatments.Delete)

	api.GET("/billings", h.Billings.List)
	api.POST("/billings", h.Billings.Create)
	api.GET("/billings/:id", h.Billings.Get)
	api.PUT("/billings/:id", h.Billings.Update)
	api.DELETE("/billings/:id", h.Billings.Delete)

	api.GET("/invoices", h.Invoices.List)
	api.POST("/invoices", h.Invoices.Create)
	api.GET("/invoices/:id", h.Invoices.Get)
	api.PUT("/invoices/:id", h.Invoices.Update)
	api.DELETE("/invoices/:id", h.Invoices.Delete)

	api.GET("/payments", h.Payments.List)
	api.POST("/payments", h.Payments.Create)
	api.GET("/payments/:id", h.Payments.Get)
	api.PUT("/payments/:id", h.Payments.Update)
	api.DELETE("/payments/:id", h.Payments.Delete)

	api.GET("/media", h.Media.List)
	api.POST("/media", h.Media.Upload)
	api.GET("/media/:filename", h.Media.Serve)
	api.DELETE("/media/:id", h.Media.Delete)

	if h.Events != nil {
		api.GET("/ws", h.Events)
	}
}
