package handlers

import (
	"net/http"

	"ClinicDesk/middlewares"
	"ClinicDesk/models"
	"ClinicDesk/services"

	"github.com/gin-gonic/gin"
)

func NewBillingHandler(service *services.BillingService) *ResourceHandler[*models.Billing] {
	return NewResourceHandler(service.ResourceService, "Billing")
}

func NewInvoiceHandler(service *services.InvoiceService) *ResourceHandler[*models.Invoice] {
	return NewResourceHandler(service.ResourceService, "Invoice")
}

// PaymentHandler refreshes the invoice a payment moved away from on update.
type PaymentHandler struct {
	*ResourceHandler[*models.Payment]
	payments *services.PaymentService
}

func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		ResourceHandler: NewResourceHandler(service.ResourceService, "Payment"),
		payments:        service,
	}
}

func (h *PaymentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "Payment")
	if !ok {
		return
	}
	body, err := readBody(c)
	if err != nil {
		fail(c, "Payment", err)
		return
	}
	payment, err := h.payments.UpdatePayment(c.Request.Context(), id, body)
	if err != nil {
		fail(c, "Payment", err)
		return
	}
	middlewares.RespondJSON(c, payment, http.StatusOK)
}
