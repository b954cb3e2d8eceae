package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	InvoiceUnpaid        = "Unpaid"
	InvoicePartiallyPaid = "Partially Paid"
	InvoicePaid          = "Paid"

	BillingPending  = "Pending"
	BillingInvoiced = "Invoiced"
)

// PaymentMethods accepted on a Payment.
var PaymentMethods = []interface{}{"Cash", "Card", "UPI", "Bank Transfer"}

// Billing is the costed line for one treatment (or one visit).
type Billing struct {
	Base
	Sequenced
	TreatmentID    Ref    `json:"treatmentId"`
	VisitID        Ref    `json:"visitId"`
	PatientID      Ref    `json:"patientId"`
	InvoiceID      Ref    `json:"invoiceId"`
	TotalCost      Amount `json:"totalCost"`
	DiscountAmount Amount `json:"discountAmount"`
	FinalAmount    Amount `json:"finalAmount"`
	Status         string `json:"status"`
}

func (*Billing) CodePrefix() string { return "BIL" }

func (b *Billing) FilterValue(field string) (string, bool) {
	switch field {
	case "treatmentId":
		return b.TreatmentID.String(), true
	case "visitId":
		return b.VisitID.String(), true
	case "patientId":
		return b.PatientID.String(), true
	case "invoiceId":
		return b.InvoiceID.String(), true
	case "status":
		return b.Status, true
	}
	return "", false
}

// Recompute derives FinalAmount from TotalCost and DiscountAmount.
func (b *Billing) Recompute() {
	b.FinalAmount = b.TotalCost.Sub(b.DiscountAmount)
}

func (b *Billing) Validate() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.TotalCost, validation.Min(0.0)),
		validation.Field(&b.DiscountAmount, validation.Min(0.0)),
	)
}

// Invoice aggregates one or more billings for collection.
type Invoice struct {
	Base
	Sequenced
	PatientID      Ref       `json:"patientId"`
	BillingID      Ref       `json:"billingId"`
	CasesheetID    Ref       `json:"casesheetId"`
	TotalAmount    Amount    `json:"totalAmount"`
	DiscountAmount Amount    `json:"discountAmount"`
	FinalAmount    Amount    `json:"finalAmount"`
	PaidAmount     Amount    `json:"paidAmount"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (*Invoice) CodePrefix() string { return "INV" }

func (i *Invoice) FilterValue(field string) (string, bool) {
	switch field {
	case "patientId":
		return i.PatientID.String(), true
	case "billingId":
		return i.BillingID.String(), true
	case "casesheetId":
		return i.CasesheetID.String(), true
	case "status":
		return i.Status, true
	}
	return "", false
}

// Recompute derives FinalAmount from TotalAmount and DiscountAmount.
func (i *Invoice) Recompute() {
	i.FinalAmount = i.TotalAmount.Sub(i.DiscountAmount)
}

// ApplyPaid sets PaidAmount and moves Status to match it.
func (i *Invoice) ApplyPaid(paid Amount) {
	i.PaidAmount = paid
	switch {
	case paid <= 0:
		i.Status = InvoiceUnpaid
	case paid < i.FinalAmount:
		i.Status = InvoicePartiallyPaid
	default:
		i.Status = InvoicePaid
	}
}

func (i *Invoice) Validate() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.TotalAmount, validation.Min(0.0)),
		validation.Field(&i.DiscountAmount, validation.Min(0.0)),
		validation.Field(&i.Status, validation.In(InvoiceUnpaid, InvoicePartiallyPaid, InvoicePaid)),
	)
}

// Payment is money received against an invoice.
type Payment struct {
	Base
	Sequenced
	InvoiceID     Ref    `json:"invoiceId"`
	Amount        Amount `json:"amount"`
	PaymentMethod string `json:"paymentMethod"`
	PaidOn        string `json:"paidOn"`
	ReceivedByID  Ref    `json:"receivedById"`
	Notes         string `json:"notes,omitempty"`
}

func (*Payment) CodePrefix() string { return "PAY" }

func (p *Payment) FilterValue(field string) (string, bool) {
	switch field {
	case "invoiceId":
		return p.InvoiceID.String(), true
	case "receivedById":
		return p.ReceivedByID.String(), true
	case "paymentMethod":
		return p.PaymentMethod, true
	}
	return "", false
}

func (p *Payment) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.InvoiceID, requiredRef),
		validation.Field(&p.Amount, validation.Required, validation.Min(0.0)),
		validation.Field(&p.PaymentMethod, validation.In(PaymentMethods...)),
	)
}
