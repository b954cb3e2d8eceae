package services

import (
	"context"
	"errors"
	"time"

	"ClinicDesk/models"
	"ClinicDesk/repositories"

	"github.com/rs/zerolog"
)

type BillingService struct {
	*ResourceService[*models.Billing]
}

func NewBillingService(repo *repositories.BillingRepository, notifier Notifier, log zerolog.Logger) *BillingService {
	s := &BillingService{ResourceService: NewResourceService(repo, notifier, log)}
	s.prepare = func(b *models.Billing, created bool, now time.Time) {
		if b.Status == "" {
			b.Status = models.BillingPending
		}
		if b.InvoiceID.Valid && b.Status == models.BillingPending {
			b.Status = models.BillingInvoiced
		}
		b.Recompute()
	}
	return s
}

type InvoiceService struct {
	*ResourceService[*models.Invoice]
}

func NewInvoiceService(repo *repositories.InvoiceRepository, notifier Notifier, log zerolog.Logger) *InvoiceService {
	s := &InvoiceService{ResourceService: NewResourceService(repo, notifier, log)}
	s.prepare = func(i *models.Invoice, created bool, now time.Time) {
		if created && i.CreatedAt.IsZero() {
			i.CreatedAt = now
		}
		i.Recompute()
		// without payments the status is whatever the desk set
		if i.PaidAmount > 0 {
			i.ApplyPaid(i.PaidAmount)
		} else if i.Status == "" {
			i.Status = models.InvoiceUnpaid
		}
	}
	s.serverOwned = []string{"paidAmount"}
	return s
}

// PaymentService records payments and keeps the paid amount and status of
// the paid invoice in step with them.
type PaymentService struct {
	*ResourceService[*models.Payment]
	invoices *InvoiceService
}

func NewPaymentService(repo *repositories.PaymentRepository, invoices *InvoiceService, notifier Notifier, log zerolog.Logger) *PaymentService {
	s := &PaymentService{ResourceService: NewResourceService(repo, notifier, log), invoices: invoices}
	s.prepare = func(p *models.Payment, created bool, now time.Time) {
		if p.PaidOn == "" {
			p.PaidOn = now.Format(time.RFC3339)
		}
	}
	s.afterWrite = s.settle
	return s
}

// settle recomputes the invoice a payment belongs to. An update may have
// moved the payment between invoices, so both are refreshed.
func (s *PaymentService) settle(ctx context.Context, action string, p *models.Payment) error {
	if !p.InvoiceID.Valid {
		return nil
	}
	return s.RecomputeInvoice(ctx, p.InvoiceID.ID)
}

// RecomputeInvoice sums the payments of an invoice into its paidAmount. A
// missing invoice is ignored.
func (s *PaymentService) RecomputeInvoice(ctx context.Context, invoiceID models.ID) error {
	payments, err := s.ListWhere(ctx, repositories.Filter{"invoiceId": invoiceID.String()})
	if err != nil {
		return err
	}
	var paid models.Amount
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	_, err = s.invoices.Modify(ctx, invoiceID, func(inv *models.Invoice) {
		inv.ApplyPaid(paid)
	})
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// UpdatePayment updates a payment and refreshes the invoice it left, if any.
func (s *PaymentService) UpdatePayment(ctx context.Context, id models.ID, body []byte) (*models.Payment, error) {
	before, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.Update(ctx, id, body)
	if err != nil {
		return nil, err
	}
	if before.InvoiceID.Valid && !updated.InvoiceID.Is(before.InvoiceID.ID) {
		if err := s.RecomputeInvoice(ctx, before.InvoiceID.ID); err != nil {
			s.log.Error().Err(err).Int64("invoice_id", int64(before.InvoiceID.ID)).Msg("failed to recompute previous invoice")
		}
	}
	return updated, nil
}
