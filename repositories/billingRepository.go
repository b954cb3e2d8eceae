package repositories

import (
	"ClinicDesk/models"
	"ClinicDesk/store"
)

type BillingRepository = Repository[*models.Billing]

func NewBillingRepository(driver store.Driver) *BillingRepository {
	return NewRepository(driver, models.BillingsCollection, func() *models.Billing { return &models.Billing{} })
}

type InvoiceRepository = Repository[*models.Invoice]

func NewInvoiceRepository(driver store.Driver) *InvoiceRepository {
	return NewRepository(driver, models.InvoicesCollection, func() *models.Invoice { return &models.Invoice{} })
}

type PaymentRepository = Repository[*models.Payment]

func NewPaymentRepository(driver store.Driver) *PaymentRepository {
	return NewRepository(driver, models.PaymentsCollection, func() *models.Payment { return &models.Payment{} })
}

type MediaRepository = Repository[*models.Media]

func NewMediaRepository(driver store.Driver) *MediaRepository {
	return NewRepository(driver, models.MediaCollection, func() *models.Media { return &models.Media{} })
}
