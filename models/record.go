package models

// Record is anything stored as an element of a collection.
type Record interface {
	RecordKey() string
}

// Entity is a record with a numeric id that can be listed with query filters.
type Entity interface {
	Record
	GetID() ID
	SetID(ID)
	// FilterValue returns the canonical text of a filterable field, "null"
	// for an absent reference. ok is false for fields that cannot be filtered.
	FilterValue(field string) (value string, ok bool)
}

// Coded entities carry a human readable PREFIX-YEAR-NNNN code.
type Coded interface {
	CodePrefix() string
	GetCode() string
	SetCode(string)
}

// Base holds the id every entity shares.
type Base struct {
	ID ID `json:"id"`
}

func (b *Base) GetID() ID         { return b.ID }
func (b *Base) SetID(id ID)       { b.ID = id }
func (b *Base) RecordKey() string { return b.ID.String() }

// Sequenced holds the generated human code.
type Sequenced struct {
	Code string `json:"code"`
}

func (s *Sequenced) GetCode() string     { return s.Code }
func (s *Sequenced) SetCode(code string) { s.Code = code }

// Collection names, one per entity.
const (
	PatientsCollection   = "patients"
	VisitsCollection     = "visits"
	CasesheetsCollection = "casesheets"
	TreatmentsCollection = "treatments"
	BillingsCollection   = "billings"
	InvoicesCollection   = "invoices"
	PaymentsCollection   = "payments"
	MediaCollection      = "media"
	UsersCollection      = "users"
	SessionsCollection   = "sessions"
)

// AllCollections lists every collection the application persists.
var AllCollections = []string{
	PatientsCollection,
	VisitsCollection,
	CasesheetsCollection,
	TreatmentsCollection,
	BillingsCollection,
	InvoicesCollection,
	PaymentsCollection,
	MediaCollection,
	UsersCollection,
	SessionsCollection,
}
