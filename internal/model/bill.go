package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ParsedLineItem is a single charge extracted by the parser. It is ephemeral:
// built during parsing and converted immediately into a persisted LineItem.
// ChargedAmount is always >= 0 and at most one of the CPT/HCPCS forms is set.
type ParsedLineItem struct {
	Code          *string // 5-digit CPT or 1-letter+4-digit HCPCS
	CodeType      *string // "CPT" or "HCPCS" when Code is set
	Modifier      *string // 2-character modifier
	Description   string  // never empty; defaults to "Unknown Service"
	ChargedAmount decimal.Decimal
	ServiceDate   *time.Time
}

// ParsedBill is the best-effort structured output of one parse call.
// The parser never fails: garbage input yields zeroed/empty fields.
type ParsedBill struct {
	Provider     *string
	Facility     FacilityType
	PatientName  *string
	ServiceDate  *time.Time
	TotalCharged decimal.Decimal
	Items        []ParsedLineItem
}

// LineItem is the persisted form of a charge line. MedicareRate and FairPrice
// are reference-rate annotations written during ingestion, not during audit.
// AllowedAmount comes from insurance EOB data when the user supplies it.
type LineItem struct {
	ID            uuid.UUID
	BillID        uuid.UUID
	Code          *string
	CodeType      *string
	Modifier      *string
	Description   string
	ChargedAmount decimal.Decimal
	AllowedAmount *decimal.Decimal
	ServiceDate   *time.Time
	MedicareRate  *decimal.Decimal
	FairPrice     *decimal.Decimal
}

// MedicalBill owns its line items and at most one audit result. Back-references
// between owned records are by ID only; there are no cyclic pointers.
type MedicalBill struct {
	ID           uuid.UUID
	Provider     *string
	Facility     FacilityType
	PatientName  *string
	ServiceDate  *time.Time
	TotalCharged decimal.Decimal
	Items        []LineItem
	Audit        *AuditResult
	CreatedAt    time.Time
}

// NewBill converts parser output into a persistable MedicalBill, assigning
// identities to the bill and every line item.
func NewBill(p *ParsedBill) *MedicalBill {
	b := &MedicalBill{
		ID:           uuid.New(),
		Provider:     p.Provider,
		Facility:     p.Facility,
		PatientName:  p.PatientName,
		ServiceDate:  p.ServiceDate,
		TotalCharged: p.TotalCharged,
		CreatedAt:    time.Now().UTC(),
	}
	b.Items = make([]LineItem, len(p.Items))
	for i, it := range p.Items {
		b.Items[i] = LineItem{
			ID:            uuid.New(),
			BillID:        b.ID,
			Code:          it.Code,
			CodeType:      it.CodeType,
			Modifier:      it.Modifier,
			Description:   it.Description,
			ChargedAmount: it.ChargedAmount,
			ServiceDate:   it.ServiceDate,
		}
	}
	return b
}

// ItemByID returns the owned line item with the given ID, or nil. Flags store
// line-item references as IDs and resolve them through the owning bill.
func (b *MedicalBill) ItemByID(id uuid.UUID) *LineItem {
	for i := range b.Items {
		if b.Items[i].ID == id {
			return &b.Items[i]
		}
	}
	return nil
}
