package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FlagType identifies the billing problem a flag describes.
type FlagType string

const (
	FlagDuplicateCharge   FlagType = "duplicate_charge"
	FlagUnbundling        FlagType = "unbundling"
	FlagUpcoding          FlagType = "upcoding"
	FlagBalanceBilling    FlagType = "balance_billing"
	FlagPriceOutlier      FlagType = "price_outlier"
	FlagMissingModifier   FlagType = "missing_modifier"
	FlagIncorrectQuantity FlagType = "incorrect_quantity"
	FlagNotCovered        FlagType = "not_covered"
	FlagOther             FlagType = "other"
)

// Severity orders flags for scoring: critical > warning > info.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// AuditFlag is a single finding produced by one checker. Immutable after the
// checker call that created it. EstimatedImpact is nil when no quantifiable
// savings estimate exists. LineItemID is nil for bill-level flags.
type AuditFlag struct {
	ID              uuid.UUID
	Type            FlagType
	Severity        Severity
	Title           string
	Explanation     string
	EstimatedImpact *decimal.Decimal
	Recommendation  string
	LineItemID      *uuid.UUID
}

// AuditResult is the outcome of one audit run over a bill. Flags are ordered
// by checker declaration order, not severity. Immutable after creation; a
// re-audit produces a fresh AuditResult that replaces the old one.
type AuditResult struct {
	ID                uuid.UUID
	BillID            uuid.UUID
	RiskScore         int // clamped to [0, 100]
	TotalOvercharge   decimal.Decimal
	Summary           string
	RecommendsDispute bool
	Flags             []AuditFlag
	CreatedAt         time.Time
}

// CriticalCount returns the number of critical flags in the result.
func (r *AuditResult) CriticalCount() int {
	n := 0
	for _, f := range r.Flags {
		if f.Severity == SeverityCritical {
			n++
		}
	}
	return n
}
