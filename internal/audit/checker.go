// Package audit evaluates a bill's line items against billing-fraud and
// pricing heuristics and aggregates the findings into an AuditResult.
package audit

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gyeh/billaudit/internal/model"
)

// Checker is one independent audit heuristic. Checkers are pure functions of
// the line-item snapshot: no shared mutable state, no ordering dependency,
// and they never fail for any well-formed input, including an empty list.
type Checker interface {
	Name() string
	Check(items []model.LineItem, facility model.FacilityType) []model.AuditFlag
}

func newFlag(t model.FlagType, sev model.Severity, title, explanation, recommendation string) model.AuditFlag {
	return model.AuditFlag{
		ID:             uuid.New(),
		Type:           t,
		Severity:       sev,
		Title:          title,
		Explanation:    explanation,
		Recommendation: recommendation,
	}
}

func withImpact(f model.AuditFlag, impact decimal.Decimal) model.AuditFlag {
	f.EstimatedImpact = &impact
	return f
}

func withItem(f model.AuditFlag, id uuid.UUID) model.AuditFlag {
	f.LineItemID = &id
	return f
}

func codeOf(item *model.LineItem) string {
	if item.Code == nil {
		return ""
	}
	return *item.Code
}
