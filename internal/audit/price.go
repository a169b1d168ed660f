package audit

import (
	"fmt"

	"github.com/gyeh/billaudit/internal/model"
	"github.com/gyeh/billaudit/internal/pricing"
)

// PriceChecker compares each coded charge against the reference fee schedule.
// Elevated charges raise a warning; outliers raise a critical flag.
type PriceChecker struct {
	Evaluator *pricing.Evaluator
}

func (c *PriceChecker) Name() string { return "price" }

func (c *PriceChecker) Check(items []model.LineItem, facility model.FacilityType) []model.AuditFlag {
	var flags []model.AuditFlag
	for i := range items {
		item := &items[i]
		code := codeOf(item)
		if code == "" {
			continue
		}
		ev := c.Evaluator.Evaluate(item.ChargedAmount, code, facility)

		switch ev.Tier {
		case pricing.TierElevated:
			f := newFlag(model.FlagPriceOutlier, model.SeverityWarning,
				fmt.Sprintf("Above-typical charge for %s", code),
				fmt.Sprintf("%s was billed at $%s; commercial insurers typically pay around $%s for this service (Medicare benchmark $%s).",
					item.Description, item.ChargedAmount.StringFixed(2), ev.TypicalRate.StringFixed(2), ev.ReferenceRate.StringFixed(2)),
				"Ask the provider to justify the charge or re-price it to the typical commercial rate.")
			f = withItem(f, item.ID)
			if ev.Overcharge != nil {
				f = withImpact(f, *ev.Overcharge)
			}
			flags = append(flags, f)
		case pricing.TierOutlier:
			f := newFlag(model.FlagPriceOutlier, model.SeverityCritical,
				fmt.Sprintf("Extreme charge for %s", code),
				fmt.Sprintf("%s was billed at $%s, more than four times the Medicare benchmark of $%s. Charges this far above the reference rate are rarely defensible.",
					item.Description, item.ChargedAmount.StringFixed(2), ev.ReferenceRate.StringFixed(2)),
				"Dispute this charge in writing and request an itemized justification.")
			f = withItem(f, item.ID)
			if ev.Overcharge != nil {
				f = withImpact(f, *ev.Overcharge)
			}
			flags = append(flags, f)
		}
	}
	return flags
}
