package audit

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gyeh/billaudit/internal/model"
)

// Gap ratio above which a charged-vs-allowed difference is treated as
// balance billing rather than ordinary cost sharing.
var balanceGapThreshold = decimal.RequireFromString("0.3")

// BalanceBillingChecker flags line items billed well above the insurer's
// allowed amount. Billing the patient for that gap is restricted by law in
// many care settings.
type BalanceBillingChecker struct{}

func (c *BalanceBillingChecker) Name() string { return "balance_billing" }

func (c *BalanceBillingChecker) Check(items []model.LineItem, _ model.FacilityType) []model.AuditFlag {
	var flags []model.AuditFlag
	for i := range items {
		item := &items[i]
		if item.AllowedAmount == nil || item.AllowedAmount.Sign() <= 0 {
			continue
		}
		charged := item.ChargedAmount
		allowed := *item.AllowedAmount
		if charged.Cmp(allowed) <= 0 || charged.Sign() <= 0 {
			continue
		}
		gap := charged.Sub(allowed)
		if gap.Div(charged).Cmp(balanceGapThreshold) <= 0 {
			continue
		}

		f := newFlag(model.FlagBalanceBilling, model.SeverityCritical,
			"Possible balance billing",
			fmt.Sprintf("%s was billed at $%s but your insurer allowed only $%s. You may not be responsible for the $%s difference.",
				item.Description, charged.StringFixed(2), allowed.StringFixed(2), gap.StringFixed(2)),
			"Contact your insurer and ask whether this provider may bill you beyond the allowed amount.")
		f = withItem(f, item.ID)
		f = withImpact(f, gap)
		flags = append(flags, f)
	}
	return flags
}
