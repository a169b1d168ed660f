package audit

import (
	"fmt"

	"github.com/gyeh/billaudit/internal/model"
)

const noDateSentinel = "no-date"

// DuplicateChecker groups coded line items by (code, service day) and flags
// every member beyond the first in each group. Identical amounts within a
// group mean a true duplicate (critical); differing amounts may be
// legitimate multi-unit billing and only warrant a warning.
type DuplicateChecker struct{}

func (c *DuplicateChecker) Name() string { return "duplicate" }

func (c *DuplicateChecker) Check(items []model.LineItem, _ model.FacilityType) []model.AuditFlag {
	groups := make(map[string][]*model.LineItem)
	var order []string
	for i := range items {
		item := &items[i]
		code := codeOf(item)
		if code == "" {
			continue
		}
		day := noDateSentinel
		if item.ServiceDate != nil {
			day = item.ServiceDate.Format("2006-01-02")
		}
		key := code + "|" + day
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], item)
	}

	var flags []model.AuditFlag
	for _, key := range order {
		group := groups[key]
		if len(group) < 2 {
			continue
		}

		identical := true
		for _, item := range group[1:] {
			if !item.ChargedAmount.Equal(group[0].ChargedAmount) {
				identical = false
				break
			}
		}

		for _, item := range group[1:] {
			code := codeOf(item)
			var f model.AuditFlag
			if identical {
				f = newFlag(model.FlagDuplicateCharge, model.SeverityCritical,
					fmt.Sprintf("Duplicate charge for %s", code),
					fmt.Sprintf("Code %s appears %d times on the same service day with an identical charge of $%s. This is most often the same service billed twice.",
						code, len(group), item.ChargedAmount.StringFixed(2)),
					"Ask the provider to remove the duplicate entries.")
			} else {
				f = newFlag(model.FlagDuplicateCharge, model.SeverityWarning,
					fmt.Sprintf("Repeated charge for %s", code),
					fmt.Sprintf("Code %s appears %d times on the same service day with differing amounts. This can be legitimate multi-unit billing, but is worth verifying.",
						code, len(group)),
					"Verify with the provider that each occurrence reflects a distinct service or unit.")
			}
			f = withItem(f, item.ID)
			f = withImpact(f, item.ChargedAmount)
			flags = append(flags, f)
		}
	}
	return flags
}
