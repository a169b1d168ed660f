package audit

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gyeh/billaudit/internal/model"
)

// Evaluation & management code ladders, ordered level 1 to 5.
var (
	emLevels = []string{"99211", "99212", "99213", "99214", "99215"}
	erLevels = []string{"99281", "99282", "99283", "99284", "99285"}
)

var seventyPercent = decimal.RequireFromString("0.7")

// UpcodingChecker flags use of the highest-complexity visit codes. A level-5
// visit is billed for the most complex encounters only; its presence is a
// signal worth reviewing, and multiple high-level codes on one bill is a
// pattern worth noting on its own.
type UpcodingChecker struct{}

func (c *UpcodingChecker) Name() string { return "upcoding" }

func (c *UpcodingChecker) Check(items []model.LineItem, _ model.FacilityType) []model.AuditFlag {
	var flags []model.AuditFlag
	highLevel := 0

	for i := range items {
		item := &items[i]
		code := codeOf(item)
		ladder := ladderFor(code)
		if ladder == nil {
			continue
		}
		if code == ladder[3] || code == ladder[4] {
			highLevel++
		}
		if code != ladder[4] {
			continue
		}

		f := newFlag(model.FlagUpcoding, model.SeverityWarning,
			fmt.Sprintf("Highest-complexity visit code %s", code),
			fmt.Sprintf("Code %s is reserved for the most complex encounters. Providers sometimes bill a higher level than the visit supports; your records should reflect the documented complexity.", code),
			"Request the visit documentation and confirm the billed level matches the care provided.")
		f = withItem(f, item.ID)

		if impact := upcodeImpact(item, ladder[3], items); impact != nil {
			f = withImpact(f, *impact)
		}
		flags = append(flags, f)
	}

	if highLevel > 1 {
		f := newFlag(model.FlagUpcoding, model.SeverityInfo,
			"Multiple high-level visit codes",
			fmt.Sprintf("%d level-4 or level-5 visit codes appear on this bill. Consistently high coding across visits can indicate a billing pattern worth reviewing.", highLevel),
			"Compare the billed levels against your visit records.")
		flags = append(flags, f)
	}
	return flags
}

func ladderFor(code string) []string {
	for _, ladder := range [][]string{emLevels, erLevels} {
		for _, c := range ladder {
			if c == code {
				return ladder
			}
		}
	}
	return nil
}

// upcodeImpact estimates savings as the delta to the level-4 charge on the
// same bill, falling back to 70% of the item's own charge. Returns nil when
// the estimate is not positive.
func upcodeImpact(item *model.LineItem, levelFour string, items []model.LineItem) *decimal.Decimal {
	var impact decimal.Decimal
	found := false
	for i := range items {
		if codeOf(&items[i]) == levelFour {
			impact = item.ChargedAmount.Sub(items[i].ChargedAmount)
			found = true
			break
		}
	}
	if !found {
		impact = item.ChargedAmount.Mul(seventyPercent)
	}
	if impact.Sign() <= 0 {
		return nil
	}
	return &impact
}
