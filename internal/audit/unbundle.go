package audit

import (
	"fmt"
	"strings"

	"github.com/gyeh/billaudit/internal/model"
)

// unbundleRule describes a set of codes that should have been billed under a
// single bundled code when they appear on the same calendar day.
type unbundleRule struct {
	codes       []string
	bundled     string
	explanation string
}

var unbundleRules = []unbundleRule{
	{
		codes:       []string{"80048", "80053"},
		bundled:     "80053",
		explanation: "A basic metabolic panel (80048) was billed alongside a comprehensive metabolic panel (80053); the comprehensive panel already includes every component of the basic panel.",
	},
	{
		codes:       []string{"85025", "85027"},
		bundled:     "85025",
		explanation: "A complete blood count was billed both with (85025) and without (85027) differential; a single CBC with differential covers both.",
	},
	{
		codes:       []string{"99213", "99214"},
		bundled:     "99214",
		explanation: "Two adjacent-level office visit codes (99213 and 99214) were billed for the same day; a single visit should be billed at one level.",
	},
	{
		codes:       []string{"36415", "36416"},
		bundled:     "36415",
		explanation: "Both venipuncture (36415) and capillary blood draw (36416) were billed; one collection method covers a single draw.",
	},
}

// UnbundlingChecker fires a rule when its full code set appears on the bill
// and all matching items share the same calendar day (or carry no dates at
// all). The impact is the smallest matched charge, which is the component
// that should not have been billed separately.
type UnbundlingChecker struct{}

func (c *UnbundlingChecker) Name() string { return "unbundling" }

func (c *UnbundlingChecker) Check(items []model.LineItem, _ model.FacilityType) []model.AuditFlag {
	byCode := make(map[string][]*model.LineItem)
	for i := range items {
		item := &items[i]
		if code := codeOf(item); code != "" {
			byCode[code] = append(byCode[code], item)
		}
	}

	var flags []model.AuditFlag
	for _, rule := range unbundleRules {
		matched := matchRule(rule, byCode)
		if matched == nil {
			continue
		}

		minItem := matched[0]
		for _, item := range matched[1:] {
			if item.ChargedAmount.Cmp(minItem.ChargedAmount) < 0 {
				minItem = item
			}
		}

		f := newFlag(model.FlagUnbundling, model.SeverityWarning,
			fmt.Sprintf("Possible unbundling of %s", rule.bundled),
			rule.explanation,
			fmt.Sprintf("Ask the provider to rebill these services under the bundled code %s and remove the separate charges.", rule.bundled))
		f = withItem(f, minItem.ID)
		f = withImpact(f, minItem.ChargedAmount)
		flags = append(flags, f)
	}
	return flags
}

// matchRule returns one item per rule code when the full set is present and
// date-consistent, or nil when the rule does not fire.
func matchRule(rule unbundleRule, byCode map[string][]*model.LineItem) []*model.LineItem {
	matched := make([]*model.LineItem, 0, len(rule.codes))
	for _, code := range rule.codes {
		group, ok := byCode[code]
		if !ok {
			return nil
		}
		matched = append(matched, group[0])
	}

	// All matched items must share a calendar day, or none may carry a date.
	var day string
	dated := 0
	for _, item := range matched {
		if item.ServiceDate == nil {
			continue
		}
		dated++
		d := item.ServiceDate.Format("2006-01-02")
		if day == "" {
			day = d
		} else if !strings.EqualFold(day, d) {
			return nil
		}
	}
	if dated != 0 && dated != len(matched) {
		return nil
	}
	return matched
}
