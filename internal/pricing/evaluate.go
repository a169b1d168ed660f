package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/gyeh/billaudit/internal/model"
)

// Tier classifies how a charged amount compares to the reference rate.
type Tier string

const (
	TierFair     Tier = "fair"
	TierTypical  Tier = "typical"
	TierElevated Tier = "elevated"
	TierOutlier  Tier = "outlier"
	TierUnknown  Tier = "unknown"
)

// Industry-average multipliers over the government benchmark rate.
var (
	fairMultiplier    = decimal.RequireFromString("1.1")
	typicalMultiplier = decimal.RequireFromString("2.5")
	outlierMultiplier = decimal.RequireFromString("4.0")
	hundred           = decimal.NewFromInt(100)
)

// Evaluation is the outcome of comparing one charge against the benchmark.
type Evaluation struct {
	Tier          Tier
	ReferenceRate decimal.Decimal
	TypicalRate   decimal.Decimal // reference x 2.5, typical commercial
	OutlierAbove  decimal.Decimal // reference x 4.0, high-outlier threshold
	// Overcharge is set for elevated and outlier tiers: charged minus the
	// typical commercial rate.
	Overcharge *decimal.Decimal
	// PercentAboveMedicare is set whenever the reference rate is positive.
	PercentAboveMedicare *decimal.Decimal
}

// Evaluator classifies charges into fairness tiers using an injected
// reference repository.
type Evaluator struct {
	repo *Repository
}

// NewEvaluator returns an Evaluator reading from repo.
func NewEvaluator(repo *Repository) *Evaluator {
	return &Evaluator{repo: repo}
}

// ReferenceRate selects the fee-schedule rate variant for a facility setting:
// hospital, emergency and ambulatory settings bill the facility rate with the
// non-facility rate as fallback; every other setting is the reverse.
func (e *Evaluator) ReferenceRate(code string, facility model.FacilityType) (decimal.Decimal, bool) {
	rate, ok := e.repo.Lookup(code)
	if !ok {
		return decimal.Zero, false
	}
	primary, fallback := rate.NonFacilityRate, rate.FacilityRate
	if facility.UsesFacilityRate() {
		primary, fallback = rate.FacilityRate, rate.NonFacilityRate
	}
	if primary != nil {
		return *primary, true
	}
	if fallback != nil {
		return *fallback, true
	}
	return decimal.Zero, false
}

// Evaluate classifies a charged amount for a procedure code in a facility
// setting. A missing reference rate yields TierUnknown, never an error.
func (e *Evaluator) Evaluate(charged decimal.Decimal, code string, facility model.FacilityType) Evaluation {
	ref, ok := e.ReferenceRate(code, facility)
	if !ok || ref.Sign() <= 0 {
		return Evaluation{Tier: TierUnknown}
	}

	ev := Evaluation{
		ReferenceRate: ref,
		TypicalRate:   ref.Mul(typicalMultiplier),
		OutlierAbove:  ref.Mul(outlierMultiplier),
	}

	pct := charged.Sub(ref).Div(ref).Mul(hundred)
	ev.PercentAboveMedicare = &pct

	switch {
	case charged.Cmp(ref.Mul(fairMultiplier)) <= 0:
		ev.Tier = TierFair
	case charged.Cmp(ev.TypicalRate) <= 0:
		ev.Tier = TierTypical
	case charged.Cmp(ev.OutlierAbove) <= 0:
		ev.Tier = TierElevated
		over := charged.Sub(ev.TypicalRate)
		ev.Overcharge = &over
	default:
		ev.Tier = TierOutlier
		over := charged.Sub(ev.TypicalRate)
		ev.Overcharge = &over
	}
	return ev
}
