package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/gyeh/billaudit/internal/model"
	"github.com/gyeh/billaudit/internal/pricing"
)

// Severity weights and the clamp range for the risk score.
const (
	weightCritical = 25
	weightWarning  = 10
	weightInfo     = 3
	maxScore       = 100
	maxRatioBonus  = 20
)

// Dispute is recommended whenever the estimated overcharge exceeds this
// amount, regardless of flag severity.
var disputeThreshold = decimal.NewFromInt(50)

// Engine runs the configured checkers over a bill and aggregates their flags
// into a single AuditResult.
type Engine struct {
	checkers []Checker
	log      zerolog.Logger
}

// NewEngine builds an engine with the checkers named in enabled, in
// canonical declaration order. An empty list enables every checker.
func NewEngine(eval *pricing.Evaluator, enabled []string, log zerolog.Logger) (*Engine, error) {
	want := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		if _, ok := model.CheckTypeByName(name); !ok {
			return nil, fmt.Errorf("unknown check %q", name)
		}
		want[name] = true
	}

	all := []Checker{
		&PriceChecker{Evaluator: eval},
		&DuplicateChecker{},
		&UnbundlingChecker{},
		&UpcodingChecker{},
		&BalanceBillingChecker{},
	}

	e := &Engine{log: log}
	for _, c := range all {
		if len(want) == 0 || want[c.Name()] {
			e.checkers = append(e.checkers, c)
		}
	}
	return e, nil
}

// Run audits the bill's line items. The checkers execute concurrently over
// the same immutable snapshot; their flags are concatenated in declared
// checker order so the result is reproducible regardless of which checker
// finishes first. If ctx is cancelled before the join completes, every
// partial result is discarded and the context error is returned.
func (e *Engine) Run(ctx context.Context, bill *model.MedicalBill) (*model.AuditResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	results := make([][]model.AuditFlag, len(e.checkers))
	var wg sync.WaitGroup
	for i, c := range e.checkers {
		wg.Add(1)
		go func(idx int, checker Checker) {
			defer wg.Done()
			results[idx] = checker.Check(bill.Items, bill.Facility)
		}(i, c)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var flags []model.AuditFlag
	for _, r := range results {
		flags = append(flags, r...)
	}

	result := &model.AuditResult{
		ID:        uuid.New(),
		BillID:    bill.ID,
		Flags:     flags,
		CreatedAt: time.Now().UTC(),
	}
	result.TotalOvercharge = totalOvercharge(flags)
	result.RiskScore = riskScore(flags, result.TotalOvercharge, bill.TotalCharged)
	result.RecommendsDispute = result.CriticalCount() > 0 ||
		result.TotalOvercharge.Cmp(disputeThreshold) > 0
	result.Summary = summarize(result)

	e.log.Info().
		Str("bill_id", bill.ID.String()).
		Int("checkers", len(e.checkers)).
		Int("flags", len(flags)).
		Int("risk_score", result.RiskScore).
		Str("overcharge", result.TotalOvercharge.StringFixed(2)).
		Bool("recommends_dispute", result.RecommendsDispute).
		Dur("duration", time.Since(start)).
		Msg("audit complete")

	return result, nil
}

func totalOvercharge(flags []model.AuditFlag) decimal.Decimal {
	total := decimal.Zero
	for _, f := range flags {
		if f.EstimatedImpact != nil {
			total = total.Add(*f.EstimatedImpact)
		}
	}
	return total
}

// riskScore sums severity weights and adds a bonus proportional to how large
// the estimated overcharge is relative to the bill total, clamped to [0,100].
func riskScore(flags []model.AuditFlag, overcharge, totalCharged decimal.Decimal) int {
	score := 0
	for _, f := range flags {
		switch f.Severity {
		case model.SeverityCritical:
			score += weightCritical
		case model.SeverityWarning:
			score += weightWarning
		default:
			score += weightInfo
		}
	}

	if totalCharged.Sign() > 0 && overcharge.Sign() > 0 {
		ratio, _ := overcharge.Div(totalCharged).Float64()
		bonus := int(ratio * maxRatioBonus * 2)
		if bonus > maxRatioBonus {
			bonus = maxRatioBonus
		}
		score += bonus
	}

	if score > maxScore {
		score = maxScore
	}
	if score < 0 {
		score = 0
	}
	return score
}
