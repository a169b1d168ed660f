package audit

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/gyeh/billaudit/internal/model"
)

func testBill(items ...model.LineItem) *model.MedicalBill {
	return &model.MedicalBill{
		Items:        items,
		Facility:     model.FacilityUrgentCare,
		TotalCharged: sumCharges(items),
		CreatedAt:    time.Now().UTC(),
	}
}

func sumCharges(items []model.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.ChargedAmount)
	}
	return total
}

func TestNewEngine_UnknownCheck(t *testing.T) {
	if _, err := NewEngine(testEvaluator(), []string{"price", "bogus"}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for unknown check name")
	}
}

func TestNewEngine_EmptyEnablesAll(t *testing.T) {
	e, err := NewEngine(testEvaluator(), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if len(e.checkers) != len(model.AllCheckTypes) {
		t.Errorf("checkers = %d, want %d", len(e.checkers), len(model.AllCheckTypes))
	}
}

func TestEngine_Run(t *testing.T) {
	e, err := NewEngine(testEvaluator(), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	d := day(2024, 3, 1)
	bill := testBill(
		item("99213", "500.00", d), // price outlier, critical, impact 250
		item("36415", "25.00", d),  // duplicate pair, critical, impact 25
		item("36415", "25.00", d),
	)

	result, err := e.Run(context.Background(), bill)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Flags) != 2 {
		t.Fatalf("flags = %d, want 2", len(result.Flags))
	}
	// Declared checker order: price findings precede duplicate findings.
	if result.Flags[0].Type != model.FlagPriceOutlier || result.Flags[1].Type != model.FlagDuplicateCharge {
		t.Errorf("flag order = %s, %s", result.Flags[0].Type, result.Flags[1].Type)
	}
	if !result.TotalOvercharge.Equal(decimal.RequireFromString("275.00")) {
		t.Errorf("overcharge = %s, want 275.00", result.TotalOvercharge)
	}
	// Two criticals (50) plus the capped ratio bonus (275/550 = 0.5, 0.5*40 = 20).
	if result.RiskScore != 70 {
		t.Errorf("risk score = %d, want 70", result.RiskScore)
	}
	if !result.RecommendsDispute {
		t.Error("expected dispute recommendation for critical findings")
	}
	if !strings.Contains(result.Summary, "2 critical") {
		t.Errorf("summary = %q, want critical count", result.Summary)
	}
}

func TestEngine_RunDeterministic(t *testing.T) {
	e, err := NewEngine(testEvaluator(), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	d := day(2024, 3, 1)
	bill := testBill(
		item("99215", "300.00", d),
		item("99214", "200.00", d),
		item("80048", "30.00", d),
		item("80053", "45.00", d),
	)

	first, err := e.Run(context.Background(), bill)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i := 0; i < 10; i++ {
		next, err := e.Run(context.Background(), bill)
		if err != nil {
			t.Fatalf("Run %d: %v", i, err)
		}
		if len(next.Flags) != len(first.Flags) {
			t.Fatalf("run %d: flags = %d, want %d", i, len(next.Flags), len(first.Flags))
		}
		for j := range next.Flags {
			if next.Flags[j].Type != first.Flags[j].Type ||
				next.Flags[j].Severity != first.Flags[j].Severity ||
				next.Flags[j].Title != first.Flags[j].Title {
				t.Fatalf("run %d: flag %d differs", i, j)
			}
			a, b := next.Flags[j].LineItemID, first.Flags[j].LineItemID
			if !reflect.DeepEqual(a, b) {
				t.Fatalf("run %d: flag %d item ref differs", i, j)
			}
		}
		if next.RiskScore != first.RiskScore {
			t.Fatalf("run %d: score = %d, want %d", i, next.RiskScore, first.RiskScore)
		}
	}
}

func TestEngine_RunCancelled(t *testing.T) {
	e, err := NewEngine(testEvaluator(), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := e.Run(ctx, testBill(item("99213", "500.00", nil)))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if result != nil {
		t.Error("partial result returned on cancellation")
	}
}

func TestEngine_CleanBill(t *testing.T) {
	e, err := NewEngine(testEvaluator(), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	result, err := e.Run(context.Background(), testBill(item("99213", "100.00", day(2024, 3, 1))))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Flags) != 0 {
		t.Fatalf("flags = %v, want none", result.Flags)
	}
	if result.RiskScore != 0 {
		t.Errorf("risk score = %d, want 0", result.RiskScore)
	}
	if result.RecommendsDispute {
		t.Error("dispute recommended for a clean bill")
	}
	if !strings.HasPrefix(result.Summary, "No billing issues found") {
		t.Errorf("summary = %q", result.Summary)
	}
	if !result.TotalOvercharge.IsZero() {
		t.Errorf("overcharge = %s, want 0", result.TotalOvercharge)
	}
}

func TestEngine_SubsetOfCheckers(t *testing.T) {
	e, err := NewEngine(testEvaluator(), []string{"duplicate"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	// An outlier charge that only the disabled price checker would flag.
	result, err := e.Run(context.Background(), testBill(item("99213", "500.00", nil)))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Flags) != 0 {
		t.Errorf("flags = %v, want none with price disabled", result.Flags)
	}
}
