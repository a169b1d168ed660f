package audit

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gyeh/billaudit/internal/model"
	"github.com/gyeh/billaudit/internal/pricing"
)

func testEvaluator() *pricing.Evaluator {
	nf := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}
	return pricing.NewEvaluator(pricing.NewStaticRepository(map[string]pricing.Rate{
		"99213": {Code: "99213", NonFacilityRate: nf("100.00")},
		"36415": {Code: "36415", NonFacilityRate: nf("10.00")},
	}))
}

func item(code, charged string, day *time.Time) model.LineItem {
	it := model.LineItem{
		ID:            uuid.New(),
		Description:   "Service",
		ChargedAmount: decimal.RequireFromString(charged),
		ServiceDate:   day,
	}
	if code != "" {
		kind := "CPT"
		it.Code = &code
		it.CodeType = &kind
	}
	return it
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestPriceChecker(t *testing.T) {
	c := &PriceChecker{Evaluator: testEvaluator()}
	items := []model.LineItem{
		item("99213", "500.00", nil), // outlier: 5x the 100.00 reference
		item("", "500.00", nil),      // no code, skipped
	}

	flags := c.Check(items, model.FacilityUrgentCare)
	if len(flags) != 1 {
		t.Fatalf("flags = %d, want 1", len(flags))
	}
	f := flags[0]
	if f.Type != model.FlagPriceOutlier || f.Severity != model.SeverityCritical {
		t.Errorf("flag = %s/%s, want price_outlier/critical", f.Type, f.Severity)
	}
	if f.EstimatedImpact == nil || !f.EstimatedImpact.Equal(decimal.RequireFromString("250.00")) {
		t.Errorf("impact = %v, want 250.00", f.EstimatedImpact)
	}
	if f.LineItemID == nil || *f.LineItemID != items[0].ID {
		t.Errorf("line item ref = %v, want %v", f.LineItemID, items[0].ID)
	}
}

func TestPriceChecker_ElevatedIsWarning(t *testing.T) {
	c := &PriceChecker{Evaluator: testEvaluator()}
	flags := c.Check([]model.LineItem{item("99213", "300.00", nil)}, model.FacilityUrgentCare)
	if len(flags) != 1 {
		t.Fatalf("flags = %d, want 1", len(flags))
	}
	if flags[0].Severity != model.SeverityWarning {
		t.Errorf("severity = %s, want warning", flags[0].Severity)
	}
	if flags[0].EstimatedImpact == nil || !flags[0].EstimatedImpact.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("impact = %v, want 50.00", flags[0].EstimatedImpact)
	}
}

func TestPriceChecker_FairAndUnknownSilent(t *testing.T) {
	c := &PriceChecker{Evaluator: testEvaluator()}
	items := []model.LineItem{
		item("99213", "100.00", nil), // fair
		item("70010", "900.00", nil), // not in fee schedule
	}
	if flags := c.Check(items, model.FacilityUrgentCare); len(flags) != 0 {
		t.Errorf("flags = %v, want none", flags)
	}
}

func TestDuplicateChecker_IdenticalCharges(t *testing.T) {
	c := &DuplicateChecker{}
	d := day(2024, 3, 1)
	items := []model.LineItem{
		item("36415", "25.00", d),
		item("36415", "25.00", d),
	}
	flags := c.Check(items, model.FacilityHospital)
	if len(flags) != 1 {
		t.Fatalf("flags = %d, want 1", len(flags))
	}
	f := flags[0]
	if f.Type != model.FlagDuplicateCharge || f.Severity != model.SeverityCritical {
		t.Errorf("flag = %s/%s, want duplicate_charge/critical", f.Type, f.Severity)
	}
	if f.EstimatedImpact == nil || !f.EstimatedImpact.Equal(decimal.RequireFromString("25.00")) {
		t.Errorf("impact = %v, want 25.00", f.EstimatedImpact)
	}
	if f.LineItemID == nil || *f.LineItemID != items[1].ID {
		t.Error("flag should reference the second occurrence")
	}
}

func TestDuplicateChecker_DifferingAmountsWarn(t *testing.T) {
	c := &DuplicateChecker{}
	d := day(2024, 3, 1)
	items := []model.LineItem{
		item("36415", "25.00", d),
		item("36415", "50.00", d),
	}
	flags := c.Check(items, model.FacilityHospital)
	if len(flags) != 1 {
		t.Fatalf("flags = %d, want 1", len(flags))
	}
	if flags[0].Severity != model.SeverityWarning {
		t.Errorf("severity = %s, want warning", flags[0].Severity)
	}
}

func TestDuplicateChecker_DifferentDays(t *testing.T) {
	c := &DuplicateChecker{}
	items := []model.LineItem{
		item("36415", "25.00", day(2024, 3, 1)),
		item("36415", "25.00", day(2024, 3, 2)),
	}
	if flags := c.Check(items, model.FacilityHospital); len(flags) != 0 {
		t.Errorf("flags = %v, want none across days", flags)
	}
}

func TestDuplicateChecker_UndatedGroupTogether(t *testing.T) {
	c := &DuplicateChecker{}
	items := []model.LineItem{
		item("36415", "25.00", nil),
		item("36415", "25.00", nil),
	}
	if flags := c.Check(items, model.FacilityHospital); len(flags) != 1 {
		t.Errorf("flags = %d, want 1 for undated duplicates", len(flags))
	}
}

func TestUnbundlingChecker_PanelPair(t *testing.T) {
	c := &UnbundlingChecker{}
	d := day(2024, 3, 1)
	items := []model.LineItem{
		item("80048", "30.00", d),
		item("80053", "45.00", d),
	}
	flags := c.Check(items, model.FacilityHospital)
	if len(flags) != 1 {
		t.Fatalf("flags = %d, want 1", len(flags))
	}
	f := flags[0]
	if f.Type != model.FlagUnbundling || f.Severity != model.SeverityWarning {
		t.Errorf("flag = %s/%s, want unbundling/warning", f.Type, f.Severity)
	}
	if f.EstimatedImpact == nil || !f.EstimatedImpact.Equal(decimal.RequireFromString("30.00")) {
		t.Errorf("impact = %v, want the smaller charge 30.00", f.EstimatedImpact)
	}
	if f.LineItemID == nil || *f.LineItemID != items[0].ID {
		t.Error("flag should reference the cheaper component")
	}
}

func TestUnbundlingChecker_CBCPair(t *testing.T) {
	c := &UnbundlingChecker{}
	items := []model.LineItem{
		item("85025", "40.00", nil),
		item("85027", "28.00", nil),
	}
	flags := c.Check(items, model.FacilityHospital)
	if len(flags) != 1 {
		t.Fatalf("flags = %d, want 1", len(flags))
	}
	if flags[0].EstimatedImpact == nil || !flags[0].EstimatedImpact.Equal(decimal.RequireFromString("28.00")) {
		t.Errorf("impact = %v, want 28.00", flags[0].EstimatedImpact)
	}
}

func TestUnbundlingChecker_DifferentDaysNoFlag(t *testing.T) {
	c := &UnbundlingChecker{}
	items := []model.LineItem{
		item("80048", "30.00", day(2024, 3, 1)),
		item("80053", "45.00", day(2024, 3, 2)),
	}
	if flags := c.Check(items, model.FacilityHospital); len(flags) != 0 {
		t.Errorf("flags = %v, want none across days", flags)
	}
}

func TestUpcodingChecker_LevelFive(t *testing.T) {
	c := &UpcodingChecker{}
	items := []model.LineItem{item("99215", "300.00", nil)}
	flags := c.Check(items, model.FacilityUrgentCare)
	if len(flags) != 1 {
		t.Fatalf("flags = %d, want 1", len(flags))
	}
	f := flags[0]
	if f.Type != model.FlagUpcoding || f.Severity != model.SeverityWarning {
		t.Errorf("flag = %s/%s, want upcoding/warning", f.Type, f.Severity)
	}
	// No level-4 charge on the bill: fall back to 70% of the item's charge.
	if f.EstimatedImpact == nil || !f.EstimatedImpact.Equal(decimal.RequireFromString("210.00")) {
		t.Errorf("impact = %v, want 210.00", f.EstimatedImpact)
	}
}

func TestUpcodingChecker_LevelFourDelta(t *testing.T) {
	c := &UpcodingChecker{}
	items := []model.LineItem{
		item("99215", "300.00", nil),
		item("99214", "200.00", nil),
	}
	flags := c.Check(items, model.FacilityUrgentCare)
	if len(flags) != 2 {
		t.Fatalf("flags = %d, want level-5 warning plus pattern info", len(flags))
	}
	if flags[0].EstimatedImpact == nil || !flags[0].EstimatedImpact.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("impact = %v, want delta to level 4 of 100.00", flags[0].EstimatedImpact)
	}
	if flags[1].Severity != model.SeverityInfo {
		t.Errorf("pattern flag severity = %s, want info", flags[1].Severity)
	}
	if flags[1].EstimatedImpact != nil {
		t.Errorf("pattern flag impact = %v, want nil", flags[1].EstimatedImpact)
	}
}

func TestUpcodingChecker_MidLevelsSilent(t *testing.T) {
	c := &UpcodingChecker{}
	items := []model.LineItem{item("99213", "150.00", nil)}
	if flags := c.Check(items, model.FacilityUrgentCare); len(flags) != 0 {
		t.Errorf("flags = %v, want none", flags)
	}
}

func TestBalanceBillingChecker(t *testing.T) {
	c := &BalanceBillingChecker{}
	allowed := decimal.RequireFromString("60.00")
	it := item("99213", "100.00", nil)
	it.AllowedAmount = &allowed

	flags := c.Check([]model.LineItem{it}, model.FacilityHospital)
	if len(flags) != 1 {
		t.Fatalf("flags = %d, want 1", len(flags))
	}
	f := flags[0]
	if f.Type != model.FlagBalanceBilling || f.Severity != model.SeverityCritical {
		t.Errorf("flag = %s/%s, want balance_billing/critical", f.Type, f.Severity)
	}
	if f.EstimatedImpact == nil || !f.EstimatedImpact.Equal(decimal.RequireFromString("40.00")) {
		t.Errorf("impact = %v, want the 40.00 gap", f.EstimatedImpact)
	}
}

func TestBalanceBillingChecker_SmallGapTolerated(t *testing.T) {
	c := &BalanceBillingChecker{}
	allowed := decimal.RequireFromString("80.00")
	it := item("99213", "100.00", nil)
	it.AllowedAmount = &allowed

	if flags := c.Check([]model.LineItem{it}, model.FacilityHospital); len(flags) != 0 {
		t.Errorf("flags = %v, want none for a 20%% gap", flags)
	}
}

func TestBalanceBillingChecker_NoAllowedAmount(t *testing.T) {
	c := &BalanceBillingChecker{}
	if flags := c.Check([]model.LineItem{item("99213", "100.00", nil)}, model.FacilityHospital); len(flags) != 0 {
		t.Errorf("flags = %v, want none without an allowed amount", flags)
	}
}
