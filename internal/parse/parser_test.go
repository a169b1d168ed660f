package parse

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gyeh/billaudit/internal/model"
)

const sampleBill = `MERCY GENERAL HOSPITAL
Patient: Jane Doe
Service Date: 03/01/2024
Itemized Charges
03/01/2024 99213 Office visit level 3 $150.00
03/01/2024 036415-59 Blood draw $25.00
Lab panel
80053 Comprehensive metabolic panel
$45.00
Total Charges $220.00`

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestBill_SampleFixture(t *testing.T) {
	bill := Bill(sampleBill)

	if bill.Provider == nil || *bill.Provider != "MERCY GENERAL HOSPITAL" {
		t.Errorf("provider = %v, want MERCY GENERAL HOSPITAL", bill.Provider)
	}
	if bill.Facility != model.FacilityHospital {
		t.Errorf("facility = %v, want hospital", bill.Facility)
	}
	if bill.PatientName == nil || *bill.PatientName != "Jane Doe" {
		t.Errorf("patient = %v, want Jane Doe", bill.PatientName)
	}
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if bill.ServiceDate == nil || !bill.ServiceDate.Equal(want) {
		t.Errorf("service date = %v, want %v", bill.ServiceDate, want)
	}
	if !bill.TotalCharged.Equal(mustDecimal(t, "220.00")) {
		t.Errorf("total = %s, want 220.00", bill.TotalCharged)
	}
	if len(bill.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(bill.Items))
	}
}

func TestBill_SampleItems(t *testing.T) {
	items := Bill(sampleBill).Items
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}

	first := items[0]
	if first.Code == nil || *first.Code != "99213" {
		t.Errorf("item 0 code = %v, want 99213", first.Code)
	}
	if first.Description != "Office visit level" {
		t.Errorf("item 0 description = %q", first.Description)
	}
	if !first.ChargedAmount.Equal(mustDecimal(t, "150.00")) {
		t.Errorf("item 0 amount = %s, want 150.00", first.ChargedAmount)
	}
	if first.ServiceDate == nil {
		t.Error("item 0 missing service date")
	}

	second := items[1]
	if second.Code == nil || *second.Code != "36415" {
		t.Errorf("item 1 code = %v, want 36415", second.Code)
	}
	if second.Modifier == nil || *second.Modifier != "59" {
		t.Errorf("item 1 modifier = %v, want 59", second.Modifier)
	}
	if second.Description != "Blood draw" {
		t.Errorf("item 1 description = %q", second.Description)
	}

	third := items[2]
	if third.Code == nil || *third.Code != "80053" {
		t.Errorf("item 2 code = %v, want 80053", third.Code)
	}
	if third.Description != "Lab panel Comprehensive metabolic panel" {
		t.Errorf("item 2 description = %q", third.Description)
	}
	if !third.ChargedAmount.Equal(mustDecimal(t, "45.00")) {
		t.Errorf("item 2 amount = %s, want 45.00", third.ChargedAmount)
	}
}

func TestBill_OCRCurrencyMisread(t *testing.T) {
	text := `CITY IMAGING CENTER
Itemized Charges
70010 Brain scan S 1,250.00
Total Charges S 1,250.00`

	bill := Bill(text)
	if len(bill.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(bill.Items))
	}
	if !bill.Items[0].ChargedAmount.Equal(mustDecimal(t, "1250.00")) {
		t.Errorf("amount = %s, want 1250.00", bill.Items[0].ChargedAmount)
	}
	if !bill.TotalCharged.Equal(mustDecimal(t, "1250.00")) {
		t.Errorf("total = %s, want 1250.00", bill.TotalCharged)
	}
	if bill.Facility != model.FacilityImagingCenter {
		t.Errorf("facility = %v, want imaging_center", bill.Facility)
	}
}

func TestBill_MissingCodeGetsPlaceholderDescription(t *testing.T) {
	text := `SOMEWHERE URGENT CARE
Itemized Charges
03/01/2024 $75.00
Total $75.00`

	bill := Bill(text)
	if len(bill.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(bill.Items))
	}
	item := bill.Items[0]
	if item.Code != nil {
		t.Errorf("code = %v, want nil", item.Code)
	}
	if item.Description != "Unknown Service" {
		t.Errorf("description = %q, want Unknown Service", item.Description)
	}
}

func TestBill_Deterministic(t *testing.T) {
	a := Bill(sampleBill)
	b := Bill(sampleBill)
	if !reflect.DeepEqual(a, b) {
		t.Error("repeated parses of the same text differ")
	}
}

func TestBill_GarbageInput(t *testing.T) {
	for _, text := range []string{"", "   \n\n  ", "%%% \x01 ???", "no structure at all"} {
		bill := Bill(text)
		if bill == nil {
			t.Fatalf("Bill(%q) = nil", text)
		}
		if len(bill.Items) != 0 {
			t.Errorf("Bill(%q) items = %d, want 0", text, len(bill.Items))
		}
		if bill.Facility != model.FacilityUnknown {
			t.Errorf("Bill(%q) facility = %v, want unknown", text, bill.Facility)
		}
		if !bill.TotalCharged.IsZero() {
			t.Errorf("Bill(%q) total = %s, want 0", text, bill.TotalCharged)
		}
	}
}

func TestSegment_SectionsAndFurniture(t *testing.T) {
	lines := normalizeLines(`GENERAL HOSPITAL
Itemized Charges
DATE CODE DESCRIPTION QTY AMOUNT
LABORATORY
80053 Panel $45.00
Payments and adjustments
Aetna plan paid $20.00
Patient Responsibility $25.00
Total Charges $45.00`)

	seg := segment(lines)
	if len(seg.header) != 1 {
		t.Errorf("header = %v, want 1 line", seg.header)
	}
	if len(seg.charges) != 1 || seg.charges[0] != "80053 Panel $45.00" {
		t.Errorf("charges = %v", seg.charges)
	}
	if len(seg.insurance) != 1 {
		t.Errorf("insurance = %v, want 1 line", seg.insurance)
	}
	if len(seg.patientResp) != 1 {
		t.Errorf("patientResp = %v, want 1 line", seg.patientResp)
	}
	if len(seg.totals) != 1 {
		t.Errorf("totals = %v, want 1 line", seg.totals)
	}
}

func TestSegment_SubtotalAmountOnNextLine(t *testing.T) {
	lines := []string{"Subtotal", "$120.00"}
	seg := segment(lines)
	if len(seg.totals) != 1 || seg.totals[0] != "subtotal $120.00" {
		t.Errorf("totals = %v, want the amount rejoined with its keyword", seg.totals)
	}
}

func TestSegment_PendingSubtotalScopedToNextLine(t *testing.T) {
	// A subtotal announcement whose amount never arrives must not swallow a
	// later charge line into the totals section.
	bill := Bill(`Itemized Charges
99213 Office visit $150.00
Subtotal
Additional services below
036415 Blood draw $25.00`)

	if len(bill.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(bill.Items))
	}
	second := bill.Items[1]
	if second.Code == nil || *second.Code != "36415" {
		t.Errorf("item 1 code = %v, want 36415", second.Code)
	}
	if !second.ChargedAmount.Equal(mustDecimal(t, "25.00")) {
		t.Errorf("item 1 amount = %s, want 25.00", second.ChargedAmount)
	}
	// The swallowed line would also have leaked into the bill total.
	if !bill.TotalCharged.IsZero() {
		t.Errorf("total = %s, want 0 with no totals section", bill.TotalCharged)
	}
}

func TestBill_TwoLineSubtotalsSummed(t *testing.T) {
	bill := Bill(`GENERAL HOSPITAL
Itemized Charges
99213 Office visit $150.00
Subtotal
$120.00
Subtotal
$80.00`)

	if !bill.TotalCharged.Equal(mustDecimal(t, "200.00")) {
		t.Errorf("total = %s, want the summed subtotals 200.00", bill.TotalCharged)
	}
}

func TestAssemble_NoiseLinesSkipped(t *testing.T) {
	items := assemble([]string{
		"Page 2 of 3",
		"This is not a bill",
		"99213 Office visit $150.00",
	})
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].Code == nil || *items[0].Code != "99213" {
		t.Errorf("code = %v, want 99213", items[0].Code)
	}
}

func TestFindDate_Formats(t *testing.T) {
	cases := []struct {
		line string
		want time.Time
	}{
		{"visit on 03/01/2024 ok", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"visit on 3/1/24 ok", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"visit on 03-01-2024 ok", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"visit on 2024-03-01 ok", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		_, d := findDate(tc.line)
		if d == nil {
			t.Errorf("findDate(%q) = nil", tc.line)
			continue
		}
		if !d.Equal(tc.want) {
			t.Errorf("findDate(%q) = %v, want %v", tc.line, d, tc.want)
		}
	}
}

func TestFindDate_None(t *testing.T) {
	if _, d := findDate("no date on this line"); d != nil {
		t.Errorf("findDate = %v, want nil", d)
	}
}
