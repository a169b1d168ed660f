package parse

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gyeh/billaudit/internal/extract"
	"github.com/gyeh/billaudit/internal/model"
)

var (
	headerLabels = []string{"statement", "invoice", "account", "guarantor",
		"patient", "page", "date", "bill", "visit", "mrn"}

	monthNames = []string{"january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december"}

	addressPattern  = regexp.MustCompile(`(?i)^\d+\s+\w+|\b(street|st\.|avenue|ave\.?|road|rd\.?|blvd|suite|ste\.?|drive|lane)\b|[A-Z]{2}\s+\d{5}`)
	phonePattern    = regexp.MustCompile(`\d{3}[-.)\s]\s?\d{3}[-.\s]\d{4}`)
	zipPattern      = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	personalTitle   = regexp.MustCompile(`(?i)^(mr|mrs|ms|dr)\.?\s`)
	inlinePatient   = regexp.MustCompile(`(?i)patient(?:\s+name)?\s*:\s*(.+)`)
	standalonePatient = regexp.MustCompile(`(?i)^patient\s+name\s*:?\s*$`)

	grandTotalKeywords = []string{"grand total", "total charge", "total amount"}
	subtotalKeywords   = []string{"subtotal", "sub-total"}
	serviceDateKeywords = []string{"admit", "service", "dos"}
)

// facilityKeywords map header keywords to facility types, scanned in order.
// Later keyword hits across the header overwrite earlier ones.
var facilityKeywords = []struct {
	keyword string
	ftype   model.FacilityType
}{
	{"hospital", model.FacilityHospital},
	{"medical center", model.FacilityHospital},
	{"health", model.FacilityHospital},
	{"urgent care", model.FacilityUrgentCare},
	{"laboratory", model.FacilityLaboratory},
	{"imaging", model.FacilityImagingCenter},
	{"radiology", model.FacilityImagingCenter},
	{"emergency", model.FacilityEmergency},
}

// extractMetadata fills provider, facility type, patient name, service date
// and total charged from the header and totals sections.
func extractMetadata(seg *segments, bill *model.ParsedBill) {
	extractProvider(seg.header, bill)
	extractFacility(seg.header, bill)
	extractServiceDate(seg.header, bill)
	extractPatient(seg.header, bill)
	extractTotal(seg.totals, bill)
}

// extractProvider takes the first header line that is plausibly an
// organization name. First match wins and is never overwritten.
func extractProvider(header []string, bill *model.ParsedBill) {
	for _, line := range header {
		if !plausibleProvider(line) {
			continue
		}
		name := strings.TrimSpace(line)
		bill.Provider = &name
		return
	}
}

func plausibleProvider(line string) bool {
	if len(line) < 4 || len(line) > 60 {
		return false
	}
	lower := strings.ToLower(line)
	for _, label := range headerLabels {
		if strings.HasPrefix(lower, label) {
			return false
		}
	}
	for _, m := range monthNames {
		if strings.Contains(lower, m) {
			return false
		}
	}
	if len(extract.Amounts(line)) > 0 {
		return false
	}
	if addressPattern.MatchString(line) || phonePattern.MatchString(line) ||
		zipPattern.MatchString(line) || personalTitle.MatchString(line) {
		return false
	}
	if _, d := findDate(line); d != nil {
		return false
	}
	return true
}

// extractFacility scans every header line; the last matching keyword wins.
func extractFacility(header []string, bill *model.ParsedBill) {
	for _, line := range header {
		lower := strings.ToLower(line)
		for _, fk := range facilityKeywords {
			if strings.Contains(lower, fk.keyword) {
				bill.Facility = fk.ftype
			}
		}
	}
}

// extractServiceDate prefers a line carrying an admit/service/dos keyword;
// otherwise the first parseable date anywhere in the header is accepted.
func extractServiceDate(header []string, bill *model.ParsedBill) {
	for _, line := range header {
		lower := strings.ToLower(line)
		_, d := findDate(line)
		if d == nil {
			continue
		}
		if matchAny(lower, serviceDateKeywords) != "" {
			bill.ServiceDate = d
			return
		}
		if bill.ServiceDate == nil {
			bill.ServiceDate = d
		}
	}
}

// extractPatient handles both the inline "Patient: Jane Doe" form and the
// value on the line following a standalone "Patient Name" header.
func extractPatient(header []string, bill *model.ParsedBill) {
	for i, line := range header {
		if m := inlinePatient.FindStringSubmatch(line); m != nil {
			name := strings.TrimSpace(m[1])
			if name != "" && letterDense(name) {
				bill.PatientName = &name
				return
			}
		}
		if standalonePatient.MatchString(line) && i+1 < len(header) {
			name := strings.TrimSpace(header[i+1])
			if letterDense(name) {
				bill.PatientName = &name
				return
			}
		}
	}
}

// letterDense reports whether a candidate name is mostly letters and spaces.
func letterDense(s string) bool {
	if s == "" {
		return false
	}
	letters := 0
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == ' ' || r == '.' || r == ',' || r == '\'' || r == '-' {
			letters++
		}
	}
	return float64(letters)/float64(len(s)) >= 0.8
}

// extractTotal prefers an explicit grand-total line's last amount, then the
// sum of subtotal-line amounts, then the last amount on the last totals line.
func extractTotal(totals []string, bill *model.ParsedBill) {
	for _, line := range totals {
		lower := strings.ToLower(line)
		if matchAny(lower, grandTotalKeywords) == "" {
			continue
		}
		amounts := extract.Amounts(line)
		if len(amounts) > 0 {
			bill.TotalCharged = amounts[len(amounts)-1].Value
			return
		}
	}

	sum := decimal.Zero
	for _, line := range totals {
		lower := strings.ToLower(line)
		if matchAny(lower, subtotalKeywords) == "" {
			continue
		}
		for _, a := range extract.Amounts(line) {
			sum = sum.Add(a.Value)
		}
	}
	if sum.Sign() > 0 {
		bill.TotalCharged = sum
		return
	}

	for i := len(totals) - 1; i >= 0; i-- {
		amounts := extract.Amounts(totals[i])
		if len(amounts) > 0 {
			bill.TotalCharged = amounts[len(amounts)-1].Value
			return
		}
	}
}
