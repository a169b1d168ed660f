package parse

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/gyeh/billaudit/internal/extract"
)

// section identifies which logical part of the bill a line belongs to.
type section int

const (
	sectionHeader section = iota
	sectionCharges
	sectionInsurance
	sectionPatientResp
	sectionTotals
)

// segments holds the lines filed under each section after segmentation.
type segments struct {
	header      []string
	charges     []string
	insurance   []string
	patientResp []string
	totals      []string
}

var (
	totalKeywords = []string{"subtotal", "sub-total", "total charges", "total charge",
		"total amount", "grand total", "amount due", "total due", "total"}

	chargeHeaderPhrases = []string{"itemized charges", "description of service",
		"detail of charges", "charge detail", "service detail", "services rendered",
		"summary of charges", "itemization of services"}

	insuranceKeywords = []string{"insurance", "plan", "coverage", "payer"}

	patientRespKeywords = []string{"patient responsibility", "balance due",
		"amount you owe", "patient balance", "you owe"}

	footerPhrases = []string{"payments and adjustments", "please mail",
		"detach and return", "pay online", "thank you for choosing"}

	categoryKeywords = []string{"PHARMACY", "LABORATORY", "RADIOLOGY", "IMAGING",
		"SUPPLIES", "THERAPY", "ROOM", "BOARD", "EMERGENCY", "SURGERY", "ANESTHESIA",
		"RECOVERY", "OBSERVATION"}

	columnHeaderKeywords = []string{"date", "code", "description", "qty", "quantity",
		"amount", "charges", "units", "rev", "cpt", "service", "procedure"}

	revenueRangeHeader = regexp.MustCompile(`^\d{3,4}\s*-\s*\d{3,4}\b`)
)

// segment files normalized lines into bill sections. A single pass maintains
// the current section, starting at header; the transition rules run in a
// fixed precedence order per line, with charges taking precedence over
// insurance switches to avoid breaking out of a charge table mid-stream.
func segment(lines []string) *segments {
	seg := &segments{}
	current := sectionHeader
	pendingSubtotal := false
	pendingKeyword := ""

	for _, line := range lines {
		lower := strings.ToLower(line)
		amounts := extract.Amounts(line)

		// A subtotal announced on the previous line: its amount must arrive
		// on the line immediately after, or the announcement is dropped and
		// this line is filed by the normal rules. The stored totals line is
		// rejoined with its keyword so metadata extraction can still tell
		// subtotals from bare amounts.
		if pendingSubtotal {
			pendingSubtotal = false
			if len(amounts) > 0 {
				seg.totals = append(seg.totals, pendingKeyword+" "+line)
				continue
			}
		}

		if kw := matchAny(lower, totalKeywords); kw != "" {
			if len(amounts) == 0 {
				pendingSubtotal = true
				pendingKeyword = kw
				continue
			}
			seg.totals = append(seg.totals, line)
			continue
		}

		if matchAny(lower, chargeHeaderPhrases) != "" {
			current = sectionCharges
			continue
		}

		// Table furniture inside the charge section is consumed silently.
		if current == sectionCharges &&
			(revenueRangeHeader.MatchString(line) || isCategoryDivider(line) || isColumnHeader(lower)) {
			continue
		}

		if current != sectionCharges && matchAny(lower, insuranceKeywords) != "" {
			current = sectionInsurance
			seg.insurance = append(seg.insurance, line)
			continue
		}

		if matchAny(lower, patientRespKeywords) != "" {
			current = sectionPatientResp
			seg.patientResp = append(seg.patientResp, line)
			continue
		}

		if matchAny(lower, footerPhrases) != "" {
			current = sectionHeader
			continue
		}

		switch current {
		case sectionCharges:
			seg.charges = append(seg.charges, line)
		case sectionInsurance:
			seg.insurance = append(seg.insurance, line)
		case sectionPatientResp:
			seg.patientResp = append(seg.patientResp, line)
		case sectionTotals:
			seg.totals = append(seg.totals, line)
		default:
			seg.header = append(seg.header, line)
		}
	}
	return seg
}

func matchAny(lower string, keywords []string) string {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return ""
}

// isCategoryDivider detects all-caps category divider lines like
// "PHARMACY" or "LABORATORY SERVICES".
func isCategoryDivider(line string) bool {
	var letters, upper int
	for _, r := range line {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters == 0 || float64(upper)/float64(letters) < 0.8 {
		return false
	}
	for _, kw := range categoryKeywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}

// isColumnHeader detects table column-header lines ("DATE CODE DESCRIPTION
// QTY AMOUNT") by counting header-keyword hits.
func isColumnHeader(lower string) bool {
	hits := 0
	for _, kw := range columnHeaderKeywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	return hits >= 3
}
