// Package extract pulls monetary amounts and procedure codes out of single
// lines of recognized bill text. Both extractors tolerate common OCR noise.
package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is one monetary value found in a line. Raw keeps the matched
// substring so callers can strip it when deriving descriptions.
type Amount struct {
	Value decimal.Decimal
	Raw   string
}

var (
	// Capital S immediately before a cents-formatted number is an OCR
	// misread of the currency symbol.
	misreadDollar = regexp.MustCompile(`\bS\s?(\d{1,3}(?:,\d{3})*\.\d{2})`)

	// Explicit currency-symbol amount with optional thousands separators
	// and exactly two decimal digits.
	dollarAmount = regexp.MustCompile(`\$\s?(\d{1,3}(?:,\d{3})*\.\d{2}|\d+\.\d{2})`)

	// Bare two-decimal number anchored at line end; fallback only.
	trailingAmount = regexp.MustCompile(`\b(\d{1,3}(?:,\d{3})*\.\d{2})\s*$`)
)

// Keywords that mark a line as a phone/account/reference number context.
var nonChargeKeywords = []string{"call", "phone", "fax", "account", "ref #", "claim #"}

var (
	fallbackMin = decimal.NewFromInt(10)
	fallbackMax = decimal.NewFromInt(100000)
	rejectMax   = decimal.NewFromInt(1000000)
)

// Amounts returns the ordered monetary values found in line. The primary
// pattern requires a currency symbol (after OCR normalization); a trailing
// bare decimal is accepted as fallback only when nothing else matched and the
// value is in the plausible charge range.
func Amounts(line string) []Amount {
	fixed := NormalizeCurrency(line)

	suspicious := looksLikeReferenceLine(fixed)

	var out []Amount
	for _, m := range dollarAmount.FindAllStringSubmatch(fixed, -1) {
		if suspicious {
			continue
		}
		if a, ok := parseAmount(m[1], m[0]); ok {
			out = append(out, a)
		}
	}
	if len(out) > 0 {
		return out
	}

	m := trailingAmount.FindStringSubmatch(fixed)
	if m == nil || suspicious {
		return nil
	}
	a, ok := parseAmount(m[1], m[1])
	if !ok {
		return nil
	}
	// Suppress phone numbers, account numbers and small quantities.
	if a.Value.Cmp(fallbackMin) < 0 || a.Value.Cmp(fallbackMax) >= 0 {
		return nil
	}
	return []Amount{a}
}

// NormalizeCurrency rewrites OCR misreads of the currency symbol so the
// downstream patterns see a normal dollar amount.
func NormalizeCurrency(line string) string {
	return misreadDollar.ReplaceAllString(line, `$$$1`)
}

func parseAmount(digits, raw string) (Amount, bool) {
	v, err := decimal.NewFromString(strings.ReplaceAll(digits, ",", ""))
	if err != nil {
		return Amount{}, false
	}
	if v.Sign() <= 0 || v.Cmp(rejectMax) >= 0 {
		return Amount{}, false
	}
	return Amount{Value: v, Raw: raw}, true
}

// looksLikeReferenceLine reports whether the line context strongly suggests a
// phone, account or reference number. An explicit currency symbol overrides
// the keyword heuristic.
func looksLikeReferenceLine(line string) bool {
	if strings.Contains(line, "$") {
		return false
	}
	lower := strings.ToLower(line)
	for _, kw := range nonChargeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
