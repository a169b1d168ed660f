package parse

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gyeh/billaudit/internal/extract"
	"github.com/gyeh/billaudit/internal/model"
)

const unknownService = "Unknown Service"

var (
	pageMarker       = regexp.MustCompile(`(?i)^page \d+( of \d+)?$`)
	disclaimerPhrases = []string{"this is not a bill", "retain for your records",
		"continued on next page", "see reverse side", "for billing questions"}

	// Stray revenue-code / NDC-like numbers and standalone quantities that
	// should not survive into a description.
	strayNumber    = regexp.MustCompile(`\b\d{4,6}\b`)
	strayQuantity  = regexp.MustCompile(`\b\d{1,2}\b`)
	currencySymbol = regexp.MustCompile(`[$]`)

	noisePrefixes = []string{"rev ", "ref ", "svc ", "item "}
)

// accumulator collects fragments of one line item until an amount closes it.
type accumulator struct {
	codes     []extract.Code
	dates     []time.Time
	descLines []string
}

func (a *accumulator) reset() {
	a.codes = a.codes[:0]
	a.dates = a.dates[:0]
	a.descLines = a.descLines[:0]
}

func (a *accumulator) absorb(line string, codes []extract.Code, date *time.Time) {
	a.codes = append(a.codes, codes...)
	if date != nil {
		a.dates = append(a.dates, *date)
	}
	a.descLines = append(a.descLines, line)
}

// assemble builds line items from the charges section. A dollar amount on a
// line closes the currently accumulating item; everything before it rolls
// into code, date and description buffers. Noise lines are skipped without
// disturbing the accumulator.
func assemble(charges []string) []model.ParsedLineItem {
	var items []model.ParsedLineItem
	var acc accumulator

	for _, line := range charges {
		if isNoiseLine(line) {
			continue
		}

		codes := extract.Codes(line)
		_, date := findDate(line)
		amounts := extract.Amounts(line)

		// Merge this line's fragments regardless; the amount decides
		// whether the item closes here.
		acc.absorb(line, codes, date)

		if len(amounts) == 0 {
			continue
		}
		items = append(items, closeItem(&acc, amounts))
		acc.reset()
	}
	return items
}

// closeItem builds one ParsedLineItem from the accumulated buffers and the
// amounts of the closing line. Only the first amount becomes the charge;
// extra amounts on the same line are dropped.
func closeItem(acc *accumulator, amounts []extract.Amount) model.ParsedLineItem {
	item := model.ParsedLineItem{
		ChargedAmount: amounts[0].Value,
		Description:   buildDescription(acc.descLines, acc.codes, amounts),
	}

	if len(acc.codes) > 0 {
		first := acc.codes[0]
		code := first.Value
		kind := string(first.Kind)
		item.Code = &code
		item.CodeType = &kind
		if first.Modifier != "" {
			mod := first.Modifier
			item.Modifier = &mod
		}
	}
	if len(acc.dates) > 0 {
		d := acc.dates[0]
		item.ServiceDate = &d
	}
	if item.ChargedAmount.Sign() < 0 {
		item.ChargedAmount = decimal.Zero
	}
	return item
}

// buildDescription joins the buffered lines and strips everything that is not
// descriptive text: matched codes (with and without the printed leading
// zero), amount substrings, dates, stray revenue/NDC-like numbers, standalone
// quantities, currency symbols and known noise prefixes. An empty result
// falls back to a fixed placeholder.
func buildDescription(descLines []string, codes []extract.Code, amounts []extract.Amount) string {
	text := strings.Join(descLines, " ")

	for _, a := range amounts {
		text = strings.ReplaceAll(text, a.Raw, " ")
	}
	for _, c := range codes {
		withMod := c.Value
		if c.Modifier != "" {
			withMod += "-" + c.Modifier
		}
		text = strings.ReplaceAll(text, "0"+withMod, " ")
		text = strings.ReplaceAll(text, withMod, " ")
		text = strings.ReplaceAll(text, "0"+c.Value, " ")
		text = strings.ReplaceAll(text, c.Value, " ")
	}
	text = stripDates(text)
	text = strayNumber.ReplaceAllString(text, " ")
	text = strayQuantity.ReplaceAllString(text, " ")
	text = currencySymbol.ReplaceAllString(text, " ")

	lower := strings.ToLower(text)
	for _, p := range noisePrefixes {
		if strings.HasPrefix(lower, p) {
			text = text[len(p):]
			lower = lower[len(p):]
		}
	}

	text = multiSpace.ReplaceAllString(text, " ")
	text = strings.Trim(text, " \t.,:;-*#")
	if text == "" {
		return unknownService
	}
	return text
}

// isNoiseLine detects page markers, disclaimer phrases and near-empty lines.
func isNoiseLine(line string) bool {
	if len(strings.TrimSpace(line)) <= 2 {
		return true
	}
	if pageMarker.MatchString(line) {
		return true
	}
	lower := strings.ToLower(line)
	for _, p := range disclaimerPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
