// Package parse turns recognized bill text into a structured ParsedBill.
//
// Parsing runs four strictly sequential stages, each consuming the full
// output of the previous one: normalize, segment, assemble, metadata. The
// parser is a pure, total function: any input, including garbage, yields a
// best-effort ParsedBill and never an error.
package parse

import (
	"github.com/shopspring/decimal"

	"github.com/gyeh/billaudit/internal/model"
)

// Bill parses recognized text into a ParsedBill.
func Bill(text string) *model.ParsedBill {
	bill := &model.ParsedBill{
		Facility:     model.FacilityUnknown,
		TotalCharged: decimal.Zero,
	}

	lines := normalizeLines(text)
	if len(lines) == 0 {
		return bill
	}

	seg := segment(lines)
	bill.Items = assemble(seg.charges)
	extractMetadata(seg, bill)

	if bill.TotalCharged.Sign() < 0 {
		bill.TotalCharged = decimal.Zero
	}
	return bill
}
