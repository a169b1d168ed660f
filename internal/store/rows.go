package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/gyeh/billaudit/internal/model"
)

// lineItemRow is the COPY-ready shape of one line item.
type lineItemRow struct {
	ID             uuid.UUID
	BillID         uuid.UUID
	Ord            int32
	Code           *string
	CodeType       *string
	Modifier       *string
	Description    string
	ChargedCents   int64
	AllowedCents   *int64
	ServiceDate    *time.Time
	MedicareCents  *int64
	FairPriceCents *int64
}

// lineItemColumns returns the ordered column names for COPY into line_items.
func lineItemColumns() []string {
	return []string{
		"line_item_id",
		"bill_id",
		"ord",
		"code",
		"code_type",
		"modifier",
		"description",
		"charged_cents",
		"allowed_cents",
		"service_date",
		"medicare_cents",
		"fair_price_cents",
	}
}

func (r *lineItemRow) copyValues() []any {
	return []any{
		r.ID,
		r.BillID,
		r.Ord,
		r.Code,
		r.CodeType,
		r.Modifier,
		r.Description,
		r.ChargedCents,
		r.AllowedCents,
		r.ServiceDate,
		r.MedicareCents,
		r.FairPriceCents,
	}
}

func toLineItemRow(item *model.LineItem, ord int) *lineItemRow {
	return &lineItemRow{
		ID:             item.ID,
		BillID:         item.BillID,
		Ord:            int32(ord),
		Code:           item.Code,
		CodeType:       item.CodeType,
		Modifier:       item.Modifier,
		Description:    item.Description,
		ChargedCents:   toCents(item.ChargedAmount),
		AllowedCents:   optCents(item.AllowedAmount),
		ServiceDate:    item.ServiceDate,
		MedicareCents:  optCents(item.MedicareRate),
		FairPriceCents: optCents(item.FairPrice),
	}
}

func (r *lineItemRow) toModel() model.LineItem {
	return model.LineItem{
		ID:            r.ID,
		BillID:        r.BillID,
		Code:          r.Code,
		CodeType:      r.CodeType,
		Modifier:      r.Modifier,
		Description:   r.Description,
		ChargedAmount: fromCents(r.ChargedCents),
		AllowedAmount: optDecimal(r.AllowedCents),
		ServiceDate:   r.ServiceDate,
		MedicareRate:  optDecimal(r.MedicareCents),
		FairPrice:     optDecimal(r.FairPriceCents),
	}
}

// toCents converts a decimal dollar amount to integer cents, rounding to the
// nearest cent.
func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

func optCents(d *decimal.Decimal) *int64 {
	if d == nil {
		return nil
	}
	c := toCents(*d)
	return &c
}

func optDecimal(c *int64) *decimal.Decimal {
	if c == nil {
		return nil
	}
	d := fromCents(*c)
	return &d
}

// channelSource implements pgx.CopyFromSource by reading line-item rows from
// a channel, giving natural backpressure between builder and COPY writer.
type channelSource struct {
	ch      <-chan *lineItemRow
	current *lineItemRow
}

func newChannelSource(ch <-chan *lineItemRow) *channelSource {
	return &channelSource{ch: ch}
}

// Next advances to the next row. Returns false when the channel is closed.
func (s *channelSource) Next() bool {
	row, ok := <-s.ch
	if !ok {
		return false
	}
	s.current = row
	return true
}

// Values returns the current row's values in COPY column order.
func (s *channelSource) Values() ([]any, error) {
	return s.current.copyValues(), nil
}

// Err returns any error encountered during iteration.
func (s *channelSource) Err() error {
	return nil
}

var _ pgx.CopyFromSource = (*channelSource)(nil)
