package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/billaudit/internal/model"
)

// ErrNotFound is returned when a requested bill does not exist.
var ErrNotFound = errors.New("bill not found")

// Store persists the ownership tree bill → line items → audit result → flags.
type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// New returns a Store backed by the pool.
func New(pool *pgxpool.Pool, log zerolog.Logger) *Store {
	return &Store{pool: pool, log: log}
}

// SaveBill inserts the bill and bulk-loads its line items in one transaction.
func (s *Store) SaveBill(ctx context.Context, bill *model.MedicalBill) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO bills (bill_id, provider, facility, patient_name, service_date, total_charged_cents, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		bill.ID, bill.Provider, string(bill.Facility), bill.PatientName,
		bill.ServiceDate, toCents(bill.TotalCharged), bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert bill: %w", err)
	}

	if len(bill.Items) > 0 {
		ch := make(chan *lineItemRow, len(bill.Items))
		for i := range bill.Items {
			ch <- toLineItemRow(&bill.Items[i], i)
		}
		close(ch)

		copied, err := tx.CopyFrom(ctx,
			pgx.Identifier{"line_items"},
			lineItemColumns(),
			newChannelSource(ch),
		)
		if err != nil {
			return fmt.Errorf("copy line items: %w", err)
		}
		if copied != int64(len(bill.Items)) {
			return fmt.Errorf("copy line items: wrote %d of %d rows", copied, len(bill.Items))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.log.Info().
		Str("bill_id", bill.ID.String()).
		Int("items", len(bill.Items)).
		Msg("bill saved")
	return nil
}

// ReplaceAuditResult deletes any prior result for the bill and inserts the
// new one with its flags, atomically. A bill owns at most one audit result.
func (s *Store) ReplaceAuditResult(ctx context.Context, result *model.AuditResult) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	// Cascade removes the old result's flags.
	if _, err := tx.Exec(ctx,
		`DELETE FROM audit_results WHERE bill_id = $1`, result.BillID); err != nil {
		return fmt.Errorf("delete prior result: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO audit_results (audit_result_id, bill_id, risk_score, total_overcharge_cents, summary, recommends_dispute, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		result.ID, result.BillID, result.RiskScore, toCents(result.TotalOvercharge),
		result.Summary, result.RecommendsDispute, result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}

	for i := range result.Flags {
		f := &result.Flags[i]
		_, err = tx.Exec(ctx,
			`INSERT INTO audit_flags (audit_flag_id, audit_result_id, ord, flag_type, severity, title, explanation, impact_cents, recommendation, line_item_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			f.ID, result.ID, i, string(f.Type), f.Severity.String(),
			f.Title, f.Explanation, optCents(f.EstimatedImpact), f.Recommendation, f.LineItemID,
		)
		if err != nil {
			return fmt.Errorf("insert flag %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.log.Info().
		Str("bill_id", result.BillID.String()).
		Int("flags", len(result.Flags)).
		Msg("audit result saved")
	return nil
}

// GetBill loads a bill with its line items and audit result (if any).
func (s *Store) GetBill(ctx context.Context, id uuid.UUID) (*model.MedicalBill, error) {
	bill := &model.MedicalBill{}
	var facility string
	var totalCents int64
	err := s.pool.QueryRow(ctx,
		`SELECT bill_id, provider, facility, patient_name, service_date, total_charged_cents, created_at
		 FROM bills WHERE bill_id = $1`, id,
	).Scan(&bill.ID, &bill.Provider, &facility, &bill.PatientName,
		&bill.ServiceDate, &totalCents, &bill.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select bill: %w", err)
	}
	if f, ok := model.ParseFacilityType(facility); ok {
		bill.Facility = f
	} else {
		bill.Facility = model.FacilityUnknown
	}
	bill.TotalCharged = fromCents(totalCents)

	if err := s.loadItems(ctx, bill); err != nil {
		return nil, err
	}
	if err := s.loadAudit(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

func (s *Store) loadItems(ctx context.Context, bill *model.MedicalBill) error {
	rows, err := s.pool.Query(ctx,
		`SELECT line_item_id, bill_id, ord, code, code_type, modifier, description,
		        charged_cents, allowed_cents, service_date, medicare_cents, fair_price_cents
		 FROM line_items WHERE bill_id = $1 ORDER BY ord`, bill.ID)
	if err != nil {
		return fmt.Errorf("select line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r lineItemRow
		if err := rows.Scan(&r.ID, &r.BillID, &r.Ord, &r.Code, &r.CodeType,
			&r.Modifier, &r.Description, &r.ChargedCents, &r.AllowedCents,
			&r.ServiceDate, &r.MedicareCents, &r.FairPriceCents); err != nil {
			return fmt.Errorf("scan line item: %w", err)
		}
		bill.Items = append(bill.Items, r.toModel())
	}
	return rows.Err()
}

func (s *Store) loadAudit(ctx context.Context, bill *model.MedicalBill) error {
	result := &model.AuditResult{}
	var overchargeCents int64
	err := s.pool.QueryRow(ctx,
		`SELECT audit_result_id, bill_id, risk_score, total_overcharge_cents, summary, recommends_dispute, created_at
		 FROM audit_results WHERE bill_id = $1`, bill.ID,
	).Scan(&result.ID, &result.BillID, &result.RiskScore, &overchargeCents,
		&result.Summary, &result.RecommendsDispute, &result.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("select audit result: %w", err)
	}
	result.TotalOvercharge = fromCents(overchargeCents)

	rows, err := s.pool.Query(ctx,
		`SELECT audit_flag_id, flag_type, severity, title, explanation, impact_cents, recommendation, line_item_id
		 FROM audit_flags WHERE audit_result_id = $1 ORDER BY ord`, result.ID)
	if err != nil {
		return fmt.Errorf("select audit flags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f model.AuditFlag
		var flagType, severity string
		var impactCents *int64
		if err := rows.Scan(&f.ID, &flagType, &severity, &f.Title,
			&f.Explanation, &impactCents, &f.Recommendation, &f.LineItemID); err != nil {
			return fmt.Errorf("scan audit flag: %w", err)
		}
		f.Type = model.FlagType(flagType)
		f.Severity = parseSeverity(severity)
		f.EstimatedImpact = optDecimal(impactCents)
		result.Flags = append(result.Flags, f)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	bill.Audit = result
	return nil
}

func parseSeverity(s string) model.Severity {
	switch s {
	case "critical":
		return model.SeverityCritical
	case "warning":
		return model.SeverityWarning
	default:
		return model.SeverityInfo
	}
}
