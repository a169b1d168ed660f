// Package ingest orchestrates the bill pipeline: recognize → parse →
// annotate → persist → audit.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/billaudit/internal/audit"
	"github.com/gyeh/billaudit/internal/model"
	"github.com/gyeh/billaudit/internal/parse"
	"github.com/gyeh/billaudit/internal/pricing"
	"github.com/gyeh/billaudit/internal/recognize"
	"github.com/gyeh/billaudit/internal/store"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Pipeline wires the collaborators for one ingest-and-audit run. Store may be
// nil for dry runs; everything else is required.
type Pipeline struct {
	Recognizer recognize.Recognizer
	Evaluator  *pricing.Evaluator
	Engine     *audit.Engine
	Store      *store.Store
	Log        zerolog.Logger
}

// Run executes the full pipeline over one captured document and returns the
// audited bill plus run metrics. Parsing and auditing never fail on bill
// content; only recognition, persistence and cancellation produce errors.
func (p *Pipeline) Run(ctx context.Context, sourcePath string, input []byte) (*model.MedicalBill, *model.AuditRunSummary, error) {
	totalStart := time.Now()
	summary := &model.AuditRunSummary{SourcePath: sourcePath}

	// Phase 1: Recognize
	start := time.Now()
	text, err := p.Recognizer.Recognize(ctx, input)
	if err != nil {
		return nil, nil, &PipelineError{Phase: "recognize", Err: err}
	}
	summary.DurationRecognize = time.Since(start)
	summary.LinesRecognized = countLines(text)

	// Phase 2: Parse (total function, never fails)
	start = time.Now()
	parsed := parse.Bill(text)
	bill := model.NewBill(parsed)
	summary.DurationParse = time.Since(start)
	summary.ItemsParsed = len(bill.Items)
	summary.BillID = bill.ID.String()

	p.Log.Info().
		Int("items", len(bill.Items)).
		Str("facility", string(bill.Facility)).
		Str("total_charged", bill.TotalCharged.StringFixed(2)).
		Msg("bill parsed")

	// Phase 3: Annotate line items with reference rates
	start = time.Now()
	summary.ItemsAnnotated = p.annotate(bill)
	summary.DurationAnnotate = time.Since(start)

	// Phase 4: Persist the bill
	if p.Store != nil {
		start = time.Now()
		if err := p.Store.SaveBill(ctx, bill); err != nil {
			return nil, nil, &PipelineError{Phase: "persist", Err: err}
		}
		summary.DurationPersist = time.Since(start)
	}

	// Phase 5: Audit
	start = time.Now()
	result, err := p.Engine.Run(ctx, bill)
	if err != nil {
		return nil, nil, &PipelineError{Phase: "audit", Err: err}
	}
	bill.Audit = result
	summary.DurationAudit = time.Since(start)
	summary.FlagsRaised = len(result.Flags)
	summary.RiskScore = result.RiskScore

	// Phase 6: Persist the result, replacing any prior audit
	if p.Store != nil {
		start = time.Now()
		if err := p.Store.ReplaceAuditResult(ctx, result); err != nil {
			return nil, nil, &PipelineError{Phase: "persist", Err: err}
		}
		summary.DurationPersist += time.Since(start)
	}

	summary.DurationTotal = time.Since(totalStart)

	p.Log.Info().
		Str("bill_id", summary.BillID).
		Int("items", summary.ItemsParsed).
		Int("flags", summary.FlagsRaised).
		Int("risk_score", summary.RiskScore).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("pipeline complete")

	return bill, summary, nil
}

// annotate writes the medicare-equivalent rate and fair-market price onto
// every coded line item. This happens during ingestion, not during audit, so
// persisted items carry their reference context from the start.
func (p *Pipeline) annotate(bill *model.MedicalBill) int {
	annotated := 0
	for i := range bill.Items {
		item := &bill.Items[i]
		if item.Code == nil {
			continue
		}
		ref, ok := p.Evaluator.ReferenceRate(*item.Code, bill.Facility)
		if !ok || ref.Sign() <= 0 {
			continue
		}
		ev := p.Evaluator.Evaluate(item.ChargedAmount, *item.Code, bill.Facility)
		item.MedicareRate = &ref
		fair := ev.TypicalRate
		item.FairPrice = &fair
		annotated++
	}
	return annotated
}

func countLines(text string) int {
	n := 0
	inLine := false
	for _, r := range text {
		if r == '\n' {
			inLine = false
			continue
		}
		if !inLine {
			n++
			inLine = true
		}
	}
	return n
}
