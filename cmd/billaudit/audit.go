package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/billaudit/internal/audit"
	"github.com/gyeh/billaudit/internal/config"
	"github.com/gyeh/billaudit/internal/exitcode"
	"github.com/gyeh/billaudit/internal/ingest"
	"github.com/gyeh/billaudit/internal/logging"
	"github.com/gyeh/billaudit/internal/model"
	"github.com/gyeh/billaudit/internal/pricing"
	"github.com/gyeh/billaudit/internal/ratefile"
	"github.com/gyeh/billaudit/internal/recognize"
	"github.com/gyeh/billaudit/internal/store"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Parse and audit a recognized bill",
	Long:  "Runs the full pipeline over a recognized-text bill file: parse, annotate with reference rates, audit, and optionally persist.",
	RunE:  runAudit,
}

func init() {
	f := auditCmd.Flags()
	f.StringVar(&cfg.FilePath, "file", "", "Path to recognized bill text (required)")
	f.BoolVar(&cfg.Persist, "persist", false, "Persist the bill and audit result to the database")
	_ = auditCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if err := validateAuditConfig(&cfg); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	repo := pricing.NewRepository()
	if cfg.RatesPath != "" {
		reader, err := ratefile.Open(cfg.RatesPath)
		if err != nil {
			log.Error().Err(err).Msg("failed to open fee schedule")
			os.Exit(exitcode.ValidationError)
		}
		if err := ratefile.ValidateSchema(reader.Schema()); err != nil {
			reader.Close()
			log.Error().Err(err).Msg("fee schedule schema invalid")
			os.Exit(exitcode.ValidationError)
		}
		if err := repo.Load(reader); err != nil {
			reader.Close()
			log.Error().Err(err).Msg("failed to load fee schedule")
			os.Exit(exitcode.ValidationError)
		}
		reader.Close()
		log.Info().Int("codes", repo.Len()).Msg("fee schedule loaded")
	} else {
		log.Warn().Msg("no fee schedule provided; price checks will be skipped")
	}

	eval := pricing.NewEvaluator(repo)
	engine, err := audit.NewEngine(eval, cfg.Checks, log)
	if err != nil {
		log.Error().Err(err).Msg("invalid check selection")
		os.Exit(exitcode.UsageError)
	}

	pipeline := &ingest.Pipeline{
		Recognizer: recognize.PlainText{},
		Evaluator:  eval,
		Engine:     engine,
		Log:        log,
	}

	if cfg.Persist {
		pool, err := store.NewPool(ctx, cfg.DSN)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			os.Exit(exitcode.DBConnError)
		}
		defer pool.Close()
		pipeline.Store = store.New(pool, log)
	}

	input, err := os.ReadFile(cfg.FilePath)
	if err != nil {
		log.Error().Err(err).Msg("failed to read input file")
		os.Exit(exitcode.ValidationError)
	}

	bill, summary, err := pipeline.Run(ctx, cfg.FilePath, input)
	if err != nil {
		if pe, ok := err.(*ingest.PipelineError); ok {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("audit failed")
			switch pe.Phase {
			case "recognize":
				os.Exit(exitcode.RecognitionError)
			case "persist":
				os.Exit(exitcode.PersistError)
			default:
				os.Exit(exitcode.AuditError)
			}
		}
		log.Error().Err(err).Msg("audit failed")
		os.Exit(exitcode.AuditError)
	}

	printReport(bill, summary)
	return nil
}

func validateAuditConfig(c *config.Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Persist && c.DSN == "" {
		return fmt.Errorf("--persist requires --dsn or BILLAUDIT_DB_URL")
	}
	return nil
}

func printReport(bill *model.MedicalBill, summary *model.AuditRunSummary) {
	fmt.Println("=== billaudit report ===")
	if bill.Provider != nil {
		fmt.Printf("Provider:      %s\n", *bill.Provider)
	}
	fmt.Printf("Facility:      %s\n", bill.Facility)
	if bill.ServiceDate != nil {
		fmt.Printf("Service date:  %s\n", bill.ServiceDate.Format("2006-01-02"))
	}
	fmt.Printf("Line items:    %d\n", len(bill.Items))
	fmt.Printf("Total charged: $%s\n", bill.TotalCharged.StringFixed(2))
	fmt.Println()

	result := bill.Audit
	fmt.Printf("Risk score:    %d / 100\n", result.RiskScore)
	fmt.Printf("Overcharge:    $%s\n", result.TotalOvercharge.StringFixed(2))
	fmt.Printf("Dispute:       %v\n", result.RecommendsDispute)
	fmt.Println()
	fmt.Println(result.Summary)

	if len(result.Flags) > 0 {
		fmt.Println()
		for i, f := range result.Flags {
			fmt.Printf("%d. [%s] %s\n", i+1, f.Severity, f.Title)
			fmt.Printf("   %s\n", f.Explanation)
			if f.EstimatedImpact != nil {
				fmt.Printf("   Estimated impact: $%s\n", f.EstimatedImpact.StringFixed(2))
			}
			fmt.Printf("   Next step: %s\n", f.Recommendation)
		}
	}

	fmt.Printf("\nDone in %.2fs (parse %.0fms, audit %.0fms)\n",
		summary.DurationTotal.Seconds(),
		float64(summary.DurationParse.Milliseconds()),
		float64(summary.DurationAudit.Milliseconds()))
}
