package main

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/gyeh/billaudit/internal/exitcode"
	"github.com/gyeh/billaudit/internal/logging"
	"github.com/gyeh/billaudit/internal/parse"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Dry-run parse of a recognized bill (no audit, no writes)",
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().StringVar(&cfg.FilePath, "file", "", "Path to recognized bill text (required)")
	_ = parseCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	data, err := os.ReadFile(cfg.FilePath)
	if err != nil {
		log.Error().Err(err).Msg("failed to read input file")
		os.Exit(exitcode.ValidationError)
	}

	bill := parse.Bill(string(data))

	fmt.Println("=== billaudit parse ===")
	fmt.Printf("File:          %s\n", cfg.FilePath)
	if bill.Provider != nil {
		fmt.Printf("Provider:      %s\n", *bill.Provider)
	} else {
		fmt.Println("Provider:      (not found)")
	}
	fmt.Printf("Facility:      %s\n", bill.Facility)
	if bill.PatientName != nil {
		fmt.Printf("Patient:       %s\n", *bill.PatientName)
	}
	if bill.ServiceDate != nil {
		fmt.Printf("Service date:  %s\n", bill.ServiceDate.Format("2006-01-02"))
	}
	fmt.Printf("Total charged: $%s\n", bill.TotalCharged.StringFixed(2))
	fmt.Printf("Line items:    %d\n", len(bill.Items))
	fmt.Println()

	for i, item := range bill.Items {
		code := "-----"
		if item.Code != nil {
			code = *item.Code
			if item.Modifier != nil {
				code += "-" + *item.Modifier
			}
		}
		date := "          "
		if item.ServiceDate != nil {
			date = item.ServiceDate.Format("2006-01-02")
		}
		fmt.Printf("  %2d. %s  %-8s %-40s $%s\n",
			i+1, date, code, truncate(item.Description, 40), item.ChargedAmount.StringFixed(2))
	}
	return nil
}

// truncate shortens s to at most n runes, ending with an ellipsis. Byte
// slicing would split multi-byte characters in OCR'd descriptions.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
