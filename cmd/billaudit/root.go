package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/billaudit/internal/config"
)

var cfg config.Config
var configPath string

var rootCmd = &cobra.Command{
	Use:   "billaudit",
	Short: "Medical-bill text parser and audit engine",
	Long:  "Parses recognized medical-bill text into structured line items, checks every charge against reference pricing and billing-fraud heuristics, and produces a scored audit report.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			return nil
		}
		return cfg.LoadFromFile(configPath)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("BILLAUDIT_DB_URL"), "Postgres connection string (or set BILLAUDIT_DB_URL)")
	pf.StringVar(&cfg.RatesPath, "rates", os.Getenv("BILLAUDIT_RATES"), "Path to the fee-schedule Parquet file (or set BILLAUDIT_RATES)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&configPath, "config", "", "Path to YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
