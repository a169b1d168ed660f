package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gyeh/billaudit/internal/model"
)

// Config holds all runtime configuration for a billaudit run.
type Config struct {
	DSN       string
	RatesPath string // path to the fee-schedule Parquet file
	FilePath  string // recognized-text input for the audit/parse commands
	LogFormat string // "text" or "json"
	Persist   bool     // write the bill and audit result to the database
	Checks    []string `yaml:"checks"` // subset of check names to run
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	Checks    []string `yaml:"checks"`
	RatesPath string   `yaml:"rates_path"`
}

// LoadFromFile reads a YAML config file and merges its values into Config.
// Flag values already set take precedence over file values.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	c.Checks = yc.Checks
	if c.RatesPath == "" {
		c.RatesPath = yc.RatesPath
	}
	return c.validateChecks()
}

// validateChecks ensures every entry in Checks is a known check name.
// An empty list defaults to all checks.
func (c *Config) validateChecks() error {
	if len(c.Checks) == 0 {
		c.Checks = model.CheckTypeNames()
		return nil
	}
	for _, name := range c.Checks {
		if _, ok := model.CheckTypeByName(name); !ok {
			return fmt.Errorf("unknown check %q in config", name)
		}
	}
	return nil
}

// Validate checks required fields for commands that read an input file.
func (c *Config) Validate() error {
	if c.FilePath == "" {
		return fmt.Errorf("--file is required")
	}
	if _, err := os.Stat(c.FilePath); err != nil {
		return fmt.Errorf("file not accessible: %w", err)
	}
	return nil
}

// ValidateWithDSN checks both file and DSN fields.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or BILLAUDIT_DB_URL is required")
	}
	return nil
}
