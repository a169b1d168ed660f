package model

import "time"

// AuditRunSummary captures metrics from a single bill ingest-and-audit run.
type AuditRunSummary struct {
	SourcePath        string
	BillID            string
	LinesRecognized   int
	ItemsParsed       int
	ItemsAnnotated    int
	FlagsRaised       int
	RiskScore         int
	DurationRecognize time.Duration
	DurationParse     time.Duration
	DurationAnnotate  time.Duration
	DurationAudit     time.Duration
	DurationPersist   time.Duration
	DurationTotal     time.Duration
}
