package audit

import (
	"fmt"
	"strings"

	"github.com/gyeh/billaudit/internal/model"
)

// summarize renders the templated human-readable summary for a result.
func summarize(r *model.AuditResult) string {
	if len(r.Flags) == 0 {
		return "No billing issues found. The charges on this bill look consistent with reference pricing."
	}

	var b strings.Builder

	issues := "issues"
	if len(r.Flags) == 1 {
		issues = "issue"
	}
	fmt.Fprintf(&b, "Found %d potential %s", len(r.Flags), issues)

	criticals := r.CriticalCount()
	if criticals > 0 {
		fmt.Fprintf(&b, ", %d critical", criticals)
	}
	b.WriteString(".")

	if r.TotalOvercharge.Sign() > 0 {
		fmt.Fprintf(&b, " Estimated potential overcharge: $%s.", r.TotalOvercharge.StringFixed(2))
	}

	switch {
	case criticals > 0:
		b.WriteString(" We recommend disputing these charges with your provider before paying.")
	case r.RecommendsDispute:
		b.WriteString(" The estimated overcharge is large enough to be worth disputing.")
	case hasWarning(r.Flags):
		b.WriteString(" Review the flagged items and ask your provider for clarification before paying.")
	default:
		b.WriteString(" These are minor observations; no action is likely needed.")
	}

	return b.String()
}

func hasWarning(flags []model.AuditFlag) bool {
	for _, f := range flags {
		if f.Severity == model.SeverityWarning {
			return true
		}
	}
	return false
}
