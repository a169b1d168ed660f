package ratefile

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// ValidateSchema checks that the Parquet schema carries the required
// fee-schedule columns and at least one rate column.
func ValidateSchema(schema *parquet.Schema) error {
	columns := make(map[string]bool)
	for _, field := range schema.Fields() {
		columns[strings.ToLower(field.Name())] = true
	}

	required := []string{"code", "description"}
	for _, col := range required {
		if !columns[col] {
			return fmt.Errorf("missing required column: %s", col)
		}
	}

	rateCols := []string{"non_facility_rate", "facility_rate"}
	hasRate := false
	for _, col := range rateCols {
		if columns[col] {
			hasRate = true
			break
		}
	}
	if !hasRate {
		return fmt.Errorf("no rate columns found; need at least one of: %s",
			strings.Join(rateCols, ", "))
	}

	return nil
}
