// Package pricing holds the reference fee-schedule repository and the charge
// fairness evaluator built on top of it.
package pricing

import "github.com/shopspring/decimal"

// RateRow mirrors the bundled fee-schedule Parquet schema for one code.
// Rates arrive as float64 dollars and are converted to decimal on load.
type RateRow struct {
	Code            string   `parquet:"code"`
	Description     string   `parquet:"description"`
	NonFacilityRate *float64 `parquet:"non_facility_rate,optional"`
	FacilityRate    *float64 `parquet:"facility_rate,optional"`
	WorkRVU         *float64 `parquet:"work_rvu,optional"`
	PERVU           *float64 `parquet:"pe_rvu,optional"`
	MPRVU           *float64 `parquet:"mp_rvu,optional"`
	GlobalDays      *string  `parquet:"global_days,optional"`
	StatusCode      *string  `parquet:"status_code,optional"`
}

// Rate is the in-memory fee-schedule entry for one procedure code.
type Rate struct {
	Code            string
	Description     string
	NonFacilityRate *decimal.Decimal
	FacilityRate    *decimal.Decimal
	WorkRVU         float64
	PERVU           float64
	MPRVU           float64
	GlobalDays      string
	StatusCode      string
}

func (r *RateRow) toRate() Rate {
	rate := Rate{
		Code:            r.Code,
		Description:     r.Description,
		NonFacilityRate: optDecimal(r.NonFacilityRate),
		FacilityRate:    optDecimal(r.FacilityRate),
	}
	if r.WorkRVU != nil {
		rate.WorkRVU = *r.WorkRVU
	}
	if r.PERVU != nil {
		rate.PERVU = *r.PERVU
	}
	if r.MPRVU != nil {
		rate.MPRVU = *r.MPRVU
	}
	if r.GlobalDays != nil {
		rate.GlobalDays = *r.GlobalDays
	}
	if r.StatusCode != nil {
		rate.StatusCode = *r.StatusCode
	}
	return rate
}

func optDecimal(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v).Round(2)
	return &d
}
