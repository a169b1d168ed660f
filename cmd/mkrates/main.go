// mkrates converts a CSV fee schedule into the Parquet format the audit tool
// loads at startup.
// Expected CSV header: code,description,non_facility_rate,facility_rate,
// work_rvu,pe_rvu,mp_rvu,global_days,status_code
// Usage: go run ./cmd/mkrates --in pfs.csv --out testdata/rates.parquet
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	goparquet "github.com/parquet-go/parquet-go"

	"github.com/gyeh/billaudit/internal/pricing"
)

func main() {
	in := flag.String("in", "", "input CSV fee schedule")
	out := flag.String("out", "testdata/rates.parquet", "output parquet")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "--in is required")
		os.Exit(1)
	}

	f, err := os.Open(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open input: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		fmt.Fprintf(os.Stderr, "read header: %v\n", err)
		os.Exit(1)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"code", "description"} {
		if _, ok := col[required]; !ok {
			fmt.Fprintf(os.Stderr, "missing column %q\n", required)
			os.Exit(1)
		}
	}

	of, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create output: %v\n", err)
		os.Exit(1)
	}
	writer := goparquet.NewGenericWriter[pricing.RateRow](of)

	var rows int
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "read csv: %v\n", err)
			os.Exit(1)
		}

		row := pricing.RateRow{
			Code:            field(record, col, "code"),
			Description:     field(record, col, "description"),
			NonFacilityRate: floatField(record, col, "non_facility_rate"),
			FacilityRate:    floatField(record, col, "facility_rate"),
			WorkRVU:         floatField(record, col, "work_rvu"),
			PERVU:           floatField(record, col, "pe_rvu"),
			MPRVU:           floatField(record, col, "mp_rvu"),
			GlobalDays:      strField(record, col, "global_days"),
			StatusCode:      strField(record, col, "status_code"),
		}
		if row.Code == "" {
			continue
		}
		if _, err := writer.Write([]pricing.RateRow{row}); err != nil {
			fmt.Fprintf(os.Stderr, "write row: %v\n", err)
			os.Exit(1)
		}
		rows++
	}

	if err := writer.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close writer: %v\n", err)
		os.Exit(1)
	}
	if err := of.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d codes to %s\n", rows, *out)
}

func field(record []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func strField(record []string, col map[string]int, name string) *string {
	v := field(record, col, name)
	if v == "" {
		return nil
	}
	return &v
}

func floatField(record []string, col map[string]int, name string) *float64 {
	v := field(record, col, name)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}
