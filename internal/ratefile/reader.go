// Package ratefile reads the bundled fee-schedule dataset from Parquet.
package ratefile

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/billaudit/internal/pricing"
)

// Reader wraps a parquet GenericReader for streaming fee-schedule rows.
// It satisfies pricing.RowReader.
type Reader struct {
	file   *os.File
	reader *parquet.GenericReader[pricing.RateRow]
}

// Open opens a fee-schedule Parquet file and returns a streaming Reader.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rate file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat rate file: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	r := parquet.NewGenericReader[pricing.RateRow](pf)
	return &Reader{file: f, reader: r}, nil
}

// NumRows returns the total number of rows in the file.
func (r *Reader) NumRows() int64 {
	return r.reader.NumRows()
}

// Read reads up to len(rows) records into the provided slice.
// Returns the number of rows read and io.EOF when done.
func (r *Reader) Read(rows []pricing.RateRow) (int, error) {
	n, err := r.reader.Read(rows)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("read rate rows: %w", err)
	}
	return n, err
}

// Schema returns the Parquet schema for validation.
func (r *Reader) Schema() *parquet.Schema {
	return r.reader.Schema()
}

// Close releases all resources.
func (r *Reader) Close() error {
	if err := r.reader.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}
