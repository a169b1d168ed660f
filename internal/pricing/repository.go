package pricing

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// RowReader streams fee-schedule rows in batches, returning io.EOF when done.
// Satisfied by ratefile.Reader.
type RowReader interface {
	Read(rows []RateRow) (int, error)
}

const loadBatchSize = 1024

// Repository is the read-only code → rate lookup table. It is constructed
// once at startup and injected into every consumer; after a successful Load
// it is safe for unsynchronized concurrent reads.
type Repository struct {
	mu     sync.Mutex
	loaded atomic.Bool
	rates  map[string]Rate
}

// NewRepository returns an empty, unloaded repository.
func NewRepository() *Repository {
	return &Repository{rates: make(map[string]Rate)}
}

// NewStaticRepository builds an already-loaded repository from a fixed rate
// table. Intended for tests and fake fee schedules.
func NewStaticRepository(rates map[string]Rate) *Repository {
	r := &Repository{rates: rates}
	r.loaded.Store(true)
	return r
}

// Load populates the repository from the reader. Repeated calls after the
// first success are no-ops. Load is not expected to be called concurrently
// with itself, but the mutex makes a stray second caller wait rather than
// race.
func (r *Repository) Load(reader RowReader) error {
	if r.loaded.Load() {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded.Load() {
		return nil
	}

	buf := make([]RateRow, loadBatchSize)
	for {
		n, err := reader.Read(buf)
		for i := 0; i < n; i++ {
			row := &buf[i]
			if row.Code == "" {
				continue
			}
			r.rates[row.Code] = row.toRate()
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("load fee schedule: %w", err)
		}
	}

	r.loaded.Store(true)
	return nil
}

// Loaded reports whether reference data is available.
func (r *Repository) Loaded() bool {
	return r.loaded.Load()
}

// Lookup returns the fee-schedule entry for a procedure code.
func (r *Repository) Lookup(code string) (Rate, bool) {
	if !r.loaded.Load() {
		return Rate{}, false
	}
	rate, ok := r.rates[code]
	return rate, ok
}

// Len returns the number of loaded codes.
func (r *Repository) Len() int {
	return len(r.rates)
}
