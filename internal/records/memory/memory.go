// Package memory is a record source backed by a CSV file on disk, used for
// local development and tests.
package memory

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"payportal/internal/core"
)

type Store struct {
	tbl core.Table
}

// New wraps an already-cleaned table.
func New(tbl core.Table) *Store {
	return &Store{tbl: tbl}
}

// NewFromDir loads trips.csv from the given directory. A missing or broken
// file yields an empty store rather than an error so a dev server still
// starts.
func NewFromDir(dir string) *Store {
	tbl, err := readCSV(filepath.Join(dir, "trips.csv"))
	if err != nil {
		return &Store{}
	}
	return &Store{tbl: tbl}
}

// Fetch returns the seeded table. The table is treated as immutable, so the
// same value is handed out every time.
func (s *Store) Fetch(_ context.Context) (core.Table, error) {
	return s.tbl, nil
}

func readCSV(path string) (core.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Table{}, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	all, err := cr.ReadAll()
	if err != nil {
		return core.Table{}, fmt.Errorf("read %s: %w", path, err)
	}
	if len(all) == 0 {
		return core.Table{}, nil
	}
	return core.Clean(all[0], all[1:]), nil
}
