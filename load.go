package cog

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// LoadCSV reads a dataset from a CSV file with a header row.
// See [ReadCSV] for the column rules.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cog: open dataset: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses a CSV table. Columns with any non-numeric cell are dropped;
// the remaining column named Target becomes the label and must hold integral
// values. Every other kept column becomes a feature, in file order.
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cog: read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, ErrEmptyDataset
	}
	header, rows := records[0], records[1:]

	// Parse every column up front; a column is numeric only if all of its
	// non-empty cells parse.
	cols := make([][]float64, len(header))
	numeric := make([]bool, len(header))
	missing := make([]int, len(header))
	for j := range header {
		cols[j] = make([]float64, len(rows))
		numeric[j] = true
		missing[j] = -1
		for i, rec := range rows {
			cell := strings.TrimSpace(rec[j])
			if cell == "" {
				if missing[j] < 0 {
					missing[j] = i
				}
				cols[j][i] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				numeric[j] = false
				break
			}
			cols[j][i] = v
		}
	}

	target := -1
	var features []int
	for j, name := range header {
		if !numeric[j] {
			continue
		}
		if missing[j] >= 0 {
			return nil, fmt.Errorf("%w: column %q row %d", ErrMissingValue, name, missing[j]+1)
		}
		if strings.TrimSpace(name) == TargetColumn {
			target = j
			continue
		}
		features = append(features, j)
	}
	if target < 0 {
		return nil, ErrMissingTarget
	}

	ds := &Dataset{
		Columns:  make([]string, len(features)),
		Features: make([][]float64, len(rows)),
		Labels:   make([]int, len(rows)),
	}
	for k, j := range features {
		ds.Columns[k] = strings.TrimSpace(header[j])
	}
	for i := range rows {
		v := cols[target][i]
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("%w: non-integral %s %g at row %d", ErrUnknownLabel, TargetColumn, v, i+1)
		}
		ds.Labels[i] = int(v)
		row := make([]float64, len(features))
		for k, j := range features {
			row[k] = cols[j][i]
		}
		ds.Features[i] = row
	}
	return ds, nil
}
