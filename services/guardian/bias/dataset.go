// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package bias implements statistical-parity disparity analysis over
// tabular datasets.
//
// The analyzer partitions a dataset by one or more protected attributes
// (categorical columns such as gender or ethnicity), computes the
// positive-outcome rate of every group against a binary outcome column,
// and reports each group's gap from the best-performing group:
//
//	rate(g)      = |{rows in g with outcome == positive}| / |g|
//	baseline     = max over groups of rate(g)
//	disparity(g) = baseline - rate(g)
//
// All failures are typed errors (SchemaError, InvalidOutcomeCardinalityError,
// EmptyGroupError) so callers can map them to API responses without string
// matching. The analysis is a pure function: it never mutates the dataset
// and holds no state between calls.
package bias

import (
	"fmt"
	"sort"
	"strconv"
)

// Row maps column names to string-encoded cell values.
//
// All values are kept as strings regardless of source encoding. Numeric
// outcomes such as 0/1 are compared numerically where it matters (see
// positiveValue), so "1" and "1.0" remain distinct labels but order
// correctly against each other.
type Row map[string]string

// Dataset is an ordered collection of rows sharing a column schema.
//
// Columns preserves the column order of the source file so previews and
// serialized output remain stable. Rows are never mutated by the analyzer.
type Dataset struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// HasColumn reports whether the dataset schema contains the named column.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// DistinctValues returns the distinct values observed in a column, in
// first-seen order.
//
// Inputs:
//
//	column - Column name. Must exist in the schema.
//
// Outputs:
//
//	[]string - Distinct values in order of first appearance.
//	error - *SchemaError if the column is absent.
func (d *Dataset) DistinctValues(column string) ([]string, error) {
	if !d.HasColumn(column) {
		return nil, &SchemaError{Column: column}
	}
	seen := make(map[string]struct{})
	var values []string
	for _, row := range d.Rows {
		v := row[column]
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			values = append(values, v)
		}
	}
	return values, nil
}

// CategoricalColumns returns the columns whose distinct-value count is at
// most maxCardinality, in schema order.
//
// This mirrors how the dashboard offers protected-attribute candidates:
// high-cardinality columns (free text, identifiers) are poor grouping keys
// and are filtered out.
func (d *Dataset) CategoricalColumns(maxCardinality int) []string {
	var cols []string
	for _, c := range d.Columns {
		values, err := d.DistinctValues(c)
		if err != nil {
			continue
		}
		if len(values) > 0 && len(values) <= maxCardinality {
			cols = append(cols, c)
		}
	}
	return cols
}

// positiveValue resolves which of the two observed outcome values counts as
// the positive outcome.
//
// When requested is non-empty it must be one of the observed values. When
// empty, the larger value wins: numerically when both values parse as
// floats, lexicographically otherwise. With the conventional 0/1 encoding
// this selects "1", matching the mean-based computation the analyzer
// replaces.
func positiveValue(column, requested string, observed []string) (string, error) {
	if requested != "" {
		for _, v := range observed {
			if v == requested {
				return requested, nil
			}
		}
		return "", &InvalidOutcomeCardinalityError{
			Column:   column,
			Observed: append([]string(nil), observed...),
			Reason:   fmt.Sprintf("designated positive value %q not observed in column", requested),
		}
	}

	a, b := observed[0], observed[1]
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		if fa > fb {
			return a, nil
		}
		return b, nil
	}
	if a > b {
		return a, nil
	}
	return b, nil
}

// sortedCopy returns a sorted copy of values without touching the input.
func sortedCopy(values []string) []string {
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}
