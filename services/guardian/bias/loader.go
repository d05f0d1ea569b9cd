// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package bias

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// ReadFile loads a dataset from a file, dispatching on the extension.
//
// Supported extensions: .csv, .json, .yaml, .yml, .xlsx.
func ReadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	defer f.Close()

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return Read(f, ext)
}

// Read loads a dataset from a reader in the named format.
//
// Inputs:
//
//	r - Source data.
//	format - One of "csv", "json", "yaml", "yml", "xlsx".
//
// Outputs:
//
//	*Dataset - Parsed dataset with column order preserved where the
//	    format has one (CSV/XLSX header order; sorted keys for JSON/YAML).
//	error - Non-nil on unsupported format or malformed input.
func Read(r io.Reader, format string) (*Dataset, error) {
	switch strings.ToLower(format) {
	case "csv":
		return ReadCSV(r)
	case "json":
		return ReadJSON(r)
	case "yaml", "yml":
		return ReadYAML(r)
	case "xlsx":
		return ReadXLSX(r)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q (want csv, json, yaml, or xlsx)", format)
	}
}

// ReadCSV parses a delimited-text dataset. The first record is the header;
// ragged rows fail the read (encoding/csv enforces consistent field counts).
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv dataset is empty (no header row)")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
		if columns[i] == "" {
			return nil, fmt.Errorf("csv header column %d is empty", i+1)
		}
	}

	ds := &Dataset{Columns: columns}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(ds.Rows)+2, err)
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = record[i]
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

// ReadJSON parses a dataset from a JSON array of flat objects. Columns are
// the sorted union of keys; absent keys become empty cells.
func ReadJSON(r io.Reader) (*Dataset, error) {
	var records []map[string]any
	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode json dataset: %w", err)
	}
	return fromRecords(records)
}

// ReadYAML parses a dataset from a YAML list of flat mappings. Columns are
// the sorted union of keys; absent keys become empty cells.
func ReadYAML(r io.Reader) (*Dataset, error) {
	var records []map[string]any
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode yaml dataset: %w", err)
	}
	return fromRecords(records)
}

// ReadXLSX parses the first sheet of a spreadsheet. The first row is the
// header; short rows are padded with empty cells (trailing empty cells are
// dropped by the xlsx format itself).
func ReadXLSX(r io.Reader) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx dataset: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx dataset has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("xlsx sheet %q is empty (no header row)", sheets[0])
	}

	columns := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		columns[i] = strings.TrimSpace(h)
		if columns[i] == "" {
			return nil, fmt.Errorf("xlsx header column %d is empty", i+1)
		}
	}

	ds := &Dataset{Columns: columns}
	for _, record := range rows[1:] {
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

// FromRecords builds a dataset from in-memory key-value records, as when
// rows arrive inline in an API request instead of from a file. Columns
// are the sorted union of keys; absent keys become empty cells.
func FromRecords(records []map[string]any) (*Dataset, error) {
	return fromRecords(records)
}

// fromRecords builds a dataset from decoded key-value records.
func fromRecords(records []map[string]any) (*Dataset, error) {
	seen := make(map[string]struct{})
	var columns []string
	for _, rec := range records {
		for k := range rec {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				columns = append(columns, k)
			}
		}
	}
	sort.Strings(columns)
	if len(columns) == 0 {
		return nil, fmt.Errorf("dataset has no columns")
	}

	ds := &Dataset{Columns: columns}
	for _, rec := range records {
		row := make(Row, len(columns))
		for _, col := range columns {
			row[col] = cellString(rec[col])
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

// cellString normalizes a decoded scalar to its string cell value.
// Whole-number floats render without a trailing ".0" so JSON's float64
// decoding of 1 still matches a CSV cell containing "1".
func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
