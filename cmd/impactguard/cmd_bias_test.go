// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/AleutianAI/ImpactGuard/services/guardian/bias"
)

// captureStdout runs fn with os.Stdout redirected and returns what it
// printed.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe failed: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fnErr := fn()
	_ = w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read captured stdout: %v", err)
	}
	return string(out), fnErr
}

func TestBiasAnalyzeCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loans.csv")
	csv := "group,approved\nA,1\nA,0\nB,1\nB,1\n"
	if err := os.WriteFile(path, []byte(csv), 0600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	biasOutcome = "approved"
	biasProtected = []string{"group"}
	biasPositive = ""
	biasJSON = true
	t.Cleanup(func() {
		biasOutcome, biasProtected, biasPositive, biasJSON = "", nil, "", false
	})

	out, err := captureStdout(t, func() error {
		return runBiasAnalyze(biasAnalyzeCmd, []string{path})
	})
	if err != nil {
		t.Fatalf("runBiasAnalyze failed: %v", err)
	}

	var decoded struct {
		RowCount int                                `json:"row_count"`
		Results  map[string]bias.AttributeDisparity `json:"results"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if decoded.RowCount != 4 {
		t.Errorf("row_count = %d, want 4", decoded.RowCount)
	}
	if decoded.Results["group"].MaxDisparity != 0.5 {
		t.Errorf("MaxDisparity = %v, want 0.5", decoded.Results["group"].MaxDisparity)
	}
}

func TestBiasAnalyzeCommand_MissingFile(t *testing.T) {
	biasOutcome = "approved"
	biasProtected = []string{"group"}
	t.Cleanup(func() { biasOutcome, biasProtected = "", nil })

	if err := runBiasAnalyze(biasAnalyzeCmd, []string{"/does/not/exist.csv"}); err == nil {
		t.Error("expected error for missing dataset file")
	}
}

func TestBiasSampleCommand_WritesCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.csv")

	sampleRows = 25
	sampleSeed = 9
	sampleOutput = path
	t.Cleanup(func() { sampleRows, sampleSeed, sampleOutput = 500, 42, "" })

	if _, err := captureStdout(t, func() error {
		return runBiasSample(biasSampleCmd, nil)
	}); err != nil {
		t.Fatalf("runBiasSample failed: %v", err)
	}

	ds, err := bias.ReadFile(path)
	if err != nil {
		t.Fatalf("read generated csv: %v", err)
	}
	if len(ds.Rows) != 25 {
		t.Errorf("len(rows) = %d, want 25", len(ds.Rows))
	}
	if !ds.HasColumn(bias.SampleColApproved) {
		t.Errorf("generated dataset missing %q column", bias.SampleColApproved)
	}
}
