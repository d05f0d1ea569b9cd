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
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/ImpactGuard/services/guardian/bias"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	// Analyze flags
	biasOutcome   string
	biasProtected []string
	biasPositive  string
	biasJSON      bool

	// Sample flags
	sampleRows   int
	sampleSeed   int64
	sampleOutput string
)

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

var biasCmd = &cobra.Command{
	Use:   "bias",
	Short: "Statistical-parity bias analysis over tabular datasets",
}

var biasAnalyzeCmd = &cobra.Command{
	Use:   "analyze [dataset file]",
	Short: "Compute per-group outcome rates and disparities",
	Long: `Analyze a tabular dataset for statistical-parity disparities.

The dataset format is taken from the file extension (.csv, .json, .yaml,
.xlsx). For each protected attribute, rows are partitioned by the
attribute's value, each group's positive-outcome rate is computed, and
every group is compared against the best-performing group.

Examples:
  impactguard bias analyze loans.csv --outcome Approved --protected Gender,Ethnicity
  impactguard bias analyze hiring.xlsx --outcome hired --protected gender --positive yes --json`,
	Args: cobra.ExactArgs(1),
	RunE: runBiasAnalyze,
}

var biasSampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Generate the built-in biased approval dataset",
	Long: `Generate a synthetic loan-approval dataset with known bias injected
into the Gender, Age_Group, and Ethnicity columns. Useful for trying out
'bias analyze' and for demos.`,
	Args: cobra.NoArgs,
	RunE: runBiasSample,
}

func init() {
	biasAnalyzeCmd.Flags().StringVar(&biasOutcome, "outcome", "",
		"Binary outcome column (required)")
	biasAnalyzeCmd.Flags().StringSliceVar(&biasProtected, "protected", nil,
		"Protected attribute columns to analyze (required)")
	biasAnalyzeCmd.Flags().StringVar(&biasPositive, "positive", "",
		"Outcome value to count as positive (default: the larger observed value)")
	biasAnalyzeCmd.Flags().BoolVar(&biasJSON, "json", false,
		"Output as JSON for scripting")
	_ = biasAnalyzeCmd.MarkFlagRequired("outcome")
	_ = biasAnalyzeCmd.MarkFlagRequired("protected")

	biasSampleCmd.Flags().IntVar(&sampleRows, "rows", 500,
		"Number of rows to generate")
	biasSampleCmd.Flags().Int64Var(&sampleSeed, "seed", 42,
		"RNG seed; the same seed always yields the same dataset")
	biasSampleCmd.Flags().StringVar(&sampleOutput, "output", "",
		"Write CSV to this file instead of stdout")

	biasCmd.AddCommand(biasAnalyzeCmd)
	biasCmd.AddCommand(biasSampleCmd)
	rootCmd.AddCommand(biasCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runBiasAnalyze(cmd *cobra.Command, args []string) error {
	ds, err := bias.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	results, err := bias.Analyze(ds, bias.AnalysisRequest{
		ProtectedAttributes: biasProtected,
		OutcomeColumn:       biasOutcome,
		PositiveValue:       biasPositive,
	})
	if err != nil {
		return err
	}

	if biasJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string]any{
			"file":           args[0],
			"row_count":      len(ds.Rows),
			"outcome_column": biasOutcome,
			"results":        results,
		})
	}

	printBiasResults(args[0], len(ds.Rows), results)
	return nil
}

func printBiasResults(file string, rows int, results map[string]bias.AttributeDisparity) {
	fmt.Println("Bias Analysis")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Dataset: %s (%d rows)\n", file, rows)

	attrs := make([]string, 0, len(results))
	for attr := range results {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)

	for _, attr := range attrs {
		result := results[attr]
		fmt.Println()
		fmt.Printf("%s (positive outcome: %q)\n", attr, result.PositiveValue)

		groups := make([]string, 0, len(result.Outcomes))
		for group := range result.Outcomes {
			groups = append(groups, group)
		}
		sort.Strings(groups)

		for _, group := range groups {
			marker := ""
			if result.Disparities[group] == result.MaxDisparity && result.MaxDisparity > 0 {
				marker = "  <-- largest gap"
			}
			fmt.Printf("  %-20s rate %.4f  disparity %.4f  (n=%d)%s\n",
				group, result.Outcomes[group], result.Disparities[group],
				result.GroupSizes[group], marker)
		}
		fmt.Printf("  max disparity: %.4f\n", result.MaxDisparity)
	}
}

func runBiasSample(cmd *cobra.Command, args []string) error {
	if sampleRows < 1 {
		return fmt.Errorf("--rows must be at least 1")
	}
	ds := bias.SampleDataset(sampleRows, sampleSeed)

	out := os.Stdout
	if sampleOutput != "" {
		f, err := os.Create(sampleOutput)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	if err := w.Write(ds.Columns); err != nil {
		return err
	}
	record := make([]string, len(ds.Columns))
	for _, row := range ds.Rows {
		for i, col := range ds.Columns {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	if sampleOutput != "" {
		fmt.Printf("Wrote %d rows to %s\n", len(ds.Rows), sampleOutput)
	}
	return nil
}
