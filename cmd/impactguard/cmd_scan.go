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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/ImpactGuard/pkg/validation"
	"github.com/AleutianAI/ImpactGuard/services/guardian/datatypes"
	"github.com/AleutianAI/ImpactGuard/services/guardian/redteam"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	// Target flags
	scanFormat string
	scanURL    string
	scanAPIKey string
	scanModel  string

	// Run flags
	scanVectors     []string
	scanAllPatterns bool
	scanSeed        int64
	scanConcurrency int
	scanRate        float64

	// Output flags
	scanJSON  bool
	scanQuiet bool
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

var scanCmd = &cobra.Command{
	Use:   "scan [target name]",
	Short: "Run a red-team assessment against an LLM endpoint",
	Long: `Probe an LLM endpoint with adversarial prompts and evaluate the
responses. With --format simulation (the default) no endpoint is
contacted; deterministic synthetic responses exercise the evaluator.

Examples:
  impactguard scan "Support Assistant"
  impactguard scan ChatBot --format openai --url https://llm.example.com/v1 --api-key $KEY
  impactguard scan ChatBot --format generic --url https://bot.example.com/generate --vectors llm-01,llm-06
  impactguard scan ChatBot --all-patterns --rate 2 --json

The exit code is 1 when vulnerabilities are found, 0 otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanFormat, "format", datatypes.APIFormatSimulation,
		"Target API format: openai, generic, simulation")
	scanCmd.Flags().StringVar(&scanURL, "url", "",
		"Endpoint URL (required unless --format simulation)")
	scanCmd.Flags().StringVar(&scanAPIKey, "api-key", "",
		"API key for the endpoint (or set IMPACTGUARD_TARGET_API_KEY)")
	scanCmd.Flags().StringVar(&scanModel, "model", "",
		"Model name for openai-format endpoints")

	scanCmd.Flags().StringSliceVar(&scanVectors, "vectors", nil,
		"Test vector ids to run (default: the full OWASP set)")
	scanCmd.Flags().BoolVar(&scanAllPatterns, "all-patterns", false,
		"Probe every prompt pattern instead of one per vector")
	scanCmd.Flags().Int64Var(&scanSeed, "seed", 0,
		"RNG seed for pattern selection (0 = time-based)")
	scanCmd.Flags().IntVar(&scanConcurrency, "concurrency", 0,
		"Parallel probes (0 = default 4)")
	scanCmd.Flags().Float64Var(&scanRate, "rate", 0,
		"Probes per second across all workers (0 = unthrottled)")

	scanCmd.Flags().BoolVar(&scanJSON, "json", false,
		"Output the full report as JSON")
	scanCmd.Flags().BoolVar(&scanQuiet, "quiet", false,
		"Only exit code, no output")

	rootCmd.AddCommand(scanCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runScan(cmd *cobra.Command, args []string) error {
	name, err := validation.SanitizeTargetName(args[0])
	if err != nil {
		return err
	}

	apiKey := scanAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("IMPACTGUARD_TARGET_API_KEY")
	}

	target := datatypes.Target{
		Name:      name,
		APIFormat: scanFormat,
		URL:       scanURL,
		APIKey:    apiKey,
		Model:     scanModel,
	}
	if target.APIFormat != datatypes.APIFormatSimulation {
		if err := validation.ValidateEndpointURL(target.URL); err != nil {
			return err
		}
	}

	prober, err := redteam.NewProber(target)
	if err != nil {
		return err
	}

	cfg := redteam.RunConfig{
		AllPatterns: scanAllPatterns,
		Seed:        scanSeed,
		Concurrency: scanConcurrency,
		RateLimit:   rate.Limit(scanRate),
	}
	for _, id := range scanVectors {
		vector, ok := redteam.FindVector(id)
		if !ok {
			return fmt.Errorf("unknown test vector %q", id)
		}
		cfg.Vectors = append(cfg.Vectors, vector)
	}
	if !scanQuiet && !scanJSON {
		cfg.OnProgress = func(completed, total int) {
			fmt.Fprintf(os.Stderr, "\rProbing... %d/%d", completed, total)
			if completed == total {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	// Ctrl-C aborts the run; the partial report is still printed.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, runErr := redteam.Run(ctx, prober, target, cfg)
	if report == nil {
		return runErr
	}

	if !scanQuiet {
		if scanJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(report); err != nil {
				return err
			}
		} else {
			printScanReport(report)
		}
	}

	if report.Summary.VulnerabilitiesFound > 0 {
		os.Exit(1)
	}
	return nil
}

func printScanReport(report *datatypes.Report) {
	fmt.Println("Red-Team Assessment")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Target: %s\n", report.Target)
	if report.Cancelled {
		fmt.Println("(run cancelled; partial results)")
	}

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  Probes run:       %d\n", report.Summary.TotalProbes)
	fmt.Printf("  Vulnerable:       %d\n", report.Summary.VulnerabilitiesFound)
	fmt.Printf("  Secure:           %d\n", report.Summary.SecureResponses)
	fmt.Printf("  Needs review:     %d\n", report.Summary.NeedsReview)
	fmt.Printf("  Inconclusive:     %d\n", report.Summary.Inconclusive)
	fmt.Printf("  Risk score:       %d\n", report.Summary.RiskScore)

	if len(report.Findings) > 0 {
		fmt.Println()
		fmt.Println("Findings:")
		for _, finding := range report.Findings {
			fmt.Printf("  %-8s [%s] %s\n", finding.ID, finding.Severity, finding.VectorName)
			fmt.Printf("           %s\n", finding.Details)
		}
	}
}
