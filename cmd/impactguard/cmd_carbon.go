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
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/ImpactGuard/services/guardian/carbon"
	"github.com/AleutianAI/ImpactGuard/services/guardian/datatypes"
)

var (
	carbonProject  string
	carbonSessions int
	carbonSeed     int64
	carbonJSON     bool
)

var carbonCmd = &cobra.Command{
	Use:   "carbon",
	Short: "Estimate the carbon impact of AI workloads",
}

var carbonReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Simulate tracking sessions and print the impact report",
	Long: `Run simulated emission-tracking sessions and print the resulting
impact report: total emissions, derived energy consumption, the
trees-equivalent offset figure, and the mitigation catalog.

Measurements are mock samples; integrate a real meter for production
figures.

Examples:
  impactguard carbon report
  impactguard carbon report --sessions 5 --seed 7 --json`,
	Args: cobra.NoArgs,
	RunE: runCarbonReport,
}

var carbonMitigationsCmd = &cobra.Command{
	Use:   "mitigations",
	Short: "List the emission-reduction strategy catalog",
	Args:  cobra.NoArgs,
	RunE:  runCarbonMitigations,
}

func init() {
	carbonReportCmd.Flags().StringVar(&carbonProject, "project", "impactguard",
		"Project name for the report")
	carbonReportCmd.Flags().IntVar(&carbonSessions, "sessions", 3,
		"Number of simulated tracking sessions")
	carbonReportCmd.Flags().Int64Var(&carbonSeed, "seed", 0,
		"RNG seed for the mock sampler (0 = time-based)")
	carbonReportCmd.Flags().BoolVar(&carbonJSON, "json", false,
		"Output as JSON for scripting")

	carbonMitigationsCmd.Flags().BoolVar(&carbonJSON, "json", false,
		"Output as JSON for scripting")

	carbonCmd.AddCommand(carbonReportCmd)
	carbonCmd.AddCommand(carbonMitigationsCmd)
	rootCmd.AddCommand(carbonCmd)
}

func runCarbonReport(cmd *cobra.Command, args []string) error {
	if carbonSessions < 1 {
		return fmt.Errorf("--sessions must be at least 1")
	}

	var sampler carbon.Sampler
	if carbonSeed != 0 {
		sampler = carbon.NewRandomSampler(carbonSeed)
	}
	tracker := carbon.NewTracker(carbonProject, sampler)

	for i := 0; i < carbonSessions; i++ {
		if _, err := tracker.StartSession(); err != nil {
			return err
		}
		if _, err := tracker.StopSession(); err != nil {
			return err
		}
	}

	report := tracker.Report()
	if carbonJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	fmt.Println("Carbon Impact Report")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Project: %s\n", report.Project)
	fmt.Printf("Sessions measured:   %d\n", len(report.Measurements))
	fmt.Printf("Total emissions:     %.4f kg CO2eq\n", report.TotalEmissionsKg)
	fmt.Printf("Energy consumption:  %.4f kWh\n", report.EnergyConsumptionKWh)
	fmt.Printf("Trees equivalent:    %.1f trees (one day of absorption)\n", report.TreesEquivalent)

	fmt.Println()
	fmt.Println("Mitigation Strategies:")
	printMitigations(report.MitigationStrategies)
	return nil
}

func runCarbonMitigations(cmd *cobra.Command, args []string) error {
	strategies := carbon.MitigationCatalog()
	if carbonJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(strategies)
	}
	printMitigations(strategies)
	return nil
}

func printMitigations(strategies []datatypes.MitigationStrategy) {
	for _, s := range strategies {
		fmt.Printf("  %s [%s]\n", s.Name, s.Difficulty)
		fmt.Printf("    %s\n", s.Description)
		fmt.Printf("    Potential savings: %s\n", s.PotentialSavings)
	}
}
