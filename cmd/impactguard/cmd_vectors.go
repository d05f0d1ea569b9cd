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

	"github.com/AleutianAI/ImpactGuard/services/guardian/redteam"
)

var (
	vectorsCategory string
	vectorsJSON     bool
	vectorsFull     bool
)

var vectorsCmd = &cobra.Command{
	Use:   "vectors",
	Short: "List the built-in red-team test vectors",
	Long: `List the test vector catalog: the OWASP Top 10 for LLM Applications
(llm-01 through llm-10) plus auxiliary NIST, fairness, privacy, and
exploit vectors.

Examples:
  impactguard vectors
  impactguard vectors --category owasp --full
  impactguard vectors --json`,
	Args: cobra.NoArgs,
	RunE: runVectors,
}

func init() {
	vectorsCmd.Flags().StringVar(&vectorsCategory, "category", "",
		"Filter by category: owasp, nist, fairness, privacy, exploit")
	vectorsCmd.Flags().BoolVar(&vectorsJSON, "json", false,
		"Output as JSON for scripting")
	vectorsCmd.Flags().BoolVar(&vectorsFull, "full", false,
		"Include descriptions and prompt patterns")
	rootCmd.AddCommand(vectorsCmd)
}

func runVectors(cmd *cobra.Command, args []string) error {
	vectors := redteam.Catalog()
	if vectorsCategory != "" {
		vectors = redteam.VectorsByCategory(vectorsCategory)
		if len(vectors) == 0 {
			return fmt.Errorf("unknown vector category %q", vectorsCategory)
		}
	}

	if vectorsJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(vectors)
	}

	fmt.Printf("Test Vectors (%d)\n", len(vectors))
	fmt.Println(strings.Repeat("=", 60))
	for _, vector := range vectors {
		fmt.Printf("%-22s %-9s %-8s %s\n",
			vector.ID, vector.Category, vector.Severity, vector.Name)
		if vectorsFull {
			if vector.Description != "" {
				fmt.Printf("    %s\n", vector.Description)
			}
			for _, pattern := range vector.Patterns {
				fmt.Printf("    - %s\n", pattern)
			}
			fmt.Println()
		}
	}
	return nil
}
