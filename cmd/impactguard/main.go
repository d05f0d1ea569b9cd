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
	"log"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/ImpactGuard/pkg/logging"
)

var (
	verbose bool
	logDir  string

	cliLogger *logging.Logger

	rootCmd = &cobra.Command{
		Use:   "impactguard",
		Short: "A CLI for AI bias auditing, red-team scanning, and carbon impact tracking",
		Long: `ImpactGuard audits AI systems from the command line: statistical-parity
bias analysis over tabular datasets, OWASP LLM Top 10 red-team scans
against live or simulated endpoints, and carbon impact estimation.`,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "",
		"Also write logs to this directory (e.g. ~/.impactguard/logs)")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := logging.LevelWarn
		if verbose {
			level = logging.LevelDebug
		}
		cliLogger = logging.New(logging.Config{
			Level:   level,
			LogDir:  logDir,
			Service: "impactguard",
		})
		slog.SetDefault(cliLogger.Slog())
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if cliLogger != nil {
			_ = cliLogger.Close()
		}
	}
}
