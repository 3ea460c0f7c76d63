// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ai-trainer",
	Short: "Deterministic D-GBDT trainer",
	Long:  `ai-trainer fits a reputation model from a telemetry dataset, reproducibly.`,
}

func main() {
	rootCmd.AddCommand(trainCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
