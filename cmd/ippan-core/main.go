// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ippan-core",
	Short: "Tools for working with IPPAN round-pipeline artifacts",
	Long: `ippan-core provides offline tools for the round pipeline:
validating a D-GBDT reputation model's content hash, and dumping the
inference trace a model produces over a feature vector, for debugging and
cross-node determinism comparison.`,
}

func main() {
	rootCmd.AddCommand(
		verifyModelHashCmd(),
		dumpInferenceCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
