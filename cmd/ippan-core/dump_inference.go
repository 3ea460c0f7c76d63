// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmrl789/ippan-core/determinism"
	"github.com/dmrl789/ippan-core/features"
	"github.com/dmrl789/ippan-core/gbdt"
	"github.com/dmrl789/ippan-core/hashtimer"
	"github.com/spf13/cobra"
)

func dumpInferenceCmd() *cobra.Command {
	var (
		telemetryPath string
		modelPath     string
		medianUs      int64
		roundTag      string
	)

	cmd := &cobra.Command{
		Use:   "dump-inference",
		Short: "Run feature extraction and D-GBDT scoring and print the resulting artifact",
		Long: `Reads a telemetry snapshot and a model file, extracts feature vectors
relative to the given median timestamp, scores every validator, and prints
the resulting determinism artifact as canonical JSON. Two nodes given the
same telemetry, median, and model should print byte-identical output.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(telemetryPath)
			if err != nil {
				return fmt.Errorf("read telemetry file: %w", err)
			}
			var telemetry map[string]features.Telemetry
			if err := json.Unmarshal(raw, &telemetry); err != nil {
				return fmt.Errorf("parse telemetry file: %w", err)
			}

			model, err := gbdt.LoadModelFile(modelPath, "")
			if err != nil {
				return err
			}

			round := hashtimer.Derive(hashtimer.ContextRound, medianUs, []byte(roundTag), nil, nil, nil)

			artifact, err := determinism.Build(telemetry, medianUs, model, round)
			if err != nil {
				return err
			}
			out, err := determinism.JSON(artifact)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&telemetryPath, "telemetry", "", "path to a JSON file mapping validator id to telemetry")
	cmd.Flags().StringVar(&modelPath, "model", "", "path to a D-GBDT model file")
	cmd.Flags().Int64Var(&medianUs, "median-us", 0, "network median IPPAN Time in microseconds")
	cmd.Flags().StringVar(&roundTag, "round-tag", "cli", "domain tag bound into the derived round HashTimer")
	cmd.MarkFlagRequired("telemetry")
	cmd.MarkFlagRequired("model")
	return cmd
}
