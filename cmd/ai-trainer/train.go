// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmrl789/ippan-core/gbdt"
	"github.com/dmrl789/ippan-core/internal/aitrain"
	"github.com/spf13/cobra"
)

func trainCmd() *cobra.Command {
	var (
		datasetPath       string
		outPath           string
		treeCount         int
		maxDepth          int
		minSamplesLeaf    int
		learningRateMicro int64
		quantizationStep  int64
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a deterministic model from a telemetry dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(datasetPath)
			if err != nil {
				return fmt.Errorf("open dataset: %w", err)
			}
			defer f.Close()

			_, samples, err := aitrain.LoadCSV(f)
			if err != nil {
				return err
			}

			params := aitrain.Params{
				TreeCount:         treeCount,
				MaxDepth:          maxDepth,
				MinSamplesLeaf:    minSamplesLeaf,
				LearningRateMicro: learningRateMicro,
				QuantizationStep:  quantizationStep,
			}
			model, err := aitrain.Train(samples, params)
			if err != nil {
				return fmt.Errorf("train deterministic model: %w", err)
			}

			if dir := filepath.Dir(outPath); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create output directory: %w", err)
				}
			}

			hashHex, err := gbdt.SaveModelFile(outPath, model)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "model_hash=%s\n", hashHex)
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "input CSV dataset path")
	cmd.Flags().StringVar(&outPath, "out", "", "output model JSON path")
	cmd.Flags().IntVar(&treeCount, "tree-count", 32, "number of boosting trees")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 4, "maximum tree depth")
	cmd.Flags().IntVar(&minSamplesLeaf, "min-samples-leaf", 8, "minimum samples per leaf")
	cmd.Flags().Int64Var(&learningRateMicro, "learning-rate-micro", 100_000, "learning rate in micros (100000 = 0.1)")
	cmd.Flags().Int64Var(&quantizationStep, "quantization-step", 10_000, "feature quantization step")
	cmd.MarkFlagRequired("dataset")
	cmd.MarkFlagRequired("out")
	return cmd
}
