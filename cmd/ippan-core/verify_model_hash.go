// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/dmrl789/ippan-core/gbdt"
	"github.com/spf13/cobra"
)

func verifyModelHashCmd() *cobra.Command {
	var expectedHash string

	cmd := &cobra.Command{
		Use:   "verify-model-hash <model.json>",
		Short: "Load a D-GBDT model file and report its content hash",
		Long: `Loads and structurally validates a reputation model file, then prints its
canonical BLAKE3 model hash. If --expect is given, the command fails with a
non-zero exit code when the computed hash does not match, the same check a
node performs at startup before trusting a configured model path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := gbdt.LoadModelFile(args[0], expectedHash)
			if err != nil {
				return err
			}
			hashHex, err := gbdt.ModelHashHex(model)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version=%d trees=%d scale=%d hash=%s\n",
				model.Version, len(model.Trees), model.Scale, hashHex)
			return nil
		},
	}

	cmd.Flags().StringVar(&expectedHash, "expect", "", "expected hex model hash; mismatch aborts")
	return cmd
}
