package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"interview-assistant/internal/normalize"
)

func newNormalizeCmd() *cobra.Command {
	var maxPoints int
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Turn raw model output on stdin into a numbered list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			printPoints(cmd.OutOrStdout(), normalize.Truncate(normalize.Normalize(string(raw)), maxPoints))
			return nil
		},
	}
	cmd.Flags().IntVar(&maxPoints, "max", normalize.DefaultMaxPoints, "Maximum number of points (0 keeps all)")
	return cmd
}
