package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"upscale/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run environment preflight checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			colorize := shouldColorize(cmd.OutOrStdout())

			rows := make([][]string, 0, len(results))
			failures := 0
			for _, result := range results {
				if !result.Passed {
					failures++
				}
				rows = append(rows, []string{result.Name, statusLabel(result.Passed, colorize), result.Detail})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Check", "Result", "Detail"}, rows, []columnAlignment{alignLeft, alignLeft, alignLeft}))
			if failures > 0 {
				return fmt.Errorf("%d of %d checks failed", failures, len(results))
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}
