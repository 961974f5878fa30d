package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"upscale/internal/config"
	"upscale/internal/imaging"
	"upscale/internal/planner"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var widthFlag int
	var heightFlag int

	cmd := &cobra.Command{
		Use:   "plan <image>",
		Short: "Show the pass plan for an image without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			inputPath, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			info, err := imaging.Probe(inputPath)
			if err != nil {
				return fmt.Errorf("probe image: %w", err)
			}

			targetW, targetH := widthFlag, heightFlag
			if targetW <= 0 || targetH <= 0 {
				targetW, targetH = cfg.TargetPixels()
			}

			plan, err := planner.Compute(info.Width, info.Height, targetW, targetH, float64(cfg.Service.Scale))
			if err != nil {
				return err
			}

			rows := [][]string{
				{"Source", fmt.Sprintf("%dx%d (%s)", plan.SourceWidth, plan.SourceHeight, info.Format)},
				{"Target", fmt.Sprintf("%dx%d", plan.TargetWidth, plan.TargetHeight)},
				{"Scale per pass", strconv.Itoa(cfg.Service.Scale)},
				{"Passes", strconv.Itoa(plan.StepCount)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
			if plan.StepCount == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Source already covers the target; only the final resize would run")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&widthFlag, "width", 0, "Target width in pixels (defaults to the configured output size)")
	cmd.Flags().IntVar(&heightFlag, "height", 0, "Target height in pixels (defaults to the configured output size)")
	return cmd
}
