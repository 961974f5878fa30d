package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"upscale/internal/config"
	"upscale/internal/logging"
	"upscale/internal/planner"
	"upscale/internal/runs"
	"upscale/internal/textutil"
	"upscale/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var nameFlag string
	var widthFlag int
	var heightFlag int
	var dpiFlag int

	cmd := &cobra.Command{
		Use:   "run <image>",
		Short: "Upscale an image to the configured target size",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if _, err := os.Stat(inputPath); err != nil {
				return fmt.Errorf("inspect image %q: %w", inputPath, err)
			}

			imageName := strings.TrimSpace(nameFlag)
			if imageName == "" {
				imageName = filepath.Base(inputPath)
			}

			return ctx.withStore(func(cfg *config.Config, store *runs.Store) error {
				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return fmt.Errorf("init logger: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Upscaling %s\n", textutil.DisplayTitle(imageName))

				manager := workflow.NewManager(cfg, store, logger,
					workflow.WithPlanHook(func(plan planner.Plan) {
						fmt.Fprintf(out, "Plan: %dx%d -> %dx%d (x%.2f) in %d passes\n",
							plan.SourceWidth, plan.SourceHeight,
							plan.TargetWidth, plan.TargetHeight,
							plan.ScaleFactor, plan.StepCount)
					}),
					workflow.WithPassHook(func(pass, total int) {
						fmt.Fprintf(out, "Pass %d/%d complete\n", pass, total)
					}),
				)

				artifact, err := manager.UpscaleToTarget(cmd.Context(), inputPath, imageName, widthFlag, heightFlag, dpiFlag)
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "Done: %s (%dx%d at %d DPI)\n", artifact.Path, artifact.Width, artifact.Height, artifact.DPI)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Image name used for identity and output naming (defaults to the file name)")
	cmd.Flags().IntVar(&widthFlag, "width", 0, "Target width in pixels (defaults to the configured output size)")
	cmd.Flags().IntVar(&heightFlag, "height", 0, "Target height in pixels (defaults to the configured output size)")
	cmd.Flags().IntVar(&dpiFlag, "dpi", 0, "Density stamped into the final JPEG (defaults to the configured DPI)")
	return cmd
}
