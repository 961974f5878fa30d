package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"upscale/internal/config"
	"upscale/internal/logging"
	"upscale/internal/runs"
	"upscale/internal/workflow"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect and manage recorded upscale runs",
	}

	runsCmd.AddCommand(newRunsStatusCommand(ctx))
	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	runsCmd.AddCommand(newRunsResumeCommand(ctx))
	runsCmd.AddCommand(newRunsClearCommand(ctx))

	return runsCmd
}

func newRunsStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show run counts per status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *runs.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}

				var rows [][]string
				for _, status := range runs.AllStatuses() {
					if count := stats[status]; count > 0 {
						rows = append(rows, []string{string(status), strconv.Itoa(count)})
					}
				}
				out := cmd.OutOrStdout()
				if len(rows) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))

				health, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d total: %d pending, %d processing, %d completed, %d failed\n",
					health.Total, health.Pending, health.Processing, health.Completed, health.Failed)
				return nil
			})
		},
	}
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			var statuses []runs.Status
			for _, value := range listStatuses {
				status, ok := runs.ParseStatus(value)
				if !ok {
					return fmt.Errorf("unknown status %q", value)
				}
				statuses = append(statuses, status)
			}

			return ctx.withStore(func(cfg *config.Config, store *runs.Store) error {
				items, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
					return nil
				}

				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						item.ImageName,
						string(item.Status),
						formatPasses(item),
						item.CreatedAt.Format(time.RFC3339),
					})
				}
				table := renderTable(
					[]string{"ID", "Image", "Status", "Passes", "Created"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by run status (repeatable)")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show details for one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid run id %q", args[0])
			}

			return ctx.withStore(func(cfg *config.Config, store *runs.Store) error {
				item, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("run %d not found", id)
				}

				rows := [][]string{
					{"ID", strconv.FormatInt(item.ID, 10)},
					{"Image", item.ImageName},
					{"Source", item.SourcePath},
					{"Status", string(item.Status)},
					{"Source size", fmt.Sprintf("%dx%d", item.SourceWidth, item.SourceHeight)},
					{"Target size", fmt.Sprintf("%dx%d at %d DPI", item.TargetWidth, item.TargetHeight, item.TargetDPI)},
					{"Passes", formatPasses(item)},
					{"Working file", item.WorkingFile},
					{"Final file", item.FinalFile},
					{"Created", item.CreatedAt.Format(time.RFC3339)},
					{"Updated", item.UpdatedAt.Format(time.RFC3339)},
				}
				if item.ErrorMessage != "" {
					rows = append(rows, []string{"Error", item.ErrorMessage})
				}
				if item.ProgressMessage != "" {
					rows = append(rows, []string{"Progress", fmt.Sprintf("%s (%.0f%%)", item.ProgressMessage, item.ProgressPercent)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
				return nil
			})
		},
	}
}

func newRunsResumeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume the oldest interrupted run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *runs.Store) error {
				item, err := store.NextForStatuses(cmd.Context(), runs.StatusPending, runs.StatusPlanned, runs.StatusUpscaled)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if item == nil {
					fmt.Fprintln(out, "No resumable runs")
					return nil
				}

				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return fmt.Errorf("init logger: %w", err)
				}

				fmt.Fprintf(out, "Resuming run %d (%s) from status %s\n", item.ID, item.ImageName, item.Status)
				manager := workflow.NewManager(cfg, store, logger,
					workflow.WithPassHook(func(pass, total int) {
						fmt.Fprintf(out, "Pass %d/%d complete\n", pass, total)
					}),
				)
				final, err := manager.RunItem(cmd.Context(), item)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Done: %s\n", final.FinalFile)
				return nil
			})
		},
	}
}

func newRunsClearCommand(ctx *commandContext) *cobra.Command {
	var clearCompleted bool
	var clearFailed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearCompleted && clearFailed {
				return errors.New("specify only one of --completed or --failed")
			}
			return ctx.withStore(func(cfg *config.Config, store *runs.Store) error {
				out := cmd.OutOrStdout()
				var removed int64
				var err error
				switch {
				case clearCompleted:
					removed, err = store.ClearCompleted(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Cleared %d completed runs\n", removed)
				case clearFailed:
					removed, err = store.ClearFailed(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Cleared %d failed runs\n", removed)
				default:
					removed, err = store.Clear(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Cleared %d runs\n", removed)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearCompleted, "completed", false, "Remove only completed runs")
	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Remove only failed runs")
	return cmd
}

func formatPasses(item *runs.Item) string {
	if item.StepCount == 0 {
		return "-"
	}
	return fmt.Sprintf("%d/%d", item.PassIndex, item.StepCount)
}
