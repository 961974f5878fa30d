package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"upscale/internal/identity"
)

func newIdentityCommand(ctx *commandContext) *cobra.Command {
	identityCmd := &cobra.Command{
		Use:   "identity",
		Short: "Inspect and manage stored client identities",
	}

	identityCmd.AddCommand(newIdentityListCommand(ctx))
	identityCmd.AddCommand(newIdentityResetCommand(ctx))

	return identityCmd
}

func newIdentityListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List image name to client identity mappings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store := identity.NewFileStore(cfg.Paths.IdentityPath)
			mapping, err := store.All()
			if err != nil {
				return err
			}
			if len(mapping) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No identities recorded in %s\n", store.Path())
				return nil
			}

			names := make([]string, 0, len(mapping))
			for name := range mapping {
				names = append(names, name)
			}
			sort.Strings(names)

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				rows = append(rows, []string{name, mapping[name]})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Image", "Client ID"}, rows, []columnAlignment{alignLeft, alignLeft}))
			return nil
		},
	}
}

func newIdentityResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <image-name>",
		Short: "Drop the stored identity for an image so the next run mints a new one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store := identity.NewFileStore(cfg.Paths.IdentityPath)
			if err := store.Remove(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed identity for %q\n", args[0])
			return nil
		},
	}
}
