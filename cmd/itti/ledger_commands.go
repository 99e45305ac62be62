package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"itti/internal/ledger"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect and maintain the known-customer ledger",
	}

	ledgerCmd.AddCommand(newLedgerListCommand(ctx))
	ledgerCmd.AddCommand(newLedgerCountCommand(ctx))
	ledgerCmd.AddCommand(newLedgerClearCommand(ctx))

	return ledgerCmd
}

func withStore(ctx *commandContext, fn func(*cobra.Command, *ledger.Store) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := ctx.ensureConfig()
		if err != nil {
			return err
		}
		store, err := ledger.Open(cfg)
		if err != nil {
			return fmt.Errorf("open ledger: %w", err)
		}
		defer store.Close()
		return fn(cmd, store)
	}
}

func newLedgerListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known customers and their folders",
		RunE: withStore(ctx, func(cmd *cobra.Command, store *ledger.Store) error {
			items, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list identities: %w", err)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Ledger is empty")
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					string(item.Identity),
					item.ContainerID,
					item.FirstSeenAt.Local().Format(time.RFC3339),
				})
			}
			out := renderTable(
				[]string{"Customer", "Folder", "First Seen"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		}),
	}
}

func newLedgerCountCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of known customers",
		RunE: withStore(ctx, func(cmd *cobra.Command, store *ledger.Store) error {
			count, err := store.Count(cmd.Context())
			if err != nil {
				return fmt.Errorf("count identities: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d known customer(s)\n", count)
			return nil
		}),
	}
}

func newLedgerClearCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget all known customers and watermarks",
		Long: "Forget all known customers and watermarks. The next pass rescans the " +
			"full container and reuses folders that still exist, so clearing never " +
			"duplicates folders.",
		RunE: withStore(ctx, func(cmd *cobra.Command, store *ledger.Store) error {
			if !force {
				return fmt.Errorf("refusing to clear without --force")
			}
			if err := store.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear ledger: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Ledger cleared")
			return nil
		}),
	}

	cmd.Flags().BoolVar(&force, "force", false, "Confirm the destructive clear")
	return cmd
}
