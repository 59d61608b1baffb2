package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/billsplit/internal/config"
)

func cleanupCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete bills with no title and no items",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, store, err := openRepository(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := repo.CleanupEmptyBills(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d empty bill(s)\n", removed)
			return nil
		},
	}
}
