package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mmynk/billsplit/internal/collection"
	"github.com/mmynk/billsplit/internal/config"
	"github.com/mmynk/billsplit/internal/metrics"
	"github.com/mmynk/billsplit/internal/storage"
	"github.com/mmynk/billsplit/internal/storage/memory"
	"github.com/mmynk/billsplit/internal/storage/sqlite"
	"github.com/mmynk/billsplit/pkg/logging"
)

func newRootCmd() *cobra.Command {
	cfg := &config.Config{}

	root := &cobra.Command{
		Use:   "billsplit",
		Short: "Split a shared bill by who ate what",
		Long: `billsplit keeps a history of shared bills and works out what each
participant owes, including proportional tax and service charge.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				loaded.DBPath, _ = cmd.Flags().GetString("db")
			}
			if cmd.Flags().Changed("storage") {
				loaded.Storage, _ = cmd.Flags().GetString("storage")
			}
			if cmd.Flags().Changed("log-level") {
				loaded.LogLevel, _ = cmd.Flags().GetString("log-level")
			}
			if err := loaded.Validate(); err != nil {
				return err
			}
			*cfg = *loaded

			logging.Setup(cfg.LogLevel, cfg.LogFormat)
			return nil
		},
	}

	root.PersistentFlags().String("db", "", "SQLite database path (overrides DB_PATH)")
	root.PersistentFlags().String("storage", "", "storage backend: sqlite or memory (overrides STORAGE)")
	root.PersistentFlags().String("log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")

	root.AddCommand(serveCmd(cfg))
	root.AddCommand(summaryCmd(cfg))
	root.AddCommand(cleanupCmd(cfg))
	return root
}

// openStore opens the configured storage backend.
func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.Storage == config.StorageMemory {
		slog.Warn("Using in-memory storage, bills are lost on exit")
		return memory.New(), nil
	}
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	slog.Info("Storage initialized", "database", cfg.DBPath)
	return store, nil
}

// openRepository opens the store and loads the collection from it.
func openRepository(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*collection.Repository, storage.Store, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	repo, err := collection.Open(ctx, collection.WithStore(store), collection.WithMetrics(m))
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return repo, store, nil
}
