package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tors/internal/cache"
	"tors/internal/config"
	"tors/internal/ledger"
	"tors/internal/logging"
	"tors/internal/storage"
	"tors/internal/tracker"
	"tors/internal/ui"
)

var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "tors",
		Short:         "Tors - a terminal to-do list that levels you up",
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()
			return ui.Run(cmd.Context(), a.store, a.cfg, a.log)
		},
	}

	root.AddCommand(listCmd())
	root.AddCommand(addCmd())
	root.AddCommand(removeCmd())
	root.AddCommand(doneCmd())
	root.AddCommand(statsCmd())
	root.AddCommand(purgeCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}

// app is everything a command needs, opened from ~/.tors.
type app struct {
	cfg     config.Config
	log     *zap.Logger
	store   *storage.Store
	tracker *tracker.Tracker
	cache   *cache.Cache
}

func open() (*app, error) {
	dir, err := config.ResolveDir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrCreate(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	log.Info("store opened", zap.String("path", cfg.DBPath))
	return newApp(cfg, log, store), nil
}

func newApp(cfg config.Config, log *zap.Logger, store *storage.Store) *app {
	return &app{
		cfg:     cfg,
		log:     log,
		store:   store,
		tracker: tracker.New(store, ledger.New(store), log),
		cache:   cache.New(store, log),
	}
}

func (a *app) Close() error {
	err := a.store.Close()
	_ = a.log.Sync()
	return err
}
