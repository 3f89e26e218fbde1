package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/api"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/auth"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/cli"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/data"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/iocli"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/storage/boltdb"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/sync"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/config"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/logging"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// app holds what PersistentPreRunE builds for the running command
type app struct {
	cli     *cli.Cli
	closers []io.Closer
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			slog.Error("failed to close", "error", err)
		}
	}
	a.closers = nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root, a := newRootCmd()
	err := root.ExecuteContext(ctx)
	a.close()
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() (*cobra.Command, *app) {
	var (
		cfgFile   string
		serverURL string
		dbPath    string
		a         = &app{}
	)

	root := &cobra.Command{
		Use:   "inked",
		Short: "Inked Draw client for cigar, beer and wine enthusiasts",
		Long: `inked keeps your ratings, collection and posts in a local database
and synchronizes them with the Inked Draw server when you are online.
Every change works offline first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			v, err := config.New(cfgFile)
			if err != nil {
				return err
			}
			config.SetClientDefaults(v)
			if serverURL != "" {
				v.Set("server_url", serverURL)
			}
			if dbPath != "" {
				v.Set("db_path", dbPath)
			}
			cfg, err := config.LoadClient(v)
			if err != nil {
				return err
			}
			return a.build(cmd.Context(), cfg)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/inked/config.yaml)")
	root.PersistentFlags().StringVar(&serverURL, "server", "", "server URL (overrides server_url)")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "path to the local database (overrides db_path)")

	root.AddCommand(cli.Commands(func() *cli.Cli { return a.cli })...)
	root.AddCommand(versionCmd())
	return root, a
}

// build opens local storage and wires the command dependencies
func (a *app) build(ctx context.Context, cfg *config.Client) error {
	logger, logCloser, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	a.closers = append(a.closers, logCloser)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	store, err := boltdb.New(ctx, cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	a.closers = append(a.closers, store)

	apiClient := api.NewClient(cfg.ServerURL)
	authStore := auth.NewStore(store)
	dataService := data.NewService(store, logger)

	a.cli = cli.New(iocli.NewStdio(), authStore, dataService, store, nil, apiClient)
	manager := sync.NewManager(store, apiClient, authStore, cfg.Sync, logger, sync.WithProgress(a.cli.OnProgress))
	a.cli.SetSyncer(manager)

	logger.Debug("Client ready", "server", cfg.ServerURL, "db", cfg.DBPath)
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Inked Draw Client")
			fmt.Fprintf(out, "Version:    %s\n", Version)
			fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
			fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
		},
	}
}
