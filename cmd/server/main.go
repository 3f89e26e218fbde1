package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/config"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/logging"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/recognition"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/server"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/server/handlers"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/server/storage/sqlite"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/vision"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "inked-server",
		Short:         "Inked Draw sync and recognition API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/inked/config.yaml)")

	load := func() (*config.Server, error) {
		v, err := config.New(cfgFile)
		if err != nil {
			return nil, err
		}
		config.SetServerDefaults(v)
		return config.LoadServer(v)
	}

	root.AddCommand(serveCmd(load))
	root.AddCommand(tokenCmd(load))
	root.AddCommand(importCmd(load))
	root.AddCommand(versionCmd())
	return root
}

func serveCmd(load func() (*config.Server, error)) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides addr)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Server) error {
	logger, logCloser, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("Inked Draw server starting", "version", Version, "addr", cfg.Addr)

	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	dicts, err := recognition.NewDictionaryStore(cfg.Recognition.DictionaryPath, logger)
	if err != nil {
		return fmt.Errorf("failed to load recognition dictionary: %w", err)
	}
	analyzer, err := vision.NewAnalyzer(ctx, cfg.Vision, logger)
	if err != nil {
		return err
	}
	recognizer := recognition.NewService(analyzer, store, dicts, cfg.Recognition.Weights, logger)

	router := server.NewRouter(logger, server.Config{
		Addr: cfg.Addr,
		JWT: handlers.JWTConfig{
			Secret:         []byte(cfg.JWTSecret),
			AccessTokenTTL: cfg.TokenTTL,
		},
		RateLimit: cfg.RateLimit,
	}, store, recognizer)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(ctx, logger, cfg.Addr, router)
	})
	g.Go(func() error {
		return dicts.Watch(ctx)
	})
	return g.Wait()
}

// tokenCmd mints a bearer token signed with the server secret. It stands in
// for the identity provider during development.
func tokenCmd(load func() (*config.Server, error)) *cobra.Command {
	var (
		userID   string
		username string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.TokenTTL
			}
			token, expiresIn, err := handlers.GenerateAccessToken(handlers.JWTConfig{
				Secret:         []byte(cfg.JWTSecret),
				AccessTokenTTL: ttl,
			}, userID, username)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires in %s\n", time.Duration(expiresIn)*time.Second)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user-id", "", "user id claim")
	cmd.Flags().StringVar(&username, "username", "", "username claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default: token_ttl)")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Inked Draw Server")
			fmt.Fprintf(out, "Version:    %s\n", Version)
			fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
			fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
		},
	}
}
