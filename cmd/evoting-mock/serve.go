package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	evoting "github.com/jicksta/evoting-mock"
	"github.com/jicksta/evoting-mock/internal/config"
	"github.com/jicksta/evoting-mock/rest"
	"github.com/spf13/cobra"
)

var serveFlags = struct {
	listen  string
	fixture string
}{}

// applyServeFlags overrides config values with flags given on the command line.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	if f := cmd.Flags().Lookup("listen"); f != nil && f.Changed {
		cfg.ListenAddress = serveFlags.listen
	}
	if f := cmd.Flags().Lookup("fixture"); f != nil && f.Changed {
		cfg.Fixture = serveFlags.fixture
	}
}

func serveRun(cmd *cobra.Command, cfg *config.Config) {
	logger := commonRun()
	if err := serve(cmd.Context(), cfg, logger); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store := evoting.NewMemoryStore(cfg.StoreOptions())
	opts := store.Options()
	logger.Info(
		"election store ready",
		"component", programName,
		"voterAddressMode", opts.VoterAddressMode,
		"ratingValidation", opts.RatingValidation,
		"requireAdminToEnd", opts.RequireAdminToEnd,
		"includeWinner", opts.IncludeWinner,
		"uniqueCandidateNames", opts.UniqueCandidateNames,
		"defaultThreshold", opts.DefaultThreshold,
	)
	if cfg.Fixture != "" {
		summary, err := loadFixtureFile(store, cfg.Fixture)
		if err != nil {
			return err
		}
		logger.Info(
			"fixture loaded",
			"component", programName,
			"path", cfg.Fixture,
			"elections", len(summary.ElectionIDs),
			"candidates", summary.Candidates,
			"voters", summary.Voters,
		)
	}

	shutdownTimeout, err := cfg.ShutdownTimeoutDuration()
	if err != nil {
		return err
	}
	if !globalFlags.debug {
		gin.SetMode(gin.ReleaseMode)
	}
	server := rest.New(rest.Config{
		ListenAddress:   cfg.ListenAddress,
		AllowedOrigin:   cfg.AllowedOrigin,
		ShutdownTimeout: shutdownTimeout,
	}, store, logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	<-ctx.Done()
	logger.Info("shutting down", "component", programName)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Stop(shutdownCtx)
}

func loadFixtureFile(store evoting.ElectionStore, path string) (*evoting.FixtureSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open fixture: %w", err)
	}
	defer f.Close()
	summary, err := evoting.LoadFixture(store, f)
	if err != nil {
		return nil, fmt.Errorf("unable to process %s: %w", path, err)
	}
	return summary, nil
}

func serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the mock HTTP API",
		Run: func(cmd *cobra.Command, args []string) {
			serveRun(cmd, configFromCommand(cmd))
		},
	}
	cmd.Flags().StringVarP(&serveFlags.listen, "listen", "l", config.DefaultListenAddress, "address to listen on")
	cmd.Flags().StringVarP(&serveFlags.fixture, "fixture", "f", "", "fixture file to preload")
	return cmd
}
