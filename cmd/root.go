// Package cmd wires the CLI: ingest, precompute, simulate, evaluate,
// groundtruth, and version subcommands over a shared configuration and
// logger.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ladinzgit/personasim/internal/config"
	"github.com/ladinzgit/personasim/internal/log"
)

// root carries state shared by every subcommand.
type root struct {
	cfg    *config.Config
	logger log.Logger

	logLevel string
	logJSON  bool
}

// Execute loads configuration, builds the command tree, and runs it. The
// context is canceled on SIGINT/SIGTERM so long fan-out runs shut down
// cleanly.
func Execute() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return newRootCmd(cfg).ExecuteContext(ctx)
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	r := &root{cfg: cfg}

	cmd := &cobra.Command{
		Use:   "personasim",
		Short: "Persona-driven purchase simulation over a time-filtered review corpus",
		Long: `personasim ingests dated product reviews into a vector store, simulates
synthetic consumer personas deciding whether to buy on each date given only
the reviews published by then, and correlates the simulated purchase ratio
with real-world ground truth.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLevel(r.logLevel)
			if err != nil {
				return err
			}
			r.logger = log.New(log.Config{Level: level, JSON: r.logJSON})
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&r.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&r.logJSON, "log-json", false, "log in JSON instead of text")

	cmd.AddCommand(
		newIngestCmd(r),
		newPrecomputeCmd(r),
		newSimulateCmd(r),
		newEvaluateCmd(r),
		newGroundTruthCmd(r),
		newVersionCmd(r),
	)
	return cmd
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
