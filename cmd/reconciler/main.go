// Command reconciler recomputes user karma from content scores and repairs
// drift, either once or on the configured interval.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agora-social/agora/internal/app"
	"github.com/agora-social/agora/internal/reconcile"
	"github.com/agora-social/agora/pkg/config"
	"github.com/agora-social/agora/pkg/logging"
	"github.com/agora-social/agora/pkg/telemetry"
)

var once bool

var rootCmd = &cobra.Command{
	Use:           "reconciler",
	Short:         "Repair karma drift",
	Long:          `Recompute every user's karma from post and comment scores and fix rows that disagree.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runReconciler,
}

func init() {
	rootCmd.Flags().BoolVar(&once, "once", false, "run a single pass and exit")
}

func runReconciler(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logging.InitLogger(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting Agora karma reconciler", zap.Bool("once", once))

	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer telemetryShutdown()

	st, closeStore, err := app.OpenStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := reconcile.New(st, cfg.Reconciler)

	if once {
		report, err := r.Pass(ctx)
		if err != nil {
			return fmt.Errorf("reconcile pass failed: %w", err)
		}
		logger.Info("Reconcile pass complete",
			zap.Int("scanned", report.Scanned),
			zap.Int("repaired", report.Repaired))
		return nil
	}

	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("reconciler stopped: %w", err)
	}
	logger.Info("Reconciler exited")
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "reconciler: %v\n", err)
		os.Exit(1)
	}
}
