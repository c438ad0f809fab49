package cmd

import (
	"context"
	"fmt"
	"time"

	"courtsync/core/clock"
	"courtsync/core/config"
	"courtsync/core/database"
	"courtsync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	offsetFlag string
	targetFlag string
	resetFlag  bool
)

// timeCmd inspects or adjusts the simulated clock in development.
var timeCmd = &cobra.Command{
	Use:   "time",
	Short: "Inspect or adjust the simulated clock (development only)",
	Long: `Shows the effective clock, or shifts it for testing time-driven
transitions. The offset is stored in the database, so a running server
picks it up on its next maintenance pass.

Examples:
  # Show the current offset and effective time
  courtsync time

  # Jump one day ahead
  courtsync time --offset 24h

  # Jump to an absolute instant
  courtsync time --target 2026-09-01T08:00:00Z

  # Back to real time
  courtsync time --reset`,
	RunE: runTime,
}

func init() {
	timeCmd.Flags().StringVar(&offsetFlag, "offset", "", "Relative offset from real time (Go duration, e.g. 24h, -30m)")
	timeCmd.Flags().StringVar(&targetFlag, "target", "", "Absolute target time (RFC3339)")
	timeCmd.Flags().BoolVar(&resetFlag, "reset", false, "Clear the offset and return to real time")
	RootCmd.AddCommand(timeCmd)
}

func runTime(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	clk := clock.New(db, cfg.Server.IsDevelopment())

	switch {
	case offsetFlag != "":
		offset, err := time.ParseDuration(offsetFlag)
		if err != nil {
			return fmt.Errorf("invalid offset %q: %w", offsetFlag, err)
		}
		if err := clk.SetOffset(ctx, offset); err != nil {
			return err
		}
		l.Info("Clock offset updated", zap.Duration("offset", offset))

	case targetFlag != "":
		target, err := time.Parse(time.RFC3339, targetFlag)
		if err != nil {
			return fmt.Errorf("invalid target %q: %w", targetFlag, err)
		}
		if err := clk.SetTarget(ctx, target); err != nil {
			return err
		}
		l.Info("Clock target set", zap.Time("target", target))

	case resetFlag:
		if err := clk.Reset(ctx); err != nil {
			return err
		}
		l.Info("Clock reset to real time")
	}

	offset, err := clk.Offset(ctx)
	if err != nil {
		return fmt.Errorf("failed to read clock offset: %w", err)
	}
	now, err := clk.Now(ctx)
	if err != nil {
		return fmt.Errorf("failed to read clock: %w", err)
	}

	l.Info("Clock state",
		zap.Duration("offset", offset),
		zap.Time("effective_time", now),
		zap.Time("real_time", time.Now()),
	)
	return nil
}
