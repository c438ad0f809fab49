package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"courtsync/core/archive"
	"courtsync/core/clock"
	"courtsync/core/config"
	"courtsync/core/database"
	"courtsync/core/logger"
	"courtsync/feature/maintenance"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var printReport bool

// runCmd performs a single maintenance pass and exits.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one maintenance pass over reservations and queue sessions",
	Long: `Runs every lifecycle step once against the current clock and exits.

Expires unpaid reservations, starts and completes bookings, opens and
activates queue sessions, and reverts statuses when the development clock
moved backwards. Safe to run concurrently with a live server: every step
only matches rows still in its source status.

Examples:
  # Single pass, summary via logger
  courtsync run

  # Single pass, full report as JSON on stdout
  courtsync run --report`,
	RunE: runMaintenance,
}

func init() {
	runCmd.Flags().BoolVar(&printReport, "report", false, "Print the full run report as JSON")
	RootCmd.AddCommand(runCmd)
}

func runMaintenance(cmd *cobra.Command, args []string) error {
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

	var archiver *archive.Archiver
	if cfg.Archive.Enabled {
		client, err := archive.NewClient(cfg.Archive)
		if err != nil {
			return fmt.Errorf("failed to create archive client: %w", err)
		}
		archiver = archive.NewArchiver(client, cfg.Archive.Bucket, cfg.Archive.Prefix)
	}

	clk := clock.New(db, cfg.Server.IsDevelopment())
	svc := maintenance.NewService(db, clk, l, archiver)

	report, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("maintenance run failed: %w", err)
	}

	if printReport {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return nil
	}

	l.Info("Maintenance run finished",
		zap.Time("processed_at", report.ProcessedAt),
		zap.Int("reservations_expired", report.Reservations.Expired),
		zap.Int("reservations_started", report.Reservations.StartedOngoing),
		zap.Int("reservations_completed", report.Reservations.Completed),
		zap.Int("queue_opened", report.QueueSessions.Opened),
		zap.Int("queue_activated", report.QueueSessions.Activated),
		zap.Int("queue_completed", report.QueueSessions.Completed),
		zap.Int("errors", len(report.Errors)),
	)
	return nil
}
