package maintenance

import (
	"context"
	"fmt"
	"time"

	"courtsync/core/archive"
	"courtsync/core/clock"
	"courtsync/core/transition"
	"courtsync/feature/queue"
	"courtsync/feature/reservation"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Report is the aggregate result of one reconciliation run.
type Report struct {
	// Success is true whenever the orchestration completed its step list,
	// even if individual steps errored or nothing transitioned.
	Success bool `json:"success"`

	// ProcessedAt is the single timestamp every step of the run used.
	ProcessedAt time.Time `json:"processed_at"`

	// Reservations and QueueSessions carry per-category counts and the
	// affected entity IDs per step.
	Reservations  reservation.Result `json:"reservations"`
	QueueSessions queue.Result       `json:"queue_sessions"`

	// Errors lists step failures as "step: error" strings. A step failure
	// never aborts the run; the failed category simply reports zero.
	Errors []string `json:"errors"`

	// ArchivedAs is the object key of the archived report, when archival
	// is enabled and succeeded.
	ArchivedAs string `json:"archived_as,omitempty"`
}

// Service orchestrates one reconciliation run across both entity types.
type Service struct {
	clock        *clock.Clock
	logger       *zap.Logger
	archiver     *archive.Archiver
	reservations *reservation.Reconciler
	queues       *queue.Reconciler
}

// NewService creates the orchestrator. archiver may be nil to disable
// report archival.
func NewService(db *gorm.DB, clk *clock.Clock, logger *zap.Logger, archiver *archive.Archiver) *Service {
	return &Service{
		clock:        clk,
		logger:       logger,
		archiver:     archiver,
		reservations: reservation.NewReconciler(db, logger),
		queues:       queue.NewReconciler(db, logger),
	}
}

// Run executes one full reconciliation run: a single clock read, then the
// reservation steps, then the queue session steps, in fixed order.
//
// The returned error is non-nil only when the orchestration itself cannot
// proceed (the clock read failed before any step ran). Step-level failures
// are reported inside the Report.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	// One now() value for the whole run; a record must not be judged
	// "started" by one step and "not started" by another.
	now, err := s.clock.Now(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read clock: %w", err)
	}

	s.logger.Info("Reconciliation run starting", zap.Time("processed_at", now))

	report := &Report{
		Success:       true,
		ProcessedAt:   now,
		Reservations:  s.reservations.Reconcile(ctx, now),
		QueueSessions: s.queues.Reconcile(ctx, now),
		Errors:        []string{},
	}

	collectErrors(report.Reservations.Steps, &report.Errors)
	collectErrors(report.QueueSessions.Steps, &report.Errors)

	s.logger.Info("Reconciliation run finished",
		zap.Time("processed_at", now),
		zap.Int("reservations_expired", report.Reservations.Expired),
		zap.Int("reservations_started", report.Reservations.StartedOngoing),
		zap.Int("reservations_completed", report.Reservations.Completed),
		zap.Int("reservations_reverted", report.Reservations.Reverted),
		zap.Int("sessions_completed", report.QueueSessions.Completed),
		zap.Int("sessions_activated", report.QueueSessions.Activated),
		zap.Int("sessions_opened", report.QueueSessions.Opened),
		zap.Int("step_errors", len(report.Errors)),
	)

	if s.archiver != nil {
		key, err := s.archiver.Store(ctx, now, report)
		if err != nil {
			// Best effort: archival never fails the run.
			s.logger.Warn("Failed to archive run report", zap.Error(err))
		} else {
			report.ArchivedAs = key
		}
	}

	return report, nil
}

func collectErrors(outcomes []transition.Outcome, errs *[]string) {
	for _, o := range outcomes {
		if o.Err != "" {
			*errs = append(*errs, fmt.Sprintf("%s: %s", o.Step, o.Err))
		}
	}
}
