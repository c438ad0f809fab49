package queue

import (
	"context"
	"time"

	"courtsync/core/transition"
	"courtsync/feature/queue/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Result aggregates one queue session reconciliation pass.
type Result struct {
	// Completed counts sessions closed because their end time passed.
	Completed int `json:"completed"`

	// Activated counts open sessions whose start time arrived.
	Activated int `json:"activated"`

	// Opened counts upcoming sessions that entered the joinable window.
	Opened int `json:"opened"`

	// RevertedToActive counts completed sessions re-activated after a
	// backward clock move into their playing window.
	RevertedToActive int `json:"reverted_to_active"`

	// RevertedToOpen counts active sessions moved back to open.
	RevertedToOpen int `json:"reverted_to_open"`

	// RevertedToUpcoming counts open/active sessions moved back out of the
	// joinable window entirely.
	RevertedToUpcoming int `json:"reverted_to_upcoming"`

	// Steps carries the per-step outcomes in execution order.
	Steps []transition.Outcome `json:"steps"`
}

// Reconciler advances and reverts queue session statuses as a function of
// the run timestamp.
type Reconciler struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewReconciler creates a queue session reconciler.
func NewReconciler(db *gorm.DB, logger *zap.Logger) *Reconciler {
	return &Reconciler{db: db, logger: logger}
}

// Rules returns the ordered transition table. Completion runs first so a
// paused session still completes once its end time passes; the three
// reverse rules mirror the forward edges and only fire after a backward
// clock move.
//
// pending_payment, cancelled and rejected sessions are never touched, and
// paused never appears as a source anywhere but the completion rule, which
// preserves manual pause intent.
func Rules() []transition.Rule {
	return []transition.Rule{
		{
			Name: "complete",
			From: []string{models.StatusOpen, models.StatusActive, models.StatusPaused},
			To:   models.StatusCompleted,
			Where: func(now time.Time) (string, []any) {
				return "end_time <= ?", []any{now}
			},
		},
		{
			Name: "activate",
			From: []string{models.StatusOpen},
			To:   models.StatusActive,
			Where: func(now time.Time) (string, []any) {
				return "start_time <= ? AND end_time > ?", []any{now, now}
			},
		},
		{
			Name: "open",
			From: []string{models.StatusUpcoming},
			To:   models.StatusOpen,
			Where: func(now time.Time) (string, []any) {
				return "start_time <= ? AND end_time > ?",
					[]any{now.Add(models.OpenBeforeStart), now}
			},
		},
		{
			Name: "revert_completed_to_active",
			From: []string{models.StatusCompleted},
			To:   models.StatusActive,
			Where: func(now time.Time) (string, []any) {
				return "start_time <= ? AND end_time > ?", []any{now, now}
			},
		},
		{
			Name: "revert_active_to_open",
			From: []string{models.StatusActive},
			To:   models.StatusOpen,
			Where: func(now time.Time) (string, []any) {
				return "start_time > ? AND start_time <= ?",
					[]any{now, now.Add(models.OpenBeforeStart)}
			},
		},
		{
			Name: "revert_to_upcoming",
			From: []string{models.StatusOpen, models.StatusActive},
			To:   models.StatusUpcoming,
			Where: func(now time.Time) (string, []any) {
				return "start_time > ?", []any{now.Add(models.OpenBeforeStart)}
			},
		},
	}
}

// Reconcile executes the full queue session transition sequence with a
// single timestamp. Step failures are captured per-step and never abort
// the remaining steps.
func (r *Reconciler) Reconcile(ctx context.Context, now time.Time) Result {
	outcomes := transition.Run[models.QueueSession](ctx, r.db, r.logger, Rules(), now)

	result := Result{Steps: outcomes}

	for _, o := range outcomes {
		switch o.Step {
		case "complete":
			result.Completed = o.Count
		case "activate":
			result.Activated = o.Count
		case "open":
			result.Opened = o.Count
		case "revert_completed_to_active":
			result.RevertedToActive = o.Count
		case "revert_active_to_open":
			result.RevertedToOpen = o.Count
		case "revert_to_upcoming":
			result.RevertedToUpcoming = o.Count
		}
	}

	return result
}
