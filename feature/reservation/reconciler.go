package reservation

import (
	"context"
	"time"

	"courtsync/core/transition"
	"courtsync/feature/reservation/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Result aggregates one reservation reconciliation pass.
type Result struct {
	// Expired is the total number of pending_payment reservations cancelled
	// across all expiry cases.
	Expired int `json:"expired"`

	// ExpiredByCase breaks Expired down per expiry case.
	ExpiredByCase map[string]int `json:"expired_by_case"`

	// StartedOngoing counts confirmed reservations whose start time arrived.
	StartedOngoing int `json:"started_ongoing"`

	// Completed counts reservations whose end time passed (from ongoing or,
	// for bookings whose start was never observed, straight from confirmed).
	Completed int `json:"completed"`

	// Reverted counts ongoing reservations moved back to confirmed after a
	// backward clock move.
	Reverted int `json:"reverted"`

	// Steps carries the per-step outcomes, including affected IDs and any
	// step errors, in execution order.
	Steps []transition.Outcome `json:"steps"`
}

// Reconciler advances and reverts reservation statuses as a function of the
// run timestamp.
type Reconciler struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewReconciler creates a reservation reconciler.
func NewReconciler(db *gorm.DB, logger *zap.Logger) *Reconciler {
	return &Reconciler{db: db, logger: logger}
}

// Rules returns the ordered transition table for the given run timestamp's
// semantics. Expiry cases come first; the time-travel revert runs last so a
// single pass can never revert and re-advance the same row.
func Rules() []transition.Rule {
	rules := make([]transition.Rule, 0, 8)

	for _, c := range ExpiryCases() {
		reason := c.Reason
		rules = append(rules, transition.Rule{
			Name:  "expire_" + c.Name,
			From:  []string{models.StatusPendingPayment},
			To:    models.StatusCancelled,
			Where: c.Where,
			Set: func(now time.Time) map[string]any {
				return map[string]any{
					"cancelled_at":        now,
					"cancellation_reason": reason,
				}
			},
		})
	}

	rules = append(rules,
		transition.Rule{
			Name: "start_ongoing",
			From: []string{models.StatusConfirmed},
			To:   models.StatusOngoing,
			Where: func(now time.Time) (string, []any) {
				return "start_time <= ? AND end_time > ?", []any{now, now}
			},
		},
		transition.Rule{
			Name: "complete_ongoing",
			From: []string{models.StatusOngoing},
			To:   models.StatusCompleted,
			Where: func(now time.Time) (string, []any) {
				return "end_time <= ?", []any{now}
			},
		},
		// Covers bookings whose start was never observed: very short
		// bookings, or a skipped run.
		transition.Rule{
			Name: "complete_confirmed",
			From: []string{models.StatusConfirmed},
			To:   models.StatusCompleted,
			Where: func(now time.Time) (string, []any) {
				return "end_time <= ?", []any{now}
			},
		},
		// Time travel: a backward clock move leaves rows ongoing with a
		// future start time; without this they would never again satisfy
		// the start_ongoing guard cleanly.
		transition.Rule{
			Name: "revert_ongoing",
			From: []string{models.StatusOngoing},
			To:   models.StatusConfirmed,
			Where: func(now time.Time) (string, []any) {
				return "start_time > ?", []any{now}
			},
		},
	)

	return rules
}

// Reconcile executes the full reservation transition sequence with a single
// timestamp. Step failures are captured per-step and never abort the
// remaining steps.
func (r *Reconciler) Reconcile(ctx context.Context, now time.Time) Result {
	outcomes := transition.Run[models.Reservation](ctx, r.db, r.logger, Rules(), now)

	result := Result{
		ExpiredByCase: make(map[string]int),
		Steps:         outcomes,
	}

	for _, o := range outcomes {
		switch {
		case o.To == models.StatusCancelled:
			result.Expired += o.Count
			result.ExpiredByCase[o.Step] = o.Count
		case o.Step == "start_ongoing":
			result.StartedOngoing = o.Count
		case o.To == models.StatusCompleted:
			result.Completed += o.Count
		case o.Step == "revert_ongoing":
			result.Reverted = o.Count
		}
	}

	return result
}
