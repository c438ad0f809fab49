package transition

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entity is the minimal contract a lifecycle model must satisfy so that
// affected row IDs can be collected from a bulk transition.
type Entity interface {
	GetID() string
}

// Rule describes one predicate-guarded bulk transition.
//
// A rule compiles to exactly one statement of the form
//
//	UPDATE <table> SET status = To, ... WHERE status IN (From) AND <Where> RETURNING id
//
// The status guard is what makes concurrent runs safe: a row can only be
// moved by whichever run observes it first, a second run matches zero rows.
// Reverse (time-travel) rules are ordinary Rule values; keeping them as
// explicit table entries keeps forward and backward behavior auditable as
// a pair.
type Rule struct {
	// Name identifies the step in logs and in the run report.
	Name string

	// From lists the statuses a row may be in for this rule to move it.
	From []string

	// To is the destination status.
	To string

	// Where returns the time predicate and its arguments for the given run
	// timestamp. It is combined with the status guard by AND.
	Where func(now time.Time) (string, []any)

	// Set returns extra column assignments beyond status/updated_at,
	// e.g. cancelled_at and cancellation_reason. May be nil.
	Set func(now time.Time) map[string]any
}

// Outcome records the result of one executed rule.
type Outcome struct {
	// Step is the rule name.
	Step string `json:"step"`

	// From and To describe the transition edge.
	From []string `json:"from"`
	To   string   `json:"to"`

	// Count is the number of rows moved by this step.
	Count int `json:"count"`

	// IDs lists the affected row IDs, sorted for deterministic output.
	IDs []string `json:"ids"`

	// Err carries the step error, if any. An errored step moved zero rows.
	Err string `json:"error,omitempty"`
}

// Apply executes a single rule against the store and returns the IDs of the
// rows it moved. The update and the ID collection are one statement; there
// is no read-then-write window.
func Apply[M Entity](ctx context.Context, db *gorm.DB, r Rule, now time.Time) ([]string, error) {
	updates := map[string]any{
		"status":     r.To,
		"updated_at": now,
	}
	if r.Set != nil {
		for col, val := range r.Set(now) {
			updates[col] = val
		}
	}

	cond, args := r.Where(now)

	var rows []M
	tx := db.WithContext(ctx).
		Model(&rows).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}}}).
		Where("status IN ?", r.From).
		Where(cond, args...).
		Updates(updates)
	if tx.Error != nil {
		return nil, fmt.Errorf("transition %s failed: %w", r.Name, tx.Error)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.GetID())
	}
	sort.Strings(ids)

	return ids, nil
}

// Run executes an ordered rule sequence with the single timestamp of the
// surrounding reconciliation run.
//
// A failing step is logged with its name, recorded as a zero-count outcome
// carrying the error, and does not abort the remaining steps. Transient
// store errors are retried by the next scheduled run, never in-process.
func Run[M Entity](ctx context.Context, db *gorm.DB, l *zap.Logger, rules []Rule, now time.Time) []Outcome {
	outcomes := make([]Outcome, 0, len(rules))

	for _, r := range rules {
		ids, err := Apply[M](ctx, db, r, now)

		o := Outcome{
			Step:  r.Name,
			From:  r.From,
			To:    r.To,
			Count: len(ids),
			IDs:   ids,
		}
		if o.IDs == nil {
			o.IDs = []string{}
		}

		if err != nil {
			o.Err = err.Error()
			l.Error("Transition step failed",
				zap.String("step", r.Name),
				zap.Error(err),
			)
		} else if o.Count > 0 {
			l.Info("Transition step applied",
				zap.String("step", r.Name),
				zap.String("to", r.To),
				zap.Int("count", o.Count),
			)
		}

		outcomes = append(outcomes, o)
	}

	return outcomes
}
