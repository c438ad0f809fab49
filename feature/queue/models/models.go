package models

import "time"

// Queue session statuses. cancelled, rejected and completed are terminal
// under forward time flow; paused is operator-controlled.
const (
	StatusPendingPayment = "pending_payment"
	StatusUpcoming       = "upcoming"
	StatusOpen           = "open"
	StatusActive         = "active"
	StatusPaused         = "paused"
	StatusCompleted      = "completed"
	StatusCancelled      = "cancelled"
	StatusRejected       = "rejected"
)

// OpenBeforeStart is the window before start_time during which a session
// becomes joinable (upcoming -> open).
const OpenBeforeStart = 2 * time.Hour

// QueueSession is a walk-in queue on a court.
//
// The session-creation flow creates it pending_payment or upcoming;
// pending_payment -> upcoming happens only on confirmed payment, an
// external event. The reconciler owns the upcoming/open/active/completed
// edges; cancellation and rejection are external.
type QueueSession struct {
	ID      string `gorm:"primaryKey" json:"id"`
	CourtID string `gorm:"column:court_id" json:"court_id"`
	Name    string `gorm:"column:name" json:"name"`

	Status string `gorm:"column:status" json:"status"`

	StartTime time.Time `gorm:"column:start_time" json:"start_time"`
	EndTime   time.Time `gorm:"column:end_time" json:"end_time"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName sets the table name for the QueueSession model.
func (QueueSession) TableName() string { return "queue_sessions" }

// GetID returns the session ID.
func (s QueueSession) GetID() string { return s.ID }

// IsTerminal reports whether the status permits no further automatic
// transition under forward time.
func IsTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusCancelled, StatusRejected:
		return true
	default:
		return false
	}
}
