package models

import "time"

// Reservation statuses. A reservation holds exactly one status at a time;
// cancelled and completed are terminal under forward time flow.
const (
	StatusPendingPayment = "pending_payment"
	StatusConfirmed      = "confirmed"
	StatusOngoing        = "ongoing"
	StatusCompleted      = "completed"
	StatusCancelled      = "cancelled"
)

// Payment methods. An empty PaymentMethod means none was chosen yet.
const (
	PaymentEWallet = "e-wallet"
	PaymentCash    = "cash"
)

// Reservation is a court booking.
//
// The booking flow creates it in pending_payment (or confirmed when fully
// pre-paid); from then on the reconciler is the only writer until a terminal
// state is reached. A human actor may cancel it externally (refund flow);
// the reconciler respects that because no rule lists a terminal status as a
// source.
type Reservation struct {
	ID      string `gorm:"primaryKey" json:"id"`
	CourtID string `gorm:"column:court_id" json:"court_id"`
	UserID  string `gorm:"column:user_id" json:"user_id"`

	Status        string `gorm:"column:status" json:"status"`
	PaymentMethod string `gorm:"column:payment_method" json:"payment_method"`

	StartTime time.Time `gorm:"column:start_time" json:"start_time"`
	EndTime   time.Time `gorm:"column:end_time" json:"end_time"`

	// CashPaymentDeadline is the optional pay-by time for cash bookings.
	CashPaymentDeadline *time.Time `gorm:"column:cash_payment_deadline" json:"cash_payment_deadline,omitempty"`

	CancelledAt        *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CancellationReason string     `gorm:"column:cancellation_reason" json:"cancellation_reason,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName sets the table name for the Reservation model.
func (Reservation) TableName() string { return "reservations" }

// GetID returns the reservation ID.
func (r Reservation) GetID() string { return r.ID }

// IsTerminal reports whether the status permits no further automatic
// transition under forward time.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}
