package reservation

import (
	"time"

	"courtsync/feature/reservation/models"
)

// Payment grace periods.
const (
	// EWalletTimeout is how long an e-wallet checkout may stay unpaid.
	EWalletTimeout = 20 * time.Minute
	// CashGracePeriod is how long past its own start time a cash booking
	// without an explicit deadline is tolerated.
	CashGracePeriod = 30 * time.Minute
	// StaleTimeout expires bookings that never chose a payment method.
	StaleTimeout = 24 * time.Hour
)

// ExpiryCase is one rule of the payment expiry policy. The four cases are
// mutually exclusive and evaluated in declaration order. Matches is the
// pure form used for single-record evaluation; Where is the equivalent
// store predicate the reconciler executes in bulk.
type ExpiryCase struct {
	// Name identifies the case in the run report breakdown.
	Name string

	// Reason is the human-readable cancellation reason recorded on the row.
	Reason string

	// Matches reports whether the reservation is expired at the given time.
	Matches func(r models.Reservation, now time.Time) bool

	// Where returns the store predicate for this case.
	Where func(now time.Time) (string, []any)
}

// ExpiryCases returns the payment expiry policy as an ordered rule table.
// Only pending_payment reservations are ever evaluated; the caller supplies
// that guard.
func ExpiryCases() []ExpiryCase {
	return []ExpiryCase{
		{
			Name:   "ewallet_timeout",
			Reason: "Payment expired - e-wallet payment not completed within time limit",
			Matches: func(r models.Reservation, now time.Time) bool {
				return r.PaymentMethod == models.PaymentEWallet &&
					now.Sub(r.CreatedAt) > EWalletTimeout
			},
			Where: func(now time.Time) (string, []any) {
				return "payment_method = ? AND created_at < ?",
					[]any{models.PaymentEWallet, now.Add(-EWalletTimeout)}
			},
		},
		{
			Name:   "cash_deadline",
			Reason: "Cash payment deadline expired",
			Matches: func(r models.Reservation, now time.Time) bool {
				return r.PaymentMethod == models.PaymentCash &&
					r.CashPaymentDeadline != nil &&
					now.After(*r.CashPaymentDeadline)
			},
			Where: func(now time.Time) (string, []any) {
				return "payment_method = ? AND cash_payment_deadline IS NOT NULL AND cash_payment_deadline < ?",
					[]any{models.PaymentCash, now}
			},
		},
		{
			Name:   "cash_grace",
			Reason: "Cash payment not received - session start time passed",
			Matches: func(r models.Reservation, now time.Time) bool {
				return r.PaymentMethod == models.PaymentCash &&
					r.CashPaymentDeadline == nil &&
					now.After(r.StartTime.Add(CashGracePeriod))
			},
			Where: func(now time.Time) (string, []any) {
				return "payment_method = ? AND cash_payment_deadline IS NULL AND start_time < ?",
					[]any{models.PaymentCash, now.Add(-CashGracePeriod)}
			},
		},
		{
			Name:   "no_payment_method",
			Reason: "Reservation expired - no payment activity",
			Matches: func(r models.Reservation, now time.Time) bool {
				return r.PaymentMethod == "" &&
					now.Sub(r.CreatedAt) > StaleTimeout
			},
			Where: func(now time.Time) (string, []any) {
				return "(payment_method IS NULL OR payment_method = '') AND created_at < ?",
					[]any{now.Add(-StaleTimeout)}
			},
		},
	}
}

// IsExpired evaluates the payment expiry policy for a single reservation.
// It returns the matched cancellation reason. Any status other than
// pending_payment is never expired.
func IsExpired(r models.Reservation, now time.Time) (bool, string) {
	if r.Status != models.StatusPendingPayment {
		return false, ""
	}

	for _, c := range ExpiryCases() {
		if c.Matches(r, now) {
			return true, c.Reason
		}
	}

	return false, ""
}
