// Package reservation implements the reservation lifecycle reconciler.
//
// A reservation moves pending_payment -> confirmed -> ongoing -> completed,
// or pending_payment -> cancelled when its payment expires. The reconciler
// advances these statuses purely as a function of the run timestamp through
// predicate-guarded bulk updates, and reverts ongoing rows back to confirmed
// when the development clock has moved backward.
//
// The payment expiry policy lives in this package as a pure, ordered rule
// table (ExpiryCases) shared by the bulk transitions and single-record
// evaluation.
package reservation
