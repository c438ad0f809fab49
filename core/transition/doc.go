// Package transition implements predicate-guarded bulk state transitions.
//
// Each Rule is one atomic conditional update: rows are moved from a source
// status to a destination status only when a time predicate holds, and the
// same statement returns the affected IDs. Because every statement carries
// its source-status guard, overlapping reconciliation runs converge to the
// same final state without locks or cross-step transactions.
package transition
