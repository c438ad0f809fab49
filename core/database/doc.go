// Package database provides the Postgres connection used by the
// reconciliation engine.
//
// Postgres is required: every lifecycle transition is a single
// UPDATE .. WHERE status = .. RETURNING id statement, and the report
// carries the affected row IDs straight from that statement.
package database
