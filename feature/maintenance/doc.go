// Package maintenance orchestrates reconciliation runs.
//
// A run is a short-lived, synchronous sequence: one clock read, the
// reservation transition steps, then the queue session transition steps,
// always in that order. Overlapping runs are safe because every step is a
// status-guarded conditional update; a second run simply matches zero rows.
//
// # HTTP Endpoints
//
//   - POST /maintenance/run : Executes one run and returns the report.
//   - GET  /maintenance/run : Same, for plain cron fetchers.
//   - GET  /dev/time : Reads the simulated clock (development only).
//   - POST /dev/time : Sets or resets the clock offset (development only).
package maintenance
