// Package archive persists reconciliation run reports to object storage.
//
// Each completed run can be archived as a single JSON object keyed by its
// processedAt timestamp, giving operators a durable trail of what the
// engine did and when. Archival is optional and best-effort; a failed
// upload never fails the run that produced the report.
package archive
