// Package logger provides a structured logging facility based on Zap.
//
// It produces JSON output in production and a colored console encoding for
// development. The WithRayID helper extracts the per-request RayID from a
// Fiber context and attaches it to the log entry, so every log line emitted
// while serving a request can be correlated.
package logger
