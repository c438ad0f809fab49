// Package queue implements the queue session lifecycle reconciler.
//
// A session moves upcoming -> open -> active -> completed as real time
// passes: it becomes joinable two hours before its start time, activates
// at start, and completes at end. Paused sessions hold their state until
// completion. Three reverse rules mirror the forward edges for development
// deployments whose clock can move backward.
package queue
