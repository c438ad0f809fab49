// Package server holds the HTTP server configuration.
//
// The Env field doubles as the safety switch for the simulated clock:
// only "development" deployments may read or write a time offset, every
// other environment always runs on the wall clock.
package server
