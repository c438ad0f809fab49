// Package clock supplies "now" to the reconciliation engine.
//
// Production deployments always run on the wall clock. Development
// deployments may shift the clock by an offset persisted in the
// dev_settings table, which makes it possible to simulate time passing
// (or rewinding) when exercising the lifecycle state machines.
package clock
