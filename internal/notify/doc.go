// Package notify publishes pipeline stage events so that an external
// dashboard can follow a run as it happens.
//
// Publishing is best effort. A notifier failure is logged by the caller and
// never changes the outcome of the run.
package notify
