// Package fleet runs clone and reconcile tasks across every configured repository.
//
// Pool bounds concurrency with an errgroup limit and turns task errors and panics into
// failed TaskResult values, so one repository never cancels or aborts another.
// Orchestrator schedules the clone phase and the update phase, and CountFailures
// aggregates the per-phase outcome into the process exit code.
package fleet
