// Package reconcile brings a single checkout into agreement with a computed target.
//
// Service.Reconcile runs a strictly ordered git sequence: target resolution
// (tag verification, cross-repository pull request fetch, timestamp lookup),
// optional cleaning, checkout, fetch, an optional hard reset to the remote,
// a detached-HEAD probe, rebase onto FETCH_HEAD, and submodule update. The
// first failing step ends the run and is returned inside Result rather than
// raised, so one repository never affects another.
package reconcile
