// Package cli constructs the checkout-sync command-line interface, wiring the
// Cobra command hierarchy, configuration loader, and structured logging
// primitives. Run executes the command set and maps its outcome to a process
// exit code.
package cli
