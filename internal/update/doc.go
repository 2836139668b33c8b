// Package update implements the update command: it loads the configuration document,
// optionally clones missing repositories, reconciles every checkout to the requested
// scheme, tag, or timestamp, and reports the resulting commit hashes.
package update
