// Package monorepo links projects of a monorepo checkout into the source root so tools that
// expect sibling checkouts find them.
package monorepo
