// Package schemes resolves branch-scheme names to per-repository branches and
// extracts cross-repository pull request references from free-form comments.
package schemes
