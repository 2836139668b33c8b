// Package gitrepo parses git remote URLs into their host, owner, and repository
// components so remote identifiers can be derived from explicit URL overrides.
package gitrepo
