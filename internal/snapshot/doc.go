// Package snapshot records the HEAD commit of every checkout, renders it as a report,
// and exports it as a configuration document with a single pinned branch scheme.
package snapshot
