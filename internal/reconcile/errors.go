package reconcile

import (
	"errors"
	"fmt"
)

const (
	gitExecutorMissingMessageConstant     = "git executor not configured"
	repositoryPathRequiredMessageConstant = "repository path must be provided"
	revisionNotFoundTemplateConstant      = "no revision in %s before timestamp %s on %s"
	ambiguousRefTemplateConstant          = "cannot determine if %s is a branch or a tag in %s"
	reconcilePanicTemplateConstant        = "reconcile of %s panicked: %v"
	bestEffortDiscardedTemplateConstant   = "ignored failure: %v"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrRepositoryPathRequired indicates the repository path option was empty.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// RevisionNotFoundError reports that no commit precedes the requested timestamp.
type RevisionNotFoundError struct {
	RepositoryName string
	Timestamp      string
	Ref            string
}

// Error describes the missing revision.
func (notFoundError RevisionNotFoundError) Error() string {
	return fmt.Sprintf(revisionNotFoundTemplateConstant, notFoundError.RepositoryName, notFoundError.Timestamp, notFoundError.Ref)
}

// AmbiguousRefError reports a reset target that is neither a tag nor a local branch.
type AmbiguousRefError struct {
	RepositoryPath string
	Target         string
}

// Error describes the unresolved reference.
func (ambiguousError AmbiguousRefError) Error() string {
	return fmt.Sprintf(ambiguousRefTemplateConstant, ambiguousError.Target, ambiguousError.RepositoryPath)
}

// PanicError reports a reconcile run that panicked; the panic value is preserved.
type PanicError struct {
	RepositoryPath string
	Value          any
}

// Error describes the recovered panic.
func (panicError PanicError) Error() string {
	return fmt.Sprintf(reconcilePanicTemplateConstant, panicError.RepositoryPath, panicError.Value)
}

// BestEffort carries the outcome of an operation whose failure is tolerated, such as
// aborting a rebase that may not be in progress.
type BestEffort struct {
	Err error
}

// Failed reports whether the operation failed.
func (outcome BestEffort) Failed() bool {
	return outcome.Err != nil
}

// Discard drops the outcome and returns a description of any ignored failure for logging.
func (outcome BestEffort) Discard() string {
	if outcome.Err == nil {
		return ""
	}
	return fmt.Sprintf(bestEffortDiscardedTemplateConstant, outcome.Err)
}
