package update

import (
	"errors"
	"fmt"
)

const (
	fleetFailureTemplateConstant           = "%d repository task(s) failed"
	usageErrorTemplateConstant             = "usage error: %s"
	resetRequiresSchemeMessageConstant     = "--reset-to-remote must specify --scheme=foo"
	timestampRequiresSchemeMessageConstant = "--match-timestamp must specify --scheme=foo"
	gitExecutorMissingMessageConstant      = "git executor not configured"
)

// ErrGitExecutorNotConfigured indicates the runner was constructed without a git executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// FleetFailureError reports how many clone and update tasks failed. The count is the
// process exit code.
type FleetFailureError struct {
	FailureCount int
}

// Error describes the aggregate failure.
func (failure FleetFailureError) Error() string {
	return fmt.Sprintf(fleetFailureTemplateConstant, failure.FailureCount)
}

// UsageError reports invalid flag combinations detected before any repository work.
type UsageError struct {
	Message string
}

// Error describes the usage problem.
func (usageError UsageError) Error() string {
	return fmt.Sprintf(usageErrorTemplateConstant, usageError.Message)
}
