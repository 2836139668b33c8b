package manifest

import (
	"errors"
	"fmt"
)

const (
	configurationErrorTemplateConstant          = "configuration error: %s"
	configurationErrorWithPathTemplateConstant  = "configuration error in %s: %s"
	configurationErrorWithCauseTemplateConstant = "%s: %v"
	duplicateSchemeMessageTemplateConstant      = "duplicate branch-scheme %q"
	missingSelfAliasMessageTemplateConstant     = "branch-scheme name %q must be an alias too"
	sharedAliasMessageTemplateConstant          = "alias %q is shared by branch-schemes %q and %q"
	missingRemoteMessageTemplateConstant        = "repository %q needs a remote id or url"
	missingClonePatternMessageTemplateConstant  = "repository %q has no url and the document has no clone pattern"
	unknownRepositoryMessageTemplateConstant    = "repository %q is not configured"
	readDocumentMessageConstant                 = "unable to read document"
	parseDocumentMessageConstant                = "unable to parse document"
	decodeDocumentMessageConstant               = "unable to decode document"
)

// ErrFileReaderNotConfigured indicates Load was called without a file reader.
var ErrFileReaderNotConfigured = errors.New("manifest file reader not configured")

// ConfigurationError reports an invalid configuration document. It is fatal: no repository
// work starts once it is returned.
type ConfigurationError struct {
	Path    string
	Message string
	Cause   error
}

// Error describes the configuration problem.
func (configurationError ConfigurationError) Error() string {
	message := configurationError.Message
	if configurationError.Cause != nil {
		message = fmt.Sprintf(configurationErrorWithCauseTemplateConstant, message, configurationError.Cause)
	}
	if len(configurationError.Path) > 0 {
		return fmt.Sprintf(configurationErrorWithPathTemplateConstant, configurationError.Path, message)
	}
	return fmt.Sprintf(configurationErrorTemplateConstant, message)
}

// Unwrap exposes the underlying cause.
func (configurationError ConfigurationError) Unwrap() error {
	return configurationError.Cause
}
