package manifest

import (
	"fmt"
	"strings"

	"github.com/temirov/checkoutsync/internal/gitrepo"
)

const clonePatternSubstitutionConstant = "%s"

// RemoteURL returns the clone URL of a repository: the explicit url override when present,
// otherwise the remote id interpolated into the SSH pattern (when SSH was requested or no
// HTTPS pattern exists) or into the HTTPS pattern.
func RemoteURL(document Document, repositoryName string, withSSH bool) (string, error) {
	repository, configured := document.Repositories[repositoryName]
	if !configured {
		return "", ConfigurationError{Message: fmt.Sprintf(unknownRepositoryMessageTemplateConstant, repositoryName)}
	}
	if overrideURL := strings.TrimSpace(repository.Remote.URL); len(overrideURL) > 0 {
		return overrideURL, nil
	}

	clonePattern := document.HTTPSClonePattern
	if withSSH || len(strings.TrimSpace(document.HTTPSClonePattern)) == 0 {
		clonePattern = document.SSHClonePattern
	}
	if len(strings.TrimSpace(clonePattern)) == 0 {
		return "", ConfigurationError{Message: fmt.Sprintf(missingClonePatternMessageTemplateConstant, repositoryName)}
	}
	return strings.Replace(clonePattern, clonePatternSubstitutionConstant, repository.Remote.ID, 1), nil
}

// RemoteIdentifier returns the owner/repository id used to match cross-repository pull
// requests. Repositories configured with a url override derive it from the URL; an empty
// string means the repository can never match.
func RemoteIdentifier(repository Repository) string {
	if remoteID := strings.TrimSpace(repository.Remote.ID); len(remoteID) > 0 {
		return remoteID
	}
	parsedRemote, parseError := gitrepo.ParseRemoteURL(repository.Remote.URL)
	if parseError != nil {
		return ""
	}
	return parsedRemote.Identifier()
}
