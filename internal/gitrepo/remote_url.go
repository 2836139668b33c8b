package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant           = "ssh://"
	gitProtocolPrefixConstant           = "git://"
	httpsProtocolPrefixConstant         = "https://"
	httpProtocolPrefixConstant          = "http://"
	sshUserDelimiterConstant            = "@"
	sshPathDelimiterConstant            = ":"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	invalidRemoteURLMessageConstant     = "invalid remote url"
	requiredValueMessageConstant        = "value required"
)

// RemoteProtocol enumerates the transport families a remote URL can use.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
	RemoteProtocolGit   RemoteProtocol = RemoteProtocol("git")
)

// RemoteURL represents a structured git remote URL.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// Identifier returns the owner/repository pair used to match cross-repository pull requests.
func (remote RemoteURL) Identifier() string {
	return remote.Owner + pathSeparatorConstant + remote.Repository
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// ParseRemoteURL converts a textual remote URL into a structured representation.
// Both scp-style (git@host:owner/repo.git) and URL-style remotes are accepted.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	switch {
	case strings.HasPrefix(trimmedRemote, sshProtocolPrefixConstant):
		return parseHierarchicalRemote(RemoteProtocolSSH, strings.TrimPrefix(trimmedRemote, sshProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, gitProtocolPrefixConstant):
		return parseHierarchicalRemote(RemoteProtocolGit, strings.TrimPrefix(trimmedRemote, gitProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, httpsProtocolPrefixConstant):
		return parseHierarchicalRemote(RemoteProtocolHTTPS, strings.TrimPrefix(trimmedRemote, httpsProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, httpProtocolPrefixConstant):
		return parseHierarchicalRemote(RemoteProtocolHTTPS, strings.TrimPrefix(trimmedRemote, httpProtocolPrefixConstant))
	case strings.Contains(trimmedRemote, sshUserDelimiterConstant) && strings.Contains(trimmedRemote, sshPathDelimiterConstant):
		return parseScpStyleRemote(trimmedRemote)
	}

	return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
}

// parseHierarchicalRemote handles [user@]host[:port]/owner/.../repo after the scheme prefix.
func parseHierarchicalRemote(protocol RemoteProtocol, remainder string) (RemoteURL, error) {
	if userSplitIndex := strings.Index(remainder, sshUserDelimiterConstant); userSplitIndex >= 0 {
		slashIndex := strings.Index(remainder, pathSeparatorConstant)
		if slashIndex == -1 || userSplitIndex < slashIndex {
			remainder = remainder[userSplitIndex+1:]
		}
	}

	pathComponents := strings.Split(strings.Trim(remainder, pathSeparatorConstant), pathSeparatorConstant)
	if len(pathComponents) < 3 {
		return RemoteURL{}, RemoteURLParseError{Input: remainder, Message: invalidRemoteURLMessageConstant}
	}
	host := pathComponents[0]
	if portIndex := strings.Index(host, sshPathDelimiterConstant); portIndex >= 0 {
		host = host[:portIndex]
	}

	return buildRemoteURL(protocol, host, pathComponents[1:])
}

func parseScpStyleRemote(remote string) (RemoteURL, error) {
	hostAndPath := remote[strings.Index(remote, sshUserDelimiterConstant)+1:]
	pathSplitIndex := strings.Index(hostAndPath, sshPathDelimiterConstant)
	if pathSplitIndex == -1 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
	host := hostAndPath[:pathSplitIndex]
	path := strings.Trim(hostAndPath[pathSplitIndex+1:], pathSeparatorConstant)
	return buildRemoteURL(RemoteProtocolSSH, host, strings.Split(path, pathSeparatorConstant))
}

// buildRemoteURL uses the last two path segments as owner and repository.
func buildRemoteURL(protocol RemoteProtocol, host string, pathSegments []string) (RemoteURL, error) {
	if len(host) == 0 || len(pathSegments) < 2 {
		return RemoteURL{}, RemoteURLParseError{Input: strings.Join(pathSegments, pathSeparatorConstant), Message: invalidRemoteURLMessageConstant}
	}
	owner := pathSegments[len(pathSegments)-2]
	repository := strings.TrimSuffix(pathSegments[len(pathSegments)-1], gitSuffixConstant)
	if len(owner) == 0 || len(repository) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: strings.Join(pathSegments, pathSeparatorConstant), Message: invalidRemoteURLMessageConstant}
	}
	return RemoteURL{Protocol: protocol, Host: host, Owner: owner, Repository: repository}, nil
}
