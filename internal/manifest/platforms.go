package manifest

import (
	"runtime"
	"strings"
)

var platformNamesByOperatingSystem = map[string]string{
	"darwin":    "Darwin",
	"ios":       "Darwin",
	"linux":     "Linux",
	"android":   "Linux",
	"windows":   "Windows",
	"freebsd":   "FreeBSD",
	"openbsd":   "OpenBSD",
	"netbsd":    "NetBSD",
	"dragonfly": "DragonFly",
	"solaris":   "SunOS",
	"illumos":   "SunOS",
	"aix":       "AIX",
}

// CurrentPlatformName returns the platform label used in repository allow-lists for the
// running operating system.
func CurrentPlatformName() string {
	return PlatformName(runtime.GOOS)
}

// PlatformName maps a GOOS value to its allow-list label.
func PlatformName(operatingSystem string) string {
	if platformName, known := platformNamesByOperatingSystem[operatingSystem]; known {
		return platformName
	}
	if len(operatingSystem) == 0 {
		return operatingSystem
	}
	return strings.ToUpper(operatingSystem[:1]) + operatingSystem[1:]
}

// PlatformDecision records whether a repository with a platform allow-list is cloned.
type PlatformDecision struct {
	RepositoryName string
	Included       bool
}

// PlatformSkipList evaluates every repository that declares platforms against platformName.
// Repositories without an allow-list are always included and are not reported.
func PlatformSkipList(document Document, platformName string) (skipList []string, decisions []PlatformDecision) {
	for _, repositoryName := range SortedRepositoryNames(document) {
		repository := document.Repositories[repositoryName]
		if repository.Platforms == nil {
			continue
		}
		included := containsString(repository.Platforms, platformName)
		decisions = append(decisions, PlatformDecision{RepositoryName: repositoryName, Included: included})
		if !included {
			skipList = append(skipList, repositoryName)
		}
	}
	return skipList, decisions
}
