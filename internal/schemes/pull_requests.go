package schemes

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const (
	// DefaultPullRequestOrganizationConstant is the organization scanned when none is configured.
	DefaultPullRequestOrganizationConstant = "apple"

	pullRequestPatternTemplateConstant = `(?:%s)/[-a-zA-Z0-9_]+(?:/pull/|#)\d+`
	pullPathSeparatorConstant          = "/pull/"
	pullNumberSeparatorConstant        = "#"
	organizationSeparatorConstant      = "|"
)

// ResolveCrossRepositoryPullRequests scans commentText for org/repo/pull/N and org/repo#N
// references within the given organizations and maps each org/repo id to its pull request
// number. A later reference to the same id replaces an earlier one.
func ResolveCrossRepositoryPullRequests(commentText string, organizations []string) map[string]string {
	pullRequests := map[string]string{}
	pattern := pullRequestPattern(organizations)
	if pattern == nil {
		return pullRequests
	}

	for _, reference := range pattern.FindAllString(commentText, -1) {
		normalizedReference := strings.Replace(reference, pullPathSeparatorConstant, pullNumberSeparatorConstant, 1)
		separatorIndex := strings.LastIndex(normalizedReference, pullNumberSeparatorConstant)
		pullRequests[normalizedReference[:separatorIndex]] = normalizedReference[separatorIndex+1:]
	}
	return pullRequests
}

// FormatPullRequests renders a resolved map as sorted id#number references.
func FormatPullRequests(pullRequests map[string]string) []string {
	references := make([]string, 0, len(pullRequests))
	for remoteIdentifier, pullRequestNumber := range pullRequests {
		references = append(references, remoteIdentifier+pullNumberSeparatorConstant+pullRequestNumber)
	}
	sort.Strings(references)
	return references
}

func pullRequestPattern(organizations []string) *regexp.Regexp {
	quotedOrganizations := make([]string, 0, len(organizations))
	for _, organization := range organizations {
		if trimmedOrganization := strings.TrimSpace(organization); len(trimmedOrganization) > 0 {
			quotedOrganizations = append(quotedOrganizations, regexp.QuoteMeta(trimmedOrganization))
		}
	}
	if len(quotedOrganizations) == 0 {
		quotedOrganizations = append(quotedOrganizations, DefaultPullRequestOrganizationConstant)
	}
	return regexp.MustCompile(fmt.Sprintf(pullRequestPatternTemplateConstant, strings.Join(quotedOrganizations, organizationSeparatorConstant)))
}
