package schemes

import (
	"sort"

	"github.com/temirov/checkoutsync/internal/manifest"
)

// ResolveScheme returns the repository-to-branch map of the scheme whose aliases contain
// schemeName. Validation guarantees aliases are unique, so the first match is the only one.
// An empty or unregistered name resolves to (nil, false); callers then use the name itself
// as every repository's branch.
func ResolveScheme(document manifest.Document, schemeName string) (map[string]string, bool) {
	if len(schemeName) == 0 {
		return nil, false
	}
	for _, candidateName := range sortedSchemeNames(document) {
		branchScheme := document.BranchSchemes[candidateName]
		for _, alias := range branchScheme.Aliases {
			if alias == schemeName {
				return branchScheme.Repositories, true
			}
		}
	}
	return nil, false
}

// BranchForRepository picks the branch a repository should track. When the scheme was found
// the mapped branch is returned, or false if the scheme does not list the repository. When no
// scheme matched, the scheme name itself is the branch. An empty scheme name yields false.
func BranchForRepository(schemeMap map[string]string, schemeFound bool, schemeName string, repositoryName string) (string, bool) {
	if schemeFound {
		branch, listed := schemeMap[repositoryName]
		return branch, listed
	}
	if len(schemeName) == 0 {
		return "", false
	}
	return schemeName, true
}

// CloneBranch picks the branch a missing repository is cloned at. An empty scheme name falls
// back to the document's default scheme. The boolean is false when a registered scheme does
// not list the repository, in which case the repository is not cloned at all.
func CloneBranch(document manifest.Document, schemeName string, repositoryName string) (string, bool) {
	effectiveSchemeName := schemeName
	if len(effectiveSchemeName) == 0 {
		effectiveSchemeName = document.DefaultBranchScheme
	}
	if len(effectiveSchemeName) == 0 {
		return "", true
	}
	schemeMap, schemeFound := ResolveScheme(document, effectiveSchemeName)
	return BranchForRepository(schemeMap, schemeFound, effectiveSchemeName, repositoryName)
}

func sortedSchemeNames(document manifest.Document) []string {
	schemeNames := make([]string, 0, len(document.BranchSchemes))
	for schemeName := range document.BranchSchemes {
		schemeNames = append(schemeNames, schemeName)
	}
	sort.Strings(schemeNames)
	return schemeNames
}
