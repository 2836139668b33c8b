package manifest

import (
	"fmt"
	"sort"
	"strings"
)

// Validate enforces the document invariants: every branch-scheme lists its own name among
// its aliases, no alias belongs to two schemes, and every repository has a remote.
func Validate(document Document) error {
	schemeNames := sortedKeys(document.BranchSchemes)

	for _, schemeName := range schemeNames {
		if !containsString(document.BranchSchemes[schemeName].Aliases, schemeName) {
			return ConfigurationError{Message: fmt.Sprintf(missingSelfAliasMessageTemplateConstant, schemeName)}
		}
	}

	aliasOwners := make(map[string]string)
	for _, schemeName := range schemeNames {
		for _, alias := range document.BranchSchemes[schemeName].Aliases {
			if owningScheme, claimed := aliasOwners[alias]; claimed {
				return ConfigurationError{Message: fmt.Sprintf(sharedAliasMessageTemplateConstant, alias, owningScheme, schemeName)}
			}
			aliasOwners[alias] = schemeName
		}
	}

	for _, repositoryName := range SortedRepositoryNames(document) {
		remote := document.Repositories[repositoryName].Remote
		if len(strings.TrimSpace(remote.ID)) == 0 && len(strings.TrimSpace(remote.URL)) == 0 {
			return ConfigurationError{Message: fmt.Sprintf(missingRemoteMessageTemplateConstant, repositoryName)}
		}
	}
	return nil
}

// SortedRepositoryNames returns the configured repository names in lexical order.
func SortedRepositoryNames(document Document) []string {
	return sortedKeys(document.Repositories)
}

func sortedKeys[Value any](values map[string]Value) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func containsString(values []string, candidate string) bool {
	for _, value := range values {
		if value == candidate {
			return true
		}
	}
	return false
}
