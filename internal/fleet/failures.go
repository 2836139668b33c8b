package fleet

import (
	"github.com/temirov/checkoutsync/internal/repos/shared"
)

const (
	phaseFailureTemplateConstant = "%s failed for %s: %v\n"
)

// CountFailures reports every failed result of the given phase by repository path, falling
// back to the repository name, and returns how many failed.
func CountFailures(results []TaskResult, phase Phase, reporter shared.Reporter) int {
	failureCount := 0
	for _, result := range results {
		if result.Phase != phase || !result.Failed() {
			continue
		}
		failureCount++
		if reporter != nil {
			repositoryLabel := result.RepositoryPath
			if len(repositoryLabel) == 0 {
				repositoryLabel = result.RepositoryName
			}
			reporter.Printf(phaseFailureTemplateConstant, phase, repositoryLabel, result.Err)
		}
	}
	return failureCount
}
