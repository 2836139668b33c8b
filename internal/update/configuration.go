package update

import (
	"strings"

	"github.com/temirov/checkoutsync/internal/monorepo"
	"github.com/temirov/checkoutsync/internal/repos/shared"
	"github.com/temirov/checkoutsync/internal/schemes"
)

const (
	defaultPrimaryRepositoryConstant  = "swift"
	manifestPathKeyConstant           = "manifest_path"
	sourceRootKeyConstant             = "source_root"
	jobsKeyConstant                   = "jobs"
	remoteKeyConstant                 = "remote"
	primaryRepositoryKeyConstant      = "primary_repository"
	organizationsKeyConstant          = "pull_request_organizations"
	sentinelRepositoriesKeyConstant   = "sentinel_repositories"
	monorepoRootKeyConstant           = "monorepo.root"
	monorepoProjectsKeyConstant       = "monorepo.projects"
	configurationKeySeparatorConstant = "."
)

// CommandConfiguration captures persistent settings for the update command.
type CommandConfiguration struct {
	ManifestPath             string                `mapstructure:"manifest_path"`
	SourceRoot               string                `mapstructure:"source_root"`
	Jobs                     int                   `mapstructure:"jobs"`
	RemoteName               string                `mapstructure:"remote"`
	PrimaryRepository        string                `mapstructure:"primary_repository"`
	PullRequestOrganizations []string              `mapstructure:"pull_request_organizations"`
	SentinelRepositories     []string              `mapstructure:"sentinel_repositories"`
	Monorepo                 MonorepoConfiguration `mapstructure:"monorepo"`
}

// MonorepoConfiguration selects the projects linked out of the monorepo checkout.
type MonorepoConfiguration struct {
	Root     string   `mapstructure:"root"`
	Projects []string `mapstructure:"projects"`
}

// DefaultSentinelRepositories lists the repositories whose absence suggests an empty source root.
func DefaultSentinelRepositories() []string {
	return []string{"cmark", "llvm", "clang"}
}

// DefaultCommandConfiguration returns baseline configuration values for the update command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		ManifestPath:             "",
		SourceRoot:               "",
		Jobs:                     0,
		RemoteName:               shared.OriginRemoteNameConstant,
		PrimaryRepository:        defaultPrimaryRepositoryConstant,
		PullRequestOrganizations: []string{schemes.DefaultPullRequestOrganizationConstant},
		SentinelRepositories:     DefaultSentinelRepositories(),
		Monorepo: MonorepoConfiguration{
			Root:     monorepo.DefaultRootConstant,
			Projects: monorepo.DefaultProjects(),
		},
	}
}

// DefaultConfigurationValues exposes the defaults as viper keys under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	values := map[string]any{
		manifestPathKeyConstant:         defaults.ManifestPath,
		sourceRootKeyConstant:           defaults.SourceRoot,
		jobsKeyConstant:                 defaults.Jobs,
		remoteKeyConstant:               defaults.RemoteName,
		primaryRepositoryKeyConstant:    defaults.PrimaryRepository,
		organizationsKeyConstant:        defaults.PullRequestOrganizations,
		sentinelRepositoriesKeyConstant: defaults.SentinelRepositories,
		monorepoRootKeyConstant:         defaults.Monorepo.Root,
		monorepoProjectsKeyConstant:     defaults.Monorepo.Projects,
	}
	if len(prefix) == 0 {
		return values
	}
	prefixedValues := make(map[string]any, len(values))
	for key, value := range values {
		prefixedValues[prefix+configurationKeySeparatorConstant+key] = value
	}
	return prefixedValues
}

// Sanitize trims values and restores defaults for empty required settings.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.ManifestPath = strings.TrimSpace(configuration.ManifestPath)
	sanitized.SourceRoot = strings.TrimSpace(configuration.SourceRoot)
	if sanitized.Jobs < 0 {
		sanitized.Jobs = 0
	}
	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
	if len(sanitized.RemoteName) == 0 {
		sanitized.RemoteName = defaults.RemoteName
	}
	sanitized.PrimaryRepository = strings.TrimSpace(configuration.PrimaryRepository)
	if len(sanitized.PrimaryRepository) == 0 {
		sanitized.PrimaryRepository = defaults.PrimaryRepository
	}
	sanitized.PullRequestOrganizations = sanitizeValues(configuration.PullRequestOrganizations)
	if len(sanitized.PullRequestOrganizations) == 0 {
		sanitized.PullRequestOrganizations = defaults.PullRequestOrganizations
	}
	sanitized.SentinelRepositories = sanitizeValues(configuration.SentinelRepositories)
	sanitized.Monorepo.Root = strings.TrimSpace(configuration.Monorepo.Root)
	if len(sanitized.Monorepo.Root) == 0 {
		sanitized.Monorepo.Root = defaults.Monorepo.Root
	}
	sanitized.Monorepo.Projects = sanitizeValues(configuration.Monorepo.Projects)

	return sanitized
}

func sanitizeValues(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for _, candidate := range raw {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
