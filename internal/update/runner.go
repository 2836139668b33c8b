package update

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/temirov/checkoutsync/internal/execshell"
	"github.com/temirov/checkoutsync/internal/fleet"
	"github.com/temirov/checkoutsync/internal/manifest"
	"github.com/temirov/checkoutsync/internal/monorepo"
	"github.com/temirov/checkoutsync/internal/reconcile"
	"github.com/temirov/checkoutsync/internal/repos/dependencies"
	"github.com/temirov/checkoutsync/internal/repos/shared"
	"github.com/temirov/checkoutsync/internal/schemes"
	"github.com/temirov/checkoutsync/internal/snapshot"
	"github.com/temirov/checkoutsync/internal/ui"
	pathutils "github.com/temirov/checkoutsync/internal/utils/path"
)

const (
	defaultManifestRelativePathConstant  = "utils/update-checkout-config.json"
	foundPullRequestsTemplateConstant    = "Found related pull requests: [%s]\n"
	pullRequestListSeparatorConstant     = ", "
	missingSourcesNoticeConstant         = "You don't have all sources. Call with --clone to get them."
	updateFailedMessageConstant          = "checkout-sync failed, fix errors and try again"
	updateSucceededMessageConstant       = "checkout-sync succeeded"
	lineTemplateConstant                 = "%s\n"
	sourceRootResolutionTemplateConstant = "failed to resolve source root: %w"
	manifestResolutionTemplateConstant   = "failed to resolve configuration document path: %w"
	timestampLookupTemplateConstant      = "failed to read commit timestamp of %s: %w"
	snapshotFailureTemplateConstant      = "failed to record repository hashes: %w"
	linkFailureTemplateConstant          = "failed to link monorepo projects: %w"
	runStartedLogMessageConstant         = "update started"
	timestampResolvedLogMessageConstant  = "matching timestamp of primary repository"
	runFinishedLogMessageConstant        = "update finished"
	logFieldSourceRootConstant           = "source_root"
	logFieldManifestConstant             = "manifest"
	logFieldSchemeConstant               = "scheme"
	logFieldTagConstant                  = "tag"
	logFieldJobsConstant                 = "jobs"
	logFieldTimestampConstant            = "timestamp"
	logFieldFailuresConstant             = "failures"
)

// Options captures the resolved inputs of one update run.
type Options struct {
	Configuration    CommandConfiguration
	Clone            bool
	CloneWithSSH     bool
	SkipHistory      bool
	SkipRepositories []string
	SchemeName       string
	Tag              string
	ResetToRemote    bool
	Clean            bool
	GitHubComment    string
	DumpHashes       bool
	DumpHashesScheme string
	DumpFormat       snapshot.Format
	MatchTimestamp   bool
}

// Validate rejects flag combinations that need a scheme. It runs before any git command.
func (options Options) Validate() error {
	schemeName := strings.TrimSpace(options.SchemeName)
	if options.ResetToRemote && len(schemeName) == 0 {
		return UsageError{Message: resetRequiresSchemeMessageConstant}
	}
	if options.MatchTimestamp && len(schemeName) == 0 {
		return UsageError{Message: timestampRequiresSchemeMessageConstant}
	}
	return nil
}

// Dependencies enumerates collaborators of Runner.
type Dependencies struct {
	GitExecutor  shared.GitExecutor
	FileSystem   shared.FileSystem
	PathResolver *pathutils.PathResolver
	Output       io.Writer
	Styler       ui.Styler
	PlatformName string
	Logger       *zap.Logger
}

// Runner executes update runs.
type Runner struct {
	executor     shared.GitExecutor
	fileSystem   shared.FileSystem
	pathResolver *pathutils.PathResolver
	output       io.Writer
	reporter     shared.Reporter
	styler       ui.Styler
	platformName string
	logger       *zap.Logger
}

// NewRunner constructs a Runner.
func NewRunner(runnerDependencies Dependencies) (*Runner, error) {
	if runnerDependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	logger := runnerDependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pathResolver := runnerDependencies.PathResolver
	if pathResolver == nil {
		pathResolver = pathutils.NewPathResolver()
	}
	output := runnerDependencies.Output
	if output == nil {
		output = io.Discard
	}
	platformName := runnerDependencies.PlatformName
	if len(platformName) == 0 {
		platformName = manifest.CurrentPlatformName()
	}
	return &Runner{
		executor:     runnerDependencies.GitExecutor,
		fileSystem:   dependencies.ResolveFileSystem(runnerDependencies.FileSystem),
		pathResolver: pathResolver,
		output:       output,
		reporter:     shared.NewWriterReporter(output),
		styler:       runnerDependencies.Styler,
		platformName: platformName,
		logger:       logger,
	}, nil
}

// Run performs one update. Per-repository failures are counted and returned as
// FleetFailureError; configuration and usage problems are returned before any repository work.
func (runner *Runner) Run(executionContext context.Context, options Options) error {
	if validationError := options.Validate(); validationError != nil {
		return validationError
	}
	configuration := options.Configuration.Sanitize()

	sourceRoot, sourceRootError := runner.pathResolver.Resolve(configuration.SourceRoot)
	if sourceRootError != nil {
		return fmt.Errorf(sourceRootResolutionTemplateConstant, sourceRootError)
	}
	manifestPath, manifestPathError := runner.resolveManifestPath(configuration, sourceRoot)
	if manifestPathError != nil {
		return fmt.Errorf(manifestResolutionTemplateConstant, manifestPathError)
	}

	document, loadError := manifest.Load(runner.fileSystem, manifestPath)
	if loadError != nil {
		return loadError
	}

	snapshotService, snapshotServiceError := snapshot.NewService(snapshot.Dependencies{GitExecutor: runner.executor, FileSystem: runner.fileSystem, Logger: runner.logger})
	if snapshotServiceError != nil {
		return snapshotServiceError
	}

	if options.DumpHashes || len(strings.TrimSpace(options.DumpHashesScheme)) > 0 {
		return runner.dumpHashes(executionContext, snapshotService, document, sourceRoot, options)
	}

	schemeName := strings.TrimSpace(options.SchemeName)
	runner.logger.Info(runStartedLogMessageConstant,
		zap.String(logFieldSourceRootConstant, sourceRoot),
		zap.String(logFieldManifestConstant, manifestPath),
		zap.String(logFieldSchemeConstant, schemeName),
		zap.String(logFieldTagConstant, options.Tag),
		zap.Int(logFieldJobsConstant, configuration.Jobs))

	pullRequests := map[string]string{}
	if len(strings.TrimSpace(options.GitHubComment)) > 0 {
		pullRequests = schemes.ResolveCrossRepositoryPullRequests(options.GitHubComment, configuration.PullRequestOrganizations)
		runner.reporter.Printf(foundPullRequestsTemplateConstant, strings.Join(schemes.FormatPullRequests(pullRequests), pullRequestListSeparatorConstant))
	}

	orchestrator, orchestratorError := runner.newOrchestrator(configuration)
	if orchestratorError != nil {
		return orchestratorError
	}

	var cloneResults []fleet.TaskResult
	if options.Clone || options.CloneWithSSH {
		if len(schemeName) == 0 {
			schemeName = document.DefaultBranchScheme
		}
		var cloneError error
		cloneResults, cloneError = orchestrator.CloneAll(executionContext, fleet.CloneAllRequest{
			SourceRoot:       sourceRoot,
			Document:         document,
			SchemeName:       schemeName,
			WithSSH:          options.CloneWithSSH,
			SkipHistory:      options.SkipHistory,
			SkipRepositories: options.SkipRepositories,
			PlatformName:     runner.platformName,
		})
		if cloneError != nil {
			return cloneError
		}
	}

	runner.warnAboutMissingSources(sourceRoot, configuration.SentinelRepositories)

	timestamp := ""
	if options.MatchTimestamp {
		var timestampError error
		timestamp, timestampError = runner.primaryTimestamp(executionContext, sourceRoot, configuration.PrimaryRepository)
		if timestampError != nil {
			return timestampError
		}
	}

	updateResults, updateError := orchestrator.UpdateAll(executionContext, fleet.UpdateRequest{
		SourceRoot:       sourceRoot,
		Document:         document,
		SchemeName:       schemeName,
		Tag:              strings.TrimSpace(options.Tag),
		Timestamp:        timestamp,
		PullRequests:     pullRequests,
		SkipRepositories: options.SkipRepositories,
		ResetToRemote:    options.ResetToRemote,
		Clean:            options.Clean,
		RemoteName:       configuration.RemoteName,
	})
	if updateError != nil {
		return updateError
	}

	failureCount := fleet.CountFailures(cloneResults, fleet.PhaseClone, runner.reporter)
	failureCount += fleet.CountFailures(updateResults, fleet.PhaseUpdate, runner.reporter)
	runner.logger.Info(runFinishedLogMessageConstant, zap.Int(logFieldFailuresConstant, failureCount))

	if failureCount > 0 {
		runner.printLine(updateFailedMessageConstant, runner.styler.Theme().Error)
		return FleetFailureError{FailureCount: failureCount}
	}

	linker := monorepo.NewLinker(monorepo.Dependencies{FileSystem: runner.fileSystem, Reporter: runner.reporter, Logger: runner.logger})
	if linkError := linker.Link(monorepo.Options{SourceRoot: sourceRoot, Root: configuration.Monorepo.Root, Projects: configuration.Monorepo.Projects}); linkError != nil {
		return fmt.Errorf(linkFailureTemplateConstant, linkError)
	}

	runner.printLine(updateSucceededMessageConstant, runner.styler.Theme().Success)
	hashes, snapshotError := snapshotService.Snapshot(executionContext, sourceRoot, manifest.SortedRepositoryNames(document))
	if snapshotError != nil {
		return fmt.Errorf(snapshotFailureTemplateConstant, snapshotError)
	}
	return snapshot.HashReport{Styler: runner.styler}.Write(runner.output, hashes)
}

func (runner *Runner) newOrchestrator(configuration CommandConfiguration) (*fleet.Orchestrator, error) {
	reconcileService, reconcileError := reconcile.NewService(reconcile.Dependencies{
		GitExecutor: runner.executor,
		FileSystem:  runner.fileSystem,
		Reporter:    runner.reporter,
		Logger:      runner.logger,
	})
	if reconcileError != nil {
		return nil, reconcileError
	}
	cloneService, cloneError := fleet.NewCloneService(fleet.CloneDependencies{
		GitExecutor: runner.executor,
		FileSystem:  runner.fileSystem,
		Reporter:    runner.reporter,
		Logger:      runner.logger,
	})
	if cloneError != nil {
		return nil, cloneError
	}
	return fleet.NewOrchestrator(fleet.OrchestratorDependencies{
		Reconciler: reconcileService,
		Cloner:     cloneService,
		Pool:       fleet.Pool{Concurrency: configuration.Jobs},
		Reporter:   runner.reporter,
		Logger:     runner.logger,
	})
}

func (runner *Runner) dumpHashes(executionContext context.Context, snapshotService *snapshot.Service, document manifest.Document, sourceRoot string, options Options) error {
	hashes, snapshotError := snapshotService.Snapshot(executionContext, sourceRoot, manifest.SortedRepositoryNames(document))
	if snapshotError != nil {
		return fmt.Errorf(snapshotFailureTemplateConstant, snapshotError)
	}
	dumpFormat := options.DumpFormat
	if len(dumpFormat) == 0 {
		dumpFormat = snapshot.FormatJSON
	}
	exported := snapshot.ExportScheme(document, hashes, strings.TrimSpace(options.DumpHashesScheme))
	return snapshot.WriteDocument(runner.output, exported, dumpFormat)
}

func (runner *Runner) resolveManifestPath(configuration CommandConfiguration, sourceRoot string) (string, error) {
	if len(configuration.ManifestPath) > 0 {
		return runner.pathResolver.Resolve(configuration.ManifestPath)
	}
	return filepath.Join(sourceRoot, configuration.PrimaryRepository, filepath.FromSlash(defaultManifestRelativePathConstant)), nil
}

func (runner *Runner) warnAboutMissingSources(sourceRoot string, sentinelRepositories []string) {
	if len(sentinelRepositories) == 0 {
		return
	}
	for _, sentinelRepository := range sentinelRepositories {
		if _, statError := runner.fileSystem.Stat(filepath.Join(sourceRoot, sentinelRepository)); statError == nil {
			return
		}
	}
	runner.printLine(missingSourcesNoticeConstant, runner.styler.Theme().Warn)
}

func (runner *Runner) primaryTimestamp(executionContext context.Context, sourceRoot string, primaryRepository string) (string, error) {
	timestampResult, timestampError := runner.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{"log", "-1", "--format=%cI"},
		WorkingDirectory:     filepath.Join(sourceRoot, primaryRepository),
		EnvironmentVariables: shared.NonInteractiveGitEnvironment(),
	})
	if timestampError != nil {
		return "", fmt.Errorf(timestampLookupTemplateConstant, primaryRepository, timestampError)
	}
	timestamp := strings.TrimSpace(timestampResult.StandardOutput)
	runner.logger.Info(timestampResolvedLogMessageConstant, zap.String(logFieldTimestampConstant, timestamp))
	return timestamp, nil
}

func (runner *Runner) printLine(message string, style lipgloss.Style) {
	runner.reporter.Printf(lineTemplateConstant, runner.styler.Render(message, style))
}
