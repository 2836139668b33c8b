package reconcile

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/checkoutsync/internal/execshell"
	"github.com/temirov/checkoutsync/internal/repos/dependencies"
	"github.com/temirov/checkoutsync/internal/repos/shared"
)

const (
	updatingRepositoryNoticeTemplateConstant  = "Updating '%s'\n"
	missingTagNoticeTemplateConstant          = "Tag '%s' does not exist for '%s', just updating regularly\n"
	detachedHeadNoticeTemplateConstant        = "%s\nDetached HEAD; probably checked out a tag. No need to rebase.\n"
	missingTagLogMessageConstant              = "tag missing on remote"
	crossRepositoryLogMessageConstant         = "fetching cross-repository pull request"
	statusProbeLogMessageConstant             = "working tree status before checkout"
	bestEffortLogMessageConstant              = "best-effort command failed"
	detachedHeadLogMessageConstant            = "detached HEAD; skipping rebase"
	skippedRepositoryLogMessageConstant       = "repository directory missing or symlinked; skipping"
	logFieldRepositoryConstant                = "repository"
	logFieldPathConstant                      = "path"
	logFieldTargetConstant                    = "target"
	logFieldTargetKindConstant                = "target_kind"
	logFieldRemoteIdentifierConstant          = "remote_id"
	logFieldPullRequestConstant               = "pull_request"
	logFieldStatusConstant                    = "status"
	logFieldOutcomeConstant                   = "outcome"
	verifyTagFailureTemplateConstant          = "failed to verify tag %q: %w"
	crossRepositoryCheckoutTemplateConstant   = "failed to checkout scheme branch %q: %w"
	pullRequestFetchFailureTemplateConstant   = "failed to fetch pull request %s: %w"
	timestampLookupFailureTemplateConstant    = "failed to find revision before %s: %w"
	cleanFailureTemplateConstant              = "failed to clean repository: %w"
	statusFailureTemplateConstant             = "failed to query status: %w"
	checkoutFailureTemplateConstant           = "failed to checkout %q: %w"
	fetchFailureTemplateConstant              = "failed to fetch updates: %w"
	resolveResetTargetFailureTemplateConstant = "failed to resolve reset target %q: %w"
	resetFailureTemplateConstant              = "failed to reset to %q: %w"
	symbolicRefFailureTemplateConstant        = "failed to inspect HEAD: %w"
	rebaseFailureTemplateConstant             = "failed to rebase onto FETCH_HEAD: %w"
	submoduleFailureTemplateConstant          = "failed to update submodules: %w"
	remoteRefTemplateConstant                 = "%s/%s"
	pullRequestRefspecTemplateConstant        = "pull/%s/merge:%s"
	timestampBeforeFlagTemplateConstant       = "--before=%s"
	currentBranchMarkerConstant               = "* "
	detachedHeadExitCodeConstant              = 1
)

// Dependencies enumerates external collaborators required for reconcile runs.
type Dependencies struct {
	GitExecutor shared.GitExecutor
	FileSystem  shared.FileSystem
	Reporter    shared.Reporter
	Logger      *zap.Logger
}

// Options configures the reconcile run of one repository.
type Options struct {
	RepositoryPath   string
	RepositoryName   string
	RemoteIdentifier string
	RemoteName       string
	Target           Target
	ResetToRemote    bool
	Clean            bool
}

// Result captures the outcome of one reconcile run. Failures are carried in Err.
type Result struct {
	RepositoryPath  string
	Skipped         bool
	CheckoutTarget  string
	CrossRepository bool
	DetachedHead    bool
	Rebased         bool
	ResetTo         string
	Err             error
}

// Service reconciles checkouts through git.
type Service struct {
	executor   shared.GitExecutor
	fileSystem shared.FileSystem
	reporter   shared.Reporter
	logger     *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(serviceDependencies Dependencies) (*Service, error) {
	if serviceDependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	logger := serviceDependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		executor:   serviceDependencies.GitExecutor,
		fileSystem: dependencies.ResolveFileSystem(serviceDependencies.FileSystem),
		reporter:   dependencies.ResolveReporter(serviceDependencies.Reporter),
		logger:     logger,
	}, nil
}

// Reconcile brings the repository at options.RepositoryPath to options.Target. A missing or
// symlinked directory is skipped without running any command. Reconcile never panics; every
// failure, including a recovered panic, is returned in Result.Err.
func (service *Service) Reconcile(executionContext context.Context, options Options) (result Result) {
	repositoryPath := strings.TrimSpace(options.RepositoryPath)
	result.RepositoryPath = repositoryPath
	if len(repositoryPath) == 0 {
		result.Err = ErrRepositoryPathRequired
		return result
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			result.Err = PanicError{RepositoryPath: repositoryPath, Value: recovered}
		}
	}()

	if !service.isReconcilableDirectory(repositoryPath) {
		service.logger.Debug(skippedRepositoryLogMessageConstant, zap.String(logFieldRepositoryConstant, options.RepositoryName), zap.String(logFieldPathConstant, repositoryPath))
		result.Skipped = true
		return result
	}

	remoteName := strings.TrimSpace(options.RemoteName)
	if len(remoteName) == 0 {
		remoteName = shared.OriginRemoteNameConstant
	}

	run := &reconcileRun{
		service:        service,
		options:        options,
		repositoryPath: repositoryPath,
		remoteName:     remoteName,
		result:         &result,
		logger: service.logger.With(
			zap.String(logFieldRepositoryConstant, options.RepositoryName),
			zap.String(logFieldPathConstant, repositoryPath),
			zap.String(logFieldTargetKindConstant, options.Target.Kind.String()),
		),
	}
	service.reporter.Printf(updatingRepositoryNoticeTemplateConstant, repositoryPath)
	result.Err = run.execute(executionContext)
	return result
}

func (service *Service) isReconcilableDirectory(repositoryPath string) bool {
	fileInfo, statError := service.fileSystem.Lstat(repositoryPath)
	if statError != nil {
		return false
	}
	return fileInfo.IsDir() && fileInfo.Mode()&fs.ModeSymlink == 0
}

type reconcileRun struct {
	service        *Service
	options        Options
	repositoryPath string
	remoteName     string
	result         *Result
	logger         *zap.Logger
}

func (run *reconcileRun) execute(executionContext context.Context) error {
	if resolveError := run.resolveTarget(executionContext); resolveError != nil {
		return resolveError
	}
	checkoutTarget := run.result.CheckoutTarget
	crossRepository := run.result.CrossRepository

	if run.options.Clean {
		if cleanError := run.clean(executionContext); cleanError != nil {
			return fmt.Errorf(cleanFailureTemplateConstant, cleanError)
		}
	}

	if len(checkoutTarget) > 0 {
		statusResult, statusError := run.probeGit(executionContext, "status", "--porcelain", "-uno")
		if statusError != nil {
			return fmt.Errorf(statusFailureTemplateConstant, statusError)
		}
		run.logger.Debug(statusProbeLogMessageConstant, zap.String(logFieldStatusConstant, strings.TrimSpace(statusResult.StandardOutput)))

		if _, checkoutError := run.executeGit(executionContext, "checkout", checkoutTarget); checkoutError != nil {
			return fmt.Errorf(checkoutFailureTemplateConstant, checkoutTarget, checkoutError)
		}
	}

	// Fetch must follow checkout: FETCH_HEAD marks merge eligibility from the branch checked out at fetch time.
	if _, fetchError := run.executeGit(executionContext, "fetch", "--recurse-submodules=yes", "--tags"); fetchError != nil {
		return fmt.Errorf(fetchFailureTemplateConstant, fetchError)
	}

	if run.options.ResetToRemote && len(checkoutTarget) > 0 && !crossRepository {
		resetTarget, resolveError := run.fullTargetName(executionContext, checkoutTarget)
		if resolveError != nil {
			return fmt.Errorf(resolveResetTargetFailureTemplateConstant, checkoutTarget, resolveError)
		}
		if _, resetError := run.executeGit(executionContext, "reset", "--hard", resetTarget); resetError != nil {
			return fmt.Errorf(resetFailureTemplateConstant, resetTarget, resetError)
		}
		run.result.ResetTo = resetTarget
		return nil
	}

	detachedHead, probeError := run.isDetachedHead(executionContext)
	if probeError != nil {
		return fmt.Errorf(symbolicRefFailureTemplateConstant, probeError)
	}
	run.result.DetachedHead = detachedHead

	switch {
	case !crossRepository && !detachedHead:
		if _, rebaseError := run.executeGit(executionContext, "rebase", "FETCH_HEAD"); rebaseError != nil {
			return fmt.Errorf(rebaseFailureTemplateConstant, rebaseError)
		}
		run.result.Rebased = true
	case detachedHead:
		run.logger.Info(detachedHeadLogMessageConstant)
		run.service.reporter.Printf(detachedHeadNoticeTemplateConstant, run.repositoryPath)
	}

	if _, submoduleError := run.executeGit(executionContext, "submodule", "update", "--recursive"); submoduleError != nil {
		return fmt.Errorf(submoduleFailureTemplateConstant, submoduleError)
	}
	return nil
}

// resolveTarget records the checkout target and cross-repository flag on the result.
func (run *reconcileRun) resolveTarget(executionContext context.Context) error {
	target := run.options.Target
	switch target.Kind {
	case TargetKindTag:
		if len(target.Name) == 0 {
			return nil
		}
		tagListing, listingError := run.executeGit(executionContext, "ls-remote", "--tags", run.remoteName, target.Name)
		if listingError != nil {
			return fmt.Errorf(verifyTagFailureTemplateConstant, target.Name, listingError)
		}
		if len(strings.TrimSpace(tagListing.StandardOutput)) == 0 {
			run.logger.Info(missingTagLogMessageConstant, zap.String(logFieldTargetConstant, target.Name))
			run.service.reporter.Printf(missingTagNoticeTemplateConstant, target.Name, run.options.RepositoryName)
			return nil
		}
		run.result.CheckoutTarget = target.Name
		return nil
	case TargetKindSchemeBranch:
		if len(target.Name) == 0 {
			return nil
		}
		run.result.CheckoutTarget = target.Name
		if target.IsCrossRepository() {
			if fetchError := run.fetchPullRequest(executionContext, target); fetchError != nil {
				return fetchError
			}
		}
		if len(target.Timestamp) > 0 {
			return run.resolveTimestamp(executionContext, target.Timestamp)
		}
		return nil
	default:
		return nil
	}
}

func (run *reconcileRun) fetchPullRequest(executionContext context.Context, target Target) error {
	pullRequestBranch := CrossRepositoryBranchName(target.PullRequestID)
	run.logger.Info(crossRepositoryLogMessageConstant, zap.String(logFieldRemoteIdentifierConstant, run.options.RemoteIdentifier), zap.String(logFieldPullRequestConstant, target.PullRequestID))

	if _, checkoutError := run.executeGit(executionContext, "checkout", target.Name); checkoutError != nil {
		return fmt.Errorf(crossRepositoryCheckoutTemplateConstant, target.Name, checkoutError)
	}
	run.bestEffort(executionContext, "branch", "-D", pullRequestBranch)

	refspec := fmt.Sprintf(pullRequestRefspecTemplateConstant, target.PullRequestID, pullRequestBranch)
	if _, fetchError := run.executeGit(executionContext, "fetch", run.remoteName, refspec, "--tags"); fetchError != nil {
		return fmt.Errorf(pullRequestFetchFailureTemplateConstant, target.PullRequestID, fetchError)
	}

	run.result.CheckoutTarget = pullRequestBranch
	run.result.CrossRepository = true
	return nil
}

func (run *reconcileRun) resolveTimestamp(executionContext context.Context, timestamp string) error {
	ref := run.result.CheckoutTarget
	logResult, logError := run.executeGit(executionContext, "log", "-1", "--format=%H", "--first-parent", fmt.Sprintf(timestampBeforeFlagTemplateConstant, timestamp), ref)
	if logError != nil {
		return fmt.Errorf(timestampLookupFailureTemplateConstant, timestamp, logError)
	}
	revision := strings.TrimSpace(logResult.StandardOutput)
	if len(revision) == 0 {
		return RevisionNotFoundError{RepositoryName: run.options.RepositoryName, Timestamp: timestamp, Ref: ref}
	}
	run.result.CheckoutTarget = revision
	return nil
}

func (run *reconcileRun) clean(executionContext context.Context) error {
	cleanSequence := [][]string{
		{"clean", "-fdx"},
		{"submodule", "foreach", "--recursive", "git", "clean", "-fdx"},
		{"submodule", "foreach", "--recursive", "git", "reset", "--hard", "HEAD"},
		{"reset", "--hard", "HEAD"},
	}
	for _, arguments := range cleanSequence {
		if _, cleanError := run.executeGit(executionContext, arguments...); cleanError != nil {
			return cleanError
		}
	}
	// A hard reset can leave a rebase in progress.
	run.bestEffort(executionContext, "rebase", "--abort")
	return nil
}

// fullTargetName qualifies target as a tag or as <remote>/<branch>.
func (run *reconcileRun) fullTargetName(executionContext context.Context, target string) (string, error) {
	tagListing, tagError := run.executeGit(executionContext, "tag", "-l", target)
	if tagError != nil {
		return "", tagError
	}
	if strings.TrimSpace(tagListing.StandardOutput) == target {
		return target, nil
	}

	branchListing, branchError := run.executeGit(executionContext, "branch", "--list", target)
	if branchError != nil {
		return "", branchError
	}
	branchName := strings.Replace(strings.TrimSpace(branchListing.StandardOutput), currentBranchMarkerConstant, "", 1)
	if branchName == target {
		return fmt.Sprintf(remoteRefTemplateConstant, run.remoteName, target), nil
	}

	return "", AmbiguousRefError{RepositoryPath: run.repositoryPath, Target: target}
}

// isDetachedHead treats exit code 1 of symbolic-ref as a detached HEAD and any other
// non-zero exit as a failure.
func (run *reconcileRun) isDetachedHead(executionContext context.Context) (bool, error) {
	details := run.commandDetails("symbolic-ref", "-q", "HEAD")
	probeResult, probeError := run.service.executor.ProbeGit(executionContext, details)
	if probeError != nil {
		return false, probeError
	}
	switch probeResult.ExitCode {
	case 0:
		return false, nil
	case detachedHeadExitCodeConstant:
		return true, nil
	default:
		return false, execshell.CommandFailedError{Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: details}, Result: probeResult}
	}
}

func (run *reconcileRun) bestEffort(executionContext context.Context, arguments ...string) BestEffort {
	_, executionError := run.executeGit(executionContext, arguments...)
	outcome := BestEffort{Err: executionError}
	if outcome.Failed() {
		run.logger.Debug(bestEffortLogMessageConstant, zap.String(logFieldOutcomeConstant, outcome.Discard()))
	}
	return outcome
}

func (run *reconcileRun) executeGit(executionContext context.Context, arguments ...string) (execshell.ExecutionResult, error) {
	return run.service.executor.ExecuteGit(executionContext, run.commandDetails(arguments...))
}

func (run *reconcileRun) probeGit(executionContext context.Context, arguments ...string) (execshell.ExecutionResult, error) {
	return run.service.executor.ProbeGit(executionContext, run.commandDetails(arguments...))
}

func (run *reconcileRun) commandDetails(arguments ...string) execshell.CommandDetails {
	return execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     run.repositoryPath,
		EnvironmentVariables: shared.NonInteractiveGitEnvironment(),
	}
}
