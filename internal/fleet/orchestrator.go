package fleet

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/checkoutsync/internal/manifest"
	"github.com/temirov/checkoutsync/internal/reconcile"
	"github.com/temirov/checkoutsync/internal/repos/dependencies"
	"github.com/temirov/checkoutsync/internal/repos/shared"
	"github.com/temirov/checkoutsync/internal/schemes"
)

const (
	skippingUpdateNoticeTemplateConstant        = "Skipping update of '%s', requested by user\n"
	skippingCloneNoticeTemplateConstant         = "Skipping clone of '%s', requested by user\n"
	skippingExistingCloneNoticeTemplateConstant = "Skipping clone of '%s', directory already exists\n"
	skippingPlatformNoticeTemplateConstant      = "Skipping %s on %s\n"
	includingPlatformNoticeTemplateConstant     = "Including %s on %s\n"
	notCloningNoticeConstant                    = "Not cloning any repositories.\n"
	reconcilerMissingMessageConstant            = "reconciler not configured"
	clonerMissingMessageConstant                = "cloner not configured"
	notInSchemeLogMessageConstant               = "repository not listed in branch scheme; skipping clone"
	logFieldSchemeConstant                      = "scheme"
)

// ErrReconcilerNotConfigured indicates the orchestrator was constructed without a reconciler.
var ErrReconcilerNotConfigured = errors.New(reconcilerMissingMessageConstant)

// ErrClonerNotConfigured indicates the orchestrator was constructed without a cloner.
var ErrClonerNotConfigured = errors.New(clonerMissingMessageConstant)

// Reconciler brings one checkout to its target.
type Reconciler interface {
	Reconcile(executionContext context.Context, options reconcile.Options) reconcile.Result
}

// Cloner obtains missing repositories.
type Cloner interface {
	IsCloned(sourceRoot string, repositoryName string) bool
	CloneMissing(executionContext context.Context, request CloneRequest) error
}

// OrchestratorDependencies enumerates collaborators of Orchestrator.
type OrchestratorDependencies struct {
	Reconciler Reconciler
	Cloner     Cloner
	Pool       Pool
	Reporter   shared.Reporter
	Logger     *zap.Logger
}

// UpdateRequest describes an update phase over every configured repository.
type UpdateRequest struct {
	SourceRoot       string
	Document         manifest.Document
	SchemeName       string
	Tag              string
	Timestamp        string
	PullRequests     map[string]string
	SkipRepositories []string
	ResetToRemote    bool
	Clean            bool
	RemoteName       string
}

// CloneAllRequest describes a clone phase over every configured repository.
type CloneAllRequest struct {
	SourceRoot       string
	Document         manifest.Document
	SchemeName       string
	WithSSH          bool
	SkipHistory      bool
	SkipRepositories []string
	PlatformName     string
}

// Orchestrator schedules per-repository tasks on a Pool.
type Orchestrator struct {
	reconciler Reconciler
	cloner     Cloner
	pool       Pool
	reporter   shared.Reporter
	logger     *zap.Logger
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(orchestratorDependencies OrchestratorDependencies) (*Orchestrator, error) {
	if orchestratorDependencies.Reconciler == nil {
		return nil, ErrReconcilerNotConfigured
	}
	if orchestratorDependencies.Cloner == nil {
		return nil, ErrClonerNotConfigured
	}
	logger := orchestratorDependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		reconciler: orchestratorDependencies.Reconciler,
		cloner:     orchestratorDependencies.Cloner,
		pool:       orchestratorDependencies.Pool,
		reporter:   dependencies.ResolveReporter(orchestratorDependencies.Reporter),
		logger:     logger,
	}, nil
}

// UpdateAll reconciles every configured repository except the skipped ones.
func (orchestrator *Orchestrator) UpdateAll(executionContext context.Context, request UpdateRequest) ([]TaskResult, error) {
	sourceRoot := strings.TrimSpace(request.SourceRoot)
	if len(sourceRoot) == 0 {
		return nil, ErrSourceRootRequired
	}

	schemeMap, schemeFound := schemes.ResolveScheme(request.Document, request.SchemeName)
	skipSet := newNameSet(request.SkipRepositories)

	tasks := make([]Task, 0, len(request.Document.Repositories))
	for _, repositoryName := range manifest.SortedRepositoryNames(request.Document) {
		if skipSet.contains(repositoryName) {
			orchestrator.reporter.Printf(skippingUpdateNoticeTemplateConstant, repositoryName)
			continue
		}
		repository := request.Document.Repositories[repositoryName]
		repositoryPath := filepath.Join(sourceRoot, repositoryName)
		reconcileOptions := reconcile.Options{
			RepositoryPath:   repositoryPath,
			RepositoryName:   repositoryName,
			RemoteIdentifier: manifest.RemoteIdentifier(repository),
			RemoteName:       request.RemoteName,
			Target:           TargetForRepository(request, repositoryName, schemeMap, schemeFound),
			ResetToRemote:    request.ResetToRemote,
			Clean:            request.Clean,
		}
		tasks = append(tasks, Task{
			RepositoryName: repositoryName,
			RepositoryPath: repositoryPath,
			Phase:          PhaseUpdate,
			Run: func(taskContext context.Context) error {
				return orchestrator.reconciler.Reconcile(taskContext, reconcileOptions).Err
			},
		})
	}

	return orchestrator.pool.Run(executionContext, tasks), nil
}

// TargetForRepository computes the reconcile target of one repository. A tag wins over a
// scheme; a pull request applies only when the scheme is registered; the timestamp pins
// scheme targets only.
func TargetForRepository(request UpdateRequest, repositoryName string, schemeMap map[string]string, schemeFound bool) reconcile.Target {
	if len(request.Tag) > 0 {
		return reconcile.TagTarget(request.Tag)
	}
	branchName, listed := schemes.BranchForRepository(schemeMap, schemeFound, request.SchemeName, repositoryName)
	if !listed {
		return reconcile.NoTarget()
	}
	pullRequestID := ""
	if schemeFound {
		pullRequestID = request.PullRequests[manifest.RemoteIdentifier(request.Document.Repositories[repositoryName])]
	}
	target := reconcile.SchemeBranchTarget(branchName, pullRequestID)
	if len(request.Timestamp) > 0 {
		target = target.WithTimestamp(request.Timestamp)
	}
	return target
}

// CloneAll clones every configured repository that is missing, allowed on the platform,
// not skipped by the user, and listed by the effective branch scheme.
func (orchestrator *Orchestrator) CloneAll(executionContext context.Context, request CloneAllRequest) ([]TaskResult, error) {
	sourceRoot := strings.TrimSpace(request.SourceRoot)
	if len(sourceRoot) == 0 {
		return nil, ErrSourceRootRequired
	}

	platformSkipList, decisions := manifest.PlatformSkipList(request.Document, request.PlatformName)
	for _, decision := range decisions {
		noticeTemplate := skippingPlatformNoticeTemplateConstant
		if decision.Included {
			noticeTemplate = includingPlatformNoticeTemplateConstant
		}
		orchestrator.reporter.Printf(noticeTemplate, decision.RepositoryName, request.PlatformName)
	}
	skipSet := newNameSet(append(platformSkipList, request.SkipRepositories...))

	var results []TaskResult
	tasks := make([]Task, 0, len(request.Document.Repositories))
	for _, repositoryName := range manifest.SortedRepositoryNames(request.Document) {
		if skipSet.contains(repositoryName) {
			orchestrator.reporter.Printf(skippingCloneNoticeTemplateConstant, repositoryName)
			continue
		}
		if orchestrator.cloner.IsCloned(sourceRoot, repositoryName) {
			orchestrator.reporter.Printf(skippingExistingCloneNoticeTemplateConstant, repositoryName)
			continue
		}

		branchName, clone := schemes.CloneBranch(request.Document, request.SchemeName, repositoryName)
		if !clone {
			orchestrator.logger.Debug(notInSchemeLogMessageConstant, zap.String(logFieldRepositoryConstant, repositoryName), zap.String(logFieldSchemeConstant, request.SchemeName))
			continue
		}

		remoteURL, remoteError := manifest.RemoteURL(request.Document, repositoryName, request.WithSSH)
		if remoteError != nil {
			results = append(results, TaskResult{RepositoryName: repositoryName, RepositoryPath: filepath.Join(sourceRoot, repositoryName), Phase: PhaseClone, Err: remoteError})
			continue
		}

		cloneRequest := CloneRequest{
			SourceRoot:     sourceRoot,
			RepositoryName: repositoryName,
			RemoteURL:      remoteURL,
			Branch:         branchName,
			SkipHistory:    request.SkipHistory,
		}
		tasks = append(tasks, Task{
			RepositoryName: repositoryName,
			RepositoryPath: filepath.Join(sourceRoot, repositoryName),
			Phase:          PhaseClone,
			Run: func(taskContext context.Context) error {
				return orchestrator.cloner.CloneMissing(taskContext, cloneRequest)
			},
		})
	}

	if len(tasks) == 0 && len(results) == 0 {
		orchestrator.reporter.Printf(notCloningNoticeConstant)
		return nil, nil
	}

	return append(results, orchestrator.pool.Run(executionContext, tasks)...), nil
}

type nameSet map[string]struct{}

func newNameSet(names []string) nameSet {
	set := make(nameSet, len(names))
	for _, name := range names {
		trimmedName := strings.TrimSpace(name)
		if len(trimmedName) > 0 {
			set[trimmedName] = struct{}{}
		}
	}
	return set
}

func (set nameSet) contains(name string) bool {
	_, present := set[name]
	return present
}
