package fleet

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/checkoutsync/internal/execshell"
	"github.com/temirov/checkoutsync/internal/repos/dependencies"
	"github.com/temirov/checkoutsync/internal/repos/shared"
)

const (
	cloningNoticeTemplateConstant         = "Cloning '%s'\n"
	cloneExistingLogMessageConstant       = "repository already cloned"
	cloneFailureTemplateConstant          = "failed to clone %s: %w"
	cloneCheckoutFailureTemplateConstant  = "failed to checkout %q after clone: %w"
	cloneSubmoduleFailureTemplateConstant = "failed to update submodules after clone: %w"
	gitExecutorMissingMessageConstant     = "git executor not configured"
	sourceRootRequiredMessageConstant     = "source root must be provided"
	repositoryNameRequiredMessageConstant = "repository name must be provided"
	remoteURLRequiredMessageConstant      = "remote URL must be provided"
	logFieldRepositoryConstant            = "repository"
	logFieldPathConstant                  = "path"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrSourceRootRequired indicates a clone or update request without a source root.
var ErrSourceRootRequired = errors.New(sourceRootRequiredMessageConstant)

// ErrRepositoryNameRequired indicates a clone request without a repository name.
var ErrRepositoryNameRequired = errors.New(repositoryNameRequiredMessageConstant)

// ErrRemoteURLRequired indicates a clone request without a remote URL.
var ErrRemoteURLRequired = errors.New(remoteURLRequiredMessageConstant)

// CloneDependencies enumerates collaborators of CloneService.
type CloneDependencies struct {
	GitExecutor shared.GitExecutor
	FileSystem  shared.FileSystem
	Reporter    shared.Reporter
	Logger      *zap.Logger
}

// CloneRequest describes one repository to obtain under SourceRoot.
type CloneRequest struct {
	SourceRoot     string
	RepositoryName string
	RemoteURL      string
	Branch         string
	SkipHistory    bool
}

// CloneService clones missing repositories.
type CloneService struct {
	executor   shared.GitExecutor
	fileSystem shared.FileSystem
	reporter   shared.Reporter
	logger     *zap.Logger
}

// NewCloneService constructs a CloneService.
func NewCloneService(cloneDependencies CloneDependencies) (*CloneService, error) {
	if cloneDependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	logger := cloneDependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CloneService{
		executor:   cloneDependencies.GitExecutor,
		fileSystem: dependencies.ResolveFileSystem(cloneDependencies.FileSystem),
		reporter:   dependencies.ResolveReporter(cloneDependencies.Reporter),
		logger:     logger,
	}, nil
}

// IsCloned reports whether <root>/<name>/.git is a directory.
func (service *CloneService) IsCloned(sourceRoot string, repositoryName string) bool {
	gitDirectoryInfo, statError := service.fileSystem.Stat(filepath.Join(sourceRoot, repositoryName, shared.GitDirectoryNameConstant))
	return statError == nil && gitDirectoryInfo.IsDir()
}

// CloneMissing clones the repository unless it already exists, checks out the requested
// branch through an explicit git directory, and initializes submodules.
func (service *CloneService) CloneMissing(executionContext context.Context, request CloneRequest) error {
	sourceRoot := strings.TrimSpace(request.SourceRoot)
	repositoryName := strings.TrimSpace(request.RepositoryName)
	remoteURL := strings.TrimSpace(request.RemoteURL)
	switch {
	case len(sourceRoot) == 0:
		return ErrSourceRootRequired
	case len(repositoryName) == 0:
		return ErrRepositoryNameRequired
	case len(remoteURL) == 0:
		return ErrRemoteURLRequired
	}

	repositoryPath := filepath.Join(sourceRoot, repositoryName)
	if service.IsCloned(sourceRoot, repositoryName) {
		service.logger.Debug(cloneExistingLogMessageConstant, zap.String(logFieldRepositoryConstant, repositoryName), zap.String(logFieldPathConstant, repositoryPath))
		return nil
	}

	service.reporter.Printf(cloningNoticeTemplateConstant, repositoryName)

	cloneArguments := []string{"clone", "--recursive"}
	if request.SkipHistory {
		cloneArguments = append(cloneArguments, "--depth", "1")
		if len(request.Branch) > 0 {
			cloneArguments = append(cloneArguments, "--branch", request.Branch)
		}
	}
	cloneArguments = append(cloneArguments, remoteURL, repositoryName)
	if _, cloneError := service.executeGit(executionContext, sourceRoot, cloneArguments...); cloneError != nil {
		return fmt.Errorf(cloneFailureTemplateConstant, repositoryName, cloneError)
	}

	if len(request.Branch) > 0 {
		gitDirectory := filepath.Join(repositoryPath, shared.GitDirectoryNameConstant)
		if _, checkoutError := service.executeGit(executionContext, sourceRoot, "--git-dir", gitDirectory, "--work-tree", repositoryPath, "checkout", request.Branch); checkoutError != nil {
			return fmt.Errorf(cloneCheckoutFailureTemplateConstant, request.Branch, checkoutError)
		}
	}

	if _, submoduleError := service.executeGit(executionContext, repositoryPath, "submodule", "update", "--recursive"); submoduleError != nil {
		return fmt.Errorf(cloneSubmoduleFailureTemplateConstant, submoduleError)
	}
	return nil
}

func (service *CloneService) executeGit(executionContext context.Context, workingDirectory string, arguments ...string) (execshell.ExecutionResult, error) {
	return service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     workingDirectory,
		EnvironmentVariables: shared.NonInteractiveGitEnvironment(),
	})
}
