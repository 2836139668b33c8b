package snapshot

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
	// SkipHashConstant marks a repository whose directory does not exist.
	SkipHashConstant                      = "skip"
	gitExecutorMissingMessageConstant     = "git executor not configured"
	revisionLookupFailureTemplateConstant = "failed to read HEAD of %s: %w"
	snapshotLogMessageConstant            = "recorded repository head"
	logFieldRepositoryConstant            = "repository"
	logFieldRevisionConstant              = "revision"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// Hashes maps repository names to their HEAD commit or SkipHashConstant.
type Hashes map[string]string

// Dependencies enumerates collaborators of Service.
type Dependencies struct {
	GitExecutor shared.GitExecutor
	FileSystem  shared.FileSystem
	Logger      *zap.Logger
}

// Service reads repository heads.
type Service struct {
	executor   shared.GitExecutor
	fileSystem shared.FileSystem
	logger     *zap.Logger
}

// NewService constructs a Service.
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
		logger:     logger,
	}, nil
}

// Snapshot runs git rev-parse HEAD in every named repository under sourceRoot, one at a time.
func (service *Service) Snapshot(executionContext context.Context, sourceRoot string, repositoryNames []string) (Hashes, error) {
	hashes := make(Hashes, len(repositoryNames))
	for _, repositoryName := range repositoryNames {
		repositoryPath := filepath.Join(sourceRoot, repositoryName)
		if _, statError := service.fileSystem.Stat(repositoryPath); statError != nil {
			hashes[repositoryName] = SkipHashConstant
			continue
		}

		revisionResult, revisionError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments:            []string{"rev-parse", "HEAD"},
			WorkingDirectory:     repositoryPath,
			EnvironmentVariables: shared.NonInteractiveGitEnvironment(),
		})
		if revisionError != nil {
			return nil, fmt.Errorf(revisionLookupFailureTemplateConstant, repositoryName, revisionError)
		}
		revision := strings.TrimSpace(revisionResult.StandardOutput)
		service.logger.Debug(snapshotLogMessageConstant, zap.String(logFieldRepositoryConstant, repositoryName), zap.String(logFieldRevisionConstant, revision))
		hashes[repositoryName] = revision
	}
	return hashes, nil
}
