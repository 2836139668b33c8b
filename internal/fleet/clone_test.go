package fleet

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/checkoutsync/internal/execshell"
)

type recordingGitExecutor struct {
	executionErrors  map[string]error
	recordedCommands []execshell.CommandDetails
}

func (executor *recordingGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)
	return execshell.ExecutionResult{}, executor.executionErrors[strings.Join(details.Arguments, " ")]
}

func (executor *recordingGitExecutor) ProbeGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)
	return execshell.ExecutionResult{}, nil
}

func TestCloneMissingRunsCloneSequence(testInstance *testing.T) {
	sourceRoot := testInstance.TempDir()
	repositoryPath := filepath.Join(sourceRoot, "swift")

	testCases := []struct {
		name             string
		request          CloneRequest
		expectedCommands []execshell.CommandDetails
	}{
		{
			name:    "branch_with_history",
			request: CloneRequest{SourceRoot: sourceRoot, RepositoryName: "swift", RemoteURL: "git@github.com:apple/swift.git", Branch: "main"},
			expectedCommands: []execshell.CommandDetails{
				{Arguments: []string{"clone", "--recursive", "git@github.com:apple/swift.git", "swift"}, WorkingDirectory: sourceRoot},
				{Arguments: []string{"--git-dir", filepath.Join(repositoryPath, ".git"), "--work-tree", repositoryPath, "checkout", "main"}, WorkingDirectory: sourceRoot},
				{Arguments: []string{"submodule", "update", "--recursive"}, WorkingDirectory: repositoryPath},
			},
		},
		{
			name:    "shallow_branch",
			request: CloneRequest{SourceRoot: sourceRoot, RepositoryName: "swift", RemoteURL: "https://github.com/apple/swift.git", Branch: "release/5.9", SkipHistory: true},
			expectedCommands: []execshell.CommandDetails{
				{Arguments: []string{"clone", "--recursive", "--depth", "1", "--branch", "release/5.9", "https://github.com/apple/swift.git", "swift"}, WorkingDirectory: sourceRoot},
				{Arguments: []string{"--git-dir", filepath.Join(repositoryPath, ".git"), "--work-tree", repositoryPath, "checkout", "release/5.9"}, WorkingDirectory: sourceRoot},
				{Arguments: []string{"submodule", "update", "--recursive"}, WorkingDirectory: repositoryPath},
			},
		},
		{
			name:    "no_branch",
			request: CloneRequest{SourceRoot: sourceRoot, RepositoryName: "swift", RemoteURL: "https://github.com/apple/swift.git"},
			expectedCommands: []execshell.CommandDetails{
				{Arguments: []string{"clone", "--recursive", "https://github.com/apple/swift.git", "swift"}, WorkingDirectory: sourceRoot},
				{Arguments: []string{"submodule", "update", "--recursive"}, WorkingDirectory: repositoryPath},
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &recordingGitExecutor{}
			service, creationError := NewCloneService(CloneDependencies{GitExecutor: executor})
			require.NoError(testInstance, creationError)

			require.NoError(testInstance, service.CloneMissing(context.Background(), testCase.request))
			require.Len(testInstance, executor.recordedCommands, len(testCase.expectedCommands))
			for commandIndex, expected := range testCase.expectedCommands {
				recorded := executor.recordedCommands[commandIndex]
				require.Equal(testInstance, expected.Arguments, recorded.Arguments)
				require.Equal(testInstance, expected.WorkingDirectory, recorded.WorkingDirectory)
				require.Equal(testInstance, "0", recorded.EnvironmentVariables["GIT_TERMINAL_PROMPT"])
			}
		})
	}
}

func TestCloneMissingSkipsExistingRepository(testInstance *testing.T) {
	sourceRoot := testInstance.TempDir()
	require.NoError(testInstance, os.MkdirAll(filepath.Join(sourceRoot, "swift", ".git"), 0o755))

	executor := &recordingGitExecutor{}
	service, creationError := NewCloneService(CloneDependencies{GitExecutor: executor})
	require.NoError(testInstance, creationError)

	require.True(testInstance, service.IsCloned(sourceRoot, "swift"))
	require.NoError(testInstance, service.CloneMissing(context.Background(), CloneRequest{SourceRoot: sourceRoot, RepositoryName: "swift", RemoteURL: "url"}))
	require.Empty(testInstance, executor.recordedCommands)
}

func TestCloneMissingValidatesRequest(testInstance *testing.T) {
	_, creationError := NewCloneService(CloneDependencies{})
	require.ErrorIs(testInstance, creationError, ErrGitExecutorNotConfigured)

	service, creationError := NewCloneService(CloneDependencies{GitExecutor: &recordingGitExecutor{}})
	require.NoError(testInstance, creationError)

	testCases := []struct {
		name        string
		request     CloneRequest
		expectedErr error
	}{
		{name: "missing_root", request: CloneRequest{RepositoryName: "swift", RemoteURL: "url"}, expectedErr: ErrSourceRootRequired},
		{name: "missing_name", request: CloneRequest{SourceRoot: "/src", RemoteURL: "url"}, expectedErr: ErrRepositoryNameRequired},
		{name: "missing_url", request: CloneRequest{SourceRoot: "/src", RepositoryName: "swift"}, expectedErr: ErrRemoteURLRequired},
	}
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.ErrorIs(testInstance, service.CloneMissing(context.Background(), testCase.request), testCase.expectedErr)
		})
	}
}

func TestCloneMissingStopsOnCloneFailure(testInstance *testing.T) {
	sourceRoot := testInstance.TempDir()
	cloneFailure := execshell.CommandFailedError{Result: execshell.ExecutionResult{ExitCode: 128}}
	executor := &recordingGitExecutor{executionErrors: map[string]error{
		"clone --recursive url swift": cloneFailure,
	}}
	service, creationError := NewCloneService(CloneDependencies{GitExecutor: executor})
	require.NoError(testInstance, creationError)

	cloneError := service.CloneMissing(context.Background(), CloneRequest{SourceRoot: sourceRoot, RepositoryName: "swift", RemoteURL: "url", Branch: "main"})
	require.ErrorAs(testInstance, cloneError, &execshell.CommandFailedError{})
	require.Len(testInstance, executor.recordedCommands, 1)
}
