package snapshot_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"4d63.com/testcli"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/checkoutsync/internal/execshell"
	"github.com/temirov/checkoutsync/internal/manifest"
	"github.com/temirov/checkoutsync/internal/snapshot"
	"github.com/temirov/checkoutsync/internal/ui"
)

type stubGitExecutor struct {
	standardOutput   string
	executionError   error
	recordedCommands []execshell.CommandDetails
}

func (executor *stubGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)
	return execshell.ExecutionResult{StandardOutput: executor.standardOutput}, executor.executionError
}

func (executor *stubGitExecutor) ProbeGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.ExecuteGit(context.Background(), details)
}

func TestSnapshotMarksMissingRepositoriesAsSkip(testInstance *testing.T) {
	sourceRoot := testInstance.TempDir()
	require.NoError(testInstance, os.Mkdir(filepath.Join(sourceRoot, "swift"), 0o755))

	executor := &stubGitExecutor{standardOutput: "0123456789abcdef\n"}
	service, creationError := snapshot.NewService(snapshot.Dependencies{GitExecutor: executor})
	require.NoError(testInstance, creationError)

	hashes, snapshotError := service.Snapshot(context.Background(), sourceRoot, []string{"swift", "cmark"})
	require.NoError(testInstance, snapshotError)
	require.Equal(testInstance, snapshot.Hashes{"swift": "0123456789abcdef", "cmark": snapshot.SkipHashConstant}, hashes)

	require.Len(testInstance, executor.recordedCommands, 1)
	require.Equal(testInstance, []string{"rev-parse", "HEAD"}, executor.recordedCommands[0].Arguments)
	require.Equal(testInstance, filepath.Join(sourceRoot, "swift"), executor.recordedCommands[0].WorkingDirectory)
}

func TestSnapshotPropagatesRevisionFailures(testInstance *testing.T) {
	sourceRoot := testInstance.TempDir()
	require.NoError(testInstance, os.Mkdir(filepath.Join(sourceRoot, "swift"), 0o755))

	revisionFailure := errors.New("not a git repository")
	service, creationError := snapshot.NewService(snapshot.Dependencies{GitExecutor: &stubGitExecutor{executionError: revisionFailure}})
	require.NoError(testInstance, creationError)

	_, snapshotError := service.Snapshot(context.Background(), sourceRoot, []string{"swift"})
	require.ErrorIs(testInstance, snapshotError, revisionFailure)
}

func TestNewServiceRequiresExecutor(testInstance *testing.T) {
	_, creationError := snapshot.NewService(snapshot.Dependencies{})
	require.ErrorIs(testInstance, creationError, snapshot.ErrGitExecutorNotConfigured)
}

func TestSnapshotOfRealRepositoryIsStable(testInstance *testing.T) {
	if _, lookupError := exec.LookPath("git"); lookupError != nil {
		testInstance.Skip("git is not installed")
	}
	testInstance.Setenv("HOME", testcli.MkdirTemp(testInstance))
	testcli.Exec(testInstance, "git config --global user.email 'tests@example.com'")
	testcli.Exec(testInstance, "git config --global user.name 'Tests'")
	testcli.Exec(testInstance, "git config --global init.defaultBranch main")

	sourceRoot := testcli.MkdirTemp(testInstance)
	repositoryPath := filepath.Join(sourceRoot, "swift")
	require.NoError(testInstance, os.Mkdir(repositoryPath, 0o755))
	testcli.Chdir(testInstance, repositoryPath)
	testcli.Exec(testInstance, "git init")
	testcli.WriteFile(testInstance, "README.md", []byte("swift"))
	testcli.Exec(testInstance, "git add .")
	testcli.Exec(testInstance, "git commit -m 'Initial commit'")
	_, expectedHead, _ := testcli.Exec(testInstance, "git rev-parse HEAD")
	testcli.Chdir(testInstance, sourceRoot)

	executor, executorError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner())
	require.NoError(testInstance, executorError)
	service, creationError := snapshot.NewService(snapshot.Dependencies{GitExecutor: executor})
	require.NoError(testInstance, creationError)

	firstHashes, firstError := service.Snapshot(context.Background(), sourceRoot, []string{"swift", "cmark"})
	require.NoError(testInstance, firstError)
	secondHashes, secondError := service.Snapshot(context.Background(), sourceRoot, []string{"swift", "cmark"})
	require.NoError(testInstance, secondError)

	require.Equal(testInstance, firstHashes, secondHashes)
	require.Equal(testInstance, strings.TrimSpace(expectedHead), firstHashes["swift"])
	require.Equal(testInstance, snapshot.SkipHashConstant, firstHashes["cmark"])
}

func TestExportSchemePinsHashes(testInstance *testing.T) {
	document := manifest.Document{
		SSHClonePattern:     "git@github.com:%s.git",
		HTTPSClonePattern:   "https://github.com/%s.git",
		Repositories:        map[string]manifest.Repository{"swift": {Name: "swift", Remote: manifest.RemoteDescriptor{ID: "apple/swift"}}},
		BranchSchemes:       map[string]manifest.BranchScheme{"main": {Aliases: []string{"main"}, Repositories: map[string]string{"swift": "main"}}},
		DefaultBranchScheme: "main",
	}
	hashes := snapshot.Hashes{"swift": "abc123", "cmark": snapshot.SkipHashConstant}

	testCases := []struct {
		name               string
		schemeName         string
		expectedSchemeName string
	}{
		{name: "default_name", expectedSchemeName: snapshot.DefaultExportSchemeNameConstant},
		{name: "custom_name", schemeName: "nightly", expectedSchemeName: "nightly"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			exported := snapshot.ExportScheme(document, hashes, testCase.schemeName)
			require.Equal(testInstance, document.SSHClonePattern, exported.SSHClonePattern)
			require.Equal(testInstance, document.HTTPSClonePattern, exported.HTTPSClonePattern)
			require.Equal(testInstance, document.Repositories, exported.Repositories)
			require.Empty(testInstance, exported.DefaultBranchScheme)
			require.Equal(testInstance, map[string]manifest.BranchScheme{
				testCase.expectedSchemeName: {
					Aliases:      []string{testCase.expectedSchemeName},
					Repositories: map[string]string{"swift": "abc123", "cmark": "skip"},
				},
			}, exported.BranchSchemes)
			require.NoError(testInstance, manifest.Validate(exported))
		})
	}
}

func TestWriteDocumentRoundTripsThroughParse(testInstance *testing.T) {
	document := snapshot.ExportScheme(manifest.Document{
		SSHClonePattern: "git@github.com:%s.git",
		Repositories:    map[string]manifest.Repository{"swift": {Name: "swift", Remote: manifest.RemoteDescriptor{ID: "apple/swift"}}},
	}, snapshot.Hashes{"swift": "abc123"}, "")

	for _, format := range []snapshot.Format{snapshot.FormatJSON, snapshot.FormatYAML} {
		testInstance.Run(string(format), func(testInstance *testing.T) {
			outputBuffer := &bytes.Buffer{}
			require.NoError(testInstance, snapshot.WriteDocument(outputBuffer, document, format))

			parsed, parseError := manifest.Parse(outputBuffer.Bytes())
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, document, parsed)
		})
	}
}

func TestWriteDocumentJSONUsesFourSpaceIndent(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	require.NoError(testInstance, snapshot.WriteDocument(outputBuffer, manifest.Document{SSHClonePattern: "git@github.com:%s.git"}, snapshot.FormatJSON))
	require.Contains(testInstance, outputBuffer.String(), "\n    \"ssh-clone-pattern\": \"git@github.com:%s.git\"")
}

func TestWriteDocumentRejectsUnknownFormat(testInstance *testing.T) {
	writeError := snapshot.WriteDocument(&bytes.Buffer{}, manifest.Document{}, snapshot.Format("toml"))
	var formatError snapshot.UnsupportedFormatError
	require.ErrorAs(testInstance, writeError, &formatError)
	require.Equal(testInstance, "toml", formatError.Format)
}

func TestHashReportPadsColumns(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	report := snapshot.HashReport{Styler: ui.NewStyler(ui.DefaultTheme(), false)}
	require.NoError(testInstance, report.Write(outputBuffer, snapshot.Hashes{"swift": "abc123", "cmark": "skip"}))

	require.Equal(testInstance,
		"cmark"+strings.Repeat(" ", 30)+": skip"+strings.Repeat(" ", 31)+"\n"+
			"swift"+strings.Repeat(" ", 30)+": abc123"+strings.Repeat(" ", 29)+"\n",
		outputBuffer.String())
}
