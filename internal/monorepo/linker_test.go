package monorepo_test

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/checkoutsync/internal/monorepo"
	"github.com/temirov/checkoutsync/internal/repos/filesystem"
	"github.com/temirov/checkoutsync/internal/repos/shared"
)

type failingSymlinkFileSystem struct {
	filesystem.OSFileSystem
}

func (failingSymlinkFileSystem) Symlink(string, string) error {
	return errors.New("read-only filesystem")
}

func TestLinkCreatesMissingLinks(testInstance *testing.T) {
	sourceRoot := testInstance.TempDir()
	require.NoError(testInstance, os.MkdirAll(filepath.Join(sourceRoot, "llvm-project", "clang"), 0o755))
	require.NoError(testInstance, os.MkdirAll(filepath.Join(sourceRoot, "llvm-project", "lldb"), 0o755))
	require.NoError(testInstance, os.MkdirAll(filepath.Join(sourceRoot, "lldb"), 0o755))

	reporterBuffer := &bytes.Buffer{}
	linker := monorepo.NewLinker(monorepo.Dependencies{Reporter: shared.NewWriterReporter(reporterBuffer)})
	require.NoError(testInstance, linker.Link(monorepo.Options{SourceRoot: sourceRoot, Projects: []string{"clang", "lldb"}}))
	require.Equal(testInstance, "Create symlink for llvm-project\n", reporterBuffer.String())

	clangInfo, statError := os.Lstat(filepath.Join(sourceRoot, "clang"))
	require.NoError(testInstance, statError)
	require.NotZero(testInstance, clangInfo.Mode()&fs.ModeSymlink)
	linkTarget, readError := os.Readlink(filepath.Join(sourceRoot, "clang"))
	require.NoError(testInstance, readError)
	require.Equal(testInstance, filepath.Join(sourceRoot, "llvm-project", "clang"), linkTarget)

	lldbInfo, statError := os.Lstat(filepath.Join(sourceRoot, "lldb"))
	require.NoError(testInstance, statError)
	require.True(testInstance, lldbInfo.IsDir())

	require.NoError(testInstance, linker.Link(monorepo.Options{SourceRoot: sourceRoot, Projects: []string{"clang", "lldb"}}))
}

func TestLinkDefaults(testInstance *testing.T) {
	sourceRoot := testInstance.TempDir()
	linker := monorepo.NewLinker(monorepo.Dependencies{})
	require.NoError(testInstance, linker.Link(monorepo.Options{SourceRoot: sourceRoot}))

	for _, project := range monorepo.DefaultProjects() {
		linkTarget, readError := os.Readlink(filepath.Join(sourceRoot, project))
		require.NoError(testInstance, readError)
		require.Equal(testInstance, filepath.Join(sourceRoot, monorepo.DefaultRootConstant, project), linkTarget)
	}
}

func TestLinkReportsFailures(testInstance *testing.T) {
	linker := monorepo.NewLinker(monorepo.Dependencies{FileSystem: failingSymlinkFileSystem{}})
	require.ErrorIs(testInstance, linker.Link(monorepo.Options{}), monorepo.ErrSourceRootRequired)
	require.ErrorContains(testInstance, linker.Link(monorepo.Options{SourceRoot: testInstance.TempDir(), Projects: []string{"clang"}}), "read-only filesystem")
}
