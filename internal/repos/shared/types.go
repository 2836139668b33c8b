package shared

import (
	"context"
	"io/fs"

	"github.com/temirov/checkoutsync/internal/execshell"
)

const (
	// OriginRemoteNameConstant identifies the default remote every checkout tracks.
	OriginRemoteNameConstant = "origin"
	// GitDirectoryNameConstant names the metadata directory inside a checkout.
	GitDirectoryNameConstant = ".git"
	// GitTerminalPromptEnvironmentNameConstant disables interactive credential prompts.
	GitTerminalPromptEnvironmentNameConstant = "GIT_TERMINAL_PROMPT"
	// GitTerminalPromptDisabledValueConstant is the value that turns prompting off.
	GitTerminalPromptDisabledValueConstant = "0"
)

// NonInteractiveGitEnvironment returns the environment attached to every git invocation.
func NonInteractiveGitEnvironment() map[string]string {
	return map[string]string{GitTerminalPromptEnvironmentNameConstant: GitTerminalPromptDisabledValueConstant}
}

// FileSystem exposes filesystem operations required by checkout services.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	Lstat(path string) (fs.FileInfo, error)
	Abs(path string) (string, error)
	Symlink(target string, linkPath string) error
	ReadFile(path string) ([]byte, error)
}

// GitExecutor exposes the subset of shell execution used by checkout services.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ProbeGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}
