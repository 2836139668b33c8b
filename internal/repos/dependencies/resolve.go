package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/checkoutsync/internal/execshell"
	"github.com/temirov/checkoutsync/internal/repos/filesystem"
	"github.com/temirov/checkoutsync/internal/repos/shared"
)

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveReporter returns the provided reporter or one that discards notices.
func ResolveReporter(existing shared.Reporter) shared.Reporter {
	if existing != nil {
		return existing
	}
	return shared.NewDiscardReporter()
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default
// that notifies the supplied observers about every git invocation.
func ResolveGitExecutor(existing shared.GitExecutor, logger *zap.Logger, observers ...execshell.CommandEventObserver) (shared.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner, observers...)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}
