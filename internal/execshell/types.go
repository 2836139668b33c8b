package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	commandGitStringConstant                  = "git"
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	commandFailedErrorTemplateConstant        = "%s exited with code %d%s"
	commandFailedWorkingDirectoryTemplate     = " in %s"
	commandFailedStandardErrorTemplate        = ": %s"
	commandExecutionErrorTemplateConstant     = "%s could not be executed: %v"
	commandLabelSeparatorConstant             = " "
)

// CommandName identifies an executable known to the shell executor.
type CommandName string

// CommandGit is the git executable.
const CommandGit CommandName = CommandName(commandGitStringConstant)

// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)

// CommandDetails describes the arguments and environment of a single invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand pairs an executable with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// String renders the command line without its environment.
func (command ShellCommand) String() string {
	commandParts := append([]string{string(command.Name)}, command.Details.Arguments...)
	return strings.Join(commandParts, commandLabelSeparatorConstant)
}

// ExecutionResult captures the observable outcome of a finished process.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// Succeeded reports whether the process exited with code zero.
func (result ExecutionResult) Succeeded() bool {
	return result.ExitCode == 0
}

// CommandRunner executes shell commands and reports their exit status.
// Implementations return an error only when the process could not be run at all.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a command that ran and exited with a non-zero code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command together with its exit code and standard error.
func (failure CommandFailedError) Error() string {
	workingDirectorySuffix := ""
	if trimmedDirectory := strings.TrimSpace(failure.Command.Details.WorkingDirectory); len(trimmedDirectory) > 0 {
		workingDirectorySuffix = fmt.Sprintf(commandFailedWorkingDirectoryTemplate, trimmedDirectory)
	}
	standardErrorSuffix := ""
	if trimmedStandardError := strings.TrimSpace(failure.Result.StandardError); len(trimmedStandardError) > 0 {
		standardErrorSuffix = fmt.Sprintf(commandFailedStandardErrorTemplate, trimmedStandardError)
	}
	return fmt.Sprintf(commandFailedErrorTemplateConstant, failure.Command.String()+workingDirectorySuffix, failure.Result.ExitCode, standardErrorSuffix)
}

// ExitCode exposes the exit status of the failed command.
func (failure CommandFailedError) ExitCode() int {
	return failure.Result.ExitCode
}

// CommandExecutionError reports a command that could not be started or awaited.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, failure.Command.String(), failure.Cause)
}

// Unwrap exposes the underlying cause.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}
