package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	gitCloneSubcommandNameConstant       = "clone"
	gitFetchSubcommandNameConstant       = "fetch"
	gitCheckoutSubcommandNameConstant    = "checkout"
	gitRebaseSubcommandNameConstant      = "rebase"
	gitResetSubcommandNameConstant       = "reset"
	gitSubmoduleSubcommandNameConstant   = "submodule"
	gitRevParseSubcommandNameConstant    = "rev-parse"
	gitSymbolicRefSubcommandNameConstant = "symbolic-ref"
	gitLSRemoteSubcommandNameConstant    = "ls-remote"
	gitGitDirFlagConstant                = "--git-dir"
	gitWorkTreeFlagConstant              = "--work-tree"
	gitAbortFlagConstant                 = "--abort"
	gitHardFlagConstant                  = "--hard"
)

const (
	gitCloneStartTemplateConstant          = "Cloning %s"
	gitCloneSuccessTemplateConstant        = "Cloned %s"
	gitFetchStartTemplateConstant          = "Fetching updates in %s"
	gitFetchSuccessTemplateConstant        = "Fetched updates in %s"
	gitCheckoutStartTemplateConstant       = "Checking out %s in %s"
	gitCheckoutSuccessTemplateConstant     = "%s now at %s"
	gitRebaseStartTemplateConstant         = "Rebasing %s onto %s"
	gitRebaseSuccessTemplateConstant       = "Rebased %s onto %s"
	gitRebaseAbortStartTemplateConstant    = "Aborting any rebase in progress in %s"
	gitRebaseAbortSuccessTemplateConstant  = "Aborted rebase in %s"
	gitResetStartTemplateConstant          = "Resetting %s to %s"
	gitResetSuccessTemplateConstant        = "Reset %s to %s"
	gitSubmoduleStartTemplateConstant      = "Updating submodules in %s"
	gitSubmoduleSuccessTemplateConstant    = "Updated submodules in %s"
	gitRevParseStartTemplateConstant       = "Resolving %s in %s"
	gitRevParseSuccessTemplateConstant     = "Resolved %s in %s"
	gitSymbolicRefStartTemplateConstant    = "Checking whether HEAD is attached in %s"
	gitSymbolicRefSuccessTemplateConstant  = "HEAD is attached to a branch in %s"
	gitSymbolicRefDetachedTemplateConstant = "HEAD is detached in %s"
	gitLSRemoteStartTemplateConstant       = "Querying remote references from %s"
	gitLSRemoteSuccessTemplateConstant     = "Queried remote references from %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	// Failures always use the generic template so the exit code and stderr are visible.
	if stage == messageStageFailure || stage == messageStageExecutionFailure {
		if formatter.isDetachedHeadProbe(command, result, stage) {
			return fmt.Sprintf(gitSymbolicRefDetachedTemplateConstant, formatter.describeWorkingDirectory(command))
		}
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	arguments := formatter.subcommandArguments(command.Details.Arguments)
	if len(arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	repositoryLabel := formatter.describeWorkingDirectory(command)

	switch arguments[0] {
	case gitCloneSubcommandNameConstant:
		return formatter.pick(stage, gitCloneStartTemplateConstant, gitCloneSuccessTemplateConstant, formatter.lastArgument(arguments))
	case gitFetchSubcommandNameConstant:
		return formatter.pick(stage, gitFetchStartTemplateConstant, gitFetchSuccessTemplateConstant, repositoryLabel)
	case gitCheckoutSubcommandNameConstant:
		if stage == messageStageStart {
			return fmt.Sprintf(gitCheckoutStartTemplateConstant, formatter.lastArgument(arguments), repositoryLabel)
		}
		return fmt.Sprintf(gitCheckoutSuccessTemplateConstant, repositoryLabel, formatter.lastArgument(arguments))
	case gitRebaseSubcommandNameConstant:
		if containsArgument(arguments, gitAbortFlagConstant) {
			return formatter.pick(stage, gitRebaseAbortStartTemplateConstant, gitRebaseAbortSuccessTemplateConstant, repositoryLabel)
		}
		return formatter.pickPair(stage, gitRebaseStartTemplateConstant, gitRebaseSuccessTemplateConstant, repositoryLabel, formatter.lastArgument(arguments))
	case gitResetSubcommandNameConstant:
		if containsArgument(arguments, gitHardFlagConstant) {
			return formatter.pickPair(stage, gitResetStartTemplateConstant, gitResetSuccessTemplateConstant, repositoryLabel, formatter.lastArgument(arguments))
		}
	case gitSubmoduleSubcommandNameConstant:
		return formatter.pick(stage, gitSubmoduleStartTemplateConstant, gitSubmoduleSuccessTemplateConstant, repositoryLabel)
	case gitRevParseSubcommandNameConstant:
		return formatter.pickPair(stage, gitRevParseStartTemplateConstant, gitRevParseSuccessTemplateConstant, formatter.lastArgument(arguments), repositoryLabel)
	case gitSymbolicRefSubcommandNameConstant:
		return formatter.pick(stage, gitSymbolicRefStartTemplateConstant, gitSymbolicRefSuccessTemplateConstant, repositoryLabel)
	case gitLSRemoteSubcommandNameConstant:
		return formatter.pick(stage, gitLSRemoteStartTemplateConstant, gitLSRemoteSuccessTemplateConstant, repositoryLabel)
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) isDetachedHeadProbe(command ShellCommand, result ExecutionResult, stage messageStage) bool {
	if stage != messageStageFailure || result.ExitCode != 1 {
		return false
	}
	arguments := formatter.subcommandArguments(command.Details.Arguments)
	return len(arguments) > 0 && arguments[0] == gitSymbolicRefSubcommandNameConstant
}

// subcommandArguments drops leading --git-dir/--work-tree pairs so the subcommand is first.
func (formatter CommandMessageFormatter) subcommandArguments(arguments []string) []string {
	remaining := arguments
	for len(remaining) >= 2 && (remaining[0] == gitGitDirFlagConstant || remaining[0] == gitWorkTreeFlagConstant) {
		remaining = remaining[2:]
	}
	return remaining
}

func (formatter CommandMessageFormatter) pick(stage messageStage, startTemplate string, successTemplate string, value string) string {
	if stage == messageStageStart {
		return fmt.Sprintf(startTemplate, value)
	}
	return fmt.Sprintf(successTemplate, value)
}

func (formatter CommandMessageFormatter) pickPair(stage messageStage, startTemplate string, successTemplate string, firstValue string, secondValue string) string {
	if stage == messageStageStart {
		return fmt.Sprintf(startTemplate, firstValue, secondValue)
	}
	return fmt.Sprintf(successTemplate, firstValue, secondValue)
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return command.String()
	}
	return command.String() + fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return ""
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) lastArgument(arguments []string) string {
	for argumentIndex := len(arguments) - 1; argumentIndex > 0; argumentIndex-- {
		candidate := strings.TrimSpace(arguments[argumentIndex])
		if len(candidate) > 0 && !strings.HasPrefix(candidate, "-") {
			return candidate
		}
	}
	return fallbackUnknownValueLabelConstant
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}
