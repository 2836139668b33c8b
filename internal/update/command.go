package update

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/checkoutsync/internal/execshell"
	"github.com/temirov/checkoutsync/internal/repos/dependencies"
	"github.com/temirov/checkoutsync/internal/repos/shared"
	"github.com/temirov/checkoutsync/internal/snapshot"
	"github.com/temirov/checkoutsync/internal/ui"
	"github.com/temirov/checkoutsync/internal/utils/flags"
)

const (
	commandUseConstant                      = "update"
	commandShortDescriptionConstant         = "Clone and update every checkout of the project"
	commandLongDescriptionConstant          = "update aligns every configured repository to a branch scheme, a tag, or a timestamp, optionally cloning missing repositories first, and reports the resulting commit hashes."
	unexpectedArgumentsMessageConstant      = "update does not accept positional arguments"
	flagCloneNameConstant                   = "clone"
	flagCloneDescriptionConstant            = "Obtain sources for all missing repositories over HTTPS"
	flagCloneWithSSHNameConstant            = "clone-with-ssh"
	flagCloneWithSSHDescriptionConstant     = "Obtain sources for all missing repositories over SSH"
	flagSkipHistoryNameConstant             = "skip-history"
	flagSkipHistoryDescriptionConstant      = "Clone without history (shallow clone of the scheme branch)"
	flagSkipRepositoryNameConstant          = "skip-repository"
	flagSkipRepositoryDescriptionConstant   = "Skip the named repository; repeatable"
	flagSchemeNameConstant                  = "scheme"
	flagSchemeDescriptionConstant           = "Branch scheme alias, or a branch name used for every repository"
	flagResetToRemoteNameConstant           = "reset-to-remote"
	flagResetToRemoteDescriptionConstant    = "Hard reset every repository to its remote branch or tag; requires --scheme"
	flagCleanNameConstant                   = "clean"
	flagCleanDescriptionConstant            = "Remove untracked files and local changes before updating"
	flagManifestNameConstant                = "manifest"
	flagManifestDescriptionConstant         = "Path to the repository configuration document (JSON or YAML)"
	flagGitHubCommentNameConstant           = "github-comment"
	flagGitHubCommentDescriptionConstant    = "Comment text scanned for cross-repository pull request references"
	flagDumpHashesNameConstant              = "dump-hashes"
	flagDumpHashesDescriptionConstant       = "Print a configuration document pinning every repository to its current commit"
	flagDumpHashesConfigNameConstant        = "dump-hashes-config"
	flagDumpHashesConfigDescriptionConstant = "Like --dump-hashes, naming the exported branch scheme"
	flagDumpFormatNameConstant              = "dump-format"
	flagDumpFormatDescriptionConstant       = "Encoding of dumped configuration documents"
	flagTagNameConstant                     = "tag"
	flagTagDescriptionConstant              = "Check out this tag in every repository that has it"
	flagMatchTimestampNameConstant          = "match-timestamp"
	flagMatchTimestampDescriptionConstant   = "Check out the commits matching the primary repository's commit time; requires --scheme"
	flagJobsNameConstant                    = "jobs"
	flagJobsShorthandConstant               = "j"
	flagJobsDescriptionConstant             = "Number of repositories processed in parallel (0 uses the CPU count)"
	flagSourceRootNameConstant              = "source-root"
	flagSourceRootDescriptionConstant       = "Directory containing every checkout"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the update cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	GitExecutor           shared.GitExecutor
	FileSystem            shared.FileSystem
	CommandEventsObserver execshell.CommandEventObserver
	// HumanReadableLoggingProvider reports console logging; git commands are then echoed
	// through the logger unless CommandEventsObserver is set.
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	ColorOutputProvider          func() bool
	PlatformName                 string
}

type commandFlagValues struct {
	dumpFormat string
}

// Build constructs the update command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	flagValues := &commandFlagValues{}
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, flagValues)
		},
	}

	commandFlags := command.Flags()
	commandFlags.Bool(flagCloneNameConstant, false, flagCloneDescriptionConstant)
	commandFlags.Bool(flagCloneWithSSHNameConstant, false, flagCloneWithSSHDescriptionConstant)
	commandFlags.Bool(flagSkipHistoryNameConstant, false, flagSkipHistoryDescriptionConstant)
	commandFlags.StringArray(flagSkipRepositoryNameConstant, nil, flagSkipRepositoryDescriptionConstant)
	commandFlags.String(flagSchemeNameConstant, "", flagSchemeDescriptionConstant)
	commandFlags.Bool(flagResetToRemoteNameConstant, false, flagResetToRemoteDescriptionConstant)
	commandFlags.Bool(flagCleanNameConstant, false, flagCleanDescriptionConstant)
	commandFlags.String(flagManifestNameConstant, "", flagManifestDescriptionConstant)
	commandFlags.String(flagGitHubCommentNameConstant, "", flagGitHubCommentDescriptionConstant)
	commandFlags.Bool(flagDumpHashesNameConstant, false, flagDumpHashesDescriptionConstant)
	commandFlags.String(flagDumpHashesConfigNameConstant, "", flagDumpHashesConfigDescriptionConstant)
	flags.AddChoiceFlag(commandFlags, &flagValues.dumpFormat, flagDumpFormatNameConstant, string(snapshot.FormatJSON), snapshot.SupportedFormats(), flagDumpFormatDescriptionConstant)
	commandFlags.String(flagTagNameConstant, "", flagTagDescriptionConstant)
	commandFlags.Bool(flagMatchTimestampNameConstant, false, flagMatchTimestampDescriptionConstant)
	commandFlags.IntP(flagJobsNameConstant, flagJobsShorthandConstant, 0, flagJobsDescriptionConstant)
	commandFlags.String(flagSourceRootNameConstant, "", flagSourceRootDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string, flagValues *commandFlagValues) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	options, optionsError := builder.parseOptions(command, flagValues)
	if optionsError != nil {
		return optionsError
	}
	if validationError := options.Validate(); validationError != nil {
		return validationError
	}

	logger := builder.resolveLogger()
	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, builder.resolveCommandEventsObserver(logger))
	if executorError != nil {
		return executorError
	}

	useColor := false
	if builder.ColorOutputProvider != nil {
		useColor = builder.ColorOutputProvider()
	}

	runner, runnerError := NewRunner(Dependencies{
		GitExecutor:  gitExecutor,
		FileSystem:   builder.FileSystem,
		Output:       command.OutOrStdout(),
		Styler:       ui.NewStyler(ui.DefaultTheme(), useColor),
		PlatformName: builder.PlatformName,
		Logger:       logger,
	})
	if runnerError != nil {
		return runnerError
	}
	return runner.Run(command.Context(), options)
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, flagValues *commandFlagValues) (Options, error) {
	commandFlags := command.Flags()
	configuration := builder.resolveConfiguration()

	if commandFlags.Changed(flagManifestNameConstant) {
		configuration.ManifestPath, _ = commandFlags.GetString(flagManifestNameConstant)
	}
	if commandFlags.Changed(flagSourceRootNameConstant) {
		configuration.SourceRoot, _ = commandFlags.GetString(flagSourceRootNameConstant)
	}
	if commandFlags.Changed(flagJobsNameConstant) {
		configuration.Jobs, _ = commandFlags.GetInt(flagJobsNameConstant)
	}

	cloneRequested, _ := commandFlags.GetBool(flagCloneNameConstant)
	cloneWithSSHRequested, _ := commandFlags.GetBool(flagCloneWithSSHNameConstant)
	skipHistory, _ := commandFlags.GetBool(flagSkipHistoryNameConstant)
	skipRepositories, skipRepositoriesError := commandFlags.GetStringArray(flagSkipRepositoryNameConstant)
	if skipRepositoriesError != nil {
		return Options{}, skipRepositoriesError
	}
	schemeName, _ := commandFlags.GetString(flagSchemeNameConstant)
	resetToRemote, _ := commandFlags.GetBool(flagResetToRemoteNameConstant)
	cleanRequested, _ := commandFlags.GetBool(flagCleanNameConstant)
	gitHubComment, _ := commandFlags.GetString(flagGitHubCommentNameConstant)
	dumpHashes, _ := commandFlags.GetBool(flagDumpHashesNameConstant)
	dumpHashesScheme, _ := commandFlags.GetString(flagDumpHashesConfigNameConstant)
	tagName, _ := commandFlags.GetString(flagTagNameConstant)
	matchTimestamp, _ := commandFlags.GetBool(flagMatchTimestampNameConstant)

	return Options{
		Configuration:    configuration,
		Clone:            cloneRequested,
		CloneWithSSH:     cloneWithSSHRequested,
		SkipHistory:      skipHistory,
		SkipRepositories: sanitizeValues(skipRepositories),
		SchemeName:       strings.TrimSpace(schemeName),
		Tag:              strings.TrimSpace(tagName),
		ResetToRemote:    resetToRemote,
		Clean:            cleanRequested,
		GitHubComment:    gitHubComment,
		DumpHashes:       dumpHashes,
		DumpHashesScheme: strings.TrimSpace(dumpHashesScheme),
		DumpFormat:       snapshot.Format(flagValues.dumpFormat),
		MatchTimestamp:   matchTimestamp,
	}, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveCommandEventsObserver(logger *zap.Logger) execshell.CommandEventObserver {
	if builder.CommandEventsObserver != nil {
		return builder.CommandEventsObserver
	}
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		return ui.NewConsoleCommandEventLogger(logger)
	}
	return nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
