package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/checkoutsync/internal/update"
	"github.com/temirov/checkoutsync/internal/utils"
)

func TestEmbeddedDefaultConfigurationMatchesCommandDefaults(testInstance *testing.T) {
	configurationLoader := utils.NewConfigurationLoader(configurationNameConstant, configurationTypeConstant, environmentPrefixConstant, []string{testInstance.TempDir()})
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	var configuration ApplicationConfiguration
	_, loadError := configurationLoader.LoadConfiguration("", map[string]any{}, &configuration)
	require.NoError(testInstance, loadError)

	require.Equal(testInstance, string(utils.LogLevelInfo), configuration.Common.LogLevel)
	require.Equal(testInstance, string(utils.LogFormatAuto), configuration.Common.LogFormat)
	require.Equal(testInstance, update.DefaultCommandConfiguration(), configuration.Tools.Update)
}

func TestEmbeddedDefaultConfigurationReturnsCopy(testInstance *testing.T) {
	firstContent, configurationType := EmbeddedDefaultConfiguration()
	require.Equal(testInstance, configurationTypeConstant, configurationType)
	require.NotEmpty(testInstance, firstContent)

	firstContent[0] = '#'
	secondContent, _ := EmbeddedDefaultConfiguration()
	require.NotEqual(testInstance, firstContent[0], secondContent[0])
}

func TestInitializeConfigurationPrecedence(testInstance *testing.T) {
	testCases := []struct {
		name                string
		fileContents        string
		environment         map[string]string
		logLevelFlag        string
		expectedJobs        int
		expectedRemote      string
		expectedPrimary     string
		expectedLogLevel    string
		expectedHumanOutput bool
	}{
		{
			name:             "embedded_defaults",
			expectedJobs:     0,
			expectedRemote:   "origin",
			expectedPrimary:  "swift",
			expectedLogLevel: "info",
		},
		{
			name:             "file_overrides_defaults",
			fileContents:     "tools:\n  update:\n    jobs: 3\n    remote: upstream\n",
			expectedJobs:     3,
			expectedRemote:   "upstream",
			expectedPrimary:  "swift",
			expectedLogLevel: "info",
		},
		{
			name:             "environment_overrides_file",
			fileContents:     "tools:\n  update:\n    remote: upstream\n",
			environment:      map[string]string{"CHECKOUTSYNC_TOOLS_UPDATE_REMOTE": "fork"},
			expectedJobs:     0,
			expectedRemote:   "fork",
			expectedPrimary:  "swift",
			expectedLogLevel: "info",
		},
		{
			name:                "flags_override_logging",
			fileContents:        "common:\n  log_level: warn\n  log_format: console\n",
			logLevelFlag:        "debug",
			expectedJobs:        0,
			expectedRemote:      "origin",
			expectedPrimary:     "swift",
			expectedLogLevel:    "debug",
			expectedHumanOutput: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			changeWorkingDirectory(testInstance, testInstance.TempDir())
			for environmentKey, environmentValue := range testCase.environment {
				testInstance.Setenv(environmentKey, environmentValue)
			}

			application := NewApplicationWithOutput(&bytes.Buffer{}, &bytes.Buffer{})
			application.configurationLoader = utils.NewConfigurationLoader(configurationNameConstant, configurationTypeConstant, environmentPrefixConstant, []string{testInstance.TempDir()})
			application.configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())
			application.loggerFactory = utils.NewLoggerFactoryWithTerminalDetector(func() bool { return false })

			if len(testCase.fileContents) > 0 {
				configurationPath := filepath.Join(testInstance.TempDir(), "config.yaml")
				require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testCase.fileContents), 0o644))
				application.configurationFilePath = configurationPath
			}
			if len(testCase.logLevelFlag) > 0 {
				require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, testCase.logLevelFlag))
			}

			require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

			updateConfiguration := application.configuration.Tools.Update
			require.Equal(testInstance, testCase.expectedJobs, updateConfiguration.Jobs)
			require.Equal(testInstance, testCase.expectedRemote, updateConfiguration.RemoteName)
			require.Equal(testInstance, testCase.expectedPrimary, updateConfiguration.PrimaryRepository)
			require.Equal(testInstance, testCase.expectedLogLevel, application.configuration.Common.LogLevel)
			require.Equal(testInstance, testCase.expectedHumanOutput, application.humanReadableLoggingEnabled())
		})
	}
}

func TestInitializeConfigurationRejectsUnknownLogLevel(testInstance *testing.T) {
	changeWorkingDirectory(testInstance, testInstance.TempDir())
	application := NewApplicationWithOutput(&bytes.Buffer{}, &bytes.Buffer{})
	application.configurationLoader = utils.NewConfigurationLoader(configurationNameConstant, configurationTypeConstant, environmentPrefixConstant, []string{testInstance.TempDir()})
	application.configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())
	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "verbose"))

	require.Error(testInstance, application.initializeConfiguration(application.rootCommand))
}

func TestFailureExitCodeStaysWithinExitStatusRange(testInstance *testing.T) {
	testCases := []struct {
		name             string
		failureCount     int
		expectedExitCode int
	}{
		{name: "single_failure", failureCount: 1, expectedExitCode: 1},
		{name: "largest_status", failureCount: 255, expectedExitCode: 255},
		{name: "wrapping_count", failureCount: 256, expectedExitCode: 255},
		{name: "large_fleet", failureCount: 1024, expectedExitCode: 255},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedExitCode, failureExitCode(testCase.failureCount))
		})
	}
}

// changeWorkingDirectory switches into directory and restores the previous working directory on cleanup.
func changeWorkingDirectory(testInstance *testing.T, directory string) {
	testInstance.Helper()
	previousDirectory, getError := os.Getwd()
	require.NoError(testInstance, getError)
	require.NoError(testInstance, os.Chdir(directory))
	testInstance.Cleanup(func() {
		require.NoError(testInstance, os.Chdir(previousDirectory))
	})
}
