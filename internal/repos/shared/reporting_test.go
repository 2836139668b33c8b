package shared_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/checkoutsync/internal/repos/shared"
)

func TestWriterReporterSerializesConcurrentNotices(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	reporter := shared.NewWriterReporter(outputBuffer)

	const noticeCount = 50
	var waitGroup sync.WaitGroup
	for noticeIndex := 0; noticeIndex < noticeCount; noticeIndex++ {
		waitGroup.Add(1)
		go func(index int) {
			defer waitGroup.Done()
			reporter.Printf("notice %02d\n", index)
		}(noticeIndex)
	}
	waitGroup.Wait()

	lines := strings.Split(strings.TrimSpace(outputBuffer.String()), "\n")
	require.Len(testInstance, lines, noticeCount)
	for _, line := range lines {
		require.Regexp(testInstance, `^notice \d{2}$`, line)
	}
}

func TestNonInteractiveGitEnvironmentDisablesPrompts(testInstance *testing.T) {
	environment := shared.NonInteractiveGitEnvironment()
	require.Equal(testInstance, map[string]string{"GIT_TERMINAL_PROMPT": "0"}, environment)
}
