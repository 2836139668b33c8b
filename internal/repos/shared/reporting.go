package shared

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Reporter emits formatted user-facing notices to an underlying sink.
type Reporter interface {
	Printf(format string, args ...any)
}

type writerReporter struct {
	writer io.Writer
	mutex  *sync.Mutex
}

// NewWriterReporter constructs a Reporter that writes to the provided io.Writer.
// Writes are serialized so notices from concurrent workers never interleave.
func NewWriterReporter(writer io.Writer) Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return writerReporter{writer: writer, mutex: &sync.Mutex{}}
}

func (reporter writerReporter) Printf(format string, args ...any) {
	if reporter.writer == nil {
		return
	}
	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()
	fmt.Fprintf(reporter.writer, format, args...)
}

type discardReporter struct{}

// NewDiscardReporter constructs a Reporter that drops every notice.
func NewDiscardReporter() Reporter {
	return discardReporter{}
}

func (discardReporter) Printf(string, ...any) {}
