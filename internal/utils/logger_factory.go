package utils

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugStringConstant          = "debug"
	logLevelInfoStringConstant           = "info"
	logLevelWarnStringConstant           = "warn"
	logLevelErrorStringConstant          = "error"
	logFormatStructuredStringConstant    = "structured"
	logFormatConsoleStringConstant       = "console"
	logFormatAutoStringConstant          = "auto"
	jsonZapEncodingStringConstant        = "json"
	consoleZapEncodingStringConstant     = "console"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Exported log level constants for reuse across packages.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnStringConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorStringConstant)
)

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Exported log format constants for reuse across packages.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredStringConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleStringConstant)
	LogFormatAuto       LogFormat = LogFormat(logFormatAutoStringConstant)
)

// SupportedLogFormats lists the accepted values of the log format setting.
func SupportedLogFormats() []string {
	return []string{logFormatAutoStringConstant, logFormatConsoleStringConstant, logFormatStructuredStringConstant}
}

// TerminalDetector reports whether the log destination is an interactive terminal.
type TerminalDetector func() bool

// StandardErrorIsTerminal reports whether the process standard error is attached to a terminal.
func StandardErrorIsTerminal() bool {
	fileDescriptor := os.Stderr.Fd()
	return isatty.IsTerminal(fileDescriptor) || isatty.IsCygwinTerminal(fileDescriptor)
}

// LoggerFactory builds zap.Logger instances with consistent configuration.
type LoggerFactory struct {
	terminalDetector TerminalDetector
}

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

var logFormatEncodingMapping = map[LogFormat]string{
	LogFormatStructured: jsonZapEncodingStringConstant,
	LogFormatConsole:    consoleZapEncodingStringConstant,
}

// NewLoggerFactory constructs a logger factory that detects terminals on standard error.
func NewLoggerFactory() *LoggerFactory {
	return NewLoggerFactoryWithTerminalDetector(StandardErrorIsTerminal)
}

// NewLoggerFactoryWithTerminalDetector constructs a logger factory with a custom terminal detector.
func NewLoggerFactoryWithTerminalDetector(terminalDetector TerminalDetector) *LoggerFactory {
	if terminalDetector == nil {
		terminalDetector = StandardErrorIsTerminal
	}
	return &LoggerFactory{terminalDetector: terminalDetector}
}

// ResolveLogFormat replaces LogFormatAuto with console output on terminals and structured output elsewhere.
func (factory *LoggerFactory) ResolveLogFormat(requestedLogFormat LogFormat) LogFormat {
	if requestedLogFormat != LogFormatAuto && len(requestedLogFormat) > 0 {
		return requestedLogFormat
	}
	if factory.terminalDetector() {
		return LogFormatConsole
	}
	return LogFormatStructured
}

// CreateLogger produces a zap.Logger honoring the requested log level and format.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	zapLogLevel, levelExists := logLevelMapping[requestedLogLevel]
	if !levelExists {
		return nil, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}

	encoding, formatExists := logFormatEncodingMapping[factory.ResolveLogFormat(requestedLogFormat)]
	if !formatExists {
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}

	configuration := zap.NewProductionConfig()
	configuration.Level = zap.NewAtomicLevelAt(zapLogLevel)
	configuration.Encoding = encoding
	if encoding == consoleZapEncodingStringConstant {
		configuration.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		configuration.EncoderConfig.TimeKey = ""
		configuration.EncoderConfig.CallerKey = ""
		configuration.EncoderConfig.StacktraceKey = ""
	}

	return configuration.Build()
}
