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
	standardErrorSinkConstant            = "stderr"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
	consoleMessageKeyConstant            = "message"
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
	// LogFormatAuto selects console output for terminals and structured output otherwise.
	LogFormatAuto LogFormat = LogFormat(logFormatAutoStringConstant)
)

// TerminalDetector reports whether diagnostic output is attached to an interactive terminal.
type TerminalDetector func() bool

// LoggerOutputs groups the loggers produced for a single configuration.
type LoggerOutputs struct {
	// DiagnosticLogger carries leveled diagnostics in the resolved format.
	DiagnosticLogger *zap.Logger
	// ConsoleLogger prints bare messages for human-readable command feedback.
	ConsoleLogger *zap.Logger
	// ResolvedFormat is the concrete format after LogFormatAuto has been resolved.
	ResolvedFormat LogFormat
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

// NewLoggerFactory constructs a logger factory that inspects standard error for terminal detection.
func NewLoggerFactory() *LoggerFactory {
	return NewLoggerFactoryWithTerminalDetector(standardErrorIsTerminal)
}

// NewLoggerFactoryWithTerminalDetector constructs a logger factory with a custom terminal detector.
func NewLoggerFactoryWithTerminalDetector(detector TerminalDetector) *LoggerFactory {
	if detector == nil {
		detector = standardErrorIsTerminal
	}
	return &LoggerFactory{terminalDetector: detector}
}

// ResolveLogFormat replaces LogFormatAuto with the concrete format for the current terminal.
func (factory *LoggerFactory) ResolveLogFormat(requestedLogFormat LogFormat) LogFormat {
	if requestedLogFormat != LogFormatAuto {
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
		configuration.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		configuration.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		configuration.DisableStacktrace = true
	}

	logger, buildError := configuration.Build()
	if buildError != nil {
		return nil, buildError
	}

	return logger, nil
}

// CreateLoggerOutputs produces the diagnostic logger together with a message-only console logger.
func (factory *LoggerFactory) CreateLoggerOutputs(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (LoggerOutputs, error) {
	diagnosticLogger, diagnosticError := factory.CreateLogger(requestedLogLevel, requestedLogFormat)
	if diagnosticError != nil {
		return LoggerOutputs{}, diagnosticError
	}

	consoleConfiguration := zap.Config{
		Level:    zap.NewAtomicLevelAt(logLevelMapping[requestedLogLevel]),
		Encoding: consoleZapEncodingStringConstant,
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:     consoleMessageKeyConstant,
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeDuration: zapcore.StringDurationEncoder,
		},
		OutputPaths:       []string{standardErrorSinkConstant},
		ErrorOutputPaths:  []string{standardErrorSinkConstant},
		DisableCaller:     true,
		DisableStacktrace: true,
	}
	consoleLogger, consoleError := consoleConfiguration.Build()
	if consoleError != nil {
		return LoggerOutputs{}, consoleError
	}

	return LoggerOutputs{
		DiagnosticLogger: diagnosticLogger,
		ConsoleLogger:    consoleLogger,
		ResolvedFormat:   factory.ResolveLogFormat(requestedLogFormat),
	}, nil
}

func standardErrorIsTerminal() bool {
	descriptor := os.Stderr.Fd()
	return isatty.IsTerminal(descriptor) || isatty.IsCygwinTerminal(descriptor)
}
