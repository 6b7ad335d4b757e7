package utils

import (
	"fmt"
	"io"
	"os"
	"strings"

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
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
	structuredTimeKeyConstant            = "ts"
	structuredMessageKeyConstant         = "msg"
	structuredLevelKeyConstant           = "level"
	structuredLoggerNameKeyConstant      = "logger"
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
)

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

// ParseLogLevel normalizes a textual log level.
func ParseLogLevel(rawValue string) (LogLevel, error) {
	candidate := LogLevel(strings.ToLower(strings.TrimSpace(rawValue)))
	if _, exists := logLevelMapping[candidate]; !exists {
		return "", fmt.Errorf(unsupportedLogLevelTemplateConstant, rawValue)
	}
	return candidate, nil
}

// ParseLogFormat normalizes a textual log format.
func ParseLogFormat(rawValue string) (LogFormat, error) {
	candidate := LogFormat(strings.ToLower(strings.TrimSpace(rawValue)))
	switch candidate {
	case LogFormatStructured, LogFormatConsole:
		return candidate, nil
	default:
		return "", fmt.Errorf(unsupportedLogFormatTemplateConstant, rawValue)
	}
}

// LoggerFactory builds zap.Logger instances writing to a single flushed output.
type LoggerFactory struct {
	outputWriter io.Writer
}

// NewLoggerFactory constructs a logger factory writing to outputWriter, or to standard error when nil.
func NewLoggerFactory(outputWriter io.Writer) *LoggerFactory {
	if outputWriter == nil {
		outputWriter = os.Stderr
	}
	return &LoggerFactory{outputWriter: NewFlushingWriter(outputWriter)}
}

// CreateLogger produces a zap.Logger honoring the requested log level and format.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	zapLogLevel, levelExists := logLevelMapping[requestedLogLevel]
	if !levelExists {
		return nil, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}

	var encoder zapcore.Encoder
	switch requestedLogFormat {
	case LogFormatStructured:
		encoderConfiguration := zap.NewProductionEncoderConfig()
		encoderConfiguration.TimeKey = structuredTimeKeyConstant
		encoderConfiguration.MessageKey = structuredMessageKeyConstant
		encoderConfiguration.LevelKey = structuredLevelKeyConstant
		encoderConfiguration.NameKey = structuredLoggerNameKeyConstant
		encoderConfiguration.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfiguration)
	case LogFormatConsole:
		// CI runners prefix their own timestamps.
		encoderConfiguration := zap.NewDevelopmentEncoderConfig()
		encoderConfiguration.TimeKey = ""
		encoderConfiguration.CallerKey = ""
		encoderConfiguration.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfiguration)
	default:
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(factory.outputWriter), zap.NewAtomicLevelAt(zapLogLevel))
	return zap.New(core), nil
}
