package orchestrator

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

const (
	workflowErrorCommandTemplateConstant = "::error::%s\n"
)

var workflowCommandEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")

// Reporter carries the user-facing progress and terminal failure signal of a run.
type Reporter interface {
	Info(message string)
	SetFailed(message string)
}

// LogReporter reports through zap and, when annotations are enabled, also writes a
// GitHub Actions ::error:: workflow command for failures.
type LogReporter struct {
	logger           *zap.Logger
	annotationWriter io.Writer
}

// NewLogReporter constructs a LogReporter. A nil annotationWriter disables annotations.
func NewLogReporter(logger *zap.Logger, annotationWriter io.Writer) *LogReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogReporter{logger: logger, annotationWriter: annotationWriter}
}

// Info implements Reporter.
func (reporter *LogReporter) Info(message string) {
	reporter.logger.Info(message)
}

// SetFailed implements Reporter.
func (reporter *LogReporter) SetFailed(message string) {
	reporter.logger.Error(message)
	if reporter.annotationWriter != nil {
		_, _ = fmt.Fprintf(reporter.annotationWriter, workflowErrorCommandTemplateConstant, workflowCommandEscaper.Replace(message))
	}
}
