package execshell

import (
	"go.uber.org/zap"
)

// CommandEventObserver receives lifecycle notifications for shell command execution.
type CommandEventObserver interface {
	// CommandStarted notifies observers that command execution is beginning.
	CommandStarted(command ShellCommand)
	// CommandCompleted notifies observers that the process exited and supplies the result.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports failures that prevented an execution result.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// structuredCommandEventLogger records lifecycle events as structured zap fields.
// Environment values are never logged, only their names.
type structuredCommandEventLogger struct {
	logger *zap.Logger
}

func newStructuredCommandEventLogger(logger *zap.Logger) *structuredCommandEventLogger {
	return &structuredCommandEventLogger{logger: logger}
}

func (eventLogger *structuredCommandEventLogger) CommandStarted(command ShellCommand) {
	eventLogger.logger.Debug(
		commandStartedLogMessageConstant,
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
		zap.Strings(logFieldEnvironmentKeysConstant, command.Details.Environment.Names()),
	)
}

func (eventLogger *structuredCommandEventLogger) CommandCompleted(command ShellCommand, result ExecutionResult) {
	if result.ExitCode == 0 {
		eventLogger.logger.Debug(
			commandCompletedLogMessageConstant,
			zap.String(logFieldCommandNameConstant, string(command.Name)),
			zap.Int(logFieldExitCodeConstant, result.ExitCode),
		)
		return
	}
	eventLogger.logger.Warn(
		commandFailedLogMessageConstant,
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
		zap.String(logFieldStandardErrorConstant, result.StandardError),
	)
}

func (eventLogger *structuredCommandEventLogger) CommandExecutionFailed(command ShellCommand, failure error) {
	eventLogger.logger.Error(
		commandExecutionFailedLogMessageConstant,
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.Error(failure),
	)
}

// consoleCommandEventLogger renders lifecycle events as sentences for console output.
type consoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter CommandMessageFormatter
}

func newConsoleCommandEventLogger(logger *zap.Logger) *consoleCommandEventLogger {
	return &consoleCommandEventLogger{logger: logger, formatter: CommandMessageFormatter{}}
}

func (eventLogger *consoleCommandEventLogger) CommandStarted(command ShellCommand) {
	eventLogger.logger.Info(eventLogger.formatter.BuildStartedMessage(command))
}

func (eventLogger *consoleCommandEventLogger) CommandCompleted(command ShellCommand, result ExecutionResult) {
	if result.ExitCode == 0 {
		eventLogger.logger.Info(eventLogger.formatter.BuildSuccessMessage(command))
		return
	}
	eventLogger.logger.Warn(eventLogger.formatter.BuildFailureMessage(command, result))
}

func (eventLogger *consoleCommandEventLogger) CommandExecutionFailed(command ShellCommand, failure error) {
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(command, failure))
}
