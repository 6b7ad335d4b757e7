package utils

import "context"

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	logFormatContextKeyConstant             = commandContextKey("logFormat")
)

type commandContextKey string

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	return context.WithValue(ensureContext(parentContext), configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath extracts the configuration file path from the provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	return lookupString(executionContext, configurationFilePathContextKeyConstant)
}

// WithLogFormat attaches the active log format to the provided context.
func (accessor CommandContextAccessor) WithLogFormat(parentContext context.Context, logFormat LogFormat) context.Context {
	return context.WithValue(ensureContext(parentContext), logFormatContextKeyConstant, string(logFormat))
}

// LogFormat extracts the active log format from the provided context.
func (accessor CommandContextAccessor) LogFormat(executionContext context.Context) (LogFormat, bool) {
	rawFormat, available := lookupString(executionContext, logFormatContextKeyConstant)
	return LogFormat(rawFormat), available
}

func ensureContext(parentContext context.Context) context.Context {
	if parentContext == nil {
		return context.Background()
	}
	return parentContext
}

func lookupString(executionContext context.Context, key commandContextKey) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	value, available := executionContext.Value(key).(string)
	return value, available
}
