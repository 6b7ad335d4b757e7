package orchestrator

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/argomigrate/internal/argo"
	"github.com/temirov/argomigrate/internal/execshell"
	"github.com/temirov/argomigrate/internal/gitrepo"
	"github.com/temirov/argomigrate/internal/inputs"
	"github.com/temirov/argomigrate/internal/manifest"
	"github.com/temirov/argomigrate/internal/migrations"
	"github.com/temirov/argomigrate/internal/runcontext"
	"github.com/temirov/argomigrate/internal/utils/flags"
)

const (
	commandUseConstant                = "migrate"
	commandShortDescriptionConstant   = "Run database migrations as Argo workflows"
	commandLongDescriptionConstant    = "migrate resolves migration jobs from inputs or the project manifest, submits each one as an Argo workflow, waits for every workflow and fails when any of them did not succeed."
	githubActionsVariableConstant     = "GITHUB_ACTIONS"
	githubActionsEnabledValueConstant = "true"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandExecutor runs the workflow engine and git.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// FailureError reports a run that ended with a failure signal.
type FailureError struct {
	Message string
}

// Error returns the reported failure message.
func (failureError FailureError) Error() string {
	return failureError.Message
}

// CommandBuilder assembles the migrate Cobra command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	Executor                     CommandExecutor
	EnvironmentLookup            inputs.EnvironmentLookup
}

// Build constructs the migrate command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
	}

	runFlags := flags.BindRunFlags(command, flags.RunFlagValues{})
	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, runFlags)
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, runFlags *flags.RunFlagValues) error {
	configuration := builder.resolveConfiguration()

	assignments, assignmentsError := flags.ParseInputAssignments(runFlags.InputAssignments)
	if assignmentsError != nil {
		return assignmentsError
	}

	logger := ResolveLogger(builder.LoggerProvider)
	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	lookup := ResolveEnvironmentLookup(builder.EnvironmentLookup)
	inputSource := NewInputSource(assignments, lookup)

	inspector, inspectorError := gitrepo.NewInspector(executor)
	if inspectorError != nil {
		return inspectorError
	}
	contextProvider := runcontext.NewProvider(
		runcontext.EnvironmentLookup(lookup),
		inspector,
		logger,
		runcontext.WithWorkspaceOverride(runFlags.Workspace),
	)

	manifestLoader, loaderError := manifest.NewLoader(manifest.OSFileReader{}, configuration.ManifestQuery)
	if loaderError != nil {
		return loaderError
	}
	resolver, resolverError := migrations.NewResolver(configuration.ResolverSettings(), manifestLoader, logger)
	if resolverError != nil {
		return resolverError
	}
	submitter, submitterError := argo.NewSubmitter(executor, configuration.SubmitterSettings(), logger)
	if submitterError != nil {
		return submitterError
	}

	orchestrator, orchestratorError := NewOrchestrator(Dependencies{
		InputSource:     inputSource,
		ContextProvider: contextProvider,
		JobResolver:     resolver,
		Submitter:       submitter,
		Reporter:        NewLogReporter(logger, AnnotationWriter(command, lookup)),
		Logger:          logger,
	}, configuration.MaxParallel)
	if orchestratorError != nil {
		return orchestratorError
	}

	outcome := orchestrator.Run(CommandContext(command))
	if !outcome.Succeeded {
		return FailureError{Message: outcome.FailureMessage}
	}
	return nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (CommandExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}

	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), humanReadableLogging)
}

// ResolveLogger returns the provided logger or a no-op logger.
func ResolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// ResolveEnvironmentLookup returns lookup, or the process environment when nil.
func ResolveEnvironmentLookup(lookup inputs.EnvironmentLookup) inputs.EnvironmentLookup {
	if lookup == nil {
		return os.LookupEnv
	}
	return lookup
}

// NewInputSource layers --input assignments over the GitHub Actions input variables.
func NewInputSource(assignments map[string]string, lookup inputs.EnvironmentLookup) inputs.Source {
	return inputs.NewChainSource(inputs.NewMapSource(assignments), inputs.NewActionsEnvironmentSource(lookup))
}

// AnnotationWriter returns the command output when running under GitHub Actions, nil otherwise.
func AnnotationWriter(command *cobra.Command, lookup inputs.EnvironmentLookup) io.Writer {
	value, _ := lookup(githubActionsVariableConstant)
	if !strings.EqualFold(strings.TrimSpace(value), githubActionsEnabledValueConstant) {
		return nil
	}
	return command.OutOrStdout()
}

// CommandContext returns the command context, or a background context when none is set.
func CommandContext(command *cobra.Command) context.Context {
	if command == nil || command.Context() == nil {
		return context.Background()
	}
	return command.Context()
}
