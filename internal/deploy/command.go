package deploy

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/argomigrate/internal/execshell"
	"github.com/temirov/argomigrate/internal/gitrepo"
	"github.com/temirov/argomigrate/internal/inputs"
	"github.com/temirov/argomigrate/internal/orchestrator"
	"github.com/temirov/argomigrate/internal/runcontext"
	"github.com/temirov/argomigrate/internal/utils/flags"
)

const (
	commandUseConstant              = "deploy"
	commandShortDescriptionConstant = "Upgrade the repository Helm release"
	commandLongDescriptionConstant  = "deploy runs helm upgrade --wait for the invoking repository's chart in the requested environment, tagging the image with the current commit."
)

// CommandBuilder assembles the deploy Cobra command.
type CommandBuilder struct {
	LoggerProvider               orchestrator.LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	Executor                     orchestrator.CommandExecutor
	EnvironmentLookup            inputs.EnvironmentLookup
}

// Build constructs the deploy command.
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

	logger := orchestrator.ResolveLogger(builder.LoggerProvider)
	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	lookup := orchestrator.ResolveEnvironmentLookup(builder.EnvironmentLookup)
	inspector, inspectorError := gitrepo.NewInspector(executor)
	if inspectorError != nil {
		return inspectorError
	}

	deployer, deployerError := NewDeployer(Dependencies{
		InputSource: orchestrator.NewInputSource(assignments, lookup),
		ContextProvider: runcontext.NewProvider(
			runcontext.EnvironmentLookup(lookup),
			inspector,
			logger,
			runcontext.WithWorkspaceOverride(runFlags.Workspace),
		),
		Executor: executor,
		Reporter: orchestrator.NewLogReporter(logger, orchestrator.AnnotationWriter(command, lookup)),
		Logger:   logger,
	}, configuration.DeployerSettings())
	if deployerError != nil {
		return deployerError
	}

	outcome := deployer.Run(orchestrator.CommandContext(command))
	if !outcome.Succeeded {
		return orchestrator.FailureError{Message: outcome.FailureMessage}
	}
	return nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (orchestrator.CommandExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}

	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), humanReadableLogging)
}
