package deploy

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/argomigrate/internal/argo"
	"github.com/temirov/argomigrate/internal/execshell"
	"github.com/temirov/argomigrate/internal/inputs"
	"github.com/temirov/argomigrate/internal/kubeconfig"
	"github.com/temirov/argomigrate/internal/orchestrator"
)

const (
	// DeploymentFailedMessage is reported when helm exits with a non-zero code.
	DeploymentFailedMessage = "Deployment failed."
	// DeploymentCompleteMessage is reported when helm succeeds.
	DeploymentCompleteMessage = "Deployment complete."

	kubeconfigBaseDirectoryConstant      = ".."
	deployStartedMessageTemplateConstant = "Deploying %s to %s."
	unexpectedPanicTemplateConstant      = "unexpected failure: %v"
	missingCollaboratorTemplateConstant  = "deployer %s not configured"
	collaboratorInputSourceConstant      = "input source"
	collaboratorContextConstant          = "context provider"
	collaboratorExecutorConstant         = "command executor"
	collaboratorReporterConstant         = "reporter"
	helmFailedLogMessageConstant         = "helm upgrade exited with non-zero code"
	logFieldReleaseConstant              = "release"
	logFieldChartConstant                = "chart"
	logFieldExitCodeConstant             = "exit_code"
	logFieldStandardErrorConstant        = "stderr"
)

// Settings configures the helm invocation.
type Settings struct {
	EngineBinary       string
	WorkflowsDirectory string
	Kubeconfig         kubeconfig.Layout
	Plan               PlanSettings
}

// DefaultSettings returns the standard deploy settings.
func DefaultSettings() Settings {
	return Settings{
		EngineBinary:       DefaultEngineBinary,
		WorkflowsDirectory: argo.DefaultWorkflowsDirectory,
		Kubeconfig:         kubeconfig.DefaultLayout(),
		Plan:               DefaultPlanSettings(),
	}
}

func (settings Settings) sanitize() Settings {
	defaults := DefaultSettings()
	sanitized := settings
	sanitized.EngineBinary = valueOrDefault(settings.EngineBinary, defaults.EngineBinary)
	sanitized.WorkflowsDirectory = valueOrDefault(settings.WorkflowsDirectory, defaults.WorkflowsDirectory)
	sanitized.Kubeconfig = settings.Kubeconfig.Sanitize()
	sanitized.Plan.RegistryHost = valueOrDefault(settings.Plan.RegistryHost, defaults.Plan.RegistryHost)
	sanitized.Plan.PullSecret = valueOrDefault(settings.Plan.PullSecret, defaults.Plan.PullSecret)
	sanitized.Plan.Timeout = valueOrDefault(settings.Plan.Timeout, defaults.Plan.Timeout)
	if sanitized.Plan.SetStringSlotCount < 0 {
		sanitized.Plan.SetStringSlotCount = defaults.Plan.SetStringSlotCount
	}
	return sanitized
}

// CommandExecutor runs helm.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// Dependencies bundles the collaborators of a Deployer.
type Dependencies struct {
	InputSource     inputs.Source
	ContextProvider orchestrator.ContextProvider
	Executor        CommandExecutor
	Reporter        orchestrator.Reporter
	Logger          *zap.Logger
}

// Deployer drives a single deploy run.
type Deployer struct {
	dependencies Dependencies
	settings     Settings
}

// NewDeployer validates dependencies and fills blank settings with defaults.
func NewDeployer(dependencies Dependencies, settings Settings) (*Deployer, error) {
	collaborators := []struct {
		name       string
		configured bool
	}{
		{name: collaboratorInputSourceConstant, configured: dependencies.InputSource != nil},
		{name: collaboratorContextConstant, configured: dependencies.ContextProvider != nil},
		{name: collaboratorExecutorConstant, configured: dependencies.Executor != nil},
		{name: collaboratorReporterConstant, configured: dependencies.Reporter != nil},
	}
	var missingErrors []error
	for _, collaborator := range collaborators {
		if !collaborator.configured {
			missingErrors = append(missingErrors, fmt.Errorf(missingCollaboratorTemplateConstant, collaborator.name))
		}
	}
	if len(missingErrors) > 0 {
		return nil, errors.Join(missingErrors...)
	}

	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	return &Deployer{dependencies: dependencies, settings: settings.sanitize()}, nil
}

// Run performs the upgrade and reports exactly one terminal signal.
func (deployer *Deployer) Run(executionContext context.Context) (outcome orchestrator.Outcome) {
	defer func() {
		if recovered := recover(); recovered != nil {
			outcome = deployer.fail(fmt.Sprintf(unexpectedPanicTemplateConstant, recovered))
		}
	}()

	runInputs, inputsError := orchestrator.ReadRunInputs(deployer.dependencies.InputSource)
	if inputsError != nil {
		return deployer.fail(inputsError.Error())
	}

	runContext, contextError := deployer.dependencies.ContextProvider.RunContext(executionContext)
	if contextError != nil {
		return deployer.fail(contextError.Error())
	}

	release, planError := PlanRelease(deployer.dependencies.InputSource, deployer.settings.Plan, runInputs.DeployEnvironment, runContext)
	if planError != nil {
		return deployer.fail(planError.Error())
	}
	deployer.dependencies.Reporter.Info(fmt.Sprintf(deployStartedMessageTemplateConstant, release.Name, release.Environment))

	kubeconfigPath := deployer.settings.Kubeconfig.Path(kubeconfigBaseDirectoryConstant, release.Environment)
	_, executionError := deployer.dependencies.Executor.Execute(executionContext, execshell.ShellCommand{
		Name: execshell.CommandName(deployer.settings.EngineBinary),
		Details: execshell.CommandDetails{
			Arguments:        release.Arguments(kubeconfigPath),
			WorkingDirectory: filepath.Join(runContext.Workspace, deployer.settings.WorkflowsDirectory),
			Environment:      runInputs.CommandEnvironment(),
		},
	})
	if executionError != nil {
		var failedError execshell.CommandFailedError
		if errors.As(executionError, &failedError) {
			deployer.dependencies.Logger.Warn(
				helmFailedLogMessageConstant,
				zap.String(logFieldReleaseConstant, release.Name),
				zap.String(logFieldChartConstant, release.ChartPath),
				zap.Int(logFieldExitCodeConstant, failedError.Result.ExitCode),
				zap.String(logFieldStandardErrorConstant, strings.TrimSpace(failedError.Result.StandardError)),
			)
			return deployer.fail(DeploymentFailedMessage)
		}
		return deployer.fail(executionError.Error())
	}

	deployer.dependencies.Reporter.Info(DeploymentCompleteMessage)
	return orchestrator.Outcome{Succeeded: true}
}

func (deployer *Deployer) fail(message string) orchestrator.Outcome {
	deployer.dependencies.Reporter.SetFailed(message)
	return orchestrator.Outcome{Succeeded: false, FailureMessage: message}
}

func valueOrDefault(value string, defaultValue string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}
