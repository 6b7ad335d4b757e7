package argo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/argomigrate/internal/execshell"
	"github.com/temirov/argomigrate/internal/kubeconfig"
	"github.com/temirov/argomigrate/internal/migrations"
)

const (
	// DefaultEngineBinary is the workflow engine CLI.
	DefaultEngineBinary = "argo"
	// DefaultWorkflowsDirectory holds workflow templates relative to the workspace.
	DefaultWorkflowsDirectory = "peachjar-aloha"
	// DefaultHandleQuery extracts the workflow name from submit output.
	DefaultHandleQuery = ".metadata.name"
	// DefaultStatusQuery extracts the workflow phase from get output.
	DefaultStatusQuery = ".status.phase"

	kubeconfigFlagConstant               = "--kubeconfig"
	submitSubcommandConstant             = "submit"
	getSubcommandConstant                = "get"
	parameterFlagConstant                = "-p"
	waitFlagConstant                     = "--wait"
	jsonOutputFlagConstant               = "-o=json"
	executorNotConfiguredMessageConstant = "argo command executor not configured"
	submissionProtocolTemplateConstant   = "workflow %s: unusable submit output: %v"
	submitFailedLogMessageConstant       = "workflow submission failed"
	workflowSubmittedLogMessageConstant  = "workflow submitted"
	statusFailedLogMessageConstant       = "workflow status unavailable"
	statusUnreadableLogMessageConstant   = "workflow status unreadable"
	workflowFinishedLogMessageConstant   = "workflow finished"
	logFieldJobConstant                  = "job"
	logFieldHandleConstant               = "workflow"
	logFieldPhaseConstant                = "phase"
	logFieldExitCodeConstant             = "exit_code"
	logFieldStandardErrorConstant        = "stderr"
	logFieldEnvironmentConstant          = "environment"
)

// ErrCommandExecutorNotConfigured indicates the submitter was constructed without an executor.
var ErrCommandExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// Handle is the engine-assigned workflow name.
type Handle string

// Phase is a workflow lifecycle phase reported by the engine.
type Phase string

// Known workflow phases. Only PhaseSucceeded counts as success.
const (
	PhaseSucceeded Phase = "Succeeded"
	PhaseFailed    Phase = "Failed"
	PhaseError     Phase = "Error"
	PhaseRunning   Phase = "Running"
	PhasePending   Phase = "Pending"
)

// Succeeded reports whether the phase is terminal success.
func (phase Phase) Succeeded() bool {
	return phase == PhaseSucceeded
}

// SubmissionProtocolError reports submit output that carried no usable workflow handle.
type SubmissionProtocolError struct {
	Workflow string
	Cause    error
}

// Error describes the protocol failure.
func (protocolError SubmissionProtocolError) Error() string {
	return fmt.Sprintf(submissionProtocolTemplateConstant, protocolError.Workflow, protocolError.Cause)
}

// Unwrap exposes the underlying cause.
func (protocolError SubmissionProtocolError) Unwrap() error {
	return protocolError.Cause
}

// CommandExecutor runs external commands.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// Settings configures engine invocation.
type Settings struct {
	EngineBinary       string
	WorkflowsDirectory string
	Kubeconfig         kubeconfig.Layout
	HandleQuery        string
	StatusQuery        string
}

// DefaultSettings returns the standard engine settings.
func DefaultSettings() Settings {
	return Settings{
		EngineBinary:       DefaultEngineBinary,
		WorkflowsDirectory: DefaultWorkflowsDirectory,
		Kubeconfig:         kubeconfig.DefaultLayout(),
		HandleQuery:        DefaultHandleQuery,
		StatusQuery:        DefaultStatusQuery,
	}
}

// Submitter runs the submit then status protocol for one job at a time. It holds no
// per-job state and is safe for concurrent use.
type Submitter struct {
	executor    CommandExecutor
	settings    Settings
	handleQuery stringQuery
	statusQuery stringQuery
	logger      *zap.Logger
}

// NewSubmitter validates settings, compiles the output queries and constructs a Submitter.
func NewSubmitter(executor CommandExecutor, settings Settings, logger *zap.Logger) (*Submitter, error) {
	if executor == nil {
		return nil, ErrCommandExecutorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sanitized := settings
	sanitized.EngineBinary = valueOrDefault(settings.EngineBinary, DefaultEngineBinary)
	sanitized.WorkflowsDirectory = valueOrDefault(settings.WorkflowsDirectory, DefaultWorkflowsDirectory)
	sanitized.HandleQuery = valueOrDefault(settings.HandleQuery, DefaultHandleQuery)
	sanitized.StatusQuery = valueOrDefault(settings.StatusQuery, DefaultStatusQuery)
	sanitized.Kubeconfig = settings.Kubeconfig.Sanitize()

	handleQuery, handleQueryError := compileStringQuery(sanitized.HandleQuery)
	if handleQueryError != nil {
		return nil, handleQueryError
	}
	statusQuery, statusQueryError := compileStringQuery(sanitized.StatusQuery)
	if statusQueryError != nil {
		return nil, statusQueryError
	}

	return &Submitter{
		executor:    executor,
		settings:    sanitized,
		handleQuery: handleQuery,
		statusQuery: statusQuery,
		logger:      logger,
	}, nil
}

// Submit runs job to completion and reports whether it reached PhaseSucceeded. Engine failures
// are logged and reported as false; a process that cannot be started and submit output without
// a workflow name are returned as errors.
func (submitter *Submitter) Submit(executionContext context.Context, job migrations.Job, environment execshell.Environment) (bool, error) {
	kubeconfigPath := submitter.settings.Kubeconfig.Path(job.WorkingDirectory, job.DeployEnvironment)
	jobLogger := submitter.logger.With(zap.String(logFieldJobConstant, job.Name), zap.String(logFieldEnvironmentConstant, job.DeployEnvironment))

	submitResult, submitError := submitter.run(executionContext, job, environment, submitter.submitArguments(kubeconfigPath, job))
	if submitError != nil {
		return false, submitter.classifyFailure(jobLogger, submitFailedLogMessageConstant, submitError)
	}

	handleText, handleError := submitter.handleQuery.evaluate(executionContext, submitResult.StandardOutput)
	if handleError != nil {
		return false, SubmissionProtocolError{Workflow: job.Name, Cause: handleError}
	}
	handle := Handle(handleText)
	jobLogger.Info(workflowSubmittedLogMessageConstant, zap.String(logFieldHandleConstant, string(handle)))

	statusResult, statusError := submitter.run(executionContext, job, environment, []string{
		kubeconfigFlagConstant, kubeconfigPath, getSubcommandConstant, string(handle), jsonOutputFlagConstant,
	})
	if statusError != nil {
		return false, submitter.classifyFailure(jobLogger.With(zap.String(logFieldHandleConstant, string(handle))), statusFailedLogMessageConstant, statusError)
	}

	phaseText, phaseError := submitter.statusQuery.evaluate(executionContext, statusResult.StandardOutput)
	if phaseError != nil {
		jobLogger.Warn(statusUnreadableLogMessageConstant, zap.String(logFieldHandleConstant, string(handle)), zap.Error(phaseError))
		return false, nil
	}

	phase := Phase(phaseText)
	jobLogger.Info(workflowFinishedLogMessageConstant, zap.String(logFieldHandleConstant, string(handle)), zap.String(logFieldPhaseConstant, string(phase)))
	return phase.Succeeded(), nil
}

func (submitter *Submitter) submitArguments(kubeconfigPath string, job migrations.Job) []string {
	workflowPath := filepath.Join(job.WorkingDirectory, submitter.settings.WorkflowsDirectory, job.WorkflowTemplatePath)

	parameters := job.Parameters.All()
	arguments := make([]string, 0, 6+2*len(parameters))
	arguments = append(arguments, kubeconfigFlagConstant, kubeconfigPath, submitSubcommandConstant, workflowPath)
	for _, parameter := range parameters {
		arguments = append(arguments, parameterFlagConstant, parameter.Assignment())
	}
	return append(arguments, waitFlagConstant, jsonOutputFlagConstant)
}

func (submitter *Submitter) run(executionContext context.Context, job migrations.Job, environment execshell.Environment, arguments []string) (execshell.ExecutionResult, error) {
	return submitter.executor.Execute(executionContext, execshell.ShellCommand{
		Name: execshell.CommandName(submitter.settings.EngineBinary),
		Details: execshell.CommandDetails{
			Arguments:        arguments,
			WorkingDirectory: job.WorkingDirectory,
			Environment:      environment,
		},
	})
}

// classifyFailure logs a non-zero exit and absorbs it; anything else is returned.
func (submitter *Submitter) classifyFailure(logger *zap.Logger, message string, failure error) error {
	var failedError execshell.CommandFailedError
	if errors.As(failure, &failedError) {
		logger.Warn(
			message,
			zap.Int(logFieldExitCodeConstant, failedError.Result.ExitCode),
			zap.String(logFieldStandardErrorConstant, strings.TrimSpace(failedError.Result.StandardError)),
		)
		return nil
	}
	return failure
}

func valueOrDefault(value string, defaultValue string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}
