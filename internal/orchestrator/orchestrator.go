package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/argomigrate/internal/execshell"
	"github.com/temirov/argomigrate/internal/inputs"
	"github.com/temirov/argomigrate/internal/migrations"
	"github.com/temirov/argomigrate/internal/runcontext"
)

const (
	// MigrationsFailedMessage is reported when at least one job did not succeed.
	MigrationsFailedMessage = "One or more migrations failed to complete successfully."
	// MigrationsCompleteMessage is reported when every job succeeded.
	MigrationsCompleteMessage = "Migrations complete."

	runStartedMessageConstant            = "Running migrations in environment."
	unexpectedPanicTemplateConstant      = "unexpected failure: %v"
	missingCollaboratorTemplateConstant  = "orchestrator %s not configured"
	collaboratorInputSourceConstant      = "input source"
	collaboratorContextConstant          = "context provider"
	collaboratorResolverConstant         = "job resolver"
	collaboratorSubmitterConstant        = "workflow submitter"
	collaboratorReporterConstant         = "reporter"
	jobsResolvedLogMessageConstant       = "migrations resolved"
	jobErroredLogMessageConstant         = "migration errored"
	jobFinishedLogMessageConstant        = "migration finished"
	preconditionFailedLogMessageConstant = "run precondition failed"
	logFieldJobCountConstant             = "job_count"
	logFieldJobConstant                  = "job"
	logFieldSucceededConstant            = "succeeded"
	logFieldFieldNameConstant            = "field"
	logFieldEnvironmentConstant          = "environment"
	logFieldMaxParallelConstant          = "max_parallel"
	unboundedParallelismConstant         = 0
)

// ContextProvider resolves the commit and repository the run operates on.
type ContextProvider interface {
	RunContext(executionContext context.Context) (runcontext.RunContext, error)
}

// JobResolver produces the ordered jobs for a run.
type JobResolver interface {
	Resolve(executionContext context.Context, source inputs.Source, request migrations.Request) ([]migrations.Job, error)
}

// WorkflowSubmitter runs one job to completion and reports whether it succeeded.
type WorkflowSubmitter interface {
	Submit(executionContext context.Context, job migrations.Job, environment execshell.Environment) (bool, error)
}

// Outcome is the terminal result of a run.
type Outcome struct {
	Succeeded      bool
	FailureMessage string
}

// Dependencies bundles the collaborators of an Orchestrator.
type Dependencies struct {
	InputSource     inputs.Source
	ContextProvider ContextProvider
	JobResolver     JobResolver
	Submitter       WorkflowSubmitter
	Reporter        Reporter
	Logger          *zap.Logger
}

// Orchestrator drives a single migrate run.
type Orchestrator struct {
	dependencies Dependencies
	maxParallel  int
}

// NewOrchestrator validates dependencies. maxParallel bounds concurrent submissions; zero or
// negative means every job starts at once.
func NewOrchestrator(dependencies Dependencies, maxParallel int) (*Orchestrator, error) {
	collaborators := []struct {
		name       string
		configured bool
	}{
		{name: collaboratorInputSourceConstant, configured: dependencies.InputSource != nil},
		{name: collaboratorContextConstant, configured: dependencies.ContextProvider != nil},
		{name: collaboratorResolverConstant, configured: dependencies.JobResolver != nil},
		{name: collaboratorSubmitterConstant, configured: dependencies.Submitter != nil},
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
	if maxParallel < unboundedParallelismConstant {
		maxParallel = unboundedParallelismConstant
	}
	return &Orchestrator{dependencies: dependencies, maxParallel: maxParallel}, nil
}

// Run executes the migrate flow and reports exactly one terminal signal. It never panics.
func (orchestrator *Orchestrator) Run(executionContext context.Context) (outcome Outcome) {
	defer func() {
		if recovered := recover(); recovered != nil {
			outcome = orchestrator.fail(fmt.Sprintf(unexpectedPanicTemplateConstant, recovered))
		}
	}()

	reporter := orchestrator.dependencies.Reporter
	logger := orchestrator.dependencies.Logger
	reporter.Info(runStartedMessageConstant)

	runInputs, inputsError := ReadRunInputs(orchestrator.dependencies.InputSource)
	if inputsError != nil {
		logger.Warn(preconditionFailedLogMessageConstant, zap.String(logFieldFieldNameConstant, preconditionFieldName(inputsError)))
		return orchestrator.fail(inputsError.Error())
	}

	runContext, contextError := orchestrator.dependencies.ContextProvider.RunContext(executionContext)
	if contextError != nil {
		return orchestrator.fail(contextError.Error())
	}

	jobs, resolveError := orchestrator.dependencies.JobResolver.Resolve(executionContext, orchestrator.dependencies.InputSource, migrations.Request{
		DeployEnvironment: runInputs.DeployEnvironment,
		RunContext:        runContext,
	})
	if resolveError != nil {
		return orchestrator.fail(resolveError.Error())
	}
	logger.Info(
		jobsResolvedLogMessageConstant,
		zap.Int(logFieldJobCountConstant, len(jobs)),
		zap.String(logFieldEnvironmentConstant, runInputs.DeployEnvironment),
		zap.Int(logFieldMaxParallelConstant, orchestrator.maxParallel),
	)

	results, submissionError := orchestrator.submitAll(executionContext, jobs, runInputs.CommandEnvironment())
	if submissionError != nil {
		return orchestrator.fail(submissionError.Error())
	}
	for _, succeeded := range results {
		if !succeeded {
			return orchestrator.fail(MigrationsFailedMessage)
		}
	}

	reporter.Info(MigrationsCompleteMessage)
	return Outcome{Succeeded: true}
}

// submitAll runs every job and waits for all of them. A failing job never cancels its siblings;
// the first error in job order is returned after all jobs settle.
func (orchestrator *Orchestrator) submitAll(executionContext context.Context, jobs []migrations.Job, environment execshell.Environment) ([]bool, error) {
	results := make([]bool, len(jobs))
	jobErrors := make([]error, len(jobs))

	var group errgroup.Group
	if orchestrator.maxParallel > unboundedParallelismConstant {
		group.SetLimit(orchestrator.maxParallel)
	}

	for jobIndex := range jobs {
		job := jobs[jobIndex]
		group.Go(func() error {
			succeeded, submitError := orchestrator.submitOne(executionContext, job, environment)
			results[jobIndex] = succeeded
			jobErrors[jobIndex] = submitError
			return nil
		})
	}
	_ = group.Wait()

	for _, jobError := range jobErrors {
		if jobError != nil {
			return results, jobError
		}
	}
	return results, nil
}

func (orchestrator *Orchestrator) submitOne(executionContext context.Context, job migrations.Job, environment execshell.Environment) (succeeded bool, submitError error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			succeeded = false
			submitError = fmt.Errorf(unexpectedPanicTemplateConstant, recovered)
		}
	}()

	succeeded, submitError = orchestrator.dependencies.Submitter.Submit(executionContext, job, environment)
	if submitError != nil {
		orchestrator.dependencies.Logger.Error(jobErroredLogMessageConstant, zap.String(logFieldJobConstant, job.Name), zap.Error(submitError))
		return false, submitError
	}
	orchestrator.dependencies.Logger.Info(jobFinishedLogMessageConstant, zap.String(logFieldJobConstant, job.Name), zap.Bool(logFieldSucceededConstant, succeeded))
	return succeeded, nil
}

func preconditionFieldName(preconditionError error) string {
	var configurationError inputs.ConfigurationError
	if errors.As(preconditionError, &configurationError) {
		return configurationError.FieldName
	}
	var requiredError inputs.RequiredInputError
	if errors.As(preconditionError, &requiredError) {
		return requiredError.Name
	}
	return ""
}

func (orchestrator *Orchestrator) fail(message string) Outcome {
	orchestrator.dependencies.Reporter.SetFailed(message)
	return Outcome{Succeeded: false, FailureMessage: message}
}
