package argo_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/argomigrate/internal/argo"
	"github.com/temirov/argomigrate/internal/execshell"
	"github.com/temirov/argomigrate/internal/migrations"
)

const (
	testWorkspaceConstant      = "/repo"
	testKubeconfigPathConstant = "/repo/kilauea/kubefiles/kauai/kubectl_configs/kauai-kube-config-admins.yml"
	testWorkflowPathConstant   = "/repo/peachjar-aloha/workflows/migrations/migrate.yml"
	testSubmitOutputConstant   = `{"metadata":{"name":"migrate-x7k2p"},"status":{"phase":"Running"}}`
	testHandleConstant         = "migrate-x7k2p"
)

type scriptedResponse struct {
	result execshell.ExecutionResult
	err    error
}

// scriptedRunner answers by argo subcommand (the argument following the kubeconfig path).
type scriptedRunner struct {
	mutex     sync.Mutex
	responses map[string]scriptedResponse
	commands  []execshell.ShellCommand
}

func (runner *scriptedRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.mutex.Lock()
	defer runner.mutex.Unlock()
	runner.commands = append(runner.commands, command)
	response := runner.responses[command.Details.Arguments[2]]
	return response.result, response.err
}

func testJob() migrations.Job {
	return migrations.Job{
		Name:              "svc-foobar-migrations",
		DeployEnvironment: "kauai",
		Parameters: migrations.NewParameters(
			migrations.Parameter{Name: "image", Value: "svc-foobar-migrations:git-fa1e24f"},
			migrations.Parameter{Name: "dbsecret", Value: "svc-foobar-db"},
		),
		WorkflowTemplatePath: "workflows/migrations/migrate.yml",
		WorkingDirectory:     testWorkspaceConstant,
	}
}

func newSubmitter(testInstance *testing.T, runner *scriptedRunner, logger *zap.Logger, settings argo.Settings) *argo.Submitter {
	testInstance.Helper()
	executor, executorError := execshell.NewShellExecutor(zap.NewNop(), runner, false)
	require.NoError(testInstance, executorError)
	submitter, submitterError := argo.NewSubmitter(executor, settings, logger)
	require.NoError(testInstance, submitterError)
	return submitter
}

func TestSubmitterProtocol(testInstance *testing.T) {
	testCases := []struct {
		name           string
		responses      map[string]scriptedResponse
		expectedResult bool
		expectedCalls  int
		assertError    func(testInstance *testing.T, submitError error)
	}{
		{
			name: "succeeded",
			responses: map[string]scriptedResponse{
				"submit": {result: execshell.ExecutionResult{StandardOutput: testSubmitOutputConstant}},
				"get":    {result: execshell.ExecutionResult{StandardOutput: `{"status":{"phase":"Succeeded"}}`}},
			},
			expectedResult: true,
			expectedCalls:  2,
		},
		{
			name: "failed_phase",
			responses: map[string]scriptedResponse{
				"submit": {result: execshell.ExecutionResult{StandardOutput: testSubmitOutputConstant}},
				"get":    {result: execshell.ExecutionResult{StandardOutput: `{"status":{"phase":"Failed"}}`}},
			},
			expectedCalls: 2,
		},
		{
			name: "submit_exit_code_skips_status",
			responses: map[string]scriptedResponse{
				"submit": {result: execshell.ExecutionResult{ExitCode: 1, StandardError: "template not found"}},
			},
			expectedCalls: 1,
		},
		{
			name: "status_exit_code",
			responses: map[string]scriptedResponse{
				"submit": {result: execshell.ExecutionResult{StandardOutput: testSubmitOutputConstant}},
				"get":    {result: execshell.ExecutionResult{ExitCode: 2, StandardError: "workflow not found"}},
			},
			expectedCalls: 2,
		},
		{
			name: "missing_phase",
			responses: map[string]scriptedResponse{
				"submit": {result: execshell.ExecutionResult{StandardOutput: testSubmitOutputConstant}},
				"get":    {result: execshell.ExecutionResult{StandardOutput: `{"status":{}}`}},
			},
			expectedCalls: 2,
		},
		{
			name: "unparseable_status",
			responses: map[string]scriptedResponse{
				"submit": {result: execshell.ExecutionResult{StandardOutput: testSubmitOutputConstant}},
				"get":    {result: execshell.ExecutionResult{StandardOutput: "Name: migrate-x7k2p"}},
			},
			expectedCalls: 2,
		},
		{
			name: "submit_without_handle",
			responses: map[string]scriptedResponse{
				"submit": {result: execshell.ExecutionResult{StandardOutput: `{"metadata":{}}`}},
			},
			expectedCalls: 1,
			assertError: func(testInstance *testing.T, submitError error) {
				var protocolError argo.SubmissionProtocolError
				require.ErrorAs(testInstance, submitError, &protocolError)
				require.Equal(testInstance, "svc-foobar-migrations", protocolError.Workflow)
			},
		},
		{
			name: "submit_with_garbage",
			responses: map[string]scriptedResponse{
				"submit": {result: execshell.ExecutionResult{StandardOutput: "not json"}},
			},
			expectedCalls: 1,
			assertError: func(testInstance *testing.T, submitError error) {
				require.ErrorAs(testInstance, submitError, &argo.SubmissionProtocolError{})
			},
		},
		{
			name: "binary_missing",
			responses: map[string]scriptedResponse{
				"submit": {err: errors.New("executable file not found in $PATH")},
			},
			expectedCalls: 1,
			assertError: func(testInstance *testing.T, submitError error) {
				require.ErrorAs(testInstance, submitError, &execshell.CommandExecutionError{})
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			runner := &scriptedRunner{responses: testCase.responses}
			submitter := newSubmitter(testInstance, runner, zap.NewNop(), argo.DefaultSettings())

			succeeded, submitError := submitter.Submit(context.Background(), testJob(), execshell.NewEnvironment(nil))
			if testCase.assertError != nil {
				testCase.assertError(testInstance, submitError)
			} else {
				require.NoError(testInstance, submitError)
			}
			require.Equal(testInstance, testCase.expectedResult, succeeded)
			require.Len(testInstance, runner.commands, testCase.expectedCalls)
		})
	}
}

func TestSubmitterCommandShapes(testInstance *testing.T) {
	runner := &scriptedRunner{responses: map[string]scriptedResponse{
		"submit": {result: execshell.ExecutionResult{StandardOutput: testSubmitOutputConstant}},
		"get":    {result: execshell.ExecutionResult{StandardOutput: `{"status":{"phase":"Succeeded"}}`}},
	}}
	submitter := newSubmitter(testInstance, runner, zap.NewNop(), argo.Settings{})

	environment := execshell.NewEnvironment(map[string]string{"AWS_ACCESS_KEY_ID": "abcd1234", "AWS_SECRET_ACCESS_KEY": "secret"})
	succeeded, submitError := submitter.Submit(context.Background(), testJob(), environment)
	require.NoError(testInstance, submitError)
	require.True(testInstance, succeeded)

	require.Len(testInstance, runner.commands, 2)
	submitCommand := runner.commands[0]
	require.Equal(testInstance, execshell.CommandArgo, submitCommand.Name)
	require.Equal(testInstance, []string{
		"--kubeconfig", testKubeconfigPathConstant,
		"submit", testWorkflowPathConstant,
		"-p", "image=svc-foobar-migrations:git-fa1e24f",
		"-p", "dbsecret=svc-foobar-db",
		"--wait", "-o=json",
	}, submitCommand.Details.Arguments)
	require.Equal(testInstance, testWorkspaceConstant, submitCommand.Details.WorkingDirectory)
	require.Equal(testInstance, environment.Variables(), submitCommand.Details.Environment.Variables())

	statusCommand := runner.commands[1]
	require.Equal(testInstance, []string{"--kubeconfig", testKubeconfigPathConstant, "get", testHandleConstant, "-o=json"}, statusCommand.Details.Arguments)
	require.Equal(testInstance, environment.Variables(), statusCommand.Details.Environment.Variables())
}

func TestSubmitterCustomQueriesAndBinary(testInstance *testing.T) {
	runner := &scriptedRunner{responses: map[string]scriptedResponse{
		"submit": {result: execshell.ExecutionResult{StandardOutput: testSubmitOutputConstant}},
		"get":    {result: execshell.ExecutionResult{StandardOutput: `{"spec":{"status":{"phase":"Succeeded"}}}`}},
	}}
	settings := argo.DefaultSettings()
	settings.EngineBinary = "/usr/local/bin/argo"
	settings.StatusQuery = ".spec.status.phase"
	submitter := newSubmitter(testInstance, runner, zap.NewNop(), settings)

	succeeded, submitError := submitter.Submit(context.Background(), testJob(), execshell.NewEnvironment(nil))
	require.NoError(testInstance, submitError)
	require.True(testInstance, succeeded)
	require.Equal(testInstance, execshell.CommandName("/usr/local/bin/argo"), runner.commands[0].Name)
}

func TestSubmitterLogsStandardErrorOnFailure(testInstance *testing.T) {
	observerCore, observerLogs := observer.New(zap.DebugLevel)
	runner := &scriptedRunner{responses: map[string]scriptedResponse{
		"submit": {result: execshell.ExecutionResult{ExitCode: 1, StandardError: "template not found\n"}},
	}}
	submitter := newSubmitter(testInstance, runner, zap.New(observerCore), argo.DefaultSettings())

	succeeded, submitError := submitter.Submit(context.Background(), testJob(), execshell.NewEnvironment(nil))
	require.NoError(testInstance, submitError)
	require.False(testInstance, succeeded)

	failureLogs := observerLogs.FilterMessage("workflow submission failed").All()
	require.Len(testInstance, failureLogs, 1)
	require.Equal(testInstance, "template not found", failureLogs[0].ContextMap()["stderr"])
	require.Equal(testInstance, "svc-foobar-migrations", failureLogs[0].ContextMap()["job"])
}

func TestNewSubmitterValidation(testInstance *testing.T) {
	_, executorError := argo.NewSubmitter(nil, argo.DefaultSettings(), nil)
	require.ErrorIs(testInstance, executorError, argo.ErrCommandExecutorNotConfigured)

	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), &scriptedRunner{}, false)
	require.NoError(testInstance, creationError)
	settings := argo.DefaultSettings()
	settings.HandleQuery = ".metadata["
	_, queryError := argo.NewSubmitter(executor, settings, nil)
	require.Error(testInstance, queryError)
}

func TestPhaseSucceeded(testInstance *testing.T) {
	require.True(testInstance, argo.PhaseSucceeded.Succeeded())
	for _, phase := range []argo.Phase{argo.PhaseFailed, argo.PhaseError, argo.PhaseRunning, argo.PhasePending, argo.Phase("")} {
		require.False(testInstance, phase.Succeeded())
	}
}
