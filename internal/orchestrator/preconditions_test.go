package orchestrator_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/argomigrate/internal/inputs"
	"github.com/temirov/argomigrate/internal/orchestrator"
)

// permissiveSource returns stored values and never enforces Required.
type permissiveSource map[string]string

func (source permissiveSource) GetInput(name string, options inputs.Options) (string, error) {
	return source[name], nil
}

func TestReadRunInputs(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		source               inputs.Source
		expectedInputs       orchestrator.RunInputs
		expectedRequiredName string
		expectedFieldName    string
		expectedMessage      string
	}{
		{
			name: "all_present",
			source: inputs.NewMapSource(map[string]string{
				"awsAccessKeyId":     "AKIAEXAMPLE",
				"awsSecretAccessKey": "secret",
				"environment":        "kauai",
			}),
			expectedInputs: orchestrator.RunInputs{AccessKeyID: "AKIAEXAMPLE", SecretAccessKey: "secret", DeployEnvironment: "kauai"},
		},
		{
			name: "missing_access_key_reported_by_source",
			source: inputs.NewMapSource(map[string]string{
				"awsSecretAccessKey": "secret",
				"environment":        "kauai",
			}),
			expectedRequiredName: "awsAccessKeyId",
			expectedMessage:      "Input required and not supplied: awsAccessKeyId",
		},
		{
			name: "blank_secret_from_permissive_source",
			source: permissiveSource{
				"awsAccessKeyId": "AKIAEXAMPLE",
				"environment":    "kauai",
			},
			expectedFieldName: "awsSecretAccessKey",
			expectedMessage:   orchestrator.CredentialsInvalidMessage,
		},
		{
			name: "blank_environment_from_permissive_source",
			source: permissiveSource{
				"awsAccessKeyId":     "AKIAEXAMPLE",
				"awsSecretAccessKey": "secret",
			},
			expectedFieldName: "environment",
			expectedMessage:   orchestrator.EnvironmentInvalidMessage,
		},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			runInputs, readError := orchestrator.ReadRunInputs(testCase.source)
			if len(testCase.expectedMessage) == 0 {
				require.NoError(testInstance, readError)
				require.Equal(testInstance, testCase.expectedInputs, runInputs)
				return
			}

			require.EqualError(testInstance, readError, testCase.expectedMessage)
			if len(testCase.expectedRequiredName) > 0 {
				var requiredError inputs.RequiredInputError
				require.ErrorAs(testInstance, readError, &requiredError)
				require.Equal(testInstance, testCase.expectedRequiredName, requiredError.Name)
			}
			if len(testCase.expectedFieldName) > 0 {
				var configurationError inputs.ConfigurationError
				require.ErrorAs(testInstance, readError, &configurationError)
				require.Equal(testInstance, testCase.expectedFieldName, configurationError.FieldName)
			}
		})
	}
}

func TestRunInputsCommandEnvironment(testInstance *testing.T) {
	runInputs := orchestrator.RunInputs{AccessKeyID: "AKIAEXAMPLE", SecretAccessKey: "secret", DeployEnvironment: "kauai"}

	environment := runInputs.CommandEnvironment()

	require.Equal(testInstance, []string{"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY"}, environment.Names())
	accessKeyID, found := environment.Lookup("AWS_ACCESS_KEY_ID")
	require.True(testInstance, found)
	require.Equal(testInstance, "AKIAEXAMPLE", accessKeyID)
	secretAccessKey, found := environment.Lookup("AWS_SECRET_ACCESS_KEY")
	require.True(testInstance, found)
	require.Equal(testInstance, "secret", secretAccessKey)
}
