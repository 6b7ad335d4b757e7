package orchestrator

import (
	"github.com/temirov/argomigrate/internal/execshell"
	"github.com/temirov/argomigrate/internal/inputs"
)

const (
	// InputAccessKeyID names the AWS access key id input.
	InputAccessKeyID = "awsAccessKeyId"
	// InputSecretAccessKey names the AWS secret access key input.
	InputSecretAccessKey = "awsSecretAccessKey"
	// InputEnvironment names the deploy environment input.
	InputEnvironment = "environment"

	// CredentialsInvalidMessage is reported when either AWS credential is missing.
	CredentialsInvalidMessage = "AWS credentials are invalid."
	// EnvironmentInvalidMessage is reported when the deploy environment is missing.
	EnvironmentInvalidMessage = "Environment not specified or invalid."

	accessKeyIDVariableConstant     = "AWS_ACCESS_KEY_ID"
	secretAccessKeyVariableConstant = "AWS_SECRET_ACCESS_KEY"
)

var requiredInput = inputs.Options{Required: true}

// RunInputs holds the inputs every run requires before any external command starts.
type RunInputs struct {
	AccessKeyID       string
	SecretAccessKey   string
	DeployEnvironment string
}

// ReadRunInputs reads credentials then the deploy environment. Errors from the source are
// returned as is; a blank value the source let through is a ConfigurationError naming the field.
func ReadRunInputs(source inputs.Source) (RunInputs, error) {
	accessKeyID, accessKeyError := source.GetInput(InputAccessKeyID, requiredInput)
	if accessKeyError != nil {
		return RunInputs{}, accessKeyError
	}
	secretAccessKey, secretError := source.GetInput(InputSecretAccessKey, requiredInput)
	if secretError != nil {
		return RunInputs{}, secretError
	}

	switch {
	case len(accessKeyID) == 0:
		return RunInputs{}, inputs.ConfigurationError{FieldName: InputAccessKeyID, Message: CredentialsInvalidMessage}
	case len(secretAccessKey) == 0:
		return RunInputs{}, inputs.ConfigurationError{FieldName: InputSecretAccessKey, Message: CredentialsInvalidMessage}
	}

	deployEnvironment, environmentError := source.GetInput(InputEnvironment, requiredInput)
	if environmentError != nil {
		return RunInputs{}, environmentError
	}
	if len(deployEnvironment) == 0 {
		return RunInputs{}, inputs.ConfigurationError{FieldName: InputEnvironment, Message: EnvironmentInvalidMessage}
	}

	return RunInputs{AccessKeyID: accessKeyID, SecretAccessKey: secretAccessKey, DeployEnvironment: deployEnvironment}, nil
}

// CommandEnvironment returns the credential overlay handed to every subprocess of the run.
func (runInputs RunInputs) CommandEnvironment() execshell.Environment {
	return execshell.NewEnvironment(map[string]string{
		accessKeyIDVariableConstant:     runInputs.AccessKeyID,
		secretAccessKeyVariableConstant: runInputs.SecretAccessKey,
	})
}
