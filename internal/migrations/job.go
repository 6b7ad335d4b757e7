package migrations

import (
	"errors"
	"fmt"
)

const (
	validationErrorTemplateConstant      = "Validation Error: %s %s"
	noMigrationsSpecifiedMessageConstant = "no migrations specified"
	parameterAssignmentTemplateConstant  = "%s=%s"
)

// ErrNoMigrationsSpecified indicates resolution completed without producing any job.
var ErrNoMigrationsSpecified = errors.New(noMigrationsSpecifiedMessageConstant)

// ValidationError reports a manifest entry that failed structural validation.
type ValidationError struct {
	FieldName string
	Message   string
}

// Error describes the invalid field, e.g. "Validation Error: migrations[1].secret is required".
func (validationError ValidationError) Error() string {
	return fmt.Sprintf(validationErrorTemplateConstant, validationError.FieldName, validationError.Message)
}

// ManifestError reports a manifest that could not be read or parsed.
type ManifestError struct {
	Path  string
	Cause error
}

// Error surfaces the underlying failure message.
func (manifestError ManifestError) Error() string {
	if manifestError.Cause == nil {
		return manifestError.Path
	}
	return manifestError.Cause.Error()
}

// Unwrap exposes the underlying cause.
func (manifestError ManifestError) Unwrap() error {
	return manifestError.Cause
}

// Parameter is a single workflow template parameter.
type Parameter struct {
	Name  string
	Value string
}

// Assignment renders the parameter as name=value.
func (parameter Parameter) Assignment() string {
	return fmt.Sprintf(parameterAssignmentTemplateConstant, parameter.Name, parameter.Value)
}

// Parameters is an insertion-ordered set of uniquely named parameters.
// The zero value is empty and ready to use; all methods return copies.
type Parameters struct {
	entries []Parameter
}

// NewParameters builds Parameters from pairs in order; later duplicates replace earlier values in place.
func NewParameters(parameters ...Parameter) Parameters {
	var result Parameters
	for _, parameter := range parameters {
		result = result.With(parameter.Name, parameter.Value)
	}
	return result
}

// With returns a copy with name set to value, keeping the original position of an existing name.
func (parameters Parameters) With(name string, value string) Parameters {
	updated := make([]Parameter, len(parameters.entries), len(parameters.entries)+1)
	copy(updated, parameters.entries)
	for index := range updated {
		if updated[index].Name == name {
			updated[index].Value = value
			return Parameters{entries: updated}
		}
	}
	return Parameters{entries: append(updated, Parameter{Name: name, Value: value})}
}

// Lookup returns the value of the named parameter.
func (parameters Parameters) Lookup(name string) (string, bool) {
	for _, parameter := range parameters.entries {
		if parameter.Name == name {
			return parameter.Value, true
		}
	}
	return "", false
}

// Len reports the number of parameters.
func (parameters Parameters) Len() int {
	return len(parameters.entries)
}

// All returns the parameters in insertion order.
func (parameters Parameters) All() []Parameter {
	return append([]Parameter(nil), parameters.entries...)
}

// Job is one migration to submit as a workflow.
type Job struct {
	Name                 string
	DeployEnvironment    string
	Parameters           Parameters
	WorkflowTemplatePath string
	WorkingDirectory     string
}
