package execshell

import (
	"sort"
	"strings"
)

const environmentAssignmentSeparatorConstant = "="

// Environment is an immutable set of variables layered over the process
// environment of every command it is attached to.
type Environment struct {
	variables map[string]string
}

// NewEnvironment copies the provided variables into an Environment. Blank keys are discarded.
func NewEnvironment(variables map[string]string) Environment {
	copied := make(map[string]string, len(variables))
	for variableName, variableValue := range variables {
		trimmedName := strings.TrimSpace(variableName)
		if len(trimmedName) == 0 {
			continue
		}
		copied[trimmedName] = variableValue
	}
	return Environment{variables: copied}
}

// Len reports the number of variables.
func (environment Environment) Len() int {
	return len(environment.variables)
}

// Lookup returns the value of a variable.
func (environment Environment) Lookup(variableName string) (string, bool) {
	variableValue, exists := environment.variables[variableName]
	return variableValue, exists
}

// Variables returns a copy of the variables.
func (environment Environment) Variables() map[string]string {
	copied := make(map[string]string, len(environment.variables))
	for variableName, variableValue := range environment.variables {
		copied[variableName] = variableValue
	}
	return copied
}

// Names returns the variable names in lexical order.
func (environment Environment) Names() []string {
	names := make([]string, 0, len(environment.variables))
	for variableName := range environment.variables {
		names = append(names, variableName)
	}
	sort.Strings(names)
	return names
}

// Assignments renders NAME=value pairs in lexical order of names.
func (environment Environment) Assignments() []string {
	names := environment.Names()
	assignments := make([]string, 0, len(names))
	for _, variableName := range names {
		assignments = append(assignments, variableName+environmentAssignmentSeparatorConstant+environment.variables[variableName])
	}
	return assignments
}
