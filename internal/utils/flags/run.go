// Package flags binds the run flags shared by the migrate and deploy commands.
package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const (
	// InputFlagName names the repeatable input assignment flag.
	InputFlagName = "input"
	// InputFlagUsage describes the input assignment flag.
	InputFlagUsage = "Input assignment name=value (repeatable); overrides INPUT_<NAME> environment variables"
	// WorkspaceFlagName names the workspace directory flag.
	WorkspaceFlagName = "workspace"
	// WorkspaceFlagUsage describes the workspace directory flag.
	WorkspaceFlagUsage = "Checked-out repository directory; defaults to GITHUB_WORKSPACE or the working directory"

	inputAssignmentSeparatorConstant         = "="
	invalidInputAssignmentTemplateConstant   = "invalid input assignment %q: expected name=value"
	duplicateInputAssignmentTemplateConstant = "input %q assigned more than once"
	inputAssignmentFieldNameConstant         = "input"
	inputAssignmentMessageJoinConstant       = ": "
)

// RunFlagValues stores values captured from run flags.
type RunFlagValues struct {
	InputAssignments []string
	Workspace        string
}

// InputAssignmentError reports an --input value that cannot be parsed.
type InputAssignmentError struct {
	Assignment string
	Message    string
}

// Error describes the malformed assignment.
func (assignmentError InputAssignmentError) Error() string {
	return inputAssignmentFieldNameConstant + inputAssignmentMessageJoinConstant + assignmentError.Message
}

// BindRunFlags attaches the input and workspace flags to the command's local flag set.
func BindRunFlags(command *cobra.Command, defaults RunFlagValues) *RunFlagValues {
	values := RunFlagValues{
		InputAssignments: append([]string{}, defaults.InputAssignments...),
		Workspace:        defaults.Workspace,
	}
	if command == nil {
		return &values
	}

	flagSet := command.Flags()
	if flagSet.Lookup(InputFlagName) == nil {
		flagSet.StringArrayVar(&values.InputAssignments, InputFlagName, values.InputAssignments, InputFlagUsage)
	}
	if flagSet.Lookup(WorkspaceFlagName) == nil {
		flagSet.StringVar(&values.Workspace, WorkspaceFlagName, values.Workspace, WorkspaceFlagUsage)
	}
	return &values
}

// ParseInputAssignments converts name=value assignments into a map. Names are trimmed,
// values are kept verbatim, and an empty value is a valid assignment.
func ParseInputAssignments(assignments []string) (map[string]string, error) {
	parsed := make(map[string]string, len(assignments))
	for _, assignment := range assignments {
		name, value, found := strings.Cut(assignment, inputAssignmentSeparatorConstant)
		trimmedName := strings.TrimSpace(name)
		if !found || len(trimmedName) == 0 {
			return nil, InputAssignmentError{Assignment: assignment, Message: fmt.Sprintf(invalidInputAssignmentTemplateConstant, assignment)}
		}
		if _, exists := parsed[trimmedName]; exists {
			return nil, InputAssignmentError{Assignment: assignment, Message: fmt.Sprintf(duplicateInputAssignmentTemplateConstant, trimmedName)}
		}
		parsed[trimmedName] = value
	}
	return parsed, nil
}
