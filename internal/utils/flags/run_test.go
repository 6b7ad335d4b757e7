package flags_test

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/temirov/argomigrate/internal/utils/flags"
)

func TestBindRunFlagsCapturesRepeatedInputs(testInstance *testing.T) {
	command := &cobra.Command{Use: "migrate", RunE: func(*cobra.Command, []string) error { return nil }}
	values := flags.BindRunFlags(command, flags.RunFlagValues{})

	command.SetArgs([]string{"--input", "environment=kauai", "--input", "mig_image=svc,with,commas", "--workspace", "/tmp/workspace"})
	require.NoError(testInstance, command.Execute())

	require.Equal(testInstance, []string{"environment=kauai", "mig_image=svc,with,commas"}, values.InputAssignments)
	require.Equal(testInstance, "/tmp/workspace", values.Workspace)
}

func TestParseInputAssignments(testInstance *testing.T) {
	testCases := []struct {
		name        string
		assignments []string
		expected    map[string]string
		expectError bool
	}{
		{
			name:        "valid",
			assignments: []string{"environment=kauai", " setString1 =a=b", "timeout="},
			expected:    map[string]string{"environment": "kauai", "setString1": "a=b", "timeout": ""},
		},
		{
			name:        "missing_separator",
			assignments: []string{"environment"},
			expectError: true,
		},
		{
			name:        "empty_name",
			assignments: []string{"=value"},
			expectError: true,
		},
		{
			name:        "duplicate",
			assignments: []string{"environment=a", "environment=b"},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			parsed, parseError := flags.ParseInputAssignments(testCase.assignments)
			if testCase.expectError {
				var assignmentError flags.InputAssignmentError
				require.ErrorAs(testInstance, parseError, &assignmentError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expected, parsed)
		})
	}
}
