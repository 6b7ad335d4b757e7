package execshell_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/argomigrate/internal/execshell"
)

func TestEnvironmentIsImmutable(testInstance *testing.T) {
	source := map[string]string{"AWS_ACCESS_KEY_ID": "abcd1234", " ": "ignored"}
	environment := execshell.NewEnvironment(source)

	source["AWS_ACCESS_KEY_ID"] = "changed"
	variables := environment.Variables()
	variables["AWS_ACCESS_KEY_ID"] = "mutated"

	value, exists := environment.Lookup("AWS_ACCESS_KEY_ID")
	require.True(testInstance, exists)
	require.Equal(testInstance, "abcd1234", value)
	require.Equal(testInstance, 1, environment.Len())
}

func TestEnvironmentAssignmentsAreSorted(testInstance *testing.T) {
	environment := execshell.NewEnvironment(map[string]string{
		"ZETA":  "last",
		"ALPHA": "first",
	})

	require.Equal(testInstance, []string{"ALPHA", "ZETA"}, environment.Names())
	require.Equal(testInstance, []string{"ALPHA=first", "ZETA=last"}, environment.Assignments())
}
