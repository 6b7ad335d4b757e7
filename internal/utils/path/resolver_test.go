package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/argomigrate/internal/utils/path"
)

const (
	testHomeDirectoryConstant    = "/home/runner"
	testWorkingDirectoryConstant = "/workspace/svc-foobar"
)

func TestResolverExpandHome(testInstance *testing.T) {
	resolver := pathutils.NewResolverWithProviders(
		func() (string, error) { return testHomeDirectoryConstant, nil },
		func() (string, error) { return testWorkingDirectoryConstant, nil },
	)

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "bare_tilde", input: "~", expected: testHomeDirectoryConstant},
		{name: "tilde_prefix", input: "~/.config/argomigrate/config.yaml", expected: filepath.Join(testHomeDirectoryConstant, ".config/argomigrate/config.yaml")},
		{name: "other_user", input: "~bob/config.yaml", expected: "~bob/config.yaml"},
		{name: "absolute", input: "/etc/argomigrate.yaml", expected: "/etc/argomigrate.yaml"},
		{name: "empty", input: "", expected: ""},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, resolver.ExpandHome(testCase.input))
		})
	}
}

func TestResolverAbsolute(testInstance *testing.T) {
	resolver := pathutils.NewResolverWithProviders(
		func() (string, error) { return testHomeDirectoryConstant, nil },
		func() (string, error) { return testWorkingDirectoryConstant, nil },
	)

	emptyResolved, emptyError := resolver.Absolute("")
	require.NoError(testInstance, emptyError)
	require.Equal(testInstance, testWorkingDirectoryConstant, emptyResolved)

	relativeResolved, relativeError := resolver.Absolute("nested/dir")
	require.NoError(testInstance, relativeError)
	require.Equal(testInstance, filepath.Join(testWorkingDirectoryConstant, "nested/dir"), relativeResolved)

	absoluteResolved, absoluteError := resolver.Absolute("/tmp/../opt/work")
	require.NoError(testInstance, absoluteError)
	require.Equal(testInstance, "/opt/work", absoluteResolved)
}

func TestResolverPropagatesWorkingDirectoryFailure(testInstance *testing.T) {
	lookupFailure := errors.New("getwd failed")
	resolver := pathutils.NewResolverWithProviders(nil, func() (string, error) { return "", lookupFailure })

	_, resolveError := resolver.Absolute("relative")
	require.ErrorIs(testInstance, resolveError, lookupFailure)
}

func TestResolverIgnoresUnavailableHome(testInstance *testing.T) {
	resolver := pathutils.NewResolverWithProviders(func() (string, error) { return "", errors.New("no home") }, nil)
	require.Equal(testInstance, "~/config.yaml", resolver.ExpandHome("~/config.yaml"))
}
