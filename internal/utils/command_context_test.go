package utils_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/argomigrate/internal/utils"
)

func TestCommandContextAccessorRoundTrip(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, missingPath := accessor.ConfigurationFilePath(context.Background())
	require.False(testInstance, missingPath)

	executionContext := accessor.WithConfigurationFilePath(nil, "/etc/argomigrate/config.yaml")
	executionContext = accessor.WithLogFormat(executionContext, utils.LogFormatConsole)

	configurationFilePath, pathAvailable := accessor.ConfigurationFilePath(executionContext)
	require.True(testInstance, pathAvailable)
	require.Equal(testInstance, "/etc/argomigrate/config.yaml", configurationFilePath)

	logFormat, formatAvailable := accessor.LogFormat(executionContext)
	require.True(testInstance, formatAvailable)
	require.Equal(testInstance, utils.LogFormatConsole, logFormat)
}
