package orchestrator_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/argomigrate/internal/orchestrator"
)

func TestLogReporter(testInstance *testing.T) {
	testCases := []struct {
		name               string
		annotationsEnabled bool
		failureMessage     string
		expectedAnnotation string
	}{
		{
			name:               "annotations_disabled",
			failureMessage:     "Deployment failed.",
			expectedAnnotation: "",
		},
		{
			name:               "plain_annotation",
			annotationsEnabled: true,
			failureMessage:     "Deployment failed.",
			expectedAnnotation: "::error::Deployment failed.\n",
		},
		{
			name:               "escaped_annotation",
			annotationsEnabled: true,
			failureMessage:     "100% broken\r\nsecond line",
			expectedAnnotation: "::error::100%25 broken%0D%0Asecond line\n",
		},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			core, recorded := observer.New(zapcore.InfoLevel)
			annotationBuffer := &bytes.Buffer{}
			var reporter *orchestrator.LogReporter
			if testCase.annotationsEnabled {
				reporter = orchestrator.NewLogReporter(zap.New(core), annotationBuffer)
			} else {
				reporter = orchestrator.NewLogReporter(zap.New(core), nil)
			}

			reporter.Info("Migrations complete.")
			reporter.SetFailed(testCase.failureMessage)

			entries := recorded.All()
			require.Len(testInstance, entries, 2)
			require.Equal(testInstance, zapcore.InfoLevel, entries[0].Level)
			require.Equal(testInstance, "Migrations complete.", entries[0].Message)
			require.Equal(testInstance, zapcore.ErrorLevel, entries[1].Level)
			require.Equal(testInstance, testCase.failureMessage, entries[1].Message)
			require.Equal(testInstance, testCase.expectedAnnotation, annotationBuffer.String())
		})
	}
}
