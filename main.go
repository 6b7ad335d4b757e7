package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/temirov/argomigrate/cmd/cli"
	"github.com/temirov/argomigrate/internal/orchestrator"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the argomigrate command-line application.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}

	// Run failures were already reported through the logger.
	var failureError orchestrator.FailureError
	if !errors.As(executionError, &failureError) {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	}
	os.Exit(1)
}
