package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/temirov/manage_repos/cmd/cli"
	"github.com/temirov/manage_repos/internal/batch"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the manage-repos command-line application.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}
	// Usage errors are printed with the help text on standard output.
	var usageError batch.UsageError
	if !errors.As(executionError, &usageError) {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	}
	os.Exit(1)
}
