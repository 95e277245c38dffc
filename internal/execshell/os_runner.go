package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
)

const (
	environmentAssignmentTemplateConstant = "%s=%s"
)

// OSCommandRunner executes commands using the operating system facilities.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run executes the supplied command, blocking until it exits.
// A non-zero exit code is reported through the result; only launch failures are returned as errors.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := exec.CommandContext(executionContext, string(command.Name), append([]string{}, command.Details.Arguments...)...)
	executable.Dir = command.Details.WorkingDirectory
	executable.Env = mergeEnvironment(os.Environ(), command.Details.EnvironmentVariables)

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer
	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	exitCode := 0
	if runError := executable.Run(); runError != nil {
		var exitError *exec.ExitError
		if !errors.As(runError, &exitError) {
			return ExecutionResult{}, runError
		}
		exitCode = exitError.ExitCode()
	}

	return ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
		ExitCode:       exitCode,
	}, nil
}

// mergeEnvironment appends overrides in key order so later entries win for duplicate keys.
func mergeEnvironment(baseEnvironment []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return nil
	}
	overrideKeys := make([]string, 0, len(overrides))
	for overrideKey := range overrides {
		overrideKeys = append(overrideKeys, overrideKey)
	}
	sort.Strings(overrideKeys)

	mergedEnvironment := append([]string{}, baseEnvironment...)
	for _, overrideKey := range overrideKeys {
		mergedEnvironment = append(mergedEnvironment, fmt.Sprintf(environmentAssignmentTemplateConstant, overrideKey, overrides[overrideKey]))
	}
	return mergedEnvironment
}
