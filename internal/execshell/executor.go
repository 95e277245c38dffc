package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	commandFailedErrorTemplateConstant        = "%s exited with code %d%s"
	commandExecutionErrorTemplateConstant     = "unable to run %s: %v"
	commandStartedLogMessageConstant          = "executing command"
	commandCompletedLogMessageConstant        = "command completed"
	commandFailedLogMessageConstant           = "command exited with non-zero status"
	commandExecutionFailedLogMessageConstant  = "command execution failed"
	logFieldCommandNameConstant               = "command_name"
	logFieldArgumentsConstant                 = "arguments"
	logFieldWorkingDirectoryConstant          = "working_directory"
	logFieldExitCodeConstant                  = "exit_code"
	logFieldStandardErrorConstant             = "standard_error"
	outputLineSeparatorConstant               = "\n"
	carriageReturnConstant                    = "\r"
)

// CommandName identifies a supported executable.
type CommandName string

// CommandGit is the only external tool this program drives.
const CommandGit CommandName = CommandName("git")

// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)

// CommandDetails describes a tool invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
	// AcceptedExitCodes lists non-zero exit codes that are reported as results instead of errors.
	AcceptedExitCodes []int
}

// ShellCommand combines a command name with invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of executing a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// OutputLines splits standard output into lines, dropping the trailing terminator.
func (result ExecutionResult) OutputLines() []string {
	return splitOutputLines(result.StandardOutput)
}

// CombinedLines returns the standard output lines followed by the standard error lines.
// Git reports ref updates, push destinations, and branch switches on standard error.
func (result ExecutionResult) CombinedLines() []string {
	return append(splitOutputLines(result.StandardOutput), splitOutputLines(result.StandardError)...)
}

// splitOutputLines keeps only the text after the last carriage return of each line so progress
// redraws collapse to their final state.
func splitOutputLines(output string) []string {
	normalizedOutput := strings.TrimSuffix(output, outputLineSeparatorConstant)
	if len(strings.TrimSpace(normalizedOutput)) == 0 {
		return []string{}
	}
	lines := strings.Split(normalizedOutput, outputLineSeparatorConstant)
	for index, line := range lines {
		line = strings.TrimSuffix(line, carriageReturnConstant)
		if carriageIndex := strings.LastIndex(line, carriageReturnConstant); carriageIndex >= 0 {
			line = line[carriageIndex+len(carriageReturnConstant):]
		}
		lines[index] = line
	}
	return lines
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a command that started but exited with a non-zero status.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command.
func (failedError CommandFailedError) Error() string {
	standardErrorSuffix := ""
	trimmedStandardError := strings.TrimSpace(failedError.Result.StandardError)
	if len(trimmedStandardError) > 0 {
		standardErrorSuffix = ": " + trimmedStandardError
	}
	return fmt.Sprintf(commandFailedErrorTemplateConstant, describeCommand(failedError.Command), failedError.Result.ExitCode, standardErrorSuffix)
}

// CommandExecutionError reports a command that could not be started.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the launch failure.
func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, describeCommand(executionError.Command), executionError.Cause)
}

// Unwrap exposes the underlying launch failure.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// ShellExecutor runs commands through a CommandRunner and reports their lifecycle.
type ShellExecutor struct {
	logger        *zap.Logger
	runner        CommandRunner
	eventObserver CommandEventObserver
}

// NewShellExecutor constructs an executor that reports command lifecycle events as structured logs.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner) (*ShellExecutor, error) {
	return NewShellExecutorWithObserver(logger, runner, nil)
}

// NewShellExecutorWithObserver constructs an executor that forwards lifecycle events to the observer.
// A nil observer falls back to structured logging.
func NewShellExecutorWithObserver(logger *zap.Logger, runner CommandRunner, observer CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	executor := &ShellExecutor{logger: logger, runner: runner, eventObserver: observer}
	if executor.eventObserver == nil {
		executor.eventObserver = structuredCommandEventLogger{logger: logger}
	}
	return executor, nil
}

// ExecuteGit runs git with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// Execute runs the command and converts failures into CommandExecutionError or CommandFailedError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.eventObserver.CommandStarted(command)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.eventObserver.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.eventObserver.CommandCompleted(command, executionResult)

	if executionResult.ExitCode != 0 && !exitCodeAccepted(command.Details.AcceptedExitCodes, executionResult.ExitCode) {
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	return executionResult, nil
}

func exitCodeAccepted(acceptedExitCodes []int, exitCode int) bool {
	for _, acceptedExitCode := range acceptedExitCodes {
		if acceptedExitCode == exitCode {
			return true
		}
	}
	return false
}

func describeCommand(command ShellCommand) string {
	commandParts := append([]string{string(command.Name)}, command.Details.Arguments...)
	return strings.Join(commandParts, " ")
}

type structuredCommandEventLogger struct {
	logger *zap.Logger
}

func (eventLogger structuredCommandEventLogger) CommandStarted(command ShellCommand) {
	eventLogger.logger.Debug(commandStartedLogMessageConstant, commandFields(command)...)
}

func (eventLogger structuredCommandEventLogger) CommandCompleted(command ShellCommand, result ExecutionResult) {
	fields := append(commandFields(command), zap.Int(logFieldExitCodeConstant, result.ExitCode))
	if result.ExitCode == 0 || exitCodeAccepted(command.Details.AcceptedExitCodes, result.ExitCode) {
		eventLogger.logger.Debug(commandCompletedLogMessageConstant, fields...)
		return
	}
	fields = append(fields, zap.String(logFieldStandardErrorConstant, strings.TrimSpace(result.StandardError)))
	eventLogger.logger.Warn(commandFailedLogMessageConstant, fields...)
}

func (eventLogger structuredCommandEventLogger) CommandExecutionFailed(command ShellCommand, failure error) {
	fields := append(commandFields(command), zap.Error(failure))
	eventLogger.logger.Error(commandExecutionFailedLogMessageConstant, fields...)
}

func commandFields(command ShellCommand) []zap.Field {
	return []zap.Field{
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	}
}
