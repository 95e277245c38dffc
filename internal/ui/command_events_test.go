package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/manage_repos/internal/execshell"
	"github.com/temirov/manage_repos/internal/ui"
)

const (
	testCommandWorkingDirectoryConstant    = "/tmp/project"
	testExecutionFailureReasonConstant     = "execution failed"
	testStandardErrorMessageConstant       = "fatal: remote error"
	testStartMessageExpectationConstant    = "Pulling active branch in /tmp/project"
	testSuccessMessageExpectationConstant  = "Pulled active branch in /tmp/project"
	testFailureMessageExpectationConstant  = "Failed to pull active branch in /tmp/project (exit code 1: " + testStandardErrorMessageConstant + ")"
	testExecutionFailureMessageExpectation = "Unable to pull active branch in /tmp/project: " + testExecutionFailureReasonConstant
	testDiffSuccessMessageExpectation      = "Checked unstaged changes in /tmp/project"
)

func TestConsoleCommandEventLoggerEmitsMessages(testInstance *testing.T) {
	pullCommand := execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        []string{"pull"},
			WorkingDirectory: testCommandWorkingDirectoryConstant,
		},
	}
	diffCommand := execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:         []string{"diff", "--exit-code"},
			WorkingDirectory:  testCommandWorkingDirectoryConstant,
			AcceptedExitCodes: []int{1},
		},
	}

	testCases := []struct {
		name            string
		invoke          func(logger *ui.ConsoleCommandEventLogger)
		expectedLevel   zapcore.Level
		expectedMessage string
	}{
		{
			name: "command_started",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandStarted(pullCommand)
			},
			expectedLevel:   zapcore.DebugLevel,
			expectedMessage: testStartMessageExpectationConstant,
		},
		{
			name: "command_completed_success",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(pullCommand, execshell.ExecutionResult{ExitCode: 0})
			},
			expectedLevel:   zapcore.DebugLevel,
			expectedMessage: testSuccessMessageExpectationConstant,
		},
		{
			name: "command_completed_accepted_exit_code",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(diffCommand, execshell.ExecutionResult{ExitCode: 1})
			},
			expectedLevel:   zapcore.DebugLevel,
			expectedMessage: testDiffSuccessMessageExpectation,
		},
		{
			name: "command_completed_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(pullCommand, execshell.ExecutionResult{ExitCode: 1, StandardError: testStandardErrorMessageConstant})
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: testFailureMessageExpectationConstant,
		},
		{
			name: "command_execution_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandExecutionFailed(pullCommand, errors.New(testExecutionFailureReasonConstant))
			},
			expectedLevel:   zapcore.ErrorLevel,
			expectedMessage: testExecutionFailureMessageExpectation,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			consoleLogger := zap.New(observerCore)
			eventLogger := ui.NewConsoleCommandEventLogger(consoleLogger)

			testCase.invoke(eventLogger)

			entries := observedLogs.All()
			require.Len(testInstance, entries, 1)
			require.Equal(testInstance, testCase.expectedLevel, entries[0].Level)
			require.Equal(testInstance, testCase.expectedMessage, entries[0].Message)
		})
	}
}

func TestNilConsoleCommandEventLoggerIgnoresEvents(testInstance *testing.T) {
	var eventLogger *ui.ConsoleCommandEventLogger
	require.NotPanics(testInstance, func() {
		eventLogger.CommandStarted(execshell.ShellCommand{Name: execshell.CommandGit})
		eventLogger.CommandCompleted(execshell.ShellCommand{Name: execshell.CommandGit}, execshell.ExecutionResult{})
		eventLogger.CommandExecutionFailed(execshell.ShellCommand{Name: execshell.CommandGit}, errors.New(testExecutionFailureReasonConstant))
	})
}

func TestConsoleCommandEventLoggerKeepsProgressOutOfDefaultLevel(testInstance *testing.T) {
	pushCommand := execshell.ShellCommand{
		Name:    execshell.CommandGit,
		Details: execshell.CommandDetails{Arguments: []string{"push", "--set-upstream", "--all"}, WorkingDirectory: testCommandWorkingDirectoryConstant},
	}
	observerCore, observedLogs := observer.New(zapcore.InfoLevel)
	eventLogger := ui.NewConsoleCommandEventLogger(zap.New(observerCore))

	eventLogger.CommandStarted(pushCommand)
	eventLogger.CommandCompleted(pushCommand, execshell.ExecutionResult{})
	require.Empty(testInstance, observedLogs.All())

	eventLogger.CommandCompleted(pushCommand, execshell.ExecutionResult{ExitCode: 1, StandardError: testStandardErrorMessageConstant})
	require.Len(testInstance, observedLogs.All(), 1)
}
