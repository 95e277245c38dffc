package actions_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/manage_repos/internal/actions"
	"github.com/temirov/manage_repos/internal/execshell"
)

const (
	testRepositoryPathConstant     = "/repos/alpha"
	testBranchNameConstant         = "laptop"
	testCommitMessageConstant      = "sync from laptop"
	actionsSubtestTemplateConstant = "%d_%s"
)

type scriptedResponse struct {
	result execshell.ExecutionResult
	err    error
}

type scriptedGitExecutor struct {
	responses        []scriptedResponse
	recordedCommands []execshell.CommandDetails
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)
	if len(executor.responses) == 0 {
		return execshell.ExecutionResult{}, nil
	}
	response := executor.responses[0]
	executor.responses = executor.responses[1:]
	return response.result, response.err
}

func (executor *scriptedGitExecutor) recordedArguments() [][]string {
	recordedArguments := make([][]string, 0, len(executor.recordedCommands))
	for _, recordedCommand := range executor.recordedCommands {
		recordedArguments = append(recordedArguments, recordedCommand.Arguments)
	}
	return recordedArguments
}

func newTestService(testInstance *testing.T, executor *scriptedGitExecutor) *actions.Service {
	testInstance.Helper()
	service, creationError := actions.NewService(actions.Dependencies{GitExecutor: executor})
	require.NoError(testInstance, creationError)
	return service
}

func output(text string) scriptedResponse {
	return scriptedResponse{result: execshell.ExecutionResult{StandardOutput: text}}
}

func exitCode(code int) scriptedResponse {
	return scriptedResponse{result: execshell.ExecutionResult{ExitCode: code}}
}

func failure(arguments ...string) scriptedResponse {
	return scriptedResponse{err: execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{Arguments: arguments}},
		Result:  execshell.ExecutionResult{ExitCode: 1, StandardError: "fatal: simulated"},
	}}
}

func TestNewServiceRequiresExecutor(testInstance *testing.T) {
	service, creationError := actions.NewService(actions.Dependencies{})
	require.ErrorIs(testInstance, creationError, actions.ErrGitExecutorNotConfigured)
	require.Nil(testInstance, service)
}

func TestServiceCheckout(testInstance *testing.T) {
	testCases := []struct {
		name              string
		branchListing     string
		requestedBranch   string
		expectedArguments [][]string
		expectedLines     []string
	}{
		{
			name:              "already_active_case_insensitive",
			branchListing:     "  master\n* Laptop\n",
			requestedBranch:   testBranchNameConstant,
			expectedArguments: [][]string{{"branch"}},
			expectedLines:     []string{"laptop Already Checked out..."},
		},
		{
			name:              "creates_missing_branch",
			branchListing:     "* master\n",
			requestedBranch:   testBranchNameConstant,
			expectedArguments: [][]string{{"branch"}, {"checkout", "-b", testBranchNameConstant}},
			expectedLines:     []string{},
		},
		{
			name:              "switches_to_existing_branch",
			branchListing:     "* master\n  laptop\n+ desktop\n",
			requestedBranch:   testBranchNameConstant,
			expectedArguments: [][]string{{"branch"}, {"checkout", testBranchNameConstant}},
			expectedLines:     []string{},
		},
		{
			name:              "switches_to_branch_checked_out_in_linked_worktree",
			branchListing:     "* master\n+ desktop\n",
			requestedBranch:   "desktop",
			expectedArguments: [][]string{{"branch"}, {"checkout", "desktop"}},
			expectedLines:     []string{},
		},
		{
			name:              "detached_head_creates_branch",
			branchListing:     "* (HEAD detached at 1a2b3c4)\n  master\n",
			requestedBranch:   testBranchNameConstant,
			expectedArguments: [][]string{{"branch"}, {"checkout", "-b", testBranchNameConstant}},
			expectedLines:     []string{},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(actionsSubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			executor := &scriptedGitExecutor{responses: []scriptedResponse{output(testCase.branchListing)}}
			service := newTestService(testInstance, executor)

			lines, checkoutError := service.Checkout(context.Background(), testRepositoryPathConstant, testCase.requestedBranch)
			require.NoError(testInstance, checkoutError)
			require.Equal(testInstance, testCase.expectedLines, lines)
			require.Equal(testInstance, testCase.expectedArguments, executor.recordedArguments())
			for _, recordedCommand := range executor.recordedCommands {
				require.Equal(testInstance, testRepositoryPathConstant, recordedCommand.WorkingDirectory)
			}
		})
	}
}

func TestServiceCheckoutWrapsFailures(testInstance *testing.T) {
	executor := &scriptedGitExecutor{responses: []scriptedResponse{output("* master\n"), failure("checkout", "-b", testBranchNameConstant)}}
	service := newTestService(testInstance, executor)

	lines, checkoutError := service.Checkout(context.Background(), testRepositoryPathConstant, testBranchNameConstant)
	require.Nil(testInstance, lines)
	var failedError execshell.CommandFailedError
	require.True(testInstance, errors.As(checkoutError, &failedError))
	require.Contains(testInstance, checkoutError.Error(), testBranchNameConstant)
}

func TestServiceAddAndCommitShortCircuitWithoutDifferences(testInstance *testing.T) {
	testCases := []struct {
		name              string
		invoke            func(service *actions.Service) ([]string, error)
		responses         []scriptedResponse
		expectedLines     []string
		expectedArguments [][]string
	}{
		{
			name: "add_without_unstaged_changes",
			invoke: func(service *actions.Service) ([]string, error) {
				return service.Add(context.Background(), testRepositoryPathConstant)
			},
			responses:         []scriptedResponse{exitCode(0)},
			expectedLines:     []string{"No unstaged changes to add..."},
			expectedArguments: [][]string{{"diff", "--exit-code"}},
		},
		{
			name: "add_with_unstaged_changes",
			invoke: func(service *actions.Service) ([]string, error) {
				return service.Add(context.Background(), testRepositoryPathConstant)
			},
			responses:         []scriptedResponse{exitCode(1), output("")},
			expectedLines:     []string{},
			expectedArguments: [][]string{{"diff", "--exit-code"}, {"add", "."}},
		},
		{
			name: "commit_without_staged_changes",
			invoke: func(service *actions.Service) ([]string, error) {
				return service.Commit(context.Background(), testRepositoryPathConstant, testCommitMessageConstant)
			},
			responses:         []scriptedResponse{exitCode(0)},
			expectedLines:     []string{"No staged changes to commit..."},
			expectedArguments: [][]string{{"diff", "--cached", "--exit-code"}},
		},
		{
			name: "commit_with_staged_changes",
			invoke: func(service *actions.Service) ([]string, error) {
				return service.Commit(context.Background(), testRepositoryPathConstant, testCommitMessageConstant)
			},
			responses:         []scriptedResponse{exitCode(1), output("[laptop 1a2b3c4] sync from laptop\n 1 file changed\n")},
			expectedLines:     []string{"[laptop 1a2b3c4] sync from laptop", " 1 file changed"},
			expectedArguments: [][]string{{"diff", "--cached", "--exit-code"}, {"commit", "-a", "-m", testCommitMessageConstant}},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(actionsSubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			executor := &scriptedGitExecutor{responses: testCase.responses}
			service := newTestService(testInstance, executor)

			lines, actionError := testCase.invoke(service)
			require.NoError(testInstance, actionError)
			require.Equal(testInstance, testCase.expectedLines, lines)
			require.Equal(testInstance, testCase.expectedArguments, executor.recordedArguments())
			require.Equal(testInstance, []int{1}, executor.recordedCommands[0].AcceptedExitCodes)
		})
	}
}

func TestServicePassThroughActions(testInstance *testing.T) {
	testCases := []struct {
		name              string
		invoke            func(service *actions.Service) ([]string, error)
		expectedArguments []string
	}{
		{
			name: "push",
			invoke: func(service *actions.Service) ([]string, error) {
				return service.Push(context.Background(), testRepositoryPathConstant)
			},
			expectedArguments: []string{"push", "--set-upstream", "--all"},
		},
		{
			name: "pull",
			invoke: func(service *actions.Service) ([]string, error) {
				return service.Pull(context.Background(), testRepositoryPathConstant)
			},
			expectedArguments: []string{"pull"},
		},
		{
			name: "fetch_all",
			invoke: func(service *actions.Service) ([]string, error) {
				return service.FetchAll(context.Background(), testRepositoryPathConstant)
			},
			expectedArguments: []string{"fetch", "--all"},
		},
		{
			name: "status_remote",
			invoke: func(service *actions.Service) ([]string, error) {
				return service.StatusRemote(context.Background(), testRepositoryPathConstant)
			},
			expectedArguments: []string{"remote", "-v", "update"},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(actionsSubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			executor := &scriptedGitExecutor{responses: []scriptedResponse{output("Already up to date.\n")}}
			service, creationError := actions.NewService(actions.Dependencies{
				GitExecutor:          executor,
				EnvironmentVariables: map[string]string{"GIT_TERMINAL_PROMPT": "0"},
			})
			require.NoError(testInstance, creationError)

			lines, actionError := testCase.invoke(service)
			require.NoError(testInstance, actionError)
			require.Equal(testInstance, []string{"Already up to date."}, lines)
			require.Equal(testInstance, [][]string{testCase.expectedArguments}, executor.recordedArguments())
			require.Equal(testInstance, "0", executor.recordedCommands[0].EnvironmentVariables["GIT_TERMINAL_PROMPT"])

			failingExecutor := &scriptedGitExecutor{responses: []scriptedResponse{failure(testCase.expectedArguments...)}}
			failingService := newTestService(testInstance, failingExecutor)
			failedLines, failedError := testCase.invoke(failingService)
			require.Nil(testInstance, failedLines)
			require.Error(testInstance, failedError)
			require.Contains(testInstance, failedError.Error(), testRepositoryPathConstant)
		})
	}
}

func TestServicePassThroughReportsStandardError(testInstance *testing.T) {
	executor := &scriptedGitExecutor{responses: []scriptedResponse{
		{result: execshell.ExecutionResult{StandardError: "From /remotes/origin\n   5104ad9..79e7e30  master     -> origin/master\n"}},
	}}
	service := newTestService(testInstance, executor)

	lines, actionError := service.StatusRemote(context.Background(), testRepositoryPathConstant)
	require.NoError(testInstance, actionError)
	require.Equal(testInstance, []string{"From /remotes/origin", "   5104ad9..79e7e30  master     -> origin/master"}, lines)
}

func TestServiceKeepsStandardOutputOfFailedCommand(testInstance *testing.T) {
	executor := &scriptedGitExecutor{responses: []scriptedResponse{{err: execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{Arguments: []string{"push", "--set-upstream", "--all"}}},
		Result:  execshell.ExecutionResult{ExitCode: 1, StandardOutput: "Everything up-to-date\n", StandardError: "error: failed to push some refs\n"},
	}}}}
	service := newTestService(testInstance, executor)

	lines, actionError := service.Push(context.Background(), testRepositoryPathConstant)
	require.Error(testInstance, actionError)
	require.Contains(testInstance, actionError.Error(), "failed to push some refs")
	require.Equal(testInstance, []string{"Everything up-to-date"}, lines)
}

func TestServiceValidatesInputsBeforeRunningGit(testInstance *testing.T) {
	testCases := []struct {
		name          string
		invoke        func(service *actions.Service) ([]string, error)
		expectedError error
	}{
		{
			name: "checkout_without_branch",
			invoke: func(service *actions.Service) ([]string, error) {
				return service.Checkout(context.Background(), testRepositoryPathConstant, " ")
			},
			expectedError: actions.ErrBranchNameRequired,
		},
		{
			name: "commit_without_message",
			invoke: func(service *actions.Service) ([]string, error) {
				return service.Commit(context.Background(), testRepositoryPathConstant, "")
			},
			expectedError: actions.ErrCommitMessageRequired,
		},
		{
			name:          "push_without_repository",
			invoke:        func(service *actions.Service) ([]string, error) { return service.Push(context.Background(), "") },
			expectedError: actions.ErrRepositoryPathRequired,
		},
		{
			name: "composite_without_message",
			invoke: func(service *actions.Service) ([]string, error) {
				return service.ChangesToRemote(context.Background(), testRepositoryPathConstant, testBranchNameConstant, "")
			},
			expectedError: actions.ErrCommitMessageRequired,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(actionsSubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			executor := &scriptedGitExecutor{}
			service := newTestService(testInstance, executor)

			_, actionError := testCase.invoke(service)
			require.ErrorIs(testInstance, actionError, testCase.expectedError)
			require.Empty(testInstance, executor.recordedCommands)
		})
	}
}
