package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/manage_repos/internal/execshell"
	"github.com/temirov/manage_repos/internal/repos/shared"
)

const (
	gitExecutorMissingMessageConstant     = "git executor not configured"
	repositoryPathRequiredMessageConstant = "repository path must be provided"
	branchNameRequiredMessageConstant     = "branch name must be provided"
	commitMessageRequiredMessageConstant  = "commit message must be provided"

	alreadyCheckedOutTemplateConstant = "%s Already Checked out..."
	noUnstagedChangesMessageConstant  = "No unstaged changes to add..."
	noStagedChangesMessageConstant    = "No staged changes to commit..."

	listBranchesFailureTemplateConstant = "failed to list branches in %s: %w"
	checkoutFailureTemplateConstant     = "failed to checkout branch %q in %s: %w"
	unstagedDiffFailureTemplateConstant = "failed to check unstaged changes in %s: %w"
	addFailureTemplateConstant          = "failed to stage changes in %s: %w"
	stagedDiffFailureTemplateConstant   = "failed to check staged changes in %s: %w"
	commitFailureTemplateConstant       = "failed to commit changes in %s: %w"
	pushFailureTemplateConstant         = "failed to push branches from %s: %w"
	pullFailureTemplateConstant         = "failed to pull changes into %s: %w"
	fetchFailureTemplateConstant        = "failed to fetch remotes for %s: %w"
	remoteUpdateFailureTemplateConstant = "failed to update remotes for %s: %w"

	gitBranchSubcommandConstant   = "branch"
	gitCheckoutSubcommandConstant = "checkout"
	gitCreateBranchFlagConstant   = "-b"
	gitDiffSubcommandConstant     = "diff"
	gitExitCodeFlagConstant       = "--exit-code"
	gitCachedFlagConstant         = "--cached"
	gitAddSubcommandConstant      = "add"
	gitAddAllPathspecConstant     = "."
	gitCommitSubcommandConstant   = "commit"
	gitCommitAllFlagConstant      = "-a"
	gitMessageFlagConstant        = "-m"
	gitPushSubcommandConstant     = "push"
	gitSetUpstreamFlagConstant    = "--set-upstream"
	gitAllFlagConstant            = "--all"
	gitPullSubcommandConstant     = "pull"
	gitFetchSubcommandConstant    = "fetch"
	gitRemoteSubcommandConstant   = "remote"
	gitVerboseFlagConstant        = "-v"
	gitUpdateSubcommandConstant   = "update"

	activeBranchMarkerConstant         = "*"
	linkedWorktreeBranchMarkerConstant = "+"
	differencesFoundExitCodeConstant   = 1
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrRepositoryPathRequired indicates an empty repository path.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// ErrBranchNameRequired indicates an empty branch name.
var ErrBranchNameRequired = errors.New(branchNameRequiredMessageConstant)

// ErrCommitMessageRequired indicates an empty commit message.
var ErrCommitMessageRequired = errors.New(commitMessageRequiredMessageConstant)

// Dependencies enumerates the collaborators required by Service.
type Dependencies struct {
	GitExecutor shared.GitExecutor
	// EnvironmentVariables are applied to every git invocation.
	EnvironmentVariables map[string]string
}

// Service performs git actions inside a single repository and returns the lines git reported on both output streams.
type Service struct {
	executor             shared.GitExecutor
	environmentVariables map[string]string
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &Service{executor: dependencies.GitExecutor, environmentVariables: dependencies.EnvironmentVariables}, nil
}

// Checkout makes branch the active branch, creating it when it does not exist locally.
// When branch is already active (compared case-insensitively) nothing else runs.
func (service *Service) Checkout(executionContext context.Context, repository string, branch string) ([]string, error) {
	trimmedRepository, repositoryError := requireRepository(repository)
	if repositoryError != nil {
		return nil, repositoryError
	}
	trimmedBranch := strings.TrimSpace(branch)
	if len(trimmedBranch) == 0 {
		return nil, ErrBranchNameRequired
	}

	branchListing, listError := service.runGit(executionContext, trimmedRepository, nil, gitBranchSubcommandConstant)
	if listError != nil {
		return nil, fmt.Errorf(listBranchesFailureTemplateConstant, trimmedRepository, listError)
	}

	activeBranch, localBranches := parseBranchListing(branchListing.OutputLines())
	if strings.EqualFold(activeBranch, trimmedBranch) {
		return []string{fmt.Sprintf(alreadyCheckedOutTemplateConstant, trimmedBranch)}, nil
	}

	checkoutArguments := []string{gitCheckoutSubcommandConstant, gitCreateBranchFlagConstant, trimmedBranch}
	if _, exists := localBranches[trimmedBranch]; exists {
		checkoutArguments = []string{gitCheckoutSubcommandConstant, trimmedBranch}
	}

	checkoutResult, checkoutError := service.runGit(executionContext, trimmedRepository, nil, checkoutArguments...)
	if checkoutError != nil {
		return failedCommandLines(checkoutError), fmt.Errorf(checkoutFailureTemplateConstant, trimmedBranch, trimmedRepository, checkoutError)
	}
	return checkoutResult.CombinedLines(), nil
}

// Add stages every change in the working tree unless git reports no unstaged differences.
func (service *Service) Add(executionContext context.Context, repository string) ([]string, error) {
	trimmedRepository, repositoryError := requireRepository(repository)
	if repositoryError != nil {
		return nil, repositoryError
	}

	hasDifferences, diffError := service.hasDifferences(executionContext, trimmedRepository, gitDiffSubcommandConstant, gitExitCodeFlagConstant)
	if diffError != nil {
		return nil, fmt.Errorf(unstagedDiffFailureTemplateConstant, trimmedRepository, diffError)
	}
	if !hasDifferences {
		return []string{noUnstagedChangesMessageConstant}, nil
	}

	addResult, addError := service.runGit(executionContext, trimmedRepository, nil, gitAddSubcommandConstant, gitAddAllPathspecConstant)
	if addError != nil {
		return failedCommandLines(addError), fmt.Errorf(addFailureTemplateConstant, trimmedRepository, addError)
	}
	return addResult.CombinedLines(), nil
}

// Commit records tracked changes with message unless git reports no staged differences.
func (service *Service) Commit(executionContext context.Context, repository string, message string) ([]string, error) {
	trimmedRepository, repositoryError := requireRepository(repository)
	if repositoryError != nil {
		return nil, repositoryError
	}
	if len(strings.TrimSpace(message)) == 0 {
		return nil, ErrCommitMessageRequired
	}

	hasDifferences, diffError := service.hasDifferences(executionContext, trimmedRepository, gitDiffSubcommandConstant, gitCachedFlagConstant, gitExitCodeFlagConstant)
	if diffError != nil {
		return nil, fmt.Errorf(stagedDiffFailureTemplateConstant, trimmedRepository, diffError)
	}
	if !hasDifferences {
		return []string{noStagedChangesMessageConstant}, nil
	}

	commitResult, commitError := service.runGit(executionContext, trimmedRepository, nil, gitCommitSubcommandConstant, gitCommitAllFlagConstant, gitMessageFlagConstant, message)
	if commitError != nil {
		return failedCommandLines(commitError), fmt.Errorf(commitFailureTemplateConstant, trimmedRepository, commitError)
	}
	return commitResult.CombinedLines(), nil
}

// Push publishes every local branch, recording upstream tracking references.
func (service *Service) Push(executionContext context.Context, repository string) ([]string, error) {
	return service.passThrough(executionContext, repository, pushFailureTemplateConstant, gitPushSubcommandConstant, gitSetUpstreamFlagConstant, gitAllFlagConstant)
}

// Pull fetches and merges remote changes into the active branch.
func (service *Service) Pull(executionContext context.Context, repository string) ([]string, error) {
	return service.passThrough(executionContext, repository, pullFailureTemplateConstant, gitPullSubcommandConstant)
}

// FetchAll fetches every configured remote.
func (service *Service) FetchAll(executionContext context.Context, repository string) ([]string, error) {
	return service.passThrough(executionContext, repository, fetchFailureTemplateConstant, gitFetchSubcommandConstant, gitAllFlagConstant)
}

// StatusRemote refreshes remote-tracking references verbosely.
func (service *Service) StatusRemote(executionContext context.Context, repository string) ([]string, error) {
	return service.passThrough(executionContext, repository, remoteUpdateFailureTemplateConstant, gitRemoteSubcommandConstant, gitVerboseFlagConstant, gitUpdateSubcommandConstant)
}

func (service *Service) passThrough(executionContext context.Context, repository string, failureTemplate string, arguments ...string) ([]string, error) {
	trimmedRepository, repositoryError := requireRepository(repository)
	if repositoryError != nil {
		return nil, repositoryError
	}

	executionResult, executionError := service.runGit(executionContext, trimmedRepository, nil, arguments...)
	if executionError != nil {
		return failedCommandLines(executionError), fmt.Errorf(failureTemplate, trimmedRepository, executionError)
	}
	return executionResult.CombinedLines(), nil
}

// failedCommandLines returns what a failed git command wrote to standard output.
// Standard error is already part of the error message.
func failedCommandLines(commandError error) []string {
	var failedError execshell.CommandFailedError
	if !errors.As(commandError, &failedError) {
		return nil
	}
	lines := failedError.Result.OutputLines()
	if len(lines) == 0 {
		return nil
	}
	return lines
}

// hasDifferences runs a diff with --exit-code: exit 0 means no differences and exit 1 means differences.
func (service *Service) hasDifferences(executionContext context.Context, repository string, arguments ...string) (bool, error) {
	diffResult, diffError := service.runGit(executionContext, repository, []int{differencesFoundExitCodeConstant}, arguments...)
	if diffError != nil {
		return false, diffError
	}
	return diffResult.ExitCode == differencesFoundExitCodeConstant, nil
}

func (service *Service) runGit(executionContext context.Context, repository string, acceptedExitCodes []int, arguments ...string) (execshell.ExecutionResult, error) {
	return service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     repository,
		EnvironmentVariables: service.environmentVariables,
		AcceptedExitCodes:    acceptedExitCodes,
	})
}

// parseBranchListing extracts the active branch and the set of local branch names from git branch output.
func parseBranchListing(lines []string) (string, map[string]struct{}) {
	activeBranch := ""
	localBranches := map[string]struct{}{}
	for _, line := range lines {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 {
			continue
		}
		if strings.HasPrefix(trimmedLine, activeBranchMarkerConstant) {
			activeBranch = strings.TrimSpace(strings.TrimPrefix(trimmedLine, activeBranchMarkerConstant))
			localBranches[activeBranch] = struct{}{}
			continue
		}
		localBranches[strings.TrimSpace(strings.TrimPrefix(trimmedLine, linkedWorktreeBranchMarkerConstant))] = struct{}{}
	}
	return activeBranch, localBranches
}

func requireRepository(repository string) (string, error) {
	trimmedRepository := strings.TrimSpace(repository)
	if len(trimmedRepository) == 0 {
		return "", ErrRepositoryPathRequired
	}
	return trimmedRepository, nil
}
