package status

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
	statusFailureTemplateConstant         = "failed to read status of %s: %w"
	gitStatusSubcommandConstant           = "status"
	gitPorcelainFlagConstant              = "--porcelain"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrRepositoryPathRequired indicates an empty repository path.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// Service collects and renders working-tree status.
type Service struct {
	executor             shared.GitExecutor
	environmentVariables map[string]string
}

// NewService constructs a Service. The environment variables are applied to every git invocation.
func NewService(executor shared.GitExecutor, environmentVariables map[string]string) (*Service, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &Service{executor: executor, environmentVariables: environmentVariables}, nil
}

// Tally runs git status --porcelain in the repository and counts its status codes.
// Launch failures surface as execshell.CommandExecutionError and non-zero exits as execshell.CommandFailedError.
func (service *Service) Tally(executionContext context.Context, repository string) (Tally, error) {
	if len(strings.TrimSpace(repository)) == 0 {
		return nil, ErrRepositoryPathRequired
	}

	executionResult, executionError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitStatusSubcommandConstant, gitPorcelainFlagConstant},
		WorkingDirectory:     repository,
		EnvironmentVariables: service.environmentVariables,
	})
	if executionError != nil {
		return nil, fmt.Errorf(statusFailureTemplateConstant, repository, executionError)
	}

	return ParseTally(executionResult.StandardOutput), nil
}

// Describe returns the rendered status summary for the repository.
func (service *Service) Describe(executionContext context.Context, repository string) ([]string, error) {
	tally, tallyError := service.Tally(executionContext, repository)
	if tallyError != nil {
		return nil, tallyError
	}
	return RenderSummary(repository, tally), nil
}
