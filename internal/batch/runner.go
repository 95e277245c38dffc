package batch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/manage_repos/internal/utils"
)

const (
	actionsMissingMessageConstant         = "repository actions not configured"
	statusDescriberMissingMessageConstant = "status describer not configured"
	unsupportedOperationTemplateConstant  = "unsupported operation %d"
	outputWriteFailureTemplateConstant    = "failed to write output for %s: %w"
	repositoryStartedLogMessageConstant   = "processing repository"
	repositoryFailedLogMessageConstant    = "repository operation failed"
	runCompletedLogMessageConstant        = "operation completed"
	logFieldRepositoryConstant            = "repository"
	logFieldOperationConstant             = "operation"
	logFieldRepositoryCountConstant       = "repository_count"
	logFieldFailureCountConstant          = "failure_count"
	logFieldConcurrencyConstant           = "concurrency"
)

// ErrActionsNotConfigured indicates the runner was built without repository actions.
var ErrActionsNotConfigured = errors.New(actionsMissingMessageConstant)

// ErrStatusDescriberNotConfigured indicates the runner was built without a status describer.
var ErrStatusDescriberNotConfigured = errors.New(statusDescriberMissingMessageConstant)

// RepositoryActions performs git actions in a single repository.
type RepositoryActions interface {
	Checkout(executionContext context.Context, repository string, branch string) ([]string, error)
	Add(executionContext context.Context, repository string) ([]string, error)
	Commit(executionContext context.Context, repository string, message string) ([]string, error)
	Push(executionContext context.Context, repository string) ([]string, error)
	Pull(executionContext context.Context, repository string) ([]string, error)
	FetchAll(executionContext context.Context, repository string) ([]string, error)
	StatusRemote(executionContext context.Context, repository string) ([]string, error)
	ChangesToRemote(executionContext context.Context, repository string, branch string, message string) ([]string, error)
}

// StatusDescriber renders the working-tree summary of a repository.
type StatusDescriber interface {
	Describe(executionContext context.Context, repository string) ([]string, error)
}

// Dependencies enumerates the collaborators required by Runner.
type Dependencies struct {
	Actions         RepositoryActions
	StatusDescriber StatusDescriber
	Output          io.Writer
	Logger          *zap.Logger
}

// Runner applies one invocation to a list of repositories.
type Runner struct {
	actions         RepositoryActions
	statusDescriber StatusDescriber
	output          *utils.FlushingWriter
	logger          *zap.Logger
	configuration   Configuration
}

type repositoryOutcome struct {
	lines   []string
	err     error
	skipped bool
}

// NewRunner constructs a Runner. A nil logger discards diagnostics and a nil output discards results.
func NewRunner(dependencies Dependencies, configuration Configuration) (*Runner, error) {
	if dependencies.Actions == nil {
		return nil, ErrActionsNotConfigured
	}
	if dependencies.StatusDescriber == nil {
		return nil, ErrStatusDescriberNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		actions:         dependencies.Actions,
		statusDescriber: dependencies.StatusDescriber,
		output:          utils.NewFlushingWriter(dependencies.Output),
		logger:          logger,
		configuration:   configuration.Sanitize(),
	}, nil
}

// Run applies the invocation to every repository and writes the results in repository order.
//
// The first failure stops the run unless ContinueOnError is set, in which case every failure is
// logged with its repository and the joined failures are returned once all repositories finish.
func (runner *Runner) Run(executionContext context.Context, invocation Invocation, repositories []string) error {
	if invocation.Operation == OperationNone {
		return nil
	}

	var runError error
	if runner.configuration.Concurrency <= minimumConcurrencyConstant || len(repositories) <= 1 {
		runError = runner.runSequentially(executionContext, invocation, repositories)
	} else {
		runError = runner.runConcurrently(executionContext, invocation, repositories)
	}

	runner.logger.Debug(
		runCompletedLogMessageConstant,
		zap.String(logFieldOperationConstant, invocation.Operation.String()),
		zap.Int(logFieldRepositoryCountConstant, len(repositories)),
		zap.Int(logFieldConcurrencyConstant, runner.configuration.Concurrency),
	)
	return runError
}

func (runner *Runner) runSequentially(executionContext context.Context, invocation Invocation, repositories []string) error {
	var failures []error
	for _, repository := range repositories {
		lines, performError := runner.perform(executionContext, invocation, repository)
		if handleError := runner.handleOutcome(repository, repositoryOutcome{lines: lines, err: performError}, &failures); handleError != nil {
			return handleError
		}
	}
	return runner.joinFailures(invocation, failures)
}

// runConcurrently processes repositories in parallel and emits each repository's buffered output
// as soon as every earlier repository has been emitted.
func (runner *Runner) runConcurrently(executionContext context.Context, invocation Invocation, repositories []string) error {
	group, groupContext := errgroup.WithContext(executionContext)
	group.SetLimit(runner.configuration.Concurrency)

	outcomes := make([]repositoryOutcome, len(repositories))
	completions := make([]chan struct{}, len(repositories))
	for index := range completions {
		completions[index] = make(chan struct{})
	}

	launchCompleted := make(chan struct{})
	go func() {
		defer close(launchCompleted)
		for index, repository := range repositories {
			group.Go(func() error {
				defer close(completions[index])
				if groupContext.Err() != nil {
					outcomes[index] = repositoryOutcome{skipped: true}
					return nil
				}
				// groupContext only gates starting; a started repository finishes on the caller's context.
				lines, performError := runner.perform(executionContext, invocation, repository)
				outcomes[index] = repositoryOutcome{lines: lines, err: performError}
				if performError != nil && !runner.configuration.ContinueOnError {
					return performError
				}
				return nil
			})
		}
	}()

	var failures []error
	var firstFailure error
	for index, repository := range repositories {
		<-completions[index]
		if outcomes[index].skipped {
			continue
		}
		if handleError := runner.handleOutcome(repository, outcomes[index], &failures); handleError != nil {
			firstFailure = handleError
			break
		}
	}

	<-launchCompleted
	waitError := group.Wait()
	if firstFailure != nil {
		return firstFailure
	}
	if waitError != nil {
		return waitError
	}
	return runner.joinFailures(invocation, failures)
}

// handleOutcome writes the repository output and returns an error when the run must stop.
func (runner *Runner) handleOutcome(repository string, outcome repositoryOutcome, failures *[]error) error {
	if writeError := runner.output.WriteLines(outcome.lines); writeError != nil {
		return fmt.Errorf(outputWriteFailureTemplateConstant, repository, writeError)
	}
	if outcome.err == nil {
		return nil
	}
	if !runner.configuration.ContinueOnError {
		return outcome.err
	}
	runner.logger.Warn(repositoryFailedLogMessageConstant, zap.String(logFieldRepositoryConstant, repository), zap.Error(outcome.err))
	*failures = append(*failures, outcome.err)
	return nil
}

func (runner *Runner) joinFailures(invocation Invocation, failures []error) error {
	if len(failures) == 0 {
		return nil
	}
	runner.logger.Debug(
		repositoryFailedLogMessageConstant,
		zap.String(logFieldOperationConstant, invocation.Operation.String()),
		zap.Int(logFieldFailureCountConstant, len(failures)),
	)
	return errors.Join(failures...)
}

// perform runs the invocation in one repository and returns the lines to display, including the repository header.
func (runner *Runner) perform(executionContext context.Context, invocation Invocation, repository string) ([]string, error) {
	runner.logger.Debug(
		repositoryStartedLogMessageConstant,
		zap.String(logFieldRepositoryConstant, repository),
		zap.String(logFieldOperationConstant, invocation.Operation.String()),
	)

	repositoryContext := executionContext
	if runner.configuration.CommandTimeout > 0 {
		var cancel context.CancelFunc
		repositoryContext, cancel = context.WithTimeout(executionContext, runner.configuration.CommandTimeout)
		defer cancel()
	}

	switch invocation.Operation {
	case OperationList:
		return []string{repository}, nil
	case OperationStatus:
		return runner.statusDescriber.Describe(repositoryContext, repository)
	case OperationStatusRemote:
		return withHeader(repository)(runner.actions.StatusRemote(repositoryContext, repository))
	case OperationAdd:
		return withHeader(repository)(runner.actions.Add(repositoryContext, repository))
	case OperationPull:
		return withHeader(repository)(runner.actions.Pull(repositoryContext, repository))
	case OperationPush:
		return withHeader(repository)(runner.actions.Push(repositoryContext, repository))
	case OperationFetchAll:
		return withHeader(repository)(runner.actions.FetchAll(repositoryContext, repository))
	case OperationChangesToRemote:
		return withHeader(repository)(runner.actions.ChangesToRemote(repositoryContext, repository, invocation.BranchName, invocation.CommitMessage))
	case OperationCheckout:
		return withHeader(repository)(runner.actions.Checkout(repositoryContext, repository, invocation.BranchName))
	case OperationCommit:
		return withHeader(repository)(runner.actions.Commit(repositoryContext, repository, invocation.CommitMessage))
	default:
		return nil, fmt.Errorf(unsupportedOperationTemplateConstant, invocation.Operation)
	}
}

// withHeader prefixes action output with the repository it came from, keeping any partial output on failure.
func withHeader(repository string) func(lines []string, actionError error) ([]string, error) {
	return func(lines []string, actionError error) ([]string, error) {
		return append([]string{repository}, lines...), actionError
	}
}
