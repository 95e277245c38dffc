package actions

import (
	"context"
	"strings"
)

const (
	checkoutStepHeaderConstant = "Checkout..."
	addStepHeaderConstant      = "Add..."
	commitStepHeaderConstant   = "Commit..."
	pushStepHeaderConstant     = "Push..."
	stepSeparatorLineConstant  = ""
)

type compositeStep struct {
	header string
	run    func(executionContext context.Context) ([]string, error)
}

// ChangesToRemote checks out branch, stages and commits all changes with message, then pushes every branch.
//
// Each step contributes its header, its output lines, and a blank separator. The first failing step stops
// the sequence; the lines gathered so far are returned together with the error.
func (service *Service) ChangesToRemote(executionContext context.Context, repository string, branch string, message string) ([]string, error) {
	trimmedRepository, repositoryError := requireRepository(repository)
	if repositoryError != nil {
		return nil, repositoryError
	}
	if len(strings.TrimSpace(branch)) == 0 {
		return nil, ErrBranchNameRequired
	}
	if len(strings.TrimSpace(message)) == 0 {
		return nil, ErrCommitMessageRequired
	}

	steps := []compositeStep{
		{header: checkoutStepHeaderConstant, run: func(stepContext context.Context) ([]string, error) {
			return service.Checkout(stepContext, trimmedRepository, branch)
		}},
		{header: addStepHeaderConstant, run: func(stepContext context.Context) ([]string, error) {
			return service.Add(stepContext, trimmedRepository)
		}},
		{header: commitStepHeaderConstant, run: func(stepContext context.Context) ([]string, error) {
			return service.Commit(stepContext, trimmedRepository, message)
		}},
		{header: pushStepHeaderConstant, run: func(stepContext context.Context) ([]string, error) {
			return service.Push(stepContext, trimmedRepository)
		}},
	}

	collectedLines := make([]string, 0, len(steps)*3)
	for _, step := range steps {
		collectedLines = append(collectedLines, step.header)
		stepLines, stepError := step.run(executionContext)
		collectedLines = append(collectedLines, stepLines...)
		if stepError != nil {
			return collectedLines, stepError
		}
		collectedLines = append(collectedLines, stepSeparatorLineConstant)
	}
	return collectedLines, nil
}
