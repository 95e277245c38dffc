package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitStatusSubcommandNameConstant   = "status"
	gitBranchSubcommandNameConstant   = "branch"
	gitCheckoutSubcommandNameConstant = "checkout"
	gitCreateBranchFlagConstant       = "-b"
	gitDiffSubcommandNameConstant     = "diff"
	gitCachedFlagConstant             = "--cached"
	gitAddSubcommandNameConstant      = "add"
	gitCommitSubcommandNameConstant   = "commit"
	gitMessageFlagConstant            = "-m"
	gitPushSubcommandNameConstant     = "push"
	gitPullSubcommandNameConstant     = "pull"
	gitFetchSubcommandNameConstant    = "fetch"
	gitAllFlagConstant                = "--all"
	gitRemoteSubcommandNameConstant   = "remote"
	gitRemoteUpdateSubcommandConstant = "update"
)

type stageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

var (
	gitStatusTemplates = stageTemplates{
		start:            "Reviewing working tree status in %s",
		success:          "Collected working tree status for %s",
		failure:          "Failed to review working tree status in %s (exit code %d%s)",
		executionFailure: "Unable to review working tree status in %s: %s",
	}
	gitBranchListTemplates = stageTemplates{
		start:            "Listing local branches in %s",
		success:          "Listed local branches in %s",
		failure:          "Failed to list local branches in %s (exit code %d%s)",
		executionFailure: "Unable to list local branches in %s: %s",
	}
	gitCheckoutTemplates = stageTemplates{
		start:            "Switching %s to branch %s",
		success:          "%s now on branch %s",
		failure:          "Failed to switch %s to branch %s (exit code %d%s)",
		executionFailure: "Unable to switch %s to branch %s: %s",
	}
	gitCheckoutCreateTemplates = stageTemplates{
		start:            "Creating branch %[2]s in %[1]s",
		success:          "Created branch %[2]s in %[1]s",
		failure:          "Failed to create branch %[2]s in %[1]s (exit code %[3]d%[4]s)",
		executionFailure: "Unable to create branch %[2]s in %[1]s: %[3]s",
	}
	gitUnstagedDiffTemplates = stageTemplates{
		start:            "Checking unstaged changes in %s",
		success:          "Checked unstaged changes in %s",
		failure:          "Failed to check unstaged changes in %s (exit code %d%s)",
		executionFailure: "Unable to check unstaged changes in %s: %s",
	}
	gitStagedDiffTemplates = stageTemplates{
		start:            "Checking staged changes in %s",
		success:          "Checked staged changes in %s",
		failure:          "Failed to check staged changes in %s (exit code %d%s)",
		executionFailure: "Unable to check staged changes in %s: %s",
	}
	gitAddTemplates = stageTemplates{
		start:            "Staging %[2]s in %[1]s",
		success:          "Staged %[2]s in %[1]s",
		failure:          "Failed to stage %[2]s in %[1]s (exit code %[3]d%[4]s)",
		executionFailure: "Unable to stage %[2]s in %[1]s: %[3]s",
	}
	gitCommitTemplates = stageTemplates{
		start:            "Creating commit in %s with message %q",
		success:          "Created commit in %s with message %q",
		failure:          "Failed to create commit in %s with message %q (exit code %d%s)",
		executionFailure: "Unable to create commit in %s with message %q: %s",
	}
	gitPushTemplates = stageTemplates{
		start:            "Pushing all branches from %s",
		success:          "Pushed all branches from %s",
		failure:          "Failed to push branches from %s (exit code %d%s)",
		executionFailure: "Unable to push branches from %s: %s",
	}
	gitPullTemplates = stageTemplates{
		start:            "Pulling active branch in %s",
		success:          "Pulled active branch in %s",
		failure:          "Failed to pull active branch in %s (exit code %d%s)",
		executionFailure: "Unable to pull active branch in %s: %s",
	}
	gitFetchTemplates = stageTemplates{
		start:            "Fetching from all remotes in %s",
		success:          "Fetched from all remotes in %s",
		failure:          "Failed to fetch from all remotes in %s (exit code %d%s)",
		executionFailure: "Unable to fetch from all remotes in %s: %s",
	}
	gitRemoteUpdateTemplates = stageTemplates{
		start:            "Updating remote references in %s",
		success:          "Updated remote references in %s",
		failure:          "Failed to update remote references in %s (exit code %d%s)",
		executionFailure: "Unable to update remote references in %s: %s",
	}
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a command that completed with an accepted exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing a command that could not be started.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

// IsSuccessful reports whether the result counts as a success for the command.
func (formatter CommandMessageFormatter) IsSuccessful(command ShellCommand, result ExecutionResult) bool {
	return result.ExitCode == 0 || exitCodeAccepted(command.Details.AcceptedExitCodes, result.ExitCode)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch strings.TrimSpace(arguments[0]) {
	case gitStatusSubcommandNameConstant:
		return formatter.renderStage(gitStatusTemplates, stage, result, failure, workingDirectory)
	case gitBranchSubcommandNameConstant:
		if len(formatter.extractFirstNonFlagArgument(arguments[1:])) == 0 {
			return formatter.renderStage(gitBranchListTemplates, stage, result, failure, workingDirectory)
		}
	case gitCheckoutSubcommandNameConstant:
		branchName := formatter.ensureValue(formatter.extractFirstNonFlagArgument(arguments[1:]))
		if containsArgument(arguments, gitCreateBranchFlagConstant) {
			return formatter.renderStage(gitCheckoutCreateTemplates, stage, result, failure, workingDirectory, branchName)
		}
		return formatter.renderStage(gitCheckoutTemplates, stage, result, failure, workingDirectory, branchName)
	case gitDiffSubcommandNameConstant:
		if containsArgument(arguments, gitCachedFlagConstant) {
			return formatter.renderStage(gitStagedDiffTemplates, stage, result, failure, workingDirectory)
		}
		return formatter.renderStage(gitUnstagedDiffTemplates, stage, result, failure, workingDirectory)
	case gitAddSubcommandNameConstant:
		target := formatter.ensureValue(formatter.extractFirstNonFlagArgument(arguments[1:]))
		return formatter.renderStage(gitAddTemplates, stage, result, failure, workingDirectory, target)
	case gitCommitSubcommandNameConstant:
		return formatter.renderStage(gitCommitTemplates, stage, result, failure, workingDirectory, formatter.extractCommitMessage(arguments))
	case gitPushSubcommandNameConstant:
		if containsArgument(arguments, gitAllFlagConstant) {
			return formatter.renderStage(gitPushTemplates, stage, result, failure, workingDirectory)
		}
	case gitPullSubcommandNameConstant:
		return formatter.renderStage(gitPullTemplates, stage, result, failure, workingDirectory)
	case gitFetchSubcommandNameConstant:
		if containsArgument(arguments, gitAllFlagConstant) {
			return formatter.renderStage(gitFetchTemplates, stage, result, failure, workingDirectory)
		}
	case gitRemoteSubcommandNameConstant:
		if containsArgument(arguments, gitRemoteUpdateSubcommandConstant) {
			return formatter.renderStage(gitRemoteUpdateTemplates, stage, result, failure, workingDirectory)
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

// renderStage fills the stage template with the subject values followed by stage-specific details.
func (formatter CommandMessageFormatter) renderStage(templates stageTemplates, stage messageStage, result ExecutionResult, failure error, subjects ...any) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, subjects...)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, subjects...)
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, append(subjects, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))...)
	case messageStageExecutionFailure:
		return fmt.Sprintf(templates.executionFailure, append(subjects, formatter.describeFailure(failure))...)
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := emptyStringConstant
	if trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory); len(trimmedWorkingDirectory) > 0 {
		workingDirectorySuffix = fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) extractFirstNonFlagArgument(arguments []string) string {
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		return trimmed
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) extractCommitMessage(arguments []string) string {
	for index := 0; index < len(arguments)-1; index++ {
		if strings.TrimSpace(arguments[index]) == gitMessageFlagConstant {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return fallbackUnknownValueLabelConstant
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}
