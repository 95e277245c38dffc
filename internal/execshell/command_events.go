package execshell

// CommandEventObserver receives lifecycle notifications for shell command execution.
type CommandEventObserver interface {
	// CommandStarted notifies observers that command execution is beginning.
	CommandStarted(command ShellCommand)
	// CommandCompleted notifies observers that command execution finished and supplies the result.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports failures to launch the command.
	CommandExecutionFailed(command ShellCommand, failure error)
}
