// Package execshell provides structured helpers for invoking git.
//
// ShellExecutor wraps a CommandRunner with lifecycle logging and translates
// launch failures and non-zero exit codes into typed errors. OSCommandRunner
// is the default runner backed by os/exec.
package execshell
