// Package cli builds the manage-repos command: a single Cobra root command
// that resolves its configuration and loggers, picks one operation from the
// supplied flags, discovers repositories beneath the PATH argument, and hands
// them to the batch runner.
package cli
