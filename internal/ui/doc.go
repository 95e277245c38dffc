// Package ui renders git command lifecycle events as human-readable console log lines.
//
// It is selected when the configured log format is meant for people; structured
// formats keep the field-based events emitted by the shell executor.
package ui
