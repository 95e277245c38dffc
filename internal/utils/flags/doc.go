// Package flags holds reusable pflag helpers for the command-line interface.
package flags
