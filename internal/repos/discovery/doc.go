// Package discovery finds the git repositories beneath a root directory.
package discovery
