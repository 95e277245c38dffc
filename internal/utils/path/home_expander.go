package pathutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant               = "~"
	tildeForwardSlashPrefixConstant   = "~/"
	homeDirectoryUnavailableTemplate  = "unable to expand %s: %w"
	homeDirectoryEmptyMessageConstant = "home directory is empty"
)

var tildeWithPathSeparatorPrefix = tildeSymbolConstant + string(os.PathSeparator)

// ErrHomeDirectoryEmpty indicates the home directory provider returned an empty path.
var ErrHomeDirectoryEmpty = errors.New(homeDirectoryEmptyMessageConstant)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander converts a leading "~" into the current user's home directory.
// Forms such as "~other/path" are returned unchanged.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewHomeExpander constructs a HomeExpander using the operating system lookup.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectoryProvider: provider}
}

// Expand resolves the home shortcut. It fails only when the path needs the home directory and it cannot be determined.
func (expander *HomeExpander) Expand(candidatePath string) (string, error) {
	if expander == nil || !expandable(candidatePath) {
		return candidatePath, nil
	}

	resolvedHomeDirectory, homeDirectoryError := expander.resolveHomeDirectory()
	if homeDirectoryError != nil {
		return "", fmt.Errorf(homeDirectoryUnavailableTemplate, candidatePath, homeDirectoryError)
	}

	if candidatePath == tildeSymbolConstant {
		return resolvedHomeDirectory, nil
	}

	relativePath := strings.TrimPrefix(candidatePath, tildeForwardSlashPrefixConstant)
	if relativePath == candidatePath {
		relativePath = strings.TrimPrefix(candidatePath, tildeWithPathSeparatorPrefix)
	}
	return filepath.Join(resolvedHomeDirectory, relativePath), nil
}

func expandable(candidatePath string) bool {
	return candidatePath == tildeSymbolConstant ||
		strings.HasPrefix(candidatePath, tildeForwardSlashPrefixConstant) ||
		strings.HasPrefix(candidatePath, tildeWithPathSeparatorPrefix)
}

func (expander *HomeExpander) resolveHomeDirectory() (string, error) {
	expander.initializationGuard.Do(func() {
		expander.homeDirectory, expander.homeDirectoryError = expander.homeDirectoryProvider()
		if expander.homeDirectoryError == nil && len(strings.TrimSpace(expander.homeDirectory)) == 0 {
			expander.homeDirectoryError = ErrHomeDirectoryEmpty
		}
	})
	return expander.homeDirectory, expander.homeDirectoryError
}
