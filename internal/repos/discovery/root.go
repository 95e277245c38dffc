package discovery

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/temirov/manage_repos/internal/repos/filesystem"
	"github.com/temirov/manage_repos/internal/repos/shared"
	pathutils "github.com/temirov/manage_repos/internal/utils/path"
)

const (
	invalidRootErrorTemplateConstant      = "invalid root %q: %s"
	rootMissingReasonConstant             = "path is empty"
	rootNotDirectoryReasonConstant        = "not a directory"
	rootUnavailableReasonTemplateConstant = "%v"
)

// InvalidRootError reports a root path that cannot be scanned.
type InvalidRootError struct {
	Path   string
	Reason string
	Cause  error
}

// Error describes the invalid root.
func (rootError InvalidRootError) Error() string {
	return fmt.Sprintf(invalidRootErrorTemplateConstant, rootError.Path, rootError.Reason)
}

// Unwrap exposes the underlying filesystem failure, when present.
func (rootError InvalidRootError) Unwrap() error {
	return rootError.Cause
}

// RootResolver validates the directory a scan starts from.
type RootResolver struct {
	fileSystem   shared.FileSystem
	homeExpander *pathutils.HomeExpander
}

// NewRootResolver constructs a resolver. Nil collaborators fall back to operating system implementations.
func NewRootResolver(fileSystem shared.FileSystem, homeExpander *pathutils.HomeExpander) *RootResolver {
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}
	return &RootResolver{fileSystem: fileSystem, homeExpander: homeExpander}
}

// ResolveRoot validates a root with the operating system resolver.
func ResolveRoot(rootPath string) (string, error) {
	return NewRootResolver(nil, nil).ResolveRoot(rootPath)
}

// ResolveRoot expands a leading "~", cleans the path, and confirms it names an existing directory.
func (resolver *RootResolver) ResolveRoot(rootPath string) (string, error) {
	trimmedRootPath := strings.TrimSpace(rootPath)
	if len(trimmedRootPath) == 0 {
		return "", InvalidRootError{Path: rootPath, Reason: rootMissingReasonConstant}
	}

	expandedRootPath, expandError := resolver.homeExpander.Expand(trimmedRootPath)
	if expandError != nil {
		return "", InvalidRootError{Path: rootPath, Reason: fmt.Sprintf(rootUnavailableReasonTemplateConstant, expandError), Cause: expandError}
	}
	cleanedRootPath := filepath.Clean(expandedRootPath)

	rootInfo, statError := resolver.fileSystem.Stat(cleanedRootPath)
	if statError != nil {
		return "", InvalidRootError{Path: cleanedRootPath, Reason: fmt.Sprintf(rootUnavailableReasonTemplateConstant, statError), Cause: statError}
	}
	if !rootInfo.IsDir() {
		return "", InvalidRootError{Path: cleanedRootPath, Reason: rootNotDirectoryReasonConstant}
	}

	return cleanedRootPath, nil
}
