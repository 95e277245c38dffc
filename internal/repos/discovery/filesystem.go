package discovery

import (
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/manage_repos/internal/repos/shared"
)

const (
	unreadableEntryLogMessageConstant = "skipping unreadable path"
	logFieldPathConstant              = "path"
)

// FilesystemRepositoryDiscoverer locates git repositories on disk.
type FilesystemRepositoryDiscoverer struct {
	logger *zap.Logger
}

// NewFilesystemRepositoryDiscoverer constructs a repository discoverer backed by filepath.WalkDir.
func NewFilesystemRepositoryDiscoverer(logger *zap.Logger) *FilesystemRepositoryDiscoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilesystemRepositoryDiscoverer{logger: logger}
}

// DiscoverRepositories walks root and returns every directory that directly contains a .git directory.
//
// The root itself qualifies. Metadata directories are neither reported nor descended into, symbolic
// links are not followed, and unreadable subdirectories are skipped. Results follow walk order.
func (discoverer *FilesystemRepositoryDiscoverer) DiscoverRepositories(root string) ([]string, error) {
	repositories := []string{}

	walkError := filepath.WalkDir(root, func(path string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			if path == root {
				return walkError
			}
			discoverer.logger.Debug(unreadableEntryLogMessageConstant, zap.String(logFieldPathConstant, path), zap.Error(walkError))
			return nil
		}

		if path == root || !directoryEntry.IsDir() || directoryEntry.Name() != shared.GitMetadataDirectoryNameConstant {
			return nil
		}

		repositories = append(repositories, filepath.Dir(path))
		return fs.SkipDir
	})
	if walkError != nil {
		return nil, walkError
	}

	return repositories, nil
}
