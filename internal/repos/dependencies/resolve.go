package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/manage_repos/internal/execshell"
	"github.com/temirov/manage_repos/internal/repos/discovery"
	"github.com/temirov/manage_repos/internal/repos/filesystem"
	"github.com/temirov/manage_repos/internal/repos/shared"
)

// ResolveRepositoryDiscoverer returns the provided discoverer or a filesystem-backed default.
func ResolveRepositoryDiscoverer(existing shared.RepositoryDiscoverer, logger *zap.Logger) shared.RepositoryDiscoverer {
	if existing != nil {
		return existing
	}
	return discovery.NewFilesystemRepositoryDiscoverer(logger)
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
// A nil observer keeps structured lifecycle logging.
func ResolveGitExecutor(existing shared.GitExecutor, logger *zap.Logger, observer execshell.CommandEventObserver) (shared.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	shellExecutor, creationError := execshell.NewShellExecutorWithObserver(logger, execshell.NewOSCommandRunner(), observer)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}
