package shared

import (
	"context"
	"io/fs"

	"github.com/temirov/manage_repos/internal/execshell"
)

// GitMetadataDirectoryNameConstant names the directory that marks a repository working tree.
const GitMetadataDirectoryNameConstant = ".git"

// FileSystem exposes the filesystem queries required by repository services.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
}

// GitExecutor exposes the subset of shell execution used by repository services.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryDiscoverer locates git repositories beneath a root directory.
type RepositoryDiscoverer interface {
	DiscoverRepositories(root string) ([]string, error)
}
