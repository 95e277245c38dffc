package filesystem

import (
	"io/fs"
	"os"
)

// OSFileSystem implements shared.FileSystem using the operating system primitives.
type OSFileSystem struct{}

// Stat retrieves file metadata, following symbolic links.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}
