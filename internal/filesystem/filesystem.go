// Package filesystem abstracts the file operations used by discovery, schema
// resolution, the lint tree, the maintenance commands and the script export.
package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// FileSystem is the subset of file operations flint relies on.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	Abs(path string) (string, error)
	Getwd() (string, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
	MkdirAll(path string, permissions fs.FileMode) error
	ReadDir(path string) ([]fs.DirEntry, error)
	Glob(directory string, pattern string) ([]string, error)
}

// OSFileSystem implements FileSystem using the operating system primitives.
type OSFileSystem struct{}

// Stat retrieves file metadata.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Abs resolves an absolute path.
func (OSFileSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// Getwd returns the process working directory.
func (OSFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

// ReadFile reads file contents.
func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to a file with the supplied permissions.
func (OSFileSystem) WriteFile(path string, data []byte, permissions fs.FileMode) error {
	return os.WriteFile(path, data, permissions)
}

// MkdirAll creates path and any missing parents.
func (OSFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	return os.MkdirAll(path, permissions)
}

// ReadDir lists a directory sorted by name.
func (OSFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

// Glob matches pattern, which may contain "**", below directory and returns the
// matches joined onto directory in lexical order.
func (OSFileSystem) Glob(directory string, pattern string) ([]string, error) {
	return GlobFS(os.DirFS(directory), directory, pattern)
}

// GlobFS matches pattern inside fileSystem and joins the matches onto prefix.
func GlobFS(fileSystem fs.FS, prefix string, pattern string) ([]string, error) {
	matches, globError := doublestar.Glob(fileSystem, filepath.ToSlash(pattern))
	if globError != nil {
		return nil, globError
	}
	joined := make([]string, 0, len(matches))
	for _, match := range matches {
		joined = append(joined, filepath.Join(prefix, filepath.FromSlash(match)))
	}
	sort.Strings(joined)
	return joined, nil
}

// IsDirectory reports whether path exists and is a directory.
func IsDirectory(fileSystem FileSystem, path string) bool {
	info, statError := fileSystem.Stat(path)
	return statError == nil && info.IsDir()
}

// IsRegularFile reports whether path exists and is a regular file.
func IsRegularFile(fileSystem FileSystem, path string) bool {
	info, statError := fileSystem.Stat(path)
	return statError == nil && info.Mode().IsRegular()
}
