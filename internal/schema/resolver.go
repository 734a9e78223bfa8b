package schema

import (
	"fmt"
	"path/filepath"

	"github.com/temirov/flint/internal/filesystem"
)

const workingDirectoryErrorTemplate = "unable to determine working directory: %w"

// Resolver maps schema references onto files.
type Resolver struct {
	fileSystem  filesystem.FileSystem
	directories []string
}

// NewResolver constructs a Resolver searching directories after the working
// directory. Relative directories are taken relative to the working directory.
func NewResolver(fileSystem filesystem.FileSystem, directories []string) *Resolver {
	return &Resolver{fileSystem: fileSystem, directories: append([]string(nil), directories...)}
}

// SearchPaths lists, in order, the candidate files for reference.
func (resolver *Resolver) SearchPaths(reference string) ([]string, error) {
	if filepath.IsAbs(reference) {
		return []string{filepath.Clean(reference)}, nil
	}

	workingDirectory, workingDirectoryError := resolver.fileSystem.Getwd()
	if workingDirectoryError != nil {
		return nil, fmt.Errorf(workingDirectoryErrorTemplate, workingDirectoryError)
	}

	searchPaths := []string{filepath.Join(workingDirectory, reference)}
	for _, directory := range resolver.directories {
		if !filepath.IsAbs(directory) {
			directory = filepath.Join(workingDirectory, directory)
		}
		searchPaths = append(searchPaths, filepath.Join(directory, reference))
	}
	return searchPaths, nil
}

// Resolve returns the first existing search path. A reference with no match yields
// a *ResolutionError.
func (resolver *Resolver) Resolve(reference string) (string, error) {
	searchPaths, searchPathError := resolver.SearchPaths(reference)
	if searchPathError != nil {
		return "", searchPathError
	}
	for _, searchPath := range searchPaths {
		if filesystem.IsRegularFile(resolver.fileSystem, searchPath) {
			return searchPath, nil
		}
	}
	return "", &ResolutionError{Reference: reference, SearchPaths: searchPaths}
}
