package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

const gitMetadataDirectoryNameConstant = ".git"

// FilesystemRepositoryDiscoverer locates git repositories on disk and lists the
// files they hold.
type FilesystemRepositoryDiscoverer struct{}

// NewFilesystemRepositoryDiscoverer constructs a repository discoverer backed by filepath.WalkDir.
func NewFilesystemRepositoryDiscoverer() *FilesystemRepositoryDiscoverer {
	return &FilesystemRepositoryDiscoverer{}
}

// DiscoverRepositories walks the provided roots and returns directories containing a .git entry.
func (discoverer *FilesystemRepositoryDiscoverer) DiscoverRepositories(roots []string) ([]string, error) {
	seen := make(map[string]struct{})
	var repositories []string

	for _, root := range roots {
		walkError := filepath.WalkDir(root, func(path string, directoryEntry fs.DirEntry, walkError error) error {
			if walkError != nil {
				return nil
			}
			if directoryEntry.Name() != gitMetadataDirectoryNameConstant {
				return nil
			}

			repositoryPath := filepath.Dir(path)
			if _, alreadySeen := seen[repositoryPath]; !alreadySeen {
				seen[repositoryPath] = struct{}{}
				repositories = append(repositories, repositoryPath)
			}
			if directoryEntry.IsDir() {
				return fs.SkipDir
			}
			return nil
		})
		if walkError != nil {
			return nil, walkError
		}
	}

	sort.Strings(repositories)
	return repositories, nil
}

// RepositoryFiles returns every regular file below repositoryPath in lexical walk
// order, skipping git metadata. Nested repositories such as submodules are left
// out because DiscoverRepositories reports them on their own.
func (discoverer *FilesystemRepositoryDiscoverer) RepositoryFiles(repositoryPath string) ([]string, error) {
	var files []string
	walkError := filepath.WalkDir(repositoryPath, func(path string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			if path == repositoryPath {
				return walkError
			}
			return nil
		}
		if directoryEntry.Name() == gitMetadataDirectoryNameConstant {
			if directoryEntry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if directoryEntry.IsDir() && path != repositoryPath && containsGitMetadata(path) {
			return fs.SkipDir
		}
		if directoryEntry.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if walkError != nil {
		return nil, walkError
	}
	return files, nil
}

func containsGitMetadata(directoryPath string) bool {
	_, statError := os.Lstat(filepath.Join(directoryPath, gitMetadataDirectoryNameConstant))
	return statError == nil
}
