package audit

import (
	"context"

	"github.com/temirov/flint/internal/execshell"
	"github.com/temirov/flint/internal/repos/discovery"
)

// RepositoryDiscoverer finds git repositories rooted under the provided paths
// and enumerates the files inside one.
type RepositoryDiscoverer interface {
	DiscoverRepositories(roots []string) ([]string, error)
	RepositoryFiles(repositoryPath string) ([]string, error)
}

// CommandExecutor runs external linters.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

func resolveRepositoryDiscoverer(existing RepositoryDiscoverer) RepositoryDiscoverer {
	if existing != nil {
		return existing
	}
	return discovery.NewFilesystemRepositoryDiscoverer()
}
