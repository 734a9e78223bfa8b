package linttree

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/flint/internal/execshell"
	"github.com/temirov/flint/internal/filesystem"
	"github.com/temirov/flint/internal/findings"
	"github.com/temirov/flint/internal/schema"
	"github.com/temirov/flint/internal/secrets"
)

const (
	unexpectedEntryTemplate       = "unexpected %s '%s'"
	entryKindFileConstant         = "file"
	entryKindDirectoryConstant    = "directory"
	listDirectoryErrorTemplate    = "unable to list %s: %w"
	workingDirectoryErrorTemplate = "unable to determine working directory: %w"
	executorErrorTemplate         = "unable to prepare command executor: %w"
	propertiesErrorTemplate       = "unable to print properties: %w"
	logFieldDirectoryConstant     = "directory"
	logFieldLintedPathsConstant   = "linted_paths"
	lintStartedMessage            = "lint started"
	lintCompletedMessage          = "lint completed"
)

// Linter runs a tree of nodes against a directory.
type Linter struct {
	Children                []Node
	StrictDirectoryContents bool
	PrintProperties         bool
}

// Run lints arguments.Directory, or the working directory when it is empty. Only
// failures to set up the run are returned as errors; everything found in the
// directory is part of the results.
func (linter Linter) Run(executionContext context.Context, arguments Arguments, environment Environment) (*findings.Results, error) {
	preparedEnvironment, environmentError := environment.withDefaults(arguments)
	if environmentError != nil {
		return nil, environmentError
	}
	if len(arguments.Directory) == 0 {
		workingDirectory, workingDirectoryError := preparedEnvironment.FileSystem.Getwd()
		if workingDirectoryError != nil {
			return nil, fmt.Errorf(workingDirectoryErrorTemplate, workingDirectoryError)
		}
		arguments.Directory = workingDirectory
	}

	rootContext := newRootContext(executionContext, arguments, preparedEnvironment)
	entries, listError := preparedEnvironment.FileSystem.ReadDir(rootContext.Path())
	if listError != nil {
		return nil, fmt.Errorf(listDirectoryErrorTemplate, rootContext.Path(), listError)
	}

	preparedEnvironment.Logger.Debug(lintStartedMessage, zap.String(logFieldDirectoryConstant, rootContext.Path()))
	lintChildren(rootContext, linter.Children)

	if linter.StrictDirectoryContents {
		for _, entry := range entries {
			entryPath := filepath.Join(rootContext.Path(), entry.Name())
			if rootContext.Results().Linted(entryPath) {
				continue
			}
			entryKind := entryKindFileConstant
			if filesystem.IsDirectory(preparedEnvironment.FileSystem, entryPath) {
				entryKind = entryKindDirectoryConstant
			}
			rootContext.Error(unexpectedEntryTemplate, entryKind, entryPath)
		}
	}

	if linter.PrintProperties {
		if writeError := rootContext.Properties().Write(preparedEnvironment.Output); writeError != nil {
			return nil, fmt.Errorf(propertiesErrorTemplate, writeError)
		}
	}

	preparedEnvironment.Logger.Debug(lintCompletedMessage,
		zap.String(logFieldDirectoryConstant, rootContext.Path()),
		zap.Int(logFieldLintedPathsConstant, len(rootContext.Results().Paths())),
	)
	return rootContext.Results(), nil
}

func (environment Environment) withDefaults(arguments Arguments) (*Environment, error) {
	prepared := environment
	if prepared.FileSystem == nil {
		prepared.FileSystem = filesystem.OSFileSystem{}
	}
	if prepared.Logger == nil {
		prepared.Logger = zap.NewNop()
	}
	if prepared.Output == nil {
		prepared.Output = io.Discard
	}
	if prepared.Schemas == nil {
		prepared.Schemas = schema.NewCache(schema.NewResolver(prepared.FileSystem, arguments.SchemaDirectories), prepared.Logger)
	}
	if prepared.Executor == nil {
		executor, executorError := execshell.NewShellExecutor(prepared.Logger, execshell.NewOSCommandRunner())
		if executorError != nil {
			return nil, fmt.Errorf(executorErrorTemplate, executorError)
		}
		prepared.Executor = executor
	}
	if prepared.SecretRule == nil {
		prepared.SecretRule = secrets.NewRule(secrets.WithLogger(prepared.Logger))
	}
	return &prepared, nil
}

// PathKindResolver classifies result paths by inspecting fileSystem.
func PathKindResolver(fileSystem filesystem.FileSystem) findings.PathKindResolver {
	return func(path string) findings.PathKind {
		if filesystem.IsDirectory(fileSystem, path) {
			return findings.PathKindDirectory
		}
		return findings.PathKindFile
	}
}
