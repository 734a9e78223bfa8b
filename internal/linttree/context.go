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

// Arguments select what a Linter examines.
type Arguments struct {
	Directory         string
	SchemaDirectories []string
}

// Environment carries the collaborators shared by every node of a run. Zero fields
// are filled with defaults by Linter.Run.
type Environment struct {
	FileSystem filesystem.FileSystem
	Schemas    *schema.Cache
	Executor   *execshell.ShellExecutor
	SecretRule *secrets.Rule
	Logger     *zap.Logger
	Output     io.Writer
}

// Context tracks the path under inspection. Contexts derived from one another
// share results and properties.
type Context struct {
	executionContext context.Context
	path             string
	kind             findings.PathKind
	arguments        Arguments
	environment      *Environment
	results          *findings.Results
	properties       *Properties
}

func newRootContext(executionContext context.Context, arguments Arguments, environment *Environment) *Context {
	return &Context{
		executionContext: executionContext,
		path:             filepath.Clean(arguments.Directory),
		kind:             findings.PathKindDirectory,
		arguments:        arguments,
		environment:      environment,
		results:          findings.NewResults(),
		properties:       NewProperties(),
	}
}

func (lintContext *Context) derive(path string, kind findings.PathKind) *Context {
	derived := *lintContext
	derived.path = path
	derived.kind = kind
	return &derived
}

// WithPath derives a context for path without checking that it exists.
func (lintContext *Context) WithPath(path string, kind findings.PathKind) *Context {
	return lintContext.derive(path, kind)
}

// InDirectory derives a context for directory, or returns nil when it is not one.
func (lintContext *Context) InDirectory(directory string) *Context {
	if !filesystem.IsDirectory(lintContext.environment.FileSystem, directory) {
		return nil
	}
	return lintContext.derive(directory, findings.PathKindDirectory)
}

// WithFile derives a context for file, or returns nil when it is not a regular file.
func (lintContext *Context) WithFile(file string) *Context {
	if !filesystem.IsRegularFile(lintContext.environment.FileSystem, file) {
		return nil
	}
	return lintContext.derive(file, findings.PathKindFile)
}

// WithFilename derives a context for a file inside the current directory.
func (lintContext *Context) WithFilename(filename string) *Context {
	return lintContext.WithFile(filepath.Join(lintContext.path, filename))
}

// Cd derives a context for a subdirectory of the current directory.
func (lintContext *Context) Cd(directory string) *Context {
	return lintContext.InDirectory(filepath.Join(lintContext.path, directory))
}

// Path is the file or directory under inspection.
func (lintContext *Context) Path() string {
	return lintContext.path
}

// Arguments returns the arguments of the run.
func (lintContext *Context) Arguments() Arguments {
	return lintContext.arguments
}

// Results returns the findings collected so far.
func (lintContext *Context) Results() *findings.Results {
	return lintContext.results
}

// Properties returns the values collected so far.
func (lintContext *Context) Properties() *Properties {
	return lintContext.properties
}

// FileSystem returns the file system of the run.
func (lintContext *Context) FileSystem() filesystem.FileSystem {
	return lintContext.environment.FileSystem
}

// Logger returns the diagnostics logger of the run.
func (lintContext *Context) Logger() *zap.Logger {
	return lintContext.environment.Logger
}

// ExecutionContext returns the context bounding external commands.
func (lintContext *Context) ExecutionContext() context.Context {
	return lintContext.executionContext
}

// Error attaches a fatal finding to the current path.
func (lintContext *Context) Error(format string, arguments ...any) {
	lintContext.Report(findings.NewError(lintContext.path, fmt.Sprintf(format, arguments...)))
}

// Warning attaches an advisory finding to the current path.
func (lintContext *Context) Warning(format string, arguments ...any) {
	lintContext.Report(findings.NewWarning(lintContext.path, fmt.Sprintf(format, arguments...)))
}

// Report attaches prepared findings to the current path.
func (lintContext *Context) Report(reported ...findings.Finding) {
	lintContext.results.AddAll(lintContext.path, reported)
	lintContext.results.MarkLinted(lintContext.path, lintContext.kind)
}

// MarkLinted records that at least one node handled the current path.
func (lintContext *Context) MarkLinted() {
	lintContext.results.MarkLinted(lintContext.path, lintContext.kind)
}
