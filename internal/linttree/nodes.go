package linttree

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/flint/internal/execshell"
	"github.com/temirov/flint/internal/filesystem"
	"github.com/temirov/flint/internal/findings"
)

const (
	missingDirectoryTemplate     = "required directory '%s' does not exist"
	missingFileTemplate          = "Could not find file: %s"
	tooFewMatchesTemplate        = "'%s' should have had at least %d matches but it only had %d matches."
	tooManyMatchesTemplate       = "'%s' should have had at most %d matches but it had %d matches."
	globFailedTemplate           = "'%s' could not be matched: %v"
	functionFailedTemplate       = "function: '%s' failed."
	functionFailedWithTemplate   = "function: '%s' failed with '%s'."
	notAFileTemplate             = "%s is not a file"
	commandFailedTemplate        = "non-zero return code (%d) returned from '%s'. Output: %s"
	commandNotRunTemplate        = "Error running: '%s' %v"
	commandLineSeparatorConstant = " "
	logFieldPathConstant         = "path"
	logFieldGlobConstant         = "glob"
	logFieldMatchCountConstant   = "match_count"
	globMatchedMessage           = "glob matched"
)

// ErrCheckFailed is returned by Function checks that fail without a reason.
var ErrCheckFailed = errors.New("check failed")

// Node is one element of a lint tree.
type Node interface {
	Lint(lintContext *Context)
}

// Directory selects a subdirectory of the current directory.
type Directory struct {
	Path     string
	Optional bool
	Children []Node
}

// Lint implements Node.
func (directory Directory) Lint(lintContext *Context) {
	directoryContext := lintContext.Cd(directory.Path)
	if directoryContext == nil {
		if !directory.Optional {
			lintContext.Error(missingDirectoryTemplate, directory.Path)
		}
		return
	}
	directoryContext.MarkLinted()
	lintChildren(directoryContext, directory.Children)
}

// File selects a file inside the current directory.
type File struct {
	Path     string
	Optional bool
	Children []Node
}

// Lint implements Node.
func (file File) Lint(lintContext *Context) {
	fileContext := lintContext.WithFilename(file.Path)
	if fileContext == nil {
		if !file.Optional {
			lintContext.Error(missingFileTemplate, file.Path)
		}
		return
	}
	fileContext.MarkLinted()
	lintChildren(fileContext, file.Children)
}

// MatchLimits bounds how many paths a glob may select. A Maximum of zero or less
// leaves the upper end open.
type MatchLimits struct {
	Minimum int
	Maximum int
}

func (limits MatchLimits) check(lintContext *Context, glob string, matchCount int) {
	if matchCount < limits.Minimum {
		lintContext.Error(tooFewMatchesTemplate, glob, limits.Minimum, matchCount)
	}
	if limits.Maximum > 0 && matchCount > limits.Maximum {
		lintContext.Error(tooManyMatchesTemplate, glob, limits.Maximum, matchCount)
	}
}

// Files selects the regular files matching Glob, which may contain "**".
type Files struct {
	Glob     string
	Limits   MatchLimits
	Children []Node
}

// Lint implements Node.
func (files Files) Lint(lintContext *Context) {
	matches, matchError := globMatches(lintContext, files.Glob, filesystem.IsRegularFile)
	if matchError != nil {
		lintContext.Error(globFailedTemplate, files.Glob, matchError)
		return
	}
	for _, match := range matches {
		matchContext := lintContext.WithPath(match, findings.PathKindFile)
		matchContext.MarkLinted()
		lintChildren(matchContext, files.Children)
	}
	files.Limits.check(lintContext, files.Glob, len(matches))
}

// Directories selects the directories matching Glob.
type Directories struct {
	Glob     string
	Limits   MatchLimits
	Children []Node
}

// Lint implements Node.
func (directories Directories) Lint(lintContext *Context) {
	matches, matchError := globMatches(lintContext, directories.Glob, filesystem.IsDirectory)
	if matchError != nil {
		lintContext.Error(globFailedTemplate, directories.Glob, matchError)
		return
	}
	directories.Limits.check(lintContext, directories.Glob, len(matches))
	for _, match := range matches {
		matchContext := lintContext.WithPath(match, findings.PathKindDirectory)
		matchContext.MarkLinted()
		lintChildren(matchContext, directories.Children)
	}
}

func globMatches(lintContext *Context, glob string, accept func(filesystem.FileSystem, string) bool) ([]string, error) {
	candidates, globError := lintContext.FileSystem().Glob(lintContext.Path(), glob)
	if globError != nil {
		return nil, globError
	}
	accepted := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if accept(lintContext.FileSystem(), candidate) {
			accepted = append(accepted, candidate)
		}
	}
	lintContext.Logger().Debug(globMatchedMessage,
		zap.String(logFieldPathConstant, lintContext.Path()),
		zap.String(logFieldGlobConstant, glob),
		zap.Int(logFieldMatchCountConstant, len(accepted)),
	)
	return accepted, nil
}

// CheckFunc inspects the current path. Returning ErrCheckFailed reports a bare
// failure; any other error reports its message.
type CheckFunc func(lintContext *Context) error

// Function runs Check against the current path.
type Function struct {
	Name  string
	Check CheckFunc
}

// Lint implements Node.
func (function Function) Lint(lintContext *Context) {
	checkError := function.Check(lintContext)
	switch {
	case checkError == nil:
	case errors.Is(checkError, ErrCheckFailed):
		lintContext.Error(functionFailedTemplate, function.Name)
	default:
		lintContext.Error(functionFailedWithTemplate, function.Name, checkError.Error())
	}
}

// ShellCommand runs an external command against the current file. Every "%s" in
// CommandLine is replaced by the file path.
type ShellCommand struct {
	CommandLine []string
}

// Lint implements Node.
func (shellCommand ShellCommand) Lint(lintContext *Context) {
	if !filesystem.IsRegularFile(lintContext.FileSystem(), lintContext.Path()) {
		lintContext.Error(notAFileTemplate, lintContext.Path())
		return
	}

	expandedCommandLine := make([]string, 0, len(shellCommand.CommandLine))
	for _, argument := range shellCommand.CommandLine {
		expandedCommandLine = append(expandedCommandLine, strings.ReplaceAll(argument, execshell.FilePathPlaceholderConstant, lintContext.Path()))
	}
	commandLineText := strings.Join(expandedCommandLine, commandLineSeparatorConstant)

	command, templateError := execshell.CommandFromTemplate(shellCommand.CommandLine, lintContext.Path())
	if templateError != nil {
		lintContext.Error(commandNotRunTemplate, commandLineText, templateError)
		return
	}

	_, executionError := lintContext.environment.Executor.Execute(lintContext.ExecutionContext(), command)
	var commandFailed execshell.CommandFailedError
	switch {
	case executionError == nil:
	case errors.As(executionError, &commandFailed):
		lintContext.Error(commandFailedTemplate, commandFailed.Result.ExitCode, commandLineText, commandFailed.Result.StandardError)
	default:
		lintContext.Error(commandNotRunTemplate, commandLineText, executionError)
	}
}

func lintChildren(lintContext *Context, children []Node) {
	for _, child := range children {
		child.Lint(lintContext)
	}
}
