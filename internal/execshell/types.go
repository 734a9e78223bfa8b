package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	// FilePathPlaceholderConstant is replaced by the inspected file path in command templates.
	FilePathPlaceholderConstant = "%s"

	commandFailedTemplateConstant    = "%s exited with code %d"
	commandExecutionTemplateConstant = "%s could not be executed: %v"
)

var (
	// ErrLoggerNotConfigured indicates that a ShellExecutor was built without a logger.
	ErrLoggerNotConfigured = errors.New("execshell: logger not configured")
	// ErrCommandRunnerNotConfigured indicates that a ShellExecutor was built without a runner.
	ErrCommandRunnerNotConfigured = errors.New("execshell: command runner not configured")
	// ErrEmptyCommandLine indicates a command template without an executable.
	ErrEmptyCommandLine = errors.New("execshell: empty command line")
)

// CommandName is the executable invoked by a ShellCommand.
type CommandName string

// CommandDetails carries everything but the executable. An empty
// WorkingDirectory runs the command in flint's own working directory.
type CommandDetails struct {
	Arguments        []string
	WorkingDirectory string
}

// ShellCommand is one external process invocation.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable outcome of a process.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CombinedOutput joins standard output and standard error, trimmed.
func (result ExecutionResult) CombinedOutput() string {
	return strings.TrimSpace(strings.TrimSpace(result.StandardOutput) + "\n" + strings.TrimSpace(result.StandardError))
}

// CommandRunner starts processes.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a process that exited with a non-zero code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

func (failure CommandFailedError) Error() string {
	return fmt.Sprintf(commandFailedTemplateConstant, failure.Command.Name, failure.Result.ExitCode)
}

// CommandExecutionError reports a process that could not be started.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionTemplateConstant, failure.Command.Name, failure.Cause)
}

func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// CommandFromTemplate builds a ShellCommand from a command line template. Every
// argument equal to or containing FilePathPlaceholderConstant receives filePath.
func CommandFromTemplate(template []string, filePath string) (ShellCommand, error) {
	if len(template) == 0 || len(strings.TrimSpace(template[0])) == 0 {
		return ShellCommand{}, ErrEmptyCommandLine
	}
	arguments := make([]string, 0, len(template)-1)
	for _, argument := range template[1:] {
		arguments = append(arguments, strings.ReplaceAll(argument, FilePathPlaceholderConstant, filePath))
	}
	return ShellCommand{
		Name:    CommandName(strings.ReplaceAll(template[0], FilePathPlaceholderConstant, filePath)),
		Details: CommandDetails{Arguments: arguments},
	}, nil
}
