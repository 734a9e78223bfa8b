package execshell

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// OSCommandRunner runs linters as child processes of flint.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run starts command with the inherited environment and collects both output
// streams. A linter that exits non-zero is reported through ExitCode; an error is
// returned only when the process could not be started or was cancelled before it
// produced an exit status.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	process := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	process.Dir = command.Details.WorkingDirectory

	var standardOutput, standardError strings.Builder
	process.Stdout = &standardOutput
	process.Stderr = &standardError

	runError := process.Run()
	var exitError *exec.ExitError
	if runError != nil && !errors.As(runError, &exitError) {
		return ExecutionResult{}, runError
	}
	return ExecutionResult{
		StandardOutput: standardOutput.String(),
		StandardError:  standardError.String(),
		ExitCode:       process.ProcessState.ExitCode(),
	}, nil
}
