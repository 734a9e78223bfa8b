// Package execshell runs external tools such as JavaScript linters and the
// commands named by ShellCommand lint nodes.
//
// ShellExecutor logs every invocation through zap and reports non-zero exits as
// CommandFailedError. OSCommandRunner is the os/exec backed CommandRunner.
package execshell
