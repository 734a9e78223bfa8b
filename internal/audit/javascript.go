package audit

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/flint/internal/execshell"
	"github.com/temirov/flint/internal/filesystem"
	"github.com/temirov/flint/internal/findings"
)

const (
	// DefaultJavaScriptMaxBytesConstant is the size below which scripts are linted.
	DefaultJavaScriptMaxBytesConstant = 10 * 1024
	// JavaScriptOutputBudgetConstant bounds the linter output kept in a finding.
	JavaScriptOutputBudgetConstant = 512

	javaScriptExtensionConstant     = ".js"
	linterUnavailableTemplate       = "javascript linter could not be executed: %v"
	linterSilentFailureTemplate     = "javascript linter exited with code %d"
	linterTemplateInvalidTemplate   = "javascript linter command is invalid: %v"
	scriptLintedMessageConstant     = "javascript linted"
	logFieldLinterOutputLenConstant = "output_length"
)

// JavaScriptAuditor runs small scripts through an external linter and reports
// whatever it prints.
type JavaScriptAuditor struct {
	fileSystem      filesystem.FileSystem
	executor        CommandExecutor
	commandTemplate []string
	maximumBytes    int64
	logger          *zap.Logger
}

// NewJavaScriptAuditor constructs an auditor. commandTemplate is an argument
// vector whose %s elements receive the script path. A non-positive maximumBytes
// selects DefaultJavaScriptMaxBytesConstant.
func NewJavaScriptAuditor(fileSystem filesystem.FileSystem, executor CommandExecutor, commandTemplate []string, maximumBytes int64, logger *zap.Logger) *JavaScriptAuditor {
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maximumBytes <= 0 {
		maximumBytes = DefaultJavaScriptMaxBytesConstant
	}
	duplicatedTemplate := make([]string, len(commandTemplate))
	copy(duplicatedTemplate, commandTemplate)
	return &JavaScriptAuditor{
		fileSystem:      fileSystem,
		executor:        executor,
		commandTemplate: duplicatedTemplate,
		maximumBytes:    maximumBytes,
		logger:          logger,
	}
}

// ShouldAuditRepository accepts every repository.
func (auditor *JavaScriptAuditor) ShouldAuditRepository(repositoryPath string) bool {
	return true
}

// CanAuditFile accepts .js files strictly smaller than the size limit.
func (auditor *JavaScriptAuditor) CanAuditFile(filePath string) bool {
	if filepath.Ext(filePath) != javaScriptExtensionConstant {
		return false
	}
	fileInfo, statError := auditor.fileSystem.Stat(filePath)
	if statError != nil {
		return false
	}
	return fileInfo.Size() < auditor.maximumBytes
}

// AuditFile runs the linter. Any output becomes a single Error.
func (auditor *JavaScriptAuditor) AuditFile(executionContext context.Context, filePath string) []findings.Finding {
	command, templateError := execshell.CommandFromTemplate(auditor.commandTemplate, filePath)
	if templateError != nil {
		return []findings.Finding{findings.NewError(filePath, fmt.Sprintf(linterTemplateInvalidTemplate, templateError))}
	}

	executionResult, executionError := auditor.executor.Execute(executionContext, command)
	var executionFailure execshell.CommandExecutionError
	if errors.As(executionError, &executionFailure) {
		return []findings.Finding{findings.NewError(filePath, fmt.Sprintf(linterUnavailableTemplate, executionFailure.Cause))}
	}

	output := executionResult.CombinedOutput()
	auditor.logger.Debug(scriptLintedMessageConstant, zap.String(logFieldFilePathConstant, filePath), zap.Int(logFieldLinterOutputLenConstant, len(output)))
	if len(output) > 0 {
		return []findings.Finding{findings.NewError(filePath, findings.Ellipsis(output, JavaScriptOutputBudgetConstant))}
	}
	if executionError != nil {
		return []findings.Finding{findings.NewError(filePath, fmt.Sprintf(linterSilentFailureTemplate, executionResult.ExitCode))}
	}
	return nil
}
