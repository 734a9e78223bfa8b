package audit

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/flint/internal/contextpath"
	"github.com/temirov/flint/internal/document"
	"github.com/temirov/flint/internal/filesystem"
	"github.com/temirov/flint/internal/findings"
	"github.com/temirov/flint/internal/secrets"
	"github.com/temirov/flint/internal/walker"
)

const (
	// DefaultIncludeSegmentConstant selects shared configuration files.
	DefaultIncludeSegmentConstant = "/sharedConfig/"

	jsonExtensionConstant            = ".json"
	jsonSyntaxErrorTemplate          = "JSON Syntax Error:\n\tFile: %s\n\tError: %v"
	unreadableFileTemplate           = "could not read file: %v"
	fileUnreadableMessageConstant    = "file unreadable"
	fileAuditedMessageConstant       = "shared configuration audited"
	logFieldFilePathConstant         = "file_path"
	logFieldFindingCountConstant     = "finding_count"
	logFieldRepositoryPathConstant   = "repository_path"
	logFieldRepositoryCountConstant  = "repository_count"
	logFieldRootsConstant            = "roots"
	logFieldAuditedFileCountConstant = "audited_file_count"
)

// SharedConfigAuditor looks for unsecured secrets in JSON shared configuration.
type SharedConfigAuditor struct {
	fileSystem     filesystem.FileSystem
	includeSegment string
	strict         bool
	rule           *secrets.Rule
	logger         *zap.Logger
}

// SharedConfigOption customizes a SharedConfigAuditor.
type SharedConfigOption func(*SharedConfigAuditor)

// WithIncludeSegment replaces the path fragment a file must contain.
func WithIncludeSegment(segment string) SharedConfigOption {
	return func(auditor *SharedConfigAuditor) {
		if len(strings.TrimSpace(segment)) > 0 {
			auditor.includeSegment = segment
		}
	}
}

// WithStrictParsing disables the permissive parsing fallback.
func WithStrictParsing(strict bool) SharedConfigOption {
	return func(auditor *SharedConfigAuditor) {
		auditor.strict = strict
	}
}

// WithSecretRule replaces the default secrets rule.
func WithSecretRule(rule *secrets.Rule) SharedConfigOption {
	return func(auditor *SharedConfigAuditor) {
		if rule != nil {
			auditor.rule = rule
		}
	}
}

// WithFileSystem replaces the operating system file access.
func WithFileSystem(fileSystem filesystem.FileSystem) SharedConfigOption {
	return func(auditor *SharedConfigAuditor) {
		if fileSystem != nil {
			auditor.fileSystem = fileSystem
		}
	}
}

// NewSharedConfigAuditor constructs an auditor with the default pattern table.
func NewSharedConfigAuditor(logger *zap.Logger, options ...SharedConfigOption) *SharedConfigAuditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	auditor := &SharedConfigAuditor{
		fileSystem:     filesystem.OSFileSystem{},
		includeSegment: DefaultIncludeSegmentConstant,
		logger:         logger,
	}
	for _, option := range options {
		if option != nil {
			option(auditor)
		}
	}
	if auditor.rule == nil {
		auditor.rule = secrets.NewRule(secrets.WithLogger(logger))
	}
	return auditor
}

// ShouldAuditRepository accepts every repository.
func (auditor *SharedConfigAuditor) ShouldAuditRepository(repositoryPath string) bool {
	return true
}

// CanAuditFile accepts files below the include segment whose extension is
// exactly .json.
func (auditor *SharedConfigAuditor) CanAuditFile(filePath string) bool {
	return strings.Contains(filepath.ToSlash(filePath), auditor.includeSegment) && filepath.Ext(filePath) == jsonExtensionConstant
}

// AuditFile parses filePath and walks it with the secrets rule.
func (auditor *SharedConfigAuditor) AuditFile(executionContext context.Context, filePath string) []findings.Finding {
	content, readError := auditor.fileSystem.ReadFile(filePath)
	if readError != nil {
		auditor.logger.Warn(fileUnreadableMessageConstant, zap.String(logFieldFilePathConstant, filePath), zap.Error(readError))
		return []findings.Finding{findings.NewError(filePath, fmt.Sprintf(unreadableFileTemplate, readError))}
	}

	parsedValue, parseError := document.Parse(string(content), auditor.strict)
	if parseError != nil {
		return []findings.Finding{findings.NewError(filePath, fmt.Sprintf(jsonSyntaxErrorTemplate, filePath, parseError))}
	}

	collected := walker.New(auditor.rule, auditor.logger).Walk(filePath, contextpath.Root(), parsedValue)
	auditor.logger.Debug(fileAuditedMessageConstant, zap.String(logFieldFilePathConstant, filePath), zap.Int(logFieldFindingCountConstant, len(collected)))
	return collected
}
