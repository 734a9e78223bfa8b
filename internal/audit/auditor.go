package audit

import (
	"context"
	"regexp"

	"github.com/temirov/flint/internal/findings"
)

// Auditor inspects repositories file by file.
type Auditor interface {
	// ShouldAuditRepository reports whether any file of the repository is inspected.
	ShouldAuditRepository(repositoryPath string) bool
	// CanAuditFile reports whether AuditFile understands filePath.
	CanAuditFile(filePath string) bool
	// AuditFile inspects one file. Problems reading or parsing it are findings,
	// not errors.
	AuditFile(executionContext context.Context, filePath string) []findings.Finding
}

// CompositeAuditor fans a file out to every child auditor that accepts it.
type CompositeAuditor struct {
	auditors []Auditor
}

// NewCompositeAuditor combines auditors; nil entries are dropped.
func NewCompositeAuditor(auditors ...Auditor) *CompositeAuditor {
	retained := make([]Auditor, 0, len(auditors))
	for _, auditor := range auditors {
		if auditor != nil {
			retained = append(retained, auditor)
		}
	}
	return &CompositeAuditor{auditors: retained}
}

// ShouldAuditRepository accepts every repository.
func (composite *CompositeAuditor) ShouldAuditRepository(repositoryPath string) bool {
	return true
}

// CanAuditFile reports whether any child accepts filePath.
func (composite *CompositeAuditor) CanAuditFile(filePath string) bool {
	for _, auditor := range composite.auditors {
		if auditor.CanAuditFile(filePath) {
			return true
		}
	}
	return false
}

// AuditFile concatenates the findings of every child that accepts filePath, in
// child order.
func (composite *CompositeAuditor) AuditFile(executionContext context.Context, filePath string) []findings.Finding {
	var collected []findings.Finding
	for _, auditor := range composite.auditors {
		if auditor.CanAuditFile(filePath) {
			collected = append(collected, auditor.AuditFile(executionContext, filePath)...)
		}
	}
	return collected
}

// RepositoryFilter restricts a delegate auditor to repositories whose path
// matches an expression.
type RepositoryFilter struct {
	expression *regexp.Regexp
	delegate   Auditor
}

// NewRepositoryFilter wraps delegate.
func NewRepositoryFilter(expression *regexp.Regexp, delegate Auditor) *RepositoryFilter {
	return &RepositoryFilter{expression: expression, delegate: delegate}
}

// ShouldAuditRepository searches the repository path for the expression.
func (filter *RepositoryFilter) ShouldAuditRepository(repositoryPath string) bool {
	return filter.expression.MatchString(repositoryPath) && filter.delegate.ShouldAuditRepository(repositoryPath)
}

// CanAuditFile defers to the delegate.
func (filter *RepositoryFilter) CanAuditFile(filePath string) bool {
	return filter.delegate.CanAuditFile(filePath)
}

// AuditFile defers to the delegate.
func (filter *RepositoryFilter) AuditFile(executionContext context.Context, filePath string) []findings.Finding {
	return filter.delegate.AuditFile(executionContext, filePath)
}
