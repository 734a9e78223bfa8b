package audit

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/flint/internal/findings"
)

const (
	repositoryDiscoveredMessageConstant = "repository discovered"
	repositorySkippedMessageConstant    = "repository skipped by filter"
	fileAuditStartedMessageConstant     = "auditing file"
	auditCompletedMessageConstant       = "audit completed"
	repositoryListingErrorTemplate      = "unable to list files of repository %s: %w"
	repositoryDiscoveryErrorTemplate    = "unable to discover repositories: %w"
)

// CommandOptions captures the runtime parameters of one audit.
type CommandOptions struct {
	Roots []string
}

// Service coordinates repository discovery, auditing, and reporting.
type Service struct {
	discoverer   RepositoryDiscoverer
	auditor      Auditor
	outputWriter io.Writer
	logger       *zap.Logger
}

// NewService constructs a Service. A nil discoverer selects the file system
// discoverer and a nil writer discards the report.
func NewService(discoverer RepositoryDiscoverer, auditor Auditor, outputWriter io.Writer, logger *zap.Logger) *Service {
	if outputWriter == nil {
		outputWriter = io.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		discoverer:   resolveRepositoryDiscoverer(discoverer),
		auditor:      auditor,
		outputWriter: outputWriter,
		logger:       logger,
	}
}

// Run audits every repository below the roots, prints numbered findings and
// the summary, and returns findings.ErrRunFailed when a fatal finding exists.
func (service *Service) Run(executionContext context.Context, options CommandOptions) error {
	results, auditError := service.AuditRepositories(executionContext, options.Roots)
	if auditError != nil {
		return auditError
	}

	collected := results.Findings()
	if writeError := findings.WriteNumbered(service.outputWriter, collected); writeError != nil {
		return writeError
	}
	if len(collected) > 0 {
		if _, writeError := fmt.Fprintln(service.outputWriter); writeError != nil {
			return writeError
		}
	}
	summary := results.Summarize(nil)
	if writeError := findings.WriteSummary(service.outputWriter, summary); writeError != nil {
		return writeError
	}

	service.logger.Info(
		auditCompletedMessageConstant,
		zap.Strings(logFieldRootsConstant, options.Roots),
		zap.Int(logFieldRepositoryCountConstant, summary.Directories),
		zap.Int(logFieldAuditedFileCountConstant, summary.Files),
		zap.Int(logFieldFindingCountConstant, len(collected)),
	)

	if !summary.Passed {
		return findings.ErrRunFailed
	}
	return nil
}

// AuditRepositories discovers repositories below roots and audits every file
// the auditor accepts. Audited repositories are recorded as directories and
// audited files as files, each in discovery order.
func (service *Service) AuditRepositories(executionContext context.Context, roots []string) (*findings.Results, error) {
	repositories, discoveryError := service.discoverer.DiscoverRepositories(roots)
	if discoveryError != nil {
		return nil, fmt.Errorf(repositoryDiscoveryErrorTemplate, discoveryError)
	}

	results := findings.NewResults()
	for _, repositoryPath := range repositories {
		if !service.auditor.ShouldAuditRepository(repositoryPath) {
			service.logger.Debug(repositorySkippedMessageConstant, zap.String(logFieldRepositoryPathConstant, repositoryPath))
			continue
		}
		service.logger.Debug(repositoryDiscoveredMessageConstant, zap.String(logFieldRepositoryPathConstant, repositoryPath))
		results.MarkLinted(repositoryPath, findings.PathKindDirectory)

		repositoryFiles, listingError := service.discoverer.RepositoryFiles(repositoryPath)
		if listingError != nil {
			return nil, fmt.Errorf(repositoryListingErrorTemplate, repositoryPath, listingError)
		}

		for _, filePath := range repositoryFiles {
			if executionContext.Err() != nil {
				return nil, executionContext.Err()
			}
			if !service.auditor.CanAuditFile(filePath) {
				continue
			}
			service.logger.Debug(fileAuditStartedMessageConstant, zap.String(logFieldFilePathConstant, filePath))
			results.MarkLinted(filePath, findings.PathKindFile)
			results.AddAll(filePath, service.auditor.AuditFile(executionContext, filePath))
		}
	}
	return results, nil
}
