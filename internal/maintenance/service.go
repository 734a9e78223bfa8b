package maintenance

import (
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"github.com/temirov/flint/internal/document"
	"github.com/temirov/flint/internal/filesystem"
	"github.com/temirov/flint/internal/jsonrepair"
)

const (
	defaultFilePermissions           = fs.FileMode(0o644)
	readFailureTemplate              = "unable to read %s: %w"
	writeFailureTemplate             = "unable to write %s: %w"
	repairFailureTemplate            = "unable to repair %s: %w"
	parseFailureTemplate             = "unable to parse %s after repair: %w"
	formatFailureTemplate            = "unable to format %s: %w"
	fileFixedMessageConstant         = "file repaired"
	fileFormattedMessageConstant     = "file formatted"
	fileUnchangedMessageConstant     = "file already up to date"
	formatterConfiguredMessage       = "formatter configured"
	logFieldFilePathConstant         = "file_path"
	logFieldScriptPropertiesConstant = "script_properties"
)

// Service repairs and formats files through a FileSystem.
type Service struct {
	fileSystem filesystem.FileSystem
	formatter  *document.Formatter
	logger     *zap.Logger
}

// NewService constructs a Service. scriptProperties selects the keys whose
// values the formatter writes as multi-line bodies.
func NewService(fileSystem filesystem.FileSystem, scriptProperties []string, logger *zap.Logger) *Service {
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(formatterConfiguredMessage, zap.Strings(logFieldScriptPropertiesConstant, scriptProperties))
	return &Service{
		fileSystem: fileSystem,
		formatter:  document.NewFormatter(scriptProperties),
		logger:     logger,
	}
}

// FixFiles repairs every file in place. A file that cannot be repaired is left
// untouched; the remaining files are still processed and all failures are
// returned together.
func (service *Service) FixFiles(filePaths []string) error {
	var failures []error
	for _, filePath := range filePaths {
		if fixError := service.FixFile(filePath); fixError != nil {
			failures = append(failures, fixError)
		}
	}
	return errors.Join(failures...)
}

// FormatFiles formats every file in place with the same failure handling as FixFiles.
func (service *Service) FormatFiles(filePaths []string) error {
	var failures []error
	for _, filePath := range filePaths {
		if formatError := service.FormatFile(filePath); formatError != nil {
			failures = append(failures, formatError)
		}
	}
	return errors.Join(failures...)
}

// FixFile runs the repair engine over one file and writes the result back.
func (service *Service) FixFile(filePath string) error {
	content, permissions, readError := service.read(filePath)
	if readError != nil {
		return readError
	}

	repaired, repairError := jsonrepair.Repair(content)
	if repairError != nil {
		return fmt.Errorf(repairFailureTemplate, filePath, repairError)
	}

	if writeError := service.write(filePath, content, repaired, permissions); writeError != nil {
		return writeError
	}
	service.logger.Debug(fileFixedMessageConstant, zap.String(logFieldFilePathConstant, filePath))
	return nil
}

// FormatFile repairs, strictly parses, and pretty prints one file.
func (service *Service) FormatFile(filePath string) error {
	content, permissions, readError := service.read(filePath)
	if readError != nil {
		return readError
	}

	repaired, repairError := jsonrepair.Repair(content)
	if repairError != nil {
		return fmt.Errorf(repairFailureTemplate, filePath, repairError)
	}

	parsedValue, parseError := document.ParseStrict(repaired)
	if parseError != nil {
		return fmt.Errorf(parseFailureTemplate, filePath, parseError)
	}

	formatted, formatError := service.formatter.Format(parsedValue)
	if formatError != nil {
		return fmt.Errorf(formatFailureTemplate, filePath, formatError)
	}

	if writeError := service.write(filePath, content, formatted, permissions); writeError != nil {
		return writeError
	}
	service.logger.Debug(fileFormattedMessageConstant, zap.String(logFieldFilePathConstant, filePath))
	return nil
}

func (service *Service) read(filePath string) (string, fs.FileMode, error) {
	permissions := defaultFilePermissions
	if fileInfo, statError := service.fileSystem.Stat(filePath); statError == nil {
		permissions = fileInfo.Mode().Perm()
	}
	content, readError := service.fileSystem.ReadFile(filePath)
	if readError != nil {
		return "", 0, fmt.Errorf(readFailureTemplate, filePath, readError)
	}
	return string(content), permissions, nil
}

func (service *Service) write(filePath string, original string, updated string, permissions fs.FileMode) error {
	if original == updated {
		service.logger.Debug(fileUnchangedMessageConstant, zap.String(logFieldFilePathConstant, filePath))
		return nil
	}
	if writeError := service.fileSystem.WriteFile(filePath, []byte(updated), permissions); writeError != nil {
		return fmt.Errorf(writeFailureTemplate, filePath, writeError)
	}
	return nil
}
