package export

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/flint/internal/contextpath"
	"github.com/temirov/flint/internal/document"
	"github.com/temirov/flint/internal/filesystem"
)

const (
	flowNameSeparatorConstant      = "@"
	nameKeyConstant                = "name"
	scriptExtensionConstant        = ".js"
	flowNameSegmentIndexConstant   = 2
	stepNameSegmentIndexConstant   = 4
	directoryPermissionsConstant   = fs.FileMode(0o755)
	filePermissionsConstant        = fs.FileMode(0o644)
	bodyIndentConstant             = "  "
	escapedLineBreakConstant       = `\n`
	lineBreakConstant              = "\n"
	importSeparatorConstant        = ", "
	scriptPrologueTemplate         = "'use strict';\n/**\n * Flow: %s\n * Step: %s\n */\n(function(%s) {\n"
	scriptEpilogueConstant         = "\n})();\n"
	unsafePathTemplate             = "%w: %s"
	createDirectoryFailureTemplate = "unable to create %s: %w"
	writeFailureTemplate           = "unable to write %s: %w"
	scriptExportedMessageConstant  = "script exported"
	scriptSkippedMessageConstant   = "script outside a flow step skipped"
	logFieldFilePathConstant       = "file_path"
	logFieldOutputPathConstant     = "output_path"
	logFieldContextConstant        = "context"
)

// ErrUnsafeExportPath reports a flow or step name that would place a script
// outside the output directory.
var ErrUnsafeExportPath = errors.New("export path escapes the output directory")

// ScriptSource is one script body found in a flow file.
type ScriptSource struct {
	FlowName string
	StepName string
	Body     string
}

// RelativePath lays the script out as <reversed flow name segments>/<step>.js.
func (source ScriptSource) RelativePath() (string, error) {
	segments := strings.Split(source.FlowName, flowNameSeparatorConstant)
	reversed := make([]string, 0, len(segments)+1)
	for segmentIndex := len(segments) - 1; segmentIndex >= 0; segmentIndex-- {
		reversed = append(reversed, segments[segmentIndex])
	}
	relativePath := filepath.Join(append(reversed, source.StepName+scriptExtensionConstant)...)
	if !filepath.IsLocal(relativePath) {
		return "", fmt.Errorf(unsafePathTemplate, ErrUnsafeExportPath, relativePath)
	}
	return relativePath, nil
}

// Render wraps the body in a strict-mode function whose parameters are the
// runtime symbols the body uses. Escaped line breaks left in the body become
// real ones and every line is indented by two spaces.
func (source ScriptSource) Render(patterns []SymbolPattern) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, scriptPrologueTemplate, source.FlowName, source.StepName, strings.Join(ResolveImports(patterns, source.Body), importSeparatorConstant))

	body := strings.ReplaceAll(strings.TrimSpace(source.Body), escapedLineBreakConstant, lineBreakConstant)
	lines := document.ScriptBodyLines(body)
	for lineIndex, line := range lines {
		lines[lineIndex] = bodyIndentConstant + line
	}
	builder.WriteString(strings.Join(lines, lineBreakConstant))
	builder.WriteString(scriptEpilogueConstant)
	return builder.String()
}

// Exporter writes the scripts of flow files below an output directory.
type Exporter struct {
	fileSystem       filesystem.FileSystem
	outputDirectory  string
	scriptProperties map[string]struct{}
	symbolPatterns   []SymbolPattern
	logger           *zap.Logger
}

// NewExporter constructs an Exporter. Nil collaborators select the operating
// system file system and a no-op logger.
func NewExporter(fileSystem filesystem.FileSystem, configuration CommandConfiguration, logger *zap.Logger) *Exporter {
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	propertySet := make(map[string]struct{}, len(configuration.ScriptProperties))
	for _, property := range configuration.ScriptProperties {
		propertySet[property] = struct{}{}
	}
	return &Exporter{
		fileSystem:       fileSystem,
		outputDirectory:  configuration.OutputDirectory,
		scriptProperties: propertySet,
		symbolPatterns:   DefaultSymbolPatterns(),
		logger:           logger,
	}
}

// ExportFiles exports every file. A failing file does not stop the others and
// all failures are returned together.
func (exporter *Exporter) ExportFiles(filePaths []string) ([]string, error) {
	var written []string
	var failures []error
	for _, filePath := range filePaths {
		exported, exportError := exporter.ExportFile(filePath)
		written = append(written, exported...)
		if exportError != nil {
			failures = append(failures, exportError)
		}
	}
	return written, errors.Join(failures...)
}

// ExportFile writes one script per step of filePath and returns the written
// paths in document order. A later step that maps to an existing path replaces it.
func (exporter *Exporter) ExportFile(filePath string) ([]string, error) {
	parsedValue, loadError := loadFlowDocument(exporter.fileSystem, filePath)
	if loadError != nil {
		return nil, loadError
	}

	var written []string
	for _, source := range exporter.CollectScripts(filePath, parsedValue) {
		outputPath, writeError := exporter.write(source)
		if writeError != nil {
			return written, writeError
		}
		exporter.logger.Debug(scriptExportedMessageConstant, zap.String(logFieldFilePathConstant, filePath), zap.String(logFieldOutputPathConstant, outputPath))
		written = append(written, outputPath)
	}
	return written, nil
}

// CollectScripts walks a parsed flow file. Each mapping carrying a name adds it
// to the path of its children; a script property found at a path of at least
// file/index/flow/section/step yields a ScriptSource for that flow and step.
func (exporter *Exporter) CollectScripts(filePath string, value any) []ScriptSource {
	var sources []ScriptSource
	exporter.collect(contextpath.New(filePath), value, &sources)
	return sources
}

func (exporter *Exporter) collect(path contextpath.ContextPath, value any, sources *[]ScriptSource) {
	switch typed := value.(type) {
	case []any:
		for elementIndex, element := range typed {
			exporter.collect(path.AppendIndex(elementIndex), element, sources)
		}
	case *document.Mapping:
		if name, named := typed.Get(nameKeyConstant); named {
			path = path.Append(contextpath.Segment(name))
		}
		typed.Range(func(key string, entry any) bool {
			exporter.collect(path.Append(key), entry, sources)
			return true
		})
	case string:
		if _, isScript := exporter.scriptProperties[path.Last()]; !isScript {
			return
		}
		segments := path.Segments()
		if len(segments) <= stepNameSegmentIndexConstant {
			exporter.logger.Warn(scriptSkippedMessageConstant, zap.String(logFieldContextConstant, path.String()))
			return
		}
		*sources = append(*sources, ScriptSource{
			FlowName: segments[flowNameSegmentIndexConstant],
			StepName: segments[stepNameSegmentIndexConstant],
			Body:     typed,
		})
	}
}

func (exporter *Exporter) write(source ScriptSource) (string, error) {
	relativePath, pathError := source.RelativePath()
	if pathError != nil {
		return "", pathError
	}
	outputPath := filepath.Join(exporter.outputDirectory, relativePath)
	if mkdirError := exporter.fileSystem.MkdirAll(filepath.Dir(outputPath), directoryPermissionsConstant); mkdirError != nil {
		return "", fmt.Errorf(createDirectoryFailureTemplate, filepath.Dir(outputPath), mkdirError)
	}
	if writeError := exporter.fileSystem.WriteFile(outputPath, []byte(source.Render(exporter.symbolPatterns)), filePermissionsConstant); writeError != nil {
		return "", fmt.Errorf(writeFailureTemplate, outputPath, writeError)
	}
	return outputPath, nil
}
