package export

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/temirov/flint/internal/document"
	"github.com/temirov/flint/internal/filesystem"
)

// Formats accepted by Convert.
const (
	FormatJSON       = "json"
	FormatJavaScript = "js"
)

const (
	processorsKeyConstant         = "processors"
	configKeyConstant             = "config"
	listingHeaderTemplate         = "/**\n * Input File: %s\n */\n"
	listingFunctionTemplate       = "\nfunction %s() {\n%s\n}\n"
	listingIndentConstant         = "    "
	identifierReplacementConstant = '_'
	unsupportedConversionTemplate = "%w: %s to %s"
)

// ErrUnsupportedConversion reports a direction Convert cannot produce.
var ErrUnsupportedConversion = errors.New("unsupported conversion")

// SupportedFormats lists the formats accepted by Convert.
func SupportedFormats() []string {
	return []string{FormatJSON, FormatJavaScript}
}

// Converter renders flow files into other formats.
type Converter struct {
	fileSystem       filesystem.FileSystem
	scriptProperties []string
}

// NewConverter constructs a Converter reading processor scripts stored under
// the given config keys. A nil file system selects the operating system.
func NewConverter(fileSystem filesystem.FileSystem, scriptProperties []string) *Converter {
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	return &Converter{fileSystem: fileSystem, scriptProperties: append([]string{}, scriptProperties...)}
}

// Convert renders inputPath from one format into another. Converting a format
// into itself yields changed=false and no output. Only json to js is supported
// otherwise.
func (converter *Converter) Convert(inputPath string, fromFormat string, toFormat string) (output string, changed bool, conversionError error) {
	if fromFormat == toFormat {
		return "", false, nil
	}
	if fromFormat != FormatJSON || toFormat != FormatJavaScript {
		return "", false, fmt.Errorf(unsupportedConversionTemplate, ErrUnsupportedConversion, fromFormat, toFormat)
	}
	listing, listingError := converter.ScriptListing(inputPath)
	if listingError != nil {
		return "", false, listingError
	}
	return listing, true, nil
}

// ScriptListing repairs and parses a flow file and renders each processor
// script as a function named after its processor, in document order. The file
// may hold one flow or a list of flows.
func (converter *Converter) ScriptListing(inputPath string) (string, error) {
	parsedValue, loadError := loadFlowDocument(converter.fileSystem, inputPath)
	if loadError != nil {
		return "", loadError
	}

	flows, isList := parsedValue.([]any)
	if !isList {
		flows = []any{parsedValue}
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, listingHeaderTemplate, inputPath)
	for _, flow := range flows {
		processors := mappingEntry(flow, processorsKeyConstant)
		if processors == nil {
			continue
		}
		processors.Range(func(processorName string, definition any) bool {
			configuration := mappingEntry(definition, configKeyConstant)
			if configuration == nil {
				return true
			}
			for _, property := range converter.scriptProperties {
				entry, _ := configuration.Get(property)
				if body, isString := entry.(string); isString {
					fmt.Fprintf(&builder, listingFunctionTemplate, functionIdentifier(processorName), indentListing(body))
				}
			}
			return true
		})
	}
	return builder.String(), nil
}

func mappingEntry(value any, key string) *document.Mapping {
	mapping, isMapping := value.(*document.Mapping)
	if !isMapping {
		return nil
	}
	entry, found := mapping.Get(key)
	if !found {
		return nil
	}
	entryMapping, _ := entry.(*document.Mapping)
	return entryMapping
}

func indentListing(body string) string {
	lines := document.ScriptBodyLines(strings.TrimSpace(body))
	for lineIndex, line := range lines {
		if len(line) > 0 {
			lines[lineIndex] = listingIndentConstant + line
		}
	}
	return strings.Join(lines, lineBreakConstant)
}

// functionIdentifier maps a processor name onto a JavaScript identifier.
func functionIdentifier(processorName string) string {
	identifier := []rune(processorName)
	for runeIndex, character := range identifier {
		if !unicode.IsLetter(character) && !unicode.IsDigit(character) && character != '_' && character != '$' {
			identifier[runeIndex] = identifierReplacementConstant
		}
	}
	if len(identifier) == 0 || unicode.IsDigit(identifier[0]) {
		identifier = append([]rune{identifierReplacementConstant}, identifier...)
	}
	return string(identifier)
}
