package document

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

const (
	indentUnitConstant      = "  "
	lineBreakConstant       = "\n"
	entrySeparatorConstant  = ","
	keyTemplateConstant     = "\"%s\": "
	backslashConstant       = `\`
	escapedBackslash        = `\\`
	quoteConstant           = `"`
	escapedQuoteConstant    = `\"`
	trueLiteralConstant     = "true"
	falseLiteralConstant    = "false"
	nullLiteralConstant     = "null"
	unsupportedTypeTemplate = "unsupported value type %T"
)

// DefaultScriptProperties names the keys whose string values hold script bodies.
var DefaultScriptProperties = []string{"jsFunc", "testDataTransformFunc", "testData", "assertionFunc"}

// Formatter pretty prints parsed values one entry per line. Values of script
// properties are written as raw multi-line bodies so they stay readable; the
// output is therefore not strict JSON until it is run through the repair engine.
type Formatter struct {
	scriptProperties map[string]struct{}
}

// NewFormatter constructs a Formatter treating the given keys as script bodies.
func NewFormatter(scriptProperties []string) *Formatter {
	propertySet := make(map[string]struct{}, len(scriptProperties))
	for _, property := range scriptProperties {
		propertySet[property] = struct{}{}
	}
	return &Formatter{scriptProperties: propertySet}
}

// Format renders value starting at indentation level zero.
func (formatter *Formatter) Format(value any) (string, error) {
	var builder strings.Builder
	if formatError := formatter.write(&builder, value, 0); formatError != nil {
		return "", formatError
	}
	return builder.String(), nil
}

func (formatter *Formatter) write(builder *strings.Builder, value any, level int) error {
	switch typed := value.(type) {
	case *Mapping:
		return formatter.writeMapping(builder, typed, level)
	case []any:
		return formatter.writeSequence(builder, typed, level)
	case string:
		builder.WriteString(quoteConstant)
		builder.WriteString(escapeFormattedString(typed))
		builder.WriteString(quoteConstant)
	case json.Number:
		builder.WriteString(typed.String())
	case bool:
		if typed {
			builder.WriteString(trueLiteralConstant)
		} else {
			builder.WriteString(falseLiteralConstant)
		}
	case nil:
		builder.WriteString(nullLiteralConstant)
	default:
		return fmt.Errorf(unsupportedTypeTemplate, value)
	}
	return nil
}

func (formatter *Formatter) writeMapping(builder *strings.Builder, mapping *Mapping, level int) error {
	builder.WriteString("{")
	var writeError error
	first := true
	mapping.Range(func(key string, entry any) bool {
		if !first {
			builder.WriteString(entrySeparatorConstant)
		}
		first = false
		builder.WriteString(indent(fmt.Sprintf(keyTemplateConstant, key), level+1))

		scriptBody, isString := entry.(string)
		if _, isScript := formatter.scriptProperties[key]; isScript && isString && len(scriptBody) > 0 {
			builder.WriteString(quoteConstant)
			builder.WriteString(indent(formatScriptBody(scriptBody)+lineBreakConstant+quoteConstant, 0))
			return true
		}
		writeError = formatter.write(builder, entry, level+1)
		return writeError == nil
	})
	if writeError != nil {
		return writeError
	}
	if mapping.Len() > 0 {
		builder.WriteString(indent("}", level))
	} else {
		builder.WriteString("}")
	}
	return nil
}

func (formatter *Formatter) writeSequence(builder *strings.Builder, sequence []any, level int) error {
	builder.WriteString("[")
	for elementIndex, element := range sequence {
		if elementIndex > 0 {
			builder.WriteString(entrySeparatorConstant)
		}
		builder.WriteString(indent("", level+1))
		if writeError := formatter.write(builder, element, level+1); writeError != nil {
			return writeError
		}
	}
	if len(sequence) > 0 {
		builder.WriteString(indent("]", level))
	} else {
		builder.WriteString("]")
	}
	return nil
}

// indent starts a new line and prefixes every line of text with level indent units.
func indent(text string, level int) string {
	prefix := strings.Repeat(indentUnitConstant, level)
	lines := strings.Split(text, lineBreakConstant)
	for lineIndex, line := range lines {
		lines[lineIndex] = prefix + line
	}
	return lineBreakConstant + strings.Join(lines, lineBreakConstant)
}

func escapeFormattedString(text string) string {
	escaped := strings.ReplaceAll(text, backslashConstant, escapedBackslash)
	return strings.ReplaceAll(escaped, quoteConstant, escapedQuoteConstant)
}

// formatScriptBody trims and escapes the body and strips trailing blanks per line.
func formatScriptBody(body string) string {
	return strings.Join(ScriptBodyLines(escapeFormattedString(strings.TrimSpace(body))), lineBreakConstant)
}

// ScriptBodyLines splits a script body into lines without trailing whitespace.
func ScriptBodyLines(body string) []string {
	lines := strings.Split(body, lineBreakConstant)
	for lineIndex, line := range lines {
		lines[lineIndex] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	return lines
}
