package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	tabCharacterConstant        = "\t"
	tabReplacementConstant      = " "
	nodeKindErrorTemplate       = "%w: %d"
	unexpectedTokenTemplate     = "%w: %v"
	unsupportedKeyErrorTemplate = "%w at line %d"
	yamlNullTagConstant         = "!!null"
	yamlBoolTagConstant         = "!!bool"
	yamlIntTagConstant          = "!!int"
	yamlFloatTagConstant        = "!!float"
	embeddedDocumentOpeners     = "{["
	aliasExpansionFactor        = 100
	minimumConversionBudget     = 10000
)

// Parse decodes text with the strict JSON grammar and, unless strict is set, falls
// back to the permissive YAML grammar after replacing tabs with spaces. All failures
// are returned as a *ParseError.
func Parse(text string, strict bool) (any, error) {
	value, strictError := ParseStrict(text)
	if strictError == nil {
		return value, nil
	}
	if strict {
		return nil, &ParseError{StrictError: strictError}
	}

	value, permissiveError := ParsePermissive(text)
	if permissiveError != nil {
		return nil, &ParseError{StrictError: strictError, PermissiveError: permissiveError}
	}
	return value, nil
}

// LooksLikeJSON reports whether text, once trimmed, starts with an object or array
// opener. It is a cheap heuristic: a true result does not mean the text parses.
func LooksLikeJSON(text string) bool {
	trimmed := strings.TrimSpace(text)
	return len(trimmed) > 0 && strings.ContainsRune(embeddedDocumentOpeners, rune(trimmed[0]))
}

// ParseStrict decodes exactly one standard JSON value.
func ParseStrict(text string) (any, error) {
	decoder := json.NewDecoder(strings.NewReader(text))
	decoder.UseNumber()

	value, decodeError := decodeJSONValue(decoder)
	if decodeError != nil {
		if errors.Is(decodeError, io.EOF) {
			return nil, ErrEmptyInput
		}
		return nil, decodeError
	}

	if _, trailingError := decoder.Token(); !errors.Is(trailingError, io.EOF) {
		if trailingError != nil {
			return nil, trailingError
		}
		return nil, ErrTrailingData
	}
	return value, nil
}

func decodeJSONValue(decoder *json.Decoder) (any, error) {
	token, tokenError := decoder.Token()
	if tokenError != nil {
		return nil, tokenError
	}

	delimiter, isDelimiter := token.(json.Delim)
	if !isDelimiter {
		return token, nil
	}

	switch delimiter {
	case '{':
		mapping := NewMapping()
		for decoder.More() {
			keyToken, keyError := decoder.Token()
			if keyError != nil {
				return nil, keyError
			}
			key, isString := keyToken.(string)
			if !isString {
				return nil, fmt.Errorf(unexpectedTokenTemplate, ErrUnexpectedToken, keyToken)
			}
			entryValue, entryError := decodeJSONValue(decoder)
			if entryError != nil {
				return nil, entryError
			}
			mapping.Set(key, entryValue)
		}
		if _, closingError := decoder.Token(); closingError != nil {
			return nil, closingError
		}
		return mapping, nil
	case '[':
		sequence := make([]any, 0)
		for decoder.More() {
			element, elementError := decodeJSONValue(decoder)
			if elementError != nil {
				return nil, elementError
			}
			sequence = append(sequence, element)
		}
		if _, closingError := decoder.Token(); closingError != nil {
			return nil, closingError
		}
		return sequence, nil
	default:
		return nil, fmt.Errorf(unexpectedTokenTemplate, ErrUnexpectedToken, delimiter)
	}
}

// ParsePermissive decodes text as YAML after replacing tabs with spaces. Empty
// input yields a nil value. Aliases are expanded in place, and a document whose
// expansion exceeds a multiple of its own node count fails with ErrExcessiveAliasing.
func ParsePermissive(text string) (any, error) {
	var root yaml.Node
	normalized := strings.ReplaceAll(text, tabCharacterConstant, tabReplacementConstant)
	if unmarshalError := yaml.Unmarshal([]byte(normalized), &root); unmarshalError != nil {
		return nil, unmarshalError
	}
	if root.Kind == 0 {
		return nil, nil
	}
	converter := &yamlConverter{
		activeAliases:   make(map[*yaml.Node]struct{}),
		remainingBudget: conversionBudget(&root),
	}
	return converter.convert(&root)
}

type yamlConverter struct {
	activeAliases   map[*yaml.Node]struct{}
	remainingBudget int
}

// conversionBudget bounds how many nodes a conversion may produce, counting each
// node reachable without following aliases once.
func conversionBudget(root *yaml.Node) int {
	nodeCount := 0
	pending := []*yaml.Node{root}
	for len(pending) > 0 {
		node := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		nodeCount++
		pending = append(pending, node.Content...)
	}
	return max(nodeCount*aliasExpansionFactor, minimumConversionBudget)
}

func (converter *yamlConverter) convert(node *yaml.Node) (any, error) {
	converter.remainingBudget--
	if converter.remainingBudget < 0 {
		return nil, ErrExcessiveAliasing
	}
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return converter.convert(node.Content[0])
	case yaml.MappingNode:
		mapping := NewMapping()
		for contentIndex := 0; contentIndex+1 < len(node.Content); contentIndex += 2 {
			key, keyError := converter.mappingKey(node.Content[contentIndex])
			if keyError != nil {
				return nil, keyError
			}
			entryValue, entryError := converter.convert(node.Content[contentIndex+1])
			if entryError != nil {
				return nil, entryError
			}
			mapping.Set(key, entryValue)
		}
		return mapping, nil
	case yaml.SequenceNode:
		sequence := make([]any, 0, len(node.Content))
		for _, elementNode := range node.Content {
			element, elementError := converter.convert(elementNode)
			if elementError != nil {
				return nil, elementError
			}
			sequence = append(sequence, element)
		}
		return sequence, nil
	case yaml.AliasNode:
		if _, active := converter.activeAliases[node]; active {
			return nil, ErrRecursiveAlias
		}
		converter.activeAliases[node] = struct{}{}
		defer delete(converter.activeAliases, node)
		return converter.convert(node.Alias)
	case yaml.ScalarNode:
		return convertScalar(node)
	default:
		return nil, fmt.Errorf(nodeKindErrorTemplate, ErrUnsupportedNodeKind, node.Kind)
	}
}

func (converter *yamlConverter) mappingKey(node *yaml.Node) (string, error) {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if node.Kind != yaml.ScalarNode {
		return "", fmt.Errorf(unsupportedKeyErrorTemplate, ErrUnsupportedKey, node.Line)
	}
	return node.Value, nil
}

func convertScalar(node *yaml.Node) (any, error) {
	switch node.ShortTag() {
	case yamlNullTagConstant:
		return nil, nil
	case yamlBoolTagConstant:
		var booleanValue bool
		if decodeError := node.Decode(&booleanValue); decodeError != nil {
			return nil, decodeError
		}
		return booleanValue, nil
	case yamlIntTagConstant:
		var integerValue int64
		if decodeError := node.Decode(&integerValue); decodeError != nil {
			return json.Number(node.Value), nil
		}
		return json.Number(strconv.FormatInt(integerValue, 10)), nil
	case yamlFloatTagConstant:
		var floatValue float64
		if decodeError := node.Decode(&floatValue); decodeError != nil {
			return nil, decodeError
		}
		return json.Number(strconv.FormatFloat(floatValue, 'g', -1, 64)), nil
	default:
		return node.Value, nil
	}
}
