package linttree

import (
	"errors"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"

	"github.com/temirov/flint/internal/contextpath"
	"github.com/temirov/flint/internal/document"
	"github.com/temirov/flint/internal/filesystem"
	"github.com/temirov/flint/internal/walker"
)

const (
	jsonContentNotFileTemplate    = "Can only check JSON content for files:  %s"
	jsonContentUnreadableTemplate = "could not read file: %v"
	errorMessageTemplate          = "%v"
	collectNoMatchTemplate        = "%s did not match any elements"
	logFieldSchemaConstant        = "schema_reference"
	schemaValidationFailedMessage = "schema validation failed"
)

// JSONRule inspects the parsed content of the current file.
type JSONRule interface {
	LintJSON(value any, lintContext *Context)
}

// JSONContent parses the current file with the tolerant parser and applies Rules.
type JSONContent struct {
	Rules []JSONRule
}

// Lint implements Node.
func (content JSONContent) Lint(lintContext *Context) {
	if !filesystem.IsRegularFile(lintContext.FileSystem(), lintContext.Path()) {
		lintContext.Error(jsonContentNotFileTemplate, lintContext.Path())
		return
	}
	contents, readError := lintContext.FileSystem().ReadFile(lintContext.Path())
	if readError != nil {
		lintContext.Error(jsonContentUnreadableTemplate, readError)
		return
	}
	parsedValue, parseError := document.Parse(string(contents), false)
	if parseError != nil {
		lintContext.Error(errorMessageTemplate, parseError)
		return
	}
	for _, rule := range content.Rules {
		rule.LintJSON(parsedValue, lintContext)
	}
}

// FollowsSchema validates the content against the schema named by Reference.
type FollowsSchema struct {
	Reference string
}

// LintJSON implements JSONRule.
func (followsSchema FollowsSchema) LintJSON(value any, lintContext *Context) {
	validationError := lintContext.environment.Schemas.Validate(followsSchema.Reference, value)
	if validationError == nil {
		return
	}
	var schemaValidationError *jsonschema.ValidationError
	if errors.As(validationError, &schemaValidationError) {
		lintContext.Logger().Debug(schemaValidationFailedMessage,
			zap.String(logFieldPathConstant, lintContext.Path()),
			zap.String(logFieldSchemaConstant, followsSchema.Reference),
		)
		lintContext.Error(errorMessageTemplate, schemaValidationError)
		return
	}
	lintContext.Error(errorMessageTemplate, validationError)
}

// Extractor selects values from parsed content. A returned []any is spread into
// the collected list.
type Extractor func(value any) []any

// CollectValues stores the values selected by Extract under Group and Key in the
// run properties.
type CollectValues struct {
	Name     string
	Extract  Extractor
	Group    string
	Key      string
	Optional bool
}

// LintJSON implements JSONRule.
func (collectValues CollectValues) LintJSON(value any, lintContext *Context) {
	matches := collectValues.Extract(value)
	for _, match := range matches {
		if list, isList := match.([]any); isList {
			lintContext.Properties().Extend(collectValues.Group, collectValues.Key, list)
			continue
		}
		lintContext.Properties().Append(collectValues.Group, collectValues.Key, match)
	}
	if !collectValues.Optional && len(matches) == 0 {
		lintContext.Error(collectNoMatchTemplate, collectValues.Name)
	}
}

// AuditSecrets walks the content with the secret audit rule and attaches its
// findings to the current file.
type AuditSecrets struct{}

// LintJSON implements JSONRule.
func (AuditSecrets) LintJSON(value any, lintContext *Context) {
	secretWalker := walker.New(lintContext.environment.SecretRule, lintContext.Logger())
	reported := secretWalker.Walk(lintContext.Path(), contextpath.Root(), value)
	if len(reported) > 0 {
		lintContext.Report(reported...)
	}
}

// FieldValues returns an Extractor yielding the value of field in every mapping at
// any depth, in document order.
func FieldValues(field string) Extractor {
	return func(value any) []any {
		var collected []any
		var visit func(node any)
		visit = func(node any) {
			switch typed := node.(type) {
			case *document.Mapping:
				if fieldValue, found := typed.Get(field); found {
					collected = append(collected, fieldValue)
				}
				typed.Range(func(_ string, entry any) bool {
					visit(entry)
					return true
				})
			case []any:
				for _, element := range typed {
					visit(element)
				}
			}
		}
		visit(value)
		return collected
	}
}

// MappingKeys returns an Extractor yielding the sorted keys of the mapping stored
// under field of the top-level mapping.
func MappingKeys(field string) Extractor {
	return func(value any) []any {
		topLevel, isMapping := value.(*document.Mapping)
		if !isMapping {
			return nil
		}
		fieldValue, found := topLevel.Get(field)
		if !found {
			return nil
		}
		nested, isMapping := fieldValue.(*document.Mapping)
		if !isMapping {
			return nil
		}
		keys := nested.Keys()
		sort.Strings(keys)
		collected := make([]any, 0, len(keys))
		for _, key := range keys {
			collected = append(collected, key)
		}
		return collected
	}
}
