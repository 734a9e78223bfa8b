package walker

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/flint/internal/contextpath"
	"github.com/temirov/flint/internal/document"
	"github.com/temirov/flint/internal/findings"
)

const (
	// EmbeddedJSONSegment marks the boundary of a document nested inside a string.
	EmbeddedJSONSegment = "embedded_json"

	embeddedParseErrorTemplate  = "embedded JSON could not be parsed: %v"
	embeddedParseFailedMessage  = "embedded JSON parse failed"
	subtreePrunedMessage        = "subtree pruned"
	logFieldFilePathConstant    = "file_path"
	logFieldContextPathConstant = "context_path"
)

// Rules is the capability set that drives a traversal.
type Rules interface {
	// ShouldRecurse reports whether the entries of a mapping are visited at all.
	ShouldRecurse(path contextpath.ContextPath, node *document.Mapping) bool
	// DecorateMapping returns segments inserted before each key of node.
	DecorateMapping(path contextpath.ContextPath, node *document.Mapping) []string
	// DecorateSequence returns segments inserted before each index of node.
	DecorateSequence(path contextpath.ContextPath, node []any) []string
	// VisitLeaf inspects a string leaf that does not look like embedded JSON.
	VisitLeaf(location string, path contextpath.ContextPath, value string) []findings.Finding
}

// ScalarVisitor is implemented by rule sets that also inspect numbers, booleans,
// and nulls. Rules without it leave those leaves alone.
type ScalarVisitor interface {
	VisitScalar(location string, path contextpath.ContextPath, value any) []findings.Finding
}

// Walker applies one rule set to parsed values.
type Walker struct {
	rules  Rules
	logger *zap.Logger
}

// New constructs a Walker. A nil logger disables diagnostics.
func New(rules Rules, logger *zap.Logger) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Walker{rules: rules, logger: logger}
}

// Walk visits node and everything below it. An empty path starts at the root
// segment. Findings are returned in traversal order.
func (walker *Walker) Walk(location string, path contextpath.ContextPath, node any) []findings.Finding {
	if path.IsEmpty() {
		path = contextpath.Root()
	}
	return walker.walk(location, path, node)
}

func (walker *Walker) walk(location string, path contextpath.ContextPath, node any) []findings.Finding {
	var collected []findings.Finding

	switch typed := node.(type) {
	case *document.Mapping:
		if !walker.rules.ShouldRecurse(path, typed) {
			walker.logger.Debug(subtreePrunedMessage, zap.String(logFieldFilePathConstant, location), zap.String(logFieldContextPathConstant, path.String()))
			return nil
		}
		typed.Range(func(key string, value any) bool {
			entryPath := path.Append(walker.rules.DecorateMapping(path, typed)...).Append(key)
			collected = append(collected, walker.walk(location, entryPath, value)...)
			return true
		})
	case []any:
		for elementIndex, element := range typed {
			elementPath := path.Append(walker.rules.DecorateSequence(path, typed)...).AppendIndex(elementIndex)
			collected = append(collected, walker.walk(location, elementPath, element)...)
		}
	case string:
		if !document.LooksLikeJSON(typed) {
			return walker.rules.VisitLeaf(location, path, typed)
		}
		embeddedValue, parseError := document.Parse(typed, false)
		if parseError != nil {
			walker.logger.Debug(embeddedParseFailedMessage, zap.String(logFieldFilePathConstant, location), zap.String(logFieldContextPathConstant, path.String()), zap.Error(parseError))
			return []findings.Finding{findings.NewError(location, fmt.Sprintf(embeddedParseErrorTemplate, parseError))}
		}
		return walker.walk(location, path.Append(EmbeddedJSONSegment), embeddedValue)
	default:
		if scalarVisitor, visitsScalars := walker.rules.(ScalarVisitor); visitsScalars {
			return scalarVisitor.VisitScalar(location, path, typed)
		}
	}
	return collected
}
