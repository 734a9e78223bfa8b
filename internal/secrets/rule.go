package secrets

import (
	"go.uber.org/zap"

	"github.com/temirov/flint/internal/contextpath"
	"github.com/temirov/flint/internal/document"
	"github.com/temirov/flint/internal/findings"
)

const (
	// SecureFieldName marks a mapping whose subtree is already protected.
	SecureFieldName = "secure"
	// ReferenceIDFieldName identifies a mapping in diagnostics.
	ReferenceIDFieldName = "referenceId"
	// ReferenceStringFieldName holds indirections whose values are never secrets.
	ReferenceStringFieldName = "referenceString"
	// ListIndexSegment precedes sequence indexes in context paths.
	ListIndexSegment = "list_index"

	passwordHeuristicMessage    = "Password Regex"
	logFieldFilePathConstant    = "file_path"
	logFieldContextPathConstant = "context_path"
	logFieldMessageConstant     = "message"
	secretSuspectedMessage      = "secret suspected"
)

// Detection is one match reported by a Detector.
type Detection struct {
	Description string
}

// Detector finds secrets in a single string value.
type Detector interface {
	Detect(value string) []Detection
}

// Rule is the secret audit rule set for walker.Walker.
type Rule struct {
	patterns  []Pattern
	detectors []Detector
	logger    *zap.Logger
}

// Option customizes a Rule.
type Option func(*Rule)

// WithPatterns appends patterns after the built-in table.
func WithPatterns(patterns ...Pattern) Option {
	return func(rule *Rule) {
		rule.patterns = append(rule.patterns, patterns...)
	}
}

// WithDetectors adds value detectors consulted after the pattern table.
func WithDetectors(detectors ...Detector) Option {
	return func(rule *Rule) {
		rule.detectors = append(rule.detectors, detectors...)
	}
}

// WithLogger routes debug diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(rule *Rule) {
		if logger != nil {
			rule.logger = logger
		}
	}
}

// NewRule constructs a Rule using the default pattern table.
func NewRule(options ...Option) *Rule {
	rule := &Rule{
		patterns: DefaultPatterns(),
		logger:   zap.NewNop(),
	}
	for _, option := range options {
		option(rule)
	}
	return rule
}

// ShouldRecurse skips mappings whose secure field is the boolean true.
func (rule *Rule) ShouldRecurse(path contextpath.ContextPath, node *document.Mapping) bool {
	secureValue, found := node.Get(SecureFieldName)
	if !found {
		return true
	}
	secure, isBoolean := secureValue.(bool)
	return !isBoolean || !secure
}

// DecorateMapping labels entries with the mapping's referenceId when it has one.
func (rule *Rule) DecorateMapping(path contextpath.ContextPath, node *document.Mapping) []string {
	referenceID, found := node.Get(ReferenceIDFieldName)
	if !found || !document.Truthy(referenceID) {
		return nil
	}
	return []string{ReferenceIDFieldName, contextpath.Segment(referenceID)}
}

// DecorateSequence labels every index with ListIndexSegment.
func (rule *Rule) DecorateSequence(path contextpath.ContextPath, node []any) []string {
	return []string{ListIndexSegment}
}

// VisitLeaf checks value and the key that holds it.
func (rule *Rule) VisitLeaf(location string, path contextpath.ContextPath, value string) []findings.Finding {
	var collected []findings.Finding
	report := func(message string) {
		rule.logger.Debug(
			secretSuspectedMessage,
			zap.String(logFieldFilePathConstant, location),
			zap.String(logFieldContextPathConstant, path.String()),
			zap.String(logFieldMessageConstant, message),
		)
		collected = append(collected, findings.NewContextualWarning(location, message, path, value))
	}

	key := path.Last()
	if key != ReferenceStringFieldName {
		if LooksLikePassword(value) {
			report(passwordHeuristicMessage)
		}
		for _, pattern := range rule.patterns {
			if pattern.Expression.MatchString(value) {
				report(pattern.Message)
			}
		}
		for _, detector := range rule.detectors {
			for _, detection := range detector.Detect(value) {
				report(detection.Description)
			}
		}
	}

	for _, pattern := range rule.patterns {
		if pattern.Expression.MatchString(key) {
			report(pattern.Message)
		}
	}
	return collected
}
