package export

import (
	"regexp"
	"sort"
	"strings"
)

// SymbolPattern finds runtime symbols in a script body. When Suffix is set only
// matches ending with it are kept, with the suffix removed.
type SymbolPattern struct {
	Expression *regexp.Regexp
	Suffix     string
}

// Resolve returns the distinct symbols source refers to.
func (pattern SymbolPattern) Resolve(source string) []string {
	var symbols []string
	for _, match := range pattern.Expression.FindAllString(source, -1) {
		if len(pattern.Suffix) > 0 {
			if !strings.HasSuffix(match, pattern.Suffix) {
				continue
			}
			match = strings.TrimSuffix(match, pattern.Suffix)
		}
		symbols = append(symbols, match)
	}
	return symbols
}

// DefaultSymbolPatterns returns the helpers the flow runtime injects into every
// script.
func DefaultSymbolPatterns() []SymbolPattern {
	literalNames := []string{
		"EncodingHelper", "FlowException", "Java", "JavaString", "ListCanBuild", "ListHelper",
		"None", "Some", "UrlHelper", "debug", "emptyConfig", "emptyMap", "error", "formatDate",
		"fromJValue", "getConfig", "isEqual", "item", "jArray", "jValueToString", "metric",
		"newList", "parseDateString", "payload", "toJValue", "toKVList", "toKVMap", "toMap",
		"toMapOfAny", "trace", "urlCompose", "urlEncode", "valuesFromDbRow", "warn",
	}
	patterns := make([]SymbolPattern, 0, len(literalNames)+3)
	for _, literalName := range literalNames {
		patterns = append(patterns, SymbolPattern{Expression: regexp.MustCompile(regexp.QuoteMeta(literalName))})
	}
	return append(patterns,
		SymbolPattern{Expression: regexp.MustCompile(`_.`), Suffix: "."},
		SymbolPattern{Expression: regexp.MustCompile(`code_data_[^(]*`)},
		SymbolPattern{Expression: regexp.MustCompile(`code_model_[^(]*`)},
	)
}

// ResolveImports applies every pattern to source and returns the non-empty
// symbols found, deduplicated and sorted.
func ResolveImports(patterns []SymbolPattern, source string) []string {
	seen := make(map[string]struct{})
	var imports []string
	for _, pattern := range patterns {
		for _, symbol := range pattern.Resolve(source) {
			if _, duplicate := seen[symbol]; duplicate || len(symbol) == 0 {
				continue
			}
			seen[symbol] = struct{}{}
			imports = append(imports, symbol)
		}
	}
	sort.Strings(imports)
	return imports
}
