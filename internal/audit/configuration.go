package audit

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/temirov/flint/internal/secrets"
	pathutils "github.com/temirov/flint/internal/utils/path"
)

const (
	defaultRootPathConstant             = "."
	configurationKeySeparatorConstant   = "."
	rootsConfigurationKeyConstant       = "roots"
	repositoryFilterConfigurationKey    = "repository_filter"
	includeSegmentConfigurationKey      = "include_segment"
	gitleaksConfigurationKeyConstant    = "gitleaks"
	javaScriptLinterConfigurationKey    = "javascript_linter"
	javaScriptMaxBytesConfigurationKey  = "javascript_max_bytes"
	extraPatternsConfigurationKey       = "extra_patterns"
	strictConfigurationKeyConstant      = "strict"
	invalidRepositoryFilterTemplate     = "invalid repository filter %q: %w"
	invalidExtraPatternsTemplate        = "invalid extra patterns: %w"
	emptyRootsAfterSanitizationTemplate = "no repository roots remain after sanitizing %q"
)

// CommandConfiguration captures persistent settings for the audit command.
type CommandConfiguration struct {
	Roots              []string                    `mapstructure:"roots"`
	RepositoryFilter   string                      `mapstructure:"repository_filter"`
	IncludeSegment     string                      `mapstructure:"include_segment"`
	Gitleaks           bool                        `mapstructure:"gitleaks"`
	JavaScriptLinter   []string                    `mapstructure:"javascript_linter"`
	JavaScriptMaxBytes int64                       `mapstructure:"javascript_max_bytes"`
	ExtraPatterns      []secrets.PatternDefinition `mapstructure:"extra_patterns"`
	Strict             bool                        `mapstructure:"strict"`
}

// DefaultCommandConfiguration returns baseline configuration values for the audit command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Roots:              []string{defaultRootPathConstant},
		IncludeSegment:     DefaultIncludeSegmentConstant,
		JavaScriptMaxBytes: DefaultJavaScriptMaxBytesConstant,
	}
}

// DefaultConfigurationValues exposes the defaults as Viper keys below prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	qualify := func(key string) string {
		if len(prefix) == 0 {
			return key
		}
		return prefix + configurationKeySeparatorConstant + key
	}
	return map[string]any{
		qualify(rootsConfigurationKeyConstant):      defaults.Roots,
		qualify(repositoryFilterConfigurationKey):   defaults.RepositoryFilter,
		qualify(includeSegmentConfigurationKey):     defaults.IncludeSegment,
		qualify(gitleaksConfigurationKeyConstant):   defaults.Gitleaks,
		qualify(javaScriptLinterConfigurationKey):   []string{},
		qualify(javaScriptMaxBytesConfigurationKey): defaults.JavaScriptMaxBytes,
		qualify(extraPatternsConfigurationKey):      []map[string]any{},
		qualify(strictConfigurationKeyConstant):     defaults.Strict,
	}
}

// sanitize trims whitespace and applies defaults to unset configuration values.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.RepositoryFilter = strings.TrimSpace(configuration.RepositoryFilter)
	if len(strings.TrimSpace(configuration.IncludeSegment)) == 0 {
		sanitized.IncludeSegment = DefaultIncludeSegmentConstant
	}
	if configuration.JavaScriptMaxBytes <= 0 {
		sanitized.JavaScriptMaxBytes = DefaultJavaScriptMaxBytesConstant
	}
	linterTemplate := make([]string, 0, len(configuration.JavaScriptLinter))
	for _, argument := range configuration.JavaScriptLinter {
		if trimmedArgument := strings.TrimSpace(argument); len(trimmedArgument) > 0 {
			linterTemplate = append(linterTemplate, trimmedArgument)
		}
	}
	sanitized.JavaScriptLinter = linterTemplate
	return sanitized
}

// resolveRoots expands and de-nests roots, falling back to the working directory.
func resolveRoots(sanitizer *pathutils.RootSanitizer, candidateRoots []string) ([]string, error) {
	if len(candidateRoots) == 0 {
		return []string{defaultRootPathConstant}, nil
	}
	roots := sanitizer.Sanitize(candidateRoots)
	if len(roots) == 0 {
		return nil, fmt.Errorf(emptyRootsAfterSanitizationTemplate, candidateRoots)
	}
	return roots, nil
}

func compileRepositoryFilter(expression string) (*regexp.Regexp, error) {
	if len(expression) == 0 {
		return nil, nil
	}
	compiled, compileError := regexp.Compile(expression)
	if compileError != nil {
		return nil, fmt.Errorf(invalidRepositoryFilterTemplate, expression, compileError)
	}
	return compiled, nil
}

func compileExtraPatterns(definitions []secrets.PatternDefinition) ([]secrets.Pattern, error) {
	patterns, compileError := secrets.CompilePatterns(definitions)
	if compileError != nil {
		return nil, fmt.Errorf(invalidExtraPatternsTemplate, compileError)
	}
	return patterns, nil
}
