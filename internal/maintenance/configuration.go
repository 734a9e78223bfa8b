package maintenance

import (
	"strings"

	"github.com/temirov/flint/internal/document"
)

const (
	configurationKeySeparatorConstant = "."
	scriptPropertiesConfigurationKey  = "script_properties"
)

// FormatConfiguration captures persistent settings for the format command.
type FormatConfiguration struct {
	ScriptProperties []string `mapstructure:"script_properties"`
}

// DefaultFormatConfiguration returns the built-in script property names.
func DefaultFormatConfiguration() FormatConfiguration {
	return FormatConfiguration{ScriptProperties: append([]string{}, document.DefaultScriptProperties...)}
}

// DefaultFormatConfigurationValues exposes the defaults as Viper keys below prefix.
func DefaultFormatConfigurationValues(prefix string) map[string]any {
	key := scriptPropertiesConfigurationKey
	if len(prefix) > 0 {
		key = prefix + configurationKeySeparatorConstant + key
	}
	return map[string]any{key: DefaultFormatConfiguration().ScriptProperties}
}

func (configuration FormatConfiguration) sanitize() FormatConfiguration {
	properties := make([]string, 0, len(configuration.ScriptProperties))
	for _, property := range configuration.ScriptProperties {
		if trimmedProperty := strings.TrimSpace(property); len(trimmedProperty) > 0 {
			properties = append(properties, trimmedProperty)
		}
	}
	return FormatConfiguration{ScriptProperties: properties}
}
