package export

import (
	"strings"

	pathutils "github.com/temirov/flint/internal/utils/path"
)

const (
	// DefaultOutputDirectoryConstant is where exported scripts land, relative to
	// the working directory.
	DefaultOutputDirectoryConstant = "jsExport"
	// DefaultScriptPropertyConstant is the key holding a step's script body.
	DefaultScriptPropertyConstant = "jsFunc"

	configurationKeySeparatorConstant = "."
	outputDirectoryConfigurationKey   = "output_directory"
	scriptPropertiesConfigurationKey  = "script_properties"
)

// CommandConfiguration captures persistent settings for the export and convert
// commands.
type CommandConfiguration struct {
	OutputDirectory  string   `mapstructure:"output_directory"`
	ScriptProperties []string `mapstructure:"script_properties"`
}

// DefaultCommandConfiguration exports jsFunc bodies into jsExport.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		OutputDirectory:  DefaultOutputDirectoryConstant,
		ScriptProperties: []string{DefaultScriptPropertyConstant},
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
		qualify(outputDirectoryConfigurationKey):  defaults.OutputDirectory,
		qualify(scriptPropertiesConfigurationKey): defaults.ScriptProperties,
	}
}

func (configuration CommandConfiguration) sanitize(homeExpander *pathutils.HomeExpander) CommandConfiguration {
	sanitized := CommandConfiguration{OutputDirectory: homeExpander.Expand(configuration.OutputDirectory)}
	if len(sanitized.OutputDirectory) == 0 {
		sanitized.OutputDirectory = DefaultOutputDirectoryConstant
	}
	for _, property := range configuration.ScriptProperties {
		if trimmedProperty := strings.TrimSpace(property); len(trimmedProperty) > 0 {
			sanitized.ScriptProperties = append(sanitized.ScriptProperties, trimmedProperty)
		}
	}
	if len(sanitized.ScriptProperties) == 0 {
		sanitized.ScriptProperties = []string{DefaultScriptPropertyConstant}
	}
	return sanitized
}
