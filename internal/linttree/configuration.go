package linttree

import (
	pathutils "github.com/temirov/flint/internal/utils/path"
)

const (
	configurationKeySeparatorConstant       = "."
	directoryConfigurationKey               = "directory"
	schemaDirectoriesConfigurationKey       = "schema_directories"
	strictDirectoryContentsConfigurationKey = "strict_directory_contents"
	printPropertiesConfigurationKey         = "print_properties"
)

// CommandConfiguration captures persistent settings for the lint command.
type CommandConfiguration struct {
	Directory               string   `mapstructure:"directory"`
	SchemaDirectories       []string `mapstructure:"schema_directories"`
	StrictDirectoryContents bool     `mapstructure:"strict_directory_contents"`
	PrintProperties         bool     `mapstructure:"print_properties"`
}

// DefaultCommandConfiguration lints the working directory with strict contents.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{StrictDirectoryContents: true}
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
		qualify(directoryConfigurationKey):               defaults.Directory,
		qualify(schemaDirectoriesConfigurationKey):       []string{},
		qualify(strictDirectoryContentsConfigurationKey): defaults.StrictDirectoryContents,
		qualify(printPropertiesConfigurationKey):         defaults.PrintProperties,
	}
}

// sanitize trims paths, expands the home directory shortcut and drops empty
// schema directories.
func (configuration CommandConfiguration) sanitize(homeExpander *pathutils.HomeExpander) CommandConfiguration {
	sanitized := configuration
	sanitized.Directory = homeExpander.Expand(configuration.Directory)
	sanitized.SchemaDirectories = homeExpander.ExpandAll(configuration.SchemaDirectories)
	return sanitized
}
