package maintenance

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/flint/internal/filesystem"
)

const (
	fixCommandUsageConstant       = "fix FILE..."
	fixCommandShortDescription    = "Repair relaxed JSON files in place"
	fixCommandLongDescription     = "fix escapes raw newlines and tabs inside quoted strings so each file becomes strict JSON again. Files with an unbalanced closing bracket are reported and left untouched."
	formatCommandUsageConstant    = "format FILE..."
	formatCommandShortDescription = "Repair and pretty print JSON files in place"
	formatCommandLongDescription  = "format repairs each file, parses it as strict JSON, and rewrites it with two-space indentation. Values of the configured script properties are written as readable multi-line bodies; run fix to turn them back into strict JSON."
	flagScriptPropertyName        = "script-property"
	flagScriptPropertyDescription = "Key whose string value is formatted as a multi-line script body (repeatable; replaces the configured list)."
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// FormatConfigurationProvider returns the current format configuration.
type FormatConfigurationProvider func() FormatConfiguration

// FixCommandBuilder assembles the fix cobra command.
type FixCommandBuilder struct {
	LoggerProvider LoggerProvider
	FileSystem     filesystem.FileSystem
}

// Build constructs the fix command.
func (builder *FixCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   fixCommandUsageConstant,
		Short: fixCommandShortDescription,
		Long:  fixCommandLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			service := NewService(builder.FileSystem, nil, resolveLogger(builder.LoggerProvider))
			return service.FixFiles(arguments)
		},
	}
	return command, nil
}

// FormatCommandBuilder assembles the format cobra command.
type FormatCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider FormatConfigurationProvider
	FileSystem            filesystem.FileSystem
}

// Build constructs the format command.
func (builder *FormatCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   formatCommandUsageConstant,
		Short: formatCommandShortDescription,
		Long:  formatCommandLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE:  builder.run,
	}
	command.Flags().StringSlice(flagScriptPropertyName, nil, flagScriptPropertyDescription)
	return command, nil
}

func (builder *FormatCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := DefaultFormatConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	if command.Flags().Changed(flagScriptPropertyName) {
		configuration.ScriptProperties, _ = command.Flags().GetStringSlice(flagScriptPropertyName)
	}
	configuration = configuration.sanitize()

	service := NewService(builder.FileSystem, configuration.ScriptProperties, resolveLogger(builder.LoggerProvider))
	return service.FormatFiles(arguments)
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
