package export

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/flint/internal/filesystem"
	"github.com/temirov/flint/internal/utils/flags"
	pathutils "github.com/temirov/flint/internal/utils/path"
)

const (
	exportCommandUsageConstant      = "export FILE..."
	exportCommandShortDescription   = "Export flow step scripts as standalone JavaScript files"
	exportCommandLongDescription    = "export repairs and parses each flow file and writes every step script to <output-directory>/<reversed flow name>/<step>.js, wrapped in a strict-mode function whose parameters are the runtime helpers the script uses. Flow names are split on @ and their segments reversed to form directories."
	convertCommandUsageConstant     = "convert FILE"
	convertCommandShortDescription  = "Convert a flow file into another format"
	convertCommandLongDescription   = "convert repairs and parses a flow file and, for --from json --to js, prints every processor script as a JavaScript function named after its processor. Converting a format into itself does nothing."
	flagOutputDirectoryName         = "output-directory"
	flagOutputDirectoryDescription  = "Directory receiving the exported scripts."
	flagScriptPropertyName          = "script-property"
	flagScriptPropertyDescription   = "Key whose string value is a step script (repeatable; replaces the configured list)."
	flagFromName                    = "from"
	flagFromDescription             = "Format of the input file."
	flagToName                      = "to"
	flagToDescription               = "Format to produce."
	flagOutputName                  = "output"
	flagOutputDescription           = "Write the result to this file instead of standard output."
	formatArgumentTemplate          = "--%s: %w"
	outputWriteFailureTemplate      = "unable to write %s: %w"
	nothingToDoMessageConstant      = "nothing to do"
	exportCompletedMessageConstant  = "scripts exported"
	conversionMessageConstant       = "flow converted"
	logFieldScriptCountConstant     = "script_count"
	logFieldOutputDirectoryConstant = "output_directory"
	logFieldFromConstant            = "from"
	logFieldToConstant              = "to"
	outputFilePermissionsConstant   = 0o644
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current export configuration.
type ConfigurationProvider func() CommandConfiguration

// ExportCommandBuilder assembles the export cobra command.
type ExportCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	FileSystem            filesystem.FileSystem
	HomeExpander          *pathutils.HomeExpander
}

// Build constructs the export command.
func (builder *ExportCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   exportCommandUsageConstant,
		Short: exportCommandShortDescription,
		Long:  exportCommandLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE:  builder.run,
	}
	command.Flags().String(flagOutputDirectoryName, "", flagOutputDirectoryDescription)
	command.Flags().StringSlice(flagScriptPropertyName, nil, flagScriptPropertyDescription)
	return command, nil
}

func (builder *ExportCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := resolveConfiguration(command, builder.ConfigurationProvider, builder.HomeExpander)

	logger := resolveLogger(builder.LoggerProvider)
	written, exportError := NewExporter(builder.FileSystem, configuration, logger).ExportFiles(arguments)
	for _, outputPath := range written {
		if _, printError := fmt.Fprintln(command.OutOrStdout(), outputPath); printError != nil {
			return printError
		}
	}
	logger.Info(
		exportCompletedMessageConstant,
		zap.Int(logFieldScriptCountConstant, len(written)),
		zap.String(logFieldOutputDirectoryConstant, configuration.OutputDirectory),
	)
	return exportError
}

// ConvertCommandBuilder assembles the convert cobra command.
type ConvertCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	FileSystem            filesystem.FileSystem
}

// Build constructs the convert command.
func (builder *ConvertCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   convertCommandUsageConstant,
		Short: convertCommandShortDescription,
		Long:  convertCommandLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.run,
	}
	command.Flags().String(flagFromName, FormatJSON, flags.FormatChoiceUsage(FormatJSON, SupportedFormats(), flagFromDescription))
	command.Flags().String(flagToName, FormatJavaScript, flags.FormatChoiceUsage(FormatJavaScript, SupportedFormats(), flagToDescription))
	command.Flags().String(flagOutputName, "", flagOutputDescription)
	command.Flags().StringSlice(flagScriptPropertyName, nil, flagScriptPropertyDescription)
	return command, nil
}

func (builder *ConvertCommandBuilder) run(command *cobra.Command, arguments []string) error {
	fromFormat, fromError := normalizeFormatFlag(command, flagFromName)
	if fromError != nil {
		return fromError
	}
	toFormat, toError := normalizeFormatFlag(command, flagToName)
	if toError != nil {
		return toError
	}

	configuration := resolveConfiguration(command, builder.ConfigurationProvider, nil)
	logger := resolveLogger(builder.LoggerProvider)
	output, changed, conversionError := NewConverter(builder.FileSystem, configuration.ScriptProperties).Convert(arguments[0], fromFormat, toFormat)
	if conversionError != nil {
		return conversionError
	}
	if !changed {
		_, printError := fmt.Fprintln(command.OutOrStdout(), nothingToDoMessageConstant)
		return printError
	}
	logger.Debug(conversionMessageConstant, zap.String(logFieldFromConstant, fromFormat), zap.String(logFieldToConstant, toFormat))

	outputPath, _ := command.Flags().GetString(flagOutputName)
	if len(outputPath) == 0 {
		_, printError := fmt.Fprint(command.OutOrStdout(), output)
		return printError
	}
	fileSystem := builder.FileSystem
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	if writeError := fileSystem.WriteFile(outputPath, []byte(output), outputFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(outputWriteFailureTemplate, outputPath, writeError)
	}
	return nil
}

func normalizeFormatFlag(command *cobra.Command, flagName string) (string, error) {
	value, _ := command.Flags().GetString(flagName)
	normalized, choiceError := flags.NormalizeChoice(value, SupportedFormats())
	if choiceError != nil {
		return "", fmt.Errorf(formatArgumentTemplate, flagName, choiceError)
	}
	return normalized, nil
}

func resolveConfiguration(command *cobra.Command, provider ConfigurationProvider, homeExpander *pathutils.HomeExpander) CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if provider != nil {
		configuration = provider()
	}
	if command.Flags().Changed(flagScriptPropertyName) {
		configuration.ScriptProperties, _ = command.Flags().GetStringSlice(flagScriptPropertyName)
	}
	if command.Flags().Changed(flagOutputDirectoryName) {
		configuration.OutputDirectory, _ = command.Flags().GetString(flagOutputDirectoryName)
	}
	return configuration.sanitize(resolveHomeExpander(homeExpander))
}

func resolveHomeExpander(homeExpander *pathutils.HomeExpander) *pathutils.HomeExpander {
	if homeExpander != nil {
		return homeExpander
	}
	return pathutils.NewHomeExpander()
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
