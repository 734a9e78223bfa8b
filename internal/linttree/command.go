package linttree

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/flint/internal/filesystem"
	"github.com/temirov/flint/internal/findings"
	"github.com/temirov/flint/internal/utils/flags"
	pathutils "github.com/temirov/flint/internal/utils/path"
)

const (
	commandUsageConstant                   = "lint <tree>"
	commandShortDescription                = "Lint a directory against a built-in lint tree"
	commandLongDescription                 = "lint checks a directory (default: the working directory) against one of the built-in trees, prints every finding followed by statistics, and fails when any error finding is reported."
	flagDirectoryName                      = "directory"
	flagDirectoryDescription               = "Directory to lint."
	flagSchemaDirectoryName                = "schema-dir"
	flagSchemaDirectoryDescription         = "Directory searched for schema files (repeatable; replaces the configured list)."
	flagStrictDirectoryContentsName        = "strict-directory-contents"
	flagStrictDirectoryContentsDescription = "Report top-level entries that no node of the tree selects."
	flagPrintPropertiesName                = "print-properties"
	flagPrintPropertiesDescription         = "Print the values collected while linting."
	reportFailureTemplate                  = "unable to print lint report: %w"
	treeArgumentTemplate                   = "lint tree: %w"
	lintConfiguredMessageConstant          = "lint configured"
	logFieldTreeConstant                   = "tree"
	logFieldDirectoryConfiguredConstant    = "directory"
	logFieldSchemaDirectoriesConstant      = "schema_directories"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current lint configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the lint cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	FileSystem            filesystem.FileSystem
	HomeExpander          *pathutils.HomeExpander
}

// Build constructs the lint command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:       commandUsageConstant,
		Short:     commandShortDescription,
		Long:      commandLongDescription + " Trees: " + strings.Join(BuiltinNames(), ", ") + ".",
		Args:      cobra.ExactArgs(1),
		ValidArgs: BuiltinNames(),
		RunE:      builder.run,
	}

	command.Flags().String(flagDirectoryName, "", flagDirectoryDescription)
	command.Flags().StringSlice(flagSchemaDirectoryName, nil, flagSchemaDirectoryDescription)
	command.Flags().Bool(flagStrictDirectoryContentsName, true, flagStrictDirectoryContentsDescription)
	command.Flags().Bool(flagPrintPropertiesName, false, flagPrintPropertiesDescription)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	treeName, choiceError := flags.NormalizeChoice(arguments[0], BuiltinNames())
	if choiceError != nil {
		return fmt.Errorf(treeArgumentTemplate, choiceError)
	}
	linter, builtinError := Builtin(treeName)
	if builtinError != nil {
		return builtinError
	}

	configuration := builder.resolveConfiguration(command)
	linter.StrictDirectoryContents = configuration.StrictDirectoryContents
	linter.PrintProperties = configuration.PrintProperties

	logger := builder.resolveLogger()
	logger.Debug(
		lintConfiguredMessageConstant,
		zap.String(logFieldTreeConstant, treeName),
		zap.String(logFieldDirectoryConfiguredConstant, configuration.Directory),
		zap.Strings(logFieldSchemaDirectoriesConstant, configuration.SchemaDirectories),
	)

	fileSystem := builder.resolveFileSystem()
	results, runError := linter.Run(
		command.Context(),
		Arguments{Directory: configuration.Directory, SchemaDirectories: configuration.SchemaDirectories},
		Environment{FileSystem: fileSystem, Logger: logger, Output: command.OutOrStdout()},
	)
	if runError != nil {
		return runError
	}

	if reportError := findings.WriteReport(command.OutOrStdout(), results, PathKindResolver(fileSystem), true); reportError != nil {
		return fmt.Errorf(reportFailureTemplate, reportError)
	}
	if results.Failed() {
		return findings.ErrRunFailed
	}
	return nil
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	if command.Flags().Changed(flagDirectoryName) {
		configuration.Directory, _ = command.Flags().GetString(flagDirectoryName)
	}
	if command.Flags().Changed(flagSchemaDirectoryName) {
		configuration.SchemaDirectories, _ = command.Flags().GetStringSlice(flagSchemaDirectoryName)
	}
	if command.Flags().Changed(flagStrictDirectoryContentsName) {
		configuration.StrictDirectoryContents, _ = command.Flags().GetBool(flagStrictDirectoryContentsName)
	}
	if command.Flags().Changed(flagPrintPropertiesName) {
		configuration.PrintProperties, _ = command.Flags().GetBool(flagPrintPropertiesName)
	}

	homeExpander := builder.HomeExpander
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}
	return configuration.sanitize(homeExpander)
}

func (builder *CommandBuilder) resolveFileSystem() filesystem.FileSystem {
	if builder.FileSystem != nil {
		return builder.FileSystem
	}
	return filesystem.OSFileSystem{}
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
