package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/flint/internal/audit"
	"github.com/temirov/flint/internal/export"
	"github.com/temirov/flint/internal/linttree"
	"github.com/temirov/flint/internal/maintenance"
	"github.com/temirov/flint/internal/utils"
	"github.com/temirov/flint/internal/utils/flags"
)

const (
	applicationNameConstant                 = "flint"
	applicationShortDescriptionConstant     = "Audit and lint hand-authored JSON configuration"
	applicationLongDescriptionConstant      = "flint finds credentials committed to JSON configuration inside git repositories, lints exported directories against built-in layouts, repairs or pretty prints relaxed JSON files, and extracts flow scripts as JavaScript."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	toolsConfigurationKeyConstant           = "tools"
	auditConfigurationKeyConstant           = toolsConfigurationKeyConstant + ".audit"
	lintConfigurationKeyConstant            = toolsConfigurationKeyConstant + ".lint"
	formatConfigurationKeyConstant          = toolsConfigurationKeyConstant + ".format"
	exportConfigurationKeyConstant          = toolsConfigurationKeyConstant + ".export"
	auditCommandNameConstant                = "audit"
	lintCommandNameConstant                 = "lint"
	fixCommandNameConstant                  = "fix"
	formatCommandNameConstant               = "format"
	exportCommandNameConstant               = "export"
	convertCommandNameConstant              = "convert"
	environmentPrefixConstant               = "FLINT"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	userConfigurationDirectoryConstant      = ".flint"
	defaultConfigurationSearchPathConstant  = "."
	defaultLogLevelConstant                 = utils.LogLevelWarn
	defaultLogFormatConstant                = utils.LogFormatConsole
	versionTemplateConstant                 = "{{.Name}} version: {{.Version}}\n"
	developmentVersionConstant              = "dev"
	buildInfoDevelVersionConstant           = "(devel)"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	commandBuildErrorTemplateConstant       = "unable to build %s command: %w"
	rootCommandDebugMessageConstant         = "flint CLI diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentsConstant               = "arguments"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds configuration for each subcommand.
type ApplicationToolsConfiguration struct {
	Audit  audit.CommandConfiguration      `mapstructure:"audit"`
	Lint   linttree.CommandConfiguration   `mapstructure:"lint"`
	Format maintenance.FormatConfiguration `mapstructure:"format"`
	Export export.CommandConfiguration     `mapstructure:"export"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	versionResolver       func() string
	buildError            error
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		configurationSearchPaths(),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
		versionResolver:     resolveBuildVersion,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.SetVersionTemplate(versionTemplateConstant)
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(
		&application.logLevelFlagValue,
		logLevelFlagNameConstant,
		"",
		flags.FormatChoiceUsage(string(defaultLogLevelConstant), utils.SupportedLogLevels(), logLevelFlagUsageConstant),
	)
	cobraCommand.PersistentFlags().StringVar(
		&application.logFormatFlagValue,
		logFormatFlagNameConstant,
		"",
		flags.FormatChoiceUsage(string(defaultLogFormatConstant), utils.SupportedLogFormats(), logFormatFlagUsageConstant),
	)

	loggerProvider := func() *zap.Logger {
		return application.logger
	}

	auditBuilder := audit.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() audit.CommandConfiguration {
			return application.configuration.Tools.Audit
		},
	}
	application.addCommand(cobraCommand, auditCommandNameConstant, auditBuilder.Build)

	lintBuilder := linttree.CommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() linttree.CommandConfiguration {
			return application.configuration.Tools.Lint
		},
	}
	application.addCommand(cobraCommand, lintCommandNameConstant, lintBuilder.Build)

	fixBuilder := maintenance.FixCommandBuilder{
		LoggerProvider: loggerProvider,
	}
	application.addCommand(cobraCommand, fixCommandNameConstant, fixBuilder.Build)

	formatBuilder := maintenance.FormatCommandBuilder{
		LoggerProvider: loggerProvider,
		ConfigurationProvider: func() maintenance.FormatConfiguration {
			return application.configuration.Tools.Format
		},
	}
	application.addCommand(cobraCommand, formatCommandNameConstant, formatBuilder.Build)

	exportConfigurationProvider := func() export.CommandConfiguration {
		return application.configuration.Tools.Export
	}
	exportBuilder := export.ExportCommandBuilder{
		LoggerProvider:        loggerProvider,
		ConfigurationProvider: exportConfigurationProvider,
	}
	application.addCommand(cobraCommand, exportCommandNameConstant, exportBuilder.Build)

	convertBuilder := export.ConvertCommandBuilder{
		LoggerProvider:        loggerProvider,
		ConfigurationProvider: exportConfigurationProvider,
	}
	application.addCommand(cobraCommand, convertCommandNameConstant, convertBuilder.Build)

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	if application.buildError != nil {
		return application.buildError
	}
	application.rootCommand.Version = application.versionResolver()

	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) addCommand(rootCommand *cobra.Command, commandName string, build func() (*cobra.Command, error)) {
	subcommand, buildError := build()
	if buildError != nil {
		application.buildError = errors.Join(application.buildError, fmt.Errorf(commandBuildErrorTemplateConstant, commandName, buildError))
		return
	}
	rootCommand.AddCommand(subcommand)
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(defaultLogLevelConstant),
		commonLogFormatConfigKeyConstant: string(defaultLogFormatConstant),
	}
	for configurationKey, configurationValue := range audit.DefaultConfigurationValues(auditConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range linttree.DefaultConfigurationValues(lintConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range maintenance.DefaultFormatConfigurationValues(formatConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range export.DefaultConfigurationValues(exportConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Strings(logFieldArgumentsConstant, arguments),
	)
	return command.Help()
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

// configurationSearchPaths lists the working directory and ~/.flint.
func configurationSearchPaths() []string {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if homeDirectory, homeError := os.UserHomeDir(); homeError == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDirectory, userConfigurationDirectoryConstant))
	}
	return searchPaths
}

func resolveBuildVersion() string {
	buildInfo, available := debug.ReadBuildInfo()
	if !available || len(buildInfo.Main.Version) == 0 || buildInfo.Main.Version == buildInfoDevelVersionConstant {
		return developmentVersionConstant
	}
	return buildInfo.Main.Version
}
