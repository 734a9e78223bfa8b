package audit

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/flint/internal/execshell"
	"github.com/temirov/flint/internal/filesystem"
	"github.com/temirov/flint/internal/secrets"
	pathutils "github.com/temirov/flint/internal/utils/path"
)

const (
	commandUsageConstant             = "audit [roots...]"
	commandShortDescription          = "Audit configuration in git repositories for unsecured secrets"
	commandLongDescription           = "audit discovers git repositories below the given roots (default: the configured roots), walks every JSON file under the include segment looking for values and keys that look like credentials, optionally lints small JavaScript files, and prints numbered findings followed by a summary. The command fails when any error finding is reported."
	flagRepositoryFilterName         = "repository-filter"
	flagRepositoryFilterDescription  = "Regular expression a repository path must match to be audited."
	flagGitleaksName                 = "gitleaks"
	flagGitleaksDescription          = "Also check values against the gitleaks rule pack."
	flagStrictName                   = "strict"
	flagStrictDescription            = "Parse configuration files as strict JSON only."
	flagIncludeSegmentName           = "include-segment"
	flagIncludeSegmentDescription    = "Path fragment a JSON file must contain to be audited."
	auditorConfiguredMessageConstant = "auditor configured"
	logFieldGitleaksConstant         = "gitleaks"
	logFieldStrictConstant           = "strict"
	logFieldIncludeSegmentConstant   = "include_segment"
	logFieldJavaScriptLintConstant   = "javascript_linter"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current audit configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the audit cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Discoverer            RepositoryDiscoverer
	Executor              CommandExecutor
	FileSystem            filesystem.FileSystem
	GitleaksDetector      secrets.Detector
	RootSanitizer         *pathutils.RootSanitizer
}

// Build constructs the cobra command for repository audits.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUsageConstant,
		Short: commandShortDescription,
		Long:  commandLongDescription,
		RunE:  builder.run,
	}

	command.Flags().String(flagRepositoryFilterName, "", flagRepositoryFilterDescription)
	command.Flags().Bool(flagGitleaksName, false, flagGitleaksDescription)
	command.Flags().Bool(flagStrictName, false, flagStrictDescription)
	command.Flags().String(flagIncludeSegmentName, DefaultIncludeSegmentConstant, flagIncludeSegmentDescription)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration(command, arguments)
	logger := builder.resolveLogger()

	roots, rootsError := resolveRoots(builder.resolveRootSanitizer(), configuration.Roots)
	if rootsError != nil {
		return rootsError
	}

	auditor, auditorError := builder.buildAuditor(configuration, logger)
	if auditorError != nil {
		return auditorError
	}

	service := NewService(builder.Discoverer, auditor, command.OutOrStdout(), logger)
	return service.Run(command.Context(), CommandOptions{Roots: roots})
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command, arguments []string) CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	if len(arguments) > 0 {
		configuration.Roots = append([]string{}, arguments...)
	}
	if command.Flags().Changed(flagRepositoryFilterName) {
		configuration.RepositoryFilter, _ = command.Flags().GetString(flagRepositoryFilterName)
	}
	if command.Flags().Changed(flagGitleaksName) {
		configuration.Gitleaks, _ = command.Flags().GetBool(flagGitleaksName)
	}
	if command.Flags().Changed(flagStrictName) {
		configuration.Strict, _ = command.Flags().GetBool(flagStrictName)
	}
	if command.Flags().Changed(flagIncludeSegmentName) {
		configuration.IncludeSegment, _ = command.Flags().GetString(flagIncludeSegmentName)
	}

	return configuration.sanitize()
}

func (builder *CommandBuilder) buildAuditor(configuration CommandConfiguration, logger *zap.Logger) (Auditor, error) {
	extraPatterns, patternsError := compileExtraPatterns(configuration.ExtraPatterns)
	if patternsError != nil {
		return nil, patternsError
	}

	ruleOptions := []secrets.Option{secrets.WithLogger(logger), secrets.WithPatterns(extraPatterns...)}
	if configuration.Gitleaks {
		detector, detectorError := builder.resolveGitleaksDetector()
		if detectorError != nil {
			return nil, detectorError
		}
		ruleOptions = append(ruleOptions, secrets.WithDetectors(detector))
	}

	var auditor Auditor = NewSharedConfigAuditor(
		logger,
		WithIncludeSegment(configuration.IncludeSegment),
		WithStrictParsing(configuration.Strict),
		WithSecretRule(secrets.NewRule(ruleOptions...)),
		WithFileSystem(builder.FileSystem),
	)

	if len(configuration.JavaScriptLinter) > 0 {
		executor, executorError := builder.resolveExecutor(logger)
		if executorError != nil {
			return nil, executorError
		}
		javaScriptAuditor := NewJavaScriptAuditor(builder.FileSystem, executor, configuration.JavaScriptLinter, configuration.JavaScriptMaxBytes, logger)
		auditor = NewCompositeAuditor(auditor, javaScriptAuditor)
	}

	repositoryFilter, filterError := compileRepositoryFilter(configuration.RepositoryFilter)
	if filterError != nil {
		return nil, filterError
	}
	if repositoryFilter != nil {
		auditor = NewRepositoryFilter(repositoryFilter, auditor)
	}

	logger.Debug(
		auditorConfiguredMessageConstant,
		zap.Bool(logFieldGitleaksConstant, configuration.Gitleaks),
		zap.Bool(logFieldStrictConstant, configuration.Strict),
		zap.String(logFieldIncludeSegmentConstant, configuration.IncludeSegment),
		zap.Strings(logFieldJavaScriptLintConstant, configuration.JavaScriptLinter),
	)
	return auditor, nil
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

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (CommandExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
}

func (builder *CommandBuilder) resolveGitleaksDetector() (secrets.Detector, error) {
	if builder.GitleaksDetector != nil {
		return builder.GitleaksDetector, nil
	}
	return secrets.NewGitleaksDetector()
}

func (builder *CommandBuilder) resolveRootSanitizer() *pathutils.RootSanitizer {
	if builder.RootSanitizer != nil {
		return builder.RootSanitizer
	}
	return pathutils.NewRootSanitizer()
}
