package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/flint/internal/document"
	"github.com/temirov/flint/internal/export"
	"github.com/temirov/flint/internal/findings"
)

const (
	testConfigurationFileNameConstant = "config.yaml"
	testConfigurationContentConstant  = "common:\n  log_level: debug\ntools:\n  audit:\n    include_segment: /config/\n  lint:\n    schema_directories:\n      - /schemas\n"
	testSchemaDirectoriesEnvironment  = "FLINT_TOOLS_LINT_SCHEMA_DIRECTORIES"
	testRelaxedDocumentConstant       = "{\"query\": \"SELECT *\nFROM flows\"}"
	testRepairedDocumentConstant      = `{"query": "SELECT *\nFROM flows"}`
)

func executeApplication(t *testing.T, application *Application, arguments ...string) (string, error) {
	t.Helper()
	outputBuffer := &strings.Builder{}
	application.rootCommand.SetArgs(arguments)
	application.rootCommand.SetOut(outputBuffer)
	application.rootCommand.SetErr(outputBuffer)
	executionError := application.Execute()
	return outputBuffer.String(), executionError
}

func TestApplicationRegistersCommands(t *testing.T) {
	application := NewApplication()
	require.NoError(t, application.buildError)

	var commandNames []string
	for _, subcommand := range application.rootCommand.Commands() {
		commandNames = append(commandNames, subcommand.Name())
	}
	for _, expectedName := range []string{"audit", "convert", "export", "fix", "format", "lint"} {
		require.Contains(t, commandNames, expectedName)
	}
}

func TestApplicationEmbeddedDefaults(t *testing.T) {
	application := NewApplication()
	require.NoError(t, application.initializeConfiguration(application.rootCommand))

	configuration := application.configuration
	require.Equal(t, ApplicationCommonConfiguration{LogLevel: "warn", LogFormat: "console"}, configuration.Common)
	require.Equal(t, []string{"."}, configuration.Tools.Audit.Roots)
	require.Equal(t, "/sharedConfig/", configuration.Tools.Audit.IncludeSegment)
	require.Equal(t, int64(10240), configuration.Tools.Audit.JavaScriptMaxBytes)
	require.False(t, configuration.Tools.Audit.Gitleaks)
	require.Empty(t, configuration.Tools.Audit.JavaScriptLinter)
	require.True(t, configuration.Tools.Lint.StrictDirectoryContents)
	require.Empty(t, configuration.Tools.Lint.SchemaDirectories)
	require.Equal(t, document.DefaultScriptProperties, configuration.Tools.Format.ScriptProperties)
	require.Equal(t, export.DefaultCommandConfiguration(), configuration.Tools.Export)
}

func TestApplicationConfigurationLayers(t *testing.T) {
	testCases := []struct {
		name                      string
		environment               map[string]string
		expectedSchemaDirectories []string
	}{
		{
			name:                      "configuration_file",
			expectedSchemaDirectories: []string{"/schemas"},
		},
		{
			name:                      "environment_overrides_file",
			environment:               map[string]string{testSchemaDirectoriesEnvironment: "/a,/b"},
			expectedSchemaDirectories: []string{"/a", "/b"},
		},
	}

	for testCaseIndex, testCase := range testCases {
		t.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(t *testing.T) {
			for environmentName, environmentValue := range testCase.environment {
				t.Setenv(environmentName, environmentValue)
			}
			configurationPath := filepath.Join(t.TempDir(), testConfigurationFileNameConstant)
			require.NoError(t, os.WriteFile(configurationPath, []byte(testConfigurationContentConstant), 0o600))

			application := NewApplication()
			require.NoError(t, application.rootCommand.PersistentFlags().Set(configFileFlagNameConstant, configurationPath))
			require.NoError(t, application.rootCommand.PersistentFlags().Set(logFormatFlagNameConstant, "structured"))
			require.NoError(t, application.initializeConfiguration(application.rootCommand))

			require.Equal(t, configurationPath, application.configurationMetadata.ConfigFileUsed)
			require.Equal(t, ApplicationCommonConfiguration{LogLevel: "debug", LogFormat: "structured"}, application.configuration.Common)
			require.Equal(t, "/config/", application.configuration.Tools.Audit.IncludeSegment)
			require.Equal(t, []string{"."}, application.configuration.Tools.Audit.Roots)
			require.Equal(t, testCase.expectedSchemaDirectories, application.configuration.Tools.Lint.SchemaDirectories)
		})
	}
}

func TestApplicationRejectsUnsupportedLogLevel(t *testing.T) {
	application := NewApplication()
	require.NoError(t, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "verbose"))

	initializationError := application.initializeConfiguration(application.rootCommand)
	require.ErrorContains(t, initializationError, "unable to create logger")
}

func TestApplicationExecutesFix(t *testing.T) {
	documentPath := filepath.Join(t.TempDir(), "flow.json")
	require.NoError(t, os.WriteFile(documentPath, []byte(testRelaxedDocumentConstant), 0o644))

	_, executionError := executeApplication(t, NewApplication(), "fix", documentPath)
	require.NoError(t, executionError)

	content, readError := os.ReadFile(documentPath)
	require.NoError(t, readError)
	require.Equal(t, testRepairedDocumentConstant, string(content))
}

func TestApplicationExecutesExport(t *testing.T) {
	workingDirectory := t.TempDir()
	flowPath := filepath.Join(workingDirectory, "flows.json")
	require.NoError(t, os.WriteFile(flowPath, []byte(`[{"name": "orders@acme", "processors": {"load": {"config": {"jsFunc": "return payload;"}}}}]`), 0o644))
	outputDirectory := filepath.Join(workingDirectory, "scripts")

	output, executionError := executeApplication(t, NewApplication(), "export", "--output-directory", outputDirectory, flowPath)
	require.NoError(t, executionError)

	exportedPath := filepath.Join(outputDirectory, "acme", "orders", "load.js")
	require.Equal(t, exportedPath+"\n", output)
	content, readError := os.ReadFile(exportedPath)
	require.NoError(t, readError)
	require.Contains(t, string(content), "(function(payload) {\n  return payload;\n})();\n")
}

func TestApplicationLintFailureReturnsRunFailed(t *testing.T) {
	lintDirectory := t.TempDir()

	output, executionError := executeApplication(t, NewApplication(), "lint", "recipe", "--directory", lintDirectory, "--log-level", "error")
	require.ErrorIs(t, executionError, findings.ErrRunFailed)
	require.Contains(t, output, "error: "+lintDirectory+": Could not find file: metadata.json\n")
	require.Contains(t, output, "Passed:      no\n")
}

func TestApplicationPrintsHelpWithoutCommand(t *testing.T) {
	output, executionError := executeApplication(t, NewApplication())
	require.NoError(t, executionError)
	require.Contains(t, output, "Available Commands")
}
