package export_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/flint/internal/export"
	"github.com/temirov/flint/internal/jsonrepair"
)

const (
	exportSubtestNameTemplate = "%d_%s"
	relaxedFlowDocument       = "[{\"name\": \"orders@acme\", \"processors\": {\"enrich\": {\"name\": \"Enrich Orders\", \"config\": {\"jsFunc\": \"var x = payload.id;\ndebug(x);   \nreturn toMap(x);\"}}}}, {\"name\": \"billing\", \"processors\": {\"charge\": {\"config\": {\"jsFunc\": \"return item;\"}}}}]"
	enrichScript              = "'use strict';\n/**\n * Flow: orders@acme\n * Step: enrich\n */\n(function(debug, payload, toMap) {\n  var x = payload.id;\n  debug(x);\n  return toMap(x);\n})();\n"
	chargeScript              = "'use strict';\n/**\n * Flow: billing\n * Step: charge\n */\n(function(item) {\n  return item;\n})();\n"
	processorFlowDocument     = `{"name": "orders", "processors": {"load-data": {"config": {"jsFunc": "return payload;"}}, "noop": {"config": {}}, "2fast": {"config": {"jsFunc": "  a();\n  b();  "}}}}`
	processorListingTemplate  = "/**\n * Input File: %s\n */\n\nfunction load_data() {\n    return payload;\n}\n\nfunction _2fast() {\n    a();\n      b();\n}\n"
)

func writeFlowFile(testInstance *testing.T, directory string, name string, content string) string {
	testInstance.Helper()
	filePath := filepath.Join(directory, name)
	require.NoError(testInstance, os.WriteFile(filePath, []byte(content), 0o600))
	return filePath
}

func readExported(testInstance *testing.T, filePath string) string {
	testInstance.Helper()
	content, readError := os.ReadFile(filePath)
	require.NoError(testInstance, readError)
	return string(content)
}

func TestExporterWritesStepScripts(testInstance *testing.T) {
	workingDirectory := testInstance.TempDir()
	flowPath := writeFlowFile(testInstance, workingDirectory, "flows.json", relaxedFlowDocument)
	outputDirectory := filepath.Join(workingDirectory, "out")

	observedCore, observedLogs := observer.New(zap.DebugLevel)
	configuration := export.CommandConfiguration{OutputDirectory: outputDirectory, ScriptProperties: []string{"jsFunc"}}
	written, exportError := export.NewExporter(nil, configuration, zap.New(observedCore)).ExportFile(flowPath)
	require.NoError(testInstance, exportError)

	enrichPath := filepath.Join(outputDirectory, "acme", "orders", "enrich.js")
	chargePath := filepath.Join(outputDirectory, "billing", "charge.js")
	require.Equal(testInstance, []string{enrichPath, chargePath}, written)
	require.Equal(testInstance, enrichScript, readExported(testInstance, enrichPath))
	require.Equal(testInstance, chargeScript, readExported(testInstance, chargePath))
	require.Equal(testInstance, 2, observedLogs.FilterMessage("script exported").Len())
}

func TestExporterSkipsScriptsOutsideSteps(testInstance *testing.T) {
	flowPath := writeFlowFile(testInstance, testInstance.TempDir(), "flow.json", `{"jsFunc": "return 1;", "other": {"jsFunc": "return 2;"}}`)

	observedCore, observedLogs := observer.New(zap.DebugLevel)
	configuration := export.CommandConfiguration{OutputDirectory: testInstance.TempDir(), ScriptProperties: []string{"jsFunc"}}
	written, exportError := export.NewExporter(nil, configuration, zap.New(observedCore)).ExportFile(flowPath)
	require.NoError(testInstance, exportError)
	require.Empty(testInstance, written)
	require.Equal(testInstance, 2, observedLogs.FilterMessage("script outside a flow step skipped").Len())
}

func TestExporterExportFilesContinuesAfterFailure(testInstance *testing.T) {
	workingDirectory := testInstance.TempDir()
	brokenPath := writeFlowFile(testInstance, workingDirectory, "broken.json", `[{"a": 1}]]`)
	invalidPath := writeFlowFile(testInstance, workingDirectory, "invalid.json", `[{"name": "x", "processors": {"s": {"config": {"jsFunc": "a()",}}}}]`)
	flowPath := writeFlowFile(testInstance, workingDirectory, "flows.json", relaxedFlowDocument)

	configuration := export.CommandConfiguration{OutputDirectory: filepath.Join(workingDirectory, "out"), ScriptProperties: []string{"jsFunc"}}
	written, exportError := export.NewExporter(nil, configuration, nil).ExportFiles([]string{brokenPath, invalidPath, flowPath})
	require.Len(testInstance, written, 2)
	require.ErrorIs(testInstance, exportError, jsonrepair.ErrStackUnderflow)
	require.ErrorContains(testInstance, exportError, "unable to repair "+brokenPath)
	require.ErrorContains(testInstance, exportError, "unable to parse "+invalidPath+" after repair near")
}

func TestScriptSourceRelativePath(testInstance *testing.T) {
	testCases := []struct {
		name         string
		source       export.ScriptSource
		expectedPath string
		expectUnsafe bool
	}{
		{name: "reversed_segments", source: export.ScriptSource{FlowName: "orders@emea@acme", StepName: "load"}, expectedPath: filepath.Join("acme", "emea", "orders", "load.js")},
		{name: "single_segment", source: export.ScriptSource{FlowName: "billing", StepName: "charge"}, expectedPath: filepath.Join("billing", "charge.js")},
		{name: "parent_flow_rejected", source: export.ScriptSource{FlowName: "..", StepName: "load"}, expectUnsafe: true},
		{name: "escaping_step_rejected", source: export.ScriptSource{FlowName: "orders", StepName: "../../etc/passwd"}, expectUnsafe: true},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(exportSubtestNameTemplate, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			relativePath, pathError := testCase.source.RelativePath()
			if testCase.expectUnsafe {
				require.ErrorIs(testInstance, pathError, export.ErrUnsafeExportPath)
				return
			}
			require.NoError(testInstance, pathError)
			require.Equal(testInstance, testCase.expectedPath, relativePath)
		})
	}
}

func TestScriptSourceRenderExpandsEscapedLineBreaks(testInstance *testing.T) {
	source := export.ScriptSource{FlowName: "f", StepName: "s", Body: `  warn("a");\nreturn _.size(payload);  `}
	require.Equal(
		testInstance,
		"'use strict';\n/**\n * Flow: f\n * Step: s\n */\n(function(_, payload, warn) {\n  warn(\"a\");\n  return _.size(payload);\n})();\n",
		source.Render(export.DefaultSymbolPatterns()),
	)
}

func TestResolveImports(testInstance *testing.T) {
	testCases := []struct {
		name            string
		source          string
		expectedImports []string
	}{
		{name: "no_symbols", source: "return 1;", expectedImports: nil},
		{
			name:            "literal_and_pattern_symbols",
			source:          "_.map(code_data_orders(x)); item.x; JavaString.valueOf(item)",
			expectedImports: []string{"Java", "JavaString", "_", "code_data_orders", "item"},
		},
		{name: "underscore_without_member_access", source: "var a_b = code_model_user;", expectedImports: []string{"code_model_user;"}},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(exportSubtestNameTemplate, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedImports, export.ResolveImports(export.DefaultSymbolPatterns(), testCase.source))
		})
	}
}

func TestConverterConvert(testInstance *testing.T) {
	flowPath := writeFlowFile(testInstance, testInstance.TempDir(), "flow.json", processorFlowDocument)
	listPath := writeFlowFile(testInstance, testInstance.TempDir(), "flows.json", "["+processorFlowDocument+", {\"name\": \"empty\"}]")
	converter := export.NewConverter(nil, []string{"jsFunc"})

	testCases := []struct {
		name            string
		inputPath       string
		fromFormat      string
		toFormat        string
		expectedOutput  string
		expectedChanged bool
		expectedError   error
	}{
		{name: "single_flow", inputPath: flowPath, fromFormat: export.FormatJSON, toFormat: export.FormatJavaScript, expectedOutput: fmt.Sprintf(processorListingTemplate, flowPath), expectedChanged: true},
		{name: "flow_list", inputPath: listPath, fromFormat: export.FormatJSON, toFormat: export.FormatJavaScript, expectedOutput: fmt.Sprintf(processorListingTemplate, listPath), expectedChanged: true},
		{name: "same_format", inputPath: flowPath, fromFormat: export.FormatJavaScript, toFormat: export.FormatJavaScript},
		{name: "unsupported_direction", inputPath: flowPath, fromFormat: export.FormatJavaScript, toFormat: export.FormatJSON, expectedError: export.ErrUnsupportedConversion},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(exportSubtestNameTemplate, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			output, changed, conversionError := converter.Convert(testCase.inputPath, testCase.fromFormat, testCase.toFormat)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, conversionError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, conversionError)
			require.Equal(testInstance, testCase.expectedChanged, changed)
			require.Equal(testInstance, testCase.expectedOutput, output)
		})
	}
}
