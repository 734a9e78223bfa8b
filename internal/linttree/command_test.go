package linttree_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/flint/internal/findings"
	"github.com/temirov/flint/internal/linttree"
	"github.com/temirov/flint/internal/utils/flags"
	pathutils "github.com/temirov/flint/internal/utils/path"
)

const (
	passingSummaryConstant = "Warnings:    0\nErrors:      0\nDirectories: 0\nFiles:       1\nPassed:      yes\n"
	failingSummaryConstant = "Warnings:    0\nErrors:      1\nDirectories: 1\nFiles:       1\nPassed:      no\n"
)

func executeLintCommand(testInstance *testing.T, builder linttree.CommandBuilder, arguments ...string) (string, error) {
	testInstance.Helper()
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetArgs(arguments)
	outputBuffer := &strings.Builder{}
	command.SetOut(outputBuffer)
	command.SetErr(&strings.Builder{})

	executionError := command.Execute()
	return outputBuffer.String(), executionError
}

func TestLintCommand(testInstance *testing.T) {
	testCases := []struct {
		name           string
		files          map[string]string
		extraArguments []string
		expectedOutput func(fixture lintFixture) string
		expectedError  error
	}{
		{
			name:           "passing_recipe",
			files:          map[string]string{"metadata.json": `{"name": "checkout"}`},
			expectedOutput: func(lintFixture) string { return passingSummaryConstant },
		},
		{
			name:  "unexpected_entry_fails",
			files: map[string]string{"metadata.json": `{"name": "checkout"}`, "notes.txt": "draft"},
			expectedOutput: func(fixture lintFixture) string {
				return fmt.Sprintf("error: %s: unexpected file '%s'\n\n", fixture.directory, fixture.path("notes.txt")) + failingSummaryConstant
			},
			expectedError: findings.ErrRunFailed,
		},
		{
			name:           "unexpected_entry_allowed_without_strict_contents",
			files:          map[string]string{"metadata.json": `{"name": "checkout"}`, "notes.txt": "draft"},
			extraArguments: []string{"--strict-directory-contents=false"},
			expectedOutput: func(lintFixture) string { return passingSummaryConstant },
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subTest *testing.T) {
			fixture := newLintFixture(subTest, testCase.files)
			builder := linttree.CommandBuilder{}

			arguments := append([]string{"Recipe", "--directory", fixture.directory, "--schema-dir", fixture.schemaDirectory}, testCase.extraArguments...)
			output, executionError := executeLintCommand(subTest, builder, arguments...)
			if testCase.expectedError != nil {
				require.ErrorIs(subTest, executionError, testCase.expectedError)
			} else {
				require.NoError(subTest, executionError)
			}
			require.Equal(subTest, testCase.expectedOutput(fixture), output)
		})
	}
}

func TestLintCommandUsesConfigurationAndExpandsHome(testInstance *testing.T) {
	fixture := newLintFixture(testInstance, map[string]string{"metadata.json": `{"name": "checkout"}`})
	homeDirectory := filepath.Dir(fixture.directory)

	builder := linttree.CommandBuilder{
		ConfigurationProvider: func() linttree.CommandConfiguration {
			return linttree.CommandConfiguration{
				Directory:               "~/" + filepath.Base(fixture.directory),
				SchemaDirectories:       []string{" ", "~/" + filepath.Base(fixture.schemaDirectory)},
				StrictDirectoryContents: true,
			}
		},
		HomeExpander: pathutils.NewHomeExpanderWithProvider(func() (string, error) { return homeDirectory, nil }),
	}

	output, executionError := executeLintCommand(testInstance, builder, linttree.RecipeTreeName)
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, passingSummaryConstant, output)
}

func TestLintCommandPrintsProperties(testInstance *testing.T) {
	fixture := newLintFixture(testInstance, map[string]string{
		"flows/main.json": `{"bindings": {"db": {}}}`,
	})

	output, executionError := executeLintCommand(testInstance, linttree.CommandBuilder{},
		linttree.FlowEntitiesTreeName, "--directory", fixture.directory, "--schema-dir", fixture.schemaDirectory, "--print-properties")
	require.NoError(testInstance, executionError)
	require.True(testInstance, strings.HasPrefix(output, "+- binding\n   +- definitions\n      |- db\n"))
}

func TestLintCommandRejectsUnknownTree(testInstance *testing.T) {
	_, executionError := executeLintCommand(testInstance, linttree.CommandBuilder{}, "workflow", "--directory", testInstance.TempDir())
	require.ErrorIs(testInstance, executionError, flags.ErrUnsupportedChoice)
}

func TestLintCommandReportsMissingDirectory(testInstance *testing.T) {
	missingDirectory := filepath.Join(testInstance.TempDir(), "absent")
	_, executionError := executeLintCommand(testInstance, linttree.CommandBuilder{}, linttree.RecipeTreeName, "--directory", missingDirectory)
	require.Error(testInstance, executionError)
	require.NotErrorIs(testInstance, executionError, findings.ErrRunFailed)
	_, statError := os.Stat(missingDirectory)
	require.True(testInstance, os.IsNotExist(statError))
}

func TestDefaultLintConfigurationValues(testInstance *testing.T) {
	require.Equal(testInstance, map[string]any{
		"tools.lint.directory":                 "",
		"tools.lint.schema_directories":        []string{},
		"tools.lint.strict_directory_contents": true,
		"tools.lint.print_properties":          false,
	}, linttree.DefaultConfigurationValues("tools.lint"))
}
