package linttree_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/flint/internal/execshell"
	"github.com/temirov/flint/internal/filesystem"
	"github.com/temirov/flint/internal/findings"
	"github.com/temirov/flint/internal/linttree"
)

const (
	testDirectoryPermissions = 0o755
	testFilePermissions      = 0o644
	metadataSchemaConstant   = `{"type": "object", "required": ["name"]}`
	openSchemaConstant       = `{"type": "object"}`
)

type fixedWorkingDirectoryFileSystem struct {
	filesystem.OSFileSystem
	workingDirectory string
}

func (fileSystem fixedWorkingDirectoryFileSystem) Getwd() (string, error) {
	return fileSystem.workingDirectory, nil
}

type recordingCommandRunner struct {
	result   execshell.ExecutionResult
	runError error
	commands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.commands = append(runner.commands, command)
	return runner.result, runner.runError
}

type lintFixture struct {
	directory       string
	schemaDirectory string
	environment     linttree.Environment
}

func newLintFixture(testInstance *testing.T, files map[string]string) lintFixture {
	testInstance.Helper()
	rootDirectory := testInstance.TempDir()
	lintDirectory := filepath.Join(rootDirectory, "export")
	schemaDirectory := filepath.Join(rootDirectory, "schemas")
	require.NoError(testInstance, os.MkdirAll(lintDirectory, testDirectoryPermissions))
	require.NoError(testInstance, os.MkdirAll(schemaDirectory, testDirectoryPermissions))

	schemas := map[string]string{
		"metadata.schema":      metadataSchemaConstant,
		"triggerers.schema":    openSchemaConstant,
		"shared-config.schema": openSchemaConstant,
	}
	for name, contents := range schemas {
		require.NoError(testInstance, os.WriteFile(filepath.Join(schemaDirectory, name), []byte(contents), testFilePermissions))
	}
	for relativePath, contents := range files {
		absolutePath := filepath.Join(lintDirectory, filepath.FromSlash(relativePath))
		require.NoError(testInstance, os.MkdirAll(filepath.Dir(absolutePath), testDirectoryPermissions))
		if strings.HasSuffix(relativePath, "/") {
			continue
		}
		require.NoError(testInstance, os.WriteFile(absolutePath, []byte(contents), testFilePermissions))
	}

	return lintFixture{
		directory:       lintDirectory,
		schemaDirectory: schemaDirectory,
		environment: linttree.Environment{
			FileSystem: fixedWorkingDirectoryFileSystem{workingDirectory: rootDirectory},
			Logger:     zap.NewNop(),
		},
	}
}

func (fixture lintFixture) run(testInstance *testing.T, linter linttree.Linter) *findings.Results {
	testInstance.Helper()
	results, runError := linter.Run(context.Background(), linttree.Arguments{
		Directory:         fixture.directory,
		SchemaDirectories: []string{fixture.schemaDirectory},
	}, fixture.environment)
	require.NoError(testInstance, runError)
	return results
}

func (fixture lintFixture) path(relativePath string) string {
	return filepath.Join(fixture.directory, filepath.FromSlash(relativePath))
}

func renderedFindings(results *findings.Results) []string {
	var rendered []string
	for _, finding := range results.Findings() {
		rendered = append(rendered, finding.String())
	}
	return rendered
}

func TestRecipeTree(testInstance *testing.T) {
	testCases := []struct {
		name             string
		files            map[string]string
		expectedFindings func(fixture lintFixture) []string
		expectedSummary  findings.Summary
	}{
		{
			name: "valid_recipe",
			files: map[string]string{
				"metadata.json":     `{"name": "checkout"}`,
				"flows/main.json":   `{"steps": []}`,
				"sharedConfigs/":    "",
				"flows/legacy.json": "{steps: [a, b]}",
			},
			expectedFindings: func(lintFixture) []string { return nil },
			expectedSummary:  findings.Summary{Directories: 2, Files: 3, Passed: true},
		},
		{
			name: "schema_violation_and_unexpected_entries",
			files: map[string]string{
				"metadata.json": `{"version": 1}`,
				"notes.txt":     "todo",
				"scratch/":      "",
			},
			expectedFindings: func(fixture lintFixture) []string {
				return []string{
					fmt.Sprintf("error: %s: unexpected file '%s'", fixture.directory, fixture.path("notes.txt")),
					fmt.Sprintf("error: %s: unexpected directory '%s'", fixture.directory, fixture.path("scratch")),
				}
			},
			expectedSummary: findings.Summary{Errors: 3, Directories: 1, Files: 1, Passed: false},
		},
		{
			name: "missing_metadata_and_broken_flow",
			files: map[string]string{
				"flows/broken.json": `{"steps": [}`,
			},
			expectedFindings: func(fixture lintFixture) []string {
				return []string{
					fmt.Sprintf("error: %s: Could not find file: metadata.json", fixture.directory),
				}
			},
			expectedSummary: findings.Summary{Errors: 2, Directories: 2, Files: 1, Passed: false},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subTest *testing.T) {
			fixture := newLintFixture(subTest, testCase.files)
			results := fixture.run(subTest, linttree.Recipe())

			rendered := renderedFindings(results)
			for _, expected := range testCase.expectedFindings(fixture) {
				require.Contains(subTest, rendered, expected)
			}
			require.Equal(subTest, testCase.expectedSummary, results.Summarize(linttree.PathKindResolver(filesystem.OSFileSystem{})))
		})
	}
}

func TestRecipeReportsSchemaFailureOnFile(testInstance *testing.T) {
	fixture := newLintFixture(testInstance, map[string]string{"metadata.json": `{"version": 1}`})
	results := fixture.run(testInstance, linttree.Recipe())

	metadataFindings := results.FindingsFor(fixture.path("metadata.json"))
	require.Len(testInstance, metadataFindings, 1)
	require.True(testInstance, metadataFindings[0].Fatal())
	require.Contains(testInstance, metadataFindings[0].Message(), "name")
}

func TestMissingSchemaNamesSearchPaths(testInstance *testing.T) {
	fixture := newLintFixture(testInstance, map[string]string{"config.json": `{}`})
	linter := linttree.Linter{Children: []linttree.Node{
		linttree.File{Path: "config.json", Children: []linttree.Node{
			linttree.JSONContent{Rules: []linttree.JSONRule{linttree.FollowsSchema{Reference: "absent.schema"}}},
		}},
	}}
	results := fixture.run(testInstance, linter)

	configFindings := results.FindingsFor(fixture.path("config.json"))
	require.Len(testInstance, configFindings, 1)
	require.Contains(testInstance, configFindings[0].Message(), filepath.Join(fixture.schemaDirectory, "absent.schema"))
}

func TestGlobLimits(testInstance *testing.T) {
	fixture := newLintFixture(testInstance, map[string]string{
		"a.json":      `{}`,
		"nested/b/":   "",
		"nested/c/":   "",
		"nested/d.md": "",
	})
	linter := linttree.Linter{Children: []linttree.Node{
		linttree.Files{Glob: "*.json", Limits: linttree.MatchLimits{Minimum: 2}},
		linttree.Directories{Glob: "nested/*", Limits: linttree.MatchLimits{Maximum: 1}},
	}}
	results := fixture.run(testInstance, linter)

	require.Equal(testInstance, []string{
		fmt.Sprintf("error: %s: '*.json' should have had at least 2 matches but it only had 1 matches.", fixture.directory),
		fmt.Sprintf("error: %s: 'nested/*' should have had at most 1 matches but it had 2 matches.", fixture.directory),
	}, renderedFindings(results))
	require.True(testInstance, results.Linted(fixture.path("a.json")))
	require.True(testInstance, results.Linted(fixture.path("nested/b")))
	require.False(testInstance, results.Linted(fixture.path("nested/d.md")))
}

func TestFunctionNode(testInstance *testing.T) {
	fixture := newLintFixture(testInstance, nil)
	linter := linttree.Linter{Children: []linttree.Node{
		linttree.Function{Name: "passes", Check: func(*linttree.Context) error { return nil }},
		linttree.Function{Name: "bare", Check: func(*linttree.Context) error { return linttree.ErrCheckFailed }},
		linttree.Function{Name: "reasoned", Check: func(*linttree.Context) error { return errors.New("too old") }},
	}}
	results := fixture.run(testInstance, linter)

	require.Equal(testInstance, []string{
		fmt.Sprintf("error: %s: function: 'bare' failed.", fixture.directory),
		fmt.Sprintf("error: %s: function: 'reasoned' failed with 'too old'.", fixture.directory),
	}, renderedFindings(results))
}

func TestShellCommandNode(testInstance *testing.T) {
	testCases := []struct {
		name            string
		result          execshell.ExecutionResult
		runError        error
		expectedMessage string
	}{
		{name: "success", result: execshell.ExecutionResult{}},
		{
			name:            "non_zero_exit",
			result:          execshell.ExecutionResult{ExitCode: 2, StandardError: "bad token"},
			expectedMessage: "non-zero return code (2) returned from 'jshint %[1]s'. Output: bad token",
		},
		{
			name:            "not_started",
			runError:        errors.New("executable not found"),
			expectedMessage: "Error running: 'jshint %[1]s' jshint could not be executed: executable not found",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subTest *testing.T) {
			fixture := newLintFixture(subTest, map[string]string{"app.js": "var a = 1;"})
			runner := &recordingCommandRunner{result: testCase.result, runError: testCase.runError}
			executor, executorError := execshell.NewShellExecutor(zap.NewNop(), runner)
			require.NoError(subTest, executorError)
			fixture.environment.Executor = executor

			results := fixture.run(subTest, linttree.Linter{Children: []linttree.Node{
				linttree.File{Path: "app.js", Children: []linttree.Node{linttree.ShellCommand{CommandLine: []string{"jshint", "%s"}}}},
			}})

			require.Len(subTest, runner.commands, 1)
			require.Equal(subTest, []string{fixture.path("app.js")}, runner.commands[0].Details.Arguments)
			fileFindings := results.FindingsFor(fixture.path("app.js"))
			if len(testCase.expectedMessage) == 0 {
				require.Empty(subTest, fileFindings)
				return
			}
			require.Len(subTest, fileFindings, 1)
			require.Equal(subTest, fmt.Sprintf(testCase.expectedMessage, fixture.path("app.js")), fileFindings[0].Message())
		})
	}
}

func TestFlowEntitiesBindings(testInstance *testing.T) {
	testCases := []struct {
		name            string
		files           map[string]string
		expectedFailure string
	}{
		{
			name: "all_bindings_defined",
			files: map[string]string{
				"triggerers/http/a.json": `{"binding": "db", "nested": [{"binding": "cache"}]}`,
				"sharedConfig/c.json":    `{"binding": "db"}`,
				"flows/main.json":        `{"bindings": {"db": {}, "cache": {}, "unused": {}}}`,
				"javascript/":            "",
			},
		},
		{
			name: "undefined_bindings",
			files: map[string]string{
				"triggerers/a.json":   `{"binding": "db"}`,
				"sharedConfig/c.json": `{"items": [{"binding": "api"}, {"binding": "queue"}]}`,
				"flows/main.json":     `{"bindings": {"db": {}}}`,
			},
			expectedFailure: "function: 'check_bindings' failed with 'Undefined bindings: ['api', 'queue']'.",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subTest *testing.T) {
			fixture := newLintFixture(subTest, testCase.files)
			results := fixture.run(subTest, linttree.FlowEntities())

			rootFindings := results.FindingsFor(fixture.directory)
			if len(testCase.expectedFailure) == 0 {
				require.Empty(subTest, results.Findings())
				return
			}
			require.Len(subTest, rootFindings, 1)
			require.Equal(subTest, testCase.expectedFailure, rootFindings[0].Message())
		})
	}
}

func TestAuditSecretsRule(testInstance *testing.T) {
	fixture := newLintFixture(testInstance, map[string]string{
		"sharedConfig/db.json": `{"referenceId": "db", "db_password": "x", "safe": {"secure": true, "privkey": "y"}}`,
	})
	results := fixture.run(testInstance, linttree.Linter{Children: []linttree.Node{
		linttree.Files{Glob: "**/*.json", Children: []linttree.Node{
			linttree.JSONContent{Rules: []linttree.JSONRule{linttree.AuditSecrets{}}},
		}},
	}})

	fileFindings := results.FindingsFor(fixture.path("sharedConfig/db.json"))
	require.Len(testInstance, fileFindings, 1)
	contextual, isContextual := fileFindings[0].(findings.ContextualWarning)
	require.True(testInstance, isContextual)
	require.Equal(testInstance, "/root/referenceId/db/db_password", contextual.Path.String())
	require.False(testInstance, results.Failed())
}

func TestPrintProperties(testInstance *testing.T) {
	fixture := newLintFixture(testInstance, map[string]string{
		"a.json": `{"binding": "db", "bindings": {"z": 1, "a": 2}}`,
	})
	var output bytes.Buffer
	fixture.environment.Output = &output

	fixture.run(testInstance, linttree.Linter{
		PrintProperties: true,
		Children: []linttree.Node{
			linttree.File{Path: "a.json", Children: []linttree.Node{linttree.JSONContent{Rules: []linttree.JSONRule{
				linttree.CollectValues{Name: "refs", Extract: linttree.FieldValues("binding"), Group: "binding", Key: "references"},
				linttree.CollectValues{Name: "defs", Extract: linttree.MappingKeys("bindings"), Group: "binding", Key: "definitions"},
				linttree.CollectValues{Name: "missing", Extract: linttree.FieldValues("absent"), Group: "other", Key: "values"},
			}}}},
		},
	})

	require.Equal(testInstance, "+- binding\n   +- references\n      |- db\n   +- definitions\n      |- a\n      |- z\n", output.String())
}

func TestCollectValuesRequiresMatch(testInstance *testing.T) {
	fixture := newLintFixture(testInstance, map[string]string{"a.json": `{"name": "x"}`})
	results := fixture.run(testInstance, linttree.Linter{Children: []linttree.Node{
		linttree.File{Path: "a.json", Children: []linttree.Node{linttree.JSONContent{Rules: []linttree.JSONRule{
			linttree.CollectValues{Name: "..binding", Extract: linttree.FieldValues("binding"), Group: "binding", Key: "references"},
		}}}},
	}})

	require.Equal(testInstance, []string{
		fmt.Sprintf("error: %s: ..binding did not match any elements", fixture.path("a.json")),
	}, renderedFindings(results))
}

func TestBuiltin(testInstance *testing.T) {
	require.Equal(testInstance, []string{linttree.FlowEntitiesTreeName, linttree.RecipeTreeName}, linttree.BuiltinNames())

	recipe, builtinError := linttree.Builtin(linttree.RecipeTreeName)
	require.NoError(testInstance, builtinError)
	require.True(testInstance, recipe.StrictDirectoryContents)

	_, builtinError = linttree.Builtin("unknown")
	require.ErrorIs(testInstance, builtinError, linttree.ErrUnknownTree)
}

func TestRunFailsForMissingDirectory(testInstance *testing.T) {
	_, runError := linttree.Recipe().Run(context.Background(), linttree.Arguments{
		Directory: filepath.Join(testInstance.TempDir(), "absent"),
	}, linttree.Environment{})
	require.Error(testInstance, runError)
}
