package pathutils_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/flint/internal/utils/path"
)

const (
	testHomeDirectoryConstant        = "/home/auditor"
	testTildeRelativePathConstant    = "src/customers"
	testSubtestNameTemplate          = "%d_%s"
	testWhitespacePrefixConstant     = "  "
	testWhitespaceSuffixConstant     = "\t"
	testSiblingDirectoryConstant     = "customers-archive"
	testNestedDirectoryConstant      = "emea"
	testDuplicateRootCaseConstant    = "duplicates_collapse"
	testNestedRootCaseConstant       = "nested_roots_pruned"
	testSiblingRootCaseConstant      = "sibling_prefix_kept"
	testNoPruneCaseConstant          = "pruning_disabled"
	testExpansionCaseConstant        = "whitespace_and_tilde"
	testUnresolvableHomeCaseConstant = "unresolvable_home"
)

func fixedHome() (string, error) {
	return testHomeDirectoryConstant, nil
}

func TestHomeExpanderExpand(testInstance *testing.T) {
	testCases := []struct {
		name         string
		provider     pathutils.HomeDirectoryProvider
		input        string
		expectedPath string
	}{
		{name: "bare_tilde", provider: fixedHome, input: "~", expectedPath: testHomeDirectoryConstant},
		{name: "tilde_prefix", provider: fixedHome, input: "~/" + testTildeRelativePathConstant, expectedPath: filepath.Join(testHomeDirectoryConstant, testTildeRelativePathConstant)},
		{name: "absolute_untouched", provider: fixedHome, input: "/srv/repos", expectedPath: "/srv/repos"},
		{name: "other_user_untouched", provider: fixedHome, input: "~other/repos", expectedPath: "~other/repos"},
		{name: "empty", provider: fixedHome, input: "", expectedPath: ""},
		{name: "surrounding_whitespace", provider: fixedHome, input: testWhitespacePrefixConstant + "~/repos" + testWhitespaceSuffixConstant, expectedPath: filepath.Join(testHomeDirectoryConstant, "repos")},
		{name: "tilde_suffix_untouched", provider: fixedHome, input: "~repos", expectedPath: "~repos"},
		{
			name:         testUnresolvableHomeCaseConstant,
			provider:     func() (string, error) { return "", errors.New("no home") },
			input:        "~/repos",
			expectedPath: "~/repos",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplate, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			expander := pathutils.NewHomeExpanderWithProvider(testCase.provider)
			require.Equal(testInstance, testCase.expectedPath, expander.Expand(testCase.input))
		})
	}
}

func TestHomeExpanderExpandAllDropsBlankPaths(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(fixedHome)
	require.Equal(
		testInstance,
		[]string{filepath.Join(testHomeDirectoryConstant, "schemas"), "/srv/schemas"},
		expander.ExpandAll([]string{" ~/schemas", testWhitespacePrefixConstant, "/srv/schemas\t"}),
	)
	require.Empty(testInstance, expander.ExpandAll(nil))
}

func TestRootSanitizerSanitize(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	nestedDirectory := filepath.Join(temporaryDirectory, testNestedDirectoryConstant)
	siblingDirectory := temporaryDirectory + "-" + testSiblingDirectoryConstant
	expander := pathutils.NewHomeExpanderWithProvider(fixedHome)

	testCases := []struct {
		name            string
		configuration   pathutils.RootSanitizerConfiguration
		inputs          []string
		expectedOutputs []string
	}{
		{
			name:          testExpansionCaseConstant,
			configuration: pathutils.RootSanitizerConfiguration{},
			inputs: []string{
				"",
				testWhitespacePrefixConstant + temporaryDirectory + testWhitespaceSuffixConstant,
				testWhitespacePrefixConstant + "~/" + testTildeRelativePathConstant + testWhitespaceSuffixConstant,
			},
			expectedOutputs: []string{temporaryDirectory, filepath.Join(testHomeDirectoryConstant, testTildeRelativePathConstant)},
		},
		{
			name:            testNestedRootCaseConstant,
			configuration:   pathutils.RootSanitizerConfiguration{PruneNestedRoots: true},
			inputs:          []string{nestedDirectory, temporaryDirectory},
			expectedOutputs: []string{temporaryDirectory},
		},
		{
			name:            testDuplicateRootCaseConstant,
			configuration:   pathutils.RootSanitizerConfiguration{PruneNestedRoots: true},
			inputs:          []string{temporaryDirectory, temporaryDirectory + string(filepath.Separator)},
			expectedOutputs: []string{temporaryDirectory},
		},
		{
			name:            testSiblingRootCaseConstant,
			configuration:   pathutils.RootSanitizerConfiguration{PruneNestedRoots: true},
			inputs:          []string{siblingDirectory, temporaryDirectory},
			expectedOutputs: []string{siblingDirectory, temporaryDirectory},
		},
		{
			name:            testNoPruneCaseConstant,
			configuration:   pathutils.RootSanitizerConfiguration{},
			inputs:          []string{nestedDirectory, temporaryDirectory},
			expectedOutputs: []string{nestedDirectory, temporaryDirectory},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplate, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			sanitizer := pathutils.NewRootSanitizerWithConfiguration(expander, testCase.configuration)
			require.Equal(testInstance, testCase.expectedOutputs, sanitizer.Sanitize(testCase.inputs))
		})
	}
}

func TestRootSanitizerReturnsNilForEmptyResults(testInstance *testing.T) {
	require.Nil(testInstance, pathutils.NewRootSanitizer().Sanitize([]string{"   ", "\n"}))
}
