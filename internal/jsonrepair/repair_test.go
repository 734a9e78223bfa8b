package jsonrepair_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/flint/internal/jsonrepair"
)

const (
	repairSubtestNameTemplateConstant = "%d_%s"
)

func TestRepairRewritesDialectDeviations(testInstance *testing.T) {
	testCases := []struct {
		name           string
		input          string
		expectedOutput string
		expectStrict   bool
	}{
		{
			name:           "raw_newline_in_double_quoted_string",
			input:          "{\"a\": \"x\ny\"}",
			expectedOutput: `{"a": "x\ny"}`,
			expectStrict:   true,
		},
		{
			name:           "raw_tab_in_double_quoted_string",
			input:          "{\"a\": \"x\ty\"}",
			expectedOutput: `{"a": "x\t y"}`,
			expectStrict:   true,
		},
		{
			name:           "newlines_and_tabs_outside_strings_untouched",
			input:          "{\n\t\"a\": 1\n}",
			expectedOutput: "{\n\t\"a\": 1\n}",
			expectStrict:   true,
		},
		{
			name:           "single_quotes_are_not_canonicalized",
			input:          "{'a': 'b\nc'}",
			expectedOutput: `{'a': 'b\nc'}`,
			expectStrict:   false,
		},
		{
			name:           "escaped_quote_does_not_close_string",
			input:          "{\"a\": \"say \\\"hi\\\"\nnow\"}",
			expectedOutput: `{"a": "say \"hi\"\nnow"}`,
			expectStrict:   true,
		},
		{
			name:           "escaped_backslash_before_closing_quote",
			input:          "{\"a\": \"c:\\\\\", \"b\": \"x\ny\"}",
			expectedOutput: `{"a": "c:\\", "b": "x\ny"}`,
			expectStrict:   true,
		},
		{
			name:           "other_quote_kind_inside_string_is_literal",
			input:          "{\"a\": \"it's\nfine\"}",
			expectedOutput: `{"a": "it's\nfine"}`,
			expectStrict:   true,
		},
		{
			name:           "mismatched_bracket_kind_is_not_detected",
			input:          "[1}",
			expectedOutput: "[1}",
			expectStrict:   false,
		},
		{
			name:           "brackets_inside_strings_do_not_nest",
			input:          "[\"]\", \"}\n\"]",
			expectedOutput: `["]", "}\n"]`,
			expectStrict:   true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(repairSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			repairer := jsonrepair.NewRepairer()
			repairedText, repairError := repairer.Repair(testCase.input)
			require.NoError(testInstance, repairError)
			require.Equal(testInstance, testCase.expectedOutput, repairedText)
			require.Equal(testInstance, testCase.expectStrict, json.Valid([]byte(repairedText)))
			require.Empty(testInstance, repairer.Pending())
			require.Equal(testInstance, 1, repairer.Depth())
		})
	}
}

func TestRepairPreservesStrictDocuments(testInstance *testing.T) {
	strictDocuments := []string{
		`{"name": "alpha", "values": [1, 2.5, true, null, "x\ty"], "nested": {"k": "\"quoted\""}}`,
		`[]`,
		`"plain string"`,
		`{"path": "c:\\temp\\", "unicode": "\u00e9"}`,
	}

	for documentIndex, document := range strictDocuments {
		testInstance.Run(fmt.Sprintf(repairSubtestNameTemplateConstant, documentIndex, "strict"), func(testInstance *testing.T) {
			repairedText, repairError := jsonrepair.Repair(document)
			require.NoError(testInstance, repairError)
			require.True(testInstance, json.Valid([]byte(repairedText)))

			var original any
			var repaired any
			require.NoError(testInstance, json.Unmarshal([]byte(document), &original))
			require.NoError(testInstance, json.Unmarshal([]byte(repairedText), &repaired))
			require.Equal(testInstance, original, repaired)
		})
	}
}

func TestRepairReportsUnbalancedInput(testInstance *testing.T) {
	testCases := []struct {
		name             string
		input            string
		expectedPosition jsonrepair.Position
	}{
		{
			name:             "closing_bracket_first",
			input:            "]",
			expectedPosition: jsonrepair.Position{Line: 1, Column: 1},
		},
		{
			name:             "extra_closing_brace_on_second_line",
			input:            "{}\n}",
			expectedPosition: jsonrepair.Position{Line: 2, Column: 1},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(repairSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			_, repairError := jsonrepair.Repair(testCase.input)
			require.Error(testInstance, repairError)
			require.True(testInstance, errors.Is(repairError, jsonrepair.ErrStackUnderflow))

			var underflowError *jsonrepair.UnderflowError
			require.True(testInstance, errors.As(repairError, &underflowError))
			require.Equal(testInstance, testCase.expectedPosition, underflowError.Position)
		})
	}
}

func TestRepairLeavesUnterminatedStatesPending(testInstance *testing.T) {
	repairer := jsonrepair.NewRepairer()
	_, repairError := repairer.Repair("{\"a\": [\"b")
	require.NoError(testInstance, repairError)
	require.Equal(testInstance, []jsonrepair.LexState{
		jsonrepair.LexStateInObject,
		jsonrepair.LexStateInArray,
		jsonrepair.LexStateInDoubleQuoteString,
	}, repairer.Pending())
	require.Equal(testInstance, jsonrepair.Position{Line: 1, Column: 10}, repairer.Position())
}

func TestRepairDoesNotMatchBracketKinds(testInstance *testing.T) {
	repairer := jsonrepair.NewRepairer()
	repairedText, repairError := repairer.Repair("[1, 2}")
	require.NoError(testInstance, repairError)
	require.Equal(testInstance, "[1, 2}", repairedText)
	require.Empty(testInstance, repairer.Pending())
	require.False(testInstance, json.Valid([]byte(repairedText)))
}
