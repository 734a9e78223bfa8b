package jsonrepair

import (
	"errors"
	"fmt"
	"strings"
)

const (
	lexStateInitNameConstant              = "init"
	lexStateArrayNameConstant             = "array"
	lexStateObjectNameConstant            = "object"
	lexStateSingleQuoteStringNameConstant = "single_quote_string"
	lexStateDoubleQuoteStringNameConstant = "double_quote_string"
	lexStateUnknownNameConstant           = "unknown"
	lexStackSeparatorConstant             = ", "
	positionTemplateConstant              = "line: %d, column: %d"
	underflowErrorTemplateConstant        = "%s at %s"
)

// ErrStackUnderflow reports that a closing bracket or quote was found with no open
// construct left to close. It is an internal invariant violation caused by
// unbalanced input.
var ErrStackUnderflow = errors.New("popping from empty lexical stack")

// LexState enumerates the lexical contexts the repairer can be in.
type LexState int

// Lexical states. Init is the permanent bottom of every stack.
const (
	LexStateInit LexState = iota
	LexStateInArray
	LexStateInObject
	LexStateInSingleQuoteString
	LexStateInDoubleQuoteString
)

// String returns the state name.
func (state LexState) String() string {
	switch state {
	case LexStateInit:
		return lexStateInitNameConstant
	case LexStateInArray:
		return lexStateArrayNameConstant
	case LexStateInObject:
		return lexStateObjectNameConstant
	case LexStateInSingleQuoteString:
		return lexStateSingleQuoteStringNameConstant
	case LexStateInDoubleQuoteString:
		return lexStateDoubleQuoteStringNameConstant
	default:
		return lexStateUnknownNameConstant
	}
}

// IsString reports whether the state is inside a string body.
func (state LexState) IsString() bool {
	return state == LexStateInSingleQuoteString || state == LexStateInDoubleQuoteString
}

// stringStateForQuote maps a quote character to the string state it opens.
func stringStateForQuote(character rune) (LexState, bool) {
	switch character {
	case '"':
		return LexStateInDoubleQuoteString, true
	case '\'':
		return LexStateInSingleQuoteString, true
	default:
		return LexStateInit, false
	}
}

// lexStack is a mutable stack of lexical states with Init as its sentinel.
type lexStack struct {
	states []LexState
}

func newLexStack() *lexStack {
	return &lexStack{states: []LexState{LexStateInit}}
}

func (stack *lexStack) push(state LexState) {
	stack.states = append(stack.states, state)
}

// pop removes the top state. The Init sentinel is never removed.
func (stack *lexStack) pop() (LexState, error) {
	if len(stack.states) <= 1 {
		return LexStateInit, ErrStackUnderflow
	}
	top := stack.states[len(stack.states)-1]
	stack.states = stack.states[:len(stack.states)-1]
	return top, nil
}

func (stack *lexStack) current() LexState {
	return stack.states[len(stack.states)-1]
}

func (stack *lexStack) size() int {
	return len(stack.states)
}

func (stack *lexStack) snapshot() []LexState {
	duplicated := make([]LexState, len(stack.states))
	copy(duplicated, stack.states)
	return duplicated
}

func (stack *lexStack) String() string {
	names := make([]string, 0, len(stack.states))
	for _, state := range stack.states {
		names = append(names, state.String())
	}
	return strings.Join(names, lexStackSeparatorConstant)
}

// Position is a 1-based line and column location in the input text.
type Position struct {
	Line   int
	Column int
}

func newPosition() Position {
	return Position{Line: 1, Column: 1}
}

func (position *Position) advance(character rune) {
	if character == '\n' {
		position.Line++
		position.Column = 1
		return
	}
	position.Column++
}

// String renders the position for diagnostics.
func (position Position) String() string {
	return fmt.Sprintf(positionTemplateConstant, position.Line, position.Column)
}

// UnderflowError carries the location of an unbalanced closing character.
type UnderflowError struct {
	Position  Position
	Character rune
}

// Error describes the underflow and where it happened.
func (underflowError *UnderflowError) Error() string {
	return fmt.Sprintf(underflowErrorTemplateConstant, ErrStackUnderflow.Error(), underflowError.Position)
}

// Unwrap exposes ErrStackUnderflow to errors.Is.
func (underflowError *UnderflowError) Unwrap() error {
	return ErrStackUnderflow
}
