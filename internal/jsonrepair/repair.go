package jsonrepair

import "strings"

const (
	escapedNewlineConstant = `\n`
	// A tab becomes an escaped tab followed by a space.
	escapedTabConstant = `\t `
)

// Repairer runs the repair state machine over one text. A Repairer is single use;
// its stack and position describe the last Repair call.
type Repairer struct {
	stack    *lexStack
	position Position
	output   strings.Builder
	escaped  bool
}

// NewRepairer constructs a Repairer positioned at the start of its input.
func NewRepairer() *Repairer {
	return &Repairer{
		stack:    newLexStack(),
		position: newPosition(),
	}
}

// Repair rewrites text in a single pass. The only failure is an UnderflowError for
// a closing bracket with nothing left to close.
func (repairer *Repairer) Repair(text string) (string, error) {
	repairer.output.Grow(len(text))
	for _, character := range text {
		if characterError := repairer.onCharacter(character); characterError != nil {
			return "", characterError
		}
	}
	return repairer.output.String(), nil
}

// Pending returns the states left open above the Init sentinel. It is empty after
// repairing well-nested input.
func (repairer *Repairer) Pending() []LexState {
	return repairer.stack.snapshot()[1:]
}

// Depth returns the stack size including the sentinel.
func (repairer *Repairer) Depth() int {
	return repairer.stack.size()
}

// Position returns the location of the next character to be read.
func (repairer *Repairer) Position() Position {
	return repairer.position
}

// String describes the repairer state for debugging.
func (repairer *Repairer) String() string {
	return "stack: " + repairer.stack.String() + ", position: " + repairer.position.String()
}

func (repairer *Repairer) onCharacter(character rune) error {
	escaped := repairer.escaped
	repairer.escaped = false
	location := repairer.position
	repairer.position.advance(character)

	currentState := repairer.stack.current()
	if currentState.IsString() {
		switch {
		case character == '\\':
			repairer.escaped = !escaped
			repairer.output.WriteRune(character)
		case character == '\n':
			repairer.output.WriteString(escapedNewlineConstant)
		case character == '\t':
			repairer.output.WriteString(escapedTabConstant)
		default:
			if quoteState, isQuote := stringStateForQuote(character); isQuote && !escaped && quoteState == currentState {
				if _, popError := repairer.stack.pop(); popError != nil {
					return &UnderflowError{Position: location, Character: character}
				}
			}
			repairer.output.WriteRune(character)
		}
		return nil
	}

	switch character {
	case '[':
		repairer.stack.push(LexStateInArray)
	case '{':
		repairer.stack.push(LexStateInObject)
	case ']', '}':
		if _, popError := repairer.stack.pop(); popError != nil {
			return &UnderflowError{Position: location, Character: character}
		}
	case '"':
		repairer.stack.push(LexStateInDoubleQuoteString)
	case '\'':
		repairer.stack.push(LexStateInSingleQuoteString)
	}
	repairer.output.WriteRune(character)
	return nil
}

// Repair runs a fresh Repairer over text.
func Repair(text string) (string, error) {
	return NewRepairer().Repair(text)
}
