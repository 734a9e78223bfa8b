package document

import (
	"errors"
	"fmt"
)

const (
	strictParseFailureTemplateConstant     = "strict parse failed: %v"
	permissiveParseFailureTemplateConstant = "permissive parse failed: %v (strict parse failed: %v)"
)

// Sentinel errors reported by the parser.
var (
	ErrSyntax              = errors.New("document syntax error")
	ErrEmptyInput          = errors.New("input is empty or contains only whitespace")
	ErrTrailingData        = errors.New("unexpected data after top-level value")
	ErrUnsupportedKey      = errors.New("mapping keys must be scalars")
	ErrRecursiveAlias      = errors.New("recursive alias")
	ErrExcessiveAliasing   = errors.New("document contains excessive aliasing")
	ErrUnexpectedToken     = errors.New("unexpected token")
	ErrUnsupportedNodeKind = errors.New("unsupported node kind")
)

// ParseError records why each parse tier rejected the text. PermissiveError is nil
// when the permissive tier was not attempted.
type ParseError struct {
	StrictError     error
	PermissiveError error
}

// Error reports the most lenient failure together with the strict one.
func (parseError *ParseError) Error() string {
	if parseError.PermissiveError == nil {
		return fmt.Sprintf(strictParseFailureTemplateConstant, parseError.StrictError)
	}
	return fmt.Sprintf(permissiveParseFailureTemplateConstant, parseError.PermissiveError, parseError.StrictError)
}

// Unwrap exposes ErrSyntax and the underlying tier errors.
func (parseError *ParseError) Unwrap() []error {
	wrapped := []error{ErrSyntax}
	if parseError.StrictError != nil {
		wrapped = append(wrapped, parseError.StrictError)
	}
	if parseError.PermissiveError != nil {
		wrapped = append(wrapped, parseError.PermissiveError)
	}
	return wrapped
}
