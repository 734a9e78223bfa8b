package findings

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/temirov/flint/internal/contextpath"
)

const (
	// DefaultValueBudget bounds rendered values in contextual warnings.
	DefaultValueBudget = 100

	ellipsisMarkerConstant     = "..."
	ellipsisHeadShareConstant  = 0.9
	ellipsisTailShareConstant  = 0.1
	errorTemplateConstant      = "error: %s: %s"
	warningTemplateConstant    = "warning: %s: %s"
	contextualWarningTemplate  = "Warning: %s:\n\tContext: %s\n\tFile: %s\n\tValue: \"%s\""
	valueFormatVerbConstant    = "%v"
	lineBreakConstant          = "\n"
	flattenedLineBreakConstant = " "
)

// Kind names the severity of a finding.
type Kind string

// Finding kinds.
const (
	KindError   Kind = "error"
	KindWarning Kind = "warning"
)

// Finding is one audit result attributed to a file or directory.
type Finding interface {
	Kind() Kind
	Fatal() bool
	Location() string
	Message() string
	String() string
}

// Error is a fatal per-path condition such as an unparseable file.
type Error struct {
	FilePath    string
	Description string
}

// NewError constructs an Error finding.
func NewError(filePath string, description string) Error {
	return Error{FilePath: filePath, Description: description}
}

func (finding Error) Kind() Kind       { return KindError }
func (finding Error) Fatal() bool      { return true }
func (finding Error) Location() string { return finding.FilePath }
func (finding Error) Message() string  { return finding.Description }

func (finding Error) String() string {
	return fmt.Sprintf(errorTemplateConstant, finding.FilePath, finding.Description)
}

// Warning is an advisory finding.
type Warning struct {
	FilePath    string
	Description string
}

// NewWarning constructs a Warning finding.
func NewWarning(filePath string, description string) Warning {
	return Warning{FilePath: filePath, Description: description}
}

func (finding Warning) Kind() Kind       { return KindWarning }
func (finding Warning) Fatal() bool      { return false }
func (finding Warning) Location() string { return finding.FilePath }
func (finding Warning) Message() string  { return finding.Description }

func (finding Warning) String() string {
	return fmt.Sprintf(warningTemplateConstant, finding.FilePath, finding.Description)
}

// ContextualWarning is a Warning that also records where in the document the
// offending value sits.
type ContextualWarning struct {
	Warning
	Path  contextpath.ContextPath
	Value any
}

// NewContextualWarning constructs a ContextualWarning finding.
func NewContextualWarning(filePath string, description string, path contextpath.ContextPath, value any) ContextualWarning {
	return ContextualWarning{
		Warning: NewWarning(filePath, description),
		Path:    path,
		Value:   value,
	}
}

// String renders the warning with the value flattened onto one line and shortened
// to DefaultValueBudget characters.
func (finding ContextualWarning) String() string {
	return fmt.Sprintf(
		contextualWarningTemplate,
		finding.Description,
		finding.Path.String(),
		finding.FilePath,
		Ellipsis(Flatten(finding.Value), DefaultValueBudget),
	)
}

// Flatten renders a value on a single line.
func Flatten(value any) string {
	var text string
	switch typed := value.(type) {
	case string:
		text = typed
	case nil:
		text = ""
	default:
		if encoded, encodeError := json.Marshal(typed); encodeError == nil {
			text = string(encoded)
		} else {
			text = fmt.Sprintf(valueFormatVerbConstant, typed)
		}
	}
	return strings.Join(strings.Split(text, lineBreakConstant), flattenedLineBreakConstant)
}

// Ellipsis keeps text within budget characters by retaining roughly the first 90%
// and last 10% of the budget around an elision marker.
func Ellipsis(text string, budget int) string {
	if utf8.RuneCountInString(text) <= budget {
		return text
	}
	runes := []rune(text)
	headLength := int(float64(budget) * ellipsisHeadShareConstant)
	tailLength := int(float64(budget) * ellipsisTailShareConstant)
	return string(runes[:headLength]) + ellipsisMarkerConstant + string(runes[len(runes)-tailLength:])
}
